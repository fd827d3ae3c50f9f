package table

import (
	goerrors "errors"
	"io"

	"github.com/spf13/afero"

	"github.com/wippyai/versionlib/errors"
)

// Load reads and decodes the table file at path from the OS filesystem.
func Load(path string) (*Table, error) {
	return LoadFs(afero.NewOsFs(), path)
}

// LoadFs reads the whole file at path from fs and decodes it. Open and
// read failures are reported as errors.KindOpen with the OS error as the
// cause, so callers can still test for fs.ErrNotExist. Decode errors are
// annotated with path.
func LoadFs(fs afero.Fs, path string) (*Table, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, errors.Open(path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.Open(path, err)
	}

	t, err := DecodeBytes(data)
	if err != nil {
		var verr *errors.Error
		if goerrors.As(err, &verr) {
			return nil, errors.New(verr.Phase, verr.Kind).
				Field(verr.Field).
				File(path).
				Value(verr.Value).
				Detail("%s", verr.Detail).
				Cause(verr.Cause).
				Build()
		}
		return nil, err
	}
	return t, nil
}
