package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/versionlib/resolver"
	"github.com/wippyai/versionlib/table"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

const commandHelp = "id <n> • off <hex> • info • esc/ctrl+c quit"

// maxHistory bounds the number of results kept on screen.
const maxHistory = 16

type historyLine struct {
	err    error
	input  string
	output string
}

type interactiveModel struct {
	table   *table.Table
	source  string
	history []historyLine
	input   textinput.Model
}

func newInteractiveModel(t *table.Table, source string) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "id 14720"
	ti.Prompt = "> "
	ti.Width = 40
	ti.Focus()
	return &interactiveModel{
		table:  t,
		source: source,
		input:  ti,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "enter":
			line := strings.TrimSpace(m.input.Value())
			m.input.SetValue("")
			if line == "" {
				return m, nil
			}
			if line == "quit" || line == "exit" {
				return m, tea.Quit
			}
			out, err := execute(m.table, m.source, line)
			m.history = append(m.history, historyLine{input: line, output: out, err: err})
			if len(m.history) > maxHistory {
				m.history = m.history[len(m.history)-maxHistory:]
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("versionlib"))
	b.WriteString(" ")
	b.WriteString(m.source)
	b.WriteString("\n\n")

	for _, h := range m.history {
		b.WriteString(promptStyle.Render("> " + h.input))
		b.WriteString("\n")
		if h.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", h.err)))
		} else {
			b.WriteString(resultStyle.Render(h.output))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render(commandHelp))

	return b.String()
}

// execute runs one console command against t, which was read from source.
func execute(t *table.Table, source, line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", fmt.Errorf("empty command")
	}

	switch fields[0] {
	case "id":
		if len(fields) != 2 {
			return "", fmt.Errorf("usage: id <n>")
		}
		id, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return "", fmt.Errorf("invalid id %q: %w", fields[1], err)
		}
		off, err := resolver.Lookup(t, id)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("id %d -> %#x", id, off), nil

	case "off", "offset":
		if len(fields) != 2 {
			return "", fmt.Errorf("usage: off <hex>")
		}
		off, err := parseOffset(fields[1])
		if err != nil {
			return "", fmt.Errorf("invalid offset %q: %w", fields[1], err)
		}
		id, err := resolver.ReverseLookup(t, off)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("offset %#x -> %d", off, id), nil

	case "info":
		var b strings.Builder
		printInfo(&b, t, source)
		return strings.TrimRight(b.String(), "\n"), nil

	default:
		return "", fmt.Errorf("unknown command %q (%s)", fields[0], commandHelp)
	}
}

// runScript executes commands read line by line when stdin is not a terminal.
func runScript(t *table.Table, source string, r io.Reader, w io.Writer) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out, err := execute(t, source, line)
		if err != nil {
			fmt.Fprintf(w, "error: %v\n", err)
			continue
		}
		fmt.Fprintln(w, out)
	}
	return sc.Err()
}

func runInteractive(t *table.Table, source string) error {
	p := tea.NewProgram(newInteractiveModel(t, source), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
