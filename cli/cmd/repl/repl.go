package repl

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/okvern/cellform/cli/cmd"
	"github.com/okvern/cellform/formula"
)

// scratchCell is the cell identity used for ad-hoc formula evaluation.
const scratchCell = "ZZ1000"

// Command starts an interactive formula session.
type Command struct {
	Sheet   string `help:"Sheet file to load into the session" optional:"" short:"f"`
	History string `help:"File for persisting input history"   optional:"" type:"path"`
}

// Run executes the repl command.
func (c *Command) Run(ctx context.Context) error {
	sheet := formula.NewMapSheet()

	if c.Sheet != "" {
		loaded, err := cmd.OpenSheet(c.Sheet)
		if err != nil {
			return err
		}

		sheet = loaded
	}

	m := newModel(sheet, c.History)

	program := tea.NewProgram(m, tea.WithContext(ctx))

	final, err := program.Run()
	if err != nil {
		return err
	}

	if fm, ok := final.(model); ok && fm.history != nil {
		return fm.history.save()
	}

	return nil
}

var (
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	resultStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

type model struct {
	engine    *formula.Engine
	sheet     *formula.MapSheet
	input     textinput.Model
	history   *history
	completer *completer
	quitting  bool
}

func newModel(sheet *formula.MapSheet, historyPath string) model {
	engine := cmd.NewEngine()

	ti := textinput.New()
	ti.Prompt = promptStyle.Render("cellform› ")
	ti.Placeholder = `formula, "A1: value", or :help`
	ti.Focus()

	return model{
		engine:    engine,
		sheet:     sheet,
		input:     ti,
		history:   loadHistory(historyPath),
		completer: newCompleter(engine, sheet),
	}
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)

		return m, cmd
	}

	switch keyMsg.Type {
	case tea.KeyCtrlC, tea.KeyCtrlD:
		m.quitting = true

		return m, tea.Quit

	case tea.KeyEnter:
		line := strings.TrimSpace(m.input.Value())
		if line == "" {
			return m, nil
		}

		m.history.add(line)
		m.input.SetValue("")

		return m.submit(line)

	case tea.KeyUp:
		if prev, ok := m.history.prev(); ok {
			m.input.SetValue(prev)
			m.input.CursorEnd()
		}

		return m, nil

	case tea.KeyDown:
		next, _ := m.history.next()
		m.input.SetValue(next)
		m.input.CursorEnd()

		return m, nil

	case tea.KeyTab:
		m.input.SetValue(m.completer.complete(m.input.Value()))
		m.input.CursorEnd()

		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

// View implements tea.Model.
func (m model) View() string {
	if m.quitting {
		return ""
	}

	return m.input.View() + "\n" +
		hintStyle.Render("tab: complete  up/down: history  ctrl+d: quit") + "\n"
}

// submit dispatches one input line and emits its transcript output.
func (m model) submit(line string) (tea.Model, tea.Cmd) {
	echo := promptStyle.Render("› ") + line

	switch strings.Fields(line)[0] {
	case ":quit", ":q", ":exit":
		m.quitting = true

		return m, tea.Quit
	}

	var out string

	switch {
	case strings.HasPrefix(line, ":"):
		out = m.runDirective(line)

	case isAssignment(line):
		out = m.assign(line)

	default:
		out = m.evaluate(line)
	}

	return m, tea.Println(echo + "\n" + out)
}

// isAssignment reports whether a line has the form "A1: value". The colon
// must be followed by whitespace (or end the line) so that range syntax
// like A1:B2 still reads as a formula.
func isAssignment(line string) bool {
	ref, rest, found := strings.Cut(line, ":")
	if !found {
		return false
	}

	if rest != "" && !strings.HasPrefix(rest, " ") && !strings.HasPrefix(rest, "\t") {
		return false
	}

	_, err := formula.NormalizeRef(ref)

	return err == nil
}

// assign stores a value or formula in a cell and recalculates everything
// that reads it.
func (m model) assign(line string) string {
	rawRef, rawValue, _ := strings.Cut(line, ":")

	id, err := formula.NormalizeRef(rawRef)
	if err != nil {
		return errorStyle.Render(err.Error())
	}

	value := strings.TrimSpace(rawValue)

	switch {
	case value == "":
		m.sheet.Clear(id)

	case strings.HasPrefix(value, "="):
		if err := m.sheet.SetFormula(id, value); err != nil {
			return errorStyle.Render(err.Error())
		}

	default:
		if err := m.sheet.Set(id, literalValue(value)); err != nil {
			return errorStyle.Render(err.Error())
		}
	}

	// Drop stale results before recomputing anything downstream.
	m.engine.InvalidateCascade(id)

	if strings.HasPrefix(value, "=") {
		if _, err := m.engine.Evaluate(id, value, m.sheet); err != nil {
			return errorStyle.Render(err.Error())
		}
	}

	return m.recalculateDependents(id)
}

// recalculateDependents refreshes every formula cell that transitively
// reads the changed cell and reports the refreshed values.
func (m model) recalculateDependents(id string) string {
	deps := m.engine.Dependents(id)

	ids := make([]string, 0, len(deps))
	for dep := range deps {
		ids = append(ids, dep)
	}

	failures := m.engine.BatchRecalculate(ids, func(dep string) error {
		cd, ok := m.sheet.Cell(dep)
		if !ok || cd.Formula == "" {
			return nil
		}

		_, err := m.engine.Evaluate(dep, cd.Formula, m.sheet)

		return err
	})

	lines := []string{resultStyle.Render("ok")}

	sort.Strings(ids)

	for _, dep := range ids {
		if err, failed := failures[dep]; failed {
			lines = append(lines, errorStyle.Render(dep+": "+err.Error()))

			continue
		}

		if v, ok := m.engine.Get(dep); ok {
			lines = append(lines, resultStyle.Render(dep+" = "+v.AsText()))
		}
	}

	return strings.Join(lines, "\n")
}

// evaluate runs a one-shot formula against the session sheet.
func (m model) evaluate(line string) string {
	v, err := m.engine.Evaluate(scratchCell, line, m.sheet)
	if err != nil {
		return errorStyle.Render(err.Error())
	}

	return resultStyle.Render(v.AsText())
}

// runDirective handles colon-prefixed session commands.
func (m model) runDirective(line string) string {
	switch fields := strings.Fields(line); fields[0] {
	case ":help", ":h":
		return hintStyle.Render(strings.Join([]string{
			"  <formula>       evaluate a formula (leading '=' optional)",
			"  A1: <value>     set a cell to a value or '=' formula",
			"  A1:             clear a cell",
			"  :cells          list populated cells",
			"  :stats          show engine statistics",
			"  :quit           exit",
		}, "\n"))

	case ":cells", ":c":
		ids := m.sheet.IDs()
		if len(ids) == 0 {
			return hintStyle.Render("(empty sheet)")
		}

		lines := make([]string, 0, len(ids))

		for _, id := range ids {
			cd, _ := m.sheet.Cell(id)
			if cd.Formula != "" {
				lines = append(lines, id+": "+cd.Formula)

				continue
			}

			lines = append(lines, id+": "+cd.Value.AsText())
		}

		return strings.Join(lines, "\n")

	case ":stats", ":s":
		stats := m.engine.GetStats()

		return fmt.Sprintf(
			"cache entries: %d\ntracked cells: %d\ngraph edges: %d\nparse cache: %d hit / %d miss",
			stats.Entries, stats.Cells, stats.Edges, stats.HitCount, stats.MissCount,
		)

	default:
		return errorStyle.Render("unknown command " + fields[0] + " (try :help)")
	}
}

// literalValue interprets a bare assignment value the same way sheet
// files do: numbers and booleans parse, everything else is text.
func literalValue(s string) formula.Value {
	if strings.EqualFold(s, "true") {
		return formula.Boolean(true)
	}

	if strings.EqualFold(s, "false") {
		return formula.Boolean(false)
	}

	if f, ok := formula.Text(s).AsNumber(); ok {
		return formula.Number(f)
	}

	return formula.Text(s)
}
