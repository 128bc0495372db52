// Package tui provides interactive terminal UI components.
package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lepinkainen/bookstw/internal/metadata"
)

const (
	defaultListWidth  = 72
	defaultListHeight = 20
)

var runProgram = func(m tea.Model) (tea.Model, error) {
	return tea.NewProgram(m).Run()
}

// SelectionAction represents the user's action in the selection UI.
type SelectionAction int

const (
	// ActionNone indicates no action was taken.
	ActionNone SelectionAction = iota
	// ActionSelected indicates the user selected an item.
	ActionSelected
	// ActionSkipped indicates the user skipped the selection.
	ActionSkipped
	// ActionStopped indicates the user stopped processing entirely.
	ActionStopped
)

// SelectionResult holds the result of a TUI selection.
type SelectionResult struct {
	Action    SelectionAction
	Selection *metadata.Record
}

type recordItem struct {
	rec *metadata.Record
}

func (i recordItem) Title() string {
	if year := i.rec.Year(); year != "" {
		return fmt.Sprintf("%s (%s)", i.rec.Title, year)
	}
	return i.rec.Title
}

func (i recordItem) FilterValue() string {
	return i.rec.Title
}

func (i recordItem) Description() string {
	return i.rec.Comments
}

type itemStyles struct {
	normal        lipgloss.Style
	selected      lipgloss.Style
	idStyle       lipgloss.Style
	titleStyle    lipgloss.Style
	ratingStyle   lipgloss.Style
	metadataStyle lipgloss.Style
	commentStyle  lipgloss.Style
}

func newItemStyles() itemStyles {
	asciiBorder := lipgloss.Border{
		Top:         "-",
		Bottom:      "-",
		Left:        "|",
		Right:       "|",
		TopLeft:     "+",
		TopRight:    "+",
		BottomLeft:  "+",
		BottomRight: "+",
	}

	container := lipgloss.NewStyle().
		Border(asciiBorder).
		BorderForeground(lipgloss.Color("62")).
		Padding(0, 1).
		Foreground(lipgloss.Color("252"))

	selected := container.Copy().
		BorderForeground(lipgloss.Color("214")).
		Foreground(lipgloss.Color("230")).
		Background(lipgloss.Color("237"))

	return itemStyles{
		normal:   container,
		selected: selected,
		idStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("110")),
		titleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("254")),
		ratingStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("178")),
		metadataStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("247")).
			Faint(true),
		commentStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("248")),
	}
}

type recordDelegate struct {
	styles itemStyles
}

func newDelegate() recordDelegate {
	return recordDelegate{styles: newItemStyles()}
}

func (d recordDelegate) Height() int                         { return 5 }
func (d recordDelegate) Spacing() int                        { return 1 }
func (d recordDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }

func (d recordDelegate) Render(w io.Writer, m list.Model, idx int, item list.Item) {
	entry, ok := item.(recordItem)
	if !ok {
		return
	}
	rec := entry.rec

	idLine := d.styles.idStyle.Render(fmt.Sprintf("[%s]", rec.Identifier(metadata.IdentifierBooksTW)))
	metadataLine := d.styles.metadataStyle.Render(formatMetadata(rec, m.Width()-4))
	titleLine := d.styles.titleStyle.Render(truncate(entry.Title(), m.Width()-4))
	ratingLine := d.styles.ratingStyle.Render(formatRating(rec))
	commentLine := d.styles.commentStyle.Render(truncate(rec.Comments, m.Width()-4))

	content := lipgloss.JoinVertical(lipgloss.Left, idLine, metadataLine, titleLine, ratingLine, commentLine)

	container := d.styles.normal
	if idx == m.Index() {
		container = d.styles.selected
	}
	_, _ = fmt.Fprint(w, container.Render(content))
}

type model struct {
	list   list.Model
	query  string
	result SelectionResult
}

func newModel(query string, items []recordItem) *model {
	listItems := make([]list.Item, len(items))
	for i, item := range items {
		listItems[i] = item
	}

	l := list.New(listItems, newDelegate(), defaultListWidth, defaultListHeight)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.SetShowTitle(false)
	l.SetShowPagination(false)
	l.DisableQuitKeybindings()
	l.Styles.NoItems = lipgloss.NewStyle()

	return &model{
		list:   l,
		query:  query,
		result: SelectionResult{Action: ActionNone},
	}
}

func (m *model) Init() tea.Cmd { return nil }

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			if selected, ok := m.list.SelectedItem().(recordItem); ok {
				m.result = SelectionResult{Action: ActionSelected, Selection: selected.rec}
				return m, tea.Quit
			}
		case "s", "esc":
			m.result = SelectionResult{Action: ActionSkipped}
			return m, tea.Quit
		case "ctrl+c", "q":
			m.result = SelectionResult{Action: ActionStopped}
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		width := clamp(defaultListWidth, msg.Width-4, 40)
		height := clamp(defaultListHeight, msg.Height-6, 5)
		m.list.SetSize(width, height)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *model) View() string {
	header := headerStyle.Render(fmt.Sprintf("%d books found for: %s", len(m.list.Items()), m.query))
	buttons := lipgloss.JoinHorizontal(
		lipgloss.Left,
		skipButtonStyle.Render(" Skip "),
		lipgloss.NewStyle().Padding(0, 2).Render(""),
		stopButtonStyle.Render(" Stop Processing "),
	)
	help := helpStyle.Render("Up/Down navigate | Enter select | s skip | q stop")
	return lipgloss.JoinVertical(lipgloss.Left, header, m.list.View(), buttons, help)
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214")).
			MarginBottom(1)

	skipButtonStyle = lipgloss.NewStyle().
			MarginTop(1).
			Padding(0, 2).
			Background(lipgloss.Color("178")).
			Foreground(lipgloss.Color("0")).
			Bold(true)

	stopButtonStyle = lipgloss.NewStyle().
			MarginTop(1).
			Padding(0, 2).
			Background(lipgloss.Color("161")).
			Foreground(lipgloss.Color("230")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			MarginTop(1).
			Foreground(lipgloss.Color("244"))
)

// Select lets the user pick one of the identified records.
// A single record is returned without starting the UI.
func Select(query string, records []*metadata.Record) (SelectionResult, error) {
	items := make([]recordItem, 0, len(records))
	for _, rec := range records {
		if rec != nil {
			items = append(items, recordItem{rec: rec})
		}
	}

	switch len(items) {
	case 0:
		return SelectionResult{Action: ActionSkipped}, nil
	case 1:
		return SelectionResult{Action: ActionSelected, Selection: items[0].rec}, nil
	}

	finalModel, err := runProgram(newModel(query, items))
	if err != nil {
		return SelectionResult{}, err
	}

	if typed, ok := finalModel.(*model); ok {
		return typed.result, nil
	}

	return SelectionResult{}, fmt.Errorf("unexpected program result")
}

func truncate(value string, width int) string {
	runes := []rune(strings.Join(strings.Fields(value), " "))
	if width <= 0 || len(runes) <= width {
		return string(runes)
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}

// formatMetadata creates the line with authors, publisher, language and ISBN
func formatMetadata(rec *metadata.Record, availableWidth int) string {
	var parts []string

	if len(rec.Authors) > 0 {
		parts = append(parts, strings.Join(rec.Authors, ", "))
	}
	if rec.Publisher != "" {
		parts = append(parts, rec.Publisher)
	}
	if rec.Language != "" {
		parts = append(parts, strings.ToUpper(rec.Language))
	}
	if isbn := rec.Identifier(metadata.IdentifierISBN); isbn != "" {
		parts = append(parts, "ISBN "+isbn)
	}

	if len(parts) == 0 {
		return "No metadata available"
	}

	return truncate(strings.Join(parts, " | "), availableWidth)
}

func formatRating(rec *metadata.Record) string {
	if !rec.Touched.Has(metadata.FieldRating) {
		return "no rating"
	}
	return fmt.Sprintf("%.1f/5", rec.Rating)
}

func clamp(defaultValue, available, minimum int) int {
	width := defaultValue
	if available > 0 && available < defaultValue {
		width = available
	}
	if width < minimum {
		width = minimum
	}
	return width
}
