package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/eljog/tracegraph/internal/graphdb"
	"github.com/eljog/tracegraph/internal/tracing"
)

// Styles
var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	menuStyle   = lipgloss.NewStyle().MarginLeft(2)
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	paneStyle   = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)

	zoneStyles = map[tracing.Zone]lipgloss.Style{
		tracing.ZoneInfected: lipgloss.NewStyle().Foreground(lipgloss.Color("201")).Bold(true),
		tracing.ZoneRed:      lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		tracing.ZoneOrange:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		tracing.ZoneGreen:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	}
)

// action identifies the menu entry awaiting a person ID.
type action int

const (
	actionNone action = iota
	actionNetwork
	actionMarkInfected
	actionMarkRecovered
	actionZone
)

var actionPrompts = map[action]string{
	actionNetwork:       "Show contact network for person",
	actionMarkInfected:  "Mark person as infected",
	actionMarkRecovered: "Mark person as recovered",
	actionZone:          "Look up zone for person",
}

type model struct {
	tracer  *tracing.Service
	store   *graphdb.Store
	input   textinput.Model
	pending action
	output  string
	err     error
}

func initialModel(tracer *tracing.Service, store *graphdb.Store) model {
	input := textinput.New()
	input.Placeholder = "person id"
	input.CharLimit = 64
	input.Width = 32

	return model{
		tracer: tracer,
		store:  store,
		input:  input,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if keyMsg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.pending != actionNone {
		return m.updatePrompt(keyMsg)
	}
	return m.updateMenu(keyMsg)
}

func (m model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "1":
		m.runListInfected()
	case "2":
		return m.prompt(actionNetwork)
	case "3":
		return m.prompt(actionMarkInfected)
	case "4":
		return m.prompt(actionMarkRecovered)
	case "5":
		return m.prompt(actionZone)
	}
	return m, nil
}

func (m model) prompt(a action) (tea.Model, tea.Cmd) {
	m.pending = a
	m.input.SetValue("")
	m.input.Focus()
	return m, textinput.Blink
}

func (m model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.pending = actionNone
		m.input.Blur()
		return m, nil
	case "enter":
		personID := strings.TrimSpace(m.input.Value())
		a := m.pending
		m.pending = actionNone
		m.input.Blur()
		if personID == "" {
			return m, nil
		}
		m.runAction(a, personID)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *model) runAction(a action, personID string) {
	switch a {
	case actionNetwork:
		m.runContactNetwork(personID)
	case actionMarkInfected:
		m.err = m.tracer.MarkInfected(personID)
		if m.err == nil {
			m.output = fmt.Sprintf("%s marked as infected", personID)
		}
	case actionMarkRecovered:
		m.err = m.tracer.MarkRecovered(personID)
		if m.err == nil {
			m.output = fmt.Sprintf("%s marked as recovered", personID)
		}
	case actionZone:
		zone, err := m.tracer.Zone(personID)
		m.err = err
		if err == nil {
			m.output = fmt.Sprintf("%s is in zone %s", personID, renderZone(zone))
		}
	}
}

func (m *model) runListInfected() {
	people, err := m.tracer.ListInfected()
	if err != nil {
		m.err = err
		return
	}
	m.err = nil

	if len(people) == 0 {
		m.output = "No infected people."
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Infected people (%d):\n", len(people)))
	for _, person := range people {
		sb.WriteString("  " + person.String() + "\n")
	}
	m.output = sb.String()
}

func (m *model) runContactNetwork(personID string) {
	levels, err := m.tracer.ContactNetwork(personID, 2)
	if err != nil {
		m.err = err
		return
	}
	m.err = nil

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Contact network for %s:\n", personID))
	for _, level := range levels {
		sb.WriteString(fmt.Sprintf("Level %d:\n", level.Level))
		if len(level.Contacts) == 0 {
			sb.WriteString(subtleStyle.Render("  (none)") + "\n")
			continue
		}
		for _, contact := range level.Contacts {
			sb.WriteString(fmt.Sprintf("  Zone: %s, Details: %s\n",
				renderZone(contact.Zone), contact.Person.String()))
		}
	}
	m.output = sb.String()
}

func (m model) View() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Contact Tracer") + "\n")
	sb.WriteString(subtleStyle.Render(fmt.Sprintf("%d people loaded", m.store.Len())) + "\n\n")

	sb.WriteString(menuStyle.Render(strings.Join([]string{
		"1. List infected people",
		"2. Show contact network for a person",
		"3. Mark a person as infected",
		"4. Mark a person as recovered",
		"5. Look up a person's zone",
		"q. Quit",
	}, "\n")) + "\n\n")

	if m.pending != actionNone {
		sb.WriteString(actionPrompts[m.pending] + ":\n")
		sb.WriteString(m.input.View() + "\n")
		sb.WriteString(subtleStyle.Render("enter to confirm, esc to cancel") + "\n")
		return sb.String()
	}

	if m.err != nil {
		sb.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n")
	} else if m.output != "" {
		sb.WriteString(paneStyle.Render(strings.TrimRight(m.output, "\n")) + "\n")
	}

	return sb.String()
}

func renderZone(zone tracing.Zone) string {
	if style, ok := zoneStyles[zone]; ok {
		return style.Render(string(zone))
	}
	return string(zone)
}

func main() {
	var (
		peoplePath   = flag.String("people", "data/people.csv", "Path to people.csv")
		contactsPath = flag.String("contacts", "data/contact.csv", "Path to contact.csv")
		workers      = flag.Int("workers", 4, "Number of concurrent workers for loading")
	)
	flag.Parse()

	store := graphdb.New()
	if err := loadDatasets(store, *peoplePath, *contactsPath, *workers); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load datasets: %v\n", err)
		os.Exit(1)
	}

	m := initialModel(tracing.NewService(store), store)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "tracer failed: %v\n", err)
		os.Exit(1)
	}
}

func loadDatasets(store *graphdb.Store, peoplePath, contactsPath string, workers int) error {
	loader := tracing.NewLoader(store, workers)
	ctx := context.Background()

	peopleFile, err := os.Open(peoplePath)
	if err != nil {
		return fmt.Errorf("open %s: %w", peoplePath, err)
	}
	defer peopleFile.Close()

	if _, err := loader.LoadPeople(ctx, peopleFile); err != nil {
		var loadErr *tracing.LoadError
		if !errors.As(err, &loadErr) {
			return fmt.Errorf("load people: %w", err)
		}
		fmt.Fprintf(os.Stderr, "warning: %d people rows skipped\n", len(loadErr.Errors))
	}

	contactsFile, err := os.Open(contactsPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", contactsPath, err)
	}
	defer contactsFile.Close()

	if _, err := loader.LoadContacts(ctx, contactsFile); err != nil {
		var loadErr *tracing.LoadError
		if !errors.As(err, &loadErr) {
			return fmt.Errorf("load contacts: %w", err)
		}
		fmt.Fprintf(os.Stderr, "warning: %d contact rows skipped\n", len(loadErr.Errors))
	}
	return nil
}
