// Package ui is the interactive planner view: one calendar date, its tasks,
// and inline add/edit. Mutations are sent to the server and the list is
// unconditionally re-fetched afterwards so the view always shows server
// truth.
package ui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/example/daily-planner/client/api"
	"github.com/example/daily-planner/client/notifier"
	"github.com/example/daily-planner/client/store"
	domain "github.com/example/daily-planner/domain/task"
)

const requestTimeout = 10 * time.Second

// listItem adapts a task to bubbles/list.Item.
type listItem struct {
	task domain.Task
}

func (i listItem) line() string {
	box := boxRemaining
	switch i.task.Status {
	case domain.StatusDone:
		box = boxDone
	case domain.StatusFailed:
		box = boxFailed
	}
	s := fmt.Sprintf("%s %s %s", box, i.task.Time, i.task.Title)
	if i.task.Reminder {
		s += " " + bellGlyph
	}
	if i.task.Status == domain.StatusFailed && i.task.Reason != "" {
		s += " (" + i.task.Reason + ")"
	}
	return s
}

// Implement list.Item interface
func (i listItem) Title() string       { return i.line() }
func (i listItem) Description() string { return i.task.Description }
func (i listItem) FilterValue() string { return i.task.Title }

// Custom delegate rendering one task per line.
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, _ := item.(listItem)

	box := mutedStyle.Render(boxRemaining)
	text := fmt.Sprintf("%s %s", it.task.Time, it.task.Title)
	switch it.task.Status {
	case domain.StatusDone:
		box = successStyle.Render(boxDone)
		text = doneStyle.Render(text)
	case domain.StatusFailed:
		box = failedStyle.Render(boxFailed)
		if it.task.Reason != "" {
			text += mutedStyle.Render(" (" + it.task.Reason + ")")
		}
	}
	if it.task.Reminder {
		text += " " + bellGlyph
	}

	prefix := "  "
	if index == m.Index() {
		prefix = selectedStyle.Render("> ")
	}
	fmt.Fprintln(w, prefix+box+" "+text)
}

type mode int

const (
	modeNormal mode = iota
	modeAdd
	modeEdit
	modeReason
)

// Messages.
type tasksMsg struct {
	tasks []domain.Task
	err   error
}

type mutationMsg struct {
	action string
	err    error
}

type minuteTickMsg time.Time

type clearStatusMsg struct{}

// Model is the Bubble Tea model for the planner view.
type Model struct {
	client *api.Client
	store  *store.Store
	notif  *notifier.Notifier
	perms  *notifier.PermissionStore

	date string
	list list.Model
	ti   textinput.Model

	mode   mode
	editID string // task under edit or reason entry

	status  string
	inputEr string
	offline bool
	width   int
	height  int
}

// NewModel builds the planner view for one date.
func NewModel(client *api.Client, st *store.Store, notif *notifier.Notifier, perms *notifier.PermissionStore, date string) Model {
	l := list.New(nil, itemDelegate{}, 0, 0)
	l.Title = titleStyle.Render("Daily Planner") + "  " + accentStyle.Render(date)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = lipgloss.NewStyle()
	l.Styles.HelpStyle = helpStyle
	l.Styles.PaginationStyle = helpStyle
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName("task", "tasks")

	binds := []key.Binding{
		key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "done")),
		key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "failed")),
		key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reminder")),
		key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "delete")),
		key.NewBinding(key.WithKeys("left", "right"), key.WithHelp("←/→", "day")),
		key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "notifications")),
	}
	l.AdditionalShortHelpKeys = func() []key.Binding { return binds[:4] }
	l.AdditionalFullHelpKeys = func() []key.Binding { return binds }

	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 200

	return Model{
		client: client,
		store:  st,
		notif:  notif,
		perms:  perms,
		date:   date,
		list:   l,
		ti:     ti,
		width:  80,
		height: 24,
	}
}

// Init kicks off the first fetch and the reminder tick.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetch(), minuteTick())
}

func minuteTick() tea.Cmd {
	// Align to the next minute boundary so Check sees each HH:MM once.
	now := time.Now()
	next := now.Truncate(time.Minute).Add(time.Minute)
	return tea.Tick(next.Sub(now), func(t time.Time) tea.Msg {
		return minuteTickMsg(t)
	})
}

func (m Model) fetch() tea.Cmd {
	client, date := m.client, m.date
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		tasks, err := client.ListTasks(ctx, date)
		return tasksMsg{tasks: tasks, err: err}
	}
}

func (m Model) mutate(action string, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return mutationMsg{action: action, err: fn(ctx)}
	}
}

func clearStatusLater() tea.Cmd {
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}

func (m *Model) selected() (domain.Task, bool) {
	i := m.list.Index()
	items := m.list.Items()
	if i < 0 || i >= len(items) {
		return domain.Task{}, false
	}
	li, ok := items[i].(listItem)
	return li.task, ok
}

func (m *Model) setTasks(tasks []domain.Task) {
	m.store.Replace(tasks)
	items := make([]list.Item, 0, len(tasks))
	for _, t := range tasks {
		items = append(items, listItem{task: t})
	}
	m.list.SetItems(items)
	m.list.Title = titleStyle.Render("Daily Planner") + "  " + accentStyle.Render(m.date)
}

// isNetworkErr distinguishes transport failures (offline) from server
// rejections.
func isNetworkErr(err error) bool {
	if err == nil {
		return false
	}
	_, isAPI := err.(*api.APIError)
	return !isAPI
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tasksMsg:
		if msg.err != nil {
			m.offline = isNetworkErr(msg.err)
			m.status = errorStyle.Render("Failed to load tasks")
			return m, clearStatusLater()
		}
		m.offline = false
		m.setTasks(msg.tasks)
		return m, nil

	case mutationMsg:
		if msg.err != nil {
			m.offline = isNetworkErr(msg.err)
			m.status = errorStyle.Render("Failed to " + msg.action + " task")
		} else {
			m.status = successStyle.Render("Task " + msg.action + "d")
		}
		// Resync from the server regardless of outcome.
		return m, tea.Batch(m.fetch(), clearStatusLater())

	case minuteTickMsg:
		var cmds []tea.Cmd
		for _, ev := range m.notif.Check(time.Time(msg)) {
			m.status = pendingStyle.Render("Reminder: " + ev.Title)
			cmds = append(cmds, tea.Printf("\aReminder: %s", ev.Title))
		}
		if m.status != "" {
			cmds = append(cmds, clearStatusLater())
		}
		cmds = append(cmds, minuteTick())
		return m, tea.Batch(cmds...)

	case clearStatusMsg:
		m.status = ""
		return m, nil
	}

	if m.mode != modeNormal {
		return m.updateInput(msg)
	}
	return m.updateNormal(msg)
}

// updateInput handles add/edit/reason entry.
func (m Model) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "enter":
			return m.submitInput()
		case "esc":
			m.mode = modeNormal
			m.inputEr = ""
			m.ti.SetValue("")
			m.ti.Blur()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	return m, cmd
}

func (m Model) submitInput() (tea.Model, tea.Cmd) {
	value := strings.TrimSpace(m.ti.Value())

	switch m.mode {
	case modeAdd, modeEdit:
		hhmm, title, err := parseEntry(value)
		if err != nil {
			m.inputEr = err.Error()
			return m, nil
		}
		var cmd tea.Cmd
		if m.mode == modeAdd {
			draft := api.Draft{
				Date:     m.date,
				Title:    title,
				Time:     hhmm,
				Status:   domain.StatusRemaining,
				Reminder: false,
			}
			cmd = m.mutate("create", func(ctx context.Context) error {
				_, err := m.client.CreateTask(ctx, draft)
				return err
			})
		} else {
			t, ok := m.taskByID(m.editID)
			if !ok {
				m.mode = modeNormal
				return m, nil
			}
			draft := api.DraftOf(t)
			draft.Time = hhmm
			draft.Title = title
			payload := api.Payload{ID: t.ID, Draft: draft}
			cmd = m.mutate("update", func(ctx context.Context) error {
				_, err := m.client.UpdateTask(ctx, payload)
				return err
			})
		}
		m.mode = modeNormal
		m.inputEr = ""
		m.ti.SetValue("")
		m.ti.Blur()
		return m, cmd

	case modeReason:
		t, ok := m.taskByID(m.editID)
		if !ok {
			m.mode = modeNormal
			return m, nil
		}
		draft := api.DraftOf(t)
		draft.Status = domain.StatusFailed
		draft.Reason = value
		payload := api.Payload{ID: t.ID, Draft: draft}
		cmd := m.mutate("update", func(ctx context.Context) error {
			_, err := m.client.UpdateTask(ctx, payload)
			return err
		})
		m.mode = modeNormal
		m.inputEr = ""
		m.ti.SetValue("")
		m.ti.Blur()
		return m, cmd
	}
	return m, nil
}

func (m *Model) taskByID(id string) (domain.Task, bool) {
	for _, t := range m.store.Snapshot() {
		if t.ID == id {
			return t, true
		}
	}
	return domain.Task{}, false
}

// updateNormal handles list navigation and actions.
func (m Model) updateNormal(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || m.list.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	switch keyMsg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "a":
		m.mode = modeAdd
		m.ti.SetValue("")
		m.ti.Placeholder = "HH:MM Task title..."
		m.ti.Focus()
		return m, nil

	case "e":
		if t, ok := m.selected(); ok {
			m.mode = modeEdit
			m.editID = t.ID
			m.ti.SetValue(t.Time + " " + t.Title)
			m.ti.CursorEnd()
			m.ti.Placeholder = "HH:MM Task title..."
			m.ti.Focus()
		}
		return m, nil

	case " ":
		if t, ok := m.selected(); ok {
			draft := api.DraftOf(t)
			if t.Status == domain.StatusDone {
				draft.Status = domain.StatusRemaining
			} else {
				draft.Status = domain.StatusDone
			}
			payload := api.Payload{ID: t.ID, Draft: draft}
			return m, m.mutate("update", func(ctx context.Context) error {
				_, err := m.client.UpdateTask(ctx, payload)
				return err
			})
		}
		return m, nil

	case "f":
		if t, ok := m.selected(); ok {
			m.mode = modeReason
			m.editID = t.ID
			m.ti.SetValue(t.Reason)
			m.ti.Placeholder = "Why did it fail?"
			m.ti.Focus()
		}
		return m, nil

	case "r":
		if t, ok := m.selected(); ok {
			draft := api.DraftOf(t)
			draft.Reminder = !draft.Reminder
			payload := api.Payload{ID: t.ID, Draft: draft}
			return m, m.mutate("update", func(ctx context.Context) error {
				_, err := m.client.UpdateTask(ctx, payload)
				return err
			})
		}
		return m, nil

	case "x":
		if t, ok := m.selected(); ok {
			id := t.ID
			return m, m.mutate("delete", func(ctx context.Context) error {
				return m.client.DeleteTask(ctx, id)
			})
		}
		return m, nil

	case "left", "right":
		day, err := time.Parse("2006-01-02", m.date)
		if err != nil {
			return m, nil
		}
		if keyMsg.String() == "left" {
			day = day.AddDate(0, 0, -1)
		} else {
			day = day.AddDate(0, 0, 1)
		}
		m.date = day.Format("2006-01-02")
		return m, m.fetch()

	case "n":
		// Cycle the notification capability: undetermined/denied -> granted,
		// granted -> denied.
		next := notifier.PermissionGranted
		if m.perms.Query() == notifier.PermissionGranted {
			next = notifier.PermissionDenied
		}
		if err := m.perms.Set(next); err != nil {
			m.status = errorStyle.Render("Failed to save notification setting")
		} else {
			m.status = accentStyle.Render("Notifications: " + string(next))
		}
		return m, clearStatusLater()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	listHeight := m.height - 4
	if m.mode != modeNormal {
		listHeight = m.height - 7
	}
	if m.offline {
		listHeight--
	}
	if listHeight < 3 {
		listHeight = 3
	}
	m.list.SetSize(m.width-2, listHeight)

	var b strings.Builder
	if m.offline {
		b.WriteString(offlineBanner.Render("You are offline. Changes are not saved until you reconnect.") + "\n")
	}
	b.WriteString(m.list.View())

	if m.mode != modeNormal {
		bar := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)
		title := "Add task"
		switch m.mode {
		case modeEdit:
			title = "Edit task"
		case modeReason:
			title = "Failure reason"
		}
		if m.inputEr != "" {
			title += "  " + errorStyle.Render(m.inputEr)
		}
		b.WriteString("\n" + bar.Render(title+"\n"+m.ti.View()))
	}

	if m.status != "" {
		b.WriteString("\n" + m.status)
	}
	return b.String()
}

// parseEntry splits "HH:MM Task title" into its parts.
func parseEntry(s string) (hhmm, title string, err error) {
	parts := strings.SplitN(s, " ", 2)
	if len(parts) < 2 || strings.TrimSpace(parts[1]) == "" {
		return "", "", fmt.Errorf("use: HH:MM Task title")
	}
	hhmm = parts[0]
	if _, perr := time.Parse("15:04", hhmm); perr != nil {
		return "", "", fmt.Errorf("time must be HH:MM")
	}
	return hhmm, strings.TrimSpace(parts[1]), nil
}

// Run starts the planner view and blocks until the user quits.
func Run(client *api.Client, st *store.Store, notif *notifier.Notifier, perms *notifier.PermissionStore, date string) error {
	m := NewModel(client, st, notif, perms, date)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
