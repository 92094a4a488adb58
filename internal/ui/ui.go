package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/search"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	QueryView ViewState = iota
	ResultListView
	DetailView
)

const resultLimit = 25

// Model represents the TUI application state.
type Model struct {
	ctx       context.Context
	view      ViewState
	search    *search.Reconciler
	width     int
	height    int
	input     textinput.Model
	songList  list.Model
	selected  *models.Song
	searching bool
	err       error
	help      help.Model
	keys      keyMap
}

type songsFetchedMsg struct {
	songs []*models.Song
	err   error
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, reconciler *search.Reconciler) *Model {
	input := textinput.New()
	input.Placeholder = "song title"
	input.CharLimit = 120
	input.Width = 40
	input.Focus()

	return &Model{
		ctx:    ctx,
		view:   QueryView,
		search: reconciler,
		input:  input,
		help:   help.New(),
		keys:   newKeyMap(),
	}
}

// Init sets up the initial blink command for the query input.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.songList.Width() == 0 {
			m.songList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case QueryView:
			return m.handleQueryKeys(msg)
		case ResultListView:
			return m.handleResultListKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		}

	case songsFetchedMsg:
		m.searching = false
		if msg.err != nil {
			m.err = msg.err
			m.view = QueryView
			return m, nil
		}
		m.err = nil
		items := make([]list.Item, len(msg.songs))
		for i, song := range msg.songs {
			items[i] = songItem{song: song}
		}
		m.songList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.songList.Title = fmt.Sprintf("Results for '%s'", m.input.Value())
		m.songList.SetSize(m.width-4, m.height-8)
		m.view = ResultListView
		return m, nil
	}

	return m.updateInner(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case QueryView:
		return m.renderQuery()
	case ResultListView:
		return m.renderResultList()
	case DetailView:
		return m.renderDetail()
	default:
		return ""
	}
}

func (m *Model) handleQueryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "enter":
		if m.searching {
			return m, nil
		}
		m.searching = true
		return m, m.fetchSongs(m.input.Value())
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleResultListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = QueryView
		m.input.Focus()
		return m, textinput.Blink
	case "enter":
		selected := m.songList.SelectedItem()
		if selected != nil {
			if item, ok := selected.(songItem); ok {
				m.selected = item.song
				m.view = DetailView
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.songList, cmd = m.songList.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.selected = nil
		m.view = ResultListView
		return m, nil
	}
	return m, nil
}

func (m *Model) updateInner(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case QueryView:
		m.input, cmd = m.input.Update(msg)
	case ResultListView:
		m.songList, cmd = m.songList.Update(msg)
	}
	return m, cmd
}

func (m *Model) fetchSongs(query string) tea.Cmd {
	return func() tea.Msg {
		songs, err := m.search.Search(m.ctx, query, "", resultLimit)
		return songsFetchedMsg{songs: songs, err: err}
	}
}

func (m *Model) renderQuery() string {
	title := styles.title.Render("Song Search")

	status := ""
	if m.searching {
		status = styles.warn.Render("Searching...")
	} else if m.err != nil {
		status = styles.err.Render(fmt.Sprintf("Error: %v", m.err))
	}

	searchKey := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "search"))
	helpView := m.help.ShortHelpView([]key.Binding{searchKey, m.keys.quit})

	return fmt.Sprintf("%s\n%s\n\n%s\n\n%s", title, m.input.View(), status, helpView)
}

func (m *Model) renderResultList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.songList.View(), helpView)
}

func (m *Model) renderDetail() string {
	if m.selected == nil {
		return styles.err.Render("No song selected\n\nPress esc to go back")
	}

	title := styles.title.Render(m.selected.Title())
	origin := "local"
	if m.selected.ExternalID() != "" {
		origin = fmt.Sprintf("catalog (%s)", m.selected.ExternalID())
	}
	info := fmt.Sprintf("Artist: %s\nOrigin: %s\nID: %s", m.selected.Artist(), origin, m.selected.ID())

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.quit})

	return fmt.Sprintf("%s\n%s\n\n%s", title, info, helpView)
}
