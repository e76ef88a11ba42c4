package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/ryozaki/mbx/internal/api"
	"github.com/ryozaki/mbx/internal/models"
	"github.com/ryozaki/mbx/internal/query"
	"github.com/ryozaki/mbx/internal/shared"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	BrowseView ViewState = iota
	DetailView
	LibraryView
)

var sortCycle = []query.SortKey{query.SortPopular, query.SortRating, query.SortNewest, query.SortTitle}

// Model represents the TUI application state.
type Model struct {
	ctx        context.Context
	view       ViewState
	client     *api.Client
	controller *query.Controller
	width      int
	height     int
	resultList list.Model
	search     textinput.Model
	searching  bool
	selected   *models.Manga
	reviews    []models.Review
	library    []models.LibraryEntry
	status     string
	err        error
	help       help.Model
	keys       keyMap
}

// keyMap defines the key bindings for the TUI.
type keyMap struct {
	up       key.Binding
	down     key.Binding
	enter    key.Binding
	back     key.Binding
	search   key.Binding
	nextPage key.Binding
	prevPage key.Binding
	sort     key.Binding
	rating   key.Binding
	library  key.Binding
	track    key.Binding
	quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		nextPage: key.NewBinding(
			key.WithKeys("n", "right"),
			key.WithHelp("n/→", "next page"),
		),
		prevPage: key.NewBinding(
			key.WithKeys("p", "left"),
			key.WithHelp("p/←", "prev page"),
		),
		sort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sort"),
		),
		rating: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "min rating"),
		),
		library: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "library"),
		),
		track: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "track"),
		),
		quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter},
		{k.search, k.nextPage, k.prevPage},
		{k.sort, k.rating, k.library},
		{k.track, k.back, k.quit},
	}
}

// mangaItem wraps [models.Manga] to implement list.Item.
type mangaItem struct {
	manga models.Manga
}

func (i mangaItem) FilterValue() string { return i.manga.Title }
func (i mangaItem) Title() string       { return i.manga.Title }
func (i mangaItem) Description() string {
	desc := shared.FormatRating(i.manga.Rating)
	if len(i.manga.Tags) > 0 {
		desc = fmt.Sprintf("%s • %s", desc, strings.Join(i.manga.Tags, ", "))
	}
	return desc
}

// entryItem wraps [models.LibraryEntry] to implement list.Item.
type entryItem struct {
	entry models.LibraryEntry
}

func (i entryItem) FilterValue() string {
	if i.entry.Manga != nil {
		return i.entry.Manga.Title
	}
	return fmt.Sprintf("#%d", i.entry.MangaID)
}
func (i entryItem) Title() string { return i.FilterValue() }
func (i entryItem) Description() string {
	return fmt.Sprintf("%s • ch. %d", i.entry.Status, i.entry.Progress)
}

type pageFetchedMsg struct {
	seq  uint64
	page *models.MangaPage
	err  error
}

type detailFetchedMsg struct {
	manga   *models.Manga
	reviews []models.Review
	err     error
}

type libraryFetchedMsg struct {
	entries []models.LibraryEntry
	err     error
}

type entryTrackedMsg struct {
	entry *models.LibraryEntry
	err   error
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, client *api.Client, controller *query.Controller) *Model {
	search := textinput.New()
	search.Placeholder = "Search the catalogue..."
	search.CharLimit = 100

	return &Model{
		ctx:        ctx,
		view:       BrowseView,
		client:     client,
		controller: controller,
		search:     search,
		help:       help.New(),
		keys:       newKeyMap(),
	}
}

// Init initializes the TUI by fetching the first catalogue page.
func (m *Model) Init() tea.Cmd {
	return m.fetchPage()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resultList.SetSize(msg.Width-4, msg.Height-10)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case BrowseView:
			return m.handleBrowseKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		case LibraryView:
			return m.handleLibraryKeys(msg)
		}

	case pageFetchedMsg:
		if !m.controller.Apply(msg.seq, msg.page, msg.err) {
			return m, nil
		}
		if msg.err != nil {
			return m, nil
		}
		results := m.controller.Results()
		items := make([]list.Item, len(results))
		for i, manga := range results {
			items[i] = mangaItem{manga: manga}
		}
		m.resultList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.resultList.Title = m.browseTitle()
		m.resultList.SetShowHelp(false)
		m.resultList.SetSize(m.width-4, m.height-10)
		return m, nil

	case detailFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.view = BrowseView
			return m, nil
		}
		m.selected = msg.manga
		m.reviews = msg.reviews
		m.status = ""
		m.view = DetailView
		return m, nil

	case libraryFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.view = BrowseView
			return m, nil
		}
		m.library = msg.entries
		items := make([]list.Item, len(msg.entries))
		for i, entry := range msg.entries {
			items[i] = entryItem{entry: entry}
		}
		m.resultList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.resultList.Title = fmt.Sprintf("Library (%d entries)", len(msg.entries))
		m.resultList.SetShowHelp(false)
		m.resultList.SetSize(m.width-4, m.height-10)
		m.view = LibraryView
		return m, nil

	case entryTrackedMsg:
		if msg.err != nil {
			m.status = styles.error.Render(fmt.Sprintf("✗ %v", msg.err))
		} else {
			m.status = styles.success.Render(fmt.Sprintf("✓ Added to library as %s", msg.entry.Status))
		}
		return m, nil
	}

	return m.updateList(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case BrowseView:
		return m.renderBrowse()
	case DetailView:
		return m.renderDetail()
	case LibraryView:
		return m.renderLibrary()
	default:
		return ""
	}
}

func (m *Model) handleBrowseKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		switch msg.String() {
		case "enter":
			m.searching = false
			m.search.Blur()
			m.controller.SetSearch(m.search.Value())
			return m, m.fetchPage()
		case "esc":
			m.searching = false
			m.search.Blur()
			return m, nil
		}

		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "/":
		m.searching = true
		return m, m.search.Focus()
	case "enter":
		selected := m.resultList.SelectedItem()
		if selected != nil {
			if item, ok := selected.(mangaItem); ok {
				return m, m.fetchDetail(item.manga.ID)
			}
		}
	case "n", "right":
		if m.controller.Query().Page() < m.controller.TotalPages() {
			m.controller.SetPage(m.controller.Query().Page() + 1)
			return m, m.fetchPage()
		}
	case "p", "left":
		if m.controller.Query().Page() > 1 {
			m.controller.SetPage(m.controller.Query().Page() - 1)
			return m, m.fetchPage()
		}
	case "s":
		m.controller.SetSort(nextSort(m.controller.Query().Sort()))
		return m, m.fetchPage()
	case "r":
		m.controller.SetMinRating(nextRating(m.controller.Query().MinRating()))
		return m, m.fetchPage()
	case "l":
		return m, m.fetchLibrary()
	}

	var cmd tea.Cmd
	m.resultList, cmd = m.resultList.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = BrowseView
		m.err = nil
		return m, nil
	case "a":
		return m, m.trackEntry(m.selected.ID)
	}
	return m, nil
}

func (m *Model) handleLibraryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = BrowseView
		m.err = nil
		return m, m.fetchPage()
	case "enter":
		selected := m.resultList.SelectedItem()
		if selected != nil {
			if item, ok := selected.(entryItem); ok {
				return m, m.fetchDetail(item.entry.MangaID)
			}
		}
	}

	var cmd tea.Cmd
	m.resultList, cmd = m.resultList.Update(msg)
	return m, cmd
}

func (m *Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case BrowseView, LibraryView:
		m.resultList, cmd = m.resultList.Update(msg)
	}
	return m, cmd
}

func (m *Model) fetchPage() tea.Cmd {
	seq, params := m.controller.Issue()
	return func() tea.Msg {
		page, err := m.client.SearchManga(m.ctx, params)
		return pageFetchedMsg{seq: seq, page: page, err: err}
	}
}

func (m *Model) fetchDetail(id int) tea.Cmd {
	return func() tea.Msg {
		manga, err := m.client.GetManga(m.ctx, id)
		if err != nil {
			return detailFetchedMsg{err: err}
		}
		// Reviews are best effort; the detail view renders without them.
		reviews, _ := m.client.Reviews(m.ctx, id)
		return detailFetchedMsg{manga: manga, reviews: reviews}
	}
}

func (m *Model) fetchLibrary() tea.Cmd {
	return func() tea.Msg {
		entries, err := m.client.Library(m.ctx)
		return libraryFetchedMsg{entries: entries, err: err}
	}
}

func (m *Model) trackEntry(id int) tea.Cmd {
	return func() tea.Msg {
		entry, err := m.client.AddToLibrary(m.ctx, id, models.StatusPlanToRead)
		return entryTrackedMsg{entry: entry, err: err}
	}
}

func nextSort(current query.SortKey) query.SortKey {
	for i, key := range sortCycle {
		if key == current {
			return sortCycle[(i+1)%len(sortCycle)]
		}
	}
	return sortCycle[0]
}

func nextRating(current float64) float64 {
	for i, v := range query.RatingThresholds {
		if v == current {
			return query.RatingThresholds[(i+1)%len(query.RatingThresholds)]
		}
	}
	return query.RatingThresholds[0]
}

func (m *Model) browseTitle() string {
	q := m.controller.Query()
	parts := []string{"Catalogue"}
	if q.Search() != "" {
		parts = append(parts, fmt.Sprintf("%q", q.Search()))
	}
	if len(q.Tags()) > 0 {
		parts = append(parts, strings.Join(q.Tags(), ", "))
	}
	if q.MinRating() > 0 {
		parts = append(parts, fmt.Sprintf("≥%s", shared.FormatRating(q.MinRating())))
	}
	return strings.Join(parts, " · ")
}

func (m *Model) renderBrowse() string {
	var header string
	if m.searching {
		header = m.search.View()
	} else {
		header = m.renderPagination()
	}

	body := m.resultList.View()
	if m.controller.State() == query.StateLoading {
		body = styles.warning.Render("Loading...")
	}
	if err := m.controller.Err(); err != nil {
		body = styles.error.Render(fmt.Sprintf("Error: %v", err))
	}
	if m.err != nil {
		body = styles.error.Render(fmt.Sprintf("Error: %v", m.err))
	}

	helpKeys := []key.Binding{m.keys.search, m.keys.enter, m.keys.nextPage, m.keys.sort, m.keys.library, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s\n\n%s", header, body, helpView)
}

// renderPagination shows the window of reachable pages with sort context.
func (m *Model) renderPagination() string {
	current := m.controller.Query().Page()
	total := m.controller.TotalPages()

	var b strings.Builder
	for _, page := range query.PageWindow(current, total) {
		if page == query.Ellipsis {
			b.WriteString(" … ")
			continue
		}
		if page == current {
			b.WriteString(styles.success.Render(fmt.Sprintf(" [%d] ", page)))
		} else {
			b.WriteString(fmt.Sprintf(" %d ", page))
		}
	}

	sort := styles.help.Render(fmt.Sprintf("sort: %s", m.controller.Query().Sort()))
	return fmt.Sprintf("%s %s", b.String(), sort)
}

func (m *Model) renderDetail() string {
	if m.selected == nil {
		return styles.error.Render("No entry selected\n\nPress esc to go back")
	}

	title := styles.title.Render(m.selected.Title)

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n")
	if m.selected.Year > 0 {
		b.WriteString(fmt.Sprintf("Year: %d\n", m.selected.Year))
	}
	b.WriteString(fmt.Sprintf("Rating: %s\n", shared.FormatRating(m.selected.Rating)))
	if len(m.selected.Tags) > 0 {
		b.WriteString(fmt.Sprintf("Tags: %s\n", strings.Join(m.selected.Tags, ", ")))
	}
	if m.selected.Description != "" {
		b.WriteString(fmt.Sprintf("\n%s\n", m.selected.Description))
	}

	if len(m.reviews) > 0 {
		b.WriteString(fmt.Sprintf("\n%s\n", styles.title.Render(fmt.Sprintf("Reviews (%d)", len(m.reviews)))))
		for _, review := range m.reviews {
			b.WriteString(fmt.Sprintf("  • %s %s\n", shared.FormatRating(review.Rating), review.Content))
		}
	}

	if m.status != "" {
		b.WriteString(fmt.Sprintf("\n%s\n", m.status))
	}

	helpKeys := []key.Binding{m.keys.track, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n%s", b.String(), helpView)
}

func (m *Model) renderLibrary() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.resultList.View(), helpView)
}
