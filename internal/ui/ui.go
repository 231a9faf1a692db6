package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/cinemania/internal/library"
	"github.com/desertthunder/cinemania/internal/models"
	"github.com/desertthunder/cinemania/internal/services"
)

// ViewState represents what the library page is currently showing.
type ViewState int

const (
	WaitingView ViewState = iota // No session notification yet
	LoadingView
	EmptyView
	FailureView
	LibraryView
)

const (
	headerHeight = 2
	footerHeight = 2
)

// Options holds the collaborators of the library view.
type Options struct {
	Sessions services.SessionProvider
	Loader   *library.Loader
	Catalog  services.MovieCatalog // Used for hero refreshes; may be nil
	Logger   *log.Logger
}

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	sessions services.SessionProvider
	loader   *library.Loader
	catalog  services.MovieCatalog
	logger   *log.Logger

	subscription services.Subscription
	sessionCh    chan *models.Session

	loads    *library.Generation
	session  *models.Session
	view     ViewState
	progress library.ProgressUpdate
	state    *library.State
	menu     filterMenu
	cursor   int

	hero            *models.Movie
	featuredID      models.MovieID
	dropped         int
	heroPlaceholder string

	spinner  spinner.Model
	viewport viewport.Model
	help     help.Model
	keys     keyMap
	width    int
	height   int
	page     pageLayout
}

// pageLayout records where the interactive parts of the scrollable page were drawn, in content rows.
type pageLayout struct {
	filterRow   int // -1 when the filter is hidden
	filterWidth int
	menuTop     int
	menuWidth   int
	menuItems   int
	menuHeight  int // item rows plus the bottom border
	gridTop     int // -1 when no grid is drawn
	cols        int
	cards       int
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, opts Options) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Model{
		ctx:             ctx,
		sessions:        opts.Sessions,
		loader:          opts.Loader,
		catalog:         opts.Catalog,
		logger:          logger.With("component", "tui"),
		loads:           &library.Generation{},
		view:            WaitingView,
		heroPlaceholder: "Select a movie to feature it here",
		spinner:         spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.title)),
		viewport:        viewport.New(80, 20),
		help:            help.New(),
		keys:            newKeyMap(),
		width:           80,
		height:          24,
		page:            pageLayout{filterRow: -1, gridTop: -1},
	}
}

// Init subscribes to session changes; the first notification starts the first load.
func (m *Model) Init() tea.Cmd {
	m.subscribe()
	return tea.Batch(m.spinner.Tick, m.waitForSession())
}

// Close ends the session subscription.
func (m *Model) Close() {
	if m.subscription != nil {
		m.subscription.Unsubscribe()
		m.subscription = nil
	}
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(1, msg.Height-headerHeight-footerHeight)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case sessionChangedMsg:
		m.session = msg.session
		return m, tea.Batch(m.startLoad(), m.waitForSession())

	case loadProgressMsg:
		if !m.loads.IsCurrent(msg.gen) {
			return m, nil
		}
		m.progress = msg.update
		return m, waitForProgress(msg.gen, msg.progress)

	case loadFinishedMsg:
		m.finishLoad(msg)
		return m, nil

	case heroMsg:
		if msg.id == m.featuredID && msg.movie != nil {
			m.hero = msg.movie
			m.refresh()
		}
		return m, nil

	case spinner.TickMsg:
		if m.view != LoadingView && m.view != WaitingView {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the header, the scrollable page and the key help.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderTitle())
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n\n")
	b.WriteString(m.renderHelp())

	return b.String()
}

func (m *Model) subscribe() {
	if m.sessions == nil || m.subscription != nil {
		return
	}

	ch := make(chan *models.Session, 1)
	m.sessionCh = ch
	m.subscription = m.sessions.OnSessionChange(func(s *models.Session) {
		// keep only the latest notification
		for {
			select {
			case ch <- s:
				return
			default:
				select {
				case <-ch:
				default:
				}
			}
		}
	})
}

func (m *Model) waitForSession() tea.Cmd {
	ch, ctx := m.sessionCh, m.ctx
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case s := <-ch:
			return sessionChangedMsg{session: s}
		case <-ctx.Done():
			return nil
		}
	}
}

// startLoad enters the loading state and runs a new load tagged with the next generation.
func (m *Model) startLoad() tea.Cmd {
	gen := m.loads.Next()

	m.view = LoadingView
	m.state = nil
	m.menu = filterMenu{}
	m.cursor = 0
	m.progress = library.ProgressUpdate{Phase: library.FetchIDs, Message: "Loading your library..."}
	m.refresh()

	if m.loader == nil {
		return nil
	}

	progress := make(chan library.ProgressUpdate, 32)
	loader, ctx, session := m.loader, m.ctx, m.session

	load := func() tea.Msg {
		result, err := loader.Load(ctx, session, progress)
		close(progress)
		return loadFinishedMsg{gen: gen, result: result, err: err}
	}

	return tea.Batch(load, waitForProgress(gen, progress), m.spinner.Tick)
}

func waitForProgress(gen uint64, progress <-chan library.ProgressUpdate) tea.Cmd {
	return func() tea.Msg {
		update, ok := <-progress
		if !ok {
			return nil
		}
		return loadProgressMsg{gen: gen, update: update, progress: progress}
	}
}

// finishLoad applies a load result when it belongs to the latest generation.
func (m *Model) finishLoad(msg loadFinishedMsg) {
	if !m.loads.IsCurrent(msg.gen) {
		m.logger.Debug("discarding stale load", "gen", msg.gen, "current", m.loads.Current())
		return
	}

	switch {
	case msg.err != nil:
		m.logger.Error("library load failed", "error", msg.err)
		m.view = FailureView
		m.state = nil

	case msg.result.Empty():
		m.view = EmptyView
		m.state = library.NewState(nil)
		m.setHero(nil, emptyHeroText)

	default:
		m.view = LibraryView
		m.state = library.NewState(msg.result.Movies)
		if featured, ok := m.state.Featured(); ok {
			m.setHero(&featured, "")
		} else {
			m.setHero(nil, emptyHeroText)
		}
	}

	m.dropped = msg.result.Dropped()
	m.menu = filterMenu{}
	m.cursor = 0
	m.viewport.GotoTop()
	m.refresh()
}

func (m *Model) setHero(movie *models.Movie, placeholder string) {
	m.hero = movie
	m.featuredID = ""
	if movie != nil {
		m.featuredID = movie.ID
	}
	if placeholder != "" {
		m.heroPlaceholder = placeholder
	}
}

// displayed returns the movies currently visible in the grid.
func (m *Model) displayed() []models.Movie {
	if m.state == nil {
		return nil
	}
	return m.state.Displayed()
}

// filterVisible reports whether the genre control is shown: only after a load that produced movies.
func (m *Model) filterVisible() bool {
	return m.view == LibraryView && m.state != nil && !m.state.Empty()
}

// selectGenre applies a genre selection, closes the menu and features the first match.
func (m *Model) selectGenre(id string) {
	if m.state == nil {
		return
	}

	movies := m.state.SelectGenre(id)
	m.menu.apply(itemSelected)
	m.cursor = 0
	if len(movies) > 0 {
		first := movies[0]
		m.setHero(&first, "")
	}
	m.refresh()
}

// activateCard features the card at index i and scrolls back to the top of the page.
func (m *Model) activateCard(i int) tea.Cmd {
	movies := m.displayed()
	if i < 0 || i >= len(movies) {
		return nil
	}

	m.cursor = i
	movie := movies[i]
	m.setHero(&movie, "")
	m.refresh()
	m.viewport.GotoTop()

	return m.updateFeatured(movie.ID)
}

// updateFeatured refreshes the hero with full details for id.
func (m *Model) updateFeatured(id models.MovieID) tea.Cmd {
	if m.catalog == nil {
		return nil
	}
	catalog, ctx := m.catalog, m.ctx
	return func() tea.Msg {
		return heroMsg{id: id, movie: catalog.FetchMovieDetails(ctx, id)}
	}
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.quit) {
		return m, tea.Quit
	}

	if m.menu.isOpen() {
		return m.handleMenuKeys(msg)
	}

	switch {
	case key.Matches(msg, m.keys.reload):
		return m, m.startLoad()
	case key.Matches(msg, m.keys.filter):
		if m.filterVisible() {
			m.menu.apply(headerActivated)
			m.menu.cursor = m.selectedGenreIndex()
			m.refresh()
		}
	case key.Matches(msg, m.keys.enter):
		return m, m.activateCard(m.cursor)
	case key.Matches(msg, m.keys.left):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.right):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.up):
		m.moveCursor(-m.page.cols)
	case key.Matches(msg, m.keys.down):
		m.moveCursor(m.page.cols)
	}
	return m, nil
}

func (m *Model) handleMenuKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	genres := m.state.Genres()

	switch {
	case key.Matches(msg, m.keys.back):
		m.menu.apply(pointerOutside)
	case key.Matches(msg, m.keys.filter):
		m.menu.apply(headerActivated)
	case key.Matches(msg, m.keys.up):
		m.menu.cursor = max(0, m.menu.cursor-1)
	case key.Matches(msg, m.keys.down):
		m.menu.cursor = min(len(genres)-1, m.menu.cursor+1)
	case key.Matches(msg, m.keys.enter):
		if m.menu.cursor >= 0 && m.menu.cursor < len(genres) {
			m.selectGenre(genres[m.menu.cursor].ID)
			return m, nil
		}
	}
	m.refresh()
	return m, nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	row := msg.Y - headerHeight + m.viewport.YOffset
	inViewport := msg.Y >= headerHeight && msg.Y < headerHeight+m.viewport.Height

	if m.menu.isOpen() {
		if inViewport {
			if item, ok := m.menuItemAt(msg.X, row); ok {
				m.selectGenre(m.state.Genres()[item].ID)
				return m, nil
			}
			if row == m.page.filterRow && msg.X < m.page.filterWidth {
				m.menu.apply(headerActivated)
				m.refresh()
				return m, nil
			}
			if m.inFilterControl(msg.X, row) {
				return m, nil
			}
		}

		// the press still reaches whatever lies under it once the menu closes
		card, onCard := m.cardAt(msg.X, row)
		m.menu.apply(pointerOutside)
		m.refresh()
		if inViewport && onCard {
			return m, m.activateCard(card)
		}
		return m, nil
	}

	if !inViewport {
		return m, nil
	}

	if m.page.filterRow >= 0 && row == m.page.filterRow && msg.X < m.page.filterWidth {
		m.menu.apply(headerActivated)
		m.menu.cursor = m.selectedGenreIndex()
		m.refresh()
		return m, nil
	}

	if i, ok := m.cardAt(msg.X, row); ok {
		return m, m.activateCard(i)
	}
	return m, nil
}

// menuItemAt maps a content position to a genre menu item.
func (m *Model) menuItemAt(x, row int) (int, bool) {
	if row < m.page.menuTop || row >= m.page.menuTop+m.page.menuItems || x >= m.page.menuWidth {
		return 0, false
	}
	return row - m.page.menuTop, true
}

// inFilterControl reports whether a content position falls on the genre header row or the open
// menu, borders included.
func (m *Model) inFilterControl(x, row int) bool {
	if m.page.filterRow < 0 {
		return false
	}
	if x >= max(m.page.filterWidth, m.page.menuWidth) {
		return false
	}
	return row == m.page.filterRow ||
		m.menu.isOpen() && row >= m.page.menuTop && row < m.page.menuTop+m.page.menuHeight
}

// cardAt maps a content position to a card index.
func (m *Model) cardAt(x, row int) (int, bool) {
	if m.page.gridTop < 0 || row < m.page.gridTop || x < 0 {
		return 0, false
	}
	col := x / cardWidth
	if col >= m.page.cols {
		return 0, false
	}
	i := ((row-m.page.gridTop)/cardHeight)*m.page.cols + col
	if i >= m.page.cards {
		return 0, false
	}
	return i, true
}

func (m *Model) moveCursor(delta int) {
	count := len(m.displayed())
	if count == 0 || delta == 0 {
		return
	}
	next := m.cursor + delta
	if next < 0 || next >= count {
		return
	}
	m.cursor = next
	m.refresh()
	m.ensureCursorVisible()
}

func (m *Model) ensureCursorVisible() {
	if m.page.gridTop < 0 || m.page.cols == 0 {
		return
	}
	top := m.page.gridTop + (m.cursor/m.page.cols)*cardHeight
	bottom := top + cardHeight
	switch {
	case top < m.viewport.YOffset:
		m.viewport.SetYOffset(top)
	case bottom > m.viewport.YOffset+m.viewport.Height:
		m.viewport.SetYOffset(bottom - m.viewport.Height)
	}
}

func (m *Model) selectedGenreIndex() int {
	if m.state == nil {
		return 0
	}
	for i, g := range m.state.Genres() {
		if g.ID == m.state.SelectedGenreID {
			return i
		}
	}
	return 0
}

// refresh re-renders the scrollable page into the viewport and records its layout.
func (m *Model) refresh() {
	content, page := m.composePage()
	m.page = page
	m.viewport.SetContent(content)
}

// composePage renders the hero, the genre control and the grid for the current view.
func (m *Model) composePage() (string, pageLayout) {
	page := pageLayout{filterRow: -1, gridTop: -1, cols: gridColumns(m.width)}
	var sections []string
	row := 0

	add := func(s string) {
		sections = append(sections, s)
		row += lipgloss.Height(s)
	}

	switch m.view {
	case WaitingView, LoadingView:
		if m.hero != nil {
			add(renderHero(m.hero, m.heroPlaceholder, m.width))
		}
		return strings.Join(sections, "\n"), page

	case EmptyView:
		add(renderHero(nil, m.heroPlaceholder, m.width))
		add("")
		add(styles.placeholder.Width(max(m.width, 1)).Render(emptyLibraryText))
		return strings.Join(sections, "\n"), page

	case FailureView:
		add(renderHero(m.hero, m.heroPlaceholder, m.width))
		add("")
		add(styles.err.Width(max(m.width, 1)).Align(lipgloss.Center).Render(failureText))
		return strings.Join(sections, "\n"), page
	}

	add(renderHero(m.hero, m.heroPlaceholder, m.width))
	add("")

	if m.filterVisible() {
		header := renderFilterHeader(m.state.SelectedGenre(), m.menu.isOpen())
		page.filterRow = row
		page.filterWidth = lipgloss.Width(header)
		add(header)

		if m.menu.isOpen() {
			menu := renderFilterMenu(m.state.Genres(), m.state.SelectedGenreID, m.menu.cursor)
			page.menuTop = row
			page.menuWidth = lipgloss.Width(menu)
			page.menuItems = len(m.state.Genres())
			page.menuHeight = lipgloss.Height(menu)
			add(menu)
		}
		add("")
	}

	movies := m.displayed()
	page.gridTop = row
	page.cards = len(movies)
	add(renderMovies(movies, m.width, m.cursor))

	return strings.Join(sections, "\n"), page
}

func (m *Model) renderTitle() string {
	who := "signed out"
	if m.session != nil {
		who = m.session.Email
		if m.session.Name != "" {
			who = m.session.Name
		}
	}
	return styles.title.Render("My Library") + " " + styles.help.Render(who)
}

func (m *Model) renderStatus() string {
	switch m.view {
	case WaitingView:
		return m.spinner.View() + " Checking session..."
	case LoadingView:
		msg := m.progress.Message
		if msg == "" {
			msg = "Loading your library..."
		}
		return m.spinner.View() + " " + msg
	case LibraryView:
		count := len(m.displayed())
		noun := "movies"
		if count == 1 {
			noun = "movie"
		}
		status := styles.ok.Render(fmt.Sprintf("%d %s", count, noun)) + styles.help.Render(" · "+m.state.SelectedGenre().Name)
		if m.dropped > 0 {
			status += styles.warn.Render(fmt.Sprintf(" · %d unavailable", m.dropped))
		}
		return status
	case FailureView:
		return styles.err.Render("Load failed")
	default:
		return ""
	}
}

func (m *Model) renderHelp() string {
	if m.menu.isOpen() {
		return m.help.ShortHelpView(m.keys.menuHelp())
	}
	if m.view == LibraryView {
		return m.help.ShortHelpView(m.keys.ShortHelp())
	}
	return m.help.ShortHelpView([]key.Binding{m.keys.reload, m.keys.quit})
}
