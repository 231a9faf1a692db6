package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/cinemania/internal/library"
	"github.com/desertthunder/cinemania/internal/models"
	tu "github.com/desertthunder/cinemania/internal/testing"
	"github.com/google/go-cmp/cmp"
)

var (
	action = models.Genre{ID: "28", Name: "Action"}
	drama  = models.Genre{ID: "18", Name: "Drama"}
	comedy = models.Genre{ID: "35", Name: "Comedy"}
)

func testMovies() []models.Movie {
	return []models.Movie{
		{ID: "1", Title: "The Matrix", ReleaseDate: "1999-03-31", VoteAverage: 8.2, Genres: []models.Genre{action, drama}},
		{ID: "2", Title: "Airplane!", ReleaseDate: "1980-07-02", VoteAverage: 7.3, Genres: []models.Genre{comedy}},
		{ID: "3", Title: "Heat", ReleaseDate: "1995-12-15", VoteAverage: 7.9, Genres: []models.Genre{action}},
	}
}

func testSession() *models.Session {
	return &models.Session{ID: "s1", UserID: "u1", Email: "neo@example.com", Name: "Neo"}
}

type fixture struct {
	model    *Model
	catalog  *tu.MockCatalog
	source   *tu.MockLibrarySource
	sessions *tu.MockSessionProvider
}

func newFixture(t *testing.T, movies ...models.Movie) *fixture {
	t.Helper()

	logger := log.New(&strings.Builder{})
	ids := make([]models.MovieID, len(movies))
	for i, m := range movies {
		ids[i] = m.ID
	}

	f := &fixture{
		catalog:  tu.NewMockCatalog(movies...),
		source:   &tu.MockLibrarySource{IDs: ids},
		sessions: tu.NewMockSessionProvider(testSession()),
	}
	f.model = NewModel(context.Background(), Options{
		Sessions: f.sessions,
		Loader:   library.NewLoader(f.source, f.catalog, logger),
		Catalog:  f.catalog,
		Logger:   logger,
	})
	f.model.Update(tea.WindowSizeMsg{Width: 120, Height: 80})
	return f
}

// startSession delivers a session notification and returns the generation it started.
func (f *fixture) startSession(session *models.Session) uint64 {
	f.model.Update(sessionChangedMsg{session: session})
	return f.model.loads.Current()
}

// runLoad performs the load for the current generation synchronously and applies its result.
func (f *fixture) runLoad(t *testing.T) {
	t.Helper()
	gen := f.model.loads.Current()
	result, err := f.model.loader.Load(context.Background(), f.model.session, nil)
	f.model.Update(loadFinishedMsg{gen: gen, result: result, err: err})
}

func (f *fixture) loadLibrary(t *testing.T) {
	t.Helper()
	f.startSession(testSession())
	f.runLoad(t)
}

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func click(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
}

func displayedIDs(m *Model) []models.MovieID {
	movies := m.displayed()
	ids := make([]models.MovieID, len(movies))
	for i, mv := range movies {
		ids[i] = mv.ID
	}
	return ids
}

func TestModelLoadCycle(t *testing.T) {
	t.Run("session change enters the loading state", func(t *testing.T) {
		f := newFixture(t, testMovies()...)
		f.loadLibrary(t)

		_, cmd := f.model.Update(sessionChangedMsg{session: testSession()})

		if cmd == nil {
			t.Fatal("expected load command")
		}
		if f.model.view != LoadingView {
			t.Errorf("expected LoadingView, got %v", f.model.view)
		}
		if f.model.state != nil {
			t.Error("expected grid to be cleared while loading")
		}
		if f.model.filterVisible() {
			t.Error("expected filter to be hidden while loading")
		}
		if !strings.Contains(f.model.View(), "Loading your library") {
			t.Error("expected loading status in view")
		}
	})

	t.Run("successful load renders grid and hero", func(t *testing.T) {
		f := newFixture(t, testMovies()...)
		f.loadLibrary(t)

		m := f.model
		if m.view != LibraryView {
			t.Fatalf("expected LibraryView, got %v", m.view)
		}
		if diff := cmp.Diff([]models.MovieID{"1", "2", "3"}, displayedIDs(m)); diff != "" {
			t.Errorf("displayed mismatch (-want +got):\n%s", diff)
		}
		if m.state.SelectedGenreID != library.AllGenresID {
			t.Errorf("expected selection %q, got %q", library.AllGenresID, m.state.SelectedGenreID)
		}
		if m.hero == nil || m.hero.ID != "1" {
			t.Errorf("expected first movie featured, got %+v", m.hero)
		}
		if !m.filterVisible() {
			t.Error("expected filter to be visible")
		}

		view := m.View()
		for _, want := range []string{"The Matrix", "Airplane!", "Heat", "Genre: All Genres"} {
			if !strings.Contains(view, want) {
				t.Errorf("expected view to contain %q", want)
			}
		}
	})

	t.Run("empty library shows placeholder hero", func(t *testing.T) {
		f := newFixture(t)
		f.loadLibrary(t)

		m := f.model
		if m.view != EmptyView {
			t.Fatalf("expected EmptyView, got %v", m.view)
		}
		if m.filterVisible() {
			t.Error("expected filter to be hidden")
		}
		if m.hero != nil {
			t.Errorf("expected no featured movie, got %+v", m.hero)
		}
		if !strings.Contains(m.View(), emptyHeroText) {
			t.Errorf("expected hero placeholder %q in view", emptyHeroText)
		}
		if len(f.catalog.Calls()) != 0 {
			t.Errorf("expected no detail fetches, got %v", f.catalog.Calls())
		}
	})

	t.Run("signed out session loads an empty library", func(t *testing.T) {
		f := newFixture(t, testMovies()...)
		f.startSession(nil)
		f.runLoad(t)

		if f.model.view != EmptyView {
			t.Errorf("expected EmptyView, got %v", f.model.view)
		}
	})

	t.Run("every fetch failing shows no movies found", func(t *testing.T) {
		f := newFixture(t)
		f.source.IDs = []models.MovieID{"404", "405"}
		f.loadLibrary(t)

		m := f.model
		if m.view != LibraryView {
			t.Fatalf("expected LibraryView, got %v", m.view)
		}
		if m.filterVisible() {
			t.Error("expected filter to stay hidden without movies")
		}
		view := m.View()
		if !strings.Contains(view, emptyGenreText) {
			t.Errorf("expected %q in view", emptyGenreText)
		}
		if !strings.Contains(view, emptyHeroText) {
			t.Errorf("expected hero placeholder %q in view", emptyHeroText)
		}
	})

	t.Run("partial failure keeps saved order", func(t *testing.T) {
		f := newFixture(t, testMovies()...)
		f.source.IDs = []models.MovieID{"3", "404", "1"}
		f.loadLibrary(t)

		if diff := cmp.Diff([]models.MovieID{"3", "1"}, displayedIDs(f.model)); diff != "" {
			t.Errorf("displayed mismatch (-want +got):\n%s", diff)
		}
		if f.model.hero == nil || f.model.hero.ID != "3" {
			t.Errorf("expected movie 3 featured, got %+v", f.model.hero)
		}
	})

	t.Run("source failure shows failure message", func(t *testing.T) {
		f := newFixture(t, testMovies()...)
		f.source.Err = errors.New("database is locked")
		f.loadLibrary(t)

		m := f.model
		if m.view != FailureView {
			t.Fatalf("expected FailureView, got %v", m.view)
		}
		if m.filterVisible() {
			t.Error("expected filter to be hidden")
		}
		if !strings.Contains(m.View(), "Something went wrong") {
			t.Error("expected failure message in view")
		}
	})

	t.Run("reload starts a new generation", func(t *testing.T) {
		f := newFixture(t, testMovies()...)
		f.loadLibrary(t)
		before := f.model.loads.Current()

		_, cmd := f.model.Update(runeKey("r"))
		if cmd == nil {
			t.Fatal("expected load command")
		}
		if f.model.loads.Current() != before+1 {
			t.Errorf("expected generation %d, got %d", before+1, f.model.loads.Current())
		}
		if f.model.view != LoadingView {
			t.Errorf("expected LoadingView, got %v", f.model.view)
		}
	})
}

func TestModelGenerations(t *testing.T) {
	t.Run("stale results are discarded", func(t *testing.T) {
		f := newFixture(t, testMovies()...)
		first := f.startSession(testSession())
		second := f.startSession(&models.Session{ID: "s2", UserID: "u2", Email: "trinity@example.com"})

		stale := library.Result{Movies: testMovies()[:1], Requested: 1}
		f.model.Update(loadFinishedMsg{gen: first, result: stale})
		if f.model.view != LoadingView {
			t.Fatalf("expected stale result to be ignored, view is %v", f.model.view)
		}

		current := library.Result{Movies: testMovies()[1:], Requested: 2}
		f.model.Update(loadFinishedMsg{gen: second, result: current})
		if diff := cmp.Diff([]models.MovieID{"2", "3"}, displayedIDs(f.model)); diff != "" {
			t.Errorf("displayed mismatch (-want +got):\n%s", diff)
		}

		f.model.Update(loadFinishedMsg{gen: first, err: errors.New("late failure")})
		if f.model.view != LibraryView {
			t.Errorf("expected late stale failure to be ignored, view is %v", f.model.view)
		}
	})

	t.Run("stale progress is discarded", func(t *testing.T) {
		f := newFixture(t, testMovies()...)
		first := f.startSession(testSession())
		second := f.startSession(testSession())

		_, cmd := f.model.Update(loadProgressMsg{gen: first, update: library.ProgressUpdate{Message: "stale"}})
		if cmd != nil {
			t.Error("expected no follow-up command for stale progress")
		}
		if f.model.progress.Message == "stale" {
			t.Error("expected stale progress to be ignored")
		}

		ch := make(chan library.ProgressUpdate)
		close(ch)
		_, cmd = f.model.Update(loadProgressMsg{gen: second, update: library.ProgressUpdate{Message: "Fetching 1 of 3"}, progress: ch})
		if f.model.progress.Message != "Fetching 1 of 3" {
			t.Errorf("expected current progress, got %q", f.model.progress.Message)
		}
		if cmd == nil {
			t.Fatal("expected progress listener to continue")
		}
		if msg := cmd(); msg != nil {
			t.Errorf("expected nil message from closed channel, got %#v", msg)
		}
	})
}

func TestModelSessions(t *testing.T) {
	t.Run("init subscribes and delivers the current session", func(t *testing.T) {
		f := newFixture(t)
		f.model.Init()
		defer f.model.Close()

		if f.sessions.Subscribers() != 1 {
			t.Fatalf("expected 1 subscriber, got %d", f.sessions.Subscribers())
		}
		msg, ok := f.model.waitForSession()().(sessionChangedMsg)
		if !ok {
			t.Fatal("expected sessionChangedMsg")
		}
		if msg.session == nil || msg.session.ID != "s1" {
			t.Errorf("expected session s1, got %+v", msg.session)
		}
	})

	t.Run("only the latest pending session is kept", func(t *testing.T) {
		f := newFixture(t)
		f.model.Init()
		defer f.model.Close()

		f.sessions.Set(&models.Session{ID: "s2"})
		f.sessions.Set(nil)

		msg := f.model.waitForSession()().(sessionChangedMsg)
		if msg.session != nil {
			t.Errorf("expected signed out session, got %+v", msg.session)
		}
	})

	t.Run("close unsubscribes", func(t *testing.T) {
		f := newFixture(t)
		f.model.Init()
		f.model.Close()

		if f.sessions.Subscribers() != 0 {
			t.Errorf("expected no subscribers, got %d", f.sessions.Subscribers())
		}
	})

	t.Run("cancelled context ends the session wait", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		m := NewModel(ctx, Options{Sessions: tu.NewMockSessionProvider(nil)})
		m.subscribe()
		<-m.sessionCh
		cancel()

		if msg := m.waitForSession()(); msg != nil {
			t.Errorf("expected nil message, got %#v", msg)
		}
	})
}

func TestModelGenreFilter(t *testing.T) {
	t.Run("keyboard selection filters and re-features", func(t *testing.T) {
		f := newFixture(t, testMovies()...)
		f.loadLibrary(t)
		m := f.model

		m.Update(runeKey("f"))
		if !m.menu.isOpen() {
			t.Fatal("expected menu to open")
		}

		// all, Action, Drama, Comedy
		m.Update(tea.KeyMsg{Type: tea.KeyDown})
		m.Update(tea.KeyMsg{Type: tea.KeyDown})
		m.Update(tea.KeyMsg{Type: tea.KeyDown})
		m.Update(tea.KeyMsg{Type: tea.KeyEnter})

		if m.menu.isOpen() {
			t.Error("expected menu to close after selection")
		}
		if m.state.SelectedGenreID != "35" {
			t.Errorf("expected genre 35, got %q", m.state.SelectedGenreID)
		}
		if diff := cmp.Diff([]models.MovieID{"2"}, displayedIDs(m)); diff != "" {
			t.Errorf("displayed mismatch (-want +got):\n%s", diff)
		}
		if m.hero == nil || m.hero.ID != "2" {
			t.Errorf("expected movie 2 featured, got %+v", m.hero)
		}
		if !strings.Contains(m.View(), "Genre: Comedy") {
			t.Error("expected header to show the selected genre")
		}
	})

	t.Run("escape closes without changing selection", func(t *testing.T) {
		f := newFixture(t, testMovies()...)
		f.loadLibrary(t)
		m := f.model

		m.Update(runeKey("f"))
		m.Update(tea.KeyMsg{Type: tea.KeyDown})
		m.Update(tea.KeyMsg{Type: tea.KeyEsc})

		if m.menu.isOpen() {
			t.Error("expected menu to close")
		}
		if m.state.SelectedGenreID != library.AllGenresID {
			t.Errorf("expected selection to be unchanged, got %q", m.state.SelectedGenreID)
		}
		if len(m.displayed()) != 3 {
			t.Errorf("expected 3 movies, got %d", len(m.displayed()))
		}
	})

	t.Run("filter key is ignored while loading", func(t *testing.T) {
		f := newFixture(t, testMovies()...)
		f.startSession(testSession())

		f.model.Update(runeKey("f"))
		if f.model.menu.isOpen() {
			t.Error("expected menu to stay closed while loading")
		}
	})

	t.Run("reload resets the selection", func(t *testing.T) {
		f := newFixture(t, testMovies()...)
		f.loadLibrary(t)
		f.model.selectGenre("28")
		f.loadLibrary(t)

		if f.model.state.SelectedGenreID != library.AllGenresID {
			t.Errorf("expected selection reset, got %q", f.model.state.SelectedGenreID)
		}
	})
}

func TestModelMouse(t *testing.T) {
	t.Run("header toggles and items select", func(t *testing.T) {
		f := newFixture(t, testMovies()...)
		f.loadLibrary(t)
		m := f.model

		m.Update(click(1, headerHeight+m.page.filterRow))
		if !m.menu.isOpen() {
			t.Fatal("expected header press to open the menu")
		}

		// Drama
		m.Update(click(2, headerHeight+m.page.menuTop+2))
		if m.menu.isOpen() {
			t.Error("expected menu to close after item press")
		}
		if m.state.SelectedGenreID != "18" {
			t.Errorf("expected genre 18, got %q", m.state.SelectedGenreID)
		}
		if diff := cmp.Diff([]models.MovieID{"1"}, displayedIDs(m)); diff != "" {
			t.Errorf("displayed mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("press outside closes without side effects", func(t *testing.T) {
		f := newFixture(t, testMovies()...)
		f.loadLibrary(t)
		m := f.model

		m.Update(click(1, headerHeight+m.page.filterRow))
		m.Update(click(110, 0))

		if m.menu.isOpen() {
			t.Error("expected menu to close")
		}
		if m.state.SelectedGenreID != library.AllGenresID {
			t.Errorf("expected selection to be unchanged, got %q", m.state.SelectedGenreID)
		}
	})

	t.Run("card press while menu open closes menu and features card", func(t *testing.T) {
		f := newFixture(t, testMovies()...)
		f.loadLibrary(t)
		m := f.model

		m.Update(click(1, headerHeight+m.page.filterRow))
		if !m.menu.isOpen() {
			t.Fatal("expected header press to open the menu")
		}

		_, cmd := m.Update(click(cardWidth+2, headerHeight+m.page.gridTop+1))
		if m.menu.isOpen() {
			t.Error("expected menu to close")
		}
		if m.hero == nil || m.hero.ID != "2" {
			t.Fatalf("expected movie 2 featured, got %+v", m.hero)
		}
		if m.state.SelectedGenreID != library.AllGenresID {
			t.Errorf("expected selection to be unchanged, got %q", m.state.SelectedGenreID)
		}
		if cmd == nil {
			t.Fatal("expected hero refresh command")
		}
	})

	t.Run("press on the menu border keeps it open", func(t *testing.T) {
		f := newFixture(t, testMovies()...)
		f.loadLibrary(t)
		m := f.model

		m.Update(click(1, headerHeight+m.page.filterRow))
		if m.page.menuHeight != m.page.menuItems+1 {
			t.Fatalf("expected a bottom border row, got height %d for %d items", m.page.menuHeight, m.page.menuItems)
		}

		_, cmd := m.Update(click(1, headerHeight+m.page.menuTop+m.page.menuItems))
		if !m.menu.isOpen() {
			t.Error("expected menu to stay open")
		}
		if cmd != nil {
			t.Error("expected no command")
		}
		if m.state.SelectedGenreID != library.AllGenresID {
			t.Errorf("expected selection to be unchanged, got %q", m.state.SelectedGenreID)
		}
	})

	t.Run("card press features the movie", func(t *testing.T) {
		f := newFixture(t, testMovies()...)
		f.loadLibrary(t)
		m := f.model

		_, cmd := m.Update(click(cardWidth+2, headerHeight+m.page.gridTop+1))
		if m.hero == nil || m.hero.ID != "2" {
			t.Fatalf("expected movie 2 featured, got %+v", m.hero)
		}
		if m.cursor != 1 {
			t.Errorf("expected cursor 1, got %d", m.cursor)
		}
		if cmd == nil {
			t.Fatal("expected hero refresh command")
		}
	})

	t.Run("press beyond the last card does nothing", func(t *testing.T) {
		f := newFixture(t, testMovies()...)
		f.loadLibrary(t)
		m := f.model

		_, cmd := m.Update(click(3*cardWidth+2, headerHeight+m.page.gridTop+1))
		if cmd != nil {
			t.Error("expected no command")
		}
		if m.hero.ID != "1" {
			t.Errorf("expected movie 1 to stay featured, got %q", m.hero.ID)
		}
	})
}

func TestModelHero(t *testing.T) {
	t.Run("enter features the selected card and scrolls to top", func(t *testing.T) {
		f := newFixture(t, testMovies()...)
		f.loadLibrary(t)
		m := f.model

		m.Update(tea.KeyMsg{Type: tea.KeyRight})
		m.Update(tea.KeyMsg{Type: tea.KeyRight})
		m.viewport.SetYOffset(3)
		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

		if m.featuredID != "3" {
			t.Errorf("expected featured id 3, got %q", m.featuredID)
		}
		if m.viewport.YOffset != 0 {
			t.Errorf("expected viewport at top, got offset %d", m.viewport.YOffset)
		}
		if cmd == nil {
			t.Fatal("expected hero refresh command")
		}

		msg, ok := cmd().(heroMsg)
		if !ok {
			t.Fatal("expected heroMsg")
		}
		if msg.id != "3" || msg.movie == nil {
			t.Errorf("unexpected hero message %+v", msg)
		}
	})

	t.Run("late details for another movie are ignored", func(t *testing.T) {
		f := newFixture(t, testMovies()...)
		f.loadLibrary(t)
		m := f.model

		m.Update(heroMsg{id: "2", movie: &models.Movie{ID: "2", Title: "Airplane!"}})
		if m.hero.ID != "1" {
			t.Errorf("expected movie 1 to stay featured, got %q", m.hero.ID)
		}

		detailed := &models.Movie{ID: "1", Title: "The Matrix", Tagline: "Welcome to the Real World."}
		m.Update(heroMsg{id: "1", movie: detailed})
		if !strings.Contains(m.View(), "Welcome to the Real World.") {
			t.Error("expected refreshed hero details in view")
		}
	})

	t.Run("failed refresh keeps the card details", func(t *testing.T) {
		f := newFixture(t, testMovies()...)
		f.loadLibrary(t)

		f.model.Update(heroMsg{id: "1"})
		if f.model.hero == nil || f.model.hero.Title != "The Matrix" {
			t.Errorf("expected card details to remain, got %+v", f.model.hero)
		}
	})
}

func TestRenderMovies(t *testing.T) {
	t.Run("empty list renders placeholder", func(t *testing.T) {
		out := renderMovies(nil, 90, 0)
		if !strings.Contains(out, emptyGenreText) {
			t.Errorf("expected %q, got %q", emptyGenreText, out)
		}
	})

	t.Run("one card per movie in order", func(t *testing.T) {
		out := renderMovies(testMovies(), 60, 0)

		matrix := strings.Index(out, "The Matrix")
		airplane := strings.Index(out, "Airplane!")
		heat := strings.Index(out, "Heat")
		if matrix < 0 || airplane < 0 || heat < 0 {
			t.Fatalf("expected every title in output:\n%s", out)
		}
		if !(matrix < airplane && airplane < heat) {
			t.Errorf("expected titles in order, got %d %d %d", matrix, airplane, heat)
		}
		if strings.Contains(out, emptyGenreText) {
			t.Error("expected no placeholder")
		}
	})

	t.Run("long titles are truncated", func(t *testing.T) {
		long := models.Movie{ID: "9", Title: strings.Repeat("Very Long Title ", 5)}
		out := renderMovieCard(long, false)
		if !strings.Contains(out, "…") {
			t.Error("expected truncated title")
		}
	})

	tests := []struct {
		width int
		want  int
	}{
		{0, 1},
		{cardWidth - 1, 1},
		{cardWidth * 2, 2},
		{cardWidth*4 + 5, 4},
	}
	for _, tt := range tests {
		if got := gridColumns(tt.width); got != tt.want {
			t.Errorf("gridColumns(%d) = %d, want %d", tt.width, got, tt.want)
		}
	}
}

func TestFilterMenu(t *testing.T) {
	tests := []struct {
		name   string
		events []menuEvent
		open   bool
	}{
		{"initially closed", nil, false},
		{"header opens", []menuEvent{headerActivated}, true},
		{"header toggles", []menuEvent{headerActivated, headerActivated}, false},
		{"item closes", []menuEvent{headerActivated, itemSelected}, false},
		{"outside closes", []menuEvent{headerActivated, pointerOutside}, false},
		{"outside while closed", []menuEvent{pointerOutside}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var menu filterMenu
			for _, ev := range tt.events {
				menu.apply(ev)
			}
			if menu.isOpen() != tt.open {
				t.Errorf("expected open=%v", tt.open)
			}
		})
	}
}
