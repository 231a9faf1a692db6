package server

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/cinemania/internal/library"
	"github.com/desertthunder/cinemania/internal/models"
	"github.com/desertthunder/cinemania/internal/services"
	"github.com/desertthunder/cinemania/internal/shared"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	posterSize   = "w342"
	backdropSize = "w1280"

	emptyLibraryMessage = "Your library is empty."
	noMatchesMessage    = "No movies found for this genre."
	emptyHeroMessage    = "Your Library is Empty"
	failureMessage      = "Something went wrong while loading your library."
)

var libraryTemplate = template.Must(template.New("library.html").Funcs(template.FuncMap{
	"join": strings.Join,
	"poster": func(m models.Movie) string {
		return m.PosterURL(posterSize)
	},
	"backdrop": func(m *models.Movie) string {
		return m.BackdropURL(backdropSize)
	},
}).ParseFS(templateFS, "templates/library.html"))

// LibraryHandler renders the signed-in user's library.
type LibraryHandler struct {
	loader   *library.Loader
	sessions services.SessionStore
	logger   *log.Logger
}

// NewLibraryHandler creates a [LibraryHandler]. logger may be nil.
func NewLibraryHandler(loader *library.Loader, sessions services.SessionStore, logger *log.Logger) *LibraryHandler {
	if logger == nil {
		logger = log.Default()
	}
	return &LibraryHandler{loader: loader, sessions: sessions, logger: logger.With("component", "library-handler")}
}

// Routes returns the HTTP routes this handler serves.
func (h *LibraryHandler) Routes() []string {
	return []string{"/library", "/library/movies"}
}

func (h *LibraryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	switch r.URL.Path {
	case "/library":
		h.servePage(w, r)
	case "/library/movies":
		h.serveMovies(w, r)
	default:
		http.NotFound(w, r)
	}
}

// libraryView is the outcome of one load cycle plus the request's genre and featured selection.
type libraryView struct {
	session *models.Session
	state   *library.State
	result  library.Result
	err     error
}

func (h *LibraryHandler) load(r *http.Request) libraryView {
	session, err := h.sessions.Current()
	if err != nil {
		return libraryView{err: err}
	}

	result, err := h.loader.Load(r.Context(), session, nil)
	if err != nil {
		return libraryView{session: session, err: err}
	}

	state := library.NewState(result.Movies)
	if genre := r.URL.Query().Get("genre"); genre != "" {
		state.SelectGenre(genre)
	}
	return libraryView{session: session, state: state, result: result}
}

type genreLink struct {
	Name   string
	Href   string
	Active bool
}

type movieCard struct {
	Movie models.Movie
	Href  string
}

type libraryPage struct {
	Owner           string
	Hero            *models.Movie
	HeroPlaceholder string
	ShowFilter      bool
	Selected        library.GenreEntry
	Genres          []genreLink
	Cards           []movieCard
	Failed          bool
	Empty           bool
	Message         string
	NoMatches       string
}

func (h *LibraryHandler) servePage(w http.ResponseWriter, r *http.Request) {
	view := h.load(r)
	page := libraryPage{HeroPlaceholder: emptyHeroMessage, NoMatches: noMatchesMessage}
	if view.session != nil {
		page.Owner = view.session.Name
		if page.Owner == "" {
			page.Owner = view.session.Email
		}
	}

	status := http.StatusOK
	switch {
	case view.err != nil:
		h.logger.Error("library load failed", "error", view.err)
		status = http.StatusInternalServerError
		page.Failed = true
		page.Message = failureMessage

	case view.result.Empty():
		page.Empty = true
		page.Message = emptyLibraryMessage

	default:
		displayed := view.state.Displayed()
		page.Hero = featured(displayed, models.MovieID(r.URL.Query().Get("featured")))
		page.ShowFilter = !view.state.Empty()
		page.Selected = view.state.SelectedGenre()
		for _, g := range view.state.Genres() {
			page.Genres = append(page.Genres, genreLink{
				Name:   g.Name,
				Href:   pageURL(g.ID, ""),
				Active: g.ID == view.state.SelectedGenreID,
			})
		}
		for _, m := range displayed {
			page.Cards = append(page.Cards, movieCard{Movie: m, Href: pageURL(view.state.SelectedGenreID, m.ID)})
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := libraryTemplate.Execute(w, page); err != nil {
		h.logger.Error("failed to render library page", "error", err)
	}
}

// featured returns the displayed movie with id, or the first displayed movie.
func featured(displayed []models.Movie, id models.MovieID) *models.Movie {
	if len(displayed) == 0 {
		return nil
	}
	for i := range displayed {
		if displayed[i].ID == id {
			return &displayed[i]
		}
	}
	return &displayed[0]
}

// pageURL links to the library page with genre selected and, when set, movie featured.
func pageURL(genre string, movie models.MovieID) string {
	q := url.Values{}
	if genre != "" && genre != library.AllGenresID {
		q.Set("genre", genre)
	}
	if movie != "" {
		q.Set("featured", movie.String())
	}

	u := "/library"
	if enc := q.Encode(); enc != "" {
		u += "?" + enc
	}
	if movie != "" {
		u += "#hero"
	}
	return u
}

type moviesResponse struct {
	Genre    library.GenreEntry   `json:"genre"`
	Genres   []library.GenreEntry `json:"genres"`
	Movies   []models.Movie       `json:"movies"`
	Total    int                  `json:"total"`
	Dropped  int                  `json:"dropped"`
	Featured *models.Movie        `json:"featured,omitempty"`
}

func (h *LibraryHandler) serveMovies(w http.ResponseWriter, r *http.Request) {
	view := h.load(r)
	if view.err != nil {
		h.logger.Error("library load failed", "error", view.err)
		status := http.StatusInternalServerError
		if errors.Is(view.err, shared.ErrNotAuthenticated) {
			status = http.StatusUnauthorized
		}
		writeJSON(w, status, map[string]string{"error": failureMessage})
		return
	}

	displayed := view.state.Displayed()
	writeJSON(w, http.StatusOK, moviesResponse{
		Genre:    view.state.SelectedGenre(),
		Genres:   view.state.Genres(),
		Movies:   displayed,
		Total:    len(view.state.AllMovies),
		Dropped:  view.result.Dropped(),
		Featured: featured(displayed, models.MovieID(r.URL.Query().Get("featured"))),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := shared.MarshalJSON(v, false)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// HealthHandler reports that the server is up.
func HealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}

// NewLibraryRouter wires the library routes with request logging and panic recovery.
func NewLibraryRouter(handler *LibraryHandler, logger *log.Logger) *BasicRouter {
	router := NewBasicRouter()
	router.Use(Recoverer(logger), RequestLogger(logger))
	router.Handler(handler)
	router.Handle(http.MethodGet, "/health", HealthHandler())
	router.Handle(http.MethodGet, "/{$}", http.RedirectHandler("/library", http.StatusFound))
	return router
}
