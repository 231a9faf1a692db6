// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/cinemania/internal/models"
	"github.com/desertthunder/cinemania/internal/services"
)

var (
	_ services.MovieCatalog    = (*MockCatalog)(nil)
	_ services.LibrarySource   = (*MockLibrarySource)(nil)
	_ services.SessionProvider = (*MockSessionProvider)(nil)
)

// MockCatalog is a test double for [services.MovieCatalog].
//
// Ids missing from Movies resolve to nil. When Gate is set every fetch blocks until Gate is closed.
type MockCatalog struct {
	Movies map[models.MovieID]*models.Movie
	Delays map[models.MovieID]time.Duration
	Gate   chan struct{}

	mu          sync.Mutex
	calls       []models.MovieID
	inFlight    int
	maxInFlight int
}

// NewMockCatalog returns a catalog holding movies keyed by their ids.
func NewMockCatalog(movies ...models.Movie) *MockCatalog {
	c := &MockCatalog{Movies: make(map[models.MovieID]*models.Movie, len(movies))}
	for i := range movies {
		c.Movies[movies[i].ID] = &movies[i]
	}
	return c
}

func (m *MockCatalog) FetchMovieDetails(ctx context.Context, id models.MovieID) *models.Movie {
	m.mu.Lock()
	m.calls = append(m.calls, id)
	m.inFlight++
	if m.inFlight > m.maxInFlight {
		m.maxInFlight = m.inFlight
	}
	delay := m.Delays[id]
	movie := m.Movies[id]
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.inFlight--
		m.mu.Unlock()
	}()

	if m.Gate != nil {
		select {
		case <-m.Gate:
		case <-ctx.Done():
			return nil
		}
	}
	if delay > 0 {
		time.Sleep(delay)
	}

	if movie == nil {
		return nil
	}
	copied := *movie
	return &copied
}

// Calls returns the ids requested so far, in call order.
func (m *MockCatalog) Calls() []models.MovieID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.MovieID(nil), m.calls...)
}

// MaxInFlight returns the highest number of fetches that were running at once.
func (m *MockCatalog) MaxInFlight() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxInFlight
}

// WaitForCalls blocks until n fetches have started or timeout elapses.
func (m *MockCatalog) WaitForCalls(n int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		m.mu.Lock()
		started := len(m.calls)
		m.mu.Unlock()
		if started >= n {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return false
}

// MockLibrarySource is a test double for [services.LibrarySource]
type MockLibrarySource struct {
	IDs []models.MovieID
	Err error

	mu       sync.Mutex
	sessions []*models.Session
}

func (m *MockLibrarySource) SavedMovieIDs(ctx context.Context, session *models.Session) ([]models.MovieID, error) {
	m.mu.Lock()
	m.sessions = append(m.sessions, session)
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	if session == nil {
		return nil, nil
	}
	return append([]models.MovieID(nil), m.IDs...), nil
}

// Sessions returns the sessions SavedMovieIDs was called with.
func (m *MockLibrarySource) Sessions() []*models.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*models.Session(nil), m.sessions...)
}

// MockSessionProvider is a test double for [services.SessionProvider] driven by [MockSessionProvider.Set].
type MockSessionProvider struct {
	mu      sync.Mutex
	current *models.Session
	subs    map[int]func(*models.Session)
	next    int
}

func NewMockSessionProvider(current *models.Session) *MockSessionProvider {
	return &MockSessionProvider{current: current, subs: make(map[int]func(*models.Session))}
}

func (m *MockSessionProvider) OnSessionChange(fn func(*models.Session)) services.Subscription {
	m.mu.Lock()
	id := m.next
	m.next++
	m.subs[id] = fn
	current := m.current
	m.mu.Unlock()

	fn(current)
	return mockSubscription{unsubscribe: func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}}
}

// Set changes the session and notifies every subscriber.
func (m *MockSessionProvider) Set(session *models.Session) {
	m.mu.Lock()
	m.current = session
	subs := make([]func(*models.Session), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	m.mu.Unlock()

	for _, fn := range subs {
		fn(session)
	}
}

// Subscribers returns the number of active subscriptions.
func (m *MockSessionProvider) Subscribers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs)
}

type mockSubscription struct {
	unsubscribe func()
}

func (s mockSubscription) Unsubscribe() { s.unsubscribe() }

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

var _ io.ReadCloser = (*FCloser)(nil)

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

// MustWriteFile writes content to path, creating parent directories.
func MustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
}
