package services

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/cinemania/internal/models"
)

const defaultPollInterval = 2 * time.Second

var _ SessionProvider = (*SessionWatcher)(nil)

// SessionStore reports the active session, or nil when signed out.
type SessionStore interface {
	Current() (*models.Session, error)
}

// SessionWatcher is a [SessionProvider] that polls a [SessionStore].
//
// Sign-in and sign-out happen in other processes (the auth commands), so the watcher polls the
// store at a fixed interval and notifies subscribers only when the session actually changes.
type SessionWatcher struct {
	store    SessionStore
	interval time.Duration
	logger   *log.Logger

	// notifyMu orders notifications so a subscriber never sees an older session after a newer one.
	notifyMu sync.Mutex

	mu      sync.Mutex
	current *models.Session
	primed  bool
	subs    map[int]func(*models.Session)
	nextID  int

	cancel context.CancelFunc
	done   chan struct{}
}

// NewSessionWatcher creates a watcher. Call [SessionWatcher.Start] to begin polling.
func NewSessionWatcher(store SessionStore, interval time.Duration, logger *log.Logger) *SessionWatcher {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if logger == nil {
		logger = log.Default()
	}
	return &SessionWatcher{
		store:    store,
		interval: interval,
		logger:   logger.With("component", "session-watcher"),
		subs:     make(map[int]func(*models.Session)),
	}
}

// Start launches the polling goroutine. It returns immediately; polling stops when ctx is
// cancelled or [SessionWatcher.Stop] is called.
func (w *SessionWatcher) Start(ctx context.Context) {
	w.mu.Lock()
	if w.done != nil {
		w.mu.Unlock()
		return
	}
	ctx, w.cancel = context.WithCancel(ctx)
	w.done = make(chan struct{})
	done := w.done
	w.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.Poll()
			}
		}
	}()
}

// Stop ends polling and waits for the goroutine to exit.
func (w *SessionWatcher) Stop() {
	w.mu.Lock()
	cancel, done := w.cancel, w.done
	w.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Poll reads the store once and notifies subscribers if the session changed.
func (w *SessionWatcher) Poll() {
	w.notifyMu.Lock()
	defer w.notifyMu.Unlock()
	w.poll()
}

func (w *SessionWatcher) poll() {
	session, err := w.store.Current()
	if err != nil {
		w.logger.Warn("session poll failed", "error", err)
		return
	}

	w.mu.Lock()
	if w.primed && w.current.Same(session) {
		w.mu.Unlock()
		return
	}
	w.current = session
	w.primed = true
	subs := make([]func(*models.Session), 0, len(w.subs))
	for _, fn := range w.subs {
		subs = append(subs, fn)
	}
	w.mu.Unlock()

	w.logger.Debug("session changed", "signed_in", session != nil)
	for _, fn := range subs {
		fn(session)
	}
}

// OnSessionChange implements [SessionProvider]. fn is called immediately with the current
// session and afterwards from the polling goroutine, so it must not block.
func (w *SessionWatcher) OnSessionChange(fn func(*models.Session)) Subscription {
	w.notifyMu.Lock()
	defer w.notifyMu.Unlock()

	w.mu.Lock()
	primed := w.primed
	w.mu.Unlock()

	if !primed {
		w.poll()
	}

	w.mu.Lock()
	id := w.nextID
	w.nextID++
	w.subs[id] = fn
	current := w.current
	w.mu.Unlock()

	fn(current)
	return &subscription{watcher: w, id: id}
}

func (w *SessionWatcher) remove(id int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.subs, id)
}

type subscription struct {
	watcher *SessionWatcher
	id      int
	once    sync.Once
}

func (s *subscription) Unsubscribe() {
	s.once.Do(func() { s.watcher.remove(s.id) })
}
