package library

import "sync/atomic"

// Generation hands out monotonically increasing load tokens. Only the most recent token is current.
type Generation struct {
	n atomic.Uint64
}

// Next starts a new load and returns its token, making every earlier token stale.
func (g *Generation) Next() uint64 {
	return g.n.Add(1)
}

// Current returns the most recent token, or zero before the first load.
func (g *Generation) Current() uint64 {
	return g.n.Load()
}

// IsCurrent reports whether token belongs to the latest load.
func (g *Generation) IsCurrent(token uint64) bool {
	return token != 0 && token == g.n.Load()
}
