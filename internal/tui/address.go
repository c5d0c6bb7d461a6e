package tui

import "sync"

// addressSurface is the terminal's stand-in for a browser location bar: the
// sync engine reflects the active board identifier into it and the footer
// renders whatever it currently holds.
type addressSurface struct {
	mu      sync.Mutex
	compose func(id string) string
	current string
}

func newAddressSurface(compose func(id string) string) *addressSurface {
	return &addressSurface{compose: compose}
}

func (a *addressSurface) SetBoard(id string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.current = a.compose(id)
}

func (a *addressSurface) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.current = ""
}

func (a *addressSurface) Current() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}
