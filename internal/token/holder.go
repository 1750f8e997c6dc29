package token

import "sync"

// Holder keeps the access token in process memory only. It is shared by the
// session manager (writer) and the API client (reader).
type Holder struct {
	mu    sync.RWMutex
	token string
}

func NewHolder() *Holder {
	return &Holder{}
}

func (h *Holder) Set(token string) {
	h.mu.Lock()
	h.token = token
	h.mu.Unlock()
}

// AccessToken returns the current token or "" when none is held.
func (h *Holder) AccessToken() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

func (h *Holder) Clear() {
	h.Set("")
}
