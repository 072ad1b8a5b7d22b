package pantry

import "sync"

// SessionManager holds one recipe View per user.
type SessionManager struct {
	views map[string]*View
	mu    sync.RWMutex
}

// NewSessionManager creates a new session manager.
func NewSessionManager() *SessionManager {
	return &SessionManager{
		views: make(map[string]*View),
	}
}

// Get returns the user's view, creating an idle one on first use.
func (sm *SessionManager) Get(userID string) *View {
	sm.mu.RLock()
	v, ok := sm.views[userID]
	sm.mu.RUnlock()
	if ok {
		return v
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()
	if v, ok := sm.views[userID]; ok {
		return v
	}
	v = newView()
	sm.views[userID] = v
	return v
}

// Lookup returns the user's view without creating one.
func (sm *SessionManager) Lookup(userID string) (*View, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	v, ok := sm.views[userID]
	return v, ok
}

// Clear removes a user's view.
func (sm *SessionManager) Clear(userID string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	delete(sm.views, userID)
}

func (sm *SessionManager) Len() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.views)
}
