package preference

import (
	"context"
	"sync"

	"github.com/alexedwards/scs/v2"
)

// Key is the storage key holding the explicit theme override.
const Key = "theme"

// Store holds at most one string value under Key for the lifetime of a session.
type Store interface {
	Get() (string, bool)
	Set(value string)
	Remove()
}

// Memory is an in-process Store. The zero value is ready to use.
type Memory struct {
	mu    sync.Mutex
	value string
	set   bool
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Get() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.value, m.set
}

func (m *Memory) Set(value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value, m.set = value, true
}

func (m *Memory) Remove() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value, m.set = "", false
}

// SessionStore keeps the override in the scs session bound to a request context.
// The context must have passed through SessionManager.LoadAndSave.
type SessionStore struct {
	sm  *scs.SessionManager
	ctx context.Context
}

// Session binds the session data carried by ctx.
func Session(sm *scs.SessionManager, ctx context.Context) *SessionStore {
	return &SessionStore{sm: sm, ctx: ctx}
}

func (s *SessionStore) Get() (string, bool) {
	if !s.sm.Exists(s.ctx, Key) {
		return "", false
	}
	return s.sm.GetString(s.ctx, Key), true
}

func (s *SessionStore) Set(value string) {
	s.sm.Put(s.ctx, Key, value)
}

func (s *SessionStore) Remove() {
	s.sm.Remove(s.ctx, Key)
}
