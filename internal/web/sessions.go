package web

import (
	"sync"
	"time"

	"github.com/JonMunkholm/txnimport/internal/core"
)

// sessionStore keeps open import sessions between wizard steps. Entries
// expire after ttl without access; expiry is checked lazily on every call.
type sessionStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	max     int
	now     func() time.Time
	entries map[string]*sessionEntry
}

// sessionEntry serializes the steps of one import.
type sessionEntry struct {
	mu      sync.Mutex
	sess    *core.Session
	touched time.Time
}

func newSessionStore(ttl time.Duration, max int) *sessionStore {
	return &sessionStore{
		ttl:     ttl,
		max:     max,
		now:     time.Now,
		entries: make(map[string]*sessionEntry),
	}
}

// put stores sess, evicting expired sessions and then the least recently
// used one if the store is full.
func (st *sessionStore) put(sess *core.Session) {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.now()
	st.expireLocked(now)
	if st.max > 0 && len(st.entries) >= st.max {
		st.evictOldestLocked()
	}
	st.entries[sess.ID] = &sessionEntry{sess: sess, touched: now}
}

// with runs fn on the session while holding its lock.
func (st *sessionStore) with(id string, fn func(*core.Session) error) error {
	st.mu.Lock()
	now := st.now()
	st.expireLocked(now)
	entry, ok := st.entries[id]
	if ok {
		entry.touched = now
	}
	st.mu.Unlock()

	if !ok {
		return core.ErrSessionNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return fn(entry.sess)
}

// remove drops a session; it reports whether it existed.
func (st *sessionStore) remove(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.expireLocked(st.now())
	if _, ok := st.entries[id]; !ok {
		return false
	}
	delete(st.entries, id)
	return true
}

func (st *sessionStore) len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.expireLocked(st.now())
	return len(st.entries)
}

func (st *sessionStore) expireLocked(now time.Time) {
	for id, e := range st.entries {
		if now.Sub(e.touched) > st.ttl {
			delete(st.entries, id)
		}
	}
}

func (st *sessionStore) evictOldestLocked() {
	var (
		oldestID string
		oldest   time.Time
	)
	for id, e := range st.entries {
		if oldestID == "" || e.touched.Before(oldest) {
			oldestID, oldest = id, e.touched
		}
	}
	if oldestID != "" {
		delete(st.entries, oldestID)
	}
}
