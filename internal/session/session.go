package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"ui_forge_server/internal/types"
)

// TokenKey is the fixed key the auth token is stored under.
const TokenKey = "token"

// Controller owns the state of one client session: the current generation
// result, the latest progress snapshot and stored values such as the auth token.
// Each setter replaces the previous value; overlapping generations resolve as
// last writer wins.
type Controller struct {
	ID string

	mu       sync.RWMutex
	result   *types.GenerationResult
	progress types.Progress
	values   map[string]string
	lastSeen time.Time
}

func newController(id string) *Controller {
	return &Controller{ID: id, values: make(map[string]string), lastSeen: time.Now()}
}

func (c *Controller) Result() *types.GenerationResult {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.result
}

func (c *Controller) SetResult(r *types.GenerationResult) {
	c.mu.Lock()
	c.result = r
	c.mu.Unlock()
}

// UpdateResult applies fn to a copy of the current result and stores the copy.
// It reports false when there is no current result.
func (c *Controller) UpdateResult(fn func(r *types.GenerationResult)) (*types.GenerationResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.result == nil {
		return nil, false
	}
	updated := *c.result
	fn(&updated)
	c.result = &updated
	return c.result, true
}

func (c *Controller) Progress() types.Progress {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.progress
}

// Report implements ai.ProgressReporter.
func (c *Controller) Report(p types.Progress) {
	c.mu.Lock()
	c.progress = p
	c.mu.Unlock()
}

// Reset clears the result and progress but keeps stored values.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.result = nil
	c.progress = types.Progress{}
	c.mu.Unlock()
}

func (c *Controller) Get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.values[key]
	return v, ok
}

func (c *Controller) Set(key, value string) {
	c.mu.Lock()
	c.values[key] = value
	c.mu.Unlock()
}

func (c *Controller) Delete(key string) {
	c.mu.Lock()
	delete(c.values, key)
	c.mu.Unlock()
}

func (c *Controller) Token() string {
	t, _ := c.Get(TokenKey)
	return t
}

func (c *Controller) touch(now time.Time) {
	c.mu.Lock()
	c.lastSeen = now
	c.mu.Unlock()
}

func (c *Controller) idleSince(now time.Time) time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return now.Sub(c.lastSeen)
}

// Store holds the controllers of all live sessions in memory.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Controller
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]*Controller)}
}

// Get returns the controller for id, creating it when missing. An empty id
// gets a freshly generated one.
func (s *Store) Get(id string) *Controller {
	if id == "" {
		id = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.sessions[id]
	if !ok {
		c = newController(id)
		s.sessions[id] = c
	}
	c.touch(time.Now())
	return c
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Expire drops sessions idle for longer than ttl and returns how many were removed.
func (s *Store) Expire(now time.Time, ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, c := range s.sessions {
		if c.idleSince(now) > ttl {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}
