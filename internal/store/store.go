package store

import (
	"strings"
	"sync"

	"munchkin-tracker/internal/constants"

	"github.com/rs/zerolog"
)

// Event is one change notification: the path that was written and a snapshot of
// the value now living there (nil after a delete).
type Event struct {
	Path  string `json:"path"`
	Value any    `json:"value"`
}

// Store is a path-addressable key/value tree with last-writer-wins semantics at
// field-path granularity and push-based change notification. It is the sole
// source of truth for live session state; every observer, including the client
// that issued a mutation, learns about changes through the event stream.
//
// There is deliberately no read-modify-write atomicity across calls: two
// concurrent increments racing between the same two observed states can lose
// one update. That matches the store contract the rest of the system is
// written against.
type Store struct {
	mu     sync.RWMutex
	root   map[string]any
	subsMu sync.RWMutex
	subs   map[chan Event]struct{}
	logger zerolog.Logger
}

func New(logger zerolog.Logger) *Store {
	return &Store{
		root:   map[string]any{},
		subs:   map[chan Event]struct{}{},
		logger: logger,
	}
}

// Set replaces the whole subtree at path. A full-path write is idempotent for
// identical content, which is what makes racing seed writes safe.
func (s *Store) Set(path string, value any) {
	s.mu.Lock()
	parent, key := s.ensureParent(path)
	parent[key] = copyValue(value)
	s.mu.Unlock()

	s.publish(path, value)
}

// Merge writes each field under path without touching sibling keys, the
// partial-path update used for per-player writes so one participant's join
// never clobbers another's progress.
func (s *Store) Merge(path string, fields map[string]any) {
	s.mu.Lock()
	parent, key := s.ensureParent(path)
	node, ok := parent[key].(map[string]any)
	if !ok {
		node = map[string]any{}
		parent[key] = node
	}
	for k, v := range fields {
		node[k] = copyValue(v)
	}
	snapshot := copyValue(node)
	s.mu.Unlock()

	s.publish(path, snapshot)
}

// Delete removes the subtree at path. Deleting an absent path is a no-op that
// still notifies, mirroring the overwrite-blindly contract of Set.
func (s *Store) Delete(path string) {
	s.mu.Lock()
	parent, key := s.ensureParent(path)
	delete(parent, key)
	s.mu.Unlock()

	s.publish(path, nil)
}

// Notify publishes a change event for path without mutating the tree. Used for
// entities whose rows live in durable storage; observers still see one stream.
func (s *Store) Notify(path string, value any) {
	s.publish(path, value)
}

// Get returns a deep copy of the subtree at path, so callers can never alias
// live store state.
func (s *Store) Get(path string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	node := any(s.root)
	for _, segment := range splitPath(path) {
		m, ok := node.(map[string]any)
		if !ok {
			return nil, false
		}
		child, ok := m[segment]
		if !ok {
			return nil, false
		}
		node = child
	}
	return copyValue(node), true
}

// Subscribe registers an observer. The returned cancel func must be called to
// release the subscription. Events are dropped, not blocked on, when an
// observer falls more than a buffer behind.
func (s *Store) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, constants.StoreEventBuffer)

	s.subsMu.Lock()
	s.subs[ch] = struct{}{}
	s.subsMu.Unlock()

	cancel := func() {
		s.subsMu.Lock()
		if _, ok := s.subs[ch]; ok {
			delete(s.subs, ch)
			close(ch)
		}
		s.subsMu.Unlock()
	}
	return ch, cancel
}

func (s *Store) publish(path string, value any) {
	event := Event{Path: path, Value: copyValue(value)}

	s.subsMu.RLock()
	defer s.subsMu.RUnlock()

	for ch := range s.subs {
		select {
		case ch <- event:
		default:
			s.logger.Warn().Str("path", path).Msg("dropping store event for slow observer")
		}
	}
}

// ensureParent walks to the parent map of path, materializing intermediate
// maps, and returns it with the final key. Caller holds the write lock.
func (s *Store) ensureParent(path string) (map[string]any, string) {
	segments := splitPath(path)
	parent := s.root
	for _, segment := range segments[:len(segments)-1] {
		child, ok := parent[segment].(map[string]any)
		if !ok {
			child = map[string]any{}
			parent[segment] = child
		}
		parent = child
	}
	return parent, segments[len(segments)-1]
}

func splitPath(path string) []string {
	return strings.Split(strings.Trim(path, "/"), "/")
}

func copyValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, child := range v {
			out[k] = copyValue(child)
		}
		return out
	case map[string]int:
		out := make(map[string]int, len(v))
		for k, child := range v {
			out[k] = child
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, child := range v {
			out[i] = copyValue(child)
		}
		return out
	case []string:
		out := make([]string, len(v))
		copy(out, v)
		return out
	case []int:
		out := make([]int, len(v))
		copy(out, v)
		return out
	default:
		return v
	}
}
