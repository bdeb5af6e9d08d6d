package session

import (
	"sync"
)

// User holds the current user's data as returned by the user endpoint.
type User map[string]interface{}

// EventType enumerates session state changes.
type EventType int

const (
	// EventEstablished is emitted when user data is (re)loaded.
	EventEstablished EventType = iota
	// EventCleared is emitted when an authenticated session ends.
	EventCleared
	// EventLoading is emitted when a session call starts or finishes.
	EventLoading
	// EventError is emitted when the error message changes.
	EventError
)

func (t EventType) String() string {
	switch t {
	case EventEstablished:
		return "established"
	case EventCleared:
		return "cleared"
	case EventLoading:
		return "loading"
	case EventError:
		return "error"
	}
	return "unknown"
}

// Event describes one session state change.
type Event struct {
	Type    EventType
	User    User
	Loading bool
	Error   string
}

// Observer receives session events.
type Observer interface {
	OnSessionEvent(event *Event)
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func(event *Event)

// OnSessionEvent calls f(event)
func (f ObserverFunc) OnSessionEvent(event *Event) {
	f(event)
}

// Snapshot is a point-in-time copy of the session state.
type Snapshot struct {
	User          User
	Authenticated bool
	Loading       bool
	Error         string
}

// State is the session state owned by one Service. Observers are notified synchronously, outside the lock.
type State struct {
	mux       sync.RWMutex
	user      User
	loading   int
	err       string
	seq       uint64
	observers map[uint64]Observer
}

// NewState creates an empty state.
func NewState() *State {
	return &State{observers: map[uint64]Observer{}}
}

// Subscribe registers observer and returns a function removing it.
func (s *State) Subscribe(observer Observer) func() {
	s.mux.Lock()
	s.seq++
	id := s.seq
	s.observers[id] = observer
	s.mux.Unlock()
	return func() {
		s.mux.Lock()
		delete(s.observers, id)
		s.mux.Unlock()
	}
}

// Snapshot returns a copy of the state.
func (s *State) Snapshot() Snapshot {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return Snapshot{
		User:          cloneUser(s.user),
		Authenticated: s.user != nil,
		Loading:       s.loading > 0,
		Error:         s.err,
	}
}

// User returns a copy of the current user, or nil.
func (s *State) User() User {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return cloneUser(s.user)
}

// IsAuthenticated returns true when user data is present.
func (s *State) IsAuthenticated() bool {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return s.user != nil
}

func (s *State) setUser(user User) {
	if user == nil {
		user = User{}
	}
	s.mux.Lock()
	s.user = cloneUser(user)
	observers := s.snapshotObservers()
	s.mux.Unlock()
	s.notify(observers, &Event{Type: EventEstablished, User: cloneUser(user)})
}

func (s *State) clear() {
	s.mux.Lock()
	wasSet := s.user != nil
	s.user = nil
	observers := s.snapshotObservers()
	s.mux.Unlock()
	if wasSet {
		s.notify(observers, &Event{Type: EventCleared})
	}
}

// beginLoading marks a call in progress; the returned function ends it.
// Overlapping calls keep the state loading until the last one ends.
func (s *State) beginLoading() func() {
	s.setLoading(1)
	return func() { s.setLoading(-1) }
}

func (s *State) setLoading(delta int) {
	s.mux.Lock()
	before := s.loading > 0
	s.loading += delta
	after := s.loading > 0
	observers := s.snapshotObservers()
	s.mux.Unlock()
	if before != after {
		s.notify(observers, &Event{Type: EventLoading, Loading: after})
	}
}

func (s *State) setError(message string) {
	s.mux.Lock()
	changed := s.err != message
	s.err = message
	observers := s.snapshotObservers()
	s.mux.Unlock()
	if changed {
		s.notify(observers, &Event{Type: EventError, Error: message})
	}
}

func (s *State) snapshotObservers() []Observer {
	ret := make([]Observer, 0, len(s.observers))
	for _, observer := range s.observers {
		ret = append(ret, observer)
	}
	return ret
}

func (s *State) notify(observers []Observer, event *Event) {
	for _, observer := range observers {
		observer.OnSessionEvent(event)
	}
}

func cloneUser(user User) User {
	if user == nil {
		return nil
	}
	dup := make(User, len(user))
	for k, v := range user {
		dup[k] = v
	}
	return dup
}
