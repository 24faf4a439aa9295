package ringroute

import "sync/atomic"

// Server is a routable endpoint identity with a mutable availability flag.
// Servers are created by New and shared by reference between the ring, the
// router and the failure simulator for the whole process lifetime; the flag
// is the only mutable state.
type Server struct {
	id     string
	up     atomic.Bool
	notify func(id string, available bool)
}

func newServer(id string, notify func(string, bool)) *Server {
	s := &Server{
		id:     id,
		notify: notify,
	}
	s.up.Store(true)
	return s
}

// ID returns the server identifier.
func (s *Server) ID() string {
	return s.id
}

// IsAvailable reports whether the server can currently take requests.
// It is safe to call concurrently with SetAvailability.
func (s *Server) IsAvailable() bool {
	return s.up.Load()
}

// SetAvailability updates the availability flag. Concurrent readers observe
// either the old or the new value, never a partial state. The
// availability-change callback, if configured, fires only on actual
// transitions.
func (s *Server) SetAvailability(available bool) {
	if s.up.CompareAndSwap(!available, available) && s.notify != nil {
		s.notify(s.id, available)
	}
}

func (s *Server) String() string {
	return s.id
}
