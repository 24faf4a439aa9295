package ringroute

import (
	"errors"
	"fmt"
)

// ErrNoServerAvailable is returned by Router.Assign when every server on the
// ring is unavailable at the moment of the call. It is a normal, retryable
// result for the caller, not a process failure: the ring and the simulator
// keep operating and a later call may succeed.
var ErrNoServerAvailable = errors.New("ringroute: no server available")

// Router assigns request keys to servers on a ring.
// It is stateless apart from the ring reference and safe for concurrent use.
type Router struct {
	ring *Ring
}

// NewRouter returns a router over ring.
func NewRouter(ring *Ring) *Router {
	return &Router{ring: ring}
}

// Assign maps key onto the hash space and walks the ring clockwise from that
// position, wrapping past the maximum, and returns the first available
// server. An entry whose position equals the key's hash is the starting
// point of the walk and is included.
//
// The result is deterministic for a fixed availability snapshot: repeated
// calls with the same key return the same server until availability changes.
// If a full wrap finds no available server, Assign returns
// ErrNoServerAvailable.
func (r *Router) Assign(key string) (*Server, error) {
	if key == "" {
		return nil, fmt.Errorf("ringroute: empty request key")
	}
	var srv *Server
	r.ring.Successors(r.ring.hash([]byte(key)), func(_ uint64, s *Server) bool {
		if s.IsAvailable() {
			srv = s
			return false
		}
		return true
	})
	if srv == nil {
		return nil, ErrNoServerAvailable
	}
	return srv, nil
}
