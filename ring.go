package ringroute

import (
	"encoding/binary"

	"github.com/google/btree"
	"github.com/sirupsen/logrus"

	"github.com/ringroute/ringroute/hashkit"
)

// btreeDegree is the branching factor of the tree holding ring entries.
const btreeDegree = 32

// entry is a single virtual point on the ring. Several entries reference the
// same Server.
type entry struct {
	position uint64
	server   *Server
}

func (e *entry) Less(than btree.Item) bool {
	return e.position < than.(*entry).position
}

// Ring maps a fixed roster of servers onto the 64-bit hash space with
// virtual replication. It is built exactly once by New and is immutable
// afterwards: entries are never added or removed, only the availability flag
// of the referenced servers changes. Because of that, all methods are safe
// for concurrent use without locking.
type Ring struct {
	hash       hashkit.Func
	replicas   int
	tree       *btree.BTree
	servers    []*Server
	byID       map[string]*Server
	collisions int
}

// New builds a ring from cfg. For every server in the roster it places
// cfg.Replicas virtual points, each at hash(server id, replica index).
// It returns an error when the configuration cannot produce a usable ring:
// empty roster, empty or duplicate server ids, negative replica count.
//
// Two points may land on the same position. This is vanishingly rare at
// 64-bit width and is resolved by letting the later insertion win; the ring
// then holds fewer than len(cfg.Servers)*cfg.Replicas entries.
func New(cfg Config) (*Ring, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	var (
		hash     = cfg.hash()
		replicas = cfg.replicas()
		log      = cfg.logger()
	)
	r := &Ring{
		hash:     hash,
		replicas: replicas,
		tree:     btree.New(btreeDegree),
		servers:  make([]*Server, 0, len(cfg.Servers)),
		byID:     make(map[string]*Server, len(cfg.Servers)),
	}
	for _, id := range cfg.Servers {
		srv := newServer(id, cfg.OnAvailabilityChange)
		r.servers = append(r.servers, srv)
		r.byID[id] = srv
		for i := 0; i < replicas; i++ {
			pos := hash(pointKey(id, i))
			prev := r.tree.ReplaceOrInsert(&entry{position: pos, server: srv})
			if prev != nil {
				r.collisions++
				log.WithFields(logrus.Fields{
					"position": pos,
					"server":   id,
					"evicted":  prev.(*entry).server.ID(),
				}).Debug("ring position collision, last write wins")
			}
		}
	}
	return r, nil
}

// pointKey encodes the hash input of a single virtual point: the server id
// followed by the little-endian replica index.
func pointKey(id string, replica int) []byte {
	p := make([]byte, len(id)+4)
	copy(p, id)
	binary.LittleEndian.PutUint32(p[len(id):], uint32(replica))
	return p
}

// Successors calls fn for every ring entry in ascending position order,
// starting at the first entry at or after position and wrapping past the
// maximum back to the minimum. Each entry is visited at most once per call;
// fn returning false stops the walk. Finding the starting entry costs
// O(log n), every subsequent step O(1) amortized.
func (r *Ring) Successors(position uint64, fn func(position uint64, srv *Server) bool) {
	pivot := &entry{position: position}
	stopped := false
	r.tree.AscendGreaterOrEqual(pivot, func(item btree.Item) bool {
		e := item.(*entry)
		if !fn(e.position, e.server) {
			stopped = true
			return false
		}
		return true
	})
	if stopped {
		return
	}
	r.tree.AscendLessThan(pivot, func(item btree.Item) bool {
		e := item.(*entry)
		return fn(e.position, e.server)
	})
}

// Len returns the number of entries on the ring. It equals roster size times
// replica count unless positions collided during construction.
func (r *Ring) Len() int {
	return r.tree.Len()
}

// Collisions returns the number of position collisions resolved during
// construction.
func (r *Ring) Collisions() int {
	return r.collisions
}

// Servers returns the roster in construction order. The returned slice is a
// copy; the servers themselves are shared.
func (r *Ring) Servers() []*Server {
	out := make([]*Server, len(r.servers))
	copy(out, r.servers)
	return out
}

// Server returns the roster server with the given id.
func (r *Ring) Server(id string) (*Server, bool) {
	srv, has := r.byID[id]
	return srv, has
}
