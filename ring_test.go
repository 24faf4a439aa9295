package ringroute

import (
	"fmt"
	"math"
	"testing"
)

func TestNewConfigValidation(t *testing.T) {
	for _, test := range []struct {
		name string
		cfg  Config
		err  bool
	}{
		{
			name: "empty roster",
			cfg:  Config{},
			err:  true,
		},
		{
			name: "empty id",
			cfg:  Config{Servers: []string{"a", ""}},
			err:  true,
		},
		{
			name: "duplicate id",
			cfg:  Config{Servers: []string{"a", "b", "a"}},
			err:  true,
		},
		{
			name: "negative replicas",
			cfg:  Config{Servers: []string{"a"}, Replicas: -1},
			err:  true,
		},
		{
			name: "minimal",
			cfg:  Config{Servers: []string{"a"}},
		},
		{
			name: "explicit replicas",
			cfg:  Config{Servers: []string{"a", "b"}, Replicas: 7},
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			_, err := New(test.cfg)
			if test.err && err == nil {
				t.Fatalf("want configuration error; got nil")
			}
			if !test.err && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestNewEntryCount(t *testing.T) {
	for _, test := range []struct {
		name     string
		servers  int
		replicas int
		want     int
	}{
		{
			name:    "default replicas",
			servers: 4,
			want:    4 * DefaultReplicas,
		},
		{
			name:     "explicit replicas",
			servers:  3,
			replicas: 16,
			want:     48,
		},
		{
			name:     "single point",
			servers:  1,
			replicas: 1,
			want:     1,
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			ids := make([]string, test.servers)
			for i := range ids {
				ids[i] = fmt.Sprintf("server-%02d", i)
			}
			r, err := New(Config{
				Servers:  ids,
				Replicas: test.replicas,
			})
			if err != nil {
				t.Fatal(err)
			}
			// Every collision shrinks the ring by exactly one entry.
			if n := r.Len() + r.Collisions(); n != test.want {
				t.Fatalf("got %d entries (%d collisions); want %d", r.Len(), r.Collisions(), test.want)
			}
		})
	}
}

func TestNewEveryServerOwnsEntries(t *testing.T) {
	ids := make([]string, 8)
	for i := range ids {
		ids[i] = fmt.Sprintf("server-%02d", i)
	}
	r, err := New(Config{
		Servers:  ids,
		Replicas: 16,
	})
	if err != nil {
		t.Fatal(err)
	}
	var (
		owned   = make(map[string]int, len(ids))
		visited int
	)
	r.Successors(0, func(_ uint64, s *Server) bool {
		owned[s.ID()]++
		visited++
		return true
	})
	if visited != r.Len() {
		t.Fatalf("full walk visited %d entries; ring has %d", visited, r.Len())
	}
	for _, id := range ids {
		if owned[id] == 0 {
			t.Errorf("server %q owns no ring entries", id)
		}
	}
}

func TestSuccessorsOrder(t *testing.T) {
	values := make(map[string]uint64)
	placeServer(values, "a", 10)
	placeServer(values, "b", 20)
	placeServer(values, "c", 30)
	r, err := New(Config{
		Servers:  []string{"a", "b", "c"},
		Replicas: 1,
		Hash:     tableHash(t, values),
	})
	if err != nil {
		t.Fatal(err)
	}
	for _, test := range []struct {
		name string
		from uint64
		want []uint64
	}{
		{
			name: "zero",
			from: 0,
			want: []uint64{10, 20, 30},
		},
		{
			name: "between",
			from: 15,
			want: []uint64{20, 30, 10},
		},
		{
			name: "exact position is inclusive",
			from: 20,
			want: []uint64{20, 30, 10},
		},
		{
			name: "past maximum wraps",
			from: 31,
			want: []uint64{10, 20, 30},
		},
		{
			name: "max uint64 wraps",
			from: math.MaxUint64,
			want: []uint64{10, 20, 30},
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			var got []uint64
			r.Successors(test.from, func(pos uint64, _ *Server) bool {
				got = append(got, pos)
				return true
			})
			if len(got) != len(test.want) {
				t.Fatalf("visited %v; want %v", got, test.want)
			}
			for i := range got {
				if got[i] != test.want[i] {
					t.Fatalf("visited %v; want %v", got, test.want)
				}
			}
		})
	}
}

func TestSuccessorsEarlyStop(t *testing.T) {
	values := make(map[string]uint64)
	placeServer(values, "a", 10)
	placeServer(values, "b", 20)
	placeServer(values, "c", 30)
	r, err := New(Config{
		Servers:  []string{"a", "b", "c"},
		Replicas: 1,
		Hash:     tableHash(t, values),
	})
	if err != nil {
		t.Fatal(err)
	}
	var visited int
	r.Successors(25, func(pos uint64, _ *Server) bool {
		visited++
		if pos != 30 {
			t.Fatalf("first visited position is %d; want 30", pos)
		}
		return false
	})
	if visited != 1 {
		t.Fatalf("walk continued after fn returned false: %d visits", visited)
	}
}

func TestCollisionLastWriteWins(t *testing.T) {
	values := map[string]uint64{
		"req": 40,
	}
	placeServer(values, "a", 42)
	placeServer(values, "b", 42)
	r, err := New(Config{
		Servers:  []string{"a", "b"},
		Replicas: 1,
		Hash:     tableHash(t, values),
		Logger:   quietLogger(),
	})
	if err != nil {
		t.Fatalf("collision must not fail construction: %v", err)
	}
	if r.Len() != 1 {
		t.Fatalf("ring has %d entries; want 1", r.Len())
	}
	if r.Collisions() != 1 {
		t.Fatalf("counted %d collisions; want 1", r.Collisions())
	}
	// The roster is inserted in order, so "b" overwrote "a".
	srv, err := NewRouter(r).Assign("req")
	if err != nil {
		t.Fatal(err)
	}
	if srv.ID() != "b" {
		t.Fatalf("position 42 owned by %q; want later insertion %q", srv.ID(), "b")
	}
}

func TestRingDistribution(t *testing.T) {
	ids := make([]string, 8)
	for i := range ids {
		ids[i] = fmt.Sprintf("server-%02d", i)
	}
	r, err := New(Config{
		Servers:  ids,
		Replicas: 64,
	})
	if err != nil {
		t.Fatal(err)
	}
	router := NewRouter(r)

	const n = 10000
	counts := make(map[string]int, len(ids))
	for i := 0; i < n; i++ {
		srv, err := router.Assign(fmt.Sprintf("key-%d", i))
		if err != nil {
			t.Fatal(err)
		}
		counts[srv.ID()]++
	}
	for _, id := range ids {
		c := counts[id]
		if c == 0 {
			t.Errorf("server %q received no requests", id)
		}
		if pct := float64(c) / n * 100; pct > 50 {
			t.Errorf("server %q received %.1f%% of requests", id, pct)
		}
	}
}
