// Command ringsim builds a ring from a random roster, optionally runs the
// failure simulator against it and measures how requests spread across the
// servers while availability flips underneath the router.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"net"
	"os"
	"runtime"
	"sort"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ringroute/ringroute"
	"github.com/ringroute/ringroute/hashkit"
)

func main() {
	var (
		p        int    // Number of goroutines.
		n        int    // Number of requests.
		s        int    // Number of servers on the ring.
		replicas int    // Virtual points per server.
		hashFunc string // Optional hash function name.

		simulate bool
		interval time.Duration
		down     time.Duration

		verbose bool
	)
	flag.IntVar(&p,
		"parallelism", runtime.NumCPU(),
		"number of concurrent routers",
	)
	flag.IntVar(&n,
		"requests", 1e6,
		"number of requests to route",
	)
	flag.IntVar(&s,
		"servers", 10,
		"number of servers to place on ring",
	)
	flag.IntVar(&replicas,
		"replicas", ringroute.DefaultReplicas,
		"virtual points per server",
	)
	flag.StringVar(&hashFunc,
		"hash", "",
		"hash function to be used (xxhash, xxh3, fnv1a)",
	)
	flag.BoolVar(&simulate,
		"simulate", false,
		"run the failure simulator while routing",
	)
	flag.DurationVar(&interval,
		"interval", 10*time.Millisecond,
		"time between simulated failures",
	)
	flag.DurationVar(&down,
		"down", 50*time.Millisecond,
		"how long a failed server stays down",
	)
	flag.BoolVar(&verbose,
		"v", false,
		"be verbose",
	)
	flag.Parse()

	log := logrus.New()
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	hash, err := hashkit.ByName(hashFunc)
	if err != nil {
		log.Fatal(err)
	}

	// Prepare the roster: random unique IPv4 addresses, like a real fleet.
	roster := make([]string, 0, s)
	seen := make(map[string]bool)
	for len(roster) < s {
		var b [4]byte
		rand.Read(b[:])
		addr := net.IPv4(b[0], b[1], b[2], b[3]).String()
		if seen[addr] {
			log.Debugf("server %s duplicated; repeat", addr)
			continue
		}
		seen[addr] = true
		roster = append(roster, addr)
	}
	log.Debugf("%d servers are ready", len(roster))

	ring, err := ringroute.New(ringroute.Config{
		Servers:  roster,
		Replicas: replicas,
		Hash:     hash,
		Logger:   log,
		OnAvailabilityChange: func(id string, available bool) {
			log.WithFields(logrus.Fields{
				"server":    id,
				"available": available,
			}).Debug("availability changed")
		},
	})
	if err != nil {
		log.Fatal(err)
	}
	if c := ring.Collisions(); c > 0 {
		log.Warnf("%d ring position collisions", c)
	}

	if simulate {
		sim, err := ringroute.NewSimulator(ringroute.SimulatorConfig{
			Interval: interval,
			Down:     down,
			Jitter:   0.5,
			Logger:   log,
		}, ring.Servers())
		if err != nil {
			log.Fatal(err)
		}
		sim.Start()
		defer sim.Stop()
	}

	router := ringroute.NewRouter(ring)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		counts  = make(map[string]int, s)
		rejects int
	)
	start := time.Now()
	for i := 0; i < p; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			local := make(map[string]int, s)
			var localRejects int
			for j := worker; j < n; j += p {
				srv, err := router.Assign(fmt.Sprintf("req-%016x", j))
				if err != nil {
					localRejects++
					continue
				}
				local[srv.ID()]++
			}
			mu.Lock()
			for id, c := range local {
				counts[id] += c
			}
			rejects += localRejects
			mu.Unlock()
		}(i)
	}
	wg.Wait()
	elapsed := time.Since(start)

	ids := make([]string, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	tw := tabwriter.NewWriter(os.Stdout, 2, 2, 2, ' ', 0)
	for _, id := range ids {
		fmt.Fprintf(tw, "%s\t%d\t%.2f%%\n",
			id, counts[id],
			float64(counts[id])/float64(n)*100,
		)
	}
	tw.Flush()

	fmt.Printf(
		"routed %d requests across %d servers in %s (%d unavailable)\n",
		n-rejects, len(ids), elapsed, rejects,
	)
}
