package ringroute

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ringroute/ringroute/hashkit"
)

// DefaultReplicas is the number of virtual points placed on the ring for
// every server when Config.Replicas is zero.
const DefaultReplicas = 3

// Config describes the ring to be built by New.
type Config struct {
	// Servers is the roster of server identifiers to place on the ring.
	// It must be non-empty and must not contain duplicates. The roster is
	// fixed: servers are never added or removed after construction, only
	// their availability changes.
	Servers []string

	// Replicas is the number of virtual points per server. The higher this
	// number, the more equal distribution of requests this ring produces.
	// If Replicas is zero, DefaultReplicas is used.
	Replicas int

	// Hash is an optional function used to map servers and request keys
	// onto the ring. If nil, hashkit.XXHash64 is used.
	Hash hashkit.Func

	// OnAvailabilityChange, when non-nil, is called every time a server
	// actually transitions between available and unavailable. It is a side
	// channel for logging and metrics, not required for correctness. It may
	// be called from multiple goroutines and must not block.
	OnAvailabilityChange func(id string, available bool)

	// Logger is an optional logger for construction diagnostics such as
	// position collisions. If nil, the logrus standard logger is used.
	Logger logrus.FieldLogger
}

func (c *Config) validate() error {
	if len(c.Servers) == 0 {
		return fmt.Errorf("ringroute: empty server roster")
	}
	if c.Replicas < 0 {
		return fmt.Errorf("ringroute: replica count must be positive: %d", c.Replicas)
	}
	seen := make(map[string]struct{}, len(c.Servers))
	for _, id := range c.Servers {
		if id == "" {
			return fmt.Errorf("ringroute: empty server id")
		}
		if _, has := seen[id]; has {
			return fmt.Errorf("ringroute: duplicate server id %q", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

func (c *Config) replicas() int {
	if c.Replicas > 0 {
		return c.Replicas
	}
	return DefaultReplicas
}

func (c *Config) hash() hashkit.Func {
	if c.Hash != nil {
		return c.Hash
	}
	return hashkit.XXHash64
}

func (c *Config) logger() logrus.FieldLogger {
	if c.Logger != nil {
		return c.Logger
	}
	return logrus.StandardLogger()
}
