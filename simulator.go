package ringroute

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// SimulatorConfig describes the failure pattern produced by a Simulator.
type SimulatorConfig struct {
	// Interval is the time between consecutive simulated failures.
	Interval time.Duration

	// Down is how long a failed server stays unavailable before it is
	// restored.
	Down time.Duration

	// Jitter, in [0, 1), randomizes each interval by up to the given
	// fraction in either direction. Zero means fixed intervals.
	Jitter float64

	// Seed seeds the simulator's random source. Zero means seeding from the
	// current time.
	Seed int64

	// Logger is an optional logger for availability flips. If nil, the
	// logrus standard logger is used.
	Logger logrus.FieldLogger
}

func (c *SimulatorConfig) validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("ringroute: non-positive failure interval: %v", c.Interval)
	}
	if c.Down <= 0 {
		return fmt.Errorf("ringroute: non-positive down duration: %v", c.Down)
	}
	if c.Jitter < 0 || c.Jitter >= 1 {
		return fmt.Errorf("ringroute: jitter must be in [0, 1): %v", c.Jitter)
	}
	return nil
}

func (c *SimulatorConfig) logger() logrus.FieldLogger {
	if c.Logger != nil {
		return c.Logger
	}
	return logrus.StandardLogger()
}

// Simulator perturbs server availability in the background to model
// real-world instability. Each cycle it marks one random available server
// unavailable, holds it down for the configured duration and restores it.
// Holds run on their own goroutines, so outages of different servers
// overlap. The simulator never blocks routing and has no error path of its
// own.
type Simulator struct {
	cfg     SimulatorConfig
	servers []*Server
	rand    *rand.Rand
	log     logrus.FieldLogger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSimulator returns a simulator over the given servers, typically
// ring.Servers(). It returns an error on non-positive durations, jitter out
// of range or an empty server list.
func NewSimulator(cfg SimulatorConfig, servers []*Server) (*Simulator, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if len(servers) == 0 {
		return nil, fmt.Errorf("ringroute: no servers to simulate failures on")
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Simulator{
		cfg:     cfg,
		servers: servers,
		rand:    rand.New(rand.NewSource(seed)),
		log:     cfg.logger(),
		ctx:     ctx,
		cancel:  cancel,
	}, nil
}

// Start launches the failure loop. It runs until Stop is called.
func (s *Simulator) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		timer := time.NewTimer(s.interval())
		defer timer.Stop()
		for {
			select {
			case <-s.ctx.Done():
				return
			case <-timer.C:
				s.failOne()
				timer.Reset(s.interval())
			}
		}
	}()
}

// Stop cancels the loop and waits for all pending holds to finish. Holds cut
// short by Stop restore their server immediately, so every server is
// available again by the time Stop returns.
func (s *Simulator) Stop() {
	s.cancel()
	s.wg.Wait()
}

// failOne marks one random available server unavailable and schedules its
// recovery. It does nothing when every server is already down.
func (s *Simulator) failOne() {
	srv := s.pick()
	if srv == nil {
		return
	}
	srv.SetAvailability(false)
	s.log.WithField("server", srv.ID()).Info("server marked unavailable")
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		timer := time.NewTimer(s.cfg.Down)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-s.ctx.Done():
			// Shutting down; restore without waiting out the hold.
		}
		srv.SetAvailability(true)
		s.log.WithField("server", srv.ID()).Info("server restored")
	}()
}

// pick returns a random currently available server, or nil if there is none.
// rand is confined to the loop goroutine and needs no locking.
func (s *Simulator) pick() *Server {
	up := make([]*Server, 0, len(s.servers))
	for _, srv := range s.servers {
		if srv.IsAvailable() {
			up = append(up, srv)
		}
	}
	if len(up) == 0 {
		return nil
	}
	return up[s.rand.Intn(len(up))]
}

func (s *Simulator) interval() time.Duration {
	d := s.cfg.Interval
	if s.cfg.Jitter > 0 {
		f := 1 + s.cfg.Jitter*(2*s.rand.Float64()-1)
		d = time.Duration(float64(d) * f)
	}
	return d
}
