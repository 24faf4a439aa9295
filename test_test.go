package ringroute

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/ringroute/ringroute/hashkit"
)

// tableHash returns a hash function backed by an explicit table, letting
// tests pin servers and request keys to chosen ring positions.
func tableHash(t *testing.T, values map[string]uint64) hashkit.Func {
	return func(key []byte) uint64 {
		v, has := values[string(key)]
		if !has {
			t.Fatalf("table hash: unexpected key %q", key)
		}
		return v
	}
}

// placeServer records one position per virtual point of a server. The ring
// built on top must use Replicas equal to the number of positions given.
func placeServer(values map[string]uint64, id string, positions ...uint64) {
	for i, pos := range positions {
		values[string(pointKey(id, i))] = pos
	}
}

// quietLogger keeps expected collision and flip logging out of test output.
func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
