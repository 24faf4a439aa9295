/*
Package ringroute implements a consistent-hashing request router.

Servers and request keys are mapped onto a shared 64-bit hash space arranged
as a ring. Each server is placed on the ring several times ("virtual
replicas") to smooth load distribution. A request is routed to the server
owning the first ring position at or after the request's hash value, wrapping
past the maximum position back to the minimum.

For more theory about the subject please see this great document:
https://theory.stanford.edu/~tim/s16/l/l1.pdf

Servers may become unavailable at any moment. Routing does not stop at an
unavailable server: the lookup keeps walking the ring in position order until
it finds an available one, and reports ErrNoServerAvailable only after a full
wrap finds none. This failover needs no ring rebuild.

There are two goals for this implementation:

1) To keep routing free of locks. The ring is built exactly once from a fixed
roster and never mutated afterwards; the only mutable shared state is each
server's availability flag, a single atomic word. Any number of routing calls
may run concurrently with availability flips.

2) To make instability reproducible. The bundled Simulator flips availability
the way real deployments do, with overlapping outages, and restores every
server on shutdown so tests can reason about the final state.
*/
package ringroute
