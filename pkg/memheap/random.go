// pkg/memheap/random.go
package memheap

// randomStream is a splittable PRNG used to derive each heap's integrity
// cookie and freelist-encoding keys from its parent's stream, per §4.2.
// No library in the corpus offers a splittable generator (stdlib
// math/rand has no notion of "splitting" a stream into independent
// children), so this hand-rolls splitmix64 -- a well-known, widely
// reused public-domain generator -- rather than reach for an unrelated
// dependency. See DESIGN.md for the standard-library justification.
type randomStream struct {
	state uint64
}

// newRandomStream seeds a fresh stream.
func newRandomStream(seed uint64) *randomStream {
	return &randomStream{state: seed}
}

// next advances the stream and returns the next 64 bits.
func (r *randomStream) next() uint64 {
	r.state += 0x9E3779B97F4A7C15
	z := r.state
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

// split derives an independent child stream. Used when a backing heap
// hands a new user heap its own random stream (§4.2 step 5).
func (r *randomStream) split() *randomStream {
	return newRandomStream(r.next())
}

// deriveCookie produces the forced-odd integrity cookie for a heap from
// its random stream.
func (r *randomStream) deriveCookie() uint64 {
	c := r.next() | 1
	return c
}

// deriveKeys produces the (key0, key1) pair used to encode/decode this
// heap's thread-delayed-free list.
func (r *randomStream) deriveKeys() (uint64, uint64) {
	return r.next(), r.next()
}
