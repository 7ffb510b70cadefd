// pkg/memheap/sizeclass.go
package memheap

// BinFull is the sentinel size-class index: pages that have no free
// blocks left are parked in this bin regardless of their actual block
// size, so a heap never needs to scan a full page while looking for
// space.
const BinFull = numSmallBins

// NumBins is the number of page-queue slots a heap carries, one per real
// size class plus the BinFull sentinel.
const NumBins = BinFull + 1

const numSmallBins = 64

// SizeClassifier maps a requested block size to a bin index and back.
// The binning function itself is an external collaborator (it is tuned
// against allocation traces, not against heap-management correctness),
// so heapcore only depends on this interface. DefaultSizeClassifier is a
// reasonable standalone implementation used when no caller-supplied
// classifier is configured.
type SizeClassifier interface {
	// BinOf returns the bin a block of the given size is placed in.
	// Must return a value in [0, BinFull).
	BinOf(blockSize uintptr) int

	// BlockSizeOf returns the block size associated with a bin, i.e. the
	// largest block size that still maps to BinOf == bin.
	BlockSizeOf(bin int) uintptr
}

// DefaultSizeClassifier buckets sizes so that rounding a request up to
// its class wastes at most ~12.5% of the allocation, the same bound
// mimalloc and the Go runtime's small-object classes target: classes grow
// in increments of size/8 rather than by fixed steps, so waste stays
// proportional at every scale.
type DefaultSizeClassifier struct {
	sizes [numSmallBins]uintptr
}

// NewDefaultSizeClassifier builds the bin table once; callers are
// expected to keep a single instance and share it across heaps.
func NewDefaultSizeClassifier() *DefaultSizeClassifier {
	c := &DefaultSizeClassifier{}
	size := uintptr(8)
	for i := 0; i < numSmallBins; i++ {
		c.sizes[i] = size
		step := (size + 7) / 8
		size += step
	}
	return c
}

// BinOf returns the smallest bin whose class size is >= blockSize.
func (c *DefaultSizeClassifier) BinOf(blockSize uintptr) int {
	for i, s := range c.sizes {
		if blockSize <= s {
			return i
		}
	}
	return numSmallBins - 1
}

// BlockSizeOf returns the class size for bin, clamped to the table range.
func (c *DefaultSizeClassifier) BlockSizeOf(bin int) uintptr {
	if bin < 0 {
		bin = 0
	}
	if bin >= numSmallBins {
		bin = numSmallBins - 1
	}
	return c.sizes[bin]
}
