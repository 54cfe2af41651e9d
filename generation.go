package atlas

// InvalidGeneration is the reserved generation value that never identifies
// live plot contents. The zero PlotLocator carries it.
const InvalidGeneration uint64 = 0

// maxGeneration is the exclusive upper bound on generation values.
// PlotLocator stores the generation in 48 bits.
const maxGeneration = uint64(1) << 48

// GenerationCounter issues monotonically increasing generation numbers for
// an atlas and its plots. Each plot eviction consumes one value, so the
// 48-bit budget lasts the lifetime of any realistic session: at one
// eviction per microsecond the counter runs for roughly 8.9 years.
// Next does not guard against exhaustion.
//
// GenerationCounter is not safe for concurrent use. The atlas assumes
// exclusive single-threaded ownership, like every other type in this
// package.
type GenerationCounter struct {
	generation uint64
}

// NewGenerationCounter creates a counter whose first Next returns 1.
func NewGenerationCounter() *GenerationCounter {
	return &GenerationCounter{generation: 1}
}

// Next returns a fresh generation strictly greater than all previously
// returned values.
func (c *GenerationCounter) Next() uint64 {
	g := c.generation
	c.generation++
	return g
}
