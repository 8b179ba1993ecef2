package friproof

import "fmt"

// Options configures a FRI instance's shape: how fast layers shrink,
// how many positions get queried, and the blowup factor of the
// initial LDE domain. Plain struct + Validate() + With* builders
// rather than functional options.
type Options struct {
	FoldingFactor int
	NumQueries    int
	Blowup        int
}

// DefaultOptions returns a folding factor of 4, 32 queries, and a
// blowup of 8.
func DefaultOptions() Options {
	return Options{FoldingFactor: 4, NumQueries: 32, Blowup: 8}
}

// WithFoldingFactor returns a copy of o with FoldingFactor set.
func (o Options) WithFoldingFactor(f int) Options {
	o.FoldingFactor = f
	return o
}

// WithNumQueries returns a copy of o with NumQueries set.
func (o Options) WithNumQueries(n int) Options {
	o.NumQueries = n
	return o
}

// WithBlowup returns a copy of o with Blowup set.
func (o Options) WithBlowup(b int) Options {
	o.Blowup = b
	return o
}

// Validate checks that every field is a positive power of two (folding
// factor and blowup) or a positive count (queries).
func (o Options) Validate() error {
	if o.FoldingFactor <= 1 || o.FoldingFactor&(o.FoldingFactor-1) != 0 {
		return fmt.Errorf("friproof: folding factor %d must be a power of two greater than 1", o.FoldingFactor)
	}
	if o.NumQueries <= 0 {
		return fmt.Errorf("friproof: number of queries %d must be positive", o.NumQueries)
	}
	if o.Blowup <= 1 || o.Blowup&(o.Blowup-1) != 0 {
		return fmt.Errorf("friproof: blowup %d must be a power of two greater than 1", o.Blowup)
	}
	return nil
}
