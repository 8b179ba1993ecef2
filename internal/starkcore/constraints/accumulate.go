// Package constraints implements the column accumulator and the
// constraint evaluation table: one combined evaluation column per
// divisor, divided out and summed into a single composition
// polynomial.
package constraints

import (
	"fmt"
	"sync"

	"github.com/vybium/starkcore/internal/starkcore/divisor"
	"github.com/vybium/starkcore/internal/starkcore/field"
	"github.com/vybium/starkcore/internal/starkcore/invariant"
)

// ParallelThreshold is the minimum column length above which Accumulate
// splits work across goroutines.
const ParallelThreshold = 1024

// Accumulate divides column by div over a domain of domainOffset*g^i
// and adds the quotient into result, component-wise:
//
//	result[i] += quotient_i
//
// Boundary divisors (no exclusion point) have quotient_i =
// column[i] * z[i mod |z|]; transition divisors additionally multiply
// by (x_i - exclusion). z is div's inverse-divisor evaluation vector.
// column and result must have equal power-of-two length.
func Accumulate(f *field.Field, column []field.Element, div divisor.ConstraintDivisor, domainOffset field.Element, result []field.Element) error {
	n := len(column)
	invariant.Assertf(n == len(result), "accumulate: column length %d != result length %d", n, len(result))
	invariant.Assertf(field.IsPowerOfTwo(n), "accumulate: column length %d must be a power of two", n)

	z, err := div.EvalInverses(f, n, domainOffset)
	if err != nil {
		return fmt.Errorf("constraints: accumulate: %w", err)
	}
	zLen := len(z)

	if !div.HasExclusion {
		accumulateBoundary(column, z, zLen, result)
		return nil
	}

	g, err := f.RootOfUnity(uint(log2(n)))
	if err != nil {
		return fmt.Errorf("constraints: accumulate: %w", err)
	}
	accumulateTransition(column, z, zLen, domainOffset, g, div.Exclusion, result)
	return nil
}

func accumulateBoundary(column, z []field.Element, zLen int, result []field.Element) {
	n := len(column)
	workers := field.DefaultWorkerCount()
	if n < ParallelThreshold || workers <= 1 {
		for i := 0; i < n; i++ {
			result[i] = result[i].Add(column[i].Mul(z[i%zLen]))
		}
		return
	}
	forEachChunk(n, field.NextPowerOfTwo(workers), func(start, end int) {
		for i := start; i < end; i++ {
			result[i] = result[i].Add(column[i].Mul(z[i%zLen]))
		}
	})
}

func accumulateTransition(column, z []field.Element, zLen int, domainOffset, g, exclusion field.Element, result []field.Element) {
	n := len(column)
	workers := field.DefaultWorkerCount()
	if n < ParallelThreshold || workers <= 1 {
		x := domainOffset
		for i := 0; i < n; i++ {
			result[i] = result[i].Add(column[i].Mul(x.Sub(exclusion)).Mul(z[i%zLen]))
			x = x.Mul(g)
		}
		return
	}
	forEachChunk(n, field.NextPowerOfTwo(workers), func(start, end int) {
		x := domainOffset.Mul(g.ExpInt(start))
		for i := start; i < end; i++ {
			result[i] = result[i].Add(column[i].Mul(x.Sub(exclusion)).Mul(z[i%zLen]))
			x = x.Mul(g)
		}
	})
}

// forEachChunk fans n indices out across numWorkers goroutines, each
// independently computing its chunk bounds, joined with a WaitGroup.
func forEachChunk(n, numWorkers int, fn func(start, end int)) {
	chunkSize := (n + numWorkers - 1) / numWorkers
	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		start := w * chunkSize
		if start >= n {
			break
		}
		end := start + chunkSize
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			fn(start, end)
		}(start, end)
	}
	wg.Wait()
}

func log2(n int) int {
	l := 0
	for (1 << l) < n {
		l++
	}
	return l
}
