package field

import (
	"fmt"
	"math/big"
	"runtime"
	"sync"
)

// ParallelThreshold is the minimum batch size below which parallel batch
// helpers fall back to their sequential counterparts.
const ParallelThreshold = 1000

// BatchInversion inverts every element in one pass using Montgomery's
// trick: one accumulated-product inversion plus 3(n-1) multiplications,
// instead of n independent extended-Euclidean inversions.
func BatchInversion(elements []Element) ([]Element, error) {
	n := len(elements)
	if n == 0 {
		return []Element{}, nil
	}
	if n == 1 {
		inv, err := elements[0].Inv()
		if err != nil {
			return nil, err
		}
		return []Element{inv}, nil
	}
	for i, e := range elements {
		if e.IsZero() {
			return nil, fmt.Errorf("field: cannot invert zero element at index %d", i)
		}
	}

	acc := make([]Element, n)
	acc[0] = elements[0]
	for i := 1; i < n; i++ {
		acc[i] = acc[i-1].Mul(elements[i])
	}

	accInv, err := acc[n-1].Inv()
	if err != nil {
		return nil, fmt.Errorf("field: failed to invert accumulator: %w", err)
	}

	results := make([]Element, n)
	for i := n - 1; i > 0; i-- {
		results[i] = accInv.Mul(acc[i-1])
		accInv = accInv.Mul(elements[i])
	}
	results[0] = accInv
	return results, nil
}

// DefaultWorkerCount sizes worker pools off GOMAXPROCS rather than a
// hardcoded constant.
func DefaultWorkerCount() int {
	n := runtime.GOMAXPROCS(0)
	if n < 1 {
		return 1
	}
	return n
}

// ParallelBatchInversion chunks elements across numWorkers goroutines and
// batch-inverts each chunk independently, joined with a WaitGroup. Below
// ParallelThreshold it degrades to BatchInversion.
func ParallelBatchInversion(elements []Element, numWorkers int) ([]Element, error) {
	n := len(elements)
	if n == 0 {
		return []Element{}, nil
	}
	if n < ParallelThreshold || numWorkers <= 1 {
		return BatchInversion(elements)
	}

	chunkSize := (n + numWorkers - 1) / numWorkers
	results := make([]Element, n)

	var wg sync.WaitGroup
	errChan := make(chan error, numWorkers)

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			start := workerID * chunkSize
			if start >= n {
				return
			}
			end := start + chunkSize
			if end > n {
				end = n
			}
			inverted, err := BatchInversion(elements[start:end])
			if err != nil {
				errChan <- fmt.Errorf("field: worker %d failed: %w", workerID, err)
				return
			}
			copy(results[start:end], inverted)
		}(w)
	}

	wg.Wait()
	close(errChan)
	if err := <-errChan; err != nil {
		return nil, err
	}
	return results, nil
}

// BatchExponentiation raises every base to the same exponent.
func BatchExponentiation(bases []Element, exponent *big.Int) []Element {
	results := make([]Element, len(bases))
	for i, b := range bases {
		results[i] = b.Exp(exponent)
	}
	return results
}

// ParallelBatchExponentiation is the chunked-goroutine analogue of
// BatchExponentiation, used for powering up a coset's points.
func ParallelBatchExponentiation(bases []Element, exponent *big.Int, numWorkers int) []Element {
	n := len(bases)
	if n < ParallelThreshold || numWorkers <= 1 {
		return BatchExponentiation(bases, exponent)
	}

	results := make([]Element, n)
	chunkSize := (n + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			start := workerID * chunkSize
			if start >= n {
				return
			}
			end := start + chunkSize
			if end > n {
				end = n
			}
			for i := start; i < end; i++ {
				results[i] = bases[i].Exp(exponent)
			}
		}(w)
	}
	wg.Wait()
	return results
}

// PowersFrom computes [start, start*g, start*g^2, ..., start*g^(n-1)],
// the point sequence a coset-offset divisor or domain evaluation walks.
// When n is large the sequence is built by numWorkers goroutines, each
// computing its own chunk's first element as start*g^(chunkStart) so
// chunks have no sequential dependency on one another.
func PowersFrom(start, g Element, n int, numWorkers int) []Element {
	out := make([]Element, n)
	if n == 0 {
		return out
	}
	if n < ParallelThreshold || numWorkers <= 1 {
		cur := start
		for i := 0; i < n; i++ {
			out[i] = cur
			cur = cur.Mul(g)
		}
		return out
	}

	chunkSize := (n + numWorkers - 1) / numWorkers
	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			chunkStart := workerID * chunkSize
			if chunkStart >= n {
				return
			}
			chunkEnd := chunkStart + chunkSize
			if chunkEnd > n {
				chunkEnd = n
			}
			cur := start.Mul(g.Exp(big.NewInt(int64(chunkStart))))
			for i := chunkStart; i < chunkEnd; i++ {
				out[i] = cur
				cur = cur.Mul(g)
			}
		}(w)
	}
	wg.Wait()
	return out
}
