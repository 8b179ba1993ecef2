package constraints

import (
	"fmt"

	"github.com/vybium/starkcore/internal/starkcore/divisor"
	"github.com/vybium/starkcore/internal/starkcore/domain"
	"github.com/vybium/starkcore/internal/starkcore/field"
	"github.com/vybium/starkcore/internal/starkcore/invariant"
	"github.com/vybium/starkcore/internal/starkcore/prove"
)

// MinFragmentSize is the smallest row count Table.Fragments will hand
// out per fragment; splitting finer than this buys no parallelism and
// just adds goroutine overhead.
const MinFragmentSize = 256

// Table is the constraint evaluation table: one combined column per
// ConstraintDivisor, row-major writable in parallel fragments, and
// collapsible into a single composition polynomial via IntoPoly.
type Table struct {
	dom      *domain.Domain
	divisors []divisor.ConstraintDivisor
	columns  [][]field.Element
	consumed bool

	debug               bool
	debugColumns        [][]field.Element // raw per-transition-constraint evaluations
	expectedDegrees     []int
	numTransitionConstr int
}

// NewTable allocates a Table of len(divisors) zero-filled columns,
// each of length dom.CEDomainSize().
func NewTable(dom *domain.Domain, divisors []divisor.ConstraintDivisor) *Table {
	return newTable(dom, divisors, false, nil)
}

// NewTableDebug additionally allocates numTransitionConstraints raw
// columns, recording each transition constraint's unscaled evaluation
// before division, so ValidateTransitionDegrees can later check each
// against expectedDegrees.
func NewTableDebug(dom *domain.Domain, divisors []divisor.ConstraintDivisor, numTransitionConstraints int, expectedDegrees []int) *Table {
	invariant.Assertf(numTransitionConstraints == len(expectedDegrees),
		"debug table: %d transition constraints but %d expected degrees", numTransitionConstraints, len(expectedDegrees))
	return newTable(dom, divisors, true, expectedDegrees)
}

func newTable(dom *domain.Domain, divisors []divisor.ConstraintDivisor, debug bool, expectedDegrees []int) *Table {
	n := dom.CEDomainSize()
	columns := make([][]field.Element, len(divisors))
	zero := dom.Field.Zero()
	for j := range columns {
		col := make([]field.Element, n)
		for i := range col {
			col[i] = zero
		}
		columns[j] = col
	}
	t := &Table{dom: dom, divisors: divisors, columns: columns, debug: debug}
	if debug {
		t.expectedDegrees = expectedDegrees
		t.numTransitionConstr = len(expectedDegrees)
		t.debugColumns = make([][]field.Element, t.numTransitionConstr)
		for k := range t.debugColumns {
			col := make([]field.Element, n)
			for i := range col {
				col[i] = zero
			}
			t.debugColumns[k] = col
		}
	}
	return t
}

// NumColumns returns the number of divisor-backed columns.
func (t *Table) NumColumns() int { return len(t.columns) }

// NumRows returns the constraint evaluation domain size N.
func (t *Table) NumRows() int { return t.dom.CEDomainSize() }

// UpdateRow writes rowData (one value per column) into row rowIdx of
// every divisor-backed column.
func (t *Table) UpdateRow(rowIdx int, rowData []field.Element) {
	invariant.Assertf(len(rowData) == len(t.columns), "update row: got %d values, table has %d columns", len(rowData), len(t.columns))
	invariant.Assertf(rowIdx >= 0 && rowIdx < t.NumRows(), "update row: index %d out of range [0,%d)", rowIdx, t.NumRows())
	for j, v := range rowData {
		t.columns[j][rowIdx] = v
	}
}

// UpdateDebugRow writes transitionValues (one per transition
// constraint) into row rowIdx of the raw debug columns. Only valid on
// a table built with NewTableDebug.
func (t *Table) UpdateDebugRow(rowIdx int, transitionValues []field.Element) {
	invariant.Assert(t.debug, "update debug row: table was not built with NewTableDebug")
	invariant.Assertf(len(transitionValues) == t.numTransitionConstr,
		"update debug row: got %d values, table tracks %d transition constraints", len(transitionValues), t.numTransitionConstr)
	for k, v := range transitionValues {
		t.debugColumns[k][rowIdx] = v
	}
}

// Fragment is a disjoint, independently writable view over every
// column's [offset, offset+length) rows, obtained via Table.Fragments.
type Fragment struct {
	offset  int
	length  int
	columns [][]field.Element
}

// UpdateRow writes rowData into row localRowIdx (relative to the
// fragment's own offset) of every column in the fragment.
func (fr *Fragment) UpdateRow(localRowIdx int, rowData []field.Element) {
	invariant.Assertf(len(rowData) == len(fr.columns), "fragment update row: got %d values, fragment has %d columns", len(rowData), len(fr.columns))
	invariant.Assertf(localRowIdx >= 0 && localRowIdx < fr.length, "fragment update row: index %d out of range [0,%d)", localRowIdx, fr.length)
	for j, v := range rowData {
		fr.columns[j][localRowIdx] = v
	}
}

// Offset returns the fragment's starting row in the full table.
func (fr *Fragment) Offset() int { return fr.offset }

// Length returns the number of rows the fragment covers.
func (fr *Fragment) Length() int { return fr.length }

// Fragments splits the table's rows into k disjoint fragments, each a
// 3-index slice of every column so writes through one fragment can
// never reallocate into another's range. k must divide NumRows() and
// the resulting fragment length must be >= MinFragmentSize.
func (t *Table) Fragments(k int) ([]*Fragment, error) {
	n := t.NumRows()
	if k <= 0 || n%k != 0 {
		return nil, fmt.Errorf("constraints: fragment count %d does not evenly divide %d rows", k, n)
	}
	length := n / k
	if length < MinFragmentSize {
		return nil, fmt.Errorf("constraints: fragment length %d is below the minimum of %d", length, MinFragmentSize)
	}
	fragments := make([]*Fragment, k)
	for i := 0; i < k; i++ {
		lo := i * length
		hi := lo + length
		cols := make([][]field.Element, len(t.columns))
		for j, col := range t.columns {
			cols[j] = col[lo:hi:hi]
		}
		fragments[i] = &Fragment{offset: lo, length: length, columns: cols}
	}
	return fragments, nil
}

// ValidateTransitionDegrees checks, in debug mode, that each raw
// transition-constraint column's interpolated degree matches its
// declared expected degree exactly — the per-constraint degree bound
// an AIR commits to ahead of time. It also asserts the table was
// sized for those bounds: the row count must equal the next power of
// two of max(max expected degree, trace length + 1).
func (t *Table) ValidateTransitionDegrees() error {
	if !t.debug {
		return nil
	}
	maxDegree := t.dom.TraceLength + 1
	for _, d := range t.expectedDegrees {
		if d > maxDegree {
			maxDegree = d
		}
	}
	invariant.Assertf(t.NumRows() == field.NextPowerOfTwo(maxDegree),
		"validate transition degrees: table has %d rows, expected degrees require %d", t.NumRows(), field.NextPowerOfTwo(maxDegree))
	for k, col := range t.debugColumns {
		coeffs, err := field.CosetIFFT(t.dom.Field, col, t.dom.Offset)
		if err != nil {
			return fmt.Errorf("constraints: validate transition degrees: %w", err)
		}
		actual := polyDegree(t.dom.Field, coeffs)
		if actual != t.expectedDegrees[k] {
			return prove.MismatchedConstraintPolynomialDegree(k, t.expectedDegrees[k], actual)
		}
	}
	return nil
}

// IntoPoly consumes the table, dividing every column by its divisor,
// summing the quotients into a single composition vector, and
// interpolating it into coefficient form via a coset IFFT. The table
// must not be used afterward.
func (t *Table) IntoPoly() ([]field.Element, error) {
	invariant.Assert(!t.consumed, "into poly: table already consumed")
	t.consumed = true

	if t.debug {
		if err := t.ValidateTransitionDegrees(); err != nil {
			return nil, err
		}
	}

	n := t.NumRows()
	result := make([]field.Element, n)
	zero := t.dom.Field.Zero()
	for i := range result {
		result[i] = zero
	}
	offset := t.dom.Offset

	for j, col := range t.columns {
		if err := Accumulate(t.dom.Field, col, t.divisors[j], offset, result); err != nil {
			return nil, fmt.Errorf("constraints: into poly: column %d: %w", j, err)
		}
	}

	if t.debug {
		coeffs, err := field.CosetIFFT(t.dom.Field, result, offset)
		if err != nil {
			return nil, fmt.Errorf("constraints: into poly: %w", err)
		}
		actual := polyDegree(t.dom.Field, coeffs)
		expected := n - 1
		if actual != expected {
			return nil, prove.MismatchedConstraintPolynomialDegree(-1, expected, actual)
		}
		return coeffs, nil
	}

	return field.CosetIFFT(t.dom.Field, result, offset)
}

// polyDegree returns the index of the highest nonzero coefficient, or
// -1 for the zero polynomial.
func polyDegree(f *field.Field, coeffs []field.Element) int {
	for i := len(coeffs) - 1; i >= 0; i-- {
		if !coeffs[i].Equal(f.Zero()) {
			return i
		}
	}
	return -1
}
