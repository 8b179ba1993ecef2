package field

import "fmt"

// FFT evaluates a polynomial, given in coefficient form, over the
// multiplicative subgroup generated by a primitive n-th root of unity
// (n = len(coeffs), a power of two).
func FFT(f *Field, coeffs []Element) ([]Element, error) {
	n := len(coeffs)
	if n == 0 || n&(n-1) != 0 {
		return nil, fmt.Errorf("field: FFT size %d must be a power of two", n)
	}
	logN := log2(n)
	g, err := f.RootOfUnity(uint(logN))
	if err != nil {
		return nil, fmt.Errorf("field: FFT: %w", err)
	}
	values := append([]Element(nil), coeffs...)
	bitReverse(values)
	ntt(values, g)
	return values, nil
}

// IFFT interpolates evaluations (over the same root-of-unity subgroup
// FFT uses) back into coefficient form.
func IFFT(f *Field, values []Element) ([]Element, error) {
	n := len(values)
	if n == 0 || n&(n-1) != 0 {
		return nil, fmt.Errorf("field: IFFT size %d must be a power of two", n)
	}
	logN := log2(n)
	g, err := f.RootOfUnity(uint(logN))
	if err != nil {
		return nil, fmt.Errorf("field: IFFT: %w", err)
	}
	gInv, err := g.Inv()
	if err != nil {
		return nil, fmt.Errorf("field: IFFT: %w", err)
	}
	coeffs := append([]Element(nil), values...)
	bitReverse(coeffs)
	ntt(coeffs, gInv)
	nInv, err := f.NewElementFromInt64(int64(n)).Inv()
	if err != nil {
		return nil, fmt.Errorf("field: IFFT: %w", err)
	}
	for i := range coeffs {
		coeffs[i] = coeffs[i].Mul(nInv)
	}
	return coeffs, nil
}

// CosetIFFT interpolates evaluations taken over the coset
// {offset * g^i} back into coefficient form.
// It is IFFT over the trivial-offset subgroup followed by
// dividing coefficient i by offset^i, since p(offset*x) = q(x) where
// q is what plain IFFT recovers.
func CosetIFFT(f *Field, values []Element, offset Element) ([]Element, error) {
	coeffs, err := IFFT(f, values)
	if err != nil {
		return nil, fmt.Errorf("field: CosetIFFT: %w", err)
	}
	offsetInv, err := offset.Inv()
	if err != nil {
		return nil, fmt.Errorf("field: CosetIFFT: %w", err)
	}
	power := f.One()
	for i := range coeffs {
		coeffs[i] = coeffs[i].Mul(power)
		power = power.Mul(offsetInv)
	}
	return coeffs, nil
}

// CosetFFT evaluates a polynomial over the coset {offset * g^i}, the
// forward counterpart of CosetIFFT.
func CosetFFT(f *Field, coeffs []Element, offset Element) ([]Element, error) {
	scaled := make([]Element, len(coeffs))
	power := f.One()
	for i, c := range coeffs {
		scaled[i] = c.Mul(power)
		power = power.Mul(offset)
	}
	return FFT(f, scaled)
}

// ntt performs an in-place iterative Cooley-Tukey transform of
// bit-reversed input using g as the subgroup generator.
func ntt(values []Element, g Element) {
	n := len(values)
	for size := 2; size <= n; size *= 2 {
		halfSize := size / 2
		stepExp := n / size
		w := g.ExpInt(stepExp)
		for start := 0; start < n; start += size {
			twiddle := values[0].Field().One()
			for i := 0; i < halfSize; i++ {
				a := values[start+i]
				b := values[start+i+halfSize].Mul(twiddle)
				values[start+i] = a.Add(b)
				values[start+i+halfSize] = a.Sub(b)
				twiddle = twiddle.Mul(w)
			}
		}
	}
}

func bitReverse(values []Element) {
	n := len(values)
	for i, j := 1, 0; i < n; i++ {
		bit := n >> 1
		for ; j&bit != 0; bit >>= 1 {
			j ^= bit
		}
		j ^= bit
		if i < j {
			values[i], values[j] = values[j], values[i]
		}
	}
}

func log2(n int) int {
	l := 0
	for (1 << l) < n {
		l++
	}
	return l
}

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool { return n > 0 && n&(n-1) == 0 }

// NextPowerOfTwo returns the smallest power of two >= n (1 for n<=1).
func NextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n++
	return n
}
