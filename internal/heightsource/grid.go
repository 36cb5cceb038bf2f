package heightsource

// Resample maps a w x h row-major grid onto dim x dim by nearest neighbour.
func Resample(src []float32, w, h, dim int) []float32 {
	out := make([]float32, dim*dim)
	for y := 0; y < dim; y++ {
		sy := y * h / dim
		for x := 0; x < dim; x++ {
			sx := x * w / dim
			out[y*dim+x] = src[sy*w+sx]
		}
	}
	return out
}

// Normalize linearly remaps values in place to [0, 1] and returns them.
// A constant input becomes all zeros.
func Normalize(values []float32) []float32 {
	if len(values) == 0 {
		return values
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}

	span := hi - lo
	for i, v := range values {
		if span == 0 {
			values[i] = 0
			continue
		}
		values[i] = (v - lo) / span
	}
	return values
}

// Flat returns dim*dim samples all set to h.
func Flat(dim int, h float32) []float32 {
	out := make([]float32, dim*dim)
	for i := range out {
		out[i] = h
	}
	return out
}
