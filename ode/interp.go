package ode

// hermite 三次 Hermite 插值：由 (t0, y0, f0) 和 (t0+h, y1, f1) 计算 tq 处的状态
func hermite(t0, h float64, y0, f0, y1, f1 []float64, tq float64) []float64 {
	s := (tq - t0) / h
	s2, s3 := s*s, s*s*s
	h00 := 2*s3 - 3*s2 + 1
	h10 := s3 - 2*s2 + s
	h01 := -2*s3 + 3*s2
	h11 := s3 - s2
	out := make([]float64, len(y0))
	for i := range out {
		out[i] = h00*y0[i] + h10*h*f0[i] + h01*y1[i] + h11*h*f1[i]
	}
	return out
}
