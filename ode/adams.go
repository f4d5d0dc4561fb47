package ode

// stepAdams 2阶变步长 Adams 预测-校正（PECE）
//
// 预测（Adams-Bashforth，ω = h/h[n-1]）：
//
//	y* = y[n] + h*((1+ω/2)*f[n] - (ω/2)*f[n-1])
//
// 校正（Adams-Moulton / 梯形）：
//
//	y[n+1] = y[n] + h/2*(f[n] + f(t[n+1], y*))
//
// 局部截断误差用 Milne 方法估计：预测误差系数 1/6+1/(4ω)，校正误差系数 -1/12，
// 得到 LTE ≈ -ω/(3(ω+1)) * (y[n+1] - y*)。
// 没有历史点时用欧拉预测，误差直接取校正与预测之差（按1阶控制步长）。
func (it *Integrator) stepAdams(h float64) (errNorm float64, order int, ok bool) {
	t := it.currentTime
	if !it.hasPrev {
		for i := range it.y {
			it.pred[i] = it.y[i] + h*it.dy[i]
		}
		it.f(t+h, it.pred, it.fp)
		it.stats.Evaluations++
		for i := range it.y {
			it.corr[i] = it.y[i] + h/2*(it.dy[i]+it.fp[i])
			it.errv[i] = it.corr[i] - it.pred[i]
		}
		return it.norm(it.errv, it.y, it.corr), 1, true
	}
	omega := h / it.prevStep
	for i := range it.y {
		it.pred[i] = it.y[i] + h*((1+omega/2)*it.dy[i]-omega/2*it.prevDy[i])
	}
	it.f(t+h, it.pred, it.fp)
	it.stats.Evaluations++
	lte := -omega / (3 * (omega + 1))
	for i := range it.y {
		it.corr[i] = it.y[i] + h/2*(it.dy[i]+it.fp[i])
		it.errv[i] = lte * (it.corr[i] - it.pred[i])
	}
	return it.norm(it.errv, it.y, it.corr), 2, true
}
