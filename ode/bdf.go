package ode

import (
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"

	"morrislecar/internal/log"
)

// 牛顿迭代参数
const (
	maxNewtonIter = 5    // 单步最大牛顿迭代次数
	newtonTol     = 0.01 // 修正量的加权范数阈值（相对于误差容差）
	newtonDiverge = 2.0  // 修正量增长超过该倍数视为发散
)

// stepBDF 2阶变步长 BDF（ω = h/h[n-1]）
//
//	y[n+1] - a*y[n] + b*y[n-1] = γ*h*f(t[n+1], y[n+1])
//	a = (1+ω)²/(1+2ω), b = ω²/(1+2ω), γ = (1+ω)/(1+2ω)
//
// 预测值为过 y[n-1]、y[n] 且在 t[n] 处斜率为 f[n] 的二次外推，
// 预测误差系数 (1+ω)/(6ω)，校正误差系数 -(1+ω)²/(6ω(1+2ω))，
// 得到 LTE ≈ -(1+ω)/(2+3ω) * (y[n+1] - y*)。
// 没有历史点时退化为隐式欧拉（欧拉预测，LTE ≈ -(y[n+1]-y*)/2）。
func (it *Integrator) stepBDF(h float64) (errNorm float64, order int, ok bool) {
	t := it.currentTime
	a, b, gamma, lte := 1.0, 0.0, 1.0, -0.5
	order = 1
	if it.hasPrev {
		omega := h / it.prevStep
		d := 1 + 2*omega
		a, b, gamma = (1+omega)*(1+omega)/d, omega*omega/d, (1+omega)/d
		lte = -(1 + omega) / (2 + 3*omega)
		order = 2
		hp := it.prevStep
		for i := range it.y {
			c := (it.prevY[i] - it.y[i] + it.dy[i]*hp) / (hp * hp)
			it.pred[i] = it.y[i] + it.dy[i]*h + c*h*h
			it.psi[i] = a*it.y[i] - b*it.prevY[i]
		}
	} else {
		for i := range it.y {
			it.pred[i] = it.y[i] + h*it.dy[i]
			it.psi[i] = it.y[i]
		}
	}
	if !it.newton(t+h, h*gamma) {
		return 0, order, false
	}
	for i := range it.y {
		it.errv[i] = lte * (it.corr[i] - it.pred[i])
	}
	return it.norm(it.errv, it.y, it.corr), order, true
}

// newton 简化牛顿迭代求解 y - hγ*f(t, y) - psi = 0，初值为预测值，结果在 it.corr
// 牛顿矩阵 I - hγ*J 在预测点计算一次并做 LU 分解。
func (it *Integrator) newton(t, hg float64) bool {
	j := it.jacobian(t, it.pred)
	m := mat.NewDense(it.n, it.n, nil)
	m.Scale(-hg, j)
	for i := 0; i < it.n; i++ {
		m.Set(i, i, m.At(i, i)+1)
	}
	var lu mat.LU
	lu.Factorize(m)
	it.stats.Factorizations++

	copy(it.corr, it.pred)
	rhs := mat.NewVecDense(it.n, it.g)
	var delta mat.VecDense
	prevNorm := math.Inf(1)
	for iter := 0; iter < maxNewtonIter; iter++ {
		it.f(t, it.corr, it.fp)
		it.stats.Evaluations++
		for i := range it.corr {
			it.g[i] = it.corr[i] - hg*it.fp[i] - it.psi[i]
		}
		if err := lu.SolveVecTo(&delta, false, rhs); err != nil {
			// 牛顿矩阵病态
			log.Debugw("牛顿矩阵求解失败", "t", t, "error", err)
			return false
		}
		for i := range it.corr {
			it.dx[i] = delta.AtVec(i)
			it.corr[i] -= it.dx[i]
		}
		if !finite(it.corr) {
			return false
		}
		norm := it.norm(it.dx, it.corr, it.pred)
		if norm <= newtonTol {
			return true
		}
		if norm > newtonDiverge*prevNorm {
			return false
		}
		prevNorm = norm
	}
	return false
}

// jacobian 中心差分计算雅可比矩阵
func (it *Integrator) jacobian(t float64, y []float64) *mat.Dense {
	j := mat.NewDense(it.n, it.n, nil)
	fd.Jacobian(j, func(dy, x []float64) {
		it.f(t, x, dy)
		it.stats.Evaluations++
	}, y, &fd.JacobianSettings{Formula: fd.Central})
	it.stats.Jacobians++
	return j
}

// checkStiffness 刚性检测，必要时切换方法
//
// 用 ‖J‖∞ 作为谱半径上界，与 PECE 在负实轴上的稳定区间 h*ρ < 2 比较：
// Adams 模式下步长接近稳定性限制说明问题刚性；
// BDF 模式下步长远小于稳定性限制说明问题已不再刚性。
func (it *Integrator) checkStiffness() {
	it.sinceCheck++
	if it.sinceCheck < it.cfg.StiffCheck {
		return
	}
	it.sinceCheck = 0
	rho := mat.Norm(it.jacobian(it.currentTime, it.y), math.Inf(1))
	hrho := it.currentStep * rho
	var hit bool
	if it.mode == Adams {
		hit = hrho > stiffRatio*adamsStability
	} else {
		hit = hrho < nonstiffRatio*adamsStability
	}
	if !hit {
		it.stiffHits = 0
		return
	}
	it.stiffHits++
	if it.stiffHits < it.cfg.SwitchAfter {
		return
	}
	from := it.mode
	if from == Adams {
		it.mode = BDF
	} else {
		it.mode = Adams
	}
	it.stiffHits = 0
	it.stats.Switches++
	log.Debugw("积分方法切换",
		"from", from.String(),
		"to", it.mode.String(),
		"t", it.currentTime,
		"h", it.currentStep,
		"hrho", hrho,
	)
}

// 刚性检测阈值
const (
	adamsStability = 2.0 // 2阶 PECE 负实轴稳定区间 (-2, 0)
	stiffRatio     = 0.5 // h*ρ 超过稳定上限的该比例判定为刚性
	nonstiffRatio  = 0.2 // h*ρ 低于稳定上限的该比例判定为非刚性
)
