package model

import "math"

// State 模型状态
type State struct {
	V float64 // 膜电位
	W float64 // 恢复（门控）变量，名义范围 [0,1]，模型不做限制
}

// MInf 钙通道稳态激活
func (p *Params) MInf(v float64) float64 {
	return 0.5 * (1 + math.Tanh((v-p.V1)/p.V2))
}

// WInf 钾通道稳态门控
func (p *Params) WInf(v float64) float64 {
	return 0.5 * (1 + math.Tanh((v-p.V3)/p.V4))
}

// TauW 恢复变量的有效时间常数 1/(phi*cosh((V-V3)/(2*V4)))
// phi 只出现在这里，Derivative 中不再重复乘 phi。
func (p *Params) TauW(v float64) float64 {
	return 1 / (p.Phi * math.Cosh((v-p.V3)/(2*p.V4)))
}

// Derivative 计算瞬时导数 (dV/dt, dw/dt)
// 系统为自治系统，t 不参与计算。极端输入按 IEEE-754 返回 Inf/NaN，不会 panic。
func Derivative(s State, t float64, p *Params) (dV, dW float64) {
	iCa := p.GCa * p.MInf(s.V) * (s.V - p.VCa)
	iK := p.GK * s.W * (s.V - p.VK)
	iL := p.GL * (s.V - p.VL)
	dV = (p.IExt - iCa - iK - iL) / p.C
	// (w_inf-w)/TauW 的等价写法，phi=0 时得到 0 而不是 0/Inf
	dW = p.Phi * math.Cosh((s.V-p.V3)/(2*p.V4)) * (p.WInf(s.V) - s.W)
	return dV, dW
}

// Func 适配积分器的导数函数签名，y = [V, w]
func Func(p *Params) func(t float64, y, dy []float64) {
	return func(t float64, y, dy []float64) {
		dy[0], dy[1] = Derivative(State{V: y[0], W: y[1]}, t, p)
	}
}
