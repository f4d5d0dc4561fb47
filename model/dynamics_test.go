package model

import (
	"math"
	"testing"
)

// TestDerivativeFinite 反转电位 ±1000mV 范围内导数应为有限值
// 简化变体电位按 100mV 归一，对应范围为 ±10。
func TestDerivativeFinite(t *testing.T) {
	for v, bound := range map[Variant]float64{Simple: 10, Extended: 1000} {
		p := Defaults(v)
		lo := math.Min(p.VK, math.Min(p.VL, p.VCa)) - bound
		hi := math.Max(p.VK, math.Max(p.VL, p.VCa)) + bound
		for i := 0; i <= 200; i++ {
			V := lo + (hi-lo)*float64(i)/200
			for _, w := range []float64{-1, 0, 0.5, 1, 2} {
				dV, dW := Derivative(State{V: V, W: w}, 0, &p)
				if math.IsNaN(dV) || math.IsInf(dV, 0) || math.IsNaN(dW) || math.IsInf(dW, 0) {
					t.Fatalf("%s: V=%v w=%v 时导数非有限: (%v, %v)", v, V, w, dV, dW)
				}
			}
		}
	}
}

// TestDerivativeSimpleOrigin 简化变体在初始点 (0,0) 的导数
func TestDerivativeSimpleOrigin(t *testing.T) {
	p := Defaults(Simple)
	dV, dW := Derivative(p.Initial(), 0, &p)
	m := 0.5 * (1 + math.Tanh(0.01/0.15))
	wantV := 0.1 - m*(0-1) - 0 - 0.5*(0+0.5)
	if math.Abs(dV-wantV) > 1e-15 {
		t.Errorf("dV/dt 不正确: 期望 %v, 实际 %v", wantV, dV)
	}
	wantW := (p.WInf(0) - 0) / p.TauW(0)
	if math.Abs(dW-wantW) > 1e-15 {
		t.Errorf("dw/dt 不正确: 期望 %v, 实际 %v", wantW, dW)
	}
}

// TestPhiAppliedOnce dw/dt 与 phi 成正比（phi 只作用一次）
func TestPhiAppliedOnce(t *testing.T) {
	p := Defaults(Extended)
	s := State{V: -20, W: 0.1}
	_, base := Derivative(s, 0, &p)
	q := p
	q.Phi *= 2
	_, doubled := Derivative(s, 0, &q)
	if math.Abs(doubled-2*base) > 1e-15*math.Abs(base)+1e-18 {
		t.Errorf("phi 加倍后 dw/dt 应加倍: %v -> %v", base, doubled)
	}
}

// TestDerivativeAutonomous 时间参数不影响导数
func TestDerivativeAutonomous(t *testing.T) {
	p := Defaults(Extended)
	s := State{V: -35, W: 0.2}
	dV0, dW0 := Derivative(s, 0, &p)
	dV1, dW1 := Derivative(s, 1234.5, &p)
	if dV0 != dV1 || dW0 != dW1 {
		t.Errorf("自治系统导数不应依赖时间: (%v,%v) != (%v,%v)", dV0, dW0, dV1, dW1)
	}
}

// TestDerivativeNonFinite 极端输入不 panic
func TestDerivativeNonFinite(t *testing.T) {
	p := Defaults(Simple)
	dV, _ := Derivative(State{V: math.NaN(), W: 0}, 0, &p)
	if !math.IsNaN(dV) {
		t.Errorf("NaN 输入应得到 NaN: %v", dV)
	}
}

func TestGatingCurves(t *testing.T) {
	p := Defaults(Extended)
	if got := p.MInf(p.V1); math.Abs(got-0.5) > 1e-15 {
		t.Errorf("m_inf(V1) 应为0.5: %v", got)
	}
	if got := p.WInf(p.V3); math.Abs(got-0.5) > 1e-15 {
		t.Errorf("w_inf(V3) 应为0.5: %v", got)
	}
	if got, want := p.TauW(p.V3), 1/p.Phi; math.Abs(got-want) > 1e-12 {
		t.Errorf("tau_w(V3) 应为 1/phi: 期望 %v, 实际 %v", want, got)
	}
}

func TestFunc(t *testing.T) {
	p := Defaults(Extended).WithIExt(90)
	f := Func(&p)
	dy := make([]float64, 2)
	f(0, []float64{-30, 0.1}, dy)
	dV, dW := Derivative(State{V: -30, W: 0.1}, 0, &p)
	if dy[0] != dV || dy[1] != dW {
		t.Errorf("Func 与 Derivative 不一致: %v != (%v,%v)", dy, dV, dW)
	}
}
