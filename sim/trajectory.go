package sim

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"morrislecar/model"
	"morrislecar/ode"
)

// Trajectory 一次仿真的完整轨迹，T、V、W 等长且按下标对应
// 构造后不再修改，归请求仿真的调用方所有。
type Trajectory struct {
	Variant model.Variant  // 模型变体
	Params  model.Params   // 本次仿真使用的参数
	T       []float64      // 时间，严格递增
	V       []float64      // 膜电位
	W       []float64      // 恢复变量
	Stats   ode.Statistics // 积分统计
}

// Len 轨迹点数
func (tr *Trajectory) Len() int { return len(tr.T) }

// At 第 i 个点的状态
func (tr *Trajectory) At(i int) model.State { return model.State{V: tr.V[i], W: tr.W[i]} }

// Summary 轨迹统计
type Summary struct {
	MinV, MaxV, MeanV, StdV float64
	MinW, MaxW, MeanW, StdW float64
}

// Summary 计算 V、w 的最值、均值和标准差
func (tr *Trajectory) Summary() Summary {
	var s Summary
	if tr.Len() == 0 {
		return s
	}
	s.MinV, s.MaxV = floats.Min(tr.V), floats.Max(tr.V)
	s.MinW, s.MaxW = floats.Min(tr.W), floats.Max(tr.W)
	s.MeanV, s.StdV = stat.MeanStdDev(tr.V, nil)
	s.MeanW, s.StdW = stat.MeanStdDev(tr.W, nil)
	return s
}
