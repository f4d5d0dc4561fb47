package ode

import "fmt"

// Func 导数函数，dy = f(t, y)，dy 由调用方分配
type Func func(t float64, y, dy []float64)

// Mode 积分方法
type Mode uint8

const (
	// Adams 非刚性：2阶 Adams-Bashforth 预测 + Adams-Moulton（梯形）校正
	Adams Mode = iota
	// BDF 刚性：2阶向后差分 + 简化牛顿迭代
	BDF
)

func (m Mode) String() string {
	switch m {
	case Adams:
		return "adams"
	case BDF:
		return "bdf"
	}
	return fmt.Sprintf("Mode(%d)", uint8(m))
}

// Clock 积分时间接口，提供积分过程中的时间相关信息
// 每个接受步之后传给观察者，用于记录步长变化和方法切换。
type Clock interface {
	// Time 当前积分时间
	Time() float64

	// TimeStep 刚接受的步长
	TimeStep() float64

	// MaxTimeStep 最大允许步长，0 表示不限制
	MaxTimeStep() float64

	// MinTimeStep 最小允许步长
	MinTimeStep() float64

	// GoodIterations 已接受的步数
	GoodIterations() int

	// Mode 当前积分方法
	Mode() Mode
}

// Observer 每个接受步之后的回调，y 只在回调期间有效
type Observer func(clock Clock, y []float64)

// Config 积分器配置
type Config struct {
	AbsTol      float64 // 绝对误差容差
	RelTol      float64 // 相对误差容差
	InitialStep float64 // 初始步长，0 表示自动估计
	MinStep     float64 // 最小步长
	MaxStep     float64 // 最大步长，0 表示不限制
	MaxSteps    int     // 相邻两个输出点之间允许的最大步数
	Safety      float64 // 步长调整安全系数（0~1）
	StiffCheck  int     // 每隔多少个接受步做一次刚性检测
	SwitchAfter int     // 连续多少次检测结果一致才切换方法
	Mode        Mode    // 起始方法
}

// DefaultConfig 默认配置，容差与步数上限和 odeint 一致
func DefaultConfig() Config {
	return Config{
		AbsTol:      1.49012e-8,
		RelTol:      1.49012e-8,
		MinStep:     1e-12,
		MaxSteps:    500,
		Safety:      0.85,
		StiffCheck:  10,
		SwitchAfter: 3,
		Mode:        Adams,
	}
}

// Statistics 积分统计
type Statistics struct {
	Steps          int     // 接受步数
	Rejected       int     // 拒绝步数
	Evaluations    int     // 导数函数调用次数（含雅可比差分）
	Jacobians      int     // 雅可比计算次数
	Factorizations int     // LU 分解次数
	Switches       int     // 方法切换次数
	LastStep       float64 // 最后一个接受步的步长
	Mode           Mode    // 结束时的方法
}

// Solution 输出网格上的解
type Solution struct {
	T     []float64   // 输出时间网格
	Y     [][]float64 // Y[k] 为 T[k] 时刻的状态
	Stats Statistics  // 积分统计
}

// Component 得到第 i 个分量的时间序列
func (s *Solution) Component(i int) []float64 {
	out := make([]float64, len(s.Y))
	for k, y := range s.Y {
		out[k] = y[i]
	}
	return out
}
