package ode

import (
	"errors"
	"fmt"
)

var (
	// ErrStepTooSmall 自适应步长低于最小步长
	ErrStepTooSmall = errors.New("步长过小，积分无法继续")
	// ErrExcessWork 两个输出点之间的步数超过上限
	ErrExcessWork = errors.New("输出区间内步数超过上限")
	// ErrNonFinite 状态出现 NaN/Inf
	ErrNonFinite = errors.New("状态出现无效值（NaN/Inf）")
	// ErrInvalidGrid 输出时间网格为空或不是严格递增
	ErrInvalidGrid = errors.New("输出时间网格无效")
	// ErrInvalidState 初始状态为空或包含无效值
	ErrInvalidState = errors.New("初始状态无效")
)

// Error 积分失败的诊断信息
type Error struct {
	Time    float64 // 失败时刻
	Step    float64 // 失败时的步长
	Steps   int     // 已接受步数
	Mode    Mode    // 失败时的方法
	Wrapped error   // 具体原因
}

func (e *Error) Error() string {
	return fmt.Sprintf("积分失败（t=%.6e, h=%.6e, 步数=%d, 方法=%s）: %v",
		e.Time, e.Step, e.Steps, e.Mode, e.Wrapped)
}

func (e *Error) Unwrap() error { return e.Wrapped }
