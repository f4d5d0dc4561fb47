package ode

import (
	"errors"
	"fmt"
	"math"

	"morrislecar/internal/log"
)

// 步长调整参数
const (
	minStepScale = 0.2  // 最小步长缩减倍数
	maxStepScale = 2.0  // 最大步长增长倍数，BDF2 零稳定要求相邻步长比 < 1+√2
	rejectScale  = 0.25 // 牛顿迭代失败后的步长缩减倍数
)

// Integrator 自适应步长、固定输出网格的常微分方程积分器
// 在 Adams 预测-校正（非刚性）和 BDF（刚性）之间按刚性检测结果自动切换。
// 单个实例不能并发使用。
type Integrator struct {
	cfg Config
	f   Func
	n   int

	// 时间核心参数
	currentTime float64 // 当前积分时间
	currentStep float64 // 下一步尝试的步长
	lastStep    float64 // 最近接受的步长
	mode        Mode    // 当前方法

	// 历史：y[n], f[n] 以及 y[n-1], f[n-1]
	y, dy         []float64
	prevY, prevDy []float64
	prevStep      float64 // t[n] - t[n-1]
	hasPrev       bool

	// 工作区
	pred, corr, fp, errv, psi, g, dx []float64

	// 刚性检测
	stiffHits  int // 连续一致的检测次数
	sinceCheck int // 距上次检测的接受步数

	intervalSteps int // 当前输出区间内的尝试步数

	stats    Statistics
	observer Observer
}

// New 创建积分器
func New(cfg Config) (*Integrator, error) {
	switch {
	case cfg.AbsTol <= 0 || cfg.RelTol <= 0:
		return nil, errors.New("容差必须大于0")
	case cfg.MaxSteps <= 0:
		return nil, errors.New("最大步数必须大于0")
	case cfg.Safety <= 0 || cfg.Safety > 1:
		return nil, errors.New("安全系数必须在 (0,1] 内")
	case cfg.MinStep < 0 || cfg.MaxStep < 0 || (cfg.MaxStep > 0 && cfg.MaxStep <= cfg.MinStep):
		return nil, fmt.Errorf("步长范围无效：需满足 0 ≤ minStep < maxStep（maxStep=0 表示不限制）")
	case cfg.StiffCheck <= 0 || cfg.SwitchAfter <= 0:
		return nil, errors.New("刚性检测间隔和切换阈值必须大于0")
	case cfg.Mode != Adams && cfg.Mode != BDF:
		return nil, fmt.Errorf("未知积分方法: %s", cfg.Mode)
	}
	return &Integrator{cfg: cfg, mode: cfg.Mode}, nil
}

// Observe 设置接受步回调
func (it *Integrator) Observe(fn Observer) { it.observer = fn }

// Stats 最近一次积分的统计
func (it *Integrator) Stats() Statistics { return it.stats }

// Time 当前积分时间（实现 Clock 接口）
func (it *Integrator) Time() float64 { return it.currentTime }

// TimeStep 最近接受的步长（实现 Clock 接口）
func (it *Integrator) TimeStep() float64 { return it.lastStep }

// MaxTimeStep 最大允许步长（实现 Clock 接口）
func (it *Integrator) MaxTimeStep() float64 { return it.cfg.MaxStep }

// MinTimeStep 最小允许步长（实现 Clock 接口）
func (it *Integrator) MinTimeStep() float64 { return it.cfg.MinStep }

// GoodIterations 已接受步数（实现 Clock 接口）
func (it *Integrator) GoodIterations() int { return it.stats.Steps }

// Mode 当前积分方法（实现 Clock 接口）
func (it *Integrator) Mode() Mode { return it.mode }

// Integrate 从 y0 出发在 grid 上积分，返回每个网格点的状态
// grid[0] 为起始时间，必须严格递增。失败时返回 *Error，不返回部分结果。
func (it *Integrator) Integrate(f Func, y0 []float64, grid []float64) (*Solution, error) {
	if f == nil {
		return nil, errors.New("导数函数不能为空")
	}
	if err := checkGrid(grid); err != nil {
		return nil, err
	}
	if len(y0) == 0 || !finite(y0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidState, y0)
	}
	it.reset(f, y0, grid[0])
	sol := &Solution{
		T: append([]float64(nil), grid...),
		Y: make([][]float64, len(grid)),
	}
	sol.Y[0] = append([]float64(nil), y0...)
	tEnd := grid[len(grid)-1]
	it.initialStep(tEnd)

	next := 1
	for next < len(grid) {
		if it.intervalSteps >= it.cfg.MaxSteps {
			return nil, it.fail(fmt.Errorf("%w（%d 步，下一个输出点 t=%.6e）", ErrExcessWork, it.cfg.MaxSteps, grid[next]))
		}
		it.intervalSteps++
		// 最后一步对齐到结束时间
		h, last := it.currentStep, false
		if remaining := tEnd - it.currentTime; h >= remaining*(1-1e-12) {
			h, last = remaining, true
		}
		if (!last && h < it.cfg.MinStep) || it.currentTime+h == it.currentTime {
			return nil, it.fail(ErrStepTooSmall)
		}
		errNorm, order, ok := it.attempt(h)
		if !ok {
			// 牛顿迭代未收敛或出现无效值
			it.stats.Rejected++
			it.currentStep = h * rejectScale
			continue
		}
		if errNorm > 1 {
			it.stats.Rejected++
			it.currentStep = h * math.Max(minStepScale, it.cfg.Safety*math.Pow(errNorm, -1/float64(order+1)))
			continue
		}
		tNew := it.currentTime + h
		if last {
			tNew = tEnd
		}
		it.f(tNew, it.corr, it.fp)
		it.stats.Evaluations++
		if !finite(it.fp) {
			return nil, it.fail(ErrNonFinite)
		}
		// 稠密输出：落在 (t[n], t[n+1]] 内的网格点
		for next < len(grid) && grid[next] <= tNew {
			sol.Y[next] = hermite(it.currentTime, h, it.y, it.dy, it.corr, it.fp, grid[next])
			next++
			it.intervalSteps = 0
		}
		it.accept(tNew, h)
		it.adjustStepSize(errNorm, order)
		if it.observer != nil {
			it.observer(it, it.y)
		}
		it.checkStiffness()
	}
	it.stats.Mode = it.mode
	sol.Stats = it.stats
	log.Debugw("积分完成",
		"steps", it.stats.Steps,
		"rejected", it.stats.Rejected,
		"evaluations", it.stats.Evaluations,
		"switches", it.stats.Switches,
		"mode", it.mode.String(),
	)
	return sol, nil
}

// reset 初始化积分状态
func (it *Integrator) reset(f Func, y0 []float64, t0 float64) {
	n := len(y0)
	it.f, it.n = f, n
	it.currentTime, it.lastStep, it.prevStep = t0, 0, 0
	it.mode = it.cfg.Mode
	it.hasPrev = false
	it.stiffHits, it.sinceCheck, it.intervalSteps = 0, 0, 0
	it.stats = Statistics{Mode: it.mode}
	buf := make([]float64, 11*n)
	it.y, it.dy = buf[0:n:n], buf[n:2*n:2*n]
	it.prevY, it.prevDy = buf[2*n:3*n:3*n], buf[3*n:4*n:4*n]
	it.pred, it.corr, it.fp = buf[4*n:5*n:5*n], buf[5*n:6*n:6*n], buf[6*n:7*n:7*n]
	it.errv, it.psi, it.g, it.dx = buf[7*n:8*n:8*n], buf[8*n:9*n:9*n], buf[9*n:10*n:10*n], buf[10*n:]
	copy(it.y, y0)
	it.f(t0, it.y, it.dy)
	it.stats.Evaluations++
}

// initialStep 估计初始步长
func (it *Integrator) initialStep(tEnd float64) {
	h := it.cfg.InitialStep
	if h <= 0 {
		d0 := it.norm(it.y, it.y, it.y)
		d1 := it.norm(it.dy, it.y, it.y)
		if d0 < 1e-5 || d1 < 1e-5 {
			h = 1e-6
		} else {
			h = 0.01 * d0 / d1
		}
	}
	h = math.Min(h, tEnd-it.currentTime)
	if it.cfg.MaxStep > 0 {
		h = math.Min(h, it.cfg.MaxStep)
	}
	it.currentStep = h
}

// attempt 按当前方法尝试一步，结果在 it.corr
func (it *Integrator) attempt(h float64) (errNorm float64, order int, ok bool) {
	if it.mode == BDF {
		errNorm, order, ok = it.stepBDF(h)
	} else {
		errNorm, order, ok = it.stepAdams(h)
	}
	if ok && (math.IsNaN(errNorm) || !finite(it.corr)) {
		ok = false
	}
	return errNorm, order, ok
}

// accept 接受当前步，推进历史（循环复用缓冲区）
func (it *Integrator) accept(tNew, h float64) {
	it.prevY, it.y, it.corr = it.y, it.corr, it.prevY
	it.prevDy, it.dy, it.fp = it.dy, it.fp, it.prevDy
	it.prevStep = h
	it.hasPrev = true
	it.currentTime = tNew
	it.lastStep = h
	it.stats.Steps++
	it.stats.LastStep = h
}

// adjustStepSize 基于误差商调整下一步步长
// h_new = h_old * safety * err^(-1/(order+1))
func (it *Integrator) adjustStepSize(errNorm float64, order int) {
	scale := maxStepScale
	if errNorm > 0 {
		scale = it.cfg.Safety * math.Pow(errNorm, -1/float64(order+1))
	}
	scale = math.Max(minStepScale, math.Min(scale, maxStepScale))
	newStep := it.lastStep * scale
	if it.cfg.MaxStep > 0 {
		newStep = math.Min(newStep, it.cfg.MaxStep)
	}
	it.currentStep = newStep
}

// fail 构造诊断错误
func (it *Integrator) fail(err error) *Error {
	e := &Error{
		Time:    it.currentTime,
		Step:    it.currentStep,
		Steps:   it.stats.Steps,
		Mode:    it.mode,
		Wrapped: err,
	}
	it.stats.Mode = it.mode
	log.Debugw("积分失败", "error", e.Error())
	return e
}

// norm 加权均方根范数，权重 atol + rtol*max(|a|,|b|)
func (it *Integrator) norm(v, a, b []float64) float64 {
	sum := 0.0
	for i := range v {
		w := it.cfg.AbsTol + it.cfg.RelTol*math.Max(math.Abs(a[i]), math.Abs(b[i]))
		x := v[i] / w
		sum += x * x
	}
	return math.Sqrt(sum / float64(len(v)))
}

func checkGrid(grid []float64) error {
	if len(grid) == 0 {
		return fmt.Errorf("%w: 网格为空", ErrInvalidGrid)
	}
	for i := range grid {
		if math.IsNaN(grid[i]) || math.IsInf(grid[i], 0) {
			return fmt.Errorf("%w: 索引 %d 为无效值", ErrInvalidGrid, i)
		}
		if i > 0 && grid[i] <= grid[i-1] {
			return fmt.Errorf("%w: 索引 %d 处不是严格递增", ErrInvalidGrid, i)
		}
	}
	return nil
}

func finite(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
