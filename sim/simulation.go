package sim

import (
	"errors"
	"fmt"

	"morrislecar/internal/log"
	"morrislecar/model"
	"morrislecar/ode"
	"morrislecar/utils"
)

// ErrIntegration 数值积分失败（用于 errors.Is 判断）
var ErrIntegration = errors.New("数值积分失败")

// IntegrationError 积分器未能完成积分，包装积分器的诊断信息
type IntegrationError struct {
	Variant model.Variant // 模型变体
	IExt    float64       // 外部电流
	Err     error         // 积分器错误（*ode.Error）
}

func (e *IntegrationError) Error() string {
	return fmt.Sprintf("%v（变体=%s, I_ext=%g）: %v", ErrIntegration, e.Variant, e.IExt, e.Err)
}

// Is 匹配 ErrIntegration
func (e *IntegrationError) Is(target error) bool { return target == ErrIntegration }

func (e *IntegrationError) Unwrap() error { return e.Err }

// Input 外部输入，GCa/GK 为空时使用默认值
type Input struct {
	IExt float64  // 外部电流
	GCa  *float64 // 钙电导
	GK   *float64 // 钾电导
}

// Current 只指定外部电流
func Current(iExt float64) Input { return Input{IExt: iExt} }

// WithConductances 指定钙/钾电导
func (in Input) WithConductances(gCa, gK float64) Input {
	in.GCa, in.GK = &gCa, &gK
	return in
}

// Params 由默认模板和外部输入组装参数
func (in Input) Params(v model.Variant) model.Params {
	p := model.Defaults(v).WithIExt(in.IExt)
	if in.GCa != nil {
		p.GCa = *in.GCa
	}
	if in.GK != nil {
		p.GK = *in.GK
	}
	return p
}

// Recorder 调试记录接口，每个接受的积分步调用一次 Update
type Recorder interface {
	Init(v model.Variant, p *model.Params)
	Update(clock ode.Clock, s model.State)
}

// Driver 仿真驱动
type Driver struct {
	Config   ode.Config // 积分器配置
	Recorder Recorder   // 可选调试记录
}

// NewDriver 使用默认积分器配置创建仿真驱动
func NewDriver() *Driver {
	return &Driver{Config: ode.DefaultConfig()}
}

// Simulate 仿真一次：组装参数、生成时间网格、积分并返回完整轨迹
func (d *Driver) Simulate(v model.Variant, in Input) (*Trajectory, error) {
	return d.Run(v, in.Params(v), PresetOf(v))
}

// SimulateOverrides 在变体默认参数上应用 "名称=数值" 覆盖后仿真
func (d *Driver) SimulateOverrides(v model.Variant, overrides utils.Values) (*Trajectory, error) {
	p, err := model.ParseOverrides(model.Defaults(v), overrides)
	if err != nil {
		return nil, err
	}
	return d.Run(v, p, PresetOf(v))
}

// Run 使用给定参数和网格积分
// 参数不完整时返回 *model.ConfigurationError；积分失败时返回 *IntegrationError，不返回部分轨迹。
func (d *Driver) Run(v model.Variant, p model.Params, preset Preset) (*Trajectory, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	grid, err := preset.Grid()
	if err != nil {
		return nil, err
	}
	integrator, err := ode.New(d.Config)
	if err != nil {
		return nil, err
	}
	if d.Recorder != nil {
		d.Recorder.Init(v, &p)
		integrator.Observe(func(clock ode.Clock, y []float64) {
			d.Recorder.Update(clock, model.State{V: y[0], W: y[1]})
		})
	}
	initial := p.Initial()
	sol, err := integrator.Integrate(model.Func(&p), []float64{initial.V, initial.W}, grid)
	if err != nil {
		return nil, &IntegrationError{Variant: v, IExt: p.IExt, Err: err}
	}
	log.Debugw("仿真完成",
		"variant", v.String(),
		"I_ext", p.IExt,
		"points", len(sol.T),
		"steps", sol.Stats.Steps,
		"rejected", sol.Stats.Rejected,
	)
	return &Trajectory{
		Variant: v,
		Params:  p,
		T:       sol.T,
		V:       sol.Component(0),
		W:       sol.Component(1),
		Stats:   sol.Stats,
	}, nil
}

// Simulate 使用默认驱动仿真
func Simulate(v model.Variant, in Input) (*Trajectory, error) {
	return NewDriver().Simulate(v, in)
}
