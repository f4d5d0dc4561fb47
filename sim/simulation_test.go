package sim

import (
	"errors"
	"math"
	"testing"

	"morrislecar/model"
	"morrislecar/ode"
	"morrislecar/utils"
)

func TestPresetGrid(t *testing.T) {
	tests := []struct {
		variant model.Variant
		end     float64
	}{
		{model.Simple, 100},
		{model.Extended, 5000},
	}
	for _, tt := range tests {
		grid, err := PresetOf(tt.variant).Grid()
		if err != nil {
			t.Fatalf("%s: 生成网格失败: %s", tt.variant, err)
		}
		if len(grid) != 10000 || grid[0] != 0 || grid[len(grid)-1] != tt.end {
			t.Errorf("%s: 网格不正确: len=%d [%v, %v]", tt.variant, len(grid), grid[0], grid[len(grid)-1])
		}
		for i := 1; i < len(grid); i++ {
			if grid[i] <= grid[i-1] {
				t.Fatalf("%s: 网格应严格递增: grid[%d]=%v grid[%d]=%v", tt.variant, i-1, grid[i-1], i, grid[i])
			}
		}
	}
	for _, p := range []Preset{{Points: 1, End: 1}, {Points: 10, Start: 1, End: 1}, {Points: 10, End: math.NaN()}} {
		if _, err := p.Grid(); err == nil {
			t.Errorf("无效网格应返回错误: %+v", p)
		}
	}
}

func TestSimulateShape(t *testing.T) {
	tr, err := Simulate(model.Simple, Current(0.1))
	if err != nil {
		t.Fatalf("仿真失败: %s", err)
	}
	if tr.Len() != 10000 || len(tr.V) != tr.Len() || len(tr.W) != tr.Len() {
		t.Fatalf("轨迹长度不一致: t=%d V=%d w=%d", len(tr.T), len(tr.V), len(tr.W))
	}
	for i := 1; i < tr.Len(); i++ {
		if tr.T[i] <= tr.T[i-1] {
			t.Fatalf("时间应严格递增: %d", i)
		}
	}
	if s := tr.At(0); s.V != 0 || s.W != 0 {
		t.Errorf("初始状态不正确: %+v", s)
	}
	if tr.Params.IExt != 0.1 || tr.Variant != model.Simple {
		t.Errorf("轨迹元数据不正确: %s %+v", tr.Variant, tr.Params)
	}
}

func TestSimulateDeterministic(t *testing.T) {
	in := Current(0).WithConductances(4.4, 8)
	a, err := Simulate(model.Extended, in)
	if err != nil {
		t.Fatalf("仿真失败: %s", err)
	}
	b, err := Simulate(model.Extended, in)
	if err != nil {
		t.Fatalf("仿真失败: %s", err)
	}
	for i := range a.T {
		if a.T[i] != b.T[i] || a.V[i] != b.V[i] || a.W[i] != b.W[i] {
			t.Fatalf("两次仿真结果不一致: i=%d", i)
		}
	}
	if a.Stats != b.Stats {
		t.Errorf("积分统计不一致: %+v != %+v", a.Stats, b.Stats)
	}
}

// TestSimpleVariantBounded 回归基线：默认参数、I_ext=0.1 时 V 保持在 (V_K, V_Ca) 内
func TestSimpleVariantBounded(t *testing.T) {
	const tolerance = 1e-6
	tr, err := Simulate(model.Simple, Current(0.1))
	if err != nil {
		t.Fatalf("仿真失败: %s", err)
	}
	s := tr.Summary()
	p := model.Defaults(model.Simple)
	if s.MaxV >= p.VCa+tolerance {
		t.Errorf("max(V)=%v 超过 V_Ca=%v", s.MaxV, p.VCa)
	}
	if s.MinV <= p.VK-tolerance {
		t.Errorf("min(V)=%v 低于 V_K=%v", s.MinV, p.VK)
	}
	if s.MinV > s.MeanV || s.MeanV > s.MaxV || s.StdV < 0 {
		t.Errorf("统计值不一致: %+v", s)
	}
}

func distinct(t *testing.T, v model.Variant, in []Input) {
	t.Helper()
	trs := make([]*Trajectory, len(in))
	for i := range in {
		tr, err := Simulate(v, in[i])
		if err != nil {
			t.Fatalf("%s: 仿真失败 %+v: %s", v, in[i], err)
		}
		trs[i] = tr
	}
	for i := range trs {
		for j := i + 1; j < len(trs); j++ {
			same := true
			for k := range trs[i].V {
				if trs[i].V[k] != trs[j].V[k] || trs[i].W[k] != trs[j].W[k] {
					same = false
					break
				}
			}
			if same {
				t.Errorf("%s: I_ext=%v 与 I_ext=%v 轨迹相同", v, trs[i].Params.IExt, trs[j].Params.IExt)
			}
		}
	}
}

func TestIExtChangesTrajectory(t *testing.T) {
	var in []Input
	for _, i := range model.SlidersOf(model.Simple).IExt.Values() {
		in = append(in, Current(i))
	}
	distinct(t, model.Simple, in)
}

func TestIExtChangesTrajectoryExtended(t *testing.T) {
	if testing.Short() {
		t.Skip("扩展变体完整扫描耗时较长")
	}
	var in []Input
	for _, i := range model.SlidersOf(model.Extended).IExt.Values() {
		in = append(in, Current(i))
	}
	distinct(t, model.Extended, in)
}

func TestInputConductances(t *testing.T) {
	p := Current(30).WithConductances(2.5, 3).Params(model.Extended)
	if p.IExt != 30 || p.GCa != 2.5 || p.GK != 3 || p.GL != 2 {
		t.Errorf("参数组装不正确: %+v", p)
	}
	if p := Current(30).Params(model.Extended); p.GCa != 4.4 || p.GK != 8 {
		t.Errorf("未指定电导时应使用默认值: %+v", p)
	}
}

func TestSimulateConfigurationError(t *testing.T) {
	p := model.Defaults(model.Simple)
	p.Phi = math.NaN()
	tr, err := NewDriver().Run(model.Simple, p, PresetOf(model.Simple))
	if !errors.Is(err, model.ErrConfiguration) || tr != nil {
		t.Fatalf("应返回配置错误且无轨迹: %v %v", tr, err)
	}
	if _, err := NewDriver().SimulateOverrides(model.Extended, utils.Values{"g_Na=1"}); !errors.Is(err, model.ErrConfiguration) {
		t.Errorf("未知参数应返回配置错误: %v", err)
	}
}

func TestSimulateOverrides(t *testing.T) {
	d := NewDriver()
	a, err := d.SimulateOverrides(model.Simple, utils.Values{"I_ext=0.2"})
	if err != nil {
		t.Fatalf("仿真失败: %s", err)
	}
	b, err := d.Simulate(model.Simple, Current(0.2))
	if err != nil {
		t.Fatalf("仿真失败: %s", err)
	}
	for i := range a.V {
		if a.V[i] != b.V[i] {
			t.Fatalf("覆盖参数与直接输入结果不一致: i=%d", i)
		}
	}
}

func TestSimulateIntegrationError(t *testing.T) {
	d := NewDriver()
	d.Config.MaxSteps = 1
	tr, err := d.Simulate(model.Simple, Current(0.1))
	if tr != nil {
		t.Errorf("失败时不应返回部分轨迹")
	}
	if !errors.Is(err, ErrIntegration) || !errors.Is(err, ode.ErrExcessWork) {
		t.Fatalf("错误类型不正确: %v", err)
	}
	var ie *IntegrationError
	if !errors.As(err, &ie) || ie.Variant != model.Simple || ie.IExt != 0.1 {
		t.Fatalf("应返回 *IntegrationError: %v", err)
	}
	var oe *ode.Error
	if !errors.As(err, &oe) || oe.Time >= 0.01 {
		t.Errorf("应包装积分器诊断信息: %v", err)
	}
}

type countRecorder struct {
	variant model.Variant
	iExt    float64
	updates int
	last    float64
}

func (r *countRecorder) Init(v model.Variant, p *model.Params) { r.variant, r.iExt = v, p.IExt }

func (r *countRecorder) Update(clock ode.Clock, s model.State) {
	r.updates++
	r.last = clock.Time()
}

func TestRecorder(t *testing.T) {
	rec := &countRecorder{}
	d := NewDriver()
	d.Recorder = rec
	tr, err := d.Simulate(model.Simple, Current(-0.3))
	if err != nil {
		t.Fatalf("仿真失败: %s", err)
	}
	if rec.variant != model.Simple || rec.iExt != -0.3 {
		t.Errorf("记录器初始化不正确: %+v", rec)
	}
	if rec.updates != tr.Stats.Steps || rec.last != 100 {
		t.Errorf("记录器更新次数不正确: %d != %d, 最后时刻 %v", rec.updates, tr.Stats.Steps, rec.last)
	}
}
