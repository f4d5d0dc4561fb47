package model

import (
	"math"
	"sort"

	"morrislecar/utils"
)

// 参数名称，与 Params 字段一一对应
const (
	NameC    = "C"
	NameGCa  = "g_Ca"
	NameGK   = "g_K"
	NameGL   = "g_L"
	NameVCa  = "V_Ca"
	NameVK   = "V_K"
	NameVL   = "V_L"
	NamePhi  = "phi"
	NameV1   = "V1"
	NameV2   = "V2"
	NameV3   = "V3"
	NameV4   = "V4"
	NameIExt = "I_ext"
	NameV0   = "V0"
	NameW0   = "w0"
)

// ParamNames 全部参数名称（固定顺序）
var ParamNames = []string{
	NameC, NameGCa, NameGK, NameGL,
	NameVCa, NameVK, NameVL, NamePhi,
	NameV1, NameV2, NameV3, NameV4,
	NameIExt, NameV0, NameW0,
}

// Params 单次仿真的模型参数
// 每次仿真由默认模板构造并覆盖外部输入，构造后不再修改。
type Params struct {
	C    float64 // 膜电容
	GCa  float64 // 钙电导
	GK   float64 // 钾电导
	GL   float64 // 漏电导
	VCa  float64 // 钙反转电位
	VK   float64 // 钾反转电位
	VL   float64 // 漏反转电位
	Phi  float64 // 温度因子
	V1   float64 // m_inf 半激活电位
	V2   float64 // m_inf 斜率
	V3   float64 // w_inf 半激活电位
	V4   float64 // w_inf 斜率
	IExt float64 // 外部电流
	V0   float64 // 初始膜电位
	W0   float64 // 初始恢复变量
}

// Defaults 得到变体的默认参数
//
// Simple 为 Rinzel-Ermentrout 无量纲形式（电位按 100mV 归一），
// m_inf 的固定偏移 (V+0.01)/0.15 即 V1=-0.01, V2=0.15。
// Extended 为 Morris-Lecar 经典 Hopf 参数组（mV, ms, μF/cm²）。
func Defaults(v Variant) Params {
	if v == Extended {
		return Params{
			C: 20, GCa: 4.4, GK: 8.0, GL: 2.0,
			VCa: 120, VK: -84, VL: -60, Phi: 0.04,
			V1: -1.2, V2: 18, V3: 2, V4: 30,
			IExt: 0, V0: -60, W0: 0,
		}
	}
	return Params{
		C: 1, GCa: 1.0, GK: 2.0, GL: 0.5,
		VCa: 1.0, VK: -0.7, VL: -0.5, Phi: 1.0 / 3.0,
		V1: -0.01, V2: 0.15, V3: 0.1, V4: 0.145,
		IExt: 0.1, V0: 0, W0: 0,
	}
}

// WithIExt 覆盖外部电流
func (p Params) WithIExt(iExt float64) Params {
	p.IExt = iExt
	return p
}

// WithConductances 覆盖钙/钾电导
func (p Params) WithConductances(gCa, gK float64) Params {
	p.GCa, p.GK = gCa, gK
	return p
}

// Initial 初始状态
func (p *Params) Initial() State { return State{V: p.V0, W: p.W0} }

// fields 字段指针，顺序与 ParamNames 一致
func (p *Params) fields() []*float64 {
	return []*float64{
		&p.C, &p.GCa, &p.GK, &p.GL,
		&p.VCa, &p.VK, &p.VL, &p.Phi,
		&p.V1, &p.V2, &p.V3, &p.V4,
		&p.IExt, &p.V0, &p.W0,
	}
}

// Get 按名称读取参数
func (p *Params) Get(name string) (float64, bool) {
	for i, f := range p.fields() {
		if ParamNames[i] == name {
			return *f, true
		}
	}
	return 0, false
}

// Validate 积分前检查参数完整性
// 未赋值（NaN/Inf）的字段视为缺失；C、V2、V4 作为除数不能为0。
func (p *Params) Validate() error {
	var missing, invalid []string
	for i, f := range p.fields() {
		if math.IsNaN(*f) || math.IsInf(*f, 0) {
			missing = append(missing, ParamNames[i])
		}
	}
	for name, v := range map[string]float64{NameC: p.C, NameV2: p.V2, NameV4: p.V4} {
		if v == 0 {
			invalid = append(invalid, name)
		}
	}
	if len(missing) == 0 && len(invalid) == 0 {
		return nil
	}
	sort.Strings(invalid)
	return &ConfigurationError{Missing: missing, Invalid: invalid}
}

// FromValues 由名称-数值表构造参数，必须提供全部字段
func FromValues(values map[string]float64) (Params, error) {
	var p Params
	var missing, unknown []string
	for i, f := range p.fields() {
		v, ok := values[ParamNames[i]]
		if !ok {
			missing = append(missing, ParamNames[i])
			continue
		}
		*f = v
	}
	for name := range values {
		if !isParamName(name) {
			unknown = append(unknown, name)
		}
	}
	if len(missing) > 0 || len(unknown) > 0 {
		sort.Strings(unknown)
		return Params{}, &ConfigurationError{Missing: missing, Unknown: unknown}
	}
	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

// ParseOverrides 在基础参数上应用 "名称=数值" 覆盖列表
func ParseOverrides(base Params, values utils.Values) (Params, error) {
	p := base
	for i := range values {
		name, value, err := values.Float64(i)
		if err != nil {
			return Params{}, &ConfigurationError{Invalid: []string{values[i]}, Err: err}
		}
		ok := false
		for j, f := range p.fields() {
			if ParamNames[j] == name {
				*f, ok = value, true
				break
			}
		}
		if !ok {
			return Params{}, &ConfigurationError{Unknown: []string{name}}
		}
	}
	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

// Values 导出为 "名称=数值" 列表
func (p *Params) Values() utils.Values {
	out := make(utils.Values, 0, len(ParamNames))
	for i, f := range p.fields() {
		out = append(out, utils.Pair(ParamNames[i], *f))
	}
	return out
}

func isParamName(name string) bool {
	for _, n := range ParamNames {
		if n == name {
			return true
		}
	}
	return false
}
