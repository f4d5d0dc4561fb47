package model

import (
	"fmt"
	"math"
	"strings"
)

// Variant 模型变体
type Variant uint8

const (
	// Simple 无量纲（伏特量级）简化变体，激活曲线使用固定偏移
	Simple Variant = iota
	// Extended 毫伏/毫秒量级扩展变体，可调节钙/钾电导
	Extended
)

// String 变体名称
func (v Variant) String() string {
	switch v {
	case Simple:
		return "simple"
	case Extended:
		return "extended"
	}
	return fmt.Sprintf("Variant(%d)", uint8(v))
}

// ParseVariant 解析变体名称（不区分大小写）
func ParseVariant(name string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "simple":
		return Simple, nil
	case "extended":
		return Extended, nil
	}
	return 0, fmt.Errorf("未知模型变体: %q", name)
}

// Range 滑块取值范围
type Range struct {
	Min  float64 // 下限
	Max  float64 // 上限
	Step float64 // 步进
}

// Values 枚举范围内全部取值（包含两端）
// 取值按 Min+i*Step 计算并保留10位小数，避免累加误差产生 0.30000000000000004 之类的值。
func (r Range) Values() []float64 {
	if r.Step <= 0 || r.Max < r.Min {
		return []float64{r.Min}
	}
	n := int(math.Floor((r.Max-r.Min)/r.Step+1e-9)) + 1
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Round((r.Min+float64(i)*r.Step)*1e10) / 1e10
	}
	return out
}

// Contains 判断取值是否在范围内
func (r Range) Contains(v float64) bool { return v >= r.Min && v <= r.Max }

// Sliders 变体的输入范围
type Sliders struct {
	IExt Range // 外部电流
	GCa  Range // 钙电导（仅扩展变体）
	GK   Range // 钾电导（仅扩展变体）
}

// SlidersOf 得到变体的输入范围
func SlidersOf(v Variant) Sliders {
	if v == Extended {
		return Sliders{
			IExt: Range{Min: 0, Max: 100, Step: 10},
			GCa:  Range{Min: 0, Max: 5, Step: 0.1},
			GK:   Range{Min: 0, Max: 5, Step: 0.1},
		}
	}
	return Sliders{IExt: Range{Min: -1, Max: 1, Step: 0.1}}
}
