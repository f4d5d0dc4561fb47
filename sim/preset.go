package sim

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"morrislecar/model"
)

// Preset 输出时间网格
type Preset struct {
	Points int     // 网格点数
	Start  float64 // 起始时间
	End    float64 // 结束时间
}

// PresetOf 得到变体的时间网格：Simple 为 [0,100] 上10000点，Extended 为 [0,5000] 上10000点
func PresetOf(v model.Variant) Preset {
	if v == model.Extended {
		return Preset{Points: 10000, Start: 0, End: 5000}
	}
	return Preset{Points: 10000, Start: 0, End: 100}
}

// Grid 生成线性等距、严格递增的时间网格
func (p Preset) Grid() ([]float64, error) {
	if p.Points < 2 {
		return nil, fmt.Errorf("时间网格至少需要2个点: %d", p.Points)
	}
	if !(p.End > p.Start) {
		return nil, fmt.Errorf("时间网格范围无效: [%v, %v]", p.Start, p.End)
	}
	return floats.Span(make([]float64, p.Points), p.Start, p.End), nil
}
