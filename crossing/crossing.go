// Package crossing 提取轨迹上 V-w 变号的临界点
//
// 变号按 sign(V[i]-w[i]) != sign(V[i+1]-w[i+1]) 判断，sign 取 -1/0/+1，
// 因此恰好为0的差值与两侧正负值之间都算一次变号。NaN 的符号视为0。
// V 与 w 在扩展变体中单位不同（mV 与无量纲），此时临界点只是数值上的比较。
package crossing

import (
	"errors"
	"fmt"
)

// ErrLengthMismatch 输入序列长度不一致
var ErrLengthMismatch = errors.New("V、w、t 长度不一致")

// Point 临界点，取变号区间的左端点
type Point struct {
	Index int     // 左端点下标
	V     float64 // 膜电位
	W     float64 // 恢复变量
	T     float64 // 时间
}

// Find 按时间顺序返回全部变号点，没有变号时返回空切片
func Find(v, w, t []float64) ([]Point, error) {
	if len(v) != len(w) || len(v) != len(t) {
		return nil, fmt.Errorf("%w: len(V)=%d len(w)=%d len(t)=%d", ErrLengthMismatch, len(v), len(w), len(t))
	}
	out := make([]Point, 0)
	for i := 0; i+1 < len(v); i++ {
		if sign(v[i]-w[i]) != sign(v[i+1]-w[i+1]) {
			out = append(out, Point{Index: i, V: v[i], W: w[i], T: t[i]})
		}
	}
	return out, nil
}

// DropBoundary 去掉第一个临界点（初始条件引起的边界效应）
func DropBoundary(points []Point) []Point {
	if len(points) == 0 {
		return points
	}
	return points[1:]
}

// Times 临界点时间
func Times(points []Point) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.T
	}
	return out
}

func sign(x float64) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
