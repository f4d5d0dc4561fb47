package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// Values "名称=数值" 形式的参数列表
type Values []string

// Pair 格式化单个参数
func Pair(name string, v float64) string {
	return name + "=" + strconv.FormatFloat(v, 'g', -1, 64)
}

// FromMap 将参数表转换为 Values（按 names 顺序，缺失的名称跳过）
func FromMap(values map[string]float64, names []string) Values {
	out := make(Values, 0, len(values))
	for _, name := range names {
		if v, ok := values[name]; ok {
			out = append(out, Pair(name, v))
		}
	}
	return out
}

// Split 分离名称和值
func (value Values) Split(i int) (name, raw string, err error) {
	if i < 0 || i >= len(value) {
		return "", "", fmt.Errorf("参数索引越界: %d", i)
	}
	name, raw, ok := strings.Cut(value[i], "=")
	name, raw = strings.TrimSpace(name), strings.TrimSpace(raw)
	if !ok || name == "" {
		return "", "", fmt.Errorf("参数格式错误（需要 名称=数值）: %q", value[i])
	}
	return name, raw, nil
}

// Float64 解析浮点参数
func (value Values) Float64(i int) (name string, v float64, err error) {
	name, raw, err := value.Split(i)
	if err != nil {
		return "", 0, err
	}
	v, err = strconv.ParseFloat(raw, 64)
	if err != nil {
		return name, 0, fmt.Errorf("参数 %s 数值解析失败: %w", name, err)
	}
	return name, v, nil
}

// ParseFloat64 按名称解析浮点参数，不存在或解析失败时返回默认值
func (value Values) ParseFloat64(name string, defaultValue float64) float64 {
	for i := range value {
		if n, v, err := value.Float64(i); err == nil && n == name {
			return v
		}
	}
	return defaultValue
}

// Map 转换为参数表，后出现的同名参数覆盖前面的
func (value Values) Map() (map[string]float64, error) {
	out := make(map[string]float64, len(value))
	for i := range value {
		name, v, err := value.Float64(i)
		if err != nil {
			return nil, err
		}
		out[name] = v
	}
	return out, nil
}
