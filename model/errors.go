package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrConfiguration 参数配置错误（用于 errors.Is 判断）
var ErrConfiguration = errors.New("模型参数配置错误")

// ConfigurationError 参数缺失或无效，仿真不会继续
type ConfigurationError struct {
	Missing []string // 缺失字段
	Invalid []string // 无效字段或无法解析的覆盖项
	Unknown []string // 未知字段
	Err     error    // 底层解析错误
}

func (e *ConfigurationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "缺失参数: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "无效参数: "+strings.Join(e.Invalid, ", "))
	}
	if len(e.Unknown) > 0 {
		parts = append(parts, "未知参数: "+strings.Join(e.Unknown, ", "))
	}
	msg := fmt.Sprintf("%v: %s", ErrConfiguration, strings.Join(parts, "; "))
	if e.Err != nil {
		msg += fmt.Sprintf(" (%v)", e.Err)
	}
	return msg
}

// Is 匹配 ErrConfiguration
func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

func (e *ConfigurationError) Unwrap() error { return e.Err }
