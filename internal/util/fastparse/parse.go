// Package fastparse 解析报表单元格中的金额文本。
// MT5 报表导出的金额可能带千分位空格（含不换行空格），如 "10 000.00"。
package fastparse

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseAmount 解析金额字符串
// 去除首尾空白与千分位空格后使用 strconv.ParseFloat
// 参数 s: 单元格文本，如 "-1 234.50"
// 返回: 解析后的浮点数；空字符串或格式错误时返回错误
func ParseAmount(s string) (float64, error) {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '\u202f', '\t':
			return -1
		}
		return r
	}, s)
	if clean == "" {
		return 0, fmt.Errorf("金额为空")
	}
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, fmt.Errorf("无法解析金额 %q: %w", s, err)
	}
	return v, nil
}
