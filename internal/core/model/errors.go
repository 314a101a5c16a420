// Package model 定义模拟器中使用的核心数据结构。
package model

import "errors"

// 输入校验错误
// 全部在模拟开始前检测，调用方使用 errors.Is 判断类型。
var (
	// ErrEmptyLedger 交易账本没有任何历史交易
	ErrEmptyLedger = errors.New("交易账本为空")
	// ErrInvalidBalance 初始资金必须为正数
	ErrInvalidBalance = errors.New("初始资金无效")
	// ErrInvalidOutcome 历史交易结果包含 NaN/Inf
	ErrInvalidOutcome = errors.New("交易结果无效")
	// ErrInsufficientData 历史交易少于 2 笔，无法计算样本标准差
	ErrInsufficientData = errors.New("历史交易数量不足")
	// ErrInsufficientRuns 模拟次数太少，分位数下标越界
	ErrInsufficientRuns = errors.New("模拟次数不足以计算分位数")
	// ErrEmptyBatch 模拟次数为 0
	ErrEmptyBatch = errors.New("模拟批次为空")
	// ErrInvalidRunCount 模拟次数为负数
	ErrInvalidRunCount = errors.New("模拟次数无效")
)
