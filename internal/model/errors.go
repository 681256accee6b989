package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoEmbedding 嵌入服务返回了空向量
var ErrNoEmbedding = errors.New("embedding service returned empty vector")

// SchemaMismatchError 原始数据源列结构不一致
type SchemaMismatchError struct {
	Source string
	Want   []string
	Got    []string
	Reason string
}

func (e *SchemaMismatchError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("数据源 %s 列结构不一致: %s", e.Source, e.Reason)
	}
	return fmt.Sprintf("数据源 %s 列结构不一致: 期望 [%s], 实际 [%s]",
		e.Source, strings.Join(e.Want, ", "), strings.Join(e.Got, ", "))
}

// PersistenceError 无法写入规范表
type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("写入 %s 失败: %v", e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// DataUnavailableError 查询时规范表缺失或不可读
type DataUnavailableError struct {
	Path string
	Err  error
}

func (e *DataUnavailableError) Error() string {
	return fmt.Sprintf("数据表 %s 不可用: %v", e.Path, e.Err)
}

func (e *DataUnavailableError) Unwrap() error { return e.Err }

// ExternalServiceError 嵌入服务或向量索引调用失败
type ExternalServiceError struct {
	Service string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("外部服务 %s 调用失败: %v", e.Service, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }
