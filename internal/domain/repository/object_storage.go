// Package repository 定义数据访问层接口
package repository

import "context"

// ObjectStorage 对象存储端口，存取二进制生成输出及待提取的源文件
type ObjectStorage interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, string, error)
}
