package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ai-content-gateway/internal/domain/entity"
	apperrors "ai-content-gateway/pkg/errors"
)

// ObjectStore 数据库表支撑的对象存储实现，
// 存放二进制生成输出与待提取的源文件。
type ObjectStore struct {
	client *Client
}

// NewObjectStore 创建对象存储
func NewObjectStore(client *Client) *ObjectStore {
	return &ObjectStore{client: client}
}

// Put 写入对象，同键覆盖
func (s *ObjectStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	ctx, span := tracer.Start(ctx, "postgres.ObjectStore.Put")
	defer span.End()

	obj := &entity.StoredObject{
		Key:         key,
		ContentType: contentType,
		Data:        data,
		ByteSize:    int64(len(data)),
	}

	db := getDB(ctx, s.client.db)
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		UpdateAll: true,
	}).Create(obj).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to put object: %w", err)
	}
	return nil
}

// Get 读取对象，返回内容与 content type
func (s *ObjectStore) Get(ctx context.Context, key string) ([]byte, string, error) {
	ctx, span := tracer.Start(ctx, "postgres.ObjectStore.Get")
	defer span.End()

	db := getDB(ctx, s.client.db)
	var obj entity.StoredObject
	if err := db.First(&obj, "key = ?", key).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, "", apperrors.New(apperrors.CodeObjectNotFound, fmt.Sprintf("object %s not found", key))
		}
		span.RecordError(err)
		return nil, "", fmt.Errorf("failed to get object: %w", err)
	}
	return obj.Data, obj.ContentType, nil
}
