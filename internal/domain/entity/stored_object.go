// Package entity 定义领域实体
package entity

import "time"

// StoredObject 二进制对象（生成的图片/音频、待提取的源文件）
type StoredObject struct {
	Key         string    `json:"key" gorm:"type:varchar(255);primaryKey"`
	ContentType string    `json:"content_type" gorm:"type:varchar(128);not null"`
	Data        []byte    `json:"-" gorm:"type:bytea;not null"`
	ByteSize    int64     `json:"byte_size" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (StoredObject) TableName() string {
	return "stored_objects"
}
