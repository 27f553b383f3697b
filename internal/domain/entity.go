// Package domain 定义了应用程序的核心数据模型 (数据库实体)。
package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Entity 描述了所有持久化实体共有的能力。
// 泛型仓库 (repository.CrudRepository) 以此为约束，避免运行时类型检查。
type Entity interface {
	// PrimaryID 返回实体的主键。
	PrimaryID() uuid.UUID
	// EnsureDefaults 在创建前填充缺失的 ID 和 CreatedAt 默认值。
	EnsureDefaults(now time.Time)
	// ApplyFields 将部分字段映射应用到实体上，只覆盖映射中出现的字段。
	// 键使用数据库列名 (例如 "title")，与 GORM 的 Updates(map) 保持一致。
	ApplyFields(fields map[string]any)
}

// Base 是所有实体共享的身份和审计字段。
// 每个具体实体嵌入 Base，额外只定义自己的业务字段。
type Base struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`       // 全局唯一标识符，创建时生成，不可变
	CreatedAt time.Time `gorm:"not null" json:"created_at"`               // 创建时间，不可变
}

// PrimaryID 返回主键。
func (b *Base) PrimaryID() uuid.UUID { return b.ID }

// EnsureDefaults 填充缺失的默认值。已有值保持不变。
func (b *Base) EnsureDefaults(now time.Time) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
}

// BeforeCreate 是 GORM 钩子，保证入库前 ID 和 CreatedAt 已赋值。
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	b.EnsureDefaults(time.Now().UTC())
	return nil
}
