package domain

import "github.com/google/uuid"

// Todo 表示一条属于某个用户的待办记录。
type Todo struct {
	Base
	Title   string    `gorm:"type:varchar(191);not null" json:"title"`
	Content string    `gorm:"type:text;not null" json:"content"`
	UserID  uuid.UUID `gorm:"type:char(36);index;not null" json:"user_id"` // 所属用户 ID (外键)
	User    *User     `gorm:"foreignKey:UserID" json:"-"`                  // 所属用户引用
}

// ApplyFields 实现 Entity 接口，只覆盖映射中出现的字段。
// PUT /todo/:id 的部分更新语义依赖这里的 "缺省字段保持不变"。
func (t *Todo) ApplyFields(fields map[string]any) {
	if v, ok := fields["title"].(string); ok {
		t.Title = v
	}
	if v, ok := fields["content"].(string); ok {
		t.Content = v
	}
}
