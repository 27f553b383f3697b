package domain

// User 表示应用程序中的用户。
type User struct {
	Base
	Name string `gorm:"type:varchar(191);uniqueIndex:idx_users_name;not null" json:"name"` // 用户名，必须唯一且不能为空
	// 密码以明文存储和比较。这是源系统刻意保留的演示用缺陷 (见 DESIGN.md)，
	// 登录接口的 403 "Incorrect password" 契约依赖精确的明文比较，不要在这里悄悄换成哈希。
	Password string `gorm:"type:text;not null" json:"-"`
	Todos    []Todo `gorm:"foreignKey:UserID" json:"-"` // 用户拥有的 Todo 列表 (一对多)
}

// ApplyFields 实现 Entity 接口，只覆盖映射中出现的字段。
func (u *User) ApplyFields(fields map[string]any) {
	if v, ok := fields["name"].(string); ok {
		u.Name = v
	}
	if v, ok := fields["password"].(string); ok {
		u.Password = v
	}
}
