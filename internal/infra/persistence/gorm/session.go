// Package gormpersistence 提供 repository 接口的 GORM 实现。
package gormpersistence

import (
	"context"

	"gorm.io/gorm"
)

// txContextKey 是事务在 context 中的私有键。
type txContextKey struct{}

// SessionProvider 实现 repository.UnitOfWork：
// 每次 Run 调用获取一个新事务，fn 正常返回时提交，返回错误或 panic 时回滚。
// Provider 自身不持有任何跨请求状态，并发调用互不影响。
type SessionProvider struct {
	db *gorm.DB
}

// NewSessionProvider 创建 SessionProvider 实例。
func NewSessionProvider(db *gorm.DB) *SessionProvider {
	if db == nil {
		panic("database connection cannot be nil for SessionProvider")
	}
	return &SessionProvider{db: db}
}

// Run 在一个数据库事务内执行 fn。
// 事务通过 context 传递给同一工作单元内的仓库调用，提交/回滚由 gorm.Transaction 保证。
func (p *SessionProvider) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txContextKey{}, tx))
	})
}

// sessionFrom 返回当前工作单元的事务；不在工作单元内时退回到基础连接。
func sessionFrom(ctx context.Context, base *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txContextKey{}).(*gorm.DB); ok {
		return tx
	}
	return base.WithContext(ctx)
}
