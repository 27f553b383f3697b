package setup

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/noteable-io/minor-illusion/internal/domain"
)

// SeedDemoData 写入演示用种子数据：user1..user10 (密码 "pass")，
// 外加 user1 的几条 Todo。用户表非空时跳过，保证幂等。
func SeedDemoData(db *gorm.DB) error {
	var count int64
	if err := db.Model(&domain.User{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count users before seeding: %w", err)
	}
	if count > 0 {
		logrus.Debug("Seed skipped: users table is not empty")
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		users := make([]*domain.User, 0, 10)
		for i := 1; i <= 10; i++ {
			users = append(users, &domain.User{
				Name:     fmt.Sprintf("user%d", i),
				Password: "pass",
			})
		}
		if err := tx.Create(users).Error; err != nil {
			return fmt.Errorf("failed to seed users: %w", err)
		}

		user1 := users[0]
		todos := []*domain.Todo{
			{Title: "Note 1", Content: "My first Note", UserID: user1.ID},
			{Title: "Note 2", Content: "Edit this Note", UserID: user1.ID},
			{Title: "Note 3", Content: "So many Notes", UserID: user1.ID},
			{Title: "Note 4", Content: "Reminder: make more Notes", UserID: user1.ID},
		}
		if err := tx.Create(todos).Error; err != nil {
			return fmt.Errorf("failed to seed todos: %w", err)
		}

		logrus.Infof("Seeded %d users and %d todos", len(users), len(todos))
		return nil
	})
}
