// Package setup 负责基础设施的初始化：数据库、Redis、迁移与种子数据。
package setup

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// DBConfig 是数据库初始化需要的连接参数。
type DBConfig struct {
	User     string
	Password string
	Host     string
	Port     string
	Name     string
	// WaitAttempts/WaitInterval 控制启动就绪探测：
	// 固定间隔轮询直到数据库可连接。这是整个系统里唯一的重试循环，
	// 只属于进程启动，不出现在任何请求路径上。
	WaitAttempts int
	WaitInterval time.Duration
}

// DSN 构建 MySQL 连接字符串。
func (c DBConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User, c.Password, c.Host, c.Port, c.Name)
}

// InitDB 初始化数据库连接，数据库未就绪时按固定间隔重试。
func InitDB(cfg DBConfig) (*gorm.DB, error) {
	if cfg.WaitAttempts <= 0 {
		cfg.WaitAttempts = 30
	}
	if cfg.WaitInterval <= 0 {
		cfg.WaitInterval = 2 * time.Second
	}

	dsn := cfg.DSN()

	var db *gorm.DB
	var err error
	for attempt := 1; attempt <= cfg.WaitAttempts; attempt++ {
		db, err = gorm.Open(mysql.Open(dsn), &gorm.Config{})
		if err == nil {
			if pingErr := pingDB(db); pingErr == nil {
				logrus.Info("Database is observed online")
				break
			} else {
				err = pingErr
			}
		}
		if attempt == cfg.WaitAttempts {
			return nil, fmt.Errorf("database not reachable after %d attempts: %w", cfg.WaitAttempts, err)
		}
		logrus.WithError(err).Warnf("Database not ready, retrying in %s (attempt %d/%d)",
			cfg.WaitInterval, attempt, cfg.WaitAttempts)
		time.Sleep(cfg.WaitInterval)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	// 连接池是进程级共享状态，各工作单元只在自己的生命周期内借用连接
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	logrus.Info("MySQL connected")
	return db, nil
}

// pingDB 用底层连接验证数据库可达。
func pingDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// InitRedis 初始化 Redis 连接并验证可达。
func InitRedis(addr, password string, dbIndex int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           dbIndex,
		PoolSize:     20,
		MinIdleConns: 5,
		MaxConnAge:   30 * time.Minute,
	})
	if _, err := client.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	logrus.Info("Redis connected")
	return client, nil
}
