package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"talento/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

var (
	// ErrNotFound 记录不存在。
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate 违反唯一约束。
	ErrDuplicate = errors.New("duplicate record")
	// ErrConflict 乐观锁版本不匹配，记录已被并发修改。
	ErrConflict = errors.New("concurrent modification")
)

// Config 数据库配置。Driver 为 sqlite（默认）或 postgres。
type Config struct {
	Driver string `yaml:"driver" json:"driver"`
	Path   string `yaml:"path" json:"path"`
	DSN    string `yaml:"dsn" json:"dsn"`
	Debug  bool   `yaml:"debug" json:"debug"`
}

// Store 封装数据库访问，负责 Talento 全部实体的增删查改。
type Store struct {
	db *gorm.DB
}

// NewStore 以 SQLite 文件创建 Store 并自动迁移数据表。
func NewStore(dbPath string) (*Store, error) {
	return Open(Config{Driver: "sqlite", Path: dbPath})
}

// Open 按配置打开数据库并自动迁移。
func Open(cfg Config) (*Store, error) {
	gcfg := &gorm.Config{TranslateError: true}
	if !cfg.Debug {
		gcfg.Logger = logger.Default.LogMode(logger.Silent)
	}

	var dialector gorm.Dialector
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "postgres", "postgresql":
		if cfg.DSN == "" {
			return nil, fmt.Errorf("postgres dsn required")
		}
		dialector = postgres.Open(cfg.DSN)
	case "", "sqlite":
		path := cfg.Path
		if path == "" {
			path = "talento.db"
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
		dialector = sqlite.Open(path + "?_busy_timeout=5000")
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, gcfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.AutoMigrate(model.All()...); err != nil {
		return nil, fmt.Errorf("auto migrate models: %w", err)
	}

	return &Store{db: db}, nil
}

// Close 关闭底层数据库连接。
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("get sql DB: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}
	return nil
}

// Transaction 在单个数据库事务中执行 fn，fn 返回错误时整体回滚。
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// translate 将 gorm 错误归一化为包内哨兵错误。
func translate(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", op, ErrDuplicate)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func first[T any](ctx context.Context, db *gorm.DB, op string, query string, args []any, preloads ...string) (*T, error) {
	var out T
	q := db.WithContext(ctx)
	for _, p := range preloads {
		q = q.Preload(p)
	}
	if err := q.Where(query, args...).First(&out).Error; err != nil {
		return nil, translate(op, err)
	}
	return &out, nil
}

func deleteByID[T any](ctx context.Context, db *gorm.DB, op, id string) error {
	var zero T
	tx := db.WithContext(ctx).Where("id = ?", id).Delete(&zero)
	if tx.Error != nil {
		return translate(op, tx.Error)
	}
	if tx.RowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

func save[T any](ctx context.Context, db *gorm.DB, op string, v *T) error {
	return translate(op, db.WithContext(ctx).Omit(clause.Associations).Save(v).Error)
}
