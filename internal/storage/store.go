package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"talent-radar/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	// ErrNotFound 点查未命中。
	ErrNotFound = errors.New("record not found")
	// ErrOwnershipViolation 用户仍拥有职位、申请或偏好时禁止删除。
	ErrOwnershipViolation = errors.New("user still owns records")
)

// Config 数据库配置，Driver 为空时使用 sqlite。
type Config struct {
	Driver string `yaml:"driver" json:"driver"`
	DSN    string `yaml:"dsn" json:"dsn"`
	Path   string `yaml:"path" json:"path"`
}

// Store 封装 gorm 访问，负责职位、申请、偏好、履历与通知发件箱的读写。
type Store struct {
	db *gorm.DB
}

// NewStore 打开 SQLite 数据库并自动迁移数据表。
func NewStore(dbPath string) (*Store, error) {
	return Open(Config{Driver: "sqlite", Path: dbPath})
}

// Open 按驱动打开数据库并自动迁移。
func Open(cfg Config) (*Store, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driverName(cfg), err)
	}

	if err := db.AutoMigrate(
		&model.User{},
		&model.JobCategory{},
		&model.JobPosting{},
		&model.JobApplication{},
		&model.JobPreference{},
		&model.UserEducation{},
		&model.UserExperience{},
		&model.Notification{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate models: %w", err)
	}

	return &Store{db: db}, nil
}

func driverName(cfg Config) string {
	d := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if d == "" {
		return "sqlite"
	}
	return d
}

func dialectorFor(cfg Config) (gorm.Dialector, error) {
	switch driverName(cfg) {
	case "sqlite":
		path := cfg.Path
		if path == "" {
			path = cfg.DSN
		}
		if path == "" {
			path = "recruit.db"
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
		return sqlite.Open(path), nil
	case "mysql":
		if cfg.DSN == "" {
			return nil, fmt.Errorf("mysql dsn required")
		}
		return mysql.Open(cfg.DSN), nil
	case "postgres":
		if cfg.DSN == "" {
			return nil, fmt.Errorf("postgres dsn required")
		}
		return postgres.Open(cfg.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
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

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", what, err)
}
