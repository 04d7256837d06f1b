package database

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Config selects the dialect and connection parameters.
type Config struct {
	Type     string // postgres | mysql | sqlite
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	Path     string // sqlite file, ":memory:" allowed

	LogLevel        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

var (
	DB   *gorm.DB
	once       sync.Once
	connectErr error
)

// Connect opens the process-wide connection once.
func Connect(cfg Config, log *zap.Logger) (*gorm.DB, error) {
	once.Do(func() {
		DB, connectErr = Open(cfg, log)
	})
	return DB, connectErr
}

func GetDB() *gorm.DB {
	return DB
}

// Open builds a new *gorm.DB for cfg without touching the package singleton.
func Open(cfg Config, log *zap.Logger) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	gcfg := &gorm.Config{}
	if log != nil {
		gcfg.Logger = gormlogger.New(zap.NewStdLog(log.Named("gorm")), gormlogger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  gormLevel(cfg.LogLevel),
			IgnoreRecordNotFoundError: true,
		})
	}

	db, err := gorm.Open(dialector, gcfg)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Type, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	return db, nil
}

// Dialector maps cfg.Type to a gorm dialector.
func Dialector(cfg Config) (gorm.Dialector, error) {
	switch strings.ToLower(cfg.Type) {
	case "", "postgres", "postgresql":
		sslMode := cfg.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		dsn := fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
			valueOr(cfg.Host, "localhost"),
			valueOr(cfg.User, "postgres"),
			cfg.Password,
			valueOr(cfg.Name, "octofit"),
			valueOr(cfg.Port, "5432"),
			sslMode,
		)
		return postgres.Open(dsn), nil
	case "mysql":
		dsn := fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			valueOr(cfg.User, "root"),
			cfg.Password,
			valueOr(cfg.Host, "localhost"),
			valueOr(cfg.Port, "3306"),
			valueOr(cfg.Name, "octofit"),
		)
		return mysql.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(valueOr(cfg.Path, "octofit.db")), nil
	default:
		return nil, fmt.Errorf("unsupported DB_TYPE %q", cfg.Type)
	}
}

func gormLevel(level string) gormlogger.LogLevel {
	switch level {
	case "debug", "info":
		return gormlogger.Info
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	default:
		return gormlogger.Warn
	}
}

func valueOr(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
