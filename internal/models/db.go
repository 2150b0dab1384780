package models

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/bossshopp/internal/logger"

	"github.com/glebarez/sqlite" // 纯 Go SQLite 驱动（基于 modernc.org/sqlite）
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const defaultConnectTimeout = 5 * time.Second

const sqliteForeignKeysPragma = "_pragma=foreign_keys(1)"

// DBPoolConfig 数据库连接池配置
type DBPoolConfig struct {
	MaxOpenConns           int
	MaxIdleConns           int
	ConnMaxLifetimeSeconds int
	ConnMaxIdleTimeSeconds int
}

// DBOptions 打开数据库所需参数
type DBOptions struct {
	Driver         string // sqlite / mysql / postgres
	DSN            string
	ConnectTimeout time.Duration
	Pool           DBPoolConfig
	LogLevel       gormlogger.LogLevel // 0 时使用 Warn
}

// Open 按驱动打开数据库并校验连通性
func Open(opts DBOptions) (*gorm.DB, error) {
	driver := strings.ToLower(strings.TrimSpace(opts.Driver))
	dsn := strings.TrimSpace(opts.DSN)
	if driver == "" {
		return nil, NewConfigurationError("database.driver", fmt.Errorf("required"))
	}
	if dsn == "" {
		return nil, NewConfigurationError("database.dsn", fmt.Errorf("required"))
	}
	dialector, err := buildDialector(driver, dsn)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newGormLogger(opts.LogLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, NewConnectionError(driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, NewConnectionError(driver, err)
	}
	applyDBPool(sqlDB, opts.Pool)

	timeout := opts.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, NewConnectionError(driver, err)
	}
	return db, nil
}

func buildDialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "sqlite", "sqlite3":
		return sqlite.Open(SQLiteForeignKeysDSN(dsn)), nil
	case "mysql", "mariadb":
		return mysql.Open(dsn), nil
	case "postgres", "postgresql":
		return postgres.Open(dsn), nil
	default:
		return nil, NewConfigurationError("database.driver", fmt.Errorf("unsupported driver %q", driver))
	}
}

// SQLiteForeignKeysDSN 为 SQLite DSN 打开外键约束，DSN 已声明 foreign_keys 时原样返回
func SQLiteForeignKeysDSN(dsn string) string {
	if strings.Contains(strings.ToLower(dsn), "foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + sqliteForeignKeysPragma
}

func newGormLogger(level gormlogger.LogLevel) gormlogger.Interface {
	if level == 0 {
		level = gormlogger.Warn
	}
	return gormlogger.New(logger.StdLogger(), gormlogger.Config{
		SlowThreshold:             500 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	})
}

func applyDBPool(sqlDB *sql.DB, pool DBPoolConfig) {
	if sqlDB == nil {
		return
	}
	if pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	}
	// 0 表示沿用驱动默认值（共享内存库依赖空闲连接存活）
	if pool.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetimeSeconds > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(pool.ConnMaxLifetimeSeconds) * time.Second)
	}
	if pool.ConnMaxIdleTimeSeconds > 0 {
		sqlDB.SetConnMaxIdleTime(time.Duration(pool.ConnMaxIdleTimeSeconds) * time.Second)
	}
}

// Close 释放连接池
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// WithSession 在独占连接上执行 fn，任意路径退出都会归还连接
func WithSession(ctx context.Context, db *gorm.DB, fn func(conn *gorm.DB) error) error {
	if db == nil {
		return NewConfigurationError("database", fmt.Errorf("db is nil"))
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return db.WithContext(ctx).Connection(fn)
}

// WithTimeout 返回绑定超时上下文的 DB，timeout<=0 时仅绑定 ctx
func WithTimeout(ctx context.Context, db *gorm.DB, timeout time.Duration) (*gorm.DB, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout <= 0 {
		return db.WithContext(ctx), func() {}
	}
	child, cancel := context.WithTimeout(ctx, timeout)
	return db.WithContext(child), cancel
}

// AllModels 返回全部业务表模型（迁移与巡检共用）
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Category{},
		&Product{},
		&UserAddress{},
		&CartItem{},
		&Favorite{},
		&Order{},
		&OrderItem{},
		&ProductReview{},
		&StockMovement{},
		&SystemSetting{},
	}
}

// AutoMigrate 自动迁移所有数据库表
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}
