package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bossshopp/internal/logger"
	"github.com/bossshopp/internal/models"

	"gorm.io/gorm"
)

// ExecResult 写操作结果
type ExecResult struct {
	LastInsertID int64 // 驱动不支持时为 0（如 postgres）
	RowsAffected int64
}

// Executor 参数化 SQL 执行器
// 查询只读；写操作在独立事务内执行，成功提交、失败或 panic 回滚。
// 参数始终绑定，禁止拼接到 SQL 文本。
type Executor struct {
	db      *gorm.DB
	timeout time.Duration
}

// NewExecutor 创建执行器，timeout<=0 表示不额外限制
func NewExecutor(db *gorm.DB, timeout time.Duration) *Executor {
	return &Executor{db: db, timeout: timeout}
}

// Query 执行只读查询，返回按列名索引的行
func (e *Executor) Query(ctx context.Context, query string, args ...interface{}) ([]map[string]interface{}, error) {
	db, cancel := models.WithTimeout(ctx, e.db, e.timeout)
	defer cancel()

	rows, err := db.Raw(query, args...).Rows()
	if err != nil {
		logger.Warnw("executor_query_failed", "sql", query, "error", err)
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	result := make([]map[string]interface{}, 0)
	for rows.Next() {
		values := make([]interface{}, len(columns))
		pointers := make([]interface{}, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}
		row := make(map[string]interface{}, len(columns))
		for i, column := range columns {
			if raw, ok := values[i].([]byte); ok {
				row[column] = string(raw)
				continue
			}
			row[column] = values[i]
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		logger.Warnw("executor_query_failed", "sql", query, "error", err)
		return nil, err
	}
	return result, nil
}

// QueryInto 执行只读查询并映射为类型化记录
func QueryInto[T any](ctx context.Context, e *Executor, query string, args ...interface{}) ([]T, error) {
	db, cancel := models.WithTimeout(ctx, e.db, e.timeout)
	defer cancel()

	var out []T
	if err := db.Raw(query, args...).Scan(&out).Error; err != nil {
		logger.Warnw("executor_query_failed", "sql", query, "error", err)
		return nil, err
	}
	return out, nil
}

// Execute 执行写操作（INSERT/UPDATE/DELETE）
func (e *Executor) Execute(ctx context.Context, query string, args ...interface{}) (ExecResult, error) {
	db, cancel := models.WithTimeout(ctx, e.db, e.timeout)
	defer cancel()

	statement := query
	if dbDialectName(e.db) == "postgres" {
		statement = rebindDollar(query)
	}

	var result ExecResult
	err := db.Transaction(func(tx *gorm.DB) error {
		res, err := tx.Statement.ConnPool.ExecContext(tx.Statement.Context, statement, args...)
		if err != nil {
			return err
		}
		if id, idErr := res.LastInsertId(); idErr == nil {
			result.LastInsertID = id
		}
		if affected, affErr := res.RowsAffected(); affErr == nil {
			result.RowsAffected = affected
		}
		return nil
	})
	if err != nil {
		logger.Warnw("executor_execute_rolled_back", "sql", query, "error", err)
		return ExecResult{}, fmt.Errorf("execute: %w", err)
	}
	return result, nil
}

// rebindDollar 将 ? 占位符改写为 $1..$n（跳过引号内文本）
func rebindDollar(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	inQuote := false
	for _, r := range query {
		switch {
		case r == '\'':
			inQuote = !inQuote
			b.WriteRune(r)
		case r == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
