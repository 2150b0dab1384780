package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/bossshopp/internal/http/response"
	"github.com/bossshopp/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// RateLimitKeyFunc 从请求中取限流维度，空串时按客户端 IP
type RateLimitKeyFunc func(*gin.Context) string

// RateLimitRule 固定窗口限流；BlockSeconds > 0 时超限后封禁该 key
type RateLimitRule struct {
	Prefix        string
	WindowSeconds int
	MaxRequests   int
	BlockSeconds  int
	Message       string
}

func (r RateLimitRule) enabled() bool {
	return r.WindowSeconds > 0 && r.MaxRequests > 0
}

func (r RateLimitRule) key(raw string) string {
	if r.Prefix == "" {
		return raw
	}
	return r.Prefix + ":" + raw
}

// limiter allow 返回是否放行以及需等待的秒数
type limiter interface {
	allow(ctx context.Context, key string) (bool, int, error)
}

// RateLimitMiddleware 共享 Redis 计数；client 为 nil 时退化为进程内令牌桶
func RateLimitMiddleware(client *redis.Client, rule RateLimitRule, keyFunc RateLimitKeyFunc) gin.HandlerFunc {
	if !rule.enabled() {
		return func(c *gin.Context) { c.Next() }
	}
	var lim limiter
	if client != nil {
		lim = &redisLimiter{client: client, rule: rule}
	} else {
		lim = newLocalLimiter(rule)
	}

	return func(c *gin.Context) {
		raw := ""
		if keyFunc != nil {
			raw = strings.TrimSpace(keyFunc(c))
		}
		if raw == "" {
			raw = c.ClientIP()
		}

		ok, wait, err := lim.allow(c.Request.Context(), rule.key(raw))
		if err != nil {
			logger.Warnw("rate_limit_unavailable", "prefix", rule.Prefix, "error", err)
			response.Error(c, response.CodeInternal, "rate limit unavailable")
			c.Abort()
			return
		}
		if !ok {
			respondRateLimited(c, rule, wait)
			return
		}
		c.Next()
	}
}

func respondRateLimited(c *gin.Context, rule RateLimitRule, wait int) {
	if wait < 1 {
		wait = max(rule.WindowSeconds, 1)
	}
	msg := strings.TrimSpace(rule.Message)
	if msg == "" {
		msg = "too many requests"
	}
	response.ErrorWithData(c, response.CodeTooManyRequests, msg, gin.H{"retry_after": wait})
	c.Abort()
}

// rateWindowScript KEYS: 计数 key、封禁 key；ARGV: 窗口秒数、上限、封禁秒数
// 返回 {放行 1/0, 剩余秒数}
var rateWindowScript = redis.NewScript(`
local blocked = redis.call("TTL", KEYS[2])
if blocked > 0 then
	return {0, blocked}
end
local n = redis.call("INCR", KEYS[1])
if n == 1 then
	redis.call("EXPIRE", KEYS[1], ARGV[1])
end
if n <= tonumber(ARGV[2]) then
	return {1, 0}
end
local block = tonumber(ARGV[3])
if block > 0 then
	redis.call("SET", KEYS[2], "1", "EX", block)
	return {0, block}
end
return {0, redis.call("TTL", KEYS[1])}
`)

type redisLimiter struct {
	client *redis.Client
	rule   RateLimitRule
}

func (l *redisLimiter) allow(ctx context.Context, key string) (bool, int, error) {
	res, err := rateWindowScript.Run(ctx, l.client, []string{key, key + ":block"},
		l.rule.WindowSeconds, l.rule.MaxRequests, l.rule.BlockSeconds).Int64Slice()
	if err != nil {
		return false, 0, err
	}
	if len(res) < 2 {
		return false, 0, redis.Nil
	}
	return res[0] == 1, int(res[1]), nil
}

const localLimiterMaxKeys = 10000

// localLimiter 单进程令牌桶，key 数超上限时清理空闲条目
type localLimiter struct {
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	wait    int

	mu       sync.Mutex
	buckets  map[string]*bucket
	lastScan time.Time
}

type bucket struct {
	*rate.Limiter
	seen time.Time
}

func newLocalLimiter(rule RateLimitRule) *localLimiter {
	window := time.Duration(rule.WindowSeconds) * time.Second
	idle := max(window, time.Duration(rule.BlockSeconds)*time.Second)
	return &localLimiter{
		limit:   rate.Every(window / time.Duration(rule.MaxRequests)),
		burst:   rule.MaxRequests,
		idleTTL: 2 * idle,
		wait:    rule.WindowSeconds,
		buckets: make(map[string]*bucket),
	}
}

func (l *localLimiter) allow(_ context.Context, key string) (bool, int, error) {
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.buckets) >= localLimiterMaxKeys && now.Sub(l.lastScan) > time.Second {
		l.lastScan = now
		for k, b := range l.buckets {
			if now.Sub(b.seen) > l.idleTTL {
				delete(l.buckets, k)
			}
		}
	}
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{Limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[key] = b
	}
	b.seen = now
	return b.AllowN(now, 1), l.wait, nil
}

// KeyByIP 按客户端 IP
func KeyByIP(c *gin.Context) string {
	return c.ClientIP()
}

// KeyByIPAndJSONField 按 JSON 字段（小写）加 IP，字段缺失时仅按 IP；请求体读取后原样放回
func KeyByIPAndJSONField(field string) RateLimitKeyFunc {
	return func(c *gin.Context) string {
		value := strings.ToLower(peekJSONString(c, field))
		if value == "" {
			return c.ClientIP()
		}
		return value + "|" + c.ClientIP()
	}
}

func peekJSONString(c *gin.Context, field string) string {
	if c == nil || c.Request == nil || c.Request.Body == nil {
		return ""
	}
	body, err := io.ReadAll(c.Request.Body)
	c.Request.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil || len(body) == 0 {
		return ""
	}
	var fields map[string]json.RawMessage
	if json.Unmarshal(body, &fields) != nil {
		return ""
	}
	var text string
	if json.Unmarshal(fields[field], &text) != nil {
		return ""
	}
	return strings.TrimSpace(text)
}
