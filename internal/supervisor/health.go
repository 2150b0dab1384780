package supervisor

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandler 输出各托管进程状态
func HealthHandler(s *Supervisor) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := "ok"
		code := http.StatusOK
		if !s.Healthy() {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":    status,
			"processes": s.Snapshots(),
		})
	}
}

// NewHealthEngine 构建仅含 /health 的引擎
func NewHealthEngine(s *Supervisor) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.GET("/health", HealthHandler(s))
	return engine
}
