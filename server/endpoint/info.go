package endpoint

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/minutes/version"
)

var startTime = time.Now()

// Info reports build information and uptime.
func Info(service string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": service,
			"build":   version.GetVersionInfo(),
			"uptime":  time.Since(startTime).Round(time.Second).String(),
		})
	}
}

// Metrics reports runtime memory and goroutine counts. Pipeline metrics go
// to the OTLP exporter.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		c.JSON(http.StatusOK, gin.H{
			"goroutines": runtime.NumGoroutine(),
			"memory": gin.H{
				"alloc_mb":       m.Alloc >> 20,
				"total_alloc_mb": m.TotalAlloc >> 20,
				"sys_mb":         m.Sys >> 20,
				"gc_runs":        m.NumGC,
			},
		})
	}
}
