package logger

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	gormlogger "gorm.io/gorm/logger"
)

// Gin logs one line per request, at warn level for 4xx and error for 5xx.
func Gin() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		entry := Log.WithFields(logrus.Fields{
			"status":  status,
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"latency": time.Since(start).String(),
			"client":  c.ClientIP(),
		})
		if len(c.Errors) > 0 {
			entry = entry.WithField("errors", c.Errors.String())
		}
		switch {
		case status >= http.StatusInternalServerError:
			entry.Error("request failed")
		case status >= http.StatusBadRequest:
			entry.Warn("request rejected")
		default:
			entry.Info("request served")
		}
	}
}

// Recovery turns panics into 500 responses and logs them.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(Log.WriterLevel(logrus.ErrorLevel), func(c *gin.Context, err any) {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	})
}

// Gorm returns a gorm logger writing through Log. SQL statements are logged
// only when logSQL is set; slow queries and errors always are.
func Gorm(logSQL bool) gormlogger.Interface {
	level := gormlogger.Warn
	if logSQL {
		level = gormlogger.Info
	}
	return gormlogger.New(Log, gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
