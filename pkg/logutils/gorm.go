package logutils

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm/logger"
)

// NewGormLogger routes gorm's statement log through Log. Statements slower
// than slow are reported as warnings; SQL is only traced in debug mode.
func NewGormLogger(slow time.Duration) logger.Interface {
	level := logger.Warn
	if gin.Mode() == gin.DebugMode {
		level = logger.Info
	}
	return logger.New(Log, logger.Config{
		SlowThreshold:             slow,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
