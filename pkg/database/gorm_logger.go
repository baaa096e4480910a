package database

import (
	"context"
	"errors"
	"time"

	"github.com/go-keel/keel/pkg/log"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

/**
 * @author: keel.authors@gmail.com
 * @time: 2025/3/5 22:18
 * @file: gorm_logger.go
 * @description: gorm logger bridged onto pkg/log
 */

type GormLogger struct {
	config logger.Config
}

func NewGormLogger(config logger.Config) logger.Interface {
	return &GormLogger{config: config}
}

func (gl *GormLogger) LogMode(level logger.LogLevel) logger.Interface {
	newLogger := *gl
	newLogger.config.LogLevel = level
	return &newLogger
}

func (gl *GormLogger) Info(_ context.Context, msg string, data ...interface{}) {
	if gl.config.LogLevel >= logger.Info {
		log.Infof(msg, data...)
	}
}

func (gl *GormLogger) Warn(_ context.Context, msg string, data ...interface{}) {
	if gl.config.LogLevel >= logger.Warn {
		log.Warnf(msg, data...)
	}
}

func (gl *GormLogger) Error(_ context.Context, msg string, data ...interface{}) {
	if gl.config.LogLevel >= logger.Error {
		log.Errorf(msg, data...)
	}
}

func (gl *GormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if gl.config.LogLevel <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	switch {
	case err != nil && gl.config.LogLevel >= logger.Error &&
		(!errors.Is(err, gorm.ErrRecordNotFound) || !gl.config.IgnoreRecordNotFoundError):
		log.Errorw("sql error", "sql", sql, "rows", rows, "elapsed", elapsed, "error", err)
	case elapsed > gl.config.SlowThreshold && gl.config.SlowThreshold != 0 && gl.config.LogLevel >= logger.Warn:
		log.Warnw("slow sql", "sql", sql, "rows", rows, "elapsed", elapsed)
	case gl.config.LogLevel == logger.Info:
		log.Debugw("sql", "sql", sql, "rows", rows, "elapsed", elapsed)
	}
}
