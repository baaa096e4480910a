package queue

import "github.com/go-keel/keel/pkg/log"

/**
 * @author: keel.authors@gmail.com
 * @time: 2025/3/11 9:15
 * @file: logger_adapter.go
 * @description: asynq.Logger over pkg/log
 */

type loggerAdapter struct{}

func (loggerAdapter) Debug(args ...interface{}) { log.Debug(args...) }
func (loggerAdapter) Info(args ...interface{})  { log.Info(args...) }
func (loggerAdapter) Warn(args ...interface{})  { log.Warn(args...) }
func (loggerAdapter) Error(args ...interface{}) { log.Error(args...) }
func (loggerAdapter) Fatal(args ...interface{}) { log.Fatal(args...) }
