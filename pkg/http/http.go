package http

import (
	"fmt"
	"time"

	"github.com/go-keel/keel/pkg/log"
	"github.com/gofiber/fiber/v2"
)

/**
 * @author: keel.authors@gmail.com
 * @time: 2025/3/6 21:02
 * @file: http.go
 * @description: http server config and lifecycle
 */

type Http struct {
	Host            string
	Port            int
	AccessLog       bool
	ReadTimeout     int
	WriteTimeout    int
	IdleTimeout     int
	ShutdownTimeout int
	TLS             TLS
	Auth            Auth
	SiteURL         string
}

type TLS struct {
	CertFile string
	KeyFile  string
}

type Auth struct {
	SecretKey      string
	AccessExpire   time.Duration
	RefreshExpire  time.Duration
	RedisKeyPrefix string
}

// Serve starts the fiber app and returns a shutdown function.
func Serve(cfg Http, app *fiber.App) func() {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	go func() {
		log.Infof("http server start at: %s", addr)
		var err error
		if cfg.TLS.CertFile != "" && cfg.TLS.KeyFile != "" {
			err = app.ListenTLS(addr, cfg.TLS.CertFile, cfg.TLS.KeyFile)
		} else {
			err = app.Listen(addr)
		}
		if err != nil {
			log.Fatalf("http server error: %v", err)
		}
	}()

	return func() {
		timeout := time.Duration(cfg.ShutdownTimeout) * time.Second
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		if err := app.ShutdownWithTimeout(timeout); err != nil {
			log.Errorw("http server shutdown failed", "error", err)
		}
	}
}
