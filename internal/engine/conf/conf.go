// Copyright 2025 Keel Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package conf

import (
	"fmt"

	"github.com/fsnotify/fsnotify"
	"github.com/go-keel/keel/pkg/cache"
	"github.com/go-keel/keel/pkg/database"
	"github.com/go-keel/keel/pkg/http"
	"github.com/go-keel/keel/pkg/log"
	"github.com/spf13/viper"
)

// AppConfig is the whole configuration tree, one section per subsystem.
type AppConfig struct {
	Log      log.LogConfig
	Http     http.Http
	Database database.Database
	Redis    cache.Redis
	Queue    Queue
	Otp      Otp
}

// Queue configures the asynq worker and the sweep schedule.
type Queue struct {
	// Concurrency is the worker pool size; <= 0 falls back to the default.
	Concurrency int
	// SweepSpec is the cron spec for the expiry sweeps; empty means daily.
	SweepSpec string `mapstructure:"sweepSpec"`
}

// Otp configures second-factor enrollment.
type Otp struct {
	// Issuer names this installation in authenticator apps.
	Issuer string
}

// NewConfig loads the TOML config at path and re-reads it on change. Hot
// reload only refreshes the in-memory tree; subsystems pick changes up on
// their next read.
func NewConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	appConfig := new(AppConfig)
	if err := v.Unmarshal(appConfig); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		log.Infow("config file changed", "file", e.Name)
		if err := v.Unmarshal(appConfig); err != nil {
			log.Errorw("reload config failed", "error", err)
		}
	})
	v.WatchConfig()

	return appConfig, nil
}
