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

// Package bootstrap wires configuration, storage, services, the HTTP
// surface and the background workers into one runnable process.
package bootstrap

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/go-keel/keel/internal/engine/conf"
	"github.com/go-keel/keel/internal/engine/repo"
	"github.com/go-keel/keel/internal/engine/router"
	"github.com/go-keel/keel/internal/engine/service"
	"github.com/go-keel/keel/internal/pkg/queue"
	"github.com/go-keel/keel/pkg/cache"
	"github.com/go-keel/keel/pkg/database"
	"github.com/go-keel/keel/pkg/http"
	"github.com/go-keel/keel/pkg/log"
	"github.com/go-keel/keel/pkg/shutdown"
	"github.com/hibiken/asynq"
)

// Run starts everything and blocks until SIGINT/SIGTERM.
func Run(configPath string) error {
	cfg, err := conf.NewConfig(configPath)
	if err != nil {
		return err
	}

	logger, err := log.NewLog(&cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	db, err := database.NewDatabase(cfg.Database)
	if err != nil {
		return err
	}
	idb := database.NewGormDB(db)

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		return err
	}
	store := cache.NewRedisCache(redisClient)

	repos := repo.NewRepositories(idb)
	tx := repo.NewTxManager(idb)

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
	notifier := queue.NewNotifier(redisOpt)

	authSvc := service.NewAuthService(repos, store, cfg.Http.Auth)
	otpSvc := service.NewOtpService(repos, tx, store, authSvc, cfg.Otp.Issuer)
	teamSvc := service.NewTeamService(repos, tx)
	memberSvc := service.NewTeamMemberService(repos, tx, notifier)
	invSvc := service.NewInvitationService(repos, tx, notifier)
	teamCtxSvc := service.NewTeamContextService(repos.Team, repos.TeamMembership)
	notificationSvc := service.NewNotificationService(repos, service.LogMailer{}, cfg.Http.SiteURL)
	sweeperSvc := service.NewSweeperService(repos)

	worker := queue.NewServer(redisOpt, cfg.Queue.Concurrency, queue.Handlers{
		SendTeamInvitation: notificationSvc.SendTeamInvitation,
		SendRoleChange:     notificationSvc.SendRoleChange,
		SweepMemberships:   sweeperSvc.ExpireTeamMemberships,
		SweepInvitations:   sweeperSvc.ExpireTeamInvitations,
	})
	if err := worker.Start(); err != nil {
		return err
	}

	scheduler, err := queue.NewScheduler(redisOpt, cfg.Queue.SweepSpec)
	if err != nil {
		return err
	}
	if err := scheduler.Start(); err != nil {
		return err
	}

	r := router.NewRouter(cfg.Http, store, authSvc, otpSvc, teamSvc, memberSvc, invSvc, teamCtxSvc)
	shutdownHttp := http.Serve(cfg.Http, r.App())

	mgr := shutdown.NewManager()
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-quit
		log.Infow("shutting down", "signal", sig.String())
		mgr.Shutdown()
	}()

	<-mgr.Wait()

	shutdownHttp()
	scheduler.Shutdown()
	worker.Shutdown()
	if err := notifier.Close(); err != nil {
		log.Errorw("close notifier failed", "error", err)
	}

	return nil
}
