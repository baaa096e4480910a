package queue

import (
	"context"

	"github.com/bytedance/sonic"
	"github.com/go-keel/keel/pkg/log"
	"github.com/hibiken/asynq"
)

/**
 * @author: keel.authors@gmail.com
 * @time: 2025/3/11 9:40
 * @file: queue_server.go
 * @description: asynq worker for notification and sweep tasks
 */

// Handlers are the domain callbacks the worker dispatches into.
type Handlers struct {
	SendTeamInvitation func(ctx context.Context, invitationId string) error
	SendRoleChange     func(ctx context.Context, membershipId, oldRole, newRole string) error
	SweepMemberships   func(ctx context.Context) (string, error)
	SweepInvitations   func(ctx context.Context) (string, error)
}

type Server struct {
	server *asynq.Server
	mux    *asynq.ServeMux
}

func NewServer(redisOpt asynq.RedisConnOpt, concurrency int, h Handlers) *Server {
	if concurrency <= 0 {
		concurrency = 10
	}

	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: concurrency,
		Logger:      loggerAdapter{},
	})

	mux := asynq.NewServeMux()

	mux.HandleFunc(TaskNotifyTeamInvitation, func(ctx context.Context, task *asynq.Task) error {
		var payload TeamInvitationPayload
		if err := sonic.Unmarshal(task.Payload(), &payload); err != nil {
			return err
		}
		return h.SendTeamInvitation(ctx, payload.InvitationId)
	})

	mux.HandleFunc(TaskNotifyRoleChange, func(ctx context.Context, task *asynq.Task) error {
		var payload RoleChangePayload
		if err := sonic.Unmarshal(task.Payload(), &payload); err != nil {
			return err
		}
		return h.SendRoleChange(ctx, payload.MembershipId, payload.OldRole, payload.NewRole)
	})

	mux.HandleFunc(TaskSweepMemberships, func(ctx context.Context, _ *asynq.Task) error {
		result, err := h.SweepMemberships(ctx)
		if err != nil {
			return err
		}
		log.Infow("membership sweep finished", "result", result)
		return nil
	})

	mux.HandleFunc(TaskSweepInvitations, func(ctx context.Context, _ *asynq.Task) error {
		result, err := h.SweepInvitations(ctx)
		if err != nil {
			return err
		}
		log.Infow("invitation sweep finished", "result", result)
		return nil
	})

	return &Server{server: server, mux: mux}
}

// Start runs the worker in the background.
func (s *Server) Start() error {
	return s.server.Start(s.mux)
}

func (s *Server) Shutdown() {
	s.server.Shutdown()
}
