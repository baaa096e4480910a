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

// Package queue carries fire-and-forget notification tasks and the periodic
// sweep schedule on asynq. Delivery is at-least-once; consumers own
// idempotence.
package queue

import (
	"context"

	"github.com/bytedance/sonic"
	"github.com/go-keel/keel/pkg/log"
	"github.com/hibiken/asynq"
)

// Task types.
const (
	TaskNotifyTeamInvitation = "notify:team_invitation"
	TaskNotifyRoleChange     = "notify:role_change"
	TaskSweepMemberships     = "sweep:team_memberships"
	TaskSweepInvitations     = "sweep:team_invitations"
)

// TeamInvitationPayload identifies a persisted invitation to announce.
type TeamInvitationPayload struct {
	InvitationId string `json:"invitationId"`
}

// RoleChangePayload identifies a membership whose role changed.
type RoleChangePayload struct {
	MembershipId string `json:"membershipId"`
	OldRole      string `json:"oldRole"`
	NewRole      string `json:"newRole"`
}

// Notifier enqueues notification tasks. Services call it strictly after
// their enclosing transaction has committed, never inline, so a consumer
// is never told about a rolled-back row.
type Notifier interface {
	NotifyTeamInvitation(ctx context.Context, invitationId string) error
	NotifyRoleChange(ctx context.Context, membershipId, oldRole, newRole string) error
}

// AsynqNotifier is the production Notifier over an asynq client.
type AsynqNotifier struct {
	client *asynq.Client
}

func NewNotifier(redisOpt asynq.RedisConnOpt) *AsynqNotifier {
	return &AsynqNotifier{client: asynq.NewClient(redisOpt)}
}

func (n *AsynqNotifier) NotifyTeamInvitation(ctx context.Context, invitationId string) error {
	data, err := sonic.Marshal(TeamInvitationPayload{InvitationId: invitationId})
	if err != nil {
		return err
	}
	info, err := n.client.EnqueueContext(ctx, asynq.NewTask(TaskNotifyTeamInvitation, data))
	if err != nil {
		return err
	}
	log.Debugw("enqueued invitation notification", "taskId", info.ID, "invitationId", invitationId)
	return nil
}

func (n *AsynqNotifier) NotifyRoleChange(ctx context.Context, membershipId, oldRole, newRole string) error {
	data, err := sonic.Marshal(RoleChangePayload{
		MembershipId: membershipId,
		OldRole:      oldRole,
		NewRole:      newRole,
	})
	if err != nil {
		return err
	}
	info, err := n.client.EnqueueContext(ctx, asynq.NewTask(TaskNotifyRoleChange, data))
	if err != nil {
		return err
	}
	log.Debugw("enqueued role change notification", "taskId", info.ID, "membershipId", membershipId)
	return nil
}

func (n *AsynqNotifier) Close() error {
	return n.client.Close()
}
