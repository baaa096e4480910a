package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-keel/keel/internal/engine/access"
	"github.com/go-keel/keel/internal/engine/model"
	"github.com/go-keel/keel/internal/engine/repo"
	"github.com/go-keel/keel/internal/pkg/queue"
	"github.com/go-keel/keel/pkg/log"
	"gorm.io/gorm"
)

/**
 * @author: keel.authors@gmail.com
 * @time: 2025/3/12 16:21
 * @file: service_team_member.go
 * @description: membership management: role changes and removal
 */

type TeamMemberService struct {
	repos    *repo.Repositories
	tx       repo.ITxManager
	notifier queue.Notifier
	now      func() time.Time
}

func NewTeamMemberService(repos *repo.Repositories, tx repo.ITxManager, notifier queue.Notifier) *TeamMemberService {
	return &TeamMemberService{
		repos:    repos,
		tx:       tx,
		notifier: notifier,
		now:      time.Now,
	}
}

// ListMembers returns the team's members ordered by role then join time.
func (s *TeamMemberService) ListMembers(tc *TeamContext) ([]model.MemberResp, error) {
	members, err := s.repos.TeamMembership.ListMembers(tc.Team.TeamId)
	if err != nil {
		return nil, err
	}
	resp := make([]model.MemberResp, 0, len(members))
	for i := range members {
		resp = append(resp, *model.ToMemberResp(&members[i]))
	}
	return resp, nil
}

// UpdateMemberRole changes a member's role. The requester may not change
// their own role, must pass CanManage against the target's current role,
// and may not assign a role CanInvite would deny them. Demoting the last
// owner is rejected inside the row-locking transaction.
func (s *TeamMemberService) UpdateMemberRole(ctx context.Context, tc *TeamContext, membershipId string, newRole access.Role) (*model.MemberResp, error) {
	if !newRole.Valid() {
		return nil, ErrInvalidOperation
	}

	target, err := s.repos.TeamMembership.GetMembershipById(tc.Team.TeamId, membershipId)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if target.UserId == tc.Membership.UserId {
		return nil, ErrInvalidOperation
	}
	if !access.CanManage(tc.Role(), target.Role) {
		return nil, ErrForbidden
	}
	if !access.CanInvite(tc.Role(), newRole) {
		return nil, ErrForbidden
	}
	if target.Role == newRole {
		return model.ToMemberResp(target), nil
	}

	oldRole := target.Role
	err = s.tx.Transaction(ctx, func(r *repo.Repositories) error {
		if oldRole == access.RoleOwner && newRole != access.RoleOwner {
			owners, err := r.TeamMembership.CountOwnersForUpdate(tc.Team.TeamId)
			if err != nil {
				return err
			}
			if owners <= 1 {
				return ErrInvalidOperation
			}
		}
		return r.TeamMembership.UpdateRole(target.MembershipId, newRole)
	})
	if err != nil {
		return nil, err
	}

	// post-commit only; a rolled-back change must never be announced
	if err := s.notifier.NotifyRoleChange(ctx, target.MembershipId, string(oldRole), string(newRole)); err != nil {
		log.Errorw("enqueue role change notification failed", "membershipId", target.MembershipId, "error", err)
	}

	target.Role = newRole
	log.Infow("member role updated", "teamId", tc.Team.TeamId, "membershipId", target.MembershipId,
		"oldRole", oldRole, "newRole", newRole, "by", tc.Membership.UserId)
	return model.ToMemberResp(target), nil
}

// RemoveMember hard-deletes a membership. Self-removal is rejected; leaving
// a team is a different operation. Removing the last owner is rejected
// inside the row-locking transaction.
func (s *TeamMemberService) RemoveMember(ctx context.Context, tc *TeamContext, membershipId string) error {
	target, err := s.repos.TeamMembership.GetMembershipById(tc.Team.TeamId, membershipId)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	if target.UserId == tc.Membership.UserId {
		return ErrInvalidOperation
	}
	if !access.CanManage(tc.Role(), target.Role) {
		return ErrForbidden
	}

	err = s.tx.Transaction(ctx, func(r *repo.Repositories) error {
		if target.Role == access.RoleOwner {
			owners, err := r.TeamMembership.CountOwnersForUpdate(tc.Team.TeamId)
			if err != nil {
				return err
			}
			if owners <= 1 {
				return ErrInvalidOperation
			}
		}
		return r.TeamMembership.DeleteMembership(target.MembershipId)
	})
	if err != nil {
		return err
	}

	log.Infow("member removed", "teamId", tc.Team.TeamId, "membershipId", target.MembershipId,
		"userId", target.UserId, "by", tc.Membership.UserId)
	return nil
}
