package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-keel/keel/internal/engine/access"
	"github.com/go-keel/keel/internal/engine/model"
	"github.com/go-keel/keel/internal/engine/repo"
	"github.com/go-keel/keel/pkg/log"
)

/**
 * @author: keel.authors@gmail.com
 * @time: 2025/3/15 11:05
 * @file: service_sweeper.go
 * @description: daily expiry sweeps over memberships and invitations
 */

type SweeperService struct {
	repos *repo.Repositories
	now   func() time.Time
}

func NewSweeperService(repos *repo.Repositories) *SweeperService {
	return &SweeperService{
		repos: repos,
		now:   time.Now,
	}
}

// ExpireTeamMemberships deletes every membership whose temporary access has
// lapsed. Owners are not exempt; an expiring owner is logged loudly since
// deleting one can leave the team ownerless.
func (s *SweeperService) ExpireTeamMemberships(ctx context.Context) (string, error) {
	expired, err := s.repos.TeamMembership.ListExpired(s.now())
	if err != nil {
		return "", err
	}

	swept := 0
	for i := range expired {
		m := &expired[i]
		if err := s.repos.TeamMembership.DeleteMembership(m.MembershipId); err != nil {
			log.Errorw("expire membership failed", "membershipId", m.MembershipId, "error", err)
			continue
		}
		if m.Role == access.RoleOwner {
			log.Warnw("expired an owner membership", "teamId", m.TeamId,
				"membershipId", m.MembershipId, "userId", m.UserId)
		} else {
			log.Infow("expired membership", "teamId", m.TeamId,
				"membershipId", m.MembershipId, "userId", m.UserId, "role", m.Role)
		}
		swept++
	}

	return fmt.Sprintf("Expired %d team membership(s)", swept), nil
}

// ExpireTeamInvitations deletes pending invitations past their expiry.
// Answered invitations keep their terminal status forever.
func (s *SweeperService) ExpireTeamInvitations(ctx context.Context) (string, error) {
	expired, err := s.repos.TeamInvitation.ListExpiredPending(s.now())
	if err != nil {
		return "", err
	}

	swept := 0
	for i := range expired {
		inv := &expired[i]
		if inv.Status != model.InvitationStatusPending {
			continue
		}
		if err := s.repos.TeamInvitation.DeleteInvitation(inv.InvitationId); err != nil {
			log.Errorw("expire invitation failed", "invitationId", inv.InvitationId, "error", err)
			continue
		}
		log.Infow("expired invitation", "teamId", inv.TeamId,
			"invitationId", inv.InvitationId, "email", inv.Email)
		swept++
	}

	return fmt.Sprintf("Expired %d team invitation(s)", swept), nil
}
