package service

import (
	"errors"
	"time"

	"github.com/go-keel/keel/internal/engine/access"
	"github.com/go-keel/keel/internal/engine/model"
	"github.com/go-keel/keel/internal/engine/repo"
	"gorm.io/gorm"
)

/**
 * @author: keel.authors@gmail.com
 * @time: 2025/3/12 14:20
 * @file: service_team_context.go
 * @description: team context resolution for team-scoped operations
 */

// TeamContext is the resolved (team, membership) pair every team-scoped
// operation runs under.
type TeamContext struct {
	Team       *model.Team
	Membership *model.TeamMembership
}

// Role is the caller's role within the resolved team.
func (tc *TeamContext) Role() access.Role {
	return tc.Membership.Role
}

type TeamContextService struct {
	teamRepo       repo.ITeamRepository
	membershipRepo repo.ITeamMembershipRepository
	now            func() time.Time
}

func NewTeamContextService(teamRepo repo.ITeamRepository, membershipRepo repo.ITeamMembershipRepository) *TeamContextService {
	return &TeamContextService{
		teamRepo:       teamRepo,
		membershipRepo: membershipRepo,
		now:            time.Now,
	}
}

// Resolve validates the team and the caller's membership. Everything is a
// generic ErrNotFound: a missing team, an inactive team, no membership, or
// a membership whose temporary access has lapsed.
func (s *TeamContextService) Resolve(teamId, userId string) (*TeamContext, error) {
	team, err := s.teamRepo.GetTeamByTeamId(teamId)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !team.IsActive {
		return nil, ErrNotFound
	}

	membership, err := s.membershipRepo.GetMembership(team.TeamId, userId)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if membership.AccessExpiresAt != nil && membership.AccessExpiresAt.Before(s.now()) {
		return nil, ErrNotFound
	}

	return &TeamContext{Team: team, Membership: membership}, nil
}

// ResolveAdmin is the stricter variant: the membership must be owner or
// admin, otherwise ErrForbidden.
func (s *TeamContextService) ResolveAdmin(teamId, userId string) (*TeamContext, error) {
	tc, err := s.Resolve(teamId, userId)
	if err != nil {
		return nil, err
	}
	if tc.Role() != access.RoleOwner && tc.Role() != access.RoleAdmin {
		return nil, ErrForbidden
	}
	return tc, nil
}
