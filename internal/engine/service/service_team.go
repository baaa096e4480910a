package service

import (
	"context"
	"time"

	"github.com/go-keel/keel/internal/engine/access"
	"github.com/go-keel/keel/internal/engine/model"
	"github.com/go-keel/keel/internal/engine/repo"
	"github.com/go-keel/keel/pkg/id"
	"github.com/go-keel/keel/pkg/log"
)

/**
 * @author: keel.authors@gmail.com
 * @time: 2025/3/12 15:08
 * @file: service_team.go
 * @description: team lifecycle
 */

type TeamService struct {
	repos *repo.Repositories
	tx    repo.ITxManager
	now   func() time.Time
}

func NewTeamService(repos *repo.Repositories, tx repo.ITxManager) *TeamService {
	return &TeamService{
		repos: repos,
		tx:    tx,
		now:   time.Now,
	}
}

// CreateTeam creates the team and its creator-owner membership in one
// transaction; a team without at least one owner must never exist.
func (s *TeamService) CreateTeam(ctx context.Context, userId string, req *model.CreateTeamReq) (*model.TeamResp, error) {
	exists, err := s.repos.Team.CheckSlugExists(req.Slug)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrSlugExists
	}

	plan := req.Plan
	if plan == "" {
		plan = model.TeamPlanFree
	}

	team := &model.Team{
		TeamId:   id.GetUUID(),
		Name:     req.Name,
		Slug:     req.Slug,
		Plan:     plan,
		IsActive: true,
	}

	err = s.tx.Transaction(ctx, func(r *repo.Repositories) error {
		if err := r.Team.CreateTeam(team); err != nil {
			return err
		}
		return r.TeamMembership.CreateMembership(&model.TeamMembership{
			MembershipId: id.GetUUID(),
			TeamId:       team.TeamId,
			UserId:       userId,
			Role:         access.RoleOwner,
		})
	})
	if err != nil {
		return nil, err
	}

	log.Infow("team created", "teamId", team.TeamId, "slug", team.Slug, "creator", userId)
	return model.ToTeamResp(team), nil
}

// UpdateTeam applies a partial update; nil fields are untouched. The caller
// must already hold an admin team context.
func (s *TeamService) UpdateTeam(ctx context.Context, tc *TeamContext, req *model.UpdateTeamReq) (*model.TeamResp, error) {
	updates := make(map[string]any)
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Plan != nil {
		updates["plan"] = *req.Plan
	}
	if req.IsActive != nil {
		// only owners may deactivate or reactivate the team
		if tc.Role() != access.RoleOwner {
			return nil, ErrForbidden
		}
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := s.repos.Team.UpdateTeamByTeamId(tc.Team.TeamId, updates); err != nil {
			return nil, err
		}
	}

	team, err := s.repos.Team.GetTeamByTeamId(tc.Team.TeamId)
	if err != nil {
		return nil, err
	}
	return model.ToTeamResp(team), nil
}

// GetTeam returns the team view for a resolved context.
func (s *TeamService) GetTeam(tc *TeamContext) *model.TeamResp {
	return model.ToTeamResp(tc.Team)
}
