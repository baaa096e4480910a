package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-keel/keel/internal/engine/access"
	"github.com/go-keel/keel/internal/engine/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTeamService() (*TeamService, *TeamContextService) {
	repos := newTestRepos()
	svc := NewTeamService(repos, &fakeTxManager{repos: repos})
	svc.now = testNow
	ctxSvc := NewTeamContextService(repos.Team, repos.TeamMembership)
	ctxSvc.now = testNow
	return svc, ctxSvc
}

func TestCreateTeamMakesCreatorOwner(t *testing.T) {
	svc, ctxSvc := newTeamService()

	resp, err := svc.CreateTeam(context.Background(), "user-1", &model.CreateTeamReq{
		Name: "Acme",
		Slug: "acme",
	})
	require.NoError(t, err)
	assert.Equal(t, "Acme", resp.Name)
	assert.Equal(t, model.TeamPlanFree, resp.Plan)
	assert.True(t, resp.IsActive)

	tc, err := ctxSvc.Resolve(resp.TeamId, "user-1")
	require.NoError(t, err)
	assert.Equal(t, access.RoleOwner, tc.Role())
}

func TestCreateTeamDuplicateSlug(t *testing.T) {
	svc, _ := newTeamService()

	_, err := svc.CreateTeam(context.Background(), "user-1", &model.CreateTeamReq{Name: "A", Slug: "acme"})
	require.NoError(t, err)

	_, err = svc.CreateTeam(context.Background(), "user-2", &model.CreateTeamReq{Name: "B", Slug: "acme"})
	assert.ErrorIs(t, err, ErrSlugExists)
}

func TestUpdateTeamDeactivationIsOwnerOnly(t *testing.T) {
	svc, ctxSvc := newTeamService()

	resp, err := svc.CreateTeam(context.Background(), "owner-1", &model.CreateTeamReq{Name: "Acme", Slug: "acme"})
	require.NoError(t, err)

	require.NoError(t, svc.repos.TeamMembership.CreateMembership(&model.TeamMembership{
		MembershipId: "m-admin",
		TeamId:       resp.TeamId,
		UserId:       "admin-1",
		Role:         access.RoleAdmin,
	}))

	adminCtx, err := ctxSvc.ResolveAdmin(resp.TeamId, "admin-1")
	require.NoError(t, err)

	inactive := false
	_, err = svc.UpdateTeam(context.Background(), adminCtx, &model.UpdateTeamReq{IsActive: &inactive})
	assert.ErrorIs(t, err, ErrForbidden)

	newName := "Acme Inc"
	updated, err := svc.UpdateTeam(context.Background(), adminCtx, &model.UpdateTeamReq{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, "Acme Inc", updated.Name)

	ownerCtx, err := ctxSvc.ResolveAdmin(resp.TeamId, "owner-1")
	require.NoError(t, err)
	updated, err = svc.UpdateTeam(context.Background(), ownerCtx, &model.UpdateTeamReq{IsActive: &inactive})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
}

func TestResolveRejectsInactiveTeamAndExpiredAccess(t *testing.T) {
	svc, ctxSvc := newTeamService()

	resp, err := svc.CreateTeam(context.Background(), "owner-1", &model.CreateTeamReq{Name: "Acme", Slug: "acme"})
	require.NoError(t, err)

	expired := testNow().Add(-1 * time.Hour)
	require.NoError(t, svc.repos.TeamMembership.CreateMembership(&model.TeamMembership{
		MembershipId:    "m-temp",
		TeamId:          resp.TeamId,
		UserId:          "contractor-1",
		Role:            access.RoleMember,
		AccessExpiresAt: &expired,
	}))

	_, err = ctxSvc.Resolve(resp.TeamId, "contractor-1")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = ctxSvc.Resolve(resp.TeamId, "stranger")
	assert.ErrorIs(t, err, ErrNotFound)

	inactive := false
	ownerCtx, err := ctxSvc.ResolveAdmin(resp.TeamId, "owner-1")
	require.NoError(t, err)
	_, err = svc.UpdateTeam(context.Background(), ownerCtx, &model.UpdateTeamReq{IsActive: &inactive})
	require.NoError(t, err)

	_, err = ctxSvc.Resolve(resp.TeamId, "owner-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveAdminRejectsMember(t *testing.T) {
	svc, ctxSvc := newTeamService()

	resp, err := svc.CreateTeam(context.Background(), "owner-1", &model.CreateTeamReq{Name: "Acme", Slug: "acme"})
	require.NoError(t, err)

	require.NoError(t, svc.repos.TeamMembership.CreateMembership(&model.TeamMembership{
		MembershipId: "m-member",
		TeamId:       resp.TeamId,
		UserId:       "member-1",
		Role:         access.RoleMember,
	}))

	_, err = ctxSvc.ResolveAdmin(resp.TeamId, "member-1")
	assert.ErrorIs(t, err, ErrForbidden)
}
