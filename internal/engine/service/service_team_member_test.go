package service

import (
	"context"
	"testing"

	"github.com/go-keel/keel/internal/engine/access"
	"github.com/go-keel/keel/internal/engine/model"
	"github.com/go-keel/keel/internal/engine/repo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memberFixture struct {
	svc      *TeamMemberService
	repos    *repo.Repositories
	notifier *fakeNotifier
	team     *model.Team
}

// seedTeam builds a team with one owner, one admin, one member and one
// viewer, plus a second owner when twoOwners is set.
func seedTeam(t *testing.T, twoOwners bool) *memberFixture {
	t.Helper()
	repos := newTestRepos()
	notifier := &fakeNotifier{}
	svc := NewTeamMemberService(repos, &fakeTxManager{repos: repos}, notifier)
	svc.now = testNow

	team := &model.Team{TeamId: "team-1", Name: "Acme", Slug: "acme", IsActive: true}
	require.NoError(t, repos.Team.CreateTeam(team))

	seed := []struct {
		membershipId, userId string
		role                 access.Role
	}{
		{"m-owner", "owner-1", access.RoleOwner},
		{"m-admin", "admin-1", access.RoleAdmin},
		{"m-member", "member-1", access.RoleMember},
		{"m-viewer", "viewer-1", access.RoleViewer},
	}
	if twoOwners {
		seed = append(seed, struct {
			membershipId, userId string
			role                 access.Role
		}{"m-owner2", "owner-2", access.RoleOwner})
	}
	for _, s := range seed {
		require.NoError(t, repos.TeamMembership.CreateMembership(&model.TeamMembership{
			MembershipId: s.membershipId,
			TeamId:       team.TeamId,
			UserId:       s.userId,
			Role:         s.role,
		}))
	}

	return &memberFixture{svc: svc, repos: repos, notifier: notifier, team: team}
}

func (f *memberFixture) ctx(t *testing.T, userId string) *TeamContext {
	t.Helper()
	m, err := f.repos.TeamMembership.GetMembership(f.team.TeamId, userId)
	require.NoError(t, err)
	return &TeamContext{Team: f.team, Membership: m}
}

func TestUpdateMemberRoleSelfChangeRejected(t *testing.T) {
	f := seedTeam(t, true)

	_, err := f.svc.UpdateMemberRole(context.Background(), f.ctx(t, "owner-1"), "m-owner", access.RoleAdmin)
	assert.ErrorIs(t, err, ErrInvalidOperation)
}

func TestUpdateMemberRoleAdminCannotTouchAdminsOrOwners(t *testing.T) {
	f := seedTeam(t, true)
	adminCtx := f.ctx(t, "admin-1")

	_, err := f.svc.UpdateMemberRole(context.Background(), adminCtx, "m-owner", access.RoleMember)
	assert.ErrorIs(t, err, ErrForbidden)

	// admin may manage a member, but may not promote beyond member/viewer
	_, err = f.svc.UpdateMemberRole(context.Background(), adminCtx, "m-member", access.RoleAdmin)
	assert.ErrorIs(t, err, ErrForbidden)

	resp, err := f.svc.UpdateMemberRole(context.Background(), adminCtx, "m-member", access.RoleViewer)
	require.NoError(t, err)
	assert.Equal(t, access.RoleViewer, resp.Role)
}

func TestUpdateMemberRoleLastOwnerProtected(t *testing.T) {
	f := seedTeam(t, true)

	// snapshot the context while owner-1 still holds owner; a concurrent
	// demotion then leaves owner-2 as the last owner
	ownerCtx := f.ctx(t, "owner-1")
	require.NoError(t, f.repos.TeamMembership.UpdateRole("m-owner", access.RoleMember))

	_, err := f.svc.UpdateMemberRole(context.Background(), ownerCtx, "m-owner2", access.RoleAdmin)
	assert.ErrorIs(t, err, ErrInvalidOperation)

	// with the second owner restored the same demotion passes
	require.NoError(t, f.repos.TeamMembership.UpdateRole("m-owner", access.RoleOwner))
	resp, err := f.svc.UpdateMemberRole(context.Background(), ownerCtx, "m-owner2", access.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, access.RoleAdmin, resp.Role)
}

func TestUpdateMemberRoleNotifiesAfterCommit(t *testing.T) {
	f := seedTeam(t, false)

	resp, err := f.svc.UpdateMemberRole(context.Background(), f.ctx(t, "owner-1"), "m-member", access.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, access.RoleAdmin, resp.Role)
	assert.Equal(t, []string{"m-member"}, f.notifier.roleChanges)

	// no-op change does not notify
	_, err = f.svc.UpdateMemberRole(context.Background(), f.ctx(t, "owner-1"), "m-viewer", access.RoleViewer)
	require.NoError(t, err)
	assert.Len(t, f.notifier.roleChanges, 1)
}

func TestUpdateMemberRoleUnknownTargets(t *testing.T) {
	f := seedTeam(t, false)
	ownerCtx := f.ctx(t, "owner-1")

	_, err := f.svc.UpdateMemberRole(context.Background(), ownerCtx, "m-missing", access.RoleAdmin)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.UpdateMemberRole(context.Background(), ownerCtx, "m-member", access.Role("superuser"))
	assert.ErrorIs(t, err, ErrInvalidOperation)
}

func TestRemoveMember(t *testing.T) {
	f := seedTeam(t, true)

	// self-removal is not allowed
	err := f.svc.RemoveMember(context.Background(), f.ctx(t, "owner-1"), "m-owner")
	assert.ErrorIs(t, err, ErrInvalidOperation)

	// admin cannot remove another admin or an owner
	require.NoError(t, f.repos.TeamMembership.CreateMembership(&model.TeamMembership{
		MembershipId: "m-admin2", TeamId: f.team.TeamId, UserId: "admin-2", Role: access.RoleAdmin,
	}))
	err = f.svc.RemoveMember(context.Background(), f.ctx(t, "admin-1"), "m-admin2")
	assert.ErrorIs(t, err, ErrForbidden)

	// admin removes a member
	require.NoError(t, f.svc.RemoveMember(context.Background(), f.ctx(t, "admin-1"), "m-member"))
	_, err = f.repos.TeamMembership.GetMembershipByMembershipId("m-member")
	assert.Error(t, err)

	// owner removes the other owner while two exist
	require.NoError(t, f.svc.RemoveMember(context.Background(), f.ctx(t, "owner-1"), "m-owner2"))

	// nobody below owner may remove the remaining owner
	err = f.svc.RemoveMember(context.Background(), f.ctx(t, "admin-1"), "m-owner")
	assert.ErrorIs(t, err, ErrForbidden)
	err = f.svc.RemoveMember(context.Background(), f.ctx(t, "viewer-1"), "m-admin")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestRemoveMemberLastOwnerProtected(t *testing.T) {
	f := seedTeam(t, true)

	// stale owner context plus a concurrent demotion of owner-1 leaves
	// owner-2 as the last owner when the transaction recounts
	ownerCtx := f.ctx(t, "owner-1")
	require.NoError(t, f.repos.TeamMembership.UpdateRole("m-owner", access.RoleMember))

	err := f.svc.RemoveMember(context.Background(), ownerCtx, "m-owner2")
	assert.ErrorIs(t, err, ErrInvalidOperation)
}

func TestListMembers(t *testing.T) {
	f := seedTeam(t, false)

	members, err := f.svc.ListMembers(f.ctx(t, "viewer-1"))
	require.NoError(t, err)
	assert.Len(t, members, 4)
}
