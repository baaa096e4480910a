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

type captureMailer struct {
	to, subject, body []string
}

func (m *captureMailer) Send(_ context.Context, to, subject, body string) error {
	m.to = append(m.to, to)
	m.subject = append(m.subject, subject)
	m.body = append(m.body, body)
	return nil
}

func TestSendTeamInvitation(t *testing.T) {
	repos := newTestRepos()
	mailer := &captureMailer{}
	svc := NewNotificationService(repos, mailer, "https://app.example.com")

	require.NoError(t, repos.Team.CreateTeam(&model.Team{TeamId: "team-1", Name: "Acme", IsActive: true}))
	require.NoError(t, repos.User.CreateUser(&model.User{UserId: "owner-1", Username: "alice", Email: "alice@x.com"}))

	expires := time.Date(2025, 3, 22, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repos.TeamInvitation.CreateInvitation(&model.TeamInvitation{
		InvitationId: "i-1",
		TeamId:       "team-1",
		InvitedBy:    "owner-1",
		Email:        "new@x.com",
		Role:         access.RoleMember,
		Token:        "tok-abc",
		Status:       model.InvitationStatusPending,
		Message:      "welcome",
		ExpiresAt:    &expires,
	}))

	require.NoError(t, svc.SendTeamInvitation(context.Background(), "i-1"))
	require.Len(t, mailer.to, 1)
	assert.Equal(t, "new@x.com", mailer.to[0])
	assert.Contains(t, mailer.subject[0], "Acme")
	assert.Contains(t, mailer.body[0], "alice")
	assert.Contains(t, mailer.body[0], "https://app.example.com/teams/invitations/tok-abc/accept")
	assert.Contains(t, mailer.body[0], "https://app.example.com/teams/invitations/tok-abc/decline")
	assert.Contains(t, mailer.body[0], "welcome")
	assert.Contains(t, mailer.body[0], "2025-03-22")
}

func TestSendTeamInvitationSkipsGoneOrAnswered(t *testing.T) {
	repos := newTestRepos()
	mailer := &captureMailer{}
	svc := NewNotificationService(repos, mailer, "https://app.example.com")

	// deleted between enqueue and delivery: swallowed, not retried
	require.NoError(t, svc.SendTeamInvitation(context.Background(), "i-missing"))

	require.NoError(t, repos.TeamInvitation.CreateInvitation(&model.TeamInvitation{
		InvitationId: "i-2", TeamId: "team-1", Email: "x@x.com",
		Status: model.InvitationStatusRevoked, Token: "tok",
	}))
	require.NoError(t, svc.SendTeamInvitation(context.Background(), "i-2"))

	assert.Empty(t, mailer.to)
}

func TestSendRoleChange(t *testing.T) {
	repos := newTestRepos()
	mailer := &captureMailer{}
	svc := NewNotificationService(repos, mailer, "https://app.example.com")

	require.NoError(t, repos.Team.CreateTeam(&model.Team{TeamId: "team-1", Name: "Acme", IsActive: true}))
	require.NoError(t, repos.User.CreateUser(&model.User{UserId: "u-1", Username: "bob", Email: "bob@x.com"}))
	require.NoError(t, repos.TeamMembership.CreateMembership(&model.TeamMembership{
		MembershipId: "m-1", TeamId: "team-1", UserId: "u-1", Role: access.RoleAdmin,
	}))

	require.NoError(t, svc.SendRoleChange(context.Background(), "m-1", "member", "admin"))
	require.Len(t, mailer.to, 1)
	assert.Equal(t, "bob@x.com", mailer.to[0])
	assert.Contains(t, mailer.body[0], "from member to admin")

	// vanished membership is skipped
	require.NoError(t, svc.SendRoleChange(context.Background(), "m-gone", "member", "admin"))
	assert.Len(t, mailer.to, 1)
}
