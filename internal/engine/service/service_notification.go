package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-keel/keel/internal/engine/model"
	"github.com/go-keel/keel/internal/engine/repo"
	"github.com/go-keel/keel/pkg/log"
	"gorm.io/gorm"
)

/**
 * @author: keel.authors@gmail.com
 * @time: 2025/3/14 16:50
 * @file: service_notification.go
 * @description: worker-side notification handlers
 */

// Mailer delivers a rendered notification. Delivery is at-least-once; the
// implementation owns idempotence.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogMailer is the default Mailer: it logs instead of delivering. Real
// delivery plugs in behind the same interface.
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, to, subject, body string) error {
	log.Infow("mail", "to", to, "subject", subject, "body", body)
	return nil
}

// NotificationService resolves queued task payloads back into entities and
// renders them for the Mailer. Rows deleted between enqueue and delivery
// are skipped, not failed: at-least-once delivery retries forever otherwise.
type NotificationService struct {
	repos   *repo.Repositories
	mailer  Mailer
	siteURL string
}

func NewNotificationService(repos *repo.Repositories, mailer Mailer, siteURL string) *NotificationService {
	if mailer == nil {
		mailer = LogMailer{}
	}
	return &NotificationService{
		repos:   repos,
		mailer:  mailer,
		siteURL: siteURL,
	}
}

// SendTeamInvitation mails the invitee their accept/decline links.
func (s *NotificationService) SendTeamInvitation(ctx context.Context, invitationId string) error {
	inv, err := s.repos.TeamInvitation.GetInvitation(invitationId)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Warnw("invitation vanished before notification", "invitationId", invitationId)
		return nil
	}
	if err != nil {
		return err
	}
	if inv.Status != model.InvitationStatusPending {
		// revoked or answered before the worker got to it
		return nil
	}

	team, err := s.repos.Team.GetTeamByTeamId(inv.TeamId)
	if err != nil {
		return err
	}

	inviterName := "a team admin"
	if inviter, err := s.repos.User.GetUserByUserId(inv.InvitedBy); err == nil {
		inviterName = inviter.Username
	}

	acceptURL := fmt.Sprintf("%s/teams/invitations/%s/accept", s.siteURL, inv.Token)
	declineURL := fmt.Sprintf("%s/teams/invitations/%s/decline", s.siteURL, inv.Token)

	subject := fmt.Sprintf("You've been invited to join %s", team.Name)
	body := fmt.Sprintf("%s invited you to join %s as %s.\n", inviterName, team.Name, inv.Role)
	if inv.Message != "" {
		body += fmt.Sprintf("\n%q\n", inv.Message)
	}
	body += fmt.Sprintf("\nAccept: %s\nDecline: %s\n", acceptURL, declineURL)
	if inv.ExpiresAt != nil {
		body += fmt.Sprintf("\nThis invitation expires on %s.\n", inv.ExpiresAt.Format("2006-01-02"))
	}

	return s.mailer.Send(ctx, inv.Email, subject, body)
}

// SendRoleChange mails a member that their role changed.
func (s *NotificationService) SendRoleChange(ctx context.Context, membershipId, oldRole, newRole string) error {
	membership, err := s.repos.TeamMembership.GetMembershipByMembershipId(membershipId)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Warnw("membership vanished before notification", "membershipId", membershipId)
		return nil
	}
	if err != nil {
		return err
	}

	team, err := s.repos.Team.GetTeamByTeamId(membership.TeamId)
	if err != nil {
		return err
	}
	user, err := s.repos.User.GetUserByUserId(membership.UserId)
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("Your role in %s changed", team.Name)
	body := fmt.Sprintf("Your role in %s changed from %s to %s.\n", team.Name, oldRole, newRole)

	return s.mailer.Send(ctx, user.Email, subject, body)
}
