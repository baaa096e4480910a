package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-keel/keel/internal/engine/access"
	"github.com/go-keel/keel/internal/engine/consts"
	"github.com/go-keel/keel/internal/engine/model"
	"github.com/go-keel/keel/internal/engine/repo"
	"github.com/go-keel/keel/internal/pkg/queue"
	"github.com/go-keel/keel/pkg/id"
	"github.com/go-keel/keel/pkg/log"
	"github.com/go-keel/keel/pkg/secure"
	"gorm.io/gorm"
)

/**
 * @author: keel.authors@gmail.com
 * @time: 2025/3/13 10:44
 * @file: service_invitation.go
 * @description: invitation lifecycle: create, accept, decline, revoke
 */

type InvitationService struct {
	repos    *repo.Repositories
	tx       repo.ITxManager
	notifier queue.Notifier
	now      func() time.Time
}

func NewInvitationService(repos *repo.Repositories, tx repo.ITxManager, notifier queue.Notifier) *InvitationService {
	return &InvitationService{
		repos:    repos,
		tx:       tx,
		notifier: notifier,
		now:      time.Now,
	}
}

// CreateInvitation invites an email address into the team. The requester
// must pass CanInvite for the assigned role. The duplicate-pending check is
// application-level: two concurrent creates for the same email can both
// pass, which we accept rather than maintain a partial unique index.
func (s *InvitationService) CreateInvitation(ctx context.Context, tc *TeamContext, req *model.InviteMemberReq) (*model.InvitationResp, error) {
	if !access.CanInvite(tc.Role(), req.Role) {
		return nil, ErrForbidden
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	now := s.now()

	// an existing user already on the team cannot be invited again
	var inviteeId string
	invitee, err := s.repos.User.GetUserByEmail(email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if invitee != nil {
		inviteeId = invitee.UserId
		_, err := s.repos.TeamMembership.GetMembership(tc.Team.TeamId, invitee.UserId)
		if err == nil {
			return nil, ErrAlreadyMember
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	pending, err := s.repos.TeamInvitation.HasPendingInvitation(tc.Team.TeamId, email, now)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, ErrDuplicateInvite
	}

	token, err := secure.URLSafeToken(consts.InvitationTokenBytes)
	if err != nil {
		return nil, err
	}

	expiresAt := now.Add(consts.InvitationDefaultTTL)
	inv := &model.TeamInvitation{
		InvitationId: id.GetUUID(),
		TeamId:       tc.Team.TeamId,
		InvitedBy:    tc.Membership.UserId,
		Email:        email,
		UserId:       inviteeId,
		Role:         req.Role,
		Token:        token,
		Status:       model.InvitationStatusPending,
		Message:      req.Message,
		ExpiresAt:    &expiresAt,
	}
	if err := s.repos.TeamInvitation.CreateInvitation(inv); err != nil {
		return nil, err
	}

	if err := s.notifier.NotifyTeamInvitation(ctx, inv.InvitationId); err != nil {
		log.Errorw("enqueue invitation notification failed", "invitationId", inv.InvitationId, "error", err)
	}

	log.Infow("invitation created", "teamId", tc.Team.TeamId, "invitationId", inv.InvitationId,
		"email", email, "role", req.Role, "by", tc.Membership.UserId)
	return model.ToInvitationResp(inv), nil
}

// ListPending returns the team's pending, non-expired invitations. Visible
// to admins only; the router gates on the admin context.
func (s *InvitationService) ListPending(tc *TeamContext) ([]model.InvitationResp, error) {
	invs, err := s.repos.TeamInvitation.ListPending(tc.Team.TeamId, s.now())
	if err != nil {
		return nil, err
	}
	resp := make([]model.InvitationResp, 0, len(invs))
	for i := range invs {
		resp = append(resp, *model.ToInvitationResp(&invs[i]))
	}
	return resp, nil
}

// GetByToken returns the invitation behind a link for the landing page.
// Only pending, non-expired invitations are visible.
func (s *InvitationService) GetByToken(token string) (*model.InvitationResp, error) {
	inv, err := s.repos.TeamInvitation.GetByToken(token)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !inv.IsValid(s.now()) {
		return nil, ErrNotFound
	}
	return model.ToInvitationResp(inv), nil
}

// AcceptInvitation turns a valid invitation into a membership. The whole
// transition runs in one transaction with the invitation row locked, so a
// second accept or a concurrent revoke serializes behind it.
func (s *InvitationService) AcceptInvitation(ctx context.Context, token, userId string) (*model.MemberResp, error) {
	now := s.now()
	var membership *model.TeamMembership

	err := s.tx.Transaction(ctx, func(r *repo.Repositories) error {
		inv, err := r.TeamInvitation.GetByTokenForUpdate(token)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if !inv.IsValid(now) {
			return ErrInvalidState
		}

		_, err = r.TeamMembership.GetMembership(inv.TeamId, userId)
		if err == nil {
			return ErrAlreadyMember
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		acceptedAt := now
		membership = &model.TeamMembership{
			MembershipId:     id.GetUUID(),
			TeamId:           inv.TeamId,
			UserId:           userId,
			Role:             inv.Role,
			InvitedBy:        inv.InvitedBy,
			InviteAcceptedAt: &acceptedAt,
		}
		if err := r.TeamMembership.CreateMembership(membership); err != nil {
			return err
		}
		return r.TeamInvitation.BindAcceptance(inv.InvitationId, userId)
	})
	if err != nil {
		return nil, err
	}

	log.Infow("invitation accepted", "teamId", membership.TeamId,
		"membershipId", membership.MembershipId, "userId", userId)
	return model.ToMemberResp(membership), nil
}

// DeclineInvitation marks the invitation declined, whatever its current
// status. Idempotent: declining twice, or declining after accept, revoke
// or expiry, still lands on declined without error.
func (s *InvitationService) DeclineInvitation(ctx context.Context, token string) error {
	inv, err := s.repos.TeamInvitation.GetByToken(token)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	if inv.Status == model.InvitationStatusDeclined {
		return nil
	}
	return s.repos.TeamInvitation.UpdateStatus(inv.InvitationId, model.InvitationStatusDeclined)
}

// RevokeInvitation withdraws a pending invitation. Admin context required;
// any non-pending status is ErrInvalidState.
func (s *InvitationService) RevokeInvitation(ctx context.Context, tc *TeamContext, invitationId string) error {
	inv, err := s.repos.TeamInvitation.GetByInvitationId(tc.Team.TeamId, invitationId)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if inv.Status != model.InvitationStatusPending {
		return ErrInvalidState
	}

	if err := s.repos.TeamInvitation.UpdateStatus(inv.InvitationId, model.InvitationStatusRevoked); err != nil {
		return err
	}
	log.Infow("invitation revoked", "teamId", tc.Team.TeamId, "invitationId", inv.InvitationId,
		"by", tc.Membership.UserId)
	return nil
}
