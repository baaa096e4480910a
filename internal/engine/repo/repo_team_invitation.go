package repo

import (
	"errors"
	"time"

	"github.com/go-keel/keel/internal/engine/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

/**
 * @author: keel.authors@gmail.com
 * @time: 2025/3/9 21:26
 * @file: repo_team_invitation.go
 * @description: team invitation repository
 */

type ITeamInvitationRepository interface {
	CreateInvitation(inv *model.TeamInvitation) error
	GetByToken(token string) (*model.TeamInvitation, error)
	// GetByTokenForUpdate locks the invitation row for the enclosing
	// transaction so accept cannot race a second accept or a revoke.
	GetByTokenForUpdate(token string) (*model.TeamInvitation, error)
	GetByInvitationId(teamId, invitationId string) (*model.TeamInvitation, error)
	// GetInvitation looks up by invitation id alone; used by async consumers
	// that carry no team context.
	GetInvitation(invitationId string) (*model.TeamInvitation, error)
	// HasPendingInvitation reports a pending, non-expired invitation for
	// (team, email). Application-level check; see the duplicate-invite race
	// note in the service layer.
	HasPendingInvitation(teamId, email string, now time.Time) (bool, error)
	ListPending(teamId string, now time.Time) ([]model.TeamInvitation, error)
	UpdateStatus(invitationId, status string) error
	// BindAcceptance flips status to accepted and records the accepting user.
	BindAcceptance(invitationId, userId string) error
	ListExpiredPending(now time.Time) ([]model.TeamInvitation, error)
	DeleteInvitation(invitationId string) error
}

type TeamInvitationRepo struct {
	db *gorm.DB
}

func NewTeamInvitationRepo(db *gorm.DB) ITeamInvitationRepository {
	return &TeamInvitationRepo{db: db}
}

func (ir *TeamInvitationRepo) CreateInvitation(inv *model.TeamInvitation) error {
	return ir.db.Table(inv.TableName()).Create(inv).Error
}

func (ir *TeamInvitationRepo) GetByToken(token string) (*model.TeamInvitation, error) {
	var inv model.TeamInvitation
	if err := ir.db.Table(inv.TableName()).
		Where("token = ?", token).First(&inv).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

func (ir *TeamInvitationRepo) GetByTokenForUpdate(token string) (*model.TeamInvitation, error) {
	var inv model.TeamInvitation
	if err := ir.db.Table(inv.TableName()).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("token = ?", token).First(&inv).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

func (ir *TeamInvitationRepo) GetByInvitationId(teamId, invitationId string) (*model.TeamInvitation, error) {
	var inv model.TeamInvitation
	if err := ir.db.Table(inv.TableName()).
		Where("team_id = ? AND invitation_id = ?", teamId, invitationId).First(&inv).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

func (ir *TeamInvitationRepo) GetInvitation(invitationId string) (*model.TeamInvitation, error) {
	var inv model.TeamInvitation
	if err := ir.db.Table(inv.TableName()).
		Where("invitation_id = ?", invitationId).First(&inv).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

func (ir *TeamInvitationRepo) HasPendingInvitation(teamId, email string, now time.Time) (bool, error) {
	var inv model.TeamInvitation
	err := ir.db.Table(inv.TableName()).
		Where("team_id = ? AND email = ? AND status = ?", teamId, email, model.InvitationStatusPending).
		Where("expires_at IS NULL OR expires_at > ?", now).
		First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (ir *TeamInvitationRepo) ListPending(teamId string, now time.Time) ([]model.TeamInvitation, error) {
	var invs []model.TeamInvitation
	if err := ir.db.Table(model.TeamInvitation{}.TableName()).
		Where("team_id = ? AND status = ?", teamId, model.InvitationStatusPending).
		Where("expires_at IS NULL OR expires_at > ?", now).
		Order("created_at DESC").
		Find(&invs).Error; err != nil {
		return nil, err
	}
	return invs, nil
}

func (ir *TeamInvitationRepo) UpdateStatus(invitationId, status string) error {
	return ir.db.Table(model.TeamInvitation{}.TableName()).
		Where("invitation_id = ?", invitationId).
		Update("status", status).Error
}

func (ir *TeamInvitationRepo) BindAcceptance(invitationId, userId string) error {
	return ir.db.Table(model.TeamInvitation{}.TableName()).
		Where("invitation_id = ?", invitationId).
		Updates(map[string]any{
			"status":  model.InvitationStatusAccepted,
			"user_id": userId,
		}).Error
}

func (ir *TeamInvitationRepo) ListExpiredPending(now time.Time) ([]model.TeamInvitation, error) {
	var invs []model.TeamInvitation
	if err := ir.db.Table(model.TeamInvitation{}.TableName()).
		Where("status = ?", model.InvitationStatusPending).
		Where("expires_at IS NOT NULL AND expires_at < ?", now).
		Find(&invs).Error; err != nil {
		return nil, err
	}
	return invs, nil
}

func (ir *TeamInvitationRepo) DeleteInvitation(invitationId string) error {
	return ir.db.Table(model.TeamInvitation{}.TableName()).
		Where("invitation_id = ?", invitationId).
		Delete(&model.TeamInvitation{}).Error
}
