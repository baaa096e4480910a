package model

import (
	"time"

	"github.com/go-keel/keel/internal/engine/access"
)

/**
 * @author: keel.authors@gmail.com
 * @time: 2025/3/8 12:47
 * @file: model_team_invitation.go
 * @description: team invitation model
 */

// TeamInvitation invites an email address into a team. The token is the
// sole credential for accept/decline; it is unique and immutable once set.
type TeamInvitation struct {
	BaseModel
	InvitationId string `gorm:"column:invitation_id;uniqueIndex" json:"invitationId"`
	TeamId       string `gorm:"column:team_id;index" json:"teamId"`

	// InvitedBy is a strong reference to the inviter.
	InvitedBy string `gorm:"column:invited_by" json:"invitedBy"`

	Email string `gorm:"column:email;index" json:"email"`

	// UserId is set when the invitee already exists, and bound to the
	// accepting user on acceptance.
	UserId string `gorm:"column:user_id" json:"userId"`

	Role    access.Role `gorm:"column:role" json:"role"`
	Token   string      `gorm:"column:token;uniqueIndex" json:"-"`
	Status  string      `gorm:"column:status;index" json:"status"`
	Message string      `gorm:"column:message" json:"message"`

	// ExpiresAt nil means the invitation never expires; the creation path
	// always sets now+7d.
	ExpiresAt *time.Time `gorm:"column:expires_at;index" json:"expiresAt"`
}

func (TeamInvitation) TableName() string {
	return "t_team_invitation"
}

// InvitationStatus. pending is the only non-terminal state; no transition
// leads back to it.
const (
	InvitationStatusPending  = "pending"
	InvitationStatusAccepted = "accepted"
	InvitationStatusDeclined = "declined"
	InvitationStatusExpired  = "expired"
	InvitationStatusRevoked  = "revoked"
)

// IsValid reports whether the invitation can still be accepted:
// status pending and not past its expiry.
func (i *TeamInvitation) IsValid(now time.Time) bool {
	if i.Status != InvitationStatusPending {
		return false
	}
	if i.ExpiresAt != nil && i.ExpiresAt.Before(now) {
		return false
	}
	return true
}

// InviteMemberReq invite member request
type InviteMemberReq struct {
	Email   string      `json:"email" validate:"required,email"`
	Role    access.Role `json:"role" validate:"required"`
	Message string      `json:"message"`
}

// InvitationResp invitation response
type InvitationResp struct {
	InvitationId string      `json:"invitationId"`
	TeamId       string      `json:"teamId"`
	Email        string      `json:"email"`
	Role         access.Role `json:"role"`
	Status       string      `json:"status"`
	Message      string      `json:"message,omitempty"`
	InvitedBy    string      `json:"invitedBy"`
	ExpiresAt    *time.Time  `json:"expiresAt"`
}

func ToInvitationResp(i *TeamInvitation) *InvitationResp {
	return &InvitationResp{
		InvitationId: i.InvitationId,
		TeamId:       i.TeamId,
		Email:        i.Email,
		Role:         i.Role,
		Status:       i.Status,
		Message:      i.Message,
		InvitedBy:    i.InvitedBy,
		ExpiresAt:    i.ExpiresAt,
	}
}
