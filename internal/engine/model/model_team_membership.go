package model

import (
	"time"

	"github.com/go-keel/keel/internal/engine/access"
)

/**
 * @author: keel.authors@gmail.com
 * @time: 2025/3/8 12:30
 * @file: model_team_membership.go
 * @description: team membership model
 */

// TeamMembership binds exactly one user to exactly one team.
// (team_id, user_id) is unique: a user holds at most one role per team.
type TeamMembership struct {
	BaseModel
	MembershipId string      `gorm:"column:membership_id;uniqueIndex" json:"membershipId"`
	TeamId       string      `gorm:"column:team_id;uniqueIndex:uk_team_user;index" json:"teamId"`
	UserId       string      `gorm:"column:user_id;uniqueIndex:uk_team_user" json:"userId"`
	Role         access.Role `gorm:"column:role;index" json:"role"`

	// InvitedBy is a weak reference; it survives inviter deletion.
	InvitedBy        string     `gorm:"column:invited_by" json:"invitedBy"`
	InviteAcceptedAt *time.Time `gorm:"column:invite_accepted_at" json:"inviteAcceptedAt"`

	// AccessExpiresAt grants temporary/contractor access; nil means permanent.
	AccessExpiresAt *time.Time `gorm:"column:access_expires_at;index" json:"accessExpiresAt"`
}

func (TeamMembership) TableName() string {
	return "t_team_membership"
}

// UpdateMemberRoleReq update member role request
type UpdateMemberRoleReq struct {
	Role access.Role `json:"role" validate:"required"`
}

// MemberResp member response
type MemberResp struct {
	MembershipId     string      `json:"membershipId"`
	TeamId           string      `json:"teamId"`
	UserId           string      `json:"userId"`
	Role             access.Role `json:"role"`
	InvitedBy        string      `json:"invitedBy,omitempty"`
	InviteAcceptedAt *time.Time  `json:"inviteAcceptedAt,omitempty"`
	AccessExpiresAt  *time.Time  `json:"accessExpiresAt,omitempty"`
}

func ToMemberResp(m *TeamMembership) *MemberResp {
	return &MemberResp{
		MembershipId:     m.MembershipId,
		TeamId:           m.TeamId,
		UserId:           m.UserId,
		Role:             m.Role,
		InvitedBy:        m.InvitedBy,
		InviteAcceptedAt: m.InviteAcceptedAt,
		AccessExpiresAt:  m.AccessExpiresAt,
	}
}
