package repo

import (
	"time"

	"github.com/go-keel/keel/internal/engine/access"
	"github.com/go-keel/keel/internal/engine/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

/**
 * @author: keel.authors@gmail.com
 * @time: 2025/3/9 21:02
 * @file: repo_team_membership.go
 * @description: team membership repository
 */

type ITeamMembershipRepository interface {
	CreateMembership(m *model.TeamMembership) error
	GetMembership(teamId, userId string) (*model.TeamMembership, error)
	GetMembershipById(teamId, membershipId string) (*model.TeamMembership, error)
	// GetMembershipByMembershipId looks up by membership id alone; used by
	// async consumers that carry no team context.
	GetMembershipByMembershipId(membershipId string) (*model.TeamMembership, error)
	ListMembers(teamId string) ([]model.TeamMembership, error)
	// CountOwnersForUpdate locks the team's owner rows for the duration of
	// the enclosing transaction; callers gate last-owner mutations on it.
	CountOwnersForUpdate(teamId string) (int64, error)
	UpdateRole(membershipId string, role access.Role) error
	DeleteMembership(membershipId string) error
	ListExpired(now time.Time) ([]model.TeamMembership, error)
}

type TeamMembershipRepo struct {
	db *gorm.DB
}

func NewTeamMembershipRepo(db *gorm.DB) ITeamMembershipRepository {
	return &TeamMembershipRepo{db: db}
}

func (mr *TeamMembershipRepo) CreateMembership(m *model.TeamMembership) error {
	return mr.db.Table(m.TableName()).Create(m).Error
}

func (mr *TeamMembershipRepo) GetMembership(teamId, userId string) (*model.TeamMembership, error) {
	var m model.TeamMembership
	if err := mr.db.Table(m.TableName()).
		Where("team_id = ? AND user_id = ?", teamId, userId).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (mr *TeamMembershipRepo) GetMembershipById(teamId, membershipId string) (*model.TeamMembership, error) {
	var m model.TeamMembership
	if err := mr.db.Table(m.TableName()).
		Where("team_id = ? AND membership_id = ?", teamId, membershipId).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (mr *TeamMembershipRepo) GetMembershipByMembershipId(membershipId string) (*model.TeamMembership, error) {
	var m model.TeamMembership
	if err := mr.db.Table(m.TableName()).
		Where("membership_id = ?", membershipId).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (mr *TeamMembershipRepo) ListMembers(teamId string) ([]model.TeamMembership, error) {
	var members []model.TeamMembership
	if err := mr.db.Table(model.TeamMembership{}.TableName()).
		Where("team_id = ?", teamId).
		Order("role, created_at").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

func (mr *TeamMembershipRepo) CountOwnersForUpdate(teamId string) (int64, error) {
	var owners []model.TeamMembership
	err := mr.db.Table(model.TeamMembership{}.TableName()).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("team_id = ? AND role = ?", teamId, access.RoleOwner).
		Find(&owners).Error
	if err != nil {
		return 0, err
	}
	return int64(len(owners)), nil
}

func (mr *TeamMembershipRepo) UpdateRole(membershipId string, role access.Role) error {
	return mr.db.Table(model.TeamMembership{}.TableName()).
		Where("membership_id = ?", membershipId).
		Update("role", role).Error
}

func (mr *TeamMembershipRepo) DeleteMembership(membershipId string) error {
	return mr.db.Table(model.TeamMembership{}.TableName()).
		Where("membership_id = ?", membershipId).
		Delete(&model.TeamMembership{}).Error
}

func (mr *TeamMembershipRepo) ListExpired(now time.Time) ([]model.TeamMembership, error) {
	var members []model.TeamMembership
	if err := mr.db.Table(model.TeamMembership{}.TableName()).
		Where("access_expires_at IS NOT NULL AND access_expires_at < ?", now).
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}
