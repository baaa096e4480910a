package repo

import (
	"errors"

	"github.com/go-keel/keel/internal/engine/model"
	"gorm.io/gorm"
)

/**
 * @author: keel.authors@gmail.com
 * @time: 2025/3/9 20:38
 * @file: repo_team.go
 * @description: team repository
 */

type ITeamRepository interface {
	CreateTeam(team *model.Team) error
	GetTeamByTeamId(teamId string) (*model.Team, error)
	GetTeamBySlug(slug string) (*model.Team, error)
	UpdateTeamByTeamId(teamId string, updates map[string]any) error
	CheckSlugExists(slug string, excludeTeamId ...string) (bool, error)
}

type TeamRepo struct {
	db *gorm.DB
}

func NewTeamRepo(db *gorm.DB) ITeamRepository {
	return &TeamRepo{db: db}
}

func (tr *TeamRepo) CreateTeam(team *model.Team) error {
	return tr.db.Table(team.TableName()).Create(team).Error
}

func (tr *TeamRepo) GetTeamByTeamId(teamId string) (*model.Team, error) {
	var team model.Team
	if err := tr.db.Table(team.TableName()).
		Where("team_id = ?", teamId).First(&team).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

func (tr *TeamRepo) GetTeamBySlug(slug string) (*model.Team, error) {
	var team model.Team
	if err := tr.db.Table(team.TableName()).
		Where("slug = ?", slug).First(&team).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

func (tr *TeamRepo) UpdateTeamByTeamId(teamId string, updates map[string]any) error {
	return tr.db.Table(model.Team{}.TableName()).
		Where("team_id = ?", teamId).Updates(updates).Error
}

func (tr *TeamRepo) CheckSlugExists(slug string, excludeTeamId ...string) (bool, error) {
	query := tr.db.Table(model.Team{}.TableName()).Where("slug = ?", slug)
	if len(excludeTeamId) > 0 && excludeTeamId[0] != "" {
		query = query.Where("team_id != ?", excludeTeamId[0])
	}

	var team model.Team
	err := query.First(&team).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
