package model

/**
 * @author: keel.authors@gmail.com
 * @time: 2025/3/8 12:14
 * @file: model_team.go
 * @description: team model, the tenant root for all team-scoped data
 */

// Team is the foreign key root for all multi-tenant entities. Subscription
// state is stored externally; only the plan tag and its limits live here.
type Team struct {
	BaseModel
	TeamId string `gorm:"column:team_id;uniqueIndex" json:"teamId"`
	Name   string `gorm:"column:name;index" json:"name"`
	Slug   string `gorm:"column:slug;uniqueIndex" json:"slug"`
	Plan   string `gorm:"column:plan;index" json:"plan"`

	IsActive bool `gorm:"column:is_active" json:"isActive"`

	// plan limits, must be updated on plan change; nil means unlimited
	LimitsMaxTeamMembers *int `gorm:"column:limits_max_team_members" json:"limitsMaxTeamMembers"`
}

func (Team) TableName() string {
	return "t_team"
}

// TeamPlan tags. The set is open-ended; no quota logic is enforced here.
const (
	TeamPlanFree       = "free"
	TeamPlanStarter    = "starter"
	TeamPlanPro        = "pro"
	TeamPlanEnterprise = "enterprise"
)

// CreateTeamReq create team request
type CreateTeamReq struct {
	Name string `json:"name" validate:"required,min=2,max=255"`
	Slug string `json:"slug" validate:"required,min=2,max=100"`
	Plan string `json:"plan"`
}

// UpdateTeamReq update team request
type UpdateTeamReq struct {
	Name     *string `json:"name,omitempty"`
	Plan     *string `json:"plan,omitempty"`
	IsActive *bool   `json:"isActive,omitempty"`
}

// TeamResp team response
type TeamResp struct {
	TeamId   string `json:"teamId"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Plan     string `json:"plan"`
	IsActive bool   `json:"isActive"`
}

func ToTeamResp(t *Team) *TeamResp {
	return &TeamResp{
		TeamId:   t.TeamId,
		Name:     t.Name,
		Slug:     t.Slug,
		Plan:     t.Plan,
		IsActive: t.IsActive,
	}
}
