package model

/**
 * @author: keel.authors@gmail.com
 * @time: 2025/3/8 11:58
 * @file: model_user.go
 * @description: user model
 */

type User struct {
	BaseModel
	UserId    string `gorm:"column:user_id;uniqueIndex" json:"userId"`
	Username  string `gorm:"column:username;uniqueIndex" json:"username"`
	Email     string `gorm:"column:email;uniqueIndex" json:"email"`
	Password  string `gorm:"column:password" json:"-"` // bcrypt hash
	IsEnabled int    `gorm:"column:is_enabled" json:"isEnabled"`
}

func (User) TableName() string {
	return "t_user"
}

// UserStatus
const (
	UserStatusDisabled = 0
	UserStatusEnabled  = 1
)

type Login struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type UserInfo struct {
	UserId   string `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// LoginResp is returned when the password is accepted and no second factor
// is enrolled, or after a successful OTP challenge.
type LoginResp struct {
	UserInfo     UserInfo `json:"userInfo"`
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`

	// OtpRequired signals that login is suspended: no tokens are issued and
	// the caller must complete the OTP challenge with StateToken.
	OtpRequired bool   `json:"otpRequired,omitempty"`
	StateToken  string `json:"stateToken,omitempty"`
}
