package model

import "time"

/**
 * @author: keel.authors@gmail.com
 * @time: 2025/3/9 14:05
 * @file: model_otp.go
 * @description: two-factor authentication models
 */

// UserOTPProfile tracks a user's OTP preferences and metadata.
type UserOTPProfile struct {
	BaseModel
	UserId               string     `gorm:"column:user_id;uniqueIndex" json:"userId"`
	OtpEnabled           bool       `gorm:"column:otp_enabled" json:"otpEnabled"`
	BackupCodesGenerated bool       `gorm:"column:backup_codes_generated" json:"backupCodesGenerated"`
	EnabledAt            *time.Time `gorm:"column:enabled_at" json:"enabledAt"`
	DisabledAt           *time.Time `gorm:"column:disabled_at" json:"disabledAt"`
	LastUsedAt           *time.Time `gorm:"column:last_used_at" json:"lastUsedAt"`
}

func (UserOTPProfile) TableName() string {
	return "t_user_otp_profile"
}

// TOTPDevice is a time-based one-time password generator bound to a user.
// An unconfirmed device is a live setup attempt; at most one exists per user.
type TOTPDevice struct {
	BaseModel
	DeviceId   string     `gorm:"column:device_id;uniqueIndex" json:"deviceId"`
	UserId     string     `gorm:"column:user_id;index" json:"userId"`
	Name       string     `gorm:"column:name" json:"name"`
	Secret     string     `gorm:"column:secret" json:"-"` // base32 seed
	Confirmed  bool       `gorm:"column:confirmed" json:"confirmed"`
	LastUsedAt *time.Time `gorm:"column:last_used_at" json:"lastUsedAt"`
}

func (TOTPDevice) TableName() string {
	return "t_totp_device"
}

// StaticDevice groups a user's single-use backup codes.
type StaticDevice struct {
	BaseModel
	DeviceId  string `gorm:"column:device_id;uniqueIndex" json:"deviceId"`
	UserId    string `gorm:"column:user_id;index" json:"userId"`
	Name      string `gorm:"column:name" json:"name"`
	Confirmed bool   `gorm:"column:confirmed" json:"confirmed"`
}

func (StaticDevice) TableName() string {
	return "t_static_device"
}

// StaticToken is one unused backup code. Used codes are deleted, so every
// stored token is by definition unused.
type StaticToken struct {
	BaseModel
	DeviceId string `gorm:"column:device_id;index" json:"deviceId"`
	Token    string `gorm:"column:token;index" json:"token"`
}

func (StaticToken) TableName() string {
	return "t_static_token"
}

// OtpSetupResp returns the provisioning material for a fresh enrollment.
// QR rendering happens on the client from the provisioning URI.
type OtpSetupResp struct {
	DeviceId        string `json:"deviceId"`
	Secret          string `json:"secret"`
	ProvisioningURI string `json:"provisioningUri"`
}

// OtpVerifySetupReq confirms an enrollment with a generated code.
type OtpVerifySetupReq struct {
	Code string `json:"code" validate:"required"`
}

// OtpVerifySetupResp carries the one-time view of fresh backup codes.
type OtpVerifySetupResp struct {
	BackupCodes []string `json:"backupCodes"`
}

// OtpChallengeReq completes a suspended login.
type OtpChallengeReq struct {
	StateToken string `json:"stateToken" validate:"required"`
	Code       string `json:"code" validate:"required"`
}

// OtpChallengeResp is the outcome of a successful challenge. When a backup
// code was burned, RemainingBackupCodes warns how many are left.
type OtpChallengeResp struct {
	LoginResp
	UsedBackupCode       bool `json:"usedBackupCode,omitempty"`
	RemainingBackupCodes int  `json:"remainingBackupCodes,omitempty"`
}

// OtpDisableReq proves presence with the current password.
type OtpDisableReq struct {
	Password string `json:"password" validate:"required"`
}

// OtpSettingsResp is the settings overview.
type OtpSettingsResp struct {
	OtpEnabled       bool       `json:"otpEnabled"`
	TotpDevices      int        `json:"totpDevices"`
	BackupCodesCount int        `json:"backupCodesCount"`
	LastUsedAt       *time.Time `json:"lastUsedAt,omitempty"`
}
