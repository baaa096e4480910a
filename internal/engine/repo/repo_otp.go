package repo

import (
	"errors"
	"time"

	"github.com/go-keel/keel/internal/engine/model"
	"gorm.io/gorm"
)

/**
 * @author: keel.authors@gmail.com
 * @time: 2025/3/10 10:12
 * @file: repo_otp.go
 * @description: OTP profile and device repository
 */

type IOtpRepository interface {
	// profile
	GetProfile(userId string) (*model.UserOTPProfile, error)
	GetOrCreateProfile(userId string) (*model.UserOTPProfile, error)
	UpdateProfile(userId string, updates map[string]any) error

	// TOTP devices
	CreateTOTPDevice(d *model.TOTPDevice) error
	GetUnconfirmedTOTPDevice(userId string) (*model.TOTPDevice, error)
	ListConfirmedTOTPDevices(userId string) ([]model.TOTPDevice, error)
	ConfirmTOTPDevice(deviceId string) error
	TouchTOTPDevice(deviceId string, at time.Time) error
	DeleteUnconfirmedTOTPDevices(userId string) error
	DeleteAllTOTPDevices(userId string) error

	// static (backup code) devices
	CreateStaticDevice(d *model.StaticDevice) error
	GetConfirmedStaticDevice(userId string) (*model.StaticDevice, error)
	DeleteAllStaticDevices(userId string) error
	CreateStaticToken(t *model.StaticToken) error
	FindStaticToken(deviceId, token string) (*model.StaticToken, error)
	DeleteStaticToken(id uint64) error
	CountStaticTokens(deviceId string) (int64, error)
	ListStaticTokens(deviceId string) ([]model.StaticToken, error)

	// HasConfirmedDevice reports whether the user has any confirmed device,
	// TOTP or static. Login suspension keys off this.
	HasConfirmedDevice(userId string) (bool, error)
}

type OtpRepo struct {
	db *gorm.DB
}

func NewOtpRepo(db *gorm.DB) IOtpRepository {
	return &OtpRepo{db: db}
}

func (or *OtpRepo) GetProfile(userId string) (*model.UserOTPProfile, error) {
	var profile model.UserOTPProfile
	if err := or.db.Table(profile.TableName()).
		Where("user_id = ?", userId).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (or *OtpRepo) GetOrCreateProfile(userId string) (*model.UserOTPProfile, error) {
	profile, err := or.GetProfile(userId)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	fresh := &model.UserOTPProfile{UserId: userId}
	if err := or.db.Table(fresh.TableName()).Create(fresh).Error; err != nil {
		return nil, err
	}
	return fresh, nil
}

func (or *OtpRepo) UpdateProfile(userId string, updates map[string]any) error {
	return or.db.Table(model.UserOTPProfile{}.TableName()).
		Where("user_id = ?", userId).Updates(updates).Error
}

func (or *OtpRepo) CreateTOTPDevice(d *model.TOTPDevice) error {
	return or.db.Table(d.TableName()).Create(d).Error
}

func (or *OtpRepo) GetUnconfirmedTOTPDevice(userId string) (*model.TOTPDevice, error) {
	var device model.TOTPDevice
	if err := or.db.Table(device.TableName()).
		Where("user_id = ? AND confirmed = ?", userId, false).First(&device).Error; err != nil {
		return nil, err
	}
	return &device, nil
}

func (or *OtpRepo) ListConfirmedTOTPDevices(userId string) ([]model.TOTPDevice, error) {
	var devices []model.TOTPDevice
	if err := or.db.Table(model.TOTPDevice{}.TableName()).
		Where("user_id = ? AND confirmed = ?", userId, true).
		Find(&devices).Error; err != nil {
		return nil, err
	}
	return devices, nil
}

func (or *OtpRepo) ConfirmTOTPDevice(deviceId string) error {
	return or.db.Table(model.TOTPDevice{}.TableName()).
		Where("device_id = ?", deviceId).
		Update("confirmed", true).Error
}

func (or *OtpRepo) TouchTOTPDevice(deviceId string, at time.Time) error {
	return or.db.Table(model.TOTPDevice{}.TableName()).
		Where("device_id = ?", deviceId).
		Update("last_used_at", at).Error
}

func (or *OtpRepo) DeleteUnconfirmedTOTPDevices(userId string) error {
	return or.db.Table(model.TOTPDevice{}.TableName()).
		Where("user_id = ? AND confirmed = ?", userId, false).
		Delete(&model.TOTPDevice{}).Error
}

func (or *OtpRepo) DeleteAllTOTPDevices(userId string) error {
	return or.db.Table(model.TOTPDevice{}.TableName()).
		Where("user_id = ?", userId).
		Delete(&model.TOTPDevice{}).Error
}

func (or *OtpRepo) CreateStaticDevice(d *model.StaticDevice) error {
	return or.db.Table(d.TableName()).Create(d).Error
}

func (or *OtpRepo) GetConfirmedStaticDevice(userId string) (*model.StaticDevice, error) {
	var device model.StaticDevice
	if err := or.db.Table(device.TableName()).
		Where("user_id = ? AND confirmed = ?", userId, true).First(&device).Error; err != nil {
		return nil, err
	}
	return &device, nil
}

func (or *OtpRepo) DeleteAllStaticDevices(userId string) error {
	// tokens first, then their devices
	subQuery := or.db.Table(model.StaticDevice{}.TableName()).
		Select("device_id").Where("user_id = ?", userId)
	if err := or.db.Table(model.StaticToken{}.TableName()).
		Where("device_id IN (?)", subQuery).
		Delete(&model.StaticToken{}).Error; err != nil {
		return err
	}
	return or.db.Table(model.StaticDevice{}.TableName()).
		Where("user_id = ?", userId).
		Delete(&model.StaticDevice{}).Error
}

func (or *OtpRepo) CreateStaticToken(t *model.StaticToken) error {
	return or.db.Table(t.TableName()).Create(t).Error
}

func (or *OtpRepo) FindStaticToken(deviceId, token string) (*model.StaticToken, error) {
	var st model.StaticToken
	if err := or.db.Table(st.TableName()).
		Where("device_id = ? AND token = ?", deviceId, token).First(&st).Error; err != nil {
		return nil, err
	}
	return &st, nil
}

func (or *OtpRepo) DeleteStaticToken(id uint64) error {
	return or.db.Table(model.StaticToken{}.TableName()).
		Where("id = ?", id).
		Delete(&model.StaticToken{}).Error
}

func (or *OtpRepo) CountStaticTokens(deviceId string) (int64, error) {
	return Count(or.db.Table(model.StaticToken{}.TableName()).
		Where("device_id = ?", deviceId))
}

func (or *OtpRepo) ListStaticTokens(deviceId string) ([]model.StaticToken, error) {
	var tokens []model.StaticToken
	if err := or.db.Table(model.StaticToken{}.TableName()).
		Where("device_id = ?", deviceId).
		Find(&tokens).Error; err != nil {
		return nil, err
	}
	return tokens, nil
}

func (or *OtpRepo) HasConfirmedDevice(userId string) (bool, error) {
	totpCount, err := Count(or.db.Table(model.TOTPDevice{}.TableName()).
		Where("user_id = ? AND confirmed = ?", userId, true))
	if err != nil {
		return false, err
	}
	if totpCount > 0 {
		return true, nil
	}
	staticCount, err := Count(or.db.Table(model.StaticDevice{}.TableName()).
		Where("user_id = ? AND confirmed = ?", userId, true))
	if err != nil {
		return false, err
	}
	return staticCount > 0, nil
}
