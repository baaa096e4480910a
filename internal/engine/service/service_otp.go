package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-keel/keel/internal/engine/consts"
	"github.com/go-keel/keel/internal/engine/model"
	"github.com/go-keel/keel/internal/engine/repo"
	"github.com/go-keel/keel/pkg/cache"
	"github.com/go-keel/keel/pkg/id"
	"github.com/go-keel/keel/pkg/log"
	"github.com/go-keel/keel/pkg/secure"
	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

/**
 * @author: keel.authors@gmail.com
 * @time: 2025/3/14 09:17
 * @file: service_otp.go
 * @description: TOTP enrollment, backup codes and the login challenge
 */

// tokenIssuer mints the JWT pair after a passed challenge. Satisfied by
// AuthService.
type tokenIssuer interface {
	IssueTokens(ctx context.Context, user *model.User) (*model.LoginResp, error)
}

type OtpService struct {
	repos  *repo.Repositories
	tx     repo.ITxManager
	store  cache.ICache
	issuer tokenIssuer

	// totpIssuer names this installation in authenticator apps.
	totpIssuer string
	now        func() time.Time
}

func NewOtpService(repos *repo.Repositories, tx repo.ITxManager, store cache.ICache, issuer tokenIssuer, totpIssuer string) *OtpService {
	if totpIssuer == "" {
		totpIssuer = "keel"
	}
	return &OtpService{
		repos:      repos,
		tx:         tx,
		store:      store,
		issuer:     issuer,
		totpIssuer: totpIssuer,
		now:        time.Now,
	}
}

// Setup begins TOTP enrollment: any stale unconfirmed device is discarded
// and a fresh secret is generated. The device stays unconfirmed, and thus
// inert, until VerifySetup proves the user scanned it.
func (s *OtpService) Setup(ctx context.Context, userId string) (*model.OtpSetupResp, error) {
	user, err := s.repos.User.GetUserByUserId(userId)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.totpIssuer,
		AccountName: user.Email,
	})
	if err != nil {
		return nil, err
	}

	device := &model.TOTPDevice{
		DeviceId: id.GetUUID(),
		UserId:   userId,
		Name:     "default",
		Secret:   key.Secret(),
	}
	err = s.tx.Transaction(ctx, func(r *repo.Repositories) error {
		if err := r.Otp.DeleteUnconfirmedTOTPDevices(userId); err != nil {
			return err
		}
		if _, err := r.Otp.GetOrCreateProfile(userId); err != nil {
			return err
		}
		return r.Otp.CreateTOTPDevice(device)
	})
	if err != nil {
		return nil, err
	}

	return &model.OtpSetupResp{
		DeviceId:        device.DeviceId,
		Secret:          key.Secret(),
		ProvisioningURI: key.URL(),
	}, nil
}

// VerifySetup confirms the pending device with a generated code, flips the
// profile to enabled and returns the one-time view of fresh backup codes.
func (s *OtpService) VerifySetup(ctx context.Context, userId, code string) (*model.OtpVerifySetupResp, error) {
	device, err := s.repos.Otp.GetUnconfirmedTOTPDevice(userId)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidState
	}
	if err != nil {
		return nil, err
	}

	if !totp.Validate(code, device.Secret) {
		return nil, ErrOtpCodeIncorrect
	}

	now := s.now()
	var codes []string
	err = s.tx.Transaction(ctx, func(r *repo.Repositories) error {
		if err := r.Otp.ConfirmTOTPDevice(device.DeviceId); err != nil {
			return err
		}
		if _, err := r.Otp.GetOrCreateProfile(userId); err != nil {
			return err
		}
		if err := r.Otp.UpdateProfile(userId, map[string]any{
			"otp_enabled":            true,
			"backup_codes_generated": true,
			"enabled_at":             now,
			"disabled_at":            nil,
		}); err != nil {
			return err
		}
		codes, err = replaceBackupCodes(r, userId)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Infow("otp enabled", "userId", userId, "deviceId", device.DeviceId)
	return &model.OtpVerifySetupResp{BackupCodes: codes}, nil
}

// RegenerateBackupCodes replaces the whole batch. The old codes stop
// working immediately.
func (s *OtpService) RegenerateBackupCodes(ctx context.Context, userId string) (*model.OtpVerifySetupResp, error) {
	enrolled, err := s.repos.Otp.HasConfirmedDevice(userId)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, ErrOtpNotEnabled
	}

	var codes []string
	err = s.tx.Transaction(ctx, func(r *repo.Repositories) error {
		if err := r.Otp.UpdateProfile(userId, map[string]any{
			"backup_codes_generated": true,
		}); err != nil {
			return err
		}
		codes, err = replaceBackupCodes(r, userId)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Infow("backup codes regenerated", "userId", userId)
	return &model.OtpVerifySetupResp{BackupCodes: codes}, nil
}

// replaceBackupCodes drops every static device and issues a fresh confirmed
// one with a full batch of codes. Caller provides the transaction.
func replaceBackupCodes(r *repo.Repositories, userId string) ([]string, error) {
	if err := r.Otp.DeleteAllStaticDevices(userId); err != nil {
		return nil, err
	}

	device := &model.StaticDevice{
		DeviceId:  id.GetUUID(),
		UserId:    userId,
		Name:      "backup",
		Confirmed: true,
	}
	if err := r.Otp.CreateStaticDevice(device); err != nil {
		return nil, err
	}

	codes := make([]string, 0, consts.BackupCodeBatchSize)
	for i := 0; i < consts.BackupCodeBatchSize; i++ {
		code, err := secure.BackupCode()
		if err != nil {
			return nil, err
		}
		if err := r.Otp.CreateStaticToken(&model.StaticToken{
			DeviceId: device.DeviceId,
			Token:    code,
		}); err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	return codes, nil
}

// Disable turns two-factor off. It is password-gated: possession of a live
// session is not enough to weaken the account.
func (s *OtpService) Disable(ctx context.Context, userId, password string) error {
	user, err := s.repos.User.GetUserByUserId(userId)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return ErrInvalidCredentials
	}

	enrolled, err := s.repos.Otp.HasConfirmedDevice(userId)
	if err != nil {
		return err
	}
	if !enrolled {
		return ErrOtpNotEnabled
	}

	now := s.now()
	err = s.tx.Transaction(ctx, func(r *repo.Repositories) error {
		if err := r.Otp.DeleteAllTOTPDevices(userId); err != nil {
			return err
		}
		if err := r.Otp.DeleteAllStaticDevices(userId); err != nil {
			return err
		}
		return r.Otp.UpdateProfile(userId, map[string]any{
			"otp_enabled":            false,
			"backup_codes_generated": false,
			"disabled_at":            now,
		})
	})
	if err != nil {
		return err
	}

	log.Infow("otp disabled", "userId", userId)
	return nil
}

// Settings returns the two-factor overview for the account page.
func (s *OtpService) Settings(ctx context.Context, userId string) (*model.OtpSettingsResp, error) {
	resp := &model.OtpSettingsResp{}

	profile, err := s.repos.Otp.GetProfile(userId)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if profile != nil {
		resp.OtpEnabled = profile.OtpEnabled
		resp.LastUsedAt = profile.LastUsedAt
	}

	devices, err := s.repos.Otp.ListConfirmedTOTPDevices(userId)
	if err != nil {
		return nil, err
	}
	resp.TotpDevices = len(devices)

	static, err := s.repos.Otp.GetConfirmedStaticDevice(userId)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if static != nil {
		count, err := s.repos.Otp.CountStaticTokens(static.DeviceId)
		if err != nil {
			return nil, err
		}
		resp.BackupCodesCount = int(count)
	}

	return resp, nil
}

// VerifyChallenge completes a suspended login. The code is tried against
// every confirmed TOTP device, then the backup codes. Five failures within
// the rolling window clear the suspended state; the user restarts from
// password login.
func (s *OtpService) VerifyChallenge(ctx context.Context, req *model.OtpChallengeReq) (*model.OtpChallengeResp, error) {
	pendingKey := consts.OtpPendingKey + req.StateToken

	raw, err := s.store.Get(ctx, pendingKey)
	if errors.Is(err, cache.ErrKeyNotFound) {
		return nil, ErrOtpSessionInvalid
	}
	if err != nil {
		return nil, err
	}
	var pending pendingLogin
	if err := sonic.Unmarshal([]byte(raw), &pending); err != nil {
		return nil, ErrOtpSessionInvalid
	}
	if pending.UserId == "" || pending.Backend == "" {
		return nil, ErrOtpSessionInvalid
	}

	// the failure counter is only consulted on a miss: a correct code
	// always completes the login, even inside a prior lockout window
	attemptsKey := consts.OtpFailedAttemptsKey + pending.UserId
	matched, usedBackup, remaining, err := s.verifyCode(ctx, pending.UserId, req.Code)
	if err != nil {
		return nil, err
	}
	if !matched {
		return nil, s.recordFailure(ctx, pendingKey, attemptsKey, pending.UserId)
	}

	if err := s.store.Del(ctx, pendingKey, attemptsKey); err != nil {
		log.Errorw("clear otp challenge state failed", "userId", pending.UserId, "error", err)
	}
	if err := s.repos.Otp.UpdateProfile(pending.UserId, map[string]any{
		"last_used_at": s.now(),
	}); err != nil {
		log.Errorw("stamp otp last_used_at failed", "userId", pending.UserId, "error", err)
	}

	user, err := s.repos.User.GetUserByUserId(pending.UserId)
	if err != nil {
		return nil, err
	}
	loginResp, err := s.issuer.IssueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	resp := &model.OtpChallengeResp{LoginResp: *loginResp}
	if usedBackup {
		resp.UsedBackupCode = true
		resp.RemainingBackupCodes = remaining
		log.Warnw("backup code consumed", "userId", pending.UserId, "remaining", remaining)
	}
	return resp, nil
}

// verifyCode reports whether code matches any confirmed device. Backup
// codes are single-use: a matching static token is deleted and the
// remaining count returned.
func (s *OtpService) verifyCode(ctx context.Context, userId, code string) (matched, usedBackup bool, remaining int, err error) {
	devices, err := s.repos.Otp.ListConfirmedTOTPDevices(userId)
	if err != nil {
		return false, false, 0, err
	}
	now := s.now()
	for i := range devices {
		if totp.Validate(code, devices[i].Secret) {
			if err := s.repos.Otp.TouchTOTPDevice(devices[i].DeviceId, now); err != nil {
				log.Errorw("touch totp device failed", "deviceId", devices[i].DeviceId, "error", err)
			}
			return true, false, 0, nil
		}
	}

	static, err := s.repos.Otp.GetConfirmedStaticDevice(userId)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, false, 0, nil
	}
	if err != nil {
		return false, false, 0, err
	}

	token, err := s.repos.Otp.FindStaticToken(static.DeviceId, strings.ToUpper(strings.TrimSpace(code)))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, false, 0, nil
	}
	if err != nil {
		return false, false, 0, err
	}

	if err := s.repos.Otp.DeleteStaticToken(token.ID); err != nil {
		return false, false, 0, err
	}
	count, err := s.repos.Otp.CountStaticTokens(static.DeviceId)
	if err != nil {
		return false, false, 0, err
	}
	return true, true, int(count), nil
}

// recordFailure bumps the rolling counter and decides between "try again"
// and lockout.
func (s *OtpService) recordFailure(ctx context.Context, pendingKey, attemptsKey, userId string) error {
	n, err := s.store.Incr(ctx, attemptsKey)
	if err != nil {
		return err
	}
	if err := s.store.Expire(ctx, attemptsKey, consts.OtpAttemptWindow); err != nil {
		log.Errorw("set otp attempt window failed", "userId", userId, "error", err)
	}

	if n >= consts.OtpMaxFailedAttempts {
		if err := s.store.Del(ctx, pendingKey); err != nil {
			log.Errorw("clear suspended login failed", "userId", userId, "error", err)
		}
		log.Warnw("otp challenge locked out", "userId", userId, "attempts", n)
		return ErrOtpLockedOut
	}
	log.Infow("otp challenge failed", "userId", userId, "attempts", n)
	return ErrOtpCodeIncorrect
}
