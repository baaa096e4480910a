package service

import (
	"context"
	"errors"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-keel/keel/internal/engine/consts"
	"github.com/go-keel/keel/internal/engine/model"
	"github.com/go-keel/keel/internal/engine/repo"
	"github.com/go-keel/keel/pkg/cache"
	"github.com/go-keel/keel/pkg/http"
	"github.com/go-keel/keel/pkg/http/jwt"
	"github.com/go-keel/keel/pkg/http/middleware"
	"github.com/go-keel/keel/pkg/log"
	"github.com/go-keel/keel/pkg/secure"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

/**
 * @author: keel.authors@gmail.com
 * @time: 2025/3/13 14:32
 * @file: service_auth.go
 * @description: password login with OTP suspension, logout
 */

// pendingLogin is the suspended login state parked in the cache while the
// user completes the OTP challenge.
type pendingLogin struct {
	UserId  string `json:"userId"`
	Backend string `json:"backend"`
}

const pendingBackendOtp = "otp"

type AuthService struct {
	repos    *repo.Repositories
	store    cache.ICache
	authConf http.Auth
	now      func() time.Time
}

func NewAuthService(repos *repo.Repositories, store cache.ICache, authConf http.Auth) *AuthService {
	return &AuthService{
		repos:    repos,
		store:    store,
		authConf: authConf,
		now:      time.Now,
	}
}

// Login checks the password. If the user has a confirmed OTP device the
// login is suspended: no tokens are issued, the suspended state is parked
// in the cache and the caller gets a state token to complete the challenge
// with. All failure modes are ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, req *model.Login) (*model.LoginResp, error) {
	user, err := s.repos.User.GetUserByUsername(req.Username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if user.IsEnabled != model.UserStatusEnabled {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return nil, ErrInvalidCredentials
	}

	enrolled, err := s.repos.Otp.HasConfirmedDevice(user.UserId)
	if err != nil {
		return nil, err
	}
	if enrolled {
		stateToken, err := s.suspendLogin(ctx, user.UserId)
		if err != nil {
			return nil, err
		}
		log.Infow("login suspended for otp challenge", "userId", user.UserId)
		return &model.LoginResp{
			OtpRequired: true,
			StateToken:  stateToken,
		}, nil
	}

	return s.IssueTokens(ctx, user)
}

func (s *AuthService) suspendLogin(ctx context.Context, userId string) (string, error) {
	stateToken, err := secure.URLSafeToken(24)
	if err != nil {
		return "", err
	}
	state, err := sonic.Marshal(pendingLogin{UserId: userId, Backend: pendingBackendOtp})
	if err != nil {
		return "", err
	}
	if err := s.store.Set(ctx, consts.OtpPendingKey+stateToken, string(state), consts.OtpPendingTTL); err != nil {
		return "", err
	}
	return stateToken, nil
}

// IssueTokens mints the JWT pair and registers the login session. Called on
// plain logins and by the OTP service after a passed challenge.
func (s *AuthService) IssueTokens(ctx context.Context, user *model.User) (*model.LoginResp, error) {
	aToken, rToken, err := jwt.GenToken(user.UserId, []byte(s.authConf.SecretKey),
		s.authConf.AccessExpire, s.authConf.RefreshExpire)
	if err != nil {
		return nil, err
	}

	sessionTTL := s.authConf.AccessExpire * time.Minute
	if err := s.store.Set(ctx, middleware.SessionKeyPrefix+user.UserId, rToken, sessionTTL); err != nil {
		return nil, err
	}

	return &model.LoginResp{
		UserInfo: model.UserInfo{
			UserId:   user.UserId,
			Username: user.Username,
			Email:    user.Email,
		},
		AccessToken:  aToken,
		RefreshToken: rToken,
	}, nil
}

// Logout drops the session entry; outstanding JWTs die with it.
func (s *AuthService) Logout(ctx context.Context, userId string) error {
	return s.store.Del(ctx, middleware.SessionKeyPrefix+userId)
}
