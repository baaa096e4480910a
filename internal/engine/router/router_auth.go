package router

import (
	"github.com/go-keel/keel/internal/engine/model"
	"github.com/go-keel/keel/pkg/http"
	"github.com/gofiber/fiber/v2"
)

/**
 * @author: keel.authors@gmail.com
 * @time: 2025/3/16 10:12
 * @file: router_auth.go
 * @description: login, challenge verification, logout
 */

func (r *Router) authRoutes(api fiber.Router, authorized fiber.Handler) {
	auth := api.Group("/auth")

	auth.Post("/login", r.login)
	auth.Post("/otp/verify", r.verifyChallenge)
	auth.Post("/logout", authorized, r.logout)
}

func (r *Router) login(c *fiber.Ctx) error {
	req := new(model.Login)
	if err := c.BodyParser(req); err != nil {
		return http.WithRepErrMsg(c, http.RequestParameterParsingFailed.Code, http.RequestParameterParsingFailed.Msg, c.Path())
	}
	if req.Username == "" || req.Password == "" {
		return http.WithRepErrMsg(c, http.UsernameArePasswordIsRequired.Code, http.UsernameArePasswordIsRequired.Msg, c.Path())
	}

	resp, err := r.authSvc.Login(c.UserContext(), req)
	if err != nil {
		return replyDomainErr(c, err)
	}
	if resp.OtpRequired {
		// suspended: the caller must complete the OTP challenge
		return http.WithRepDetail(c, http.OtpChallengeRequired.Code, http.OtpChallengeRequired.Msg, resp)
	}
	return http.WithRepJSON(c, resp)
}

func (r *Router) verifyChallenge(c *fiber.Ctx) error {
	req := new(model.OtpChallengeReq)
	if err := c.BodyParser(req); err != nil {
		return http.WithRepErrMsg(c, http.RequestParameterParsingFailed.Code, http.RequestParameterParsingFailed.Msg, c.Path())
	}
	if req.StateToken == "" || req.Code == "" {
		return http.WithRepErrMsg(c, http.BadRequest.Code, http.BadRequest.Msg, c.Path())
	}

	resp, err := r.otpSvc.VerifyChallenge(c.UserContext(), req)
	if err != nil {
		return replyDomainErr(c, err)
	}
	return http.WithRepJSON(c, resp)
}

func (r *Router) logout(c *fiber.Ctx) error {
	if err := r.authSvc.Logout(c.UserContext(), userId(c)); err != nil {
		return replyDomainErr(c, err)
	}
	return http.WithRepNotDetail(c)
}
