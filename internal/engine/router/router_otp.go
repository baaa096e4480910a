package router

import (
	"github.com/go-keel/keel/internal/engine/model"
	"github.com/go-keel/keel/pkg/http"
	"github.com/gofiber/fiber/v2"
)

/**
 * @author: keel.authors@gmail.com
 * @time: 2025/3/16 10:40
 * @file: router_otp.go
 * @description: two-factor enrollment and settings
 */

func (r *Router) otpRoutes(api fiber.Router, authorized fiber.Handler) {
	otp := api.Group("/otp", authorized)

	otp.Post("/setup", r.otpSetup)
	otp.Post("/setup/verify", r.otpVerifySetup)
	otp.Post("/backup-codes/regenerate", r.otpRegenerateBackupCodes)
	otp.Get("/settings", r.otpSettings)
	otp.Post("/disable", r.otpDisable)
}

func (r *Router) otpSetup(c *fiber.Ctx) error {
	resp, err := r.otpSvc.Setup(c.UserContext(), userId(c))
	if err != nil {
		return replyDomainErr(c, err)
	}
	return http.WithRepJSON(c, resp)
}

func (r *Router) otpVerifySetup(c *fiber.Ctx) error {
	req := new(model.OtpVerifySetupReq)
	if err := c.BodyParser(req); err != nil {
		return http.WithRepErrMsg(c, http.RequestParameterParsingFailed.Code, http.RequestParameterParsingFailed.Msg, c.Path())
	}
	if req.Code == "" {
		return http.WithRepErrMsg(c, http.BadRequest.Code, http.BadRequest.Msg, c.Path())
	}

	resp, err := r.otpSvc.VerifySetup(c.UserContext(), userId(c), req.Code)
	if err != nil {
		return replyDomainErr(c, err)
	}
	return http.WithRepJSON(c, resp)
}

func (r *Router) otpRegenerateBackupCodes(c *fiber.Ctx) error {
	resp, err := r.otpSvc.RegenerateBackupCodes(c.UserContext(), userId(c))
	if err != nil {
		return replyDomainErr(c, err)
	}
	return http.WithRepJSON(c, resp)
}

func (r *Router) otpSettings(c *fiber.Ctx) error {
	resp, err := r.otpSvc.Settings(c.UserContext(), userId(c))
	if err != nil {
		return replyDomainErr(c, err)
	}
	return http.WithRepJSON(c, resp)
}

func (r *Router) otpDisable(c *fiber.Ctx) error {
	req := new(model.OtpDisableReq)
	if err := c.BodyParser(req); err != nil {
		return http.WithRepErrMsg(c, http.RequestParameterParsingFailed.Code, http.RequestParameterParsingFailed.Msg, c.Path())
	}
	if req.Password == "" {
		return http.WithRepErrMsg(c, http.BadRequest.Code, http.BadRequest.Msg, c.Path())
	}

	if err := r.otpSvc.Disable(c.UserContext(), userId(c), req.Password); err != nil {
		return replyDomainErr(c, err)
	}
	return http.WithRepNotDetail(c)
}
