package router

import (
	"github.com/go-keel/keel/internal/engine/model"
	"github.com/go-keel/keel/pkg/http"
	"github.com/gofiber/fiber/v2"
)

/**
 * @author: keel.authors@gmail.com
 * @time: 2025/3/16 11:38
 * @file: router_invitation.go
 * @description: invitation endpoints, including the public token links
 */

func (r *Router) invitationRoutes(api fiber.Router, authorized fiber.Handler) {
	inv := api.Group("/teams/invitations")

	// token-gated link endpoints; decline works without a login so an
	// invitee who never signs up can still say no
	inv.Get("/:token", r.getInvitation)
	inv.Post("/:token/decline", r.declineInvitation)
	inv.Post("/:token/accept", authorized, r.acceptInvitation)
}

func (r *Router) inviteMember(c *fiber.Ctx) error {
	req := new(model.InviteMemberReq)
	if err := c.BodyParser(req); err != nil {
		return http.WithRepErrMsg(c, http.RequestParameterParsingFailed.Code, http.RequestParameterParsingFailed.Msg, c.Path())
	}
	if req.Email == "" || req.Role == "" {
		return http.WithRepErrMsg(c, http.BadRequest.Code, http.BadRequest.Msg, c.Path())
	}

	resp, err := r.invSvc.CreateInvitation(c.UserContext(), teamCtx(c), req)
	if err != nil {
		return replyDomainErr(c, err)
	}
	return http.WithRepJSON(c, resp)
}

func (r *Router) listPendingInvitations(c *fiber.Ctx) error {
	invitations, err := r.invSvc.ListPending(teamCtx(c))
	if err != nil {
		return replyDomainErr(c, err)
	}
	return http.WithRepJSON(c, invitations)
}

func (r *Router) revokeInvitation(c *fiber.Ctx) error {
	invitationId := c.Params("invitationId")
	if invitationId == "" {
		return http.WithRepErrMsg(c, http.BadRequest.Code, http.BadRequest.Msg, c.Path())
	}

	if err := r.invSvc.RevokeInvitation(c.UserContext(), teamCtx(c), invitationId); err != nil {
		return replyDomainErr(c, err)
	}
	return http.WithRepNotDetail(c)
}

func (r *Router) getInvitation(c *fiber.Ctx) error {
	token := c.Params("token")
	if token == "" {
		return http.WithRepErrMsg(c, http.InvitationTokenIsEmpty.Code, http.InvitationTokenIsEmpty.Msg, c.Path())
	}

	resp, err := r.invSvc.GetByToken(token)
	if err != nil {
		return replyDomainErr(c, err)
	}
	return http.WithRepJSON(c, resp)
}

func (r *Router) acceptInvitation(c *fiber.Ctx) error {
	token := c.Params("token")
	if token == "" {
		return http.WithRepErrMsg(c, http.InvitationTokenIsEmpty.Code, http.InvitationTokenIsEmpty.Msg, c.Path())
	}

	resp, err := r.invSvc.AcceptInvitation(c.UserContext(), token, userId(c))
	if err != nil {
		return replyDomainErr(c, err)
	}
	return http.WithRepJSON(c, resp)
}

func (r *Router) declineInvitation(c *fiber.Ctx) error {
	token := c.Params("token")
	if token == "" {
		return http.WithRepErrMsg(c, http.InvitationTokenIsEmpty.Code, http.InvitationTokenIsEmpty.Msg, c.Path())
	}

	if err := r.invSvc.DeclineInvitation(c.UserContext(), token); err != nil {
		return replyDomainErr(c, err)
	}
	return http.WithRepNotDetail(c)
}
