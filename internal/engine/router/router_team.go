package router

import (
	"github.com/go-keel/keel/internal/engine/model"
	"github.com/go-keel/keel/pkg/http"
	"github.com/gofiber/fiber/v2"
)

/**
 * @author: keel.authors@gmail.com
 * @time: 2025/3/16 11:05
 * @file: router_team.go
 * @description: team CRUD and member management
 */

func (r *Router) teamRoutes(api fiber.Router, authorized fiber.Handler) {
	team := api.Group("/team", authorized)

	team.Post("/create", r.createTeam)

	member := r.teamContext(false)
	admin := r.teamContext(true)

	team.Get("/:teamId", member, r.getTeam)
	team.Put("/:teamId", admin, r.updateTeam)

	team.Get("/:teamId/members", member, r.listMembers)
	team.Post("/:teamId/members/invite", admin, r.inviteMember)
	team.Put("/:teamId/members/:membershipId/role", admin, r.updateMemberRole)
	team.Delete("/:teamId/members/:membershipId", admin, r.removeMember)

	team.Get("/:teamId/invitations", admin, r.listPendingInvitations)
	team.Post("/:teamId/invitations/:invitationId/revoke", admin, r.revokeInvitation)
}

func (r *Router) createTeam(c *fiber.Ctx) error {
	req := new(model.CreateTeamReq)
	if err := c.BodyParser(req); err != nil {
		return http.WithRepErrMsg(c, http.RequestParameterParsingFailed.Code, http.RequestParameterParsingFailed.Msg, c.Path())
	}
	if req.Name == "" || req.Slug == "" {
		return http.WithRepErrMsg(c, http.BadRequest.Code, http.BadRequest.Msg, c.Path())
	}

	resp, err := r.teamSvc.CreateTeam(c.UserContext(), userId(c), req)
	if err != nil {
		return replyDomainErr(c, err)
	}
	return http.WithRepJSON(c, resp)
}

func (r *Router) getTeam(c *fiber.Ctx) error {
	return http.WithRepJSON(c, r.teamSvc.GetTeam(teamCtx(c)))
}

func (r *Router) updateTeam(c *fiber.Ctx) error {
	req := new(model.UpdateTeamReq)
	if err := c.BodyParser(req); err != nil {
		return http.WithRepErrMsg(c, http.RequestParameterParsingFailed.Code, http.RequestParameterParsingFailed.Msg, c.Path())
	}

	resp, err := r.teamSvc.UpdateTeam(c.UserContext(), teamCtx(c), req)
	if err != nil {
		return replyDomainErr(c, err)
	}
	return http.WithRepJSON(c, resp)
}

func (r *Router) listMembers(c *fiber.Ctx) error {
	members, err := r.memberSvc.ListMembers(teamCtx(c))
	if err != nil {
		return replyDomainErr(c, err)
	}
	return http.WithRepJSON(c, members)
}

func (r *Router) updateMemberRole(c *fiber.Ctx) error {
	membershipId := c.Params("membershipId")
	if membershipId == "" {
		return http.WithRepErrMsg(c, http.MembershipIdIsEmpty.Code, http.MembershipIdIsEmpty.Msg, c.Path())
	}

	req := new(model.UpdateMemberRoleReq)
	if err := c.BodyParser(req); err != nil {
		return http.WithRepErrMsg(c, http.RequestParameterParsingFailed.Code, http.RequestParameterParsingFailed.Msg, c.Path())
	}

	resp, err := r.memberSvc.UpdateMemberRole(c.UserContext(), teamCtx(c), membershipId, req.Role)
	if err != nil {
		return replyDomainErr(c, err)
	}
	return http.WithRepJSON(c, resp)
}

func (r *Router) removeMember(c *fiber.Ctx) error {
	membershipId := c.Params("membershipId")
	if membershipId == "" {
		return http.WithRepErrMsg(c, http.MembershipIdIsEmpty.Code, http.MembershipIdIsEmpty.Msg, c.Path())
	}

	if err := r.memberSvc.RemoveMember(c.UserContext(), teamCtx(c), membershipId); err != nil {
		return replyDomainErr(c, err)
	}
	return http.WithRepNotDetail(c)
}
