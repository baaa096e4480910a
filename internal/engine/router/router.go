// Copyright 2025 Keel Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package router

import (
	"errors"

	"github.com/bytedance/sonic"
	"github.com/go-keel/keel/internal/engine/service"
	"github.com/go-keel/keel/pkg/cache"
	"github.com/go-keel/keel/pkg/http"
	"github.com/go-keel/keel/pkg/http/jwt"
	"github.com/go-keel/keel/pkg/http/middleware"
	"github.com/go-keel/keel/pkg/log"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// teamCtxKey is the fiber.Ctx locals key holding the resolved *service.TeamContext.
const teamCtxKey = "teamCtx"

type Router struct {
	httpConf   http.Http
	store      cache.ICache
	authSvc    *service.AuthService
	otpSvc     *service.OtpService
	teamSvc    *service.TeamService
	memberSvc  *service.TeamMemberService
	invSvc     *service.InvitationService
	teamCtxSvc *service.TeamContextService
}

func NewRouter(
	httpConf http.Http,
	store cache.ICache,
	authSvc *service.AuthService,
	otpSvc *service.OtpService,
	teamSvc *service.TeamService,
	memberSvc *service.TeamMemberService,
	invSvc *service.InvitationService,
	teamCtxSvc *service.TeamContextService,
) *Router {
	return &Router{
		httpConf:   httpConf,
		store:      store,
		authSvc:    authSvc,
		otpSvc:     otpSvc,
		teamSvc:    teamSvc,
		memberSvc:  memberSvc,
		invSvc:     invSvc,
		teamCtxSvc: teamCtxSvc,
	}
}

// App builds the fiber application with all routes registered.
func (r *Router) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:     "keel",
		JSONEncoder: sonic.Marshal,
		JSONDecoder: sonic.Unmarshal,
	})

	app.Use(recover.New())
	app.Use(cors.New())
	if r.httpConf.AccessLog {
		app.Use(logger.New())
	}

	api := app.Group("/api/v1")

	authorized := middleware.AuthorizationMiddleware(r.httpConf.Auth.SecretKey, r.store)

	r.authRoutes(api, authorized)
	r.otpRoutes(api, authorized)
	r.teamRoutes(api, authorized)
	r.invitationRoutes(api, authorized)

	return app
}

// userId extracts the authenticated user from the request.
func userId(c *fiber.Ctx) string {
	claims, ok := c.Locals(middleware.ClaimsKey).(*jwt.AuthClaims)
	if !ok {
		return ""
	}
	return claims.UserId
}

func teamCtx(c *fiber.Ctx) *service.TeamContext {
	tc, _ := c.Locals(teamCtxKey).(*service.TeamContext)
	return tc
}

// teamContext resolves the caller's membership in :teamId and parks it in
// locals. admin additionally requires owner/admin.
func (r *Router) teamContext(admin bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		teamId := c.Params("teamId")
		if teamId == "" {
			return http.WithRepErrMsg(c, http.TeamIdIsEmpty.Code, http.TeamIdIsEmpty.Msg, c.Path())
		}

		var (
			tc  *service.TeamContext
			err error
		)
		if admin {
			tc, err = r.teamCtxSvc.ResolveAdmin(teamId, userId(c))
		} else {
			tc, err = r.teamCtxSvc.Resolve(teamId, userId(c))
		}
		if err != nil {
			return replyDomainErr(c, err)
		}

		c.Locals(teamCtxKey, tc)
		return c.Next()
	}
}

// replyDomainErr maps the service error taxonomy onto the response code
// catalog. Anything unmapped is an internal fault and gets logged.
func replyDomainErr(c *fiber.Ctx, err error) error {
	var rep *http.Response
	switch {
	case errors.Is(err, service.ErrNotFound):
		rep = http.NotFound
	case errors.Is(err, service.ErrForbidden):
		rep = http.Forbidden
	case errors.Is(err, service.ErrInvalidState):
		rep = http.InvalidState
	case errors.Is(err, service.ErrAlreadyMember):
		rep = http.AlreadyMember
	case errors.Is(err, service.ErrInvalidOperation):
		rep = http.InvalidOperation
	case errors.Is(err, service.ErrSlugExists):
		rep = http.SlugAlreadyExist
	case errors.Is(err, service.ErrDuplicateInvite):
		rep = http.DuplicateInvite
	case errors.Is(err, service.ErrInvalidCredentials):
		rep = http.AuthenticationFailed
	case errors.Is(err, service.ErrOtpSessionInvalid):
		rep = http.OtpSessionInvalid
	case errors.Is(err, service.ErrOtpCodeIncorrect):
		rep = http.OtpCodeIncorrect
	case errors.Is(err, service.ErrOtpLockedOut):
		rep = http.OtpLockedOut
	case errors.Is(err, service.ErrOtpNotEnabled):
		rep = http.OtpNotEnabled
	default:
		log.Errorw("unhandled service error", "path", c.Path(), "error", err)
		rep = http.InternalError
	}
	return http.WithRepErrMsg(c, rep.Code, rep.Msg, c.Path())
}
