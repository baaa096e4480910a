package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/go-keel/keel/pkg/cache"
	"github.com/go-keel/keel/pkg/http"
	"github.com/go-keel/keel/pkg/http/jwt"
	"github.com/go-keel/keel/pkg/log"
	"github.com/gofiber/fiber/v2"
	goJwt "github.com/golang-jwt/jwt/v5"
)

/**
 * @author: keel.authors@gmail.com
 * @time: 2025/3/7 19:04
 * @file: authorization.go
 * @description: bearer token authentication middleware
 */

// ClaimsKey is the fiber.Ctx locals key holding the parsed *jwt.AuthClaims.
const ClaimsKey = "claims"

// SessionKeyPrefix namespaces the per-user login session entries in the cache.
const SessionKeyPrefix = "keel:session:"

// AuthorizationMiddleware validates the Bearer token and checks that the
// user still has a live session entry in the cache.
func AuthorizationMiddleware(secretKey string, store cache.ICache) fiber.Handler {
	return func(c *fiber.Ctx) error {
		aToken := c.Get("Authorization")
		if aToken == "" {
			return http.WithRepErrMsg(c, http.TokenBeEmpty.Code, http.TokenBeEmpty.Msg, c.Path())
		}

		parts := strings.SplitN(aToken, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return http.WithRepErrMsg(c, http.TokenBeEmpty.Code, http.TokenBeEmpty.Msg, c.Path())
		}

		claims, err := jwt.ParseToken(parts[1], secretKey)
		if err != nil {
			if errors.Is(err, goJwt.ErrTokenExpired) {
				return http.WithRepErrMsg(c, http.TokenExpired.Code, http.TokenExpired.Msg, c.Path())
			}
			log.Errorf("parse token failed: %v", err)
			return http.WithRepErrMsg(c, http.InvalidToken.Code, http.InvalidToken.Msg, c.Path())
		}

		// session must still be present in the cache
		_, err = store.Get(context.Background(), SessionKeyPrefix+claims.UserId)
		if errors.Is(err, cache.ErrKeyNotFound) {
			return http.WithRepErrMsg(c, http.TokenExpired.Code, http.TokenExpired.Msg, c.Path())
		}
		if err != nil {
			log.Errorf("session lookup failed: %v", err)
			return http.WithRepErrMsg(c, http.InternalError.Code, http.InternalError.Msg, c.Path())
		}

		c.Locals(ClaimsKey, claims)
		return c.Next()
	}
}
