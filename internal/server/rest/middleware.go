package rest

import (
	"strings"

	"github.com/dmitrijs2005/gophdiary/internal/common"
	"github.com/dmitrijs2005/gophdiary/internal/server/auth"
	"github.com/gin-gonic/gin"
)

// accessTokenMiddleware resolves the bearer token to a user id and stores it
// in the request context for auth.ContextSession.
func (s *RESTServer) accessTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(common.AuthorizationHeaderName)
		if len(header) <= len(common.BearerPrefix) || !strings.EqualFold(header[:len(common.BearerPrefix)], common.BearerPrefix) {
			s.respondError(c, common.ErrUnauthenticated)
			return
		}

		userID, err := auth.GetUserIDFromToken(strings.TrimSpace(header[len(common.BearerPrefix):]), s.jwtSecret)
		if err != nil {
			s.respondError(c, err)
			return
		}

		c.Request = c.Request.WithContext(auth.WithUserID(c.Request.Context(), userID))
		c.Next()
	}
}
