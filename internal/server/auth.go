package server

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	apperrors "github.com/kidusaman/StudyGroup-Backend/internal/errors"
)

const contextKeyUserID = "userID"

// requireAuth validates the request's JWT and stores the authenticated user
// id in the echo context. The token comes from the Authorization header as a
// bearer token, or from the "token" query parameter for WebSocket upgrades.
func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := extractToken(c)
		if token == "" {
			return apperrors.UnauthenticatedError("missing authentication token")
		}

		userID, err := s.parseToken(token)
		if err != nil {
			return apperrors.UnauthenticatedError("invalid authentication token")
		}

		c.Set(contextKeyUserID, userID)
		return next(c)
	}
}

func extractToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return after
	}
	return c.QueryParam("token")
}

// parseToken verifies an HS256 token and returns its userId claim.
func (s *Server) parseToken(tokenStr string) (int64, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil {
		return 0, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, fmt.Errorf("unexpected claims type")
	}

	// JSON numbers decode as float64.
	raw, ok := claims["userId"].(float64)
	if !ok {
		return 0, fmt.Errorf("missing userId claim")
	}
	return int64(raw), nil
}

// currentUserID reads the authenticated user id set by requireAuth.
func currentUserID(c echo.Context) (int64, error) {
	userID, ok := c.Get(contextKeyUserID).(int64)
	if !ok {
		return 0, apperrors.InternalError("invalid user ID in context", nil)
	}
	return userID, nil
}
