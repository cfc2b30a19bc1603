package api

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/khsgarden/members/internal/models"
)

func (handler *Handler) AuthRequired(c *fiber.Ctx) error {
	member, err := handler.authenticateRequest(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	c.Locals(contextUserKey, member)
	return c.Next()
}

// RequireCapability runs after AuthRequired and rejects requests whose
// account does not hold the capability.
func (handler *Handler) RequireCapability(capability Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		member, ok := currentMember(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
		}
		if !hasCapability(member, capability) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "permission denied"})
		}
		return c.Next()
	}
}

func (handler *Handler) authenticateRequest(c *fiber.Ctx) (*models.Member, error) {
	tokenString := c.Cookies(authCookieName)
	if tokenString == "" {
		return nil, errors.New("missing auth cookie")
	}

	claims := &authClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return handler.secretKey, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}

	member, err := handler.memberService.GetMember(claims.MemberID)
	if err != nil {
		return nil, err
	}
	if !member.IsActive {
		return nil, errors.New("account disabled")
	}
	return &member, nil
}

func currentMember(c *fiber.Ctx) (*models.Member, bool) {
	member, ok := c.Locals(contextUserKey).(*models.Member)
	return member, ok
}
