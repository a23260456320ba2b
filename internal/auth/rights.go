package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-import/internal/domain"
	"github.com/spec-kit/ticket-import/internal/repository"
	apperrors "github.com/spec-kit/ticket-import/pkg/util/errorutil"
)

// RequireRight ensures the caller holds every bit of want on the named right.
func RequireRight(rights repository.RightsRepository, name string, want domain.Right) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		granted, err := rights.Get(c.UserContext(), principal.User.ID, name)
		if err != nil {
			return apperrors.MapError(err)
		}
		if !granted.Has(want) {
			return apperrors.NewForbidden("insufficient rights")
		}
		return c.Next()
	}
}
