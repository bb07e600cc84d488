package server

import (
	"talents/internal/models"

	"github.com/gofiber/fiber/v2"
)

// PremiumAccessResponse reports whether the caller may open premium sections.
type PremiumAccessResponse struct {
	Granted              bool               `json:"granted"`
	Level                models.AccessLevel `json:"level"`
	Reason               string             `json:"reason,omitempty"`
	RequiresSubscription bool               `json:"requires_subscription"`
}

// ModerateProfileRequest is the body of POST /api/admin/profiles/:id/moderate.
type ModerateProfileRequest struct {
	Action string  `json:"action"`
	Note   *string `json:"note"`
}

// CheckPremiumAccess handles GET /api/access/premium. It always answers 200;
// the dashboard decides what to render from the verdict.
func (s *Server) CheckPremiumAccess(c *fiber.Ctx) error {
	id, err := s.resolveIdentity(c)
	if err != nil {
		return respondError(c, err)
	}

	res := s.profiles.CheckPremium(c.UserContext(), id)
	return c.JSON(PremiumAccessResponse{
		Granted:              res.Granted(),
		Level:                res.Level,
		Reason:               res.Reason.String(),
		RequiresSubscription: res.RequiresSubscription(),
	})
}

// GetProfile handles GET /api/profiles/:id
func (s *Server) GetProfile(c *fiber.Ctx) error {
	profileID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	id, err := s.resolveIdentity(c)
	if err != nil {
		return respondError(c, err)
	}

	view, err := s.profiles.GetProfile(c.UserContext(), id, profileID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(view)
}

// ModerateProfile handles POST /api/admin/profiles/:id/moderate
func (s *Server) ModerateProfile(c *fiber.Ctx) error {
	profileID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req ModerateProfileRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	action, ok := models.ParseModerationAction(req.Action)
	if !ok {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("action must be one of approve, reject, suspend"))
	}

	id, err := s.resolveIdentity(c)
	if err != nil {
		return respondError(c, err)
	}

	profile, err := s.profiles.Moderate(c.UserContext(), id, profileID, action, req.Note)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}
