package server

import (
	"time"

	"talents/internal/models"
	"talents/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// CreateContactRequestRequest is the body of POST /api/contact-requests.
type CreateContactRequestRequest struct {
	TalentID    uint    `json:"talent_id"`
	ProjectType string  `json:"project_type"`
	Purpose     string  `json:"purpose"`
	Message     *string `json:"message"`
}

// RespondContactRequestRequest is the body of POST /api/contact-requests/:id/respond.
type RespondContactRequestRequest struct {
	Approve       *bool   `json:"approve"`
	DeclineReason *string `json:"decline_reason"`
}

// ExpireContactRequestsRequest is the optional body of POST /api/admin/contact-requests/expire.
type ExpireContactRequestsRequest struct {
	RetentionHours int `json:"retention_hours"`
}

// CreateContactRequest handles POST /api/contact-requests
func (s *Server) CreateContactRequest(c *fiber.Ctx) error {
	var req CreateContactRequestRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	id, err := s.resolveIdentity(c)
	if err != nil {
		return respondError(c, err)
	}

	created, err := s.contactRequests.Create(c.UserContext(), id, req.TalentID, validation.ContactRequestInput{
		ProjectType: req.ProjectType,
		Purpose:     req.Purpose,
		Message:     req.Message,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// ListReceivedContactRequests handles GET /api/contact-requests/received
func (s *Server) ListReceivedContactRequests(c *fiber.Ctx) error {
	return s.listContactRequests(c, true)
}

// ListSentContactRequests handles GET /api/contact-requests/sent
func (s *Server) ListSentContactRequests(c *fiber.Ctx) error {
	return s.listContactRequests(c, false)
}

func (s *Server) listContactRequests(c *fiber.Ctx, received bool) error {
	id, err := s.resolveIdentity(c)
	if err != nil {
		return respondError(c, err)
	}

	var status *models.ContactRequestStatus
	if raw := c.Query("status"); raw != "" {
		st := models.ContactRequestStatus(raw)
		status = &st
	}
	page := parsePagination(c, defaultPaginationLimit)

	list := s.contactRequests.ListSent
	if received {
		list = s.contactRequests.ListReceived
	}
	requests, err := list(c.UserContext(), id, status, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(requests)
}

// RespondToContactRequest handles POST /api/contact-requests/:id/respond
func (s *Server) RespondToContactRequest(c *fiber.Ctx) error {
	requestID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req RespondContactRequestRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	if req.Approve == nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("approve is required"))
	}
	id, err := s.resolveIdentity(c)
	if err != nil {
		return respondError(c, err)
	}

	updated, err := s.contactRequests.Respond(c.UserContext(), id, requestID, *req.Approve, req.DeclineReason)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(updated)
}

// CancelContactRequest handles POST /api/contact-requests/:id/cancel
func (s *Server) CancelContactRequest(c *fiber.Ctx) error {
	requestID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	id, err := s.resolveIdentity(c)
	if err != nil {
		return respondError(c, err)
	}

	updated, err := s.contactRequests.Cancel(c.UserContext(), id, requestID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(updated)
}

// ExpireContactRequests handles POST /api/admin/contact-requests/expire. The
// retention defaults to CONTACT_REQUEST_RETENTION_HOURS.
func (s *Server) ExpireContactRequests(c *fiber.Ctx) error {
	retention := s.config.ContactRequestRetention()
	if len(c.Body()) > 0 {
		var req ExpireContactRequestsRequest
		if err := parseBody(c, &req); err != nil {
			return nil
		}
		if req.RetentionHours < 0 {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("retention_hours must be positive"))
		}
		if req.RetentionHours > 0 {
			retention = time.Duration(req.RetentionHours) * time.Hour
		}
	}

	result, err := s.contactRequests.ExpireStale(c.UserContext(), retention)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}
