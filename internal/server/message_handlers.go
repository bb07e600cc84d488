package server

import (
	"github.com/gofiber/fiber/v2"
)

// SendMessageRequest is the body of POST /api/messages.
type SendMessageRequest struct {
	RecipientID uint   `json:"recipient_id"`
	Content     string `json:"content"`
}

// ReplyRequest is the body of POST /api/conversations/:id/messages.
type ReplyRequest struct {
	Content string `json:"content"`
}

// SendMessage handles POST /api/messages
func (s *Server) SendMessage(c *fiber.Ctx) error {
	var req SendMessageRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	id, err := s.resolveIdentity(c)
	if err != nil {
		return respondError(c, err)
	}

	msg, err := s.messaging.SendToUser(c.UserContext(), id, req.RecipientID, req.Content)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

// GetConversations handles GET /api/conversations
func (s *Server) GetConversations(c *fiber.Ctx) error {
	id, err := s.resolveIdentity(c)
	if err != nil {
		return respondError(c, err)
	}
	page := parsePagination(c, defaultPaginationLimit)

	conversations, err := s.messaging.ListConversations(c.UserContext(), id, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(conversations)
}

// GetMessages handles GET /api/conversations/:id/messages
func (s *Server) GetMessages(c *fiber.Ctx) error {
	conversationID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	id, err := s.resolveIdentity(c)
	if err != nil {
		return respondError(c, err)
	}
	page := parsePagination(c, 50)

	messages, err := s.messaging.GetMessages(c.UserContext(), id, conversationID, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(messages)
}

// ReplyToConversation handles POST /api/conversations/:id/messages
func (s *Server) ReplyToConversation(c *fiber.Ctx) error {
	conversationID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req ReplyRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	id, err := s.resolveIdentity(c)
	if err != nil {
		return respondError(c, err)
	}

	msg, err := s.messaging.Reply(c.UserContext(), id, conversationID, req.Content)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

// MarkConversationRead handles POST /api/conversations/:id/read
func (s *Server) MarkConversationRead(c *fiber.Ctx) error {
	conversationID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	id, err := s.resolveIdentity(c)
	if err != nil {
		return respondError(c, err)
	}

	marked, err := s.messaging.MarkRead(c.UserContext(), id, conversationID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"marked": marked})
}
