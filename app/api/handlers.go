package api

import (
	"context"
	"errors"
	"strings"

	"ludo/app/service/conversation"
	"ludo/app/service/dialog"
	"ludo/app/service/notepad"

	"github.com/gofiber/fiber/v2"
)

const source = "api"

type Conversation interface {
	ProcessQuery(ctx context.Context, source, text string) (conversation.Reply, error)
	Reset() error
	Stats() dialog.Stats
	Summary() string
	Transcript() []string
}

type Notes interface {
	List() []notepad.Entry
	Delete(id string) (bool, error)
	Clear() error
}

type Handlers struct {
	conversation Conversation
	notes        Notes
}

func NewHandlers(conversation Conversation, notes Notes) *Handlers {
	return &Handlers{
		conversation: conversation,
		notes:        notes,
	}
}

func (h *Handlers) RegisterRoutes(router fiber.Router) {
	router.Post("/ask", h.Ask)

	memory := router.Group("/memory")
	memory.Get("/", h.GetMemory)
	memory.Delete("/", h.ResetMemory)

	notes := router.Group("/notes")
	notes.Get("/", h.ListNotes)
	notes.Delete("/", h.ClearNotes)
	notes.Delete("/:id", h.DeleteNote)
}

type AskRequest struct {
	Text string `json:"text"`
}

type MemoryResponse struct {
	Transcript []string     `json:"transcript"`
	Summary    string       `json:"summary"`
	Stats      dialog.Stats `json:"stats"`
}

func (h *Handlers) Ask(c *fiber.Ctx) error {
	var req AskRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if strings.TrimSpace(req.Text) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "text is required")
	}

	reply, err := h.conversation.ProcessQuery(c.UserContext(), source, req.Text)
	if errors.Is(err, conversation.ErrEmptyQuery) {
		return fiber.NewError(fiber.StatusBadRequest, "text is required")
	}
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"reply": reply,
		"note":  reply.Command == conversation.CommandNote,
	})
}

func (h *Handlers) GetMemory(c *fiber.Ctx) error {
	return c.JSON(MemoryResponse{
		Transcript: h.conversation.Transcript(),
		Summary:    h.conversation.Summary(),
		Stats:      h.conversation.Stats(),
	})
}

func (h *Handlers) ResetMemory(c *fiber.Ctx) error {
	if err := h.conversation.Reset(); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handlers) ListNotes(c *fiber.Ctx) error {
	return c.JSON(h.notes.List())
}

func (h *Handlers) ClearNotes(c *fiber.Ctx) error {
	if err := h.notes.Clear(); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handlers) DeleteNote(c *fiber.Ctx) error {
	found, err := h.notes.Delete(c.Params("id"))
	if err != nil {
		return err
	}

	if !found {
		return fiber.NewError(fiber.StatusNotFound, "note not found")
	}

	return c.SendStatus(fiber.StatusNoContent)
}
