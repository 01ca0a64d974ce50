package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/liftlog/internal/domain"
	"github.com/mansoorceksport/liftlog/internal/service"
)

type SessionHandler struct {
	sessionService *service.SessionService
}

func NewSessionHandler(sessionService *service.SessionService) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
	}
}

// statusFor maps domain errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrSetNotFound),
		errors.Is(err, domain.ErrExerciseNotActive),
		errors.Is(err, domain.ErrNoSession):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrSetCompleted),
		errors.Is(err, domain.ErrSetNotCompleted),
		errors.Is(err, domain.ErrSetNotEditing):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// GetSession GET /v1/session
func (h *SessionHandler) GetSession(c *fiber.Ctx) error {
	session := h.sessionService.Session()
	if session == nil {
		return c.JSON(fiber.Map{"active": false})
	}
	return c.JSON(fiber.Map{"active": true, "session": session})
}

// ActivateExercise POST /v1/session/exercises
func (h *SessionHandler) ActivateExercise(c *fiber.Ctx) error {
	var req domain.Exercise
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}
	if req.ID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "exercise id is required"})
	}

	ex := h.sessionService.ActivateExercise(c.Context(), req)
	return c.Status(fiber.StatusCreated).JSON(ex)
}

// AddSet POST /v1/session/exercises/:exerciseId/sets
func (h *SessionHandler) AddSet(c *fiber.Ctx) error {
	set, err := h.sessionService.AddSet(c.Context(), c.Params("exerciseId"))
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(set)
}

// UpdateSet PATCH /v1/session/exercises/:exerciseId/sets/:setId
func (h *SessionHandler) UpdateSet(c *fiber.Ctx) error {
	var patch service.SetFieldPatch
	if err := c.BodyParser(&patch); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}

	set, err := h.sessionService.UpdateSetFields(c.Context(), c.Params("exerciseId"), c.Params("setId"), patch)
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(set)
}

// CompleteSet POST /v1/session/exercises/:exerciseId/sets/:setId/complete
func (h *SessionHandler) CompleteSet(c *fiber.Ctx) error {
	set, err := h.sessionService.CompleteSet(c.Context(), c.Params("exerciseId"), c.Params("setId"))
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(set)
}

// BeginEdit POST /v1/session/exercises/:exerciseId/sets/:setId/edit
func (h *SessionHandler) BeginEdit(c *fiber.Ctx) error {
	set, err := h.sessionService.BeginEdit(c.Context(), c.Params("exerciseId"), c.Params("setId"))
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(set)
}

// DeleteSet DELETE /v1/session/exercises/:exerciseId/sets/:setId
func (h *SessionHandler) DeleteSet(c *fiber.Ctx) error {
	if err := h.sessionService.DeleteSet(c.Context(), c.Params("exerciseId"), c.Params("setId")); err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "deleted"})
}

// SetNote PUT /v1/session/exercises/:exerciseId/note
func (h *SessionHandler) SetNote(c *fiber.Ctx) error {
	var req struct {
		Note string `json:"note"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}

	if err := h.sessionService.SetNote(c.Context(), c.Params("exerciseId"), req.Note); err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "saved"})
}

// Finish POST /v1/session/finish
func (h *SessionHandler) Finish(c *fiber.Ctx) error {
	if err := h.sessionService.Finish(c.Context()); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "finished"})
}

// RestTimer GET /v1/session/rest-timer
func (h *SessionHandler) RestTimer(c *fiber.Ctx) error {
	elapsed, running := h.sessionService.RestTimer().Elapsed()
	return c.JSON(fiber.Map{
		"running":         running,
		"elapsed_seconds": int(elapsed.Seconds()),
	})
}
