package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/fitlab-service/internal/service"
)

// TrainersHandler exposes the public trainer directory.
type TrainersHandler struct {
	approvals *service.ApprovalService
}

// NewTrainersHandler constructs handler.
func NewTrainersHandler(approvals *service.ApprovalService) *TrainersHandler {
	return &TrainersHandler{approvals: approvals}
}

// List handles GET /api/trainers.
func (h *TrainersHandler) List(c *fiber.Ctx) error {
	trainers, err := h.approvals.ListApprovedTrainers(c.UserContext())
	if err != nil {
		return err
	}
	message := "Approved trainers retrieved successfully"
	if len(trainers) == 0 {
		message = "No approved trainers found"
	}
	return ok(c, userResponses(trainers), message)
}

// Get handles GET /api/trainers/:id.
func (h *TrainersHandler) Get(c *fiber.Ctx) error {
	trainer, err := h.approvals.GetApprovedTrainer(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return ok(c, userResponse(trainer), "Trainer retrieved successfully")
}
