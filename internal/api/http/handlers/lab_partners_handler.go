package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/fitlab-service/internal/api/dto"
	"github.com/spec-kit/fitlab-service/internal/service"
)

// LabPartnersHandler exposes the partner directory and the catalog endpoints.
type LabPartnersHandler struct {
	approvals *service.ApprovalService
	catalog   *service.CatalogService
}

// NewLabPartnersHandler constructs handler.
func NewLabPartnersHandler(approvals *service.ApprovalService, catalog *service.CatalogService) *LabPartnersHandler {
	return &LabPartnersHandler{approvals: approvals, catalog: catalog}
}

// List handles GET /api/lab-partners.
func (h *LabPartnersHandler) List(c *fiber.Ctx) error {
	partners, err := h.approvals.ListApprovedLabPartners(c.UserContext(), c.Query("search"))
	if err != nil {
		return err
	}
	return ok(c, userResponses(partners), "Lab partners fetched successfully")
}

// Get handles GET /api/lab-partners/:id.
func (h *LabPartnersHandler) Get(c *fiber.Ctx) error {
	partner, err := h.approvals.GetApprovedLabPartner(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return ok(c, userResponse(partner), "Lab partner fetched successfully")
}

// PublicTests handles GET /api/lab-partners/:id/tests.
func (h *LabPartnersHandler) PublicTests(c *fiber.Ctx) error {
	tests, err := h.catalog.ListPublicTestsForPartner(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return ok(c, labTestResponses(tests), "Lab tests fetched successfully")
}

// AddTest handles POST /api/lab-partners/tests/add.
func (h *LabPartnersHandler) AddTest(c *fiber.Ctx) error {
	user, err := userPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.LabTestRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	test, err := h.catalog.AddTest(c.UserContext(), user.ID, service.LabTestInput{
		TestName:                req.TestName,
		Description:             req.Description,
		Price:                   req.Price,
		Duration:                req.Duration,
		Category:                req.Category,
		PreparationInstructions: req.PreparationInstructions,
	})
	if err != nil {
		return err
	}
	return created(c, labTestResponse(test), "Test added successfully")
}

// MyTests handles GET /api/lab-partners/tests/my-tests.
func (h *LabPartnersHandler) MyTests(c *fiber.Ctx) error {
	user, err := userPrincipal(c)
	if err != nil {
		return err
	}
	tests, err := h.catalog.ListOwnTests(c.UserContext(), user.ID)
	if err != nil {
		return err
	}
	return ok(c, labTestResponses(tests), "Tests fetched successfully")
}

// UpdateTest handles PUT /api/lab-partners/tests/:testId.
func (h *LabPartnersHandler) UpdateTest(c *fiber.Ctx) error {
	user, err := userPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.LabTestPatchRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	test, err := h.catalog.UpdateTest(c.UserContext(), user.ID, c.Params("testId"), service.LabTestPatch{
		TestName:                req.TestName,
		Description:             req.Description,
		Price:                   req.Price,
		Duration:                req.Duration,
		Category:                req.Category,
		PreparationInstructions: req.PreparationInstructions,
		IsActive:                req.IsActive,
	})
	if err != nil {
		return err
	}
	return ok(c, labTestResponse(test), "Test updated successfully")
}

// DeleteTest handles DELETE /api/lab-partners/tests/:testId.
func (h *LabPartnersHandler) DeleteTest(c *fiber.Ctx) error {
	user, err := userPrincipal(c)
	if err != nil {
		return err
	}
	if err := h.catalog.DeleteTest(c.UserContext(), user.ID, c.Params("testId")); err != nil {
		return err
	}
	return ok(c, fiber.Map{}, "Test deleted successfully")
}

// OfferedTests handles GET /api/lab-partners/offered-tests.
func (h *LabPartnersHandler) OfferedTests(c *fiber.Ctx) error {
	user, err := userPrincipal(c)
	if err != nil {
		return err
	}
	tests, err := h.catalog.GetOfferedTests(c.UserContext(), user.ID)
	if err != nil {
		return err
	}
	return ok(c, labTestResponses(tests), "Offered tests fetched successfully")
}

// SetOfferedTests handles PUT /api/lab-partners/offered-tests.
func (h *LabPartnersHandler) SetOfferedTests(c *fiber.Ctx) error {
	user, err := userPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.OfferedTestsRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	tests, err := h.catalog.SetOfferedTests(c.UserContext(), user.ID, req.TestIDs)
	if err != nil {
		return err
	}
	return ok(c, labTestResponses(tests), "Offered tests updated successfully")
}
