package service

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/spec-kit/fitlab-service/internal/domain"
	"github.com/spec-kit/fitlab-service/internal/events"
	"github.com/spec-kit/fitlab-service/internal/repository"
	apperrors "github.com/spec-kit/fitlab-service/pkg/util/errorutil"
)

// CatalogService manages the tests a lab partner owns and the subset it offers publicly.
type CatalogService struct {
	tests      repository.LabTestRepository
	users      repository.UserRepository
	tx         repository.TxManager
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// CatalogDependencies bundles repositories for the catalog service.
type CatalogDependencies struct {
	LabTestRepo repository.LabTestRepository
	UserRepo    repository.UserRepository
	TxManager   repository.TxManager
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// NewCatalogService constructs the service.
func NewCatalogService(deps CatalogDependencies) *CatalogService {
	return &CatalogService{
		tests:      deps.LabTestRepo,
		users:      deps.UserRepo,
		tx:         deps.TxManager,
		dispatcher: deps.Dispatcher,
		logger:     nopLogger(deps.Logger),
	}
}

// LabTestInput describes a new test.
type LabTestInput struct {
	TestName                string
	Description             string
	Price                   *decimal.Decimal
	Duration                string
	Category                string
	PreparationInstructions string
}

// LabTestPatch carries the fields a partner may change. Nil fields are left untouched.
type LabTestPatch struct {
	TestName                *string
	Description             *string
	Price                   *decimal.Decimal
	Duration                *string
	Category                *string
	PreparationInstructions *string
	IsActive                *bool
}

// AddTest creates a test owned by ownerID.
func (s *CatalogService) AddTest(ctx context.Context, ownerID string, input LabTestInput) (*domain.LabTest, error) {
	details := map[string]any{}
	if strings.TrimSpace(input.TestName) == "" {
		details["testName"] = "required"
	}
	if strings.TrimSpace(input.Description) == "" {
		details["description"] = "required"
	}
	if strings.TrimSpace(input.Duration) == "" {
		details["duration"] = "required"
	}
	if input.Price == nil {
		details["price"] = "required"
	} else if input.Price.IsNegative() {
		details["price"] = "must not be negative"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("test name, description, price and duration are required", details)
	}

	owner, err := s.loadOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if owner.Role != domain.RoleLabPartner {
		return nil, apperrors.NewForbidden("only lab partners can add tests")
	}

	test := &domain.LabTest{
		LabPartnerID:            owner.ID,
		TestName:                strings.TrimSpace(input.TestName),
		Description:             strings.TrimSpace(input.Description),
		Price:                   input.Price.Round(2),
		Duration:                strings.TrimSpace(input.Duration),
		Category:                orDefault(input.Category, domain.DefaultTestCategory),
		PreparationInstructions: orDefault(input.PreparationInstructions, domain.DefaultPreparationInstructions),
		IsActive:                true,
	}
	if err := s.tests.Create(ctx, test); err != nil {
		return nil, err
	}
	s.logger.Info("lab test added", zap.String("test_id", test.ID), zap.String("lab_partner_id", owner.ID))
	return test, nil
}

// ListOwnTests returns every test the owner created, newest first, inactive included.
func (s *CatalogService) ListOwnTests(ctx context.Context, ownerID string) ([]domain.LabTest, error) {
	tests, err := s.tests.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if tests == nil {
		tests = []domain.LabTest{}
	}
	return tests, nil
}

// UpdateTest applies patch to a test owned by ownerID.
func (s *CatalogService) UpdateTest(ctx context.Context, ownerID, testID string, patch LabTestPatch) (*domain.LabTest, error) {
	test, err := s.getOwned(ctx, ownerID, testID)
	if err != nil {
		return nil, err
	}

	if patch.Price != nil && patch.Price.IsNegative() {
		return nil, apperrors.NewValidationError("price must not be negative", map[string]any{"price": patch.Price.String()})
	}
	if patch.TestName != nil {
		test.TestName = strings.TrimSpace(*patch.TestName)
	}
	if patch.Description != nil {
		test.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Price != nil {
		test.Price = patch.Price.Round(2)
	}
	if patch.Duration != nil {
		test.Duration = strings.TrimSpace(*patch.Duration)
	}
	if patch.Category != nil {
		test.Category = strings.TrimSpace(*patch.Category)
	}
	if patch.PreparationInstructions != nil {
		test.PreparationInstructions = strings.TrimSpace(*patch.PreparationInstructions)
	}
	if patch.IsActive != nil {
		test.IsActive = *patch.IsActive
	}

	if err := s.tests.Update(ctx, test); err != nil {
		if isNoRows(err) {
			return nil, apperrors.NewNotFound("test", nil)
		}
		return nil, err
	}
	return test, nil
}

// DeleteTest removes a test owned by ownerID. References in offered lists are left in place and
// filtered out on read.
func (s *CatalogService) DeleteTest(ctx context.Context, ownerID, testID string) error {
	if !validID(testID) {
		return apperrors.NewNotFound("test", nil)
	}
	if err := s.tests.Delete(ctx, ownerID, testID); err != nil {
		if isNoRows(err) {
			return apperrors.NewNotFound("test", nil)
		}
		return err
	}
	s.logger.Info("lab test deleted", zap.String("test_id", testID), zap.String("lab_partner_id", ownerID))
	return nil
}

// ListPublicTestsForPartner returns the partner's offered tests that are still active, in offered order.
func (s *CatalogService) ListPublicTestsForPartner(ctx context.Context, partnerID string) ([]domain.LabTest, error) {
	if !validID(partnerID) {
		return nil, apperrors.NewNotFound("lab partner", nil)
	}
	partner, err := s.users.GetByID(ctx, partnerID)
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.NewNotFound("lab partner", nil)
		}
		return nil, err
	}
	if partner.Role != domain.RoleLabPartner {
		return nil, apperrors.NewNotFound("lab partner", nil)
	}
	return s.resolveOffered(ctx, partner.OfferedTests, true)
}

// GetOfferedTests resolves the owner's offered list, dropping deleted and inactive tests.
func (s *CatalogService) GetOfferedTests(ctx context.Context, ownerID string) ([]domain.LabTest, error) {
	owner, err := s.loadOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return s.resolveOffered(ctx, owner.OfferedTests, true)
}

// SetOfferedTests replaces the owner's offered list. Every id must name a distinct test the owner
// owns; otherwise nothing changes.
func (s *CatalogService) SetOfferedTests(ctx context.Context, ownerID string, testIDs []string) ([]domain.LabTest, error) {
	if testIDs == nil {
		return nil, apperrors.NewValidationError("testIds must be an array", nil)
	}
	canonical := make([]string, 0, len(testIDs))
	for _, id := range testIDs {
		c, ok := canonicalID(id)
		if !ok {
			return nil, apperrors.NewValidationError("some tests do not belong to you", map[string]any{"testId": id})
		}
		canonical = append(canonical, c)
	}
	testIDs = canonical

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		owned, err := s.tests.CountOwned(ctx, ownerID, testIDs)
		if err != nil {
			return err
		}
		if owned != len(testIDs) {
			return apperrors.NewValidationError("some tests do not belong to you", nil)
		}
		if err := s.users.SetOfferedTests(ctx, ownerID, testIDs); err != nil {
			if isNoRows(err) {
				return apperrors.NewNotFound("user", nil)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	publishEvent(ctx, s.dispatcher, s.logger, events.Event{
		Type:      events.EventOfferedTestsReplaced,
		SubjectID: ownerID,
		Actor:     userActor(domain.RoleLabPartner, ownerID),
		Payload:   events.OfferedTestsPayload{TestIDs: testIDs},
	})
	return s.resolveOffered(ctx, testIDs, false)
}

// resolveOffered loads ids preserving their order. Missing ids are dropped.
func (s *CatalogService) resolveOffered(ctx context.Context, ids []string, activeOnly bool) ([]domain.LabTest, error) {
	result := []domain.LabTest{}
	if len(ids) == 0 {
		return result, nil
	}
	tests, err := s.tests.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]domain.LabTest, len(tests))
	for _, t := range tests {
		byID[t.ID] = t
	}
	for _, id := range ids {
		t, ok := byID[id]
		if !ok || (activeOnly && !t.IsActive) {
			continue
		}
		result = append(result, t)
	}
	return result, nil
}

func (s *CatalogService) getOwned(ctx context.Context, ownerID, testID string) (*domain.LabTest, error) {
	if !validID(testID) {
		return nil, apperrors.NewNotFound("test", nil)
	}
	test, err := s.tests.GetOwned(ctx, ownerID, testID)
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.NewNotFound("test", nil)
		}
		return nil, err
	}
	return test, nil
}

func (s *CatalogService) loadOwner(ctx context.Context, ownerID string) (*domain.User, error) {
	if !validID(ownerID) {
		return nil, apperrors.NewNotFound("user", nil)
	}
	owner, err := s.users.GetByID(ctx, ownerID)
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, err
	}
	return owner, nil
}

func orDefault(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}
