package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/fitlab-service/internal/domain"
	"github.com/spec-kit/fitlab-service/internal/events"
	"github.com/spec-kit/fitlab-service/internal/repository"
	apperrors "github.com/spec-kit/fitlab-service/pkg/util/errorutil"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// ApprovalService drives the user approval workflow and the public directory of approved accounts.
type ApprovalService struct {
	users      repository.UserRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// ApprovalDependencies bundles repositories for the approval service.
type ApprovalDependencies struct {
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewApprovalService constructs the service.
func NewApprovalService(deps ApprovalDependencies) *ApprovalService {
	return &ApprovalService{
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		logger:     nopLogger(deps.Logger),
		now:        time.Now,
	}
}

// UserListQuery describes the admin user listing.
type UserListQuery struct {
	Page   int
	Limit  int
	Search string
	Role   string
}

// Pagination is the page metadata returned with user listings.
type Pagination struct {
	CurrentPage int
	TotalPages  int
	TotalUsers  int
	HasNextPage bool
	HasPrevPage bool
}

// UserPage is one page of users.
type UserPage struct {
	Users      []domain.User
	Pagination Pagination
}

// ListPendingApprovals returns trainers and lab partners awaiting a decision.
func (s *ApprovalService) ListPendingApprovals(ctx context.Context) ([]domain.User, error) {
	return s.users.ListPendingApprovals(ctx)
}

// Approve marks a pending or rejected account approved. Approving twice is an error.
func (s *ApprovalService) Approve(ctx context.Context, userID, adminEmail string) (*domain.User, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.ApprovalStatus == domain.ApprovalApproved {
		return nil, apperrors.NewInvalidState("user is already approved", map[string]any{"userId": user.ID})
	}

	now := s.now().UTC()
	user.ApprovalStatus = domain.ApprovalApproved
	user.IsApproved = true
	user.ApprovedBy = &adminEmail
	user.ApprovedAt = &now
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user approved", zap.String("user_id", user.ID), zap.String("admin", adminEmail))
	publishEvent(ctx, s.dispatcher, s.logger, events.Event{
		Type:      events.EventUserApproved,
		SubjectID: user.ID,
		Actor:     adminActor(adminEmail),
		Payload:   events.UserApprovalPayload{Email: user.Email, Role: user.Role, ApprovalStatus: user.ApprovalStatus},
	})
	return user, nil
}

// Reject marks an account rejected. Rejecting an already rejected account is a no-op success.
func (s *ApprovalService) Reject(ctx context.Context, userID, adminEmail string) (*domain.User, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.ApprovalStatus = domain.ApprovalRejected
	user.IsApproved = false
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user rejected", zap.String("user_id", user.ID), zap.String("admin", adminEmail))
	publishEvent(ctx, s.dispatcher, s.logger, events.Event{
		Type:      events.EventUserRejected,
		SubjectID: user.ID,
		Actor:     adminActor(adminEmail),
		Payload:   events.UserApprovalPayload{Email: user.Email, Role: user.Role, ApprovalStatus: user.ApprovalStatus},
	})
	return user, nil
}

// ToggleSuspension suspends or reinstates an account. Admin accounts cannot be suspended.
func (s *ApprovalService) ToggleSuspension(ctx context.Context, userID string, suspend bool, reason *string, adminEmail string) (*domain.User, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Role == domain.RoleAdmin {
		return nil, apperrors.NewForbidden("cannot suspend admin users")
	}

	if suspend {
		text := domain.DefaultSuspensionReason
		if reason != nil && strings.TrimSpace(*reason) != "" {
			text = strings.TrimSpace(*reason)
		}
		now := s.now().UTC()
		user.IsSuspended = true
		user.SuspensionReason = &text
		user.SuspendedAt = &now
	} else {
		user.IsSuspended = false
		user.SuspensionReason = nil
		user.SuspendedAt = nil
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user suspension changed",
		zap.String("user_id", user.ID),
		zap.Bool("suspended", user.IsSuspended),
		zap.String("admin", adminEmail))
	publishEvent(ctx, s.dispatcher, s.logger, events.Event{
		Type:      events.EventUserSuspensionChanged,
		SubjectID: user.ID,
		Actor:     adminActor(adminEmail),
		Payload:   events.UserSuspensionPayload{Email: user.Email, Suspended: user.IsSuspended, Reason: user.SuspensionReason},
	})
	return user, nil
}

// ListUsers returns a page of users, newest first, optionally filtered by search term and role.
func (s *ApprovalService) ListUsers(ctx context.Context, query UserListQuery) (*UserPage, error) {
	page := query.Page
	if page < 1 {
		page = 1
	}
	limit := query.Limit
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	filter := repository.UserFilter{Limit: limit, Offset: (page - 1) * limit}
	if search := strings.TrimSpace(query.Search); search != "" {
		filter.Search = &search
	}
	if roleParam := strings.TrimSpace(query.Role); roleParam != "" && roleParam != "all" {
		role := domain.Role(roleParam)
		if !role.Valid() {
			return nil, apperrors.NewValidationError("invalid userType", map[string]any{"userType": roleParam})
		}
		filter.Role = &role
	}

	users, total, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []domain.User{}
	}

	totalPages := (total + limit - 1) / limit
	return &UserPage{
		Users: users,
		Pagination: Pagination{
			CurrentPage: page,
			TotalPages:  totalPages,
			TotalUsers:  total,
			HasNextPage: page < totalPages,
			HasPrevPage: page > 1,
		},
	}, nil
}

// ListApprovedLabPartners returns approved, active lab partners matching search.
func (s *ApprovalService) ListApprovedLabPartners(ctx context.Context, search string) ([]domain.User, error) {
	var term *string
	if trimmed := strings.TrimSpace(search); trimmed != "" {
		term = &trimmed
	}
	return s.users.ListApproved(ctx, domain.RoleLabPartner, term)
}

// GetApprovedLabPartner returns one approved lab partner.
func (s *ApprovalService) GetApprovedLabPartner(ctx context.Context, id string) (*domain.User, error) {
	return s.getApproved(ctx, domain.RoleLabPartner, id, "Lab partner not found or not approved")
}

// ListApprovedTrainers returns approved, active trainers.
func (s *ApprovalService) ListApprovedTrainers(ctx context.Context) ([]domain.User, error) {
	return s.users.ListApproved(ctx, domain.RoleTrainer, nil)
}

// GetApprovedTrainer returns one approved trainer.
func (s *ApprovalService) GetApprovedTrainer(ctx context.Context, id string) (*domain.User, error) {
	return s.getApproved(ctx, domain.RoleTrainer, id, "Trainer not found or not approved")
}

func (s *ApprovalService) getApproved(ctx context.Context, role domain.Role, id, notFound string) (*domain.User, error) {
	if !validID(id) {
		return nil, apperrors.NewNotFoundMessage(notFound, nil)
	}
	user, err := s.users.GetApproved(ctx, role, id)
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.NewNotFoundMessage(notFound, nil)
		}
		return nil, err
	}
	return user, nil
}

func (s *ApprovalService) loadUser(ctx context.Context, userID string) (*domain.User, error) {
	if !validID(userID) {
		return nil, apperrors.NewNotFound("user", map[string]any{"userId": userID})
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.NewNotFound("user", map[string]any{"userId": userID})
		}
		return nil, err
	}
	return user, nil
}
