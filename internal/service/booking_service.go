package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/fitlab-service/internal/domain"
	"github.com/spec-kit/fitlab-service/internal/events"
	"github.com/spec-kit/fitlab-service/internal/observability"
	"github.com/spec-kit/fitlab-service/internal/repository"
	apperrors "github.com/spec-kit/fitlab-service/pkg/util/errorutil"
)

// BookingService coordinates lab booking workflows.
type BookingService struct {
	bookings   repository.LabBookingRepository
	tests      repository.LabTestRepository
	users      repository.UserRepository
	history    repository.BookingHistoryRepository
	tx         repository.TxManager
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	strict     bool
}

// BookingDependencies bundles repositories for booking service.
type BookingDependencies struct {
	BookingRepo repository.LabBookingRepository
	LabTestRepo repository.LabTestRepository
	UserRepo    repository.UserRepository
	HistoryRepo repository.BookingHistoryRepository
	TxManager   repository.TxManager
	Dispatcher  events.Dispatcher
	Metrics     *observability.Metrics
	Logger      *zap.Logger
	// StrictTransitions enforces the booking state graph on partner status updates.
	StrictTransitions bool
}

// NewBookingService constructs the service.
func NewBookingService(deps BookingDependencies) *BookingService {
	return &BookingService{
		bookings:   deps.BookingRepo,
		tests:      deps.LabTestRepo,
		users:      deps.UserRepo,
		history:    deps.HistoryRepo,
		tx:         deps.TxManager,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     nopLogger(deps.Logger),
		strict:     deps.StrictTransitions,
	}
}

// CreateBookingInput describes a booking request.
type CreateBookingInput struct {
	LabPartnerID string
	TestIDs      []string
	BookingDate  string
	TimeSlot     string
	Notes        string
}

// CreateBooking books the selected tests for the enthusiast, snapshotting their current prices.
func (s *BookingService) CreateBooking(ctx context.Context, enthusiast *domain.User, input CreateBookingInput) (*domain.BookingView, error) {
	if enthusiast == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	input.LabPartnerID = strings.TrimSpace(input.LabPartnerID)
	input.TimeSlot = strings.TrimSpace(input.TimeSlot)
	if input.LabPartnerID == "" || len(input.TestIDs) == 0 || strings.TrimSpace(input.BookingDate) == "" || input.TimeSlot == "" {
		return nil, apperrors.NewValidationError("Lab partner, tests, booking date, and time slot are required", nil)
	}
	bookingDate, err := parseBookingDate(input.BookingDate)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid booking date", map[string]any{"bookingDate": input.BookingDate})
	}

	var view *domain.BookingView
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		partner, err := s.loadApprovedPartner(ctx, input.LabPartnerID)
		if err != nil {
			return err
		}

		testIDs := make([]string, 0, len(input.TestIDs))
		for _, id := range input.TestIDs {
			canonical, ok := canonicalID(id)
			if !ok {
				return testNotFound(id)
			}
			testIDs = append(testIDs, canonical)
		}
		tests, err := s.tests.LockByIDs(ctx, testIDs)
		if err != nil {
			return err
		}
		byID := make(map[string]domain.LabTest, len(tests))
		for _, t := range tests {
			byID[t.ID] = t
		}

		snapshots := make([]domain.BookingTestSnapshot, 0, len(testIDs))
		for _, id := range testIDs {
			test, ok := byID[id]
			if !ok {
				return testNotFound(id)
			}
			snapshots = append(snapshots, domain.BookingTestSnapshot{TestID: test.ID, TestName: test.TestName, Price: test.Price})
		}

		booking := &domain.LabBooking{
			FitnessEnthusiastID: enthusiast.ID,
			LabPartnerID:        partner.ID,
			SelectedTests:       snapshots,
			BookingDate:         bookingDate,
			TimeSlot:            input.TimeSlot,
			TotalAmount:         domain.SnapshotTotal(snapshots),
			Status:              domain.BookingStatusPending,
			PaymentStatus:       domain.PaymentStatusPending,
			Notes:               strings.TrimSpace(input.Notes),
			ContactPhone:        enthusiast.Phone,
			ContactEmail:        enthusiast.Email,
		}
		if err := s.bookings.Create(ctx, booking); err != nil {
			return err
		}
		if err := s.recordStatusChange(ctx, booking.ID, enthusiast.Role, enthusiast.ID, nil, booking.Status, "booking created"); err != nil {
			return err
		}

		view = &domain.BookingView{
			Booking:     *booking,
			Enthusiast:  summarize(enthusiast),
			LabPartner:  summarize(partner),
			TestDetails: byID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	booking := view.Booking
	s.metrics.RecordBookingTransition("none", string(booking.Status))
	s.logger.Info("lab booking created",
		zap.String("booking_id", booking.ID),
		zap.String("lab_partner_id", booking.LabPartnerID),
		zap.String("total_amount", booking.TotalAmount.StringFixed(2)))
	publishEvent(ctx, s.dispatcher, s.logger, events.Event{
		Type:      events.EventBookingCreated,
		SubjectID: booking.ID,
		Actor:     userActor(enthusiast.Role, enthusiast.ID),
		Payload: events.BookingCreatedPayload{
			LabPartnerID: booking.LabPartnerID,
			TestCount:    len(booking.SelectedTests),
			TotalAmount:  booking.TotalAmount.StringFixed(2),
			BookingDate:  booking.BookingDate.Format(time.DateOnly),
			TimeSlot:     booking.TimeSlot,
		},
	})
	return view, nil
}

// ListByEnthusiast returns the enthusiast's bookings, newest first, with partner and test details.
func (s *BookingService) ListByEnthusiast(ctx context.Context, enthusiastID string) ([]domain.BookingView, error) {
	views, err := s.bookings.ListByEnthusiast(ctx, enthusiastID)
	if err != nil {
		return nil, err
	}
	return s.expandTests(ctx, views)
}

// ListByPartner returns the partner's bookings, newest first, with enthusiast and test details.
func (s *BookingService) ListByPartner(ctx context.Context, partnerID string) ([]domain.BookingView, error) {
	views, err := s.bookings.ListByPartner(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	return s.expandTests(ctx, views)
}

// UpdateStatus lets the owning partner set the booking status and expected report delivery time.
func (s *BookingService) UpdateStatus(ctx context.Context, partnerID, bookingID, status string, deliveryTime *string) (*domain.LabBooking, error) {
	next := domain.BookingStatus(strings.TrimSpace(status))
	if !next.Valid() {
		return nil, apperrors.NewValidationError("Invalid status", map[string]any{"status": status})
	}

	var booking *domain.LabBooking
	var previous domain.BookingStatus
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		booking, err = s.loadBooking(ctx, bookingID, func(b *domain.LabBooking) bool { return b.LabPartnerID == partnerID })
		if err != nil {
			return err
		}
		previous = booking.Status
		if s.strict && previous != next && !domain.CanTransition(previous, next) {
			return apperrors.NewInvalidState(
				fmt.Sprintf("cannot change booking status from %s to %s", previous, next),
				map[string]any{"from": previous, "to": next},
			)
		}

		booking.Status = next
		if deliveryTime != nil {
			value := strings.TrimSpace(*deliveryTime)
			booking.ExpectedReportDeliveryTime = &value
		}
		if err := s.bookings.Update(ctx, booking); err != nil {
			return err
		}
		if previous != next {
			return s.recordStatusChange(ctx, booking.ID, domain.RoleLabPartner, partnerID, &previous, next, "")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if previous != next {
		s.metrics.RecordBookingTransition(string(previous), string(next))
		s.logger.Info("lab booking status changed",
			zap.String("booking_id", booking.ID),
			zap.String("from", string(previous)),
			zap.String("to", string(next)))
		publishEvent(ctx, s.dispatcher, s.logger, events.Event{
			Type:      events.EventBookingStatusChanged,
			SubjectID: booking.ID,
			Actor:     userActor(domain.RoleLabPartner, partnerID),
			Payload: events.BookingStatusChangedPayload{
				EnthusiastID: booking.FitnessEnthusiastID,
				OldStatus:    previous,
				NewStatus:    next,
				DeliveryTime: booking.ExpectedReportDeliveryTime,
			},
		})
	}
	return booking, nil
}

// Cancel lets the owning enthusiast cancel any booking that has not been completed.
func (s *BookingService) Cancel(ctx context.Context, enthusiastID, bookingID string) (*domain.LabBooking, error) {
	var booking *domain.LabBooking
	var previous domain.BookingStatus
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		booking, err = s.loadBooking(ctx, bookingID, func(b *domain.LabBooking) bool { return b.FitnessEnthusiastID == enthusiastID })
		if err != nil {
			return err
		}
		previous = booking.Status
		if previous == domain.BookingStatusCompleted {
			return apperrors.NewValidationError("Cannot cancel completed booking", map[string]any{"status": previous})
		}
		if previous == domain.BookingStatusCancelled {
			return nil
		}

		booking.Status = domain.BookingStatusCancelled
		if err := s.bookings.Update(ctx, booking); err != nil {
			return err
		}
		return s.recordStatusChange(ctx, booking.ID, domain.RoleFitnessEnthusiast, enthusiastID, &previous, booking.Status, "cancelled by customer")
	})
	if err != nil {
		return nil, err
	}

	if previous != domain.BookingStatusCancelled {
		s.metrics.RecordBookingTransition(string(previous), string(domain.BookingStatusCancelled))
		s.logger.Info("lab booking cancelled", zap.String("booking_id", booking.ID))
		publishEvent(ctx, s.dispatcher, s.logger, events.Event{
			Type:      events.EventBookingCancelled,
			SubjectID: booking.ID,
			Actor:     userActor(domain.RoleFitnessEnthusiast, enthusiastID),
			Payload: events.BookingStatusChangedPayload{
				EnthusiastID: enthusiastID,
				OldStatus:    previous,
				NewStatus:    domain.BookingStatusCancelled,
			},
		})
	}
	return booking, nil
}

// History returns the status audit trail of a booking visible to one of its two parties.
func (s *BookingService) History(ctx context.Context, callerID, bookingID string) ([]domain.BookingHistory, error) {
	booking, err := s.loadBooking(ctx, bookingID, func(b *domain.LabBooking) bool {
		return b.FitnessEnthusiastID == callerID || b.LabPartnerID == callerID
	})
	if err != nil {
		return nil, err
	}
	entries, err := s.history.ListByBooking(ctx, booking.ID)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []domain.BookingHistory{}
	}
	return entries, nil
}

func (s *BookingService) loadApprovedPartner(ctx context.Context, partnerID string) (*domain.User, error) {
	notFound := apperrors.NewNotFoundMessage("Lab partner not found or not approved", map[string]any{"labPartnerId": partnerID})
	if !validID(partnerID) {
		return nil, notFound
	}
	partner, err := s.users.GetApproved(ctx, domain.RoleLabPartner, partnerID)
	if err != nil {
		if isNoRows(err) {
			return nil, notFound
		}
		return nil, err
	}
	return partner, nil
}

// loadBooking returns the booking when owns accepts it. Foreign bookings look absent.
func (s *BookingService) loadBooking(ctx context.Context, bookingID string, owns func(*domain.LabBooking) bool) (*domain.LabBooking, error) {
	notFound := apperrors.NewNotFound("booking", map[string]any{"bookingId": bookingID})
	if !validID(bookingID) {
		return nil, notFound
	}
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if isNoRows(err) {
			return nil, notFound
		}
		return nil, err
	}
	if !owns(booking) {
		return nil, notFound
	}
	return booking, nil
}

func (s *BookingService) recordStatusChange(ctx context.Context, bookingID string, role domain.Role, actorID string, from *domain.BookingStatus, to domain.BookingStatus, note string) error {
	if s.history == nil {
		return nil
	}
	return s.history.Create(ctx, &domain.BookingHistory{
		BookingID:     bookingID,
		ChangedByRole: role,
		ChangedByID:   actorID,
		OldStatus:     from,
		NewStatus:     to,
		Note:          note,
	})
}

// expandTests attaches the current catalog entry of every snapshotted test still present.
func (s *BookingService) expandTests(ctx context.Context, views []domain.BookingView) ([]domain.BookingView, error) {
	if len(views) == 0 {
		return []domain.BookingView{}, nil
	}
	seen := map[string]struct{}{}
	var ids []string
	for _, v := range views {
		for _, item := range v.Booking.SelectedTests {
			if _, ok := seen[item.TestID]; ok || !validID(item.TestID) {
				continue
			}
			seen[item.TestID] = struct{}{}
			ids = append(ids, item.TestID)
		}
	}
	tests, err := s.tests.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	catalog := make(map[string]domain.LabTest, len(tests))
	for _, t := range tests {
		catalog[t.ID] = t
	}
	for i := range views {
		details := map[string]domain.LabTest{}
		for _, item := range views[i].Booking.SelectedTests {
			if t, ok := catalog[item.TestID]; ok {
				details[item.TestID] = t
			}
		}
		views[i].TestDetails = details
	}
	return views, nil
}

func testNotFound(id string) error {
	return apperrors.NewNotFoundMessage(fmt.Sprintf("Test with ID %s not found", id), map[string]any{"testId": id})
}

func summarize(u *domain.User) *domain.UserSummary {
	if u == nil {
		return nil
	}
	return &domain.UserSummary{
		ID:                u.ID,
		Name:              u.Name,
		Email:             u.Email,
		Phone:             u.Phone,
		Age:               u.Age,
		LaboratoryName:    u.LaboratoryName,
		LaboratoryAddress: u.LaboratoryAddress,
	}
}

func parseBookingDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
