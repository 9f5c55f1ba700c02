package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/fitlab-service/internal/domain"
)

// LabBookingRepository encapsulates booking persistence.
type LabBookingRepository interface {
	Create(ctx context.Context, booking *domain.LabBooking) error
	Update(ctx context.Context, booking *domain.LabBooking) error
	GetByID(ctx context.Context, id string) (*domain.LabBooking, error)
	ListByEnthusiast(ctx context.Context, enthusiastID string) ([]domain.BookingView, error)
	ListByPartner(ctx context.Context, partnerID string) ([]domain.BookingView, error)
}

type labBookingRepository struct {
	pool *pgxpool.Pool
}

// NewLabBookingRepository instantiates repository.
func NewLabBookingRepository(pool *pgxpool.Pool) LabBookingRepository {
	return &labBookingRepository{pool: pool}
}

const bookingColumns = `b.id, b.fitness_enthusiast_id, b.lab_partner_id, b.selected_tests, b.booking_date,
        b.time_slot, b.total_amount, b.status, b.payment_status, b.notes, b.contact_phone,
        b.contact_email, b.expected_report_delivery_time, b.created_at, b.updated_at`

func (r *labBookingRepository) Create(ctx context.Context, booking *domain.LabBooking) error {
	const query = `
        INSERT INTO lab_bookings (fitness_enthusiast_id, lab_partner_id, selected_tests, booking_date,
            time_slot, total_amount, status, payment_status, notes, contact_phone, contact_email)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        RETURNING id, created_at, updated_at`
	return conn(ctx, r.pool).QueryRow(ctx, query,
		booking.FitnessEnthusiastID,
		booking.LabPartnerID,
		booking.SelectedTests,
		booking.BookingDate,
		booking.TimeSlot,
		booking.TotalAmount,
		booking.Status,
		booking.PaymentStatus,
		booking.Notes,
		booking.ContactPhone,
		booking.ContactEmail,
	).Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)
}

// Update persists the mutable workflow fields. Snapshots and totals are never rewritten.
func (r *labBookingRepository) Update(ctx context.Context, booking *domain.LabBooking) error {
	const query = `
        UPDATE lab_bookings SET status=$1, payment_status=$2, expected_report_delivery_time=$3, updated_at=NOW()
        WHERE id=$4
        RETURNING updated_at`
	return conn(ctx, r.pool).QueryRow(ctx, query,
		booking.Status,
		booking.PaymentStatus,
		booking.ExpectedReportDeliveryTime,
		booking.ID,
	).Scan(&booking.UpdatedAt)
}

func (r *labBookingRepository) GetByID(ctx context.Context, id string) (*domain.LabBooking, error) {
	query := `SELECT ` + bookingColumns + ` FROM lab_bookings b WHERE b.id=$1`
	var booking domain.LabBooking
	if err := conn(ctx, r.pool).QueryRow(ctx, query, id).Scan(bookingDest(&booking)...); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *labBookingRepository) ListByEnthusiast(ctx context.Context, enthusiastID string) ([]domain.BookingView, error) {
	query := `SELECT ` + bookingColumns + `, u.id, u.name, u.email, u.phone, u.age, u.laboratory_name, u.laboratory_address
        FROM lab_bookings b
        LEFT JOIN users u ON u.id = b.lab_partner_id
        WHERE b.fitness_enthusiast_id=$1
        ORDER BY b.created_at DESC`
	return r.listViews(ctx, query, enthusiastID, func(v *domain.BookingView, party *domain.UserSummary) {
		v.LabPartner = party
	})
}

func (r *labBookingRepository) ListByPartner(ctx context.Context, partnerID string) ([]domain.BookingView, error) {
	query := `SELECT ` + bookingColumns + `, u.id, u.name, u.email, u.phone, u.age, u.laboratory_name, u.laboratory_address
        FROM lab_bookings b
        LEFT JOIN users u ON u.id = b.fitness_enthusiast_id
        WHERE b.lab_partner_id=$1
        ORDER BY b.created_at DESC`
	return r.listViews(ctx, query, partnerID, func(v *domain.BookingView, party *domain.UserSummary) {
		v.Enthusiast = party
	})
}

func (r *labBookingRepository) listViews(ctx context.Context, query, id string, attach func(*domain.BookingView, *domain.UserSummary)) ([]domain.BookingView, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.BookingView
	for rows.Next() {
		var view domain.BookingView
		var partyID, name, email, phone, laboratoryName, laboratoryAddress *string
		var age *int
		dest := append(bookingDest(&view.Booking), &partyID, &name, &email, &phone, &age, &laboratoryName, &laboratoryAddress)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		if partyID != nil {
			attach(&view, &domain.UserSummary{
				ID:                *partyID,
				Name:              deref(name),
				Email:             deref(email),
				Phone:             deref(phone),
				Age:               age,
				LaboratoryName:    deref(laboratoryName),
				LaboratoryAddress: deref(laboratoryAddress),
			})
		}
		result = append(result, view)
	}
	return result, rows.Err()
}

func bookingDest(booking *domain.LabBooking) []any {
	return []any{
		&booking.ID,
		&booking.FitnessEnthusiastID,
		&booking.LabPartnerID,
		&booking.SelectedTests,
		&booking.BookingDate,
		&booking.TimeSlot,
		&booking.TotalAmount,
		&booking.Status,
		&booking.PaymentStatus,
		&booking.Notes,
		&booking.ContactPhone,
		&booking.ContactEmail,
		&booking.ExpectedReportDeliveryTime,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
