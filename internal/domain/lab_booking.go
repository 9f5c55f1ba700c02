package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BookingStatus enumerates lifecycle states for lab bookings.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Valid reports whether s is one of the known booking statuses.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCompleted, BookingStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed out of s.
func (s BookingStatus) Terminal() bool {
	return s == BookingStatusCompleted || s == BookingStatusCancelled
}

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed: {BookingStatusCompleted},
	BookingStatusCompleted: {},
	BookingStatusCancelled: {},
}

// CanTransition reports whether the strict state machine permits current -> next.
func CanTransition(current, next BookingStatus) bool {
	for _, candidate := range bookingTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// PaymentStatus is carried on bookings but not driven by any payment integration.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// BookingTestSnapshot freezes the name and price of a test at booking time.
type BookingTestSnapshot struct {
	TestID   string          `json:"testId"`
	TestName string          `json:"testName"`
	Price    decimal.Decimal `json:"price"`
}

// LabBooking reserves one or more tests from a lab partner.
type LabBooking struct {
	ID                         string
	FitnessEnthusiastID        string
	LabPartnerID               string
	SelectedTests              []BookingTestSnapshot
	BookingDate                time.Time
	TimeSlot                   string
	TotalAmount                decimal.Decimal
	Status                     BookingStatus
	PaymentStatus              PaymentStatus
	Notes                      string
	ContactPhone               string
	ContactEmail               string
	ExpectedReportDeliveryTime *string
	CreatedAt                  time.Time
	UpdatedAt                  time.Time
}

// SnapshotTotal sums the frozen line item prices.
func SnapshotTotal(items []BookingTestSnapshot) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Price)
	}
	return total
}

// BookingView is a booking with its counterpart party and current test details expanded.
type BookingView struct {
	Booking     LabBooking
	Enthusiast  *UserSummary
	LabPartner  *UserSummary
	TestDetails map[string]LabTest
}
