package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// LabTestRequest payload for creating a test.
type LabTestRequest struct {
	TestName                string           `json:"testName"`
	Description             string           `json:"description"`
	Price                   *decimal.Decimal `json:"price"`
	Duration                string           `json:"duration"`
	Category                string           `json:"category"`
	PreparationInstructions string           `json:"preparationInstructions"`
}

// LabTestPatchRequest payload for updating a test. Absent fields are left untouched.
type LabTestPatchRequest struct {
	TestName                *string          `json:"testName"`
	Description             *string          `json:"description"`
	Price                   *decimal.Decimal `json:"price"`
	Duration                *string          `json:"duration"`
	Category                *string          `json:"category"`
	PreparationInstructions *string          `json:"preparationInstructions"`
	IsActive                *bool            `json:"isActive"`
}

// LabTestResponse describes a catalog test.
type LabTestResponse struct {
	ID                      string    `json:"id"`
	LabPartnerID            string    `json:"labPartnerId"`
	TestName                string    `json:"testName"`
	Description             string    `json:"description"`
	Price                   Money     `json:"price"`
	Duration                string    `json:"duration"`
	Category                string    `json:"category"`
	PreparationInstructions string    `json:"preparationInstructions"`
	IsActive                bool      `json:"isActive"`
	CreatedAt               time.Time `json:"createdAt"`
	UpdatedAt               time.Time `json:"updatedAt"`
}

// OfferedTestsRequest replaces a partner's offered list.
type OfferedTestsRequest struct {
	TestIDs []string `json:"testIds"`
}

// SelectedTestRequest references one test in a booking request.
type SelectedTestRequest struct {
	TestID string `json:"testId"`
}

// CreateBookingRequest payload for booking tests.
type CreateBookingRequest struct {
	LabPartnerID  string                `json:"labPartnerId"`
	SelectedTests []SelectedTestRequest `json:"selectedTests"`
	BookingDate   string                `json:"bookingDate"`
	TimeSlot      string                `json:"timeSlot"`
	Notes         string                `json:"notes"`
}

// UpdateBookingStatusRequest payload for partner status updates.
type UpdateBookingStatusRequest struct {
	Status                     string  `json:"status"`
	ExpectedReportDeliveryTime *string `json:"expectedReportDeliveryTime"`
}

// BookingTestResponse is one booked line item with its current catalog details when still present.
type BookingTestResponse struct {
	TestID      string  `json:"testId"`
	TestName    string  `json:"testName"`
	Price       Money   `json:"price"`
	Description string  `json:"description,omitempty"`
	Duration    string  `json:"duration,omitempty"`
}

// BookingResponse describes a lab booking.
type BookingResponse struct {
	ID                         string                `json:"id"`
	FitnessEnthusiastID        string                `json:"fitnessEnthusiastId"`
	LabPartnerID               string                `json:"labPartnerId"`
	FitnessEnthusiast          *PartyResponse        `json:"fitnessEnthusiast,omitempty"`
	LabPartner                 *PartyResponse        `json:"labPartner,omitempty"`
	SelectedTests              []BookingTestResponse `json:"selectedTests"`
	BookingDate                string                `json:"bookingDate"`
	TimeSlot                   string                `json:"timeSlot"`
	TotalAmount                Money                 `json:"totalAmount"`
	Status                     string                `json:"status"`
	PaymentStatus              string                `json:"paymentStatus"`
	Notes                      string                `json:"notes"`
	ContactPhone               string                `json:"contactPhone"`
	ContactEmail               string                `json:"contactEmail"`
	ExpectedReportDeliveryTime *string               `json:"expectedReportDeliveryTime,omitempty"`
	CreatedAt                  time.Time             `json:"createdAt"`
	UpdatedAt                  time.Time             `json:"updatedAt"`
}

// BookingHistoryResponse is one status change of a booking.
type BookingHistoryResponse struct {
	ID            string    `json:"id"`
	ChangedByRole string    `json:"changedByRole"`
	ChangedByID   string    `json:"changedById"`
	OldStatus     *string   `json:"oldStatus,omitempty"`
	NewStatus     string    `json:"newStatus"`
	Note          string    `json:"note,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}
