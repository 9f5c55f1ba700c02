package events

import (
	"time"

	"github.com/spec-kit/fitlab-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventBookingCreated        EventType = "booking_created"
	EventBookingStatusChanged  EventType = "booking_status_changed"
	EventBookingCancelled      EventType = "booking_cancelled"
	EventUserApproved          EventType = "user_approved"
	EventUserRejected          EventType = "user_rejected"
	EventUserSuspensionChanged EventType = "user_suspension_changed"
	EventOfferedTestsReplaced  EventType = "offered_tests_replaced"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Role domain.Role `json:"role"`
	ID   string      `json:"id"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SubjectID string      `json:"subjectId"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// BookingCreatedPayload payload.
type BookingCreatedPayload struct {
	LabPartnerID string `json:"labPartnerId"`
	TestCount    int    `json:"testCount"`
	TotalAmount  string `json:"totalAmount"`
	BookingDate  string `json:"bookingDate"`
	TimeSlot     string `json:"timeSlot"`
}

// BookingStatusChangedPayload payload.
type BookingStatusChangedPayload struct {
	EnthusiastID string               `json:"enthusiastId"`
	OldStatus    domain.BookingStatus `json:"oldStatus"`
	NewStatus    domain.BookingStatus `json:"newStatus"`
	DeliveryTime *string              `json:"expectedReportDeliveryTime,omitempty"`
}

// UserApprovalPayload payload for approve and reject events.
type UserApprovalPayload struct {
	Email          string                `json:"email"`
	Role           domain.Role           `json:"role"`
	ApprovalStatus domain.ApprovalStatus `json:"approvalStatus"`
}

// UserSuspensionPayload payload.
type UserSuspensionPayload struct {
	Email     string  `json:"email"`
	Suspended bool    `json:"suspended"`
	Reason    *string `json:"reason,omitempty"`
}

// OfferedTestsPayload payload.
type OfferedTestsPayload struct {
	TestIDs []string `json:"testIds"`
}
