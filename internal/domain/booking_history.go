package domain

import "time"

// BookingHistory is an immutable audit entry for a booking status change.
type BookingHistory struct {
	ID            string
	BookingID     string
	ChangedByRole Role
	ChangedByID   string
	OldStatus     *BookingStatus
	NewStatus     BookingStatus
	Note          string
	CreatedAt     time.Time
}
