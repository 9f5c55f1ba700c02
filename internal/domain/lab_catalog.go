package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	DefaultTestCategory            = "Other"
	DefaultPreparationInstructions = "No special preparation required"
)

// LabTest is a service offering owned by a single lab partner.
type LabTest struct {
	ID                      string
	LabPartnerID            string
	TestName                string
	Description             string
	Price                   decimal.Decimal
	Duration                string
	Category                string
	PreparationInstructions string
	IsActive                bool
	CreatedAt               time.Time
	UpdatedAt               time.Time
}
