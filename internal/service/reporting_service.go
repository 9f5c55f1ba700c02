package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/spec-kit/fitlab-service/internal/domain"
	"github.com/spec-kit/fitlab-service/internal/repository"
)

// growthWindowMonths is the number of calendar months covered by MonthlyGrowth, current month included.
const growthWindowMonths = 12

// ReportingService computes the admin dashboard aggregates. Nothing is cached.
type ReportingService struct {
	users repository.UserRepository
}

// NewReportingService constructs the service.
func NewReportingService(users repository.UserRepository) *ReportingService {
	return &ReportingService{users: users}
}

// MonthlyGrowth is the signup count for one calendar month.
type MonthlyGrowth struct {
	Month              string
	Year               int
	MonthNumber        int
	Total              int
	FitnessEnthusiasts int
	Trainers           int
	LabPartners        int
}

// RoleDistribution is the user count for one role.
type RoleDistribution struct {
	Label string
	Count int
	Role  domain.Role
}

// Stats returns the headline counters.
func (s *ReportingService) Stats(ctx context.Context) (repository.UserStats, error) {
	return s.users.Stats(ctx)
}

// MonthlyGrowth groups signups since the first day of the month eleven months before now (UTC).
// Months without signups are omitted.
func (s *ReportingService) MonthlyGrowth(ctx context.Context, now time.Time) ([]MonthlyGrowth, error) {
	since := growthWindowStart(now)
	rows, err := s.users.MonthlySignups(ctx, since)
	if err != nil {
		return nil, err
	}

	result := []MonthlyGrowth{}
	index := map[[2]int]int{}
	for _, row := range rows {
		key := [2]int{row.Year, row.Month}
		pos, ok := index[key]
		if !ok {
			result = append(result, MonthlyGrowth{
				Month:       fmt.Sprintf("%04d-%02d", row.Year, row.Month),
				Year:        row.Year,
				MonthNumber: row.Month,
			})
			pos = len(result) - 1
			index[key] = pos
		}
		entry := &result[pos]
		entry.Total += row.Count
		switch row.Role {
		case domain.RoleFitnessEnthusiast:
			entry.FitnessEnthusiasts += row.Count
		case domain.RoleTrainer:
			entry.Trainers += row.Count
		case domain.RoleLabPartner:
			entry.LabPartners += row.Count
		}
	}
	return result, nil
}

// UserDistribution returns the number of users per role.
func (s *ReportingService) UserDistribution(ctx context.Context) ([]RoleDistribution, error) {
	counts, err := s.users.CountByRole(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]RoleDistribution, 0, len(counts))
	for _, c := range counts {
		result = append(result, RoleDistribution{Label: roleLabel(c.Role), Count: c.Count, Role: c.Role})
	}
	return result, nil
}

func growthWindowStart(now time.Time) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month()-(growthWindowMonths-1), 1, 0, 0, 0, 0, time.UTC)
}

// roleLabel turns "fitness-enthusiast" into "Fitness Enthusiast".
func roleLabel(role domain.Role) string {
	return cases.Title(language.English).String(strings.ReplaceAll(string(role), "-", " "))
}
