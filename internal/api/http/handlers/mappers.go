package handlers

import (
	"time"

	"github.com/spec-kit/fitlab-service/internal/api/dto"
	"github.com/spec-kit/fitlab-service/internal/auth"
	"github.com/spec-kit/fitlab-service/internal/domain"
)

func userResponse(u *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:                u.ID,
		Name:              u.Name,
		Email:             u.Email,
		UserType:          string(u.Role),
		Phone:             u.Phone,
		Age:               u.Age,
		IsActive:          u.IsActive,
		IsApproved:        u.IsApproved,
		ApprovalStatus:    string(u.ApprovalStatus),
		ApprovedBy:        u.ApprovedBy,
		ApprovedAt:        u.ApprovedAt,
		IsSuspended:       u.IsSuspended,
		SuspensionReason:  u.SuspensionReason,
		SuspendedAt:       u.SuspendedAt,
		Specialization:    u.Specialization,
		YearsOfExperience: u.YearsOfExperience,
		LaboratoryName:    u.LaboratoryName,
		LaboratoryAddress: u.LaboratoryAddress,
		OfferedTests:      u.OfferedTests,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}

func userResponses(users []domain.User) []dto.UserResponse {
	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, userResponse(&users[i]))
	}
	return items
}

func authResponse(token auth.IssuedToken) dto.AuthResponse {
	return dto.AuthResponse{Token: token.Token, ExpiresAt: token.ExpiresAt}
}

func partyResponse(s *domain.UserSummary) *dto.PartyResponse {
	if s == nil {
		return nil
	}
	return &dto.PartyResponse{
		ID:                s.ID,
		Name:              s.Name,
		Email:             s.Email,
		Phone:             s.Phone,
		Age:               s.Age,
		LaboratoryName:    s.LaboratoryName,
		LaboratoryAddress: s.LaboratoryAddress,
	}
}

func labTestResponse(t *domain.LabTest) dto.LabTestResponse {
	return dto.LabTestResponse{
		ID:                      t.ID,
		LabPartnerID:            t.LabPartnerID,
		TestName:                t.TestName,
		Description:             t.Description,
		Price:                   dto.Money{Decimal: t.Price},
		Duration:                t.Duration,
		Category:                t.Category,
		PreparationInstructions: t.PreparationInstructions,
		IsActive:                t.IsActive,
		CreatedAt:               t.CreatedAt,
		UpdatedAt:               t.UpdatedAt,
	}
}

func labTestResponses(tests []domain.LabTest) []dto.LabTestResponse {
	items := make([]dto.LabTestResponse, 0, len(tests))
	for i := range tests {
		items = append(items, labTestResponse(&tests[i]))
	}
	return items
}

func bookingResponse(b *domain.LabBooking, enthusiast, partner *domain.UserSummary, details map[string]domain.LabTest) dto.BookingResponse {
	items := make([]dto.BookingTestResponse, 0, len(b.SelectedTests))
	for _, item := range b.SelectedTests {
		line := dto.BookingTestResponse{
			TestID:   item.TestID,
			TestName: item.TestName,
			Price:    dto.Money{Decimal: item.Price},
		}
		if current, ok := details[item.TestID]; ok {
			line.Description = current.Description
			line.Duration = current.Duration
		}
		items = append(items, line)
	}
	return dto.BookingResponse{
		ID:                         b.ID,
		FitnessEnthusiastID:        b.FitnessEnthusiastID,
		LabPartnerID:               b.LabPartnerID,
		FitnessEnthusiast:          partyResponse(enthusiast),
		LabPartner:                 partyResponse(partner),
		SelectedTests:              items,
		BookingDate:                b.BookingDate.Format(time.DateOnly),
		TimeSlot:                   b.TimeSlot,
		TotalAmount:                dto.Money{Decimal: b.TotalAmount},
		Status:                     string(b.Status),
		PaymentStatus:              string(b.PaymentStatus),
		Notes:                      b.Notes,
		ContactPhone:               b.ContactPhone,
		ContactEmail:               b.ContactEmail,
		ExpectedReportDeliveryTime: b.ExpectedReportDeliveryTime,
		CreatedAt:                  b.CreatedAt,
		UpdatedAt:                  b.UpdatedAt,
	}
}

func bookingViewResponse(v *domain.BookingView) dto.BookingResponse {
	return bookingResponse(&v.Booking, v.Enthusiast, v.LabPartner, v.TestDetails)
}

func bookingViewResponses(views []domain.BookingView) []dto.BookingResponse {
	items := make([]dto.BookingResponse, 0, len(views))
	for i := range views {
		items = append(items, bookingViewResponse(&views[i]))
	}
	return items
}

func historyResponses(entries []domain.BookingHistory) []dto.BookingHistoryResponse {
	items := make([]dto.BookingHistoryResponse, 0, len(entries))
	for _, e := range entries {
		var old *string
		if e.OldStatus != nil {
			s := string(*e.OldStatus)
			old = &s
		}
		items = append(items, dto.BookingHistoryResponse{
			ID:            e.ID,
			ChangedByRole: string(e.ChangedByRole),
			ChangedByID:   e.ChangedByID,
			OldStatus:     old,
			NewStatus:     string(e.NewStatus),
			Note:          e.Note,
			CreatedAt:     e.CreatedAt,
		})
	}
	return items
}

func blogResponse(b *domain.Blog) dto.BlogResponse {
	tags := b.Tags
	if tags == nil {
		tags = []string{}
	}
	return dto.BlogResponse{
		ID:          b.ID,
		AuthorID:    b.AuthorID,
		Author:      partyResponse(b.Author),
		Title:       b.Title,
		Content:     b.Content,
		Category:    b.Category,
		Tags:        tags,
		IsPublished: b.IsPublished,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

func blogResponses(blogs []domain.Blog) []dto.BlogResponse {
	items := make([]dto.BlogResponse, 0, len(blogs))
	for i := range blogs {
		items = append(items, blogResponse(&blogs[i]))
	}
	return items
}
