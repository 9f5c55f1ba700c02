package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/fitlab-service/internal/api/dto"
	"github.com/spec-kit/fitlab-service/internal/service"
)

// BookingsHandler exposes lab booking endpoints for enthusiasts and partners.
type BookingsHandler struct {
	bookings *service.BookingService
}

// NewBookingsHandler constructs handler.
func NewBookingsHandler(bookings *service.BookingService) *BookingsHandler {
	return &BookingsHandler{bookings: bookings}
}

// Create handles POST /api/lab-partners/bookings/create.
func (h *BookingsHandler) Create(c *fiber.Ctx) error {
	user, err := userPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CreateBookingRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	ids := make([]string, 0, len(req.SelectedTests))
	for _, item := range req.SelectedTests {
		ids = append(ids, item.TestID)
	}

	view, err := h.bookings.CreateBooking(c.UserContext(), user, service.CreateBookingInput{
		LabPartnerID: req.LabPartnerID,
		TestIDs:      ids,
		BookingDate:  req.BookingDate,
		TimeSlot:     req.TimeSlot,
		Notes:        req.Notes,
	})
	if err != nil {
		return err
	}
	return created(c, bookingViewResponse(view), "Booking created successfully")
}

// MyBookings handles GET /api/lab-partners/bookings/my-bookings.
func (h *BookingsHandler) MyBookings(c *fiber.Ctx) error {
	user, err := userPrincipal(c)
	if err != nil {
		return err
	}
	views, err := h.bookings.ListByEnthusiast(c.UserContext(), user.ID)
	if err != nil {
		return err
	}
	return ok(c, bookingViewResponses(views), "Bookings fetched successfully")
}

// LabBookings handles GET /api/lab-partners/bookings/lab-bookings.
func (h *BookingsHandler) LabBookings(c *fiber.Ctx) error {
	user, err := userPrincipal(c)
	if err != nil {
		return err
	}
	views, err := h.bookings.ListByPartner(c.UserContext(), user.ID)
	if err != nil {
		return err
	}
	return ok(c, bookingViewResponses(views), "Lab bookings fetched successfully")
}

// UpdateStatus handles PUT /api/lab-partners/bookings/:bookingId/status.
func (h *BookingsHandler) UpdateStatus(c *fiber.Ctx) error {
	user, err := userPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.UpdateBookingStatusRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	booking, err := h.bookings.UpdateStatus(c.UserContext(), user.ID, c.Params("bookingId"), req.Status, req.ExpectedReportDeliveryTime)
	if err != nil {
		return err
	}
	return ok(c, bookingResponse(booking, nil, nil, nil), "Booking status updated successfully")
}

// Cancel handles PUT /api/lab-partners/bookings/:bookingId/cancel.
func (h *BookingsHandler) Cancel(c *fiber.Ctx) error {
	user, err := userPrincipal(c)
	if err != nil {
		return err
	}
	booking, err := h.bookings.Cancel(c.UserContext(), user.ID, c.Params("bookingId"))
	if err != nil {
		return err
	}
	return ok(c, bookingResponse(booking, nil, nil, nil), "Booking cancelled successfully")
}

// History handles GET /api/lab-partners/bookings/:bookingId/history.
func (h *BookingsHandler) History(c *fiber.Ctx) error {
	user, err := userPrincipal(c)
	if err != nil {
		return err
	}
	entries, err := h.bookings.History(c.UserContext(), user.ID, c.Params("bookingId"))
	if err != nil {
		return err
	}
	return ok(c, historyResponses(entries), "Booking history fetched successfully")
}
