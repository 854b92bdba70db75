package booking

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"ceramicflow/internal/domain/auth"
	"ceramicflow/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetAvailability
// @Summary		Free slots for a date
// @Tags		Availability
// @Produce		json
// @Param		date	query	string	true	"YYYY-MM-DD"
// @Success		200	{object}	AvailabilityResponse
// @Router		/availability [get]
func (h *Handler) GetAvailability(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "date query parameter is required")
		return
	}

	slots, err := h.service.Availability(c.Request.Context(), date)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, AvailabilityResponse{Date: date, Slots: slots})
}

// CreateReservation
// @Summary		Book a slot
// @Tags		Reservations
// @Accept		json
// @Produce		json
// @Param		body	body	CreateReservationRequest	true	"payload"
// @Success		201	{object}	Reservation
// @Router		/reservations [post]
func (h *Handler) CreateReservation(c *gin.Context) {
	id, ok := auth.IdentityFrom(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "not authenticated")
		return
	}

	var req CreateReservationRequest
	if !response.BindJSON(c, &req) {
		return
	}

	slot, ok := h.slotFrom(c, req.Date, req.Slot, req.SlotInstant)
	if !ok {
		return
	}

	res, err := h.service.Create(c.Request.Context(), id.ID, CreateInput{
		Label:       req.Label,
		Date:        req.Date,
		SlotInstant: slot,
		Kind:        req.ArtifactKind,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"reservation": res})
}

func (h *Handler) ListReservations(c *gin.Context) {
	id, ok := auth.IdentityFrom(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "not authenticated")
		return
	}

	items, err := h.service.List(c.Request.Context(), id.ID, c.Query("date"))
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"reservations": items})
}

func (h *Handler) RescheduleReservation(c *gin.Context) {
	id, ok := auth.IdentityFrom(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "not authenticated")
		return
	}
	resID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req RescheduleRequest
	if !response.BindJSON(c, &req) {
		return
	}

	var (
		res *Reservation
		err error
	)
	switch {
	case req.SlotInstant != nil:
		res, err = h.service.Reschedule(c.Request.Context(), id.ID, resID, *req.SlotInstant)
	case req.Slot != "":
		res, err = h.service.RescheduleTo(c.Request.Context(), id.ID, resID, req.Slot)
	default:
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "slot or slot_instant is required")
		return
	}
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"reservation": res})
}

func (h *Handler) CancelReservation(c *gin.Context) {
	id, ok := auth.IdentityFrom(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "not authenticated")
		return
	}
	resID, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Cancel(c.Request.Context(), id.ID, resID); err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true, "id": resID})
}

func (h *Handler) ListArtifacts(c *gin.Context) {
	id, ok := auth.IdentityFrom(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "not authenticated")
		return
	}

	items, err := h.service.ListArtifacts(c.Request.Context(), id.ID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"artifacts": items})
}

func (h *Handler) GetArtifact(c *gin.Context) {
	id, ok := auth.IdentityFrom(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "not authenticated")
		return
	}
	resID, ok := paramID(c, "reservationId")
	if !ok {
		return
	}

	art, err := h.service.GetArtifact(c.Request.Context(), id.ID, resID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"artifact": art})
}

func (h *Handler) UpdateReminders(c *gin.Context) {
	id, ok := auth.IdentityFrom(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "not authenticated")
		return
	}
	resID, ok := paramID(c, "reservationId")
	if !ok {
		return
	}

	var req UpdateRemindersRequest
	if !response.BindJSON(c, &req) {
		return
	}

	art, err := h.service.SetReminders(c.Request.Context(), id.ID, resID, *req.RemindersEnabled)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"artifact": art})
}

func (h *Handler) slotFrom(c *gin.Context, date, label string, instant *time.Time) (time.Time, bool) {
	if instant != nil {
		return *instant, true
	}
	if label == "" {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "slot or slot_instant is required")
		return time.Time{}, false
	}
	t, err := h.service.ResolveSlot(date, label)
	if err != nil {
		response.FromError(c, err)
		return time.Time{}, false
	}
	return t, true
}

func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "invalid "+name)
		return 0, false
	}
	return id, true
}
