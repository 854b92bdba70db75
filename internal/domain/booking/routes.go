package booking

import "github.com/gin-gonic/gin"

func (h *Handler) RegisterPublicRoutes(v1 *gin.RouterGroup) {
	v1.GET("/availability", h.GetAvailability)
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	reservations := protected.Group("/reservations")
	{
		reservations.POST("", h.CreateReservation)
		reservations.GET("", h.ListReservations)
		reservations.PUT("/:id", h.RescheduleReservation)
		reservations.DELETE("/:id", h.CancelReservation)
	}

	artifacts := protected.Group("/artifacts")
	{
		artifacts.GET("", h.ListArtifacts)
		artifacts.GET("/:reservationId", h.GetArtifact)
		artifacts.PUT("/:reservationId", h.UpdateReminders)
	}
}
