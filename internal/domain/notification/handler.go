package notification

import (
	"net/http"

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

// PullNotifications returns and clears the caller's pending notifications.
// @Summary		Pull notifications
// @Description	Returns pending notifications oldest first and deletes them. A second call returns an empty list.
// @Tags		Notifications
// @Security	BearerAuth
// @Success		200	{object}	map[string]interface{}
// @Failure		401	{object}	map[string]interface{}
// @Router		/notifications [GET]
func (h *Handler) PullNotifications(c *gin.Context) {
	id, ok := auth.IdentityFrom(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "not authenticated")
		return
	}

	events, err := h.service.Pull(c.Request.Context(), id.ID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"notifications": events})
}
