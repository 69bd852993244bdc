package v1

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/swapnest/swapnest-api/internal/api/handler/v1/response"
	"github.com/swapnest/swapnest-api/internal/domain"
)

type NotificationService interface {
	GetUserNotifications(ctx context.Context, userID string) ([]domain.Notification, error)
}

type NotificationHandler struct {
	svc NotificationService
}

func NewNotificationHandler(svc NotificationService) *NotificationHandler {
	return &NotificationHandler{
		svc: svc,
	}
}

// HandleGetNotifications godoc
// @Summary      List the caller's notifications
// @Tags         notifications
// @Produce      json
// @Success      200  {array}   domain.Notification
// @Failure      500  {object}  response.Err
// @Router       /notifications [get]
// @Security     BearerAuth
func (h *NotificationHandler) HandleGetNotifications(ctx *gin.Context) {
	userID, respErr := getUserIDFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	notifications, err := h.svc.GetUserNotifications(ctx.Request.Context(), userID)
	if err != nil {
		err = fmt.Errorf("HandleGetNotifications -> h.svc.GetUserNotifications -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, notifications)
}
