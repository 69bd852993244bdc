package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/swapnest/swapnest-api/internal/api/handler/v1/response"
	"github.com/swapnest/swapnest-api/internal/domain"
	"github.com/swapnest/swapnest-api/internal/service"
)

type RedemptionService interface {
	RedeemSurpriseBox(ctx context.Context, userID string) (domain.Product, error)
}

type RedemptionHandler struct {
	svc RedemptionService
}

func NewRedemptionHandler(svc RedemptionService) *RedemptionHandler {
	return &RedemptionHandler{
		svc: svc,
	}
}

// HandleRedeemSurpriseBox godoc
// @Summary      Spend points on a surprise box and receive a random donated item
// @Tags         surprise-box
// @Produce      json
// @Success      200  {object}  response.SurpriseBoxResponse
// @Failure      404  {object}  response.Err
// @Failure      422  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /surprise-box/redeem [post]
// @Security     BearerAuth
func (h *RedemptionHandler) HandleRedeemSurpriseBox(ctx *gin.Context) {
	userID, respErr := getUserIDFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	product, err := h.svc.RedeemSurpriseBox(ctx.Request.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInsufficientPoints):
			response.RenderErr(ctx, response.ErrUnprocessable(err))
		case errors.Is(err, service.ErrNoItemsAvailable):
			response.RenderErr(ctx, response.ErrNotFound("surprise box item", "kind", "donation"))
		default:
			err = fmt.Errorf("HandleRedeemSurpriseBox -> h.svc.RedeemSurpriseBox -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, response.SurpriseBoxResponse{
		Product: product,
		Message: fmt.Sprintf("congratulations, %q is yours", product.Title),
	})
}
