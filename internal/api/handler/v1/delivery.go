package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/swapnest/swapnest-api/internal/api/handler/v1/request"
	"github.com/swapnest/swapnest-api/internal/api/handler/v1/response"
	"github.com/swapnest/swapnest-api/internal/domain"
	"github.com/swapnest/swapnest-api/internal/service"
)

type DeliveryService interface {
	Generate(ctx context.Context, productID, sellerID, buyerID, transactionID string) (domain.DeliveryToken, error)
	Validate(ctx context.Context, raw string) (domain.DeliveryToken, error)
	Redeem(ctx context.Context, raw, actorID string) (domain.Transaction, error)
	GetUserTokens(ctx context.Context, userID string) ([]domain.DeliveryToken, error)
}

type DeliveryHandler struct {
	svc DeliveryService
}

func NewDeliveryHandler(svc DeliveryService) *DeliveryHandler {
	return &DeliveryHandler{
		svc: svc,
	}
}

// HandleGenerateToken godoc
// @Summary      Issue a delivery token for a reserved product
// @Tags         delivery
// @Accept       json
// @Produce      json
// @Param        request  body      request.GenerateTokenRequest  true  "request body"
// @Success      201      {object}  response.GenerateTokenResponse
// @Failure      400      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      422      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /delivery/tokens [post]
// @Security     BearerAuth
func (h *DeliveryHandler) HandleGenerateToken(ctx *gin.Context) {
	sellerID, respErr := getUserIDFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.GenerateTokenRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	token, err := h.svc.Generate(ctx.Request.Context(), req.ProductID, sellerID, req.BuyerID, req.TransactionID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			response.RenderErr(ctx, response.ErrNotFound("product", "id", req.ProductID))
		case errors.Is(err, service.ErrTransactionNotFound):
			response.RenderErr(ctx, response.ErrNotFound("transaction", "id", req.TransactionID))
		case errors.Is(err, service.ErrNotProductOwner),
			errors.Is(err, service.ErrNotTransactionParty):
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
		case errors.Is(err, service.ErrProductNotReserved):
			response.RenderErr(ctx, response.ErrConflict(err))
		case errors.Is(err, service.ErrTransactionNotAccepted),
			errors.Is(err, service.ErrTransactionMismatch):
			response.RenderErr(ctx, response.ErrUnprocessable(err))
		default:
			err = fmt.Errorf("HandleGenerateToken -> h.svc.Generate -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusCreated, response.GenerateTokenResponse{
		TokenID:   token.ID,
		Code:      token.Code,
		ExpiresAt: token.ExpiresAt,
	})
}

// HandleRedeemToken godoc
// @Summary      Redeem a scanned delivery code
// @Description  Consumes the token exactly once, completes the bound transaction and marks the product sold.
// @Tags         delivery
// @Accept       json
// @Produce      json
// @Param        request  body      request.RedeemTokenRequest  true  "request body"
// @Success      200      {object}  response.RedeemTokenResponse
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      410      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /delivery/redeem [post]
// @Security     BearerAuth
func (h *DeliveryHandler) HandleRedeemToken(ctx *gin.Context) {
	actorID, respErr := getUserIDFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.RedeemTokenRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	transaction, err := h.svc.Redeem(ctx.Request.Context(), req.Code, actorID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCodeFormat):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		case errors.Is(err, service.ErrTokenNotFound):
			response.RenderErr(ctx, response.ErrNotFound("delivery token", "code", req.Code))
		case errors.Is(err, service.ErrTokenAlreadyUsed):
			response.RenderErr(ctx, response.ErrConflict(err))
		case errors.Is(err, service.ErrTokenExpired):
			response.RenderErr(ctx, response.ErrGone(err))
		case errors.Is(err, service.ErrNotTokenParty):
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
		default:
			err = fmt.Errorf("HandleRedeemToken -> h.svc.Redeem -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, response.RedeemTokenResponse{
		TransactionID:     transaction.ID,
		TransactionStatus: transaction.Status,
		Message:           "delivery confirmed",
	})
}

// HandleGetTokens godoc
// @Summary      List the caller's delivery tokens, expired ones included
// @Tags         delivery
// @Produce      json
// @Success      200  {array}   domain.DeliveryToken
// @Failure      500  {object}  response.Err
// @Router       /delivery/tokens [get]
// @Security     BearerAuth
func (h *DeliveryHandler) HandleGetTokens(ctx *gin.Context) {
	userID, respErr := getUserIDFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	tokens, err := h.svc.GetUserTokens(ctx.Request.Context(), userID)
	if err != nil {
		err = fmt.Errorf("HandleGetTokens -> h.svc.GetUserTokens -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, tokens)
}
