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

type TransactionService interface {
	CreatePurchaseRequest(ctx context.Context, productID, buyerID string) (domain.Transaction, error)
	CreateTradeOffer(ctx context.Context, productID, offeredProductID, message, buyerID string) (domain.Transaction, error)
	Respond(ctx context.Context, transactionID, actorID string, accept bool) (domain.Transaction, error)
	Cancel(ctx context.Context, transactionID, actorID string) (domain.Transaction, error)
	GetTransaction(ctx context.Context, transactionID, actorID string) (domain.Transaction, error)
	GetUserTransactions(ctx context.Context, userID string) ([]domain.Transaction, error)
}

type TransactionHandler struct {
	svc TransactionService
}

func NewTransactionHandler(svc TransactionService) *TransactionHandler {
	return &TransactionHandler{
		svc: svc,
	}
}

// HandleCreatePurchaseRequest godoc
// @Summary      Open a purchase or donation request
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        request  body      request.CreatePurchaseRequest  true  "request body"
// @Success      201      {object}  domain.Transaction
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /transactions [post]
// @Security     BearerAuth
func (h *TransactionHandler) HandleCreatePurchaseRequest(ctx *gin.Context) {
	buyerID, respErr := getUserIDFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.CreatePurchaseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	transaction, err := h.svc.CreatePurchaseRequest(ctx.Request.Context(), req.ProductID, buyerID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			response.RenderErr(ctx, response.ErrNotFound("product", "id", req.ProductID))
		case errors.Is(err, service.ErrSelfTransaction),
			errors.Is(err, service.ErrProductUnavailable),
			errors.Is(err, service.ErrTradeOfferRequired):
			response.RenderErr(ctx, response.ErrUnprocessable(err))
		default:
			err = fmt.Errorf("HandleCreatePurchaseRequest -> h.svc.CreatePurchaseRequest -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusCreated, transaction)
}

// HandleCreateTradeOffer godoc
// @Summary      Open a trade offer
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        request  body      request.CreateTradeOfferRequest  true  "request body"
// @Success      201      {object}  domain.Transaction
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /trades [post]
// @Security     BearerAuth
func (h *TransactionHandler) HandleCreateTradeOffer(ctx *gin.Context) {
	buyerID, respErr := getUserIDFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.CreateTradeOfferRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	transaction, err := h.svc.CreateTradeOffer(ctx.Request.Context(), req.ProductID, req.OfferedProductID, req.Message, buyerID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			response.RenderErr(ctx, response.ErrNotFound("product", "id", req.ProductID))
		case errors.Is(err, service.ErrSelfTransaction),
			errors.Is(err, service.ErrProductUnavailable),
			errors.Is(err, service.ErrOfferedProductUnavailable),
			errors.Is(err, service.ErrNotOfferedProductOwner):
			response.RenderErr(ctx, response.ErrUnprocessable(err))
		default:
			err = fmt.Errorf("HandleCreateTradeOffer -> h.svc.CreateTradeOffer -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusCreated, transaction)
}

// HandleRespondToOffer godoc
// @Summary      Accept or reject a pending offer
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        transactionID  path      string                         true  "Transaction ID"
// @Param        request        body      request.RespondToOfferRequest  true  "request body"
// @Success      200            {object}  domain.Transaction
// @Failure      400            {object}  response.Err
// @Failure      404            {object}  response.Err
// @Failure      409            {object}  response.Err
// @Failure      500            {object}  response.Err
// @Router       /transactions/{transactionID}/respond [post]
// @Security     BearerAuth
func (h *TransactionHandler) HandleRespondToOffer(ctx *gin.Context) {
	actorID, respErr := getUserIDFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	transactionID := ctx.Param("transactionID")

	var req request.RespondToOfferRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	transaction, err := h.svc.Respond(ctx.Request.Context(), transactionID, actorID, *req.Accept)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTransactionNotFound):
			response.RenderErr(ctx, response.ErrNotFound("transaction", "id", transactionID))
		case errors.Is(err, service.ErrNotTransactionParty):
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
		case errors.Is(err, service.ErrReservationConflict),
			errors.Is(err, service.ErrTransactionClosed):
			response.RenderErr(ctx, response.ErrConflict(err))
		default:
			err = fmt.Errorf("HandleRespondToOffer -> h.svc.Respond -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, transaction)
}

// HandleCancelTransaction godoc
// @Summary      Cancel a pending or accepted transaction
// @Tags         transactions
// @Produce      json
// @Param        transactionID  path      string  true  "Transaction ID"
// @Success      200            {object}  domain.Transaction
// @Failure      404            {object}  response.Err
// @Failure      409            {object}  response.Err
// @Failure      500            {object}  response.Err
// @Router       /transactions/{transactionID}/cancel [post]
// @Security     BearerAuth
func (h *TransactionHandler) HandleCancelTransaction(ctx *gin.Context) {
	actorID, respErr := getUserIDFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	transactionID := ctx.Param("transactionID")

	transaction, err := h.svc.Cancel(ctx.Request.Context(), transactionID, actorID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTransactionNotFound):
			response.RenderErr(ctx, response.ErrNotFound("transaction", "id", transactionID))
		case errors.Is(err, service.ErrNotTransactionParty):
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
		case errors.Is(err, service.ErrTransactionClosed):
			response.RenderErr(ctx, response.ErrConflict(err))
		default:
			err = fmt.Errorf("HandleCancelTransaction -> h.svc.Cancel -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, transaction)
}

// HandleGetTransaction godoc
// @Summary      Get one transaction
// @Tags         transactions
// @Produce      json
// @Param        transactionID  path      string  true  "Transaction ID"
// @Success      200            {object}  domain.Transaction
// @Failure      403            {object}  response.Err
// @Failure      404            {object}  response.Err
// @Failure      500            {object}  response.Err
// @Router       /transactions/{transactionID} [get]
// @Security     BearerAuth
func (h *TransactionHandler) HandleGetTransaction(ctx *gin.Context) {
	actorID, respErr := getUserIDFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	transactionID := ctx.Param("transactionID")

	transaction, err := h.svc.GetTransaction(ctx.Request.Context(), transactionID, actorID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTransactionNotFound):
			response.RenderErr(ctx, response.ErrNotFound("transaction", "id", transactionID))
		case errors.Is(err, service.ErrNotTransactionParty):
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
		default:
			err = fmt.Errorf("HandleGetTransaction -> h.svc.GetTransaction -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, transaction)
}

// HandleGetTransactions godoc
// @Summary      List the caller's transactions
// @Tags         transactions
// @Produce      json
// @Success      200  {array}   domain.Transaction
// @Failure      500  {object}  response.Err
// @Router       /transactions [get]
// @Security     BearerAuth
func (h *TransactionHandler) HandleGetTransactions(ctx *gin.Context) {
	userID, respErr := getUserIDFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	transactions, err := h.svc.GetUserTransactions(ctx.Request.Context(), userID)
	if err != nil {
		err = fmt.Errorf("HandleGetTransactions -> h.svc.GetUserTransactions -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, transactions)
}
