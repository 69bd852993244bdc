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

type ServiceRequestService interface {
	CreateRequest(ctx context.Context, offerID, requesterID string) (domain.ServiceRequest, error)
	Respond(ctx context.Context, requestID, actorID string, accept bool) (domain.ServiceRequest, error)
	Complete(ctx context.Context, requestID, actorID string) (domain.ServiceRequest, error)
	GetRequest(ctx context.Context, requestID, actorID string) (domain.ServiceRequest, error)
}

type ServiceRequestHandler struct {
	svc ServiceRequestService
}

func NewServiceRequestHandler(svc ServiceRequestService) *ServiceRequestHandler {
	return &ServiceRequestHandler{
		svc: svc,
	}
}

// HandleCreateRequest godoc
// @Summary      Request a time-credit service from its provider
// @Tags         services
// @Produce      json
// @Param        offerID  path      string  true  "service offer id"
// @Success      201      {object}  domain.ServiceRequest
// @Failure      404      {object}  response.Err
// @Failure      422      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /services/offers/{offerID}/requests [post]
// @Security     BearerAuth
func (h *ServiceRequestHandler) HandleCreateRequest(ctx *gin.Context) {
	requesterID, respErr := getUserIDFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	offerID := ctx.Param("offerID")

	serviceRequest, err := h.svc.CreateRequest(ctx.Request.Context(), offerID, requesterID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrServiceOfferNotFound):
			response.RenderErr(ctx, response.ErrNotFound("service offer", "id", offerID))
		case errors.Is(err, service.ErrServiceOfferInactive),
			errors.Is(err, service.ErrSelfServiceRequest):
			response.RenderErr(ctx, response.ErrUnprocessable(err))
		default:
			err = fmt.Errorf("HandleCreateRequest -> h.svc.CreateRequest -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusCreated, serviceRequest)
}

// HandleRespondToRequest godoc
// @Summary      Accept or decline a service request as its provider
// @Tags         services
// @Accept       json
// @Produce      json
// @Param        requestID  path      string                           true  "service request id"
// @Param        request    body      request.RespondToServiceRequest  true  "request body"
// @Success      200        {object}  domain.ServiceRequest
// @Failure      400        {object}  response.Err
// @Failure      403        {object}  response.Err
// @Failure      404        {object}  response.Err
// @Failure      409        {object}  response.Err
// @Failure      500        {object}  response.Err
// @Router       /services/requests/{requestID}/respond [post]
// @Security     BearerAuth
func (h *ServiceRequestHandler) HandleRespondToRequest(ctx *gin.Context) {
	actorID, respErr := getUserIDFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	requestID := ctx.Param("requestID")

	var req request.RespondToServiceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	serviceRequest, err := h.svc.Respond(ctx.Request.Context(), requestID, actorID, *req.Accept)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrServiceRequestNotFound):
			response.RenderErr(ctx, response.ErrNotFound("service request", "id", requestID))
		case errors.Is(err, service.ErrNotAuthorized):
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
		case errors.Is(err, service.ErrRequestClosed):
			response.RenderErr(ctx, response.ErrConflict(err))
		default:
			err = fmt.Errorf("HandleRespondToRequest -> h.svc.Respond -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, serviceRequest)
}

// HandleCompleteRequest godoc
// @Summary      Mark an accepted service as rendered and settle its time credits
// @Tags         services
// @Produce      json
// @Param        requestID  path      string  true  "service request id"
// @Success      200        {object}  domain.ServiceRequest
// @Failure      403        {object}  response.Err
// @Failure      404        {object}  response.Err
// @Failure      409        {object}  response.Err
// @Failure      422        {object}  response.Err
// @Failure      500        {object}  response.Err
// @Router       /services/requests/{requestID}/complete [post]
// @Security     BearerAuth
func (h *ServiceRequestHandler) HandleCompleteRequest(ctx *gin.Context) {
	actorID, respErr := getUserIDFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	requestID := ctx.Param("requestID")

	serviceRequest, err := h.svc.Complete(ctx.Request.Context(), requestID, actorID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrServiceRequestNotFound):
			response.RenderErr(ctx, response.ErrNotFound("service request", "id", requestID))
		case errors.Is(err, service.ErrNotAuthorized):
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
		case errors.Is(err, service.ErrNotAcceptedYet),
			errors.Is(err, service.ErrRequestClosed):
			response.RenderErr(ctx, response.ErrConflict(err))
		case errors.Is(err, service.ErrInsufficientCredits):
			response.RenderErr(ctx, response.ErrUnprocessable(err))
		default:
			err = fmt.Errorf("HandleCompleteRequest -> h.svc.Complete -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, serviceRequest)
}

// HandleGetRequest godoc
// @Summary      Fetch a service request visible to its requester or provider
// @Tags         services
// @Produce      json
// @Param        requestID  path      string  true  "service request id"
// @Success      200        {object}  domain.ServiceRequest
// @Failure      403        {object}  response.Err
// @Failure      404        {object}  response.Err
// @Failure      500        {object}  response.Err
// @Router       /services/requests/{requestID} [get]
// @Security     BearerAuth
func (h *ServiceRequestHandler) HandleGetRequest(ctx *gin.Context) {
	actorID, respErr := getUserIDFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	requestID := ctx.Param("requestID")

	serviceRequest, err := h.svc.GetRequest(ctx.Request.Context(), requestID, actorID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrServiceRequestNotFound):
			response.RenderErr(ctx, response.ErrNotFound("service request", "id", requestID))
		case errors.Is(err, service.ErrNotAuthorized):
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
		default:
			err = fmt.Errorf("HandleGetRequest -> h.svc.GetRequest -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, serviceRequest)
}
