package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/swapnest/swapnest-api/internal/domain"
	"github.com/swapnest/swapnest-api/internal/metrics"
	"github.com/swapnest/swapnest-api/internal/repository"
)

var (
	ErrServiceOfferNotFound   = repository.ErrServiceOfferNotFound
	ErrServiceRequestNotFound = repository.ErrServiceRequestNotFound
	ErrServiceOfferInactive   = errors.New("service offer is not active")
	ErrSelfServiceRequest     = errors.New("cannot request your own service")
	ErrNotAuthorized          = errors.New("user may not act on this service request")
	ErrNotAcceptedYet         = errors.New("service request has not been accepted")
	ErrRequestClosed          = errors.New("service request is already closed")
)

type ServiceRequestRepository interface {
	GetOffer(ctx context.Context, id string) (domain.ServiceOffer, error)
	Create(ctx context.Context, request domain.ServiceRequest) (domain.ServiceRequest, error)
	FindByID(ctx context.Context, id string) (domain.ServiceRequest, error)
	TransitionStatus(ctx context.Context, id string, from, to domain.ServiceRequestStatus) error
}

// ServiceRequestService runs the time-bank flow: request a service, provider
// accepts or declines, completion moves the credit value that was locked in
// at request time.
type ServiceRequestService struct {
	repo     ServiceRequestRepository
	ledger   *LedgerService
	notifier Notifier
}

func NewServiceRequestService(repo ServiceRequestRepository, ledger *LedgerService, notifier Notifier) *ServiceRequestService {
	return &ServiceRequestService{
		repo:     repo,
		ledger:   ledger,
		notifier: notifier,
	}
}

// CreateRequest opens a Pending request and snapshots the offer's current
// TimeCreditValue. Later repricing of the offer never changes what an
// in-flight request will transfer.
func (s *ServiceRequestService) CreateRequest(ctx context.Context, offerID, requesterID string) (domain.ServiceRequest, error) {
	offer, err := s.repo.GetOffer(ctx, offerID)
	if err != nil {
		return domain.ServiceRequest{}, fmt.Errorf("s.repo.GetOffer -> %w", err)
	}

	if !offer.Active {
		return domain.ServiceRequest{}, ErrServiceOfferInactive
	}
	if offer.ProviderID == requesterID {
		return domain.ServiceRequest{}, ErrSelfServiceRequest
	}

	now := time.Now()
	created, err := s.repo.Create(ctx, domain.ServiceRequest{
		ID:              uuid.NewString(),
		ServiceID:       offer.ID,
		ServiceTitle:    offer.Title,
		RequesterID:     requesterID,
		ProviderID:      offer.ProviderID,
		TimeCreditValue: offer.TimeCreditValue,
		Status:          domain.RequestPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if err != nil {
		return domain.ServiceRequest{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	s.notifier.Notify(ctx, created.ProviderID, domain.NotifyServiceRequest,
		"Service requested",
		fmt.Sprintf("Someone requested %q for %d credits", created.ServiceTitle, created.TimeCreditValue),
		serviceRequestRef(created.ID))

	return created, nil
}

// Respond lets the provider accept or decline a Pending request. Responding
// to an already Accepted or Completed request is a no-op success.
func (s *ServiceRequestService) Respond(ctx context.Context, requestID, actorID string, accept bool) (domain.ServiceRequest, error) {
	request, err := s.repo.FindByID(ctx, requestID)
	if err != nil {
		return domain.ServiceRequest{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if request.ProviderID != actorID {
		return domain.ServiceRequest{}, ErrNotAuthorized
	}

	switch request.Status {
	case domain.RequestAccepted, domain.RequestCompleted:
		return request, nil
	case domain.RequestDeclined:
		return domain.ServiceRequest{}, ErrRequestClosed
	}

	target := domain.RequestAccepted
	kind := domain.NotifyServiceResponse
	message := fmt.Sprintf("Your request for %q was accepted", request.ServiceTitle)
	if !accept {
		target = domain.RequestDeclined
		message = fmt.Sprintf("Your request for %q was declined", request.ServiceTitle)
	}

	err = s.repo.TransitionStatus(ctx, request.ID, domain.RequestPending, target)
	if err != nil {
		if errors.Is(err, repository.ErrStaleServiceRequest) {
			current, rerr := s.repo.FindByID(ctx, requestID)
			if rerr != nil {
				return domain.ServiceRequest{}, fmt.Errorf("s.repo.FindByID -> %w", rerr)
			}
			if current.Status == domain.RequestAccepted || current.Status == domain.RequestCompleted {
				return current, nil
			}
			return domain.ServiceRequest{}, ErrRequestClosed
		}
		return domain.ServiceRequest{}, fmt.Errorf("s.repo.TransitionStatus -> %w", err)
	}

	request.Status = target
	request.UpdatedAt = time.Now()

	s.notifier.Notify(ctx, request.RequesterID, kind, "Service request update", message,
		serviceRequestRef(request.ID))

	return request, nil
}

// Complete settles an Accepted request: the provider confirms the service
// happened and the locked-in credit value moves requester -> provider. The
// status flip wins the completion race exactly once; a failed transfer rolls
// the request back to Accepted.
func (s *ServiceRequestService) Complete(ctx context.Context, requestID, actorID string) (domain.ServiceRequest, error) {
	request, err := s.repo.FindByID(ctx, requestID)
	if err != nil {
		return domain.ServiceRequest{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if request.ProviderID != actorID {
		return domain.ServiceRequest{}, ErrNotAuthorized
	}
	if request.Status == domain.RequestPending {
		return domain.ServiceRequest{}, ErrNotAcceptedYet
	}
	if request.Status != domain.RequestAccepted {
		return domain.ServiceRequest{}, ErrRequestClosed
	}

	err = s.repo.TransitionStatus(ctx, request.ID, domain.RequestAccepted, domain.RequestCompleted)
	if err != nil {
		if errors.Is(err, repository.ErrStaleServiceRequest) {
			return domain.ServiceRequest{}, ErrRequestClosed
		}
		return domain.ServiceRequest{}, fmt.Errorf("s.repo.TransitionStatus -> %w", err)
	}

	reason := fmt.Sprintf("service %q completed", request.ServiceTitle)
	if err = s.ledger.Transfer(ctx, request.RequesterID, request.ProviderID, request.TimeCreditValue, reason); err != nil {
		if rbErr := s.repo.TransitionStatus(ctx, request.ID, domain.RequestCompleted, domain.RequestAccepted); rbErr != nil {
			metrics.CompensationsFailed.Inc()
			zap.L().Error("failed to roll back completion after transfer failure",
				zap.String("request_id", request.ID),
				zap.Error(rbErr))
		}
		return domain.ServiceRequest{}, fmt.Errorf("s.ledger.Transfer -> %w", err)
	}

	request.Status = domain.RequestCompleted
	request.UpdatedAt = time.Now()

	s.notifier.Notify(ctx, request.RequesterID, domain.NotifyServiceDone,
		"Service completed",
		fmt.Sprintf("%d credits were transferred for %q", request.TimeCreditValue, request.ServiceTitle),
		serviceRequestRef(request.ID))

	return request, nil
}

func (s *ServiceRequestService) GetRequest(ctx context.Context, requestID, actorID string) (domain.ServiceRequest, error) {
	request, err := s.repo.FindByID(ctx, requestID)
	if err != nil {
		return domain.ServiceRequest{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if request.ProviderID != actorID && request.RequesterID != actorID {
		return domain.ServiceRequest{}, ErrNotAuthorized
	}

	return request, nil
}

func serviceRequestRef(requestID string) string {
	return "/services/requests/" + requestID
}
