package repository

import (
	"context"
	"fmt"

	"github.com/swapnest/swapnest-api/internal/domain"
	"github.com/swapnest/swapnest-api/internal/repository/dao"
)

var (
	ErrServiceOfferNotFound   = dao.ErrServiceOfferNotFound
	ErrServiceRequestNotFound = dao.ErrServiceRequestNotFound
	ErrStaleServiceRequest    = dao.ErrStaleServiceRequest
)

type ServiceRequestDAO interface {
	FindOfferByID(ctx context.Context, id string) (dao.ServiceOffer, error)
	Insert(ctx context.Context, request dao.ServiceRequest) (dao.ServiceRequest, error)
	FindByID(ctx context.Context, id string) (dao.ServiceRequest, error)
	UpdateStatusGuarded(ctx context.Context, id, fromStatus, toStatus string) error
}

type ServiceRequestRepository struct {
	dao ServiceRequestDAO
}

func NewServiceRequestRepository(dao ServiceRequestDAO) *ServiceRequestRepository {
	return &ServiceRequestRepository{
		dao: dao,
	}
}

func (r *ServiceRequestRepository) GetOffer(ctx context.Context, id string) (domain.ServiceOffer, error) {
	found, err := r.dao.FindOfferByID(ctx, id)
	if err != nil {
		return domain.ServiceOffer{}, fmt.Errorf("r.dao.FindOfferByID -> %w", err)
	}

	return domain.ServiceOffer{
		ID:              found.ID,
		ProviderID:      found.ProviderID,
		Title:           found.Title,
		TimeCreditValue: found.TimeCreditValue,
		Active:          found.Active,
		CreatedAt:       found.CreatedAt,
		UpdatedAt:       found.UpdatedAt,
	}, nil
}

func (r *ServiceRequestRepository) Create(ctx context.Context, request domain.ServiceRequest) (domain.ServiceRequest, error) {
	created, err := r.dao.Insert(ctx, r.domainToDao(request))
	if err != nil {
		return domain.ServiceRequest{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *ServiceRequestRepository) FindByID(ctx context.Context, id string) (domain.ServiceRequest, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.ServiceRequest{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *ServiceRequestRepository) TransitionStatus(ctx context.Context, id string, from, to domain.ServiceRequestStatus) error {
	if err := r.dao.UpdateStatusGuarded(ctx, id, string(from), string(to)); err != nil {
		return fmt.Errorf("r.dao.UpdateStatusGuarded -> %w", err)
	}

	return nil
}

func (r *ServiceRequestRepository) domainToDao(request domain.ServiceRequest) dao.ServiceRequest {
	return dao.ServiceRequest{
		ID:              request.ID,
		ServiceID:       request.ServiceID,
		ServiceTitle:    request.ServiceTitle,
		RequesterID:     request.RequesterID,
		ProviderID:      request.ProviderID,
		TimeCreditValue: request.TimeCreditValue,
		Status:          string(request.Status),
		CreatedAt:       request.CreatedAt,
		UpdatedAt:       request.UpdatedAt,
	}
}

func (r *ServiceRequestRepository) daoToDomain(request dao.ServiceRequest) domain.ServiceRequest {
	return domain.ServiceRequest{
		ID:              request.ID,
		ServiceID:       request.ServiceID,
		ServiceTitle:    request.ServiceTitle,
		RequesterID:     request.RequesterID,
		ProviderID:      request.ProviderID,
		TimeCreditValue: request.TimeCreditValue,
		Status:          domain.ServiceRequestStatus(request.Status),
		CreatedAt:       request.CreatedAt,
		UpdatedAt:       request.UpdatedAt,
	}
}
