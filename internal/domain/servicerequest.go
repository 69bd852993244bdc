package domain

import "time"

type ServiceRequestStatus string

const (
	RequestPending   ServiceRequestStatus = "Pending"
	RequestAccepted  ServiceRequestStatus = "Accepted"
	RequestDeclined  ServiceRequestStatus = "Declined"
	RequestCompleted ServiceRequestStatus = "Completed"
)

// ServiceOffer is a time-banked service listed by a provider, priced in
// time credits.
type ServiceOffer struct {
	ID              string    `json:"id"`
	ProviderID      string    `json:"provider_id"`
	Title           string    `json:"title"`
	TimeCreditValue int       `json:"time_credit_value"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ServiceRequest is the time-bank analog of a Transaction. TimeCreditValue
// is captured from the offer at request time; completion transfers that
// locked-in value even if the offer is later repriced.
type ServiceRequest struct {
	ID              string               `json:"id"`
	ServiceID       string               `json:"service_id"`
	ServiceTitle    string               `json:"service_title"`
	RequesterID     string               `json:"requester_id"`
	ProviderID      string               `json:"provider_id"`
	TimeCreditValue int                  `json:"time_credit_value"`
	Status          ServiceRequestStatus `json:"status"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

func (r *ServiceRequest) IsTerminal() bool {
	return r.Status == RequestDeclined || r.Status == RequestCompleted
}
