package domain

import "time"

type NotificationKind string

const (
	NotifyOfferReceived   NotificationKind = "OfferReceived"
	NotifyOfferAccepted   NotificationKind = "OfferAccepted"
	NotifyOfferRejected   NotificationKind = "OfferRejected"
	NotifyOfferCancelled  NotificationKind = "OfferCancelled"
	NotifyDeliveryReady   NotificationKind = "DeliveryReady"
	NotifyDeliveryDone    NotificationKind = "DeliveryCompleted"
	NotifyServiceRequest  NotificationKind = "ServiceRequested"
	NotifyServiceResponse NotificationKind = "ServiceResponded"
	NotifyServiceDone     NotificationKind = "ServiceCompleted"
)

// Notification is a fire-and-forget alert to a user. Delivery failures are
// logged, never surfaced to the caller of the engine.
type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	Kind      NotificationKind `json:"kind"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	ActionRef string           `json:"action_ref"`
	CreatedAt time.Time        `json:"created_at"`
}
