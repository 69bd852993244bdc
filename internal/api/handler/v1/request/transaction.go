package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type CreatePurchaseRequest struct {
	ProductID string `json:"product_id" binding:"required"`
}

func (req *CreatePurchaseRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.ProductID, validation.Required),
	)
}

type CreateTradeOfferRequest struct {
	ProductID        string `json:"product_id" binding:"required"`
	OfferedProductID string `json:"offered_product_id" binding:"required"`
	Message          string `json:"message"`
}

func (req *CreateTradeOfferRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.ProductID, validation.Required),
		validation.Field(&req.OfferedProductID, validation.Required),
		validation.Field(&req.Message, validation.Length(0, 500)),
	)
}

type RespondToOfferRequest struct {
	Accept *bool `json:"accept" binding:"required"`
}

func (req *RespondToOfferRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Accept, validation.NotNil),
	)
}
