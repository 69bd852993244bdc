package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type GenerateTokenRequest struct {
	ProductID     string `json:"product_id" binding:"required"`
	BuyerID       string `json:"buyer_id" binding:"required"`
	TransactionID string `json:"transaction_id"`
}

func (req *GenerateTokenRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.ProductID, validation.Required),
		validation.Field(&req.BuyerID, validation.Required),
	)
}

type RedeemTokenRequest struct {
	Code string `json:"code" binding:"required"`
}

func (req *RedeemTokenRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Code, validation.Required),
	)
}
