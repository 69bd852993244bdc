package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type RespondToServiceRequest struct {
	Accept *bool `json:"accept" binding:"required"`
}

func (req *RespondToServiceRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Accept, validation.NotNil),
	)
}
