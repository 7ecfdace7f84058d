// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/trustkit/internal/validation"
)

// StoreRecordRequest contains the parameters for storing a record. The key is
// extracted from the URL parameter, not the request body. Value is
// base64-encoded. When UserID is set the record is stored with a per-user
// integrity tag.
type StoreRecordRequest struct {
	Value  string `json:"value" binding:"required"`
	UserID string `json:"user_id"`
}

// Validate checks if the store record request is valid.
func (r *StoreRecordRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Value,
			validation.Required,
			customValidation.Base64,
		),
		validation.Field(&r.UserID,
			customValidation.UserID,
		),
	)
}
