// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/trustkit/internal/validation"
)

// MarkSuspiciousRequest carries the reason for flagging the environment.
type MarkSuspiciousRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// Validate checks if the mark suspicious request is valid.
func (r *MarkSuspiciousRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Reason,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 256),
		),
	)
}
