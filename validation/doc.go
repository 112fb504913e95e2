// Package validation validates configuration and request structs using
// go-playground/validator struct tags and reports failures as AppErrors.
//
//	type AttributeRequest struct {
//	    Raw       string  `json:"raw" validate:"required"`
//	    Threshold float64 `json:"threshold" validate:"gte=0,lte=1"`
//	}
//	err := validation.Validate(req)
package validation
