package contract

import "errors"

var (
	ErrValidation     = errors.New("validation failed")
	ErrMissingField   = errors.New("required field is missing")
	ErrScoreLookup    = errors.New("credit score lookup failed")
	ErrDocumentRender = errors.New("sanction document generation failed")
	ErrNotApproved    = errors.New("loan is not approved")
)
