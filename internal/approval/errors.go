package approval

import "github.com/cockroachdb/errors"

var (
	// ErrPageParse is returned when a labelled field is missing from the
	// approval page or holds an unusable value.
	ErrPageParse = errors.New("couldn't parse confirmation page")
	// ErrNotPendingValidation is returned when the referenced certificate is
	// not awaiting validation.
	ErrNotPendingValidation = errors.New("confirmation certificate is not pending validation")
	// ErrNoForm is returned when the approval page has no form to submit.
	ErrNoForm = errors.New("no approval form on confirmation page")
	// ErrNotApproved is returned when the approval phrase is absent from the
	// response to the form submission.
	ErrNotApproved = errors.New("no confirmation of certificate approval")
)
