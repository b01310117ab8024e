package common

import "errors"

var (
	// ErrTransport covers network and decode failures talking to an upstream.
	ErrTransport = errors.New("upstream transport failure")
	// ErrUpstreamRejection is returned when an upstream answers with a non-success status.
	ErrUpstreamRejection = errors.New("upstream rejected request")
	// ErrPartialMiss marks a key the upstream omitted from an otherwise successful answer.
	ErrPartialMiss = errors.New("upstream returned no answer for key")
	// ErrBackendUnavailable is reported when the cache backend fails its availability check.
	ErrBackendUnavailable = errors.New("cache backend unavailable")
)

// Error represents a standardized error with code and underlying error
type Error struct {
	Err  error  `json:"-"`
	Code string `json:"code"`
}

// NewError creates a new Error instance from an existing error
func NewError(err error, code string) *Error {
	return &Error{
		Err:  err,
		Code: code,
	}
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return ""
}

// Unwrap exposes the underlying error to errors.Is / errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) GetCode() string {
	return e.Code
}

// Describe renders err with the code of the first coded error in its chain,
// e.g. "upstream rejected request: esi affiliation: 502 (3c9e1f72-...)".
func Describe(err error) string {
	var coded *Error
	if errors.As(err, &coded) && coded.GetCode() != "" {
		return err.Error() + " (" + coded.GetCode() + ")"
	}
	return err.Error()
}
