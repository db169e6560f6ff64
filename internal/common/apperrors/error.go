// Package apperrors defines the error interface used across the edushelf
// services. Errors form chains: an error created from another error via New
// matches its ancestors under errors.Is, which lets packages export a small
// set of base errors and refine them with messages and status codes.
package apperrors

type Error interface {
	Error() string
	ErrorAll() string
	New(msg string) Error
	MsgErr(msg string, err ...error) Error
	Msg(msg string) Error
	Err(err ...error) Error
	Unwrap() []error
	Is(target error) bool
	SetExpandError(expand bool) Error
	SetStatusCode(code int) Error
	StatusCode() int
}
