package apperrors

// appError implements the Error interface
type appError struct {
	msg           string
	base          Error
	wrappedErrors []error
	statuscode    int
	expandError   bool
}

func (e *appError) Error() string {
	return e.msg
}

func (e *appError) ErrorAll() string {
	if !e.expandError {
		return e.msg
	}
	var msg string
	for _, err := range e.wrappedErrors {
		msg += err.Error() + ";"
	}
	if len(msg) > 0 {
		// remove the last ;
		msg = msg[:len(msg)-1]
		msg = e.msg + ": " + msg
	} else {
		msg = e.msg
	}
	return msg
}

func (e *appError) Unwrap() []error {
	return e.wrappedErrors
}

// New returns a child error with the given message. The child matches the
// receiver and all its ancestors under errors.Is.
func (e *appError) New(msg string) Error {
	return &appError{
		msg:         msg,
		statuscode:  e.statuscode,
		expandError: e.expandError,
		base:        e,
	}
}

// Msg returns a child error with the given message. Unlike New, this is the
// call sites' way to annotate a shared base error without mutating it.
func (e *appError) Msg(msg string) Error {
	return e.New(msg)
}

func (e *appError) MsgErr(msg string, err ...error) Error {
	child := e.New(msg).(*appError)
	child.wrappedErrors = append(child.wrappedErrors, err...)
	return child
}

func (e *appError) Err(err ...error) Error {
	child := e.New(e.msg).(*appError)
	child.wrappedErrors = append(child.wrappedErrors, err...)
	return child
}

func (e *appError) Is(target error) bool {
	if e == target || e.base == target {
		return true
	}
	if e.base != nil && e.base.Is(target) {
		return true
	}
	for _, err := range e.wrappedErrors {
		if err == target {
			return true
		}
	}
	return false
}

func (e *appError) SetExpandError(expand bool) Error {
	e.expandError = expand
	return e
}

func (e *appError) SetStatusCode(code int) Error {
	e.statuscode = code
	return e
}

func (e *appError) StatusCode() int {
	return e.statuscode
}

func New(msg string) Error {
	return &appError{
		msg:           msg,
		base:          nil,
		wrappedErrors: nil,
	}
}
