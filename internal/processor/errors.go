package processor

import "errors"

// ProcessingError is the single error shape returned by Process. Message is
// safe to show to users.
type ProcessingError struct {
	Message string
	Err     error
}

func (e *ProcessingError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func (e *ProcessingError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newProcessingError(message string, err error) *ProcessingError {
	return &ProcessingError{Message: message, Err: err}
}

// asProcessingError leaves ProcessingErrors untouched and wraps anything
// else, keeping the original message.
func asProcessingError(err error) error {
	if err == nil {
		return nil
	}
	var perr *ProcessingError
	if errors.As(err, &perr) {
		return err
	}
	return &ProcessingError{Message: err.Error(), Err: err}
}
