package draft

import (
	"errors"
	"fmt"

	"github.com/mcdev12/draftcore/go/internal/draft/events"
)

// CoreError is the typed error every Coordinator/Trade Engine operation
// returns on refusal. Code maps directly onto the wire Error payload's
// code field (§6, §7) so the Hub can unicast it without translation.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewCoreError(code, message string) *CoreError {
	return &CoreError{Code: code, Message: message}
}

func ErrUnauthorized(msg string) *CoreError {
	return NewCoreError(events.CodeUnauthorized, msg)
}

func ErrNotYourTurn(msg string) *CoreError {
	return NewCoreError(events.CodeNotYourTurn, msg)
}

func ErrPlayerUnavailable(msg string) *CoreError {
	return NewCoreError(events.CodePlayerUnavailable, msg)
}

func ErrInvalidState(msg string) *CoreError {
	return NewCoreError(events.CodeInvalidState, msg)
}

func ErrTradeNotFound(msg string) *CoreError {
	return NewCoreError(events.CodeTradeNotFound, msg)
}

func ErrTradeExpired(msg string) *CoreError {
	return NewCoreError(events.CodeTradeExpired, msg)
}

func ErrValidationFailed(msg string) *CoreError {
	return NewCoreError(events.CodeValidationFailed, msg)
}

func ErrStorageError(msg string) *CoreError {
	return NewCoreError(events.CodeStorageError, msg)
}

// AsCoreError unwraps err into a *CoreError, defaulting to STORAGE_ERROR
// for anything the Gateway or a dependency returned that wasn't already
// classified — callers at the Hub boundary must always have a code to
// report (§7).
func AsCoreError(err error) *CoreError {
	var ce *CoreError
	if errors.As(err, &ce) {
		return ce
	}
	return ErrStorageError(err.Error())
}
