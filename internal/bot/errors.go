package bot

import (
	"errors"

	"marafon/internal/database"
	"marafon/internal/service"
)

// decisionErrorMessage maps a failed approve/reject to the admin alert text.
func decisionErrorMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, database.ErrNotFound):
		return msgPaymentNotFound
	case errors.Is(err, database.ErrAlreadyDecided):
		return msgAlreadyDecided
	case errors.Is(err, service.ErrUnknownReason):
		return msgInvalidReason
	}
	return msgDatabaseError
}

// submitErrorMessage maps a failed receipt submission to the user text.
func submitErrorMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, service.ErrUnknownCourse):
		return msgInvalidInput
	case errors.Is(err, service.ErrNotRegistered):
		return msgUnknownCommand
	}
	return msgSomethingWrong
}
