package server

import "github.com/greenfelt/pokerengine/pkg/poker"

func forbiddenErrRole(role Role, kind CommandKind) error {
	return poker.ForbiddenError("role %q may not issue %s", role, kind)
}

func validationErrUnknownCommand(kind CommandKind) error {
	return poker.ValidationError("InvalidInput", "unknown command %q", kind)
}

func preconditionErrHandInProgress() error {
	return poker.PreconditionError("WrongState", "a hand is already in progress")
}

func preconditionErrNoHand() error {
	return poker.PreconditionError("WrongState", "table has no hand in progress")
}

func seatNotFoundErr(seatID string) error {
	return poker.PreconditionError("SeatNotFound", "seat %s not found", seatID)
}
