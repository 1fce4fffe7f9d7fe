package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/garyjia/procurement-drafts/internal/application/port"
	"github.com/garyjia/procurement-drafts/internal/domain/draft"
)

var (
	// ErrBusy is returned while another save or transition of the same session is running.
	ErrBusy = errors.New("another action is still in progress")

	// ErrSessionClosed is returned by every mutation after Close or a successful save.
	ErrSessionClosed = errors.New("document session is closed")

	// ErrSaveAborted is returned when the confirmer declined a vendor mismatch.
	ErrSaveAborted = errors.New("save aborted")
)

// RepositoryError wraps a failed collaborator call. The draft is unchanged
// when it is returned and the action may be retried.
type RepositoryError struct {
	Op      string
	Message string
	Err     error
}

func (e *RepositoryError) Error() string {
	switch {
	case e.Err != nil && e.Message != "":
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
}

func (e *RepositoryError) Unwrap() error {
	return e.Err
}

// RateLookupError reports a failed exchange-rate fetch. The previous rate stays in place.
type RateLookupError struct {
	From string
	To   string
	Err  error
}

func (e *RateLookupError) Error() string {
	return fmt.Sprintf("exchange rate %s->%s: %v", e.From, e.To, e.Err)
}

func (e *RateLookupError) Unwrap() error {
	return e.Err
}

// UserMessage converts any error returned by a session into text fit for a
// dialog or inline message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var (
		verr  *draft.ValidationError
		serr  *draft.InvalidStateError
		rerr  *RepositoryError
		rlerr *RateLookupError
	)
	switch {
	case errors.As(err, &verr):
		parts := make([]string, 0, len(verr.Fields))
		for _, f := range verr.Fields {
			parts = append(parts, fmt.Sprintf("%s %s", f.Field, f.Message))
		}
		return "Please fix the following: " + strings.Join(parts, ", ") + "."
	case errors.As(err, &serr):
		return fmt.Sprintf("This document is %s and cannot be %s.",
			strings.ToLower(serr.State.String()), pastTense(serr.Action))
	case errors.As(err, &rlerr):
		return fmt.Sprintf("Could not fetch the %s/%s exchange rate; the previous rate was kept.", rlerr.From, rlerr.To)
	case errors.Is(err, port.ErrNotFound):
		return "The document no longer exists."
	case errors.As(err, &rerr):
		if rerr.Message != "" {
			return fmt.Sprintf("Could not %s: %s. Please try again.", rerr.Op, rerr.Message)
		}
		return fmt.Sprintf("Could not %s. Please try again.", rerr.Op)
	case errors.Is(err, ErrBusy):
		return "Please wait for the current action to finish."
	case errors.Is(err, ErrSessionClosed):
		return "This editing session has ended. Reopen the document to continue."
	case errors.Is(err, ErrSaveAborted):
		return "Save cancelled."
	}
	return "Something went wrong. Please try again."
}

func pastTense(action string) string {
	switch strings.ToLower(action) {
	case "submit":
		return "submitted"
	case "approve":
		return "approved"
	case "reject":
		return "rejected"
	case "cancel":
		return "cancelled"
	case "delete":
		return "deleted"
	case "save":
		return "saved"
	}
	return strings.ToLower(action) + "ed"
}
