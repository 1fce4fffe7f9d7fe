package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/garyjia/procurement-drafts/internal/application/port"
	"github.com/garyjia/procurement-drafts/internal/domain/draft"
	"github.com/garyjia/procurement-drafts/internal/domain/workflow"
)

func TestUserMessage(t *testing.T) {
	verr := draft.NewValidationError("requester", "is required")
	verr.Add("lines", "needs at least one non-empty line")

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"validation", verr, "Please fix the following: requester is required, lines needs at least one non-empty line."},
		{"invalid_state", &draft.InvalidStateError{Action: "cancel", State: workflow.StateApproved}, "This document is approved and cannot be cancelled."},
		{"rate_lookup", &RateLookupError{From: "USD", To: "THB", Err: errors.New("timeout")}, "Could not fetch the USD/THB exchange rate; the previous rate was kept."},
		{"not_found", &RepositoryError{Op: "load document", Err: fmt.Errorf("id 4: %w", port.ErrNotFound)}, "The document no longer exists."},
		{"repository_message", &RepositoryError{Op: "approve document", Message: "approver lacks authority"}, "Could not approve document: approver lacks authority. Please try again."},
		{"repository", &RepositoryError{Op: "save document", Err: errors.New("EOF")}, "Could not save document. Please try again."},
		{"busy", ErrBusy, "Please wait for the current action to finish."},
		{"closed", fmt.Errorf("set field: %w", ErrSessionClosed), "This editing session has ended. Reopen the document to continue."},
		{"aborted", ErrSaveAborted, "Save cancelled."},
		{"unknown", errors.New("boom"), "Something went wrong. Please try again."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(tt.err))
		})
	}
}

func TestRepositoryError_Unwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := &RepositoryError{Op: "save document", Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "save document: disk full", err.Error())
}
