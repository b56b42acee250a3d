package command

import (
	"context"
	"testing"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-connections/core"
)

func TestCreateCredentialMessage_ValidateReturnsRichError(t *testing.T) {
	err := (CreateCredentialMessage{}).Validate()
	if err == nil {
		t.Fatalf("expected validation error")
	}

	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryValidation {
		t.Fatalf("expected validation category, got %q", rich.Category)
	}
	if rich.TextCode != core.ConnectionsErrorBadInput {
		t.Fatalf("expected %q text code, got %q", core.ConnectionsErrorBadInput, rich.TextCode)
	}
}

func TestCreateCredentialCommand_NilServiceReturnsRichError(t *testing.T) {
	var cmd *CreateCredentialCommand
	err := cmd.Execute(context.Background(), CreateCredentialMessage{})
	if err == nil {
		t.Fatalf("expected command dependency error")
	}

	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryInternal {
		t.Fatalf("expected internal category, got %q", rich.Category)
	}
}
