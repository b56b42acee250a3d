package core

import (
	"errors"
	"testing"
)

func TestOwnerGate_Authorize(t *testing.T) {
	gate := OwnerGate{}
	owner := OwnerRef{UserID: "user_1", OrgID: "org_1"}

	if err := gate.Authorize(Actor{UserID: "user_1"}, owner); err != nil {
		t.Fatalf("expected owning user to be authorized: %v", err)
	}
	if err := gate.Authorize(Actor{UserID: "user_2", OrgID: "org_1"}, owner); err != nil {
		t.Fatalf("expected org member to be authorized: %v", err)
	}

	err := gate.Authorize(Actor{UserID: "user_2", OrgID: "org_2"}, owner)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden error, got: %v", err)
	}
}

func TestOwnerGate_EmptyOrgNeverMatches(t *testing.T) {
	gate := OwnerGate{}
	owner := OwnerRef{UserID: "user_1"}

	err := gate.Authorize(Actor{UserID: "user_2"}, owner)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected two org-less users to be isolated, got: %v", err)
	}
}

func TestOwnerGate_RejectsAnonymousActor(t *testing.T) {
	gate := OwnerGate{}
	err := gate.Authorize(Actor{}, OwnerRef{UserID: "user_1"})
	if !errors.Is(err, ErrInvalidOwner) {
		t.Fatalf("expected invalid owner error, got: %v", err)
	}
}
