package core

import (
	"fmt"
	"strings"
)

// OwnerGate is the single authorization rule of the module: the requester must
// be the owning user, or share the owning organization. It is applied before
// every read and mutation; storage never filters by requester on its own.
type OwnerGate struct{}

func (OwnerGate) Authorize(actor Actor, owner OwnerRef) error {
	if err := actor.Validate(); err != nil {
		return err
	}
	actorUser := strings.TrimSpace(actor.UserID)
	ownerUser := strings.TrimSpace(owner.UserID)
	if actorUser != "" && actorUser == ownerUser {
		return nil
	}
	actorOrg := strings.TrimSpace(actor.OrgID)
	ownerOrg := strings.TrimSpace(owner.OrgID)
	if actorOrg != "" && actorOrg == ownerOrg {
		return nil
	}
	return fmt.Errorf("%w: user %q", ErrForbidden, actorUser)
}

var _ Authorizer = OwnerGate{}
