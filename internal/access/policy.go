// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package access decides whether a user may use a given design.
// The decision is a pure predicate over subscription state and is
// re-evaluated on every attempt — subscription state changes
// independently, so authorization results are never cached.
package access

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"kawepla/internal/models"
	"kawepla/internal/store"
)

// CanUseDesign is the pure policy: free designs are open to everyone,
// premium designs require an active PREMIUM subscription at the given
// instant. A nil user or design always denies.
func CanUseDesign(now time.Time, user *models.User, design *models.Design) bool {
	if design == nil {
		return false
	}
	if !design.IsPremium {
		return true
	}
	if user == nil {
		return false
	}
	return user.HasActivePremium(now)
}

// Policy resolves ids against the stores and applies CanUseDesign.
type Policy struct {
	users   *store.UserStore
	designs *store.DesignStore
}

// NewPolicy creates an access policy over the given stores.
func NewPolicy(users *store.UserStore, designs *store.DesignStore) *Policy {
	return &Policy{users: users, designs: designs}
}

// CanUserAccessDesign reports whether the user may use the design.
// Missing users or designs deny rather than erroring; only storage
// failures surface as errors.
func (p *Policy) CanUserAccessDesign(userID, designID uuid.UUID) (bool, error) {
	design, err := p.designs.FindByID(designID)
	if err != nil {
		return false, fmt.Errorf("access check design: %w", err)
	}
	if design == nil {
		return false, nil
	}
	if !design.IsPremium {
		return true, nil
	}

	user, err := p.users.FindByID(userID)
	if err != nil {
		return false, fmt.Errorf("access check user: %w", err)
	}
	return CanUseDesign(time.Now(), user, design), nil
}
