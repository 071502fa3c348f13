// Package moderation holds the status lifecycles of properties and agents. It decides and
// mutates in memory; callers persist the result.
package moderation

import (
	"fmt"

	"dwello-backend/internal/domain"
	"dwello-backend/internal/pkg/apperrors"
	"dwello-backend/internal/pkg/constants"
)

const (
	DefaultApproveStatus = constants.PropertyAvailable
	DefaultRejectStatus  = constants.PropertyRejected
)

var ErrNoPendingEdits = apperrors.NotFound("No pending profile edits")

var propertyTransitions = map[string][]string{
	constants.PropertyPending:   {constants.PropertyAvailable, constants.PropertyRejected},
	constants.PropertyRejected:  {constants.PropertyPending, constants.PropertyAvailable},
	constants.PropertyAvailable: {constants.PropertyRejected, constants.PropertySold, constants.PropertyRented},
	constants.PropertySold:      {constants.PropertyAvailable},
	constants.PropertyRented:    {constants.PropertyAvailable},
}

// PropertyTransition validates moving a property from one status to another. changed is
// false when from == to, which is accepted as a no-op.
func PropertyTransition(from, to string) (changed bool, err error) {
	if !constants.IsValidPropertyStatus(to) {
		return false, apperrors.Validation("Invalid status")
	}
	if from == to {
		return false, nil
	}
	for _, next := range propertyTransitions[from] {
		if next == to {
			return true, nil
		}
	}
	return false, apperrors.Conflict(fmt.Sprintf("Cannot change property status from %s to %s", from, to))
}

// ApproveAgent approves a pending or rejected agent. Staged edits, if any, are merged.
func ApproveAgent(a *domain.Agent) (changed bool, err error) {
	if a.PendingProfileEdits != nil {
		return true, ApproveEdits(a)
	}
	switch a.Status {
	case constants.AgentApproved:
		return false, nil
	case constants.AgentPending, constants.AgentRejected:
		a.Status = constants.AgentApproved
		return true, nil
	}
	return false, apperrors.Conflict("Cannot approve agent with status " + a.Status)
}

// RejectAgent rejects a pending or approved agent. An agent awaiting review of staged
// edits keeps its approval and loses the edits.
func RejectAgent(a *domain.Agent) (changed bool, err error) {
	if a.PendingProfileEdits != nil {
		return true, RejectEdits(a)
	}
	switch a.Status {
	case constants.AgentRejected:
		return false, nil
	case constants.AgentPending, constants.AgentApproved:
		a.Status = constants.AgentRejected
		return true, nil
	}
	return false, apperrors.Conflict("Cannot reject agent with status " + a.Status)
}

// SubmitEdit routes an agent's own profile edit. Approved agents have it staged for review
// (status pending); repeated submissions before review are overlaid on the staged patch.
// Agents never approved have it applied directly; rejected agents have it applied and go
// back to pending. staged reports whether the live fields are untouched.
func SubmitEdit(a *domain.Agent, patch domain.AgentProfile) (staged bool, err error) {
	if patch.IsEmpty() {
		return false, apperrors.Validation("No editable fields provided")
	}
	switch {
	case a.PendingProfileEdits != nil:
		merged := a.PendingProfileEdits.Overlay(patch)
		a.PendingProfileEdits = &merged
		return true, nil
	case a.Status == constants.AgentApproved:
		p := patch
		a.PendingProfileEdits = &p
		a.Status = constants.AgentPending
		return true, nil
	case a.Status == constants.AgentRejected:
		patch.ApplyTo(a)
		a.Status = constants.AgentPending
		return false, nil
	default:
		patch.ApplyTo(a)
		return false, nil
	}
}

// ApproveEdits merges staged edits into the live record and restores approval.
func ApproveEdits(a *domain.Agent) error {
	if a.PendingProfileEdits == nil {
		return ErrNoPendingEdits
	}
	a.PendingProfileEdits.ApplyTo(a)
	a.PendingProfileEdits = nil
	a.Status = constants.AgentApproved
	return nil
}

// RejectEdits discards staged edits and restores approval.
func RejectEdits(a *domain.Agent) error {
	if a.PendingProfileEdits == nil {
		return ErrNoPendingEdits
	}
	a.PendingProfileEdits = nil
	a.Status = constants.AgentApproved
	return nil
}
