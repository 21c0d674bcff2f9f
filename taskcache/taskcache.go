package taskcache

import (
	"encoding/json"
	"errors"
)

// Common errors.
var (
	// ErrTaskNotFound indicates the requested task is not in the cache.
	ErrTaskNotFound = errors.New("task not found")

	// ErrInvalidPayload indicates a task payload could not be decoded.
	ErrInvalidPayload = errors.New("invalid task payload")
)

// Task is a normalized task record. The review core only ever inspects
// the id, the status, and the review claim; remaining fields ride along
// for display.
type Task struct {
	// ID is the unique task identifier.
	ID int64 `json:"id"`

	// Name is the task display name.
	Name string `json:"name"`

	// Parent is the owning challenge id.
	Parent int64 `json:"parent"`

	// Status is the task's review status.
	Status string `json:"status"`

	// ReviewClaimedBy is the user currently holding the review claim,
	// nil when unclaimed.
	ReviewClaimedBy *int64 `json:"reviewClaimedBy"`
}

// Patch is a partial task record for field-level merge. Nil pointer
// fields are absent and preserve the cached value; the claim field uses
// RefPatch so an explicit null (clear the claim) stays distinct from an
// absent field (keep the claim).
type Patch struct {
	ID              int64
	Name            *string
	Parent          *int64
	Status          *string
	ReviewClaimedBy RefPatch
}

// RefPatch is a three-state patch for a nullable user reference:
// absent (Set false), explicit null (Set true, ID nil), or a user id.
type RefPatch struct {
	Set bool
	ID  *int64
}

// Ref builds a patch that sets the claim to the given user.
func Ref(id int64) RefPatch {
	return RefPatch{Set: true, ID: &id}
}

// NullRef builds a patch that explicitly clears the claim. Merging an
// absent field would preserve a stale claim; this is the normalization
// the cancel-claim flow depends on.
func NullRef() RefPatch {
	return RefPatch{Set: true}
}

// StatusPatch builds a minimal patch carrying only a status change, the
// shape used for optimistic review status updates.
func StatusPatch(id int64, status string) Patch {
	return Patch{ID: id, Status: &status}
}

// PatchFromJSON decodes a server task payload into a Patch, detecting
// which fields the payload actually carried. An absent reviewClaimedBy
// key yields Set=false; a JSON null yields an explicit null.
func PatchFromJSON(data []byte) (Patch, error) {
	var raw struct {
		ID              int64   `json:"id"`
		Name            *string `json:"name"`
		Parent          *int64  `json:"parent"`
		Status          *string `json:"status"`
		ReviewClaimedBy *int64  `json:"reviewClaimedBy"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Patch{}, ErrInvalidPayload
	}
	if raw.ID == 0 {
		return Patch{}, ErrInvalidPayload
	}

	// A second decode into a key set distinguishes "absent" from "null".
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return Patch{}, ErrInvalidPayload
	}

	patch := Patch{
		ID:     raw.ID,
		Name:   raw.Name,
		Parent: raw.Parent,
		Status: raw.Status,
	}
	if _, present := keys["reviewClaimedBy"]; present {
		patch.ReviewClaimedBy = RefPatch{Set: true, ID: raw.ReviewClaimedBy}
	}
	return patch, nil
}
