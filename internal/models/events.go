package models

import (
	"time"

	"github.com/google/uuid"
)

// StatusChangedEvent is published after a profile status change commits
type StatusChangedEvent struct {
	EventType string        `json:"event_type"`
	ProfileID uuid.UUID     `json:"profile_id"`
	Variant   Variant       `json:"variant"`
	OwnerID   uuid.UUID     `json:"owner_id"`
	OldStatus ProfileStatus `json:"old_status"`
	NewStatus ProfileStatus `json:"new_status"`
	ActorID   *uuid.UUID    `json:"actor_id,omitempty"`
	Reason    string        `json:"reason"`
	Timestamp time.Time     `json:"timestamp"`
}

// EventStatusChanged is the subject and event type of status change events
const EventStatusChanged = "onboarding.profile.status_changed"
