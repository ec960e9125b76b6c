package notify

import (
	"time"
)

// EventKind identifies the notification template to render.
type EventKind string

const (
	// EventPresentationShared tells a user a presentation was shared
	// with them via an explicit grant.
	EventPresentationShared EventKind = "presentation-shared"

	// EventLinkIssued tells an owner a share link for their
	// presentation was created.
	EventLinkIssued EventKind = "link-issued"
)

// Event is an informational notification emitted after a successful
// mutation. Delivery is fire-and-forget and never required for the
// authorization decision to be correct.
type Event struct {
	Kind              EventKind
	RecipientEmail    string
	RecipientName     string
	PresentationTitle string
	ActorName         string
	AccessLevel       string
	LinkURL           string
	OccurredAt        time.Time
}
