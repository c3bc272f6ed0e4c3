package audit

import "time"

// Event is one append-only audit record. Events are written once and never
// updated or deleted by the policy layer; retention is handled by the purge
// job.
type Event struct {
	ID         string
	ActorID    string
	ProjectID  string
	Action     string
	EntityType string
	EntityID   string
	Details    map[string]any
	IPAddress  string
	UserAgent  string
	At         time.Time
}

// Provenance carries request-level metadata attached to audit events when
// available.
type Provenance struct {
	IPAddress string
	UserAgent string
}

// Denial reasons recorded in the details payload.
const (
	ReasonInsufficientPermissions = "insufficient_permissions"
	ReasonNoResourceAccess        = "no_resource_access"
	ReasonNotResourceOwner        = "not_resource_owner"
	ReasonRoleNotAllowed          = "role_not_allowed"
)

// TimelineFilters narrows a timeline listing.
type TimelineFilters struct {
	From     time.Time
	To       time.Time
	ActorID  string
	Entity   string
	Action   string
	Page     int
	PageSize int
}

// PagingInfo carries simple pagination metadata for the timeline.
type PagingInfo struct {
	Page     int
	PageSize int
	HasNext  bool
	PrevPage int
	NextPage int
}

// Result bundles timeline rows with paging metadata.
type Result struct {
	Events []Event
	Paging PagingInfo
}
