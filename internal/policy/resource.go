package policy

// ResourceType enumerates the closed set of addressable entities subject to
// instance-level checks.
type ResourceType string

const (
	ResourceProject      ResourceType = "project"
	ResourceTask         ResourceType = "task"
	ResourceComment      ResourceType = "comment"
	ResourceMember       ResourceType = "member"
	ResourceInvite       ResourceType = "invite"
	ResourceNotification ResourceType = "notification"
	ResourceAudit        ResourceType = "audit"
)

// TaskSummary carries the minimal task fields the resolvers read.
type TaskSummary struct {
	ID         string
	ProjectID  string
	AssignedTo string
	CreatedBy  string
}

// CommentSummary carries the minimal comment fields the resolvers read.
type CommentSummary struct {
	ID       string
	TaskID   string
	AuthorID string
}

// ProjectSummary carries the minimal project fields the resolvers read.
type ProjectSummary struct {
	ID      string
	OwnerID string
}

// NotificationSummary carries the minimal notification fields the resolvers
// read.
type NotificationSummary struct {
	ID     string
	UserID string
}
