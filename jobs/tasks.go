package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"

	// TaskTypeTaskAssigned fans out a notification when a task is assigned.
	TaskTypeTaskAssigned = "notify:task_assigned"
	// TaskTypeTaskStatusChanged notifies the project owner of a status change.
	TaskTypeTaskStatusChanged = "notify:task_status"
	// TaskTypeInviteEmail delivers a project invitation email.
	TaskTypeInviteEmail = "mail:invite"
	// TaskTypeAuditPurge trims audit logs past the retention window.
	TaskTypeAuditPurge = "audit:purge"
)

// TaskAssignedPayload describes a task assignment fan-out.
type TaskAssignedPayload struct {
	TaskID     string `json:"task_id"`
	ProjectID  string `json:"project_id"`
	AssignedTo string `json:"assigned_to"`
	Title      string `json:"title"`
}

// NewTaskAssignedTask constructs the Asynq task.
func NewTaskAssignedTask(payload TaskAssignedPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeTaskAssigned, data), nil
}

// TaskStatusChangedPayload describes a status-change fan-out to the owner.
type TaskStatusChangedPayload struct {
	TaskID    string `json:"task_id"`
	ProjectID string `json:"project_id"`
	OwnerID   string `json:"owner_id"`
	Title     string `json:"title"`
	Status    string `json:"status"`
	ChangedBy string `json:"changed_by"`
}

// NewTaskStatusChangedTask constructs the Asynq task.
func NewTaskStatusChangedTask(payload TaskStatusChangedPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeTaskStatusChanged, data), nil
}

// InviteEmailPayload describes an invitation email delivery.
type InviteEmailPayload struct {
	Email       string `json:"email"`
	Token       string `json:"token"`
	ProjectName string `json:"project_name"`
}

// NewInviteEmailTask constructs the Asynq task.
func NewInviteEmailTask(payload InviteEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeInviteEmail, data), nil
}

// AuditPurgePayload carries the retention window for the purge job.
type AuditPurgePayload struct {
	RetentionDays int `json:"retention_days"`
}

// NewAuditPurgeTask constructs the Asynq task.
func NewAuditPurgeTask(payload AuditPurgePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeAuditPurge, data), nil
}

// Enqueuer is the slice of asynq.Client the services need.
type Enqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}
