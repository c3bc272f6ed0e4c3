package tasks

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskdeck/taskdeck/internal/audit"
	"github.com/taskdeck/taskdeck/internal/projects"
	"github.com/taskdeck/taskdeck/internal/shared"
	"github.com/taskdeck/taskdeck/jobs"
)

type mockRepo struct {
	tasks map[string]Task
}

func newMockRepo() *mockRepo {
	return &mockRepo{tasks: make(map[string]Task)}
}

func (m *mockRepo) Create(ctx context.Context, task Task) error {
	m.tasks[task.ID] = task
	return nil
}

func (m *mockRepo) Get(ctx context.Context, id string) (Task, error) {
	task, ok := m.tasks[id]
	if !ok {
		return Task{}, ErrNotFound
	}
	return task, nil
}

func (m *mockRepo) Update(ctx context.Context, task Task) error {
	if _, ok := m.tasks[task.ID]; !ok {
		return ErrNotFound
	}
	m.tasks[task.ID] = task
	return nil
}

func (m *mockRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.tasks[id]; !ok {
		return ErrNotFound
	}
	delete(m.tasks, id)
	return nil
}

func (m *mockRepo) ListByProject(ctx context.Context, projectID string) ([]Task, error) {
	var out []Task
	for _, task := range m.tasks {
		if task.ProjectID == projectID {
			out = append(out, task)
		}
	}
	return out, nil
}

func (m *mockRepo) ListByAssignee(ctx context.Context, userID string) ([]Task, error) {
	var out []Task
	for _, task := range m.tasks {
		if task.AssignedTo == userID {
			out = append(out, task)
		}
	}
	return out, nil
}

func (m *mockRepo) ListAll(ctx context.Context) ([]Task, error) {
	var out []Task
	for _, task := range m.tasks {
		out = append(out, task)
	}
	return out, nil
}

type mockProjects struct {
	projects map[string]projects.Project
}

func (m *mockProjects) Get(ctx context.Context, id string) (projects.Project, error) {
	project, ok := m.projects[id]
	if !ok {
		return projects.Project{}, projects.ErrNotFound
	}
	return project, nil
}

type mockEnqueuer struct {
	mu    sync.Mutex
	tasks []*asynq.Task
}

func (m *mockEnqueuer) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = append(m.tasks, task)
	return &asynq.TaskInfo{}, nil
}

func (m *mockEnqueuer) byType(taskType string) []*asynq.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*asynq.Task
	for _, task := range m.tasks {
		if task.Type() == taskType {
			out = append(out, task)
		}
	}
	return out
}

func newTestService() (*Service, *mockRepo, *mockEnqueuer) {
	repo := newMockRepo()
	projectSource := &mockProjects{projects: map[string]projects.Project{
		"proj-1": {ID: "proj-1", Name: "Apollo", OwnerID: "owner-1"},
	}}
	enqueuer := &mockEnqueuer{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	recorder := audit.NewRecorder(nil, logger, nil)
	return NewService(repo, projectSource, enqueuer, recorder, logger), repo, enqueuer
}

func TestCreateTask(t *testing.T) {
	ctx := context.Background()
	owner := shared.Actor{ID: "owner-1", Role: "OWNER", ProjectID: "proj-1"}

	t.Run("owner creates in own project", func(t *testing.T) {
		service, repo, _ := newTestService()
		task, err := service.Create(ctx, owner, CreateInput{ProjectID: "proj-1", Title: "  Ship it  "})
		require.NoError(t, err)
		assert.Equal(t, "Ship it", task.Title)
		assert.Equal(t, StatusPending, task.Status)
		assert.Equal(t, PriorityMedium, task.Priority)
		assert.Equal(t, "owner-1", task.CreatedBy)
		assert.Contains(t, repo.tasks, task.ID)
	})

	t.Run("owner cannot create in another project", func(t *testing.T) {
		service, _, _ := newTestService()
		other := shared.Actor{ID: "owner-2", Role: "OWNER"}
		_, err := service.Create(ctx, other, CreateInput{ProjectID: "proj-1", Title: "Sneaky"})
		assert.ErrorIs(t, err, ErrProjectMismatch)
	})

	t.Run("superadmin creates anywhere", func(t *testing.T) {
		service, _, _ := newTestService()
		root := shared.Actor{ID: "root", Role: "SUPERADMIN"}
		_, err := service.Create(ctx, root, CreateInput{ProjectID: "proj-1", Title: "Fine"})
		require.NoError(t, err)
	})

	t.Run("blank title rejected", func(t *testing.T) {
		service, _, _ := newTestService()
		_, err := service.Create(ctx, owner, CreateInput{ProjectID: "proj-1", Title: "   "})
		require.Error(t, err)
	})

	t.Run("invalid priority rejected", func(t *testing.T) {
		service, _, _ := newTestService()
		_, err := service.Create(ctx, owner, CreateInput{ProjectID: "proj-1", Title: "x", Priority: "asap"})
		require.Error(t, err)
	})

	t.Run("assignment on create enqueues a notification", func(t *testing.T) {
		service, _, enqueuer := newTestService()
		task, err := service.Create(ctx, owner, CreateInput{ProjectID: "proj-1", Title: "Review", AssignedTo: "emp-1"})
		require.NoError(t, err)

		queued := enqueuer.byType(jobs.TaskTypeTaskAssigned)
		require.Len(t, queued, 1)
		var payload jobs.TaskAssignedPayload
		require.NoError(t, json.Unmarshal(queued[0].Payload(), &payload))
		assert.Equal(t, task.ID, payload.TaskID)
		assert.Equal(t, "emp-1", payload.AssignedTo)
	})
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()
	owner := shared.Actor{ID: "owner-1", Role: "OWNER", ProjectID: "proj-1"}
	employee := shared.Actor{ID: "emp-1", Role: "EMPLOYEE", ProjectID: "proj-1"}

	t.Run("done stamps completion", func(t *testing.T) {
		service, _, _ := newTestService()
		task, err := service.Create(ctx, owner, CreateInput{ProjectID: "proj-1", Title: "Finish"})
		require.NoError(t, err)

		updated, err := service.UpdateStatus(ctx, owner, task.ID, StatusDone)
		require.NoError(t, err)
		assert.Equal(t, StatusDone, updated.Status)
		require.NotNil(t, updated.CompletedAt)

		// Moving away from done clears the stamp.
		updated, err = service.UpdateStatus(ctx, owner, task.ID, StatusInProgress)
		require.NoError(t, err)
		assert.Nil(t, updated.CompletedAt)
	})

	t.Run("invalid status rejected", func(t *testing.T) {
		service, _, _ := newTestService()
		task, err := service.Create(ctx, owner, CreateInput{ProjectID: "proj-1", Title: "x"})
		require.NoError(t, err)
		_, err = service.UpdateStatus(ctx, owner, task.ID, "finished")
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})

	t.Run("employee change notifies the owner", func(t *testing.T) {
		service, _, enqueuer := newTestService()
		task, err := service.Create(ctx, owner, CreateInput{ProjectID: "proj-1", Title: "x", AssignedTo: "emp-1"})
		require.NoError(t, err)

		_, err = service.UpdateStatus(ctx, employee, task.ID, StatusInProgress)
		require.NoError(t, err)

		queued := enqueuer.byType(jobs.TaskTypeTaskStatusChanged)
		require.Len(t, queued, 1)
		var payload jobs.TaskStatusChangedPayload
		require.NoError(t, json.Unmarshal(queued[0].Payload(), &payload))
		assert.Equal(t, "owner-1", payload.OwnerID)
		assert.Equal(t, StatusInProgress, payload.Status)
		assert.Equal(t, "emp-1", payload.ChangedBy)
	})

	t.Run("owner change does not notify themselves", func(t *testing.T) {
		service, _, enqueuer := newTestService()
		task, err := service.Create(ctx, owner, CreateInput{ProjectID: "proj-1", Title: "x"})
		require.NoError(t, err)

		_, err = service.UpdateStatus(ctx, owner, task.ID, StatusBlocked)
		require.NoError(t, err)
		assert.Empty(t, enqueuer.byType(jobs.TaskTypeTaskStatusChanged))
	})
}

func TestAssign(t *testing.T) {
	ctx := context.Background()
	owner := shared.Actor{ID: "owner-1", Role: "OWNER", ProjectID: "proj-1"}
	service, repo, enqueuer := newTestService()

	task, err := service.Create(ctx, owner, CreateInput{ProjectID: "proj-1", Title: "x"})
	require.NoError(t, err)

	assigned, err := service.Assign(ctx, owner, task.ID, "emp-2")
	require.NoError(t, err)
	assert.Equal(t, "emp-2", assigned.AssignedTo)
	assert.Equal(t, "emp-2", repo.tasks[task.ID].AssignedTo)
	assert.Len(t, enqueuer.byType(jobs.TaskTypeTaskAssigned), 1)

	_, err = service.Assign(ctx, owner, task.ID, "")
	require.Error(t, err)
}

func TestListScopedByRole(t *testing.T) {
	ctx := context.Background()
	owner := shared.Actor{ID: "owner-1", Role: "OWNER", ProjectID: "proj-1"}
	service, _, _ := newTestService()

	first, err := service.Create(ctx, owner, CreateInput{ProjectID: "proj-1", Title: "a", AssignedTo: "emp-1"})
	require.NoError(t, err)
	_, err = service.Create(ctx, owner, CreateInput{ProjectID: "proj-1", Title: "b"})
	require.NoError(t, err)

	all, err := service.List(ctx, shared.Actor{ID: "root", Role: "SUPERADMIN"})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	owned, err := service.List(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, owned, 2)

	mine, err := service.List(ctx, shared.Actor{ID: "emp-1", Role: "EMPLOYEE"})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, first.ID, mine[0].ID)

	none, err := service.List(ctx, shared.Actor{ID: "x", Role: "INTERN"})
	require.NoError(t, err)
	assert.Empty(t, none)
}
