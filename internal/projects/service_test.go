package projects

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskdeck/taskdeck/internal/audit"
	"github.com/taskdeck/taskdeck/internal/shared"
)

type mockRepo struct {
	projects map[string]Project
}

func newMockRepo() *mockRepo {
	return &mockRepo{projects: make(map[string]Project)}
}

func (m *mockRepo) Create(ctx context.Context, project Project) error {
	m.projects[project.ID] = project
	return nil
}

func (m *mockRepo) Get(ctx context.Context, id string) (Project, error) {
	project, ok := m.projects[id]
	if !ok {
		return Project{}, ErrNotFound
	}
	return project, nil
}

func (m *mockRepo) GetByOwner(ctx context.Context, ownerID string) (Project, error) {
	for _, project := range m.projects {
		if project.OwnerID == ownerID {
			return project, nil
		}
	}
	return Project{}, ErrNotFound
}

func (m *mockRepo) Update(ctx context.Context, project Project) error {
	if _, ok := m.projects[project.ID]; !ok {
		return ErrNotFound
	}
	m.projects[project.ID] = project
	return nil
}

func (m *mockRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.projects[id]; !ok {
		return ErrNotFound
	}
	delete(m.projects, id)
	return nil
}

func (m *mockRepo) List(ctx context.Context) ([]Project, error) {
	var out []Project
	for _, project := range m.projects {
		out = append(out, project)
	}
	return out, nil
}

func newTestService() (*Service, *mockRepo) {
	repo := newMockRepo()
	return NewService(repo, audit.NewRecorder(nil, nil, nil)), repo
}

func TestCreateProject(t *testing.T) {
	ctx := context.Background()
	owner := shared.Actor{ID: "owner-1", Role: "OWNER"}

	t.Run("creates an active project", func(t *testing.T) {
		service, repo := newTestService()
		project, err := service.Create(ctx, owner, CreateInput{Name: "  Apollo  ", Category: "dev"})
		require.NoError(t, err)
		assert.Equal(t, "Apollo", project.Name)
		assert.Equal(t, StatusActive, project.Status)
		assert.Equal(t, "owner-1", project.OwnerID)
		assert.Contains(t, repo.projects, project.ID)
	})

	t.Run("one project per owner", func(t *testing.T) {
		service, _ := newTestService()
		_, err := service.Create(ctx, owner, CreateInput{Name: "First"})
		require.NoError(t, err)
		_, err = service.Create(ctx, owner, CreateInput{Name: "Second"})
		assert.ErrorIs(t, err, ErrOwnerHasProject)
	})

	t.Run("blank name rejected", func(t *testing.T) {
		service, _ := newTestService()
		_, err := service.Create(ctx, owner, CreateInput{Name: "  "})
		require.Error(t, err)
	})
}

func TestUpdateProject(t *testing.T) {
	ctx := context.Background()
	owner := shared.Actor{ID: "owner-1", Role: "OWNER"}
	service, _ := newTestService()

	project, err := service.Create(ctx, owner, CreateInput{Name: "Apollo"})
	require.NoError(t, err)

	updated, err := service.Update(ctx, owner, project.ID, UpdateInput{Name: "Artemis", Status: StatusDisabled})
	require.NoError(t, err)
	assert.Equal(t, "Artemis", updated.Name)
	assert.Equal(t, StatusDisabled, updated.Status)

	_, err = service.Update(ctx, owner, project.ID, UpdateInput{Status: "archived"})
	require.Error(t, err)

	_, err = service.Update(ctx, owner, "no-such", UpdateInput{Name: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListProjects(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()

	_, err := service.Create(ctx, shared.Actor{ID: "owner-1", Role: "OWNER"}, CreateInput{Name: "A"})
	require.NoError(t, err)
	_, err = service.Create(ctx, shared.Actor{ID: "owner-2", Role: "OWNER"}, CreateInput{Name: "B"})
	require.NoError(t, err)

	all, err := service.List(ctx, shared.Actor{ID: "root", Role: "SUPERADMIN"})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	own, err := service.List(ctx, shared.Actor{ID: "owner-1", Role: "OWNER"})
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, "A", own[0].Name)

	none, err := service.List(ctx, shared.Actor{ID: "owner-3", Role: "OWNER"})
	require.NoError(t, err)
	assert.Empty(t, none)
}
