package users

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/taskdeck/taskdeck/internal/auth"
	"github.com/taskdeck/taskdeck/internal/members"
	"github.com/taskdeck/taskdeck/internal/policy"
	"github.com/taskdeck/taskdeck/internal/projects"
)

// ProjectSource provides the project reads the user service needs.
type ProjectSource interface {
	GetByOwner(ctx context.Context, ownerID string) (projects.Project, error)
}

// MembershipSource resolves a user's active project membership.
type MembershipSource interface {
	FindActiveByUser(ctx context.Context, userID string) (members.Membership, error)
}

// Service resolves accounts into token claims. It implements
// auth.CredentialSource.
type Service struct {
	repo        Repository
	projects    ProjectSource
	memberships MembershipSource
}

var _ auth.CredentialSource = (*Service)(nil)

// NewService constructs a user service.
func NewService(repo Repository, projectSource ProjectSource, membershipSource MembershipSource) *Service {
	return &Service{repo: repo, projects: projectSource, memberships: membershipSource}
}

// Verify checks a login attempt. A disabled account fails the same way a
// wrong password does, so callers cannot probe which accounts exist.
func (s *Service) Verify(ctx context.Context, email, password string) (auth.Claims, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return auth.Claims{}, auth.ErrInvalidCredentials
		}
		return auth.Claims{}, err
	}
	if !user.IsActive {
		return auth.Claims{}, auth.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return auth.Claims{}, auth.ErrInvalidCredentials
	}
	projectID, err := s.projectFor(ctx, user)
	if err != nil {
		return auth.Claims{}, err
	}
	return auth.Claims{UserID: user.ID, Role: user.Role, ProjectID: projectID}, nil
}

// Get returns one user.
func (s *Service) Get(ctx context.Context, id string) (User, error) {
	return s.repo.Get(ctx, id)
}

// projectFor binds the claims to the user's project: owners to the project
// they own, employees to their active membership. Superadmins are not bound
// to any project.
func (s *Service) projectFor(ctx context.Context, user User) (string, error) {
	switch policy.ParseRole(user.Role) {
	case policy.RoleOwner:
		project, err := s.projects.GetByOwner(ctx, user.ID)
		if err != nil {
			if errors.Is(err, projects.ErrNotFound) {
				return "", nil
			}
			return "", err
		}
		return project.ID, nil
	case policy.RoleEmployee:
		membership, err := s.memberships.FindActiveByUser(ctx, user.ID)
		if err != nil {
			if errors.Is(err, members.ErrNotFound) {
				return "", nil
			}
			return "", err
		}
		return membership.ProjectID, nil
	default:
		return "", nil
	}
}
