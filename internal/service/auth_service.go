package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/nightstudy-service/internal/auth"
	"github.com/spec-kit/nightstudy-service/internal/domain"
	"github.com/spec-kit/nightstudy-service/internal/events"
	"github.com/spec-kit/nightstudy-service/internal/repository"
	apperrors "github.com/spec-kit/nightstudy-service/pkg/util"
)

const (
	maxUsernameLength = 32
	msgSessionExpired = "session expired, log in again"
)

// AuthService coordinates registration, login and the session lifecycle.
type AuthService struct {
	users      repository.UserRepository
	students   repository.StudentRepository
	sessions   *auth.SessionManager
	bcryptCost int
	events     publisher
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	UserRepo    repository.UserRepository
	StudentRepo repository.StudentRepository
	Sessions    *auth.SessionManager
	Dispatcher  events.Dispatcher
	BcryptCost  int
}

// RegisterInput is the account creation payload.
type RegisterInput struct {
	Username  string
	Password  string
	Email     string
	StudentID string
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		students:   deps.StudentRepo,
		sessions:   deps.Sessions,
		bcryptCost: deps.BcryptCost,
		events:     newPublisher(deps.Dispatcher),
	}
}

// Register creates a STUDENT account bound to an existing roster entry.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.StudentID = strings.TrimSpace(in.StudentID)

	if in.Username == "" || in.Password == "" || in.Email == "" || in.StudentID == "" {
		return nil, apperrors.NewValidationError("username, password, email and studentID are required", nil)
	}
	if !domain.ValidStudentID(in.StudentID) {
		return nil, apperrors.NewValidationError("invalid student id", map[string]any{"studentID": in.StudentID})
	}
	if utf8.RuneCountInString(in.Username) > maxUsernameLength {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("username must be at most %d characters", maxUsernameLength), nil)
	}

	if _, err := s.students.GetByID(ctx, in.StudentID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewValidationError("unknown student", map[string]any{"studentID": in.StudentID})
		}
		return nil, err
	}
	if taken, err := s.exists(ctx, s.users.GetByUsername, in.Username); err != nil {
		return nil, err
	} else if taken {
		return nil, apperrors.NewConflict("username already in use", nil)
	}
	if taken, err := s.exists(ctx, s.users.GetByID, in.StudentID); err != nil {
		return nil, err
	} else if taken {
		return nil, apperrors.NewConflict("student id already in use", nil)
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           in.StudentID,
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         domain.RoleStudent,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login checks credentials and issues a fresh token pair.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, domain.TokenPair, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.TokenPair{}, apperrors.NewInvalidCredentials()
	}
	if err != nil {
		return nil, domain.TokenPair{}, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, domain.TokenPair{}, apperrors.NewInvalidCredentials()
	}

	pair, err := s.sessions.Issue(user.Identity())
	if err != nil {
		return nil, domain.TokenPair{}, err
	}

	s.events.publishEvent(ctx, events.Event{
		Type:      events.EventSessionIssued,
		SubjectID: user.ID,
		Actor:     actorOf(user.Identity()),
	})
	return user, pair, nil
}

// Refresh exchanges a refresh token for a new access token. The access token
// carries the account's current role.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", apperrors.NewUnauthorized(msgSessionExpired)
	}
	subjectID, err := s.sessions.RefreshSubject(refreshToken)
	if err != nil {
		return "", apperrors.NewUnauthorized(msgSessionExpired)
	}

	user, err := s.users.GetByID(ctx, subjectID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", apperrors.NewUnauthorized(msgSessionExpired)
	}
	if err != nil {
		return "", err
	}

	access, err := s.sessions.Refresh(ctx, refreshToken, user.Identity())
	if errors.Is(err, auth.ErrExpiredOrInvalidSession) {
		return "", apperrors.NewUnauthorized(msgSessionExpired)
	}
	if err != nil {
		return "", err
	}

	s.events.publishEvent(ctx, events.Event{
		Type:      events.EventSessionRefreshed,
		SubjectID: user.ID,
		Actor:     actorOf(user.Identity()),
	})
	return access, nil
}

// Logout revokes whatever halves of the pair were presented. Expired or foreign
// tokens are still blacklisted; the subject is only used for auditing.
func (s *AuthService) Logout(ctx context.Context, pair domain.TokenPair) error {
	if pair.AccessToken == "" && pair.RefreshToken == "" {
		return nil
	}
	if err := s.sessions.RevokeSession(ctx, pair); err != nil {
		return apperrors.NewDomainError("STORAGE_UNAVAILABLE", "could not end the session, try again",
			http.StatusServiceUnavailable, nil).WithCause(err)
	}

	s.events.publishEvent(ctx, events.Event{
		Type:      events.EventSessionRevoked,
		SubjectID: s.subjectOf(pair),
		Payload: events.SessionRevokedPayload{
			HadAccessToken:  pair.AccessToken != "",
			HadRefreshToken: pair.RefreshToken != "",
		},
	})
	return nil
}

// Me returns the caller's account.
func (s *AuthService) Me(ctx context.Context, subjectID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, subjectID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewNotFound("user", nil)
	}
	return user, err
}

// ListUsers returns one page of accounts.
func (s *AuthService) ListUsers(ctx context.Context, page repository.Page) ([]domain.User, error) {
	return s.users.List(ctx, page)
}

// ChangeRole sets a user's role. Existing access tokens keep the old role until
// they expire; the next refresh picks up the new one.
func (s *AuthService) ChangeRole(ctx context.Context, actor domain.Identity, userID string, role domain.Role) (*domain.User, error) {
	if !role.Valid() {
		return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": int(role)})
	}
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewNotFound("user", map[string]any{"id": userID})
	}
	if err != nil {
		return nil, err
	}

	oldRole := user.Role
	if err := s.users.UpdateRole(ctx, userID, role); err != nil {
		return nil, err
	}
	user.Role = role

	s.events.publishEvent(ctx, events.Event{
		Type:      events.EventRoleChanged,
		SubjectID: userID,
		Actor:     actorOf(actor),
		Payload:   events.RoleChangedPayload{OldRole: oldRole, NewRole: role},
	})
	return user, nil
}

func (s *AuthService) exists(ctx context.Context, get func(context.Context, string) (*domain.User, error), key string) (bool, error) {
	_, err := get(ctx, key)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, pgx.ErrNoRows):
		return false, nil
	default:
		return false, err
	}
}

func (s *AuthService) subjectOf(pair domain.TokenPair) string {
	codec := s.sessions.Codec()
	if claims, err := codec.Verify(pair.AccessToken, auth.TokenAccess); err == nil {
		return claims.SubjectID
	}
	if claims, err := codec.Verify(pair.RefreshToken, auth.TokenRefresh); err == nil {
		return claims.SubjectID
	}
	return ""
}
