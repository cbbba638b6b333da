package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nasihat/dashboard-api/internal/domain/entity"
	repo "github.com/nasihat/dashboard-api/internal/domain/repository"
	"github.com/nasihat/dashboard-api/internal/oauth"
	"github.com/nasihat/dashboard-api/pkg/helpers"
	"github.com/nasihat/dashboard-api/pkg/mailer"
)

// Error taxonomy surfaced to the HTTP layer. Raw storage or network errors
// never leave this package unwrapped.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrProviderMismatch   = errors.New("account uses a different sign-in provider")
	ErrAccountConflict    = errors.New("email already registered with another provider")
	ErrInvalidToken       = errors.New("invalid token")
	ErrRepository         = errors.New("repository failure")
)

// Publisher is the queue seam for best-effort notification emails.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// AuthService implements the authentication use-cases: credential
// login-or-register, OAuth callback handling, current-user lookup, token
// refresh, and logout. It owns the business rules around when a user
// record is created; storage itself stays behind the repository.
type AuthService struct {
	Repo   repo.UserRepository
	JWT    *helpers.JWTManager
	Logger *logrus.Logger
	Pub    Publisher // optional
}

// AuthResult is what every successful authentication path returns.
type AuthResult struct {
	User        entity.User
	Token       string
	TokenExpiry time.Time
	IsNewUser   bool
}

func NewAuthService(repo repo.UserRepository, jwt *helpers.JWTManager, logger *logrus.Logger, pub Publisher) *AuthService {
	return &AuthService{Repo: repo, JWT: jwt, Logger: logger, Pub: pub}
}

// LoginOrRegister verifies the credentials of an existing email-provider
// user, or silently registers a fresh account when the email is unknown.
// There is no separate registration endpoint. Login attempts against an
// account created through an OAuth provider are rejected with
// ErrProviderMismatch rather than bypassing the password check.
func (s *AuthService) LoginOrRegister(ctx context.Context, email, password, name string) (*AuthResult, error) {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepository, err)
	}

	if u != nil {
		return s.loginExisting(u, password)
	}

	res, err := s.register(ctx, email, password, name)
	if errors.Is(err, repo.ErrEmailTaken) {
		// Lost a registration race: someone created this email between the
		// lookup and the insert. Resolve it as a plain login attempt.
		u, lerr := s.Repo.GetByEmail(ctx, email)
		if lerr != nil || u == nil {
			return nil, fmt.Errorf("%w: %v", ErrRepository, lerr)
		}
		return s.loginExisting(u, password)
	}
	return res, err
}

func (s *AuthService) loginExisting(u *entity.User, password string) (*AuthResult, error) {
	if u.Provider != entity.ProviderEmail {
		return nil, ErrProviderMismatch
	}
	if !helpers.CompareHashAndPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return s.issue(u, false)
}

func (s *AuthService) register(ctx context.Context, email, password, name string) (*AuthResult, error) {
	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepository, err)
	}
	if name == "" {
		name = NameFromEmail(email)
	}
	u := &entity.User{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Provider:     entity.ProviderEmail,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrEmailTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrRepository, err)
	}

	s.enqueueEmail(ctx, mailer.EmailJob{
		To:       u.Email,
		Template: mailer.TemplateWelcome,
		Data:     map[string]any{"Name": u.Name},
	})

	return s.issue(u, true)
}

// HandleOAuthCallback logs in or registers a user from a verified provider
// profile. An unknown provider identity whose email already belongs to a
// different account is rejected; accounts are never silently linked.
// Repeat logins do not refresh the stored profile.
func (s *AuthService) HandleOAuthCallback(ctx context.Context, p *oauth.Profile) (*AuthResult, error) {
	u, err := s.Repo.GetByProvider(ctx, p.Provider, p.ExternalID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepository, err)
	}
	if u != nil {
		return s.issue(u, false)
	}

	existing, err := s.Repo.GetByEmail(ctx, p.Email)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepository, err)
	}
	if existing != nil {
		return nil, ErrAccountConflict
	}

	u = &entity.User{
		Email:      p.Email,
		Name:       p.Name,
		Avatar:     p.Avatar,
		Provider:   p.Provider,
		ProviderID: p.ExternalID,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrEmailTaken) {
			return nil, ErrAccountConflict
		}
		return nil, fmt.Errorf("%w: %v", ErrRepository, err)
	}

	s.enqueueEmail(ctx, mailer.EmailJob{
		To:       u.Email,
		Template: mailer.TemplateWelcome,
		Data:     map[string]any{"Name": u.Name},
	})

	return s.issue(u, true)
}

// GetCurrentUser resolves a bearer token to its user. A valid signature on
// a deleted user still fails: the token is only as good as the record
// behind it.
func (s *AuthService) GetCurrentUser(ctx context.Context, token string) (*entity.User, error) {
	claims, err := s.JWT.ParseToken(token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	u, err := s.Repo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepository, err)
	}
	if u == nil {
		return nil, ErrInvalidToken
	}
	sanitized := u.Sanitized()
	return &sanitized, nil
}

// Refresh re-verifies the token and issues a fresh one for the same
// subject with a new full window.
func (s *AuthService) Refresh(ctx context.Context, token string) (string, time.Time, error) {
	newToken, exp, err := s.JWT.RefreshToken(token)
	if err != nil {
		return "", time.Time{}, ErrInvalidToken
	}
	return newToken, exp, nil
}

// Logout is a no-op: tokens are stateless and not tracked server-side, so
// logging out is the caller discarding its token. The method exists as the
// extension point for future token blacklisting.
func (s *AuthService) Logout(ctx context.Context) error {
	return nil
}

func (s *AuthService) issue(u *entity.User, isNew bool) (*AuthResult, error) {
	token, exp, err := s.JWT.GenerateToken(u.ID)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate token failed")
		}
		return nil, fmt.Errorf("%w: %v", ErrRepository, err)
	}
	return &AuthResult{User: u.Sanitized(), Token: token, TokenExpiry: exp, IsNewUser: isNew}, nil
}

func (s *AuthService) enqueueEmail(ctx context.Context, job mailer.EmailJob) {
	if s.Pub == nil {
		return
	}
	if err := s.Pub.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("to", job.To).Warn("email enqueue failed")
	}
}

// NameFromEmail derives a display name from the email local-part:
// "jane.doe@x.com" becomes "Jane Doe".
func NameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	parts := strings.FieldsFunc(local, func(r rune) bool {
		return r == '.' || r == '_' || r == '-'
	})
	for i, p := range parts {
		parts[i] = strings.ToUpper(p[:1]) + strings.ToLower(p[1:])
	}
	name := strings.Join(parts, " ")
	if name == "" {
		return "User"
	}
	return name
}
