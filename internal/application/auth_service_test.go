package application

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nasihat/dashboard-api/internal/domain/entity"
	repo "github.com/nasihat/dashboard-api/internal/domain/repository"
	"github.com/nasihat/dashboard-api/internal/oauth"
	"github.com/nasihat/dashboard-api/pkg/helpers"
	"github.com/nasihat/dashboard-api/pkg/mailer"
)

// fakeUserRepo is an in-memory UserRepository honoring the same contract as
// the Postgres implementation: nil on absent lookups, ErrEmailTaken on
// duplicate create. raceWith simulates losing a registration race: the
// first Create inserts the competing row and fails with ErrEmailTaken.
type fakeUserRepo struct {
	mu          sync.Mutex
	users       map[string]*entity.User // by id
	nextID      int
	raceWith    *entity.User
	createCalls int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*entity.User{}}
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByProvider(_ context.Context, provider entity.Provider, providerID string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Provider == provider && u.ProviderID == providerID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.createCalls++
	if r.raceWith != nil {
		winner := r.raceWith
		r.raceWith = nil
		r.nextID++
		winner.ID = "user-" + strconv.Itoa(r.nextID)
		r.users[winner.ID] = winner
		return repo.ErrEmailTaken
	}
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return repo.ErrEmailTaken
		}
	}
	r.nextID++
	u.ID = "user-" + strconv.Itoa(r.nextID)
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, id string, upd repo.UserUpdate) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Avatar != nil {
		u.Avatar = *upd.Avatar
	}
	if upd.PasswordHash != nil {
		u.PasswordHash = *upd.PasswordHash
	}
	u.UpdatedAt = time.Now()
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

// seed inserts a user directly, bypassing the service.
func (r *fakeUserRepo) seed(t *testing.T, u entity.User) entity.User {
	t.Helper()
	require.NoError(t, r.Create(context.Background(), &u))
	return u
}

type fakePublisher struct {
	mu   sync.Mutex
	jobs []mailer.EmailJob
}

func (p *fakePublisher) PublishJSON(_ context.Context, body any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if job, ok := body.(mailer.EmailJob); ok {
		p.jobs = append(p.jobs, job)
	}
	return nil
}

func newAuthService(r repo.UserRepository, pub Publisher) *AuthService {
	jwt := helpers.NewJWTManager("test-secret", time.Hour)
	return NewAuthService(r, jwt, nil, pub)
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	h, err := helpers.HashPassword(password)
	require.NoError(t, err)
	return h
}

func TestLoginOrRegister_FreshEmailRegisters(t *testing.T) {
	r := newFakeUserRepo()
	pub := &fakePublisher{}
	svc := newAuthService(r, pub)

	res, err := svc.LoginOrRegister(context.Background(), "jane.doe@example.com", "password123", "")
	require.NoError(t, err)

	assert.True(t, res.IsNewUser)
	assert.Equal(t, "jane.doe@example.com", res.User.Email)
	assert.Equal(t, "Jane Doe", res.User.Name, "name derived from the email local-part")
	assert.Equal(t, entity.ProviderEmail, res.User.Provider)
	assert.Empty(t, res.User.PasswordHash, "password hash must not leave the service")
	assert.NotEmpty(t, res.Token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), res.TokenExpiry, 5*time.Second)

	// The stored record keeps the hash even though the result strips it.
	stored, err := r.GetByEmail(context.Background(), "jane.doe@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.NotEmpty(t, stored.PasswordHash)
	assert.NotEqual(t, "password123", stored.PasswordHash)

	require.Len(t, pub.jobs, 1)
	assert.Equal(t, mailer.TemplateWelcome, pub.jobs[0].Template)
	assert.Equal(t, "jane.doe@example.com", pub.jobs[0].To)
}

func TestLoginOrRegister_SecondAttemptIsLoginNotRegister(t *testing.T) {
	r := newFakeUserRepo()
	svc := newAuthService(r, nil)

	first, err := svc.LoginOrRegister(context.Background(), "new@example.com", "password123", "")
	require.NoError(t, err)
	require.True(t, first.IsNewUser)

	// Same email, wrong password: must fail, not silently re-register.
	_, err = svc.LoginOrRegister(context.Background(), "new@example.com", "different", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, 1, r.createCalls)

	second, err := svc.LoginOrRegister(context.Background(), "new@example.com", "password123", "")
	require.NoError(t, err)
	assert.False(t, second.IsNewUser)
	assert.Equal(t, first.User.ID, second.User.ID)
}

func TestLoginOrRegister_ExplicitNameWins(t *testing.T) {
	r := newFakeUserRepo()
	svc := newAuthService(r, nil)

	res, err := svc.LoginOrRegister(context.Background(), "jane.doe@example.com", "password123", "Janet")
	require.NoError(t, err)
	assert.Equal(t, "Janet", res.User.Name)
}

func TestLoginOrRegister_ExistingUserCorrectPassword(t *testing.T) {
	r := newFakeUserRepo()
	svc := newAuthService(r, nil)
	r.seed(t, entity.User{
		Email:        "known@example.com",
		Name:         "Known User",
		PasswordHash: mustHash(t, "correct-horse"),
		Provider:     entity.ProviderEmail,
	})

	res, err := svc.LoginOrRegister(context.Background(), "known@example.com", "correct-horse", "")
	require.NoError(t, err)
	assert.False(t, res.IsNewUser)
	assert.Equal(t, "Known User", res.User.Name)
	assert.NotEmpty(t, res.Token)
}

func TestLoginOrRegister_WrongPassword(t *testing.T) {
	r := newFakeUserRepo()
	svc := newAuthService(r, nil)
	r.seed(t, entity.User{
		Email:        "known@example.com",
		Name:         "Known User",
		PasswordHash: mustHash(t, "correct-horse"),
		Provider:     entity.ProviderEmail,
	})

	_, err := svc.LoginOrRegister(context.Background(), "known@example.com", "wrong", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginOrRegister_OAuthAccountRejected(t *testing.T) {
	r := newFakeUserRepo()
	svc := newAuthService(r, nil)
	r.seed(t, entity.User{
		Email:      "oauth@example.com",
		Name:       "OAuth User",
		Provider:   entity.ProviderLinkedIn,
		ProviderID: "li-sub-1",
	})

	// No password bypass for accounts without a credential.
	_, err := svc.LoginOrRegister(context.Background(), "oauth@example.com", "anything", "")
	assert.ErrorIs(t, err, ErrProviderMismatch)
}

func TestLoginOrRegister_CreateRaceFallsBackToLogin(t *testing.T) {
	r := newFakeUserRepo()
	svc := newAuthService(r, nil)

	// First lookup misses, the insert hits the unique constraint, and by
	// then the row exists: the call must resolve as a login.
	r.raceWith = &entity.User{
		Email:        "raced@example.com",
		Name:         "Raced User",
		PasswordHash: mustHash(t, "password123"),
		Provider:     entity.ProviderEmail,
	}

	res, err := svc.LoginOrRegister(context.Background(), "raced@example.com", "password123", "")
	require.NoError(t, err)
	assert.False(t, res.IsNewUser)
	assert.Equal(t, "Raced User", res.User.Name)
	assert.Equal(t, 1, r.createCalls, "registration must not be retried after losing the race")
}

func TestLoginOrRegister_RacedOAuthAccountStillMismatches(t *testing.T) {
	r := newFakeUserRepo()
	svc := newAuthService(r, nil)
	r.raceWith = &entity.User{
		Email:      "raced@example.com",
		Provider:   entity.ProviderLinkedIn,
		ProviderID: "li-sub-9",
	}

	_, err := svc.LoginOrRegister(context.Background(), "raced@example.com", "password123", "")
	assert.ErrorIs(t, err, ErrProviderMismatch)
}

func TestHandleOAuthCallback_NewIdentityRegisters(t *testing.T) {
	r := newFakeUserRepo()
	pub := &fakePublisher{}
	svc := newAuthService(r, pub)

	res, err := svc.HandleOAuthCallback(context.Background(), &oauth.Profile{
		ExternalID: "li-sub-1",
		Email:      "member@example.com",
		Name:       "Member Name",
		Avatar:     "https://cdn.example.com/pic.jpg",
		Provider:   entity.ProviderLinkedIn,
	})
	require.NoError(t, err)
	assert.True(t, res.IsNewUser)
	assert.Equal(t, entity.ProviderLinkedIn, res.User.Provider)
	assert.Equal(t, "li-sub-1", res.User.ProviderID)
	assert.Equal(t, "https://cdn.example.com/pic.jpg", res.User.Avatar)
	require.Len(t, pub.jobs, 1)
	assert.Equal(t, mailer.TemplateWelcome, pub.jobs[0].Template)
}

func TestHandleOAuthCallback_KnownIdentityLogsIn(t *testing.T) {
	r := newFakeUserRepo()
	svc := newAuthService(r, nil)
	seeded := r.seed(t, entity.User{
		Email:      "member@example.com",
		Name:       "Member Name",
		Provider:   entity.ProviderLinkedIn,
		ProviderID: "li-sub-1",
	})

	res, err := svc.HandleOAuthCallback(context.Background(), &oauth.Profile{
		ExternalID: "li-sub-1",
		Email:      "changed@example.com", // provider-side email change
		Name:       "New Display Name",
		Provider:   entity.ProviderLinkedIn,
	})
	require.NoError(t, err)
	assert.False(t, res.IsNewUser)
	assert.Equal(t, seeded.ID, res.User.ID)
	// Repeat logins do not rewrite the stored profile.
	assert.Equal(t, "member@example.com", res.User.Email)
	assert.Equal(t, "Member Name", res.User.Name)
}

func TestHandleOAuthCallback_EmailOwnedByOtherAccount(t *testing.T) {
	r := newFakeUserRepo()
	svc := newAuthService(r, nil)
	r.seed(t, entity.User{
		Email:        "taken@example.com",
		Name:         "Email User",
		PasswordHash: mustHash(t, "password123"),
		Provider:     entity.ProviderEmail,
	})

	_, err := svc.HandleOAuthCallback(context.Background(), &oauth.Profile{
		ExternalID: "li-sub-2",
		Email:      "taken@example.com",
		Name:       "Someone Else",
		Provider:   entity.ProviderLinkedIn,
	})
	assert.ErrorIs(t, err, ErrAccountConflict)
}

func TestHandleOAuthCallback_CreateRaceIsConflict(t *testing.T) {
	r := newFakeUserRepo()
	svc := newAuthService(r, nil)
	r.raceWith = &entity.User{
		Email:        "raced@example.com",
		Provider:     entity.ProviderEmail,
		PasswordHash: "$2a$12$irrelevant",
	}

	_, err := svc.HandleOAuthCallback(context.Background(), &oauth.Profile{
		ExternalID: "li-sub-3",
		Email:      "raced@example.com",
		Name:       "Raced",
		Provider:   entity.ProviderLinkedIn,
	})
	assert.ErrorIs(t, err, ErrAccountConflict)
}

func TestGetCurrentUser(t *testing.T) {
	r := newFakeUserRepo()
	svc := newAuthService(r, nil)
	seeded := r.seed(t, entity.User{
		Email:        "known@example.com",
		Name:         "Known User",
		PasswordHash: mustHash(t, "password123"),
		Provider:     entity.ProviderEmail,
	})
	token, _, err := svc.JWT.GenerateToken(seeded.ID)
	require.NoError(t, err)

	u, err := svc.GetCurrentUser(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, u.ID)
	assert.Empty(t, u.PasswordHash)
}

func TestGetCurrentUser_DeletedUser(t *testing.T) {
	r := newFakeUserRepo()
	svc := newAuthService(r, nil)
	token, _, err := svc.JWT.GenerateToken("gone-user")
	require.NoError(t, err)

	_, err = svc.GetCurrentUser(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGetCurrentUser_BadToken(t *testing.T) {
	svc := newAuthService(newFakeUserRepo(), nil)
	_, err := svc.GetCurrentUser(context.Background(), "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefresh(t *testing.T) {
	svc := newAuthService(newFakeUserRepo(), nil)
	token, _, err := svc.JWT.GenerateToken("user-1")
	require.NoError(t, err)

	newToken, exp, err := svc.Refresh(context.Background(), token)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := svc.JWT.ParseToken(newToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)

	_, _, err = svc.Refresh(context.Background(), "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNameFromEmail(t *testing.T) {
	cases := map[string]string{
		"jane.doe@example.com":  "Jane Doe",
		"john_smith@example.io": "John Smith",
		"mary-ann@example.com":  "Mary Ann",
		"solo@example.com":      "Solo",
		"ALLCAPS@example.com":   "Allcaps",
		"@example.com":          "User",
	}
	for email, want := range cases {
		assert.Equal(t, want, NameFromEmail(email), "email %q", email)
	}
}
