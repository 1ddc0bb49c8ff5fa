package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"renodevis/internal/core/apperror"
	appctx "renodevis/internal/core/context"
	"renodevis/internal/core/id"
)

type memUsers struct {
	mu      sync.Mutex
	byID    map[id.ID]*User
	updates int
}

func newMemUsers() *memUsers {
	return &memUsers{byID: make(map[id.ID]*User)}
}

func (r *memUsers) Create(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.byID[u.ID] = &cp
	return nil
}

func (r *memUsers) GetByID(_ context.Context, userID id.ID) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[userID]
	if !ok {
		return nil, apperror.NewNotFound("user", userID.String())
	}
	cp := *u
	return &cp, nil
}

func (r *memUsers) GetByEmail(_ context.Context, email string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("user", email)
}

func (r *memUsers) Update(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates++
	cp := *u
	r.byID[u.ID] = &cp
	return nil
}

func (r *memUsers) Exists(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	return err == nil, nil
}

type inlineTx struct{}

func (inlineTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestService(t *testing.T) (*Service, *memUsers, *time.Time) {
	t.Helper()
	users := newMemUsers()
	cfg := DefaultServiceConfig()
	cfg.BcryptCost = bcrypt.MinCost
	cfg.MaxLoginAttempts = 3

	jwtSvc := NewJWTService(DefaultJWTConfig("test-secret"))
	svc := NewService(users, inlineTx{}, jwtSvc, cfg)
	now := time.Now().UTC()
	svc.now = func() time.Time { return now }
	return svc, users, &now
}

func TestRegister(t *testing.T) {
	svc, users, _ := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Register(ctx, RegisterRequest{Email: " Artisan@Example.FR ", Password: "secret1", Nom: "Dupont"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, "artisan@example.fr", resp.User.Email)
	assert.NotEmpty(t, resp.AccessToken)

	stored, err := users.GetByID(ctx, resp.User.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", stored.PasswordHash)

	uc, err := svc.jwtService.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID.String(), uc.UserID)
	assert.Equal(t, "Dupont", uc.Name)

	_, err = svc.Register(ctx, RegisterRequest{Email: "artisan@example.fr", Password: "secret2", Nom: "Autre"})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeConflict))
}

func TestRegister_Validation(t *testing.T) {
	svc, _, _ := newTestService(t)

	tests := []struct {
		name string
		req  RegisterRequest
	}{
		{"bad email", RegisterRequest{Email: "nope", Password: "secret1", Nom: "A"}},
		{"short password", RegisterRequest{Email: "a@b.fr", Password: "123", Nom: "A"}},
		{"missing name", RegisterRequest{Email: "a@b.fr", Password: "secret1", Nom: "  "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.req)
			require.Error(t, err)
			assert.True(t, apperror.IsValidation(err))
		})
	}
}

func TestLogin(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Email: "a@b.fr", Password: "secret1", Nom: "A"})
	require.NoError(t, err)

	resp, err := svc.Login(ctx, Credentials{Email: "A@B.fr", Password: "secret1"})
	require.NoError(t, err)
	assert.NotNil(t, resp.User.LastLoginAt)

	_, err = svc.Login(ctx, Credentials{Email: "a@b.fr", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, []string{"Email ou mot de passe incorrect"}, apperror.Messages(err))

	_, err = svc.Login(ctx, Credentials{Email: "unknown@b.fr", Password: "secret1"})
	assert.True(t, apperror.IsCode(err, apperror.CodeUnauthorized))
}

func TestLogin_LocksAfterFailures(t *testing.T) {
	svc, _, now := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Email: "a@b.fr", Password: "secret1", Nom: "A"})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = svc.Login(ctx, Credentials{Email: "a@b.fr", Password: "wrong"})
		require.Error(t, err)
	}

	_, err = svc.Login(ctx, Credentials{Email: "a@b.fr", Password: "secret1"})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeForbidden))

	*now = now.Add(16 * time.Minute)
	_, err = svc.Login(ctx, Credentials{Email: "a@b.fr", Password: "secret1"})
	assert.NoError(t, err)
}

func TestMe(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Register(ctx, RegisterRequest{Email: "a@b.fr", Password: "secret1", Nom: "A"})
	require.NoError(t, err)

	_, err = svc.Me(ctx)
	assert.True(t, apperror.IsCode(err, apperror.CodeUnauthorized))

	me, err := svc.Me(appctx.WithUser(ctx, &appctx.UserContext{UserID: resp.User.ID.String()}))
	require.NoError(t, err)
	assert.Equal(t, "a@b.fr", me.Email)

	_, err = svc.Me(appctx.WithUser(ctx, &appctx.UserContext{UserID: id.New().String()}))
	assert.True(t, apperror.IsNotFound(err))
}

func TestValidateToken_Rejects(t *testing.T) {
	jwtSvc := NewJWTService(DefaultJWTConfig("secret-a"))
	other := NewJWTService(DefaultJWTConfig("secret-b"))
	user := NewUser("a@b.fr", "", "A", time.Now())

	token, _, err := other.GenerateAccessToken(user, time.Now())
	require.NoError(t, err)
	_, err = jwtSvc.ValidateToken(token)
	assert.Error(t, err, "wrong secret")

	expired, _, err := jwtSvc.GenerateAccessToken(user, time.Now().Add(-8*24*time.Hour))
	require.NoError(t, err)
	_, err = jwtSvc.ValidateToken(expired)
	assert.Error(t, err, "expired")
}
