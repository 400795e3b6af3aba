package auth

import (
	"context"
	"testing"

	"github.com/Joseda-hg/lazytodo/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	sqlDB, err := db.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	service, err := NewService(db.NewStore(sqlDB), NewPasswordHasher(bcrypt.MinCost), NewJWTManager(testJWTConfig()))
	require.NoError(t, err)
	return service
}

func TestService_RegisterAndLogin(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	user, err := service.Register(ctx, "alice", "correct horse")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.NotEqual(t, "correct horse", user.PasswordHash)

	loggedIn, token, err := service.Login(ctx, "alice", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	identity, err := service.Authenticate(token)
	require.NoError(t, err)
	assert.Equal(t, Identity{UserID: user.ID, Username: "alice"}, identity)
}

func TestService_RegisterDuplicate(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	_, err := service.Register(ctx, "alice", "password-1")
	require.NoError(t, err)

	_, err = service.Register(ctx, "alice", "password-2")
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestService_LoginFailuresAreIndistinguishable(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	_, err := service.Register(ctx, "alice", "correct horse")
	require.NoError(t, err)

	_, _, err = service.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = service.Login(ctx, "nobody", "correct horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestIdentityContext(t *testing.T) {
	_, ok := IdentityFromContext(context.Background())
	assert.False(t, ok)

	ctx := WithIdentity(context.Background(), Identity{UserID: 7, Username: "bob"})
	identity, ok := IdentityFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, int64(7), identity.UserID)
}

func TestPasswordHasher(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)
	hash, err := hasher.Hash("secret-password")
	require.NoError(t, err)

	assert.True(t, hasher.Verify("secret-password", hash))
	assert.False(t, hasher.Verify("other-password", hash))
	assert.Equal(t, DefaultBcryptCost, NewPasswordHasher(0).cost)
}
