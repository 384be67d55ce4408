package repositories

import (
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestUserRepository_CreateAndGet(t *testing.T) {
	req := require.New(t)
	repo := NewUserRepository(openTestDB(t))

	id, err := repo.CreateUser("alice", "$argon2id$fake-hash")
	req.NoError(err)
	req.NotEmpty(id)

	user, err := repo.GetUserByUsername("alice")
	req.NoError(err)
	req.Equal(id, user.ID)
	req.Equal("alice", user.Username)
	req.Equal("$argon2id$fake-hash", user.PasswordHash)
	req.False(user.CreatedAt.IsZero())
	req.True(user.LastLogin.IsZero(), "last login unset until first verify")
}

func TestUserRepository_DuplicateUsername(t *testing.T) {
	req := require.New(t)
	repo := NewUserRepository(openTestDB(t))

	_, err := repo.CreateUser("alice", "hash-1")
	req.NoError(err)

	_, err = repo.CreateUser("alice", "hash-2")
	req.ErrorIs(err, ErrUserExists)

	user, err := repo.GetUserByUsername("alice")
	req.NoError(err)
	req.Equal("hash-1", user.PasswordHash, "losing registration must not overwrite")
}

func TestUserRepository_UnknownUser(t *testing.T) {
	repo := NewUserRepository(openTestDB(t))

	_, err := repo.GetUserByUsername("nobody")
	require.ErrorIs(t, err, ErrUserNotFound)

	require.ErrorIs(t, repo.TouchLastLogin("nobody"), ErrUserNotFound)
}

func TestUserRepository_TouchLastLogin(t *testing.T) {
	req := require.New(t)
	repo := NewUserRepository(openTestDB(t))

	_, err := repo.CreateUser("alice", "hash")
	req.NoError(err)
	req.NoError(repo.TouchLastLogin("alice"))

	user, err := repo.GetUserByUsername("alice")
	req.NoError(err)
	req.False(user.LastLogin.IsZero())
	req.Equal("hash", user.PasswordHash, "stamping login must keep the rest of the record")
}
