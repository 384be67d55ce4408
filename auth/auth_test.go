package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LucaMelis0/secure-chat/repositories"
)

func TestHashAndComparePassword(t *testing.T) {
	req := require.New(t)
	password := "correct horse battery staple"

	hash, err := HashPassword(password)
	req.NoError(err)
	req.True(strings.HasPrefix(hash, "$argon2id$"))

	match, err := ComparePassword(password, hash)
	req.NoError(err)
	req.True(match)

	match, err = ComparePassword("wrong password", hash)
	req.NoError(err)
	req.False(match)

	_, err = ComparePassword(password, "not-a-hash")
	req.Error(err)
}

func TestValidateCredentials(t *testing.T) {
	tests := []struct {
		name    string
		creds   Credentials
		wantErr bool
	}{
		{"valid", Credentials{"alice", "hunter22"}, false},
		{"username too short", Credentials{"al", "hunter22"}, true},
		{"password too short", Credentials{"alice", "12345"}, true},
		{"missing username", Credentials{"", "hunter22"}, true},
		{"missing password", Credentials{"alice", ""}, true},
		{"username too long", Credentials{strings.Repeat("a", 33), "hunter22"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCredentials(tt.creds)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestTokenManager_IssueAndValidate(t *testing.T) {
	req := require.New(t)
	tokens := NewTokenManager("test-secret", time.Hour)

	token, err := tokens.Issue("alice")
	req.NoError(err)

	claims, err := tokens.Validate(token)
	req.NoError(err)
	req.Equal("alice", claims.Username)
}

func TestTokenManager_RejectsBadTokens(t *testing.T) {
	tokens := NewTokenManager("test-secret", time.Hour)

	token, err := tokens.Issue("alice")
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		other := NewTokenManager("different-secret", time.Hour)
		_, err := other.Validate(token)
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		expired := NewTokenManager("test-secret", -time.Minute)
		stale, err := expired.Issue("alice")
		require.NoError(t, err)
		_, err = tokens.Validate(stale)
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := tokens.Validate("not.a.token")
		assert.Error(t, err)
	})
}

type fakeUserStore struct {
	users      map[string]repositories.User
	lastLogins map[string]int
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		users:      make(map[string]repositories.User),
		lastLogins: make(map[string]int),
	}
}

func (f *fakeUserStore) CreateUser(username, passwordHash string) (string, error) {
	if _, ok := f.users[username]; ok {
		return "", repositories.ErrUserExists
	}
	f.users[username] = repositories.User{ID: "id-" + username, Username: username, PasswordHash: passwordHash}
	return "id-" + username, nil
}

func (f *fakeUserStore) GetUserByUsername(username string) (repositories.User, error) {
	user, ok := f.users[username]
	if !ok {
		return repositories.User{}, repositories.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserStore) TouchLastLogin(username string) error {
	f.lastLogins[username]++
	return nil
}

func TestService_RegisterAndVerify(t *testing.T) {
	req := require.New(t)
	store := newFakeUserStore()
	service := NewService(store)
	creds := Credentials{Username: "alice", Password: "hunter22"}

	req.NoError(service.Register(creds))
	req.ErrorIs(service.Register(creds), repositories.ErrUserExists)

	req.NoError(service.Verify(creds))
	req.Equal(1, store.lastLogins["alice"], "successful login stamps last_login")

	err := service.Verify(Credentials{Username: "alice", Password: "wrong"})
	req.ErrorIs(err, ErrInvalidCredentials)

	err = service.Verify(Credentials{Username: "nobody", Password: "hunter22"})
	req.ErrorIs(err, ErrInvalidCredentials, "unknown user and bad password are indistinguishable")
}

func TestService_RegisterRejectsWeakCredentials(t *testing.T) {
	service := NewService(newFakeUserStore())

	err := service.Register(Credentials{Username: "al", Password: "hunter22"})
	require.Error(t, err)

	err = service.Register(Credentials{Username: "alice", Password: "12345"})
	require.Error(t, err)
}
