package session_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nebula-cli/internal/logger"
	"nebula-cli/internal/models"
	"nebula-cli/internal/session"
)

func testLogger() *logger.Logger {
	log := logger.NewLogger()
	log.SetQuiet(true)
	return log
}

func signedToken(t *testing.T, email string, role models.Role, expiresIn time.Duration) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":    email,
		"role":   string(role),
		"userId": float64(12),
		"exp":    time.Now().Add(expiresIn).Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func newStore(t *testing.T) (*session.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.json")
	return session.NewStore(path, testLogger()), path
}

func TestSetPersistsAndLoadRestores(t *testing.T) {
	store, path := newStore(t)

	s := &models.Session{
		Token: signedToken(t, "jane@example.com", models.RoleUser, time.Hour),
		User:  models.User{ID: 12, Name: "Jane", Email: "jane@example.com", Role: models.RoleUser},
	}
	require.NoError(t, store.Set(s))

	// A second store at the same path sees the persisted session.
	restored := session.NewStore(path, testLogger())
	require.NoError(t, restored.Load())
	current := restored.Current()
	require.NotNil(t, current)
	assert.Equal(t, "jane@example.com", current.User.Email)
	assert.Equal(t, models.RoleUser, current.User.Role)
	assert.Equal(t, s.Token, restored.Token())
}

func TestSetRefusesTokenlessSession(t *testing.T) {
	store, path := newStore(t)
	err := store.Set(&models.Session{User: models.User{Email: "jane@example.com"}})
	assert.Error(t, err)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestLoadMissingFileMeansLoggedOut(t *testing.T) {
	store, _ := newStore(t)
	require.NoError(t, store.Load())
	assert.Nil(t, store.Current())
	assert.Equal(t, "", store.Token())
}

func TestLoadDiscardsExpiredToken(t *testing.T) {
	store, path := newStore(t)
	s := &models.Session{
		Token: signedToken(t, "jane@example.com", models.RoleUser, -time.Minute),
		User:  models.User{ID: 12, Email: "jane@example.com", Role: models.RoleUser},
	}
	require.NoError(t, store.Set(s))

	restored := session.NewStore(path, testLogger())
	require.NoError(t, restored.Load())
	assert.Nil(t, restored.Current())
	// The stale file is gone too.
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestLoadDiscardsRoleMismatch(t *testing.T) {
	store, path := newStore(t)
	s := &models.Session{
		Token: signedToken(t, "jane@example.com", models.RoleUser, time.Hour),
		// Stored role disagrees with the token's role claim.
		User: models.User{ID: 12, Email: "jane@example.com", Role: models.RoleAdmin},
	}
	require.NoError(t, store.Set(s))

	restored := session.NewStore(path, testLogger())
	require.NoError(t, restored.Load())
	assert.Nil(t, restored.Current())
}

func TestLoadDiscardsCorruptFile(t *testing.T) {
	store, path := newStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0700))
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	require.NoError(t, store.Load())
	assert.Nil(t, store.Current())
}

func TestClearBroadcastsToSubscribers(t *testing.T) {
	store, path := newStore(t)
	s := &models.Session{
		Token: signedToken(t, "jane@example.com", models.RoleUser, time.Hour),
		User:  models.User{ID: 12, Email: "jane@example.com", Role: models.RoleUser},
	}
	require.NoError(t, store.Set(s))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := store.Subscribe(ctx)

	store.Clear()

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("expected a session-cleared signal")
	}
	assert.Nil(t, store.Current())
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestClearWhenEmptyIsSafe(t *testing.T) {
	store, _ := newStore(t)
	store.Clear()
	assert.Nil(t, store.Current())
}

func TestParseClaimsReadsBackendShape(t *testing.T) {
	token := signedToken(t, "jane@example.com", models.RoleTicketChecker, time.Hour)
	claims, err := session.ParseClaims(token)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", claims.Email)
	assert.Equal(t, models.RoleTicketChecker, claims.Role)
	assert.Equal(t, int64(12), claims.UserID)
	assert.False(t, claims.Expired())
}

func TestParseClaimsRejectsGarbage(t *testing.T) {
	_, err := session.ParseClaims("not-a-jwt")
	assert.Error(t, err)
	_, err = session.ParseClaims("")
	assert.Error(t, err)
}
