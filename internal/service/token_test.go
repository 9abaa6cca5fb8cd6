package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/juajobs/juajobs-backend/internal/authz"
	"github.com/juajobs/juajobs-backend/internal/models"
)

func TestTokenManager_AccessRoundTrip(t *testing.T) {
	tm := testTokenManager()
	user := &models.User{ID: uuid.New(), Role: authz.RoleWorker}

	pair, accessExp, refreshExp, err := tm.GeneratePair(user)
	assert.NoError(t, err)
	assert.True(t, accessExp.Before(refreshExp))

	userID, role, err := tm.ParseAccess(pair.AccessToken)
	assert.NoError(t, err)
	assert.Equal(t, user.ID, userID)
	assert.Equal(t, "worker", role)
}

func TestTokenManager_RefreshRoundTrip(t *testing.T) {
	tm := testTokenManager()
	user := &models.User{ID: uuid.New(), Role: authz.RoleClient}

	pair, _, _, err := tm.GeneratePair(user)
	assert.NoError(t, err)

	claims, err := tm.ParseRefresh(pair.RefreshToken)
	assert.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.Subject)
	assert.NotEmpty(t, claims.ID)
}

func TestTokenManager_TokensAreNotInterchangeable(t *testing.T) {
	tm := testTokenManager()
	user := &models.User{ID: uuid.New(), Role: authz.RoleClient}

	pair, _, _, err := tm.GeneratePair(user)
	assert.NoError(t, err)

	// A refresh token must not pass as an access token and vice versa.
	_, _, err = tm.ParseAccess(pair.RefreshToken)
	assert.Error(t, err)

	_, err = tm.ParseRefresh(pair.AccessToken)
	assert.Error(t, err)
}

func TestTokenManager_WrongSecretRejected(t *testing.T) {
	tm := testTokenManager()
	other := NewTokenManager("different-access-secret", "different-refresh-secret", 15*time.Minute, time.Hour)
	user := &models.User{ID: uuid.New(), Role: authz.RoleClient}

	pair, _, _, err := tm.GeneratePair(user)
	assert.NoError(t, err)

	_, _, err = other.ParseAccess(pair.AccessToken)
	assert.Error(t, err)
}

func TestTokenManager_ExpiredAccessRejected(t *testing.T) {
	tm := NewTokenManager("access-secret-for-tests", "refresh-secret-for-tests", -time.Minute, time.Hour)
	user := &models.User{ID: uuid.New(), Role: authz.RoleClient}

	pair, _, _, err := tm.GeneratePair(user)
	assert.NoError(t, err)

	_, _, err = tm.ParseAccess(pair.AccessToken)
	assert.Error(t, err)
}
