package service

import (
	"context"
	"testing"

	"github.com/contentpassport/pimtrack/internal/models"
	"github.com/contentpassport/pimtrack/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestGetPreferences_DefaultsWhenMissing(t *testing.T) {
	svc := NewPreferencesService(newFakePreferencesRepo(), testSecret)

	prefs, err := svc.GetPreferences(context.Background(), 42, 42)
	require.NoError(t, err)

	assert.Equal(t, int64(42), prefs.UserID)
	assert.True(t, prefs.ViralEnabled)
	assert.True(t, prefs.RepostEnabled)
	assert.True(t, prefs.InfringementEnabled)
	assert.True(t, prefs.RevenueEnabled)
	assert.True(t, prefs.RankingEnabled)
	assert.Equal(t, int64(100), prefs.ViralThreshold)
	assert.Equal(t, []string{models.ChannelInApp}, prefs.Channels)
}

func TestPreferences_IdentityChecks(t *testing.T) {
	svc := NewPreferencesService(newFakePreferencesRepo(), testSecret)
	ctx := context.Background()

	_, err := svc.GetPreferences(ctx, 42, 43)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.GetPreferences(ctx, 0, 42)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.UpdatePreferences(ctx, 42, 43, &transfer.PreferencesUpdate{})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUpdatePreferences_MergesPartialUpdate(t *testing.T) {
	repo := newFakePreferencesRepo()
	svc := NewPreferencesService(repo, testSecret)
	ctx := context.Background()

	viralOff := false
	threshold := int64(250)
	prefs, err := svc.UpdatePreferences(ctx, 42, 42, &transfer.PreferencesUpdate{
		ViralEnabled:   &viralOff,
		ViralThreshold: &threshold,
	})
	require.NoError(t, err)

	assert.False(t, prefs.ViralEnabled)
	assert.Equal(t, int64(250), prefs.ViralThreshold)
	// Untouched fields keep their defaults.
	assert.True(t, prefs.RepostEnabled)
	assert.Equal(t, []string{models.ChannelInApp}, prefs.Channels)

	// A second partial update merges over the stored row.
	channels := []string{models.ChannelInApp, models.ChannelWebhook}
	webhook := "https://example.com/hook"
	prefs, err = svc.UpdatePreferences(ctx, 42, 42, &transfer.PreferencesUpdate{
		Channels:   &channels,
		WebhookURL: &webhook,
	})
	require.NoError(t, err)

	assert.False(t, prefs.ViralEnabled)
	assert.Equal(t, int64(250), prefs.ViralThreshold)
	assert.Equal(t, channels, prefs.Channels)
	assert.Equal(t, webhook, prefs.WebhookURL)
}

func TestUpdatePreferences_Validation(t *testing.T) {
	svc := NewPreferencesService(newFakePreferencesRepo(), testSecret)
	ctx := context.Background()

	negative := int64(-1)
	_, err := svc.UpdatePreferences(ctx, 42, 42, &transfer.PreferencesUpdate{ViralThreshold: &negative})
	assert.ErrorIs(t, err, ErrInvalidInput)

	badChannel := []string{"carrier_pigeon"}
	_, err = svc.UpdatePreferences(ctx, 42, 42, &transfer.PreferencesUpdate{Channels: &badChannel})
	assert.ErrorIs(t, err, ErrInvalidInput)

	badURL := "not-a-url"
	_, err = svc.UpdatePreferences(ctx, 42, 42, &transfer.PreferencesUpdate{WebhookURL: &badURL})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdatePreferences_TargetsEncryptedAtRest(t *testing.T) {
	repo := newFakePreferencesRepo()
	svc := NewPreferencesService(repo, testSecret)
	ctx := context.Background()

	webhook := "https://example.com/hook"
	_, err := svc.UpdatePreferences(ctx, 42, 42, &transfer.PreferencesUpdate{WebhookURL: &webhook})
	require.NoError(t, err)

	stored, exists, err := repo.GetByUserID(ctx, 42)
	require.NoError(t, err)
	require.True(t, exists)
	assert.NotEqual(t, webhook, stored.WebhookURL)

	// Reads decrypt back to the plaintext target.
	prefs, err := svc.GetPreferences(ctx, 42, 42)
	require.NoError(t, err)
	assert.Equal(t, webhook, prefs.WebhookURL)
}
