package service

import (
	"context"
	"testing"

	"github.com/bossshopp/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingEnsureDefaultsIsIdempotent(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()

	inserted, err := h.Settings.EnsureDefaults(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(models.DefaultSystemSettings()), inserted)

	inserted, err = h.Settings.EnsureDefaults(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, inserted)

	assert.Equal(t, "BS", h.Settings.GetString(ctx, models.SettingOrderNumberPrefix, "??"))
	assert.Equal(t, 50, h.Settings.GetInt(ctx, models.SettingMaxCartItems, 1))
	assert.False(t, h.Settings.GetBool(ctx, models.SettingMaintenanceMode, true))
}

func TestSettingSetOverridesAndTypedFallbacks(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()

	require.NoError(t, h.Settings.Set(ctx, models.SettingMaxCartItems, "12"))
	require.NoError(t, h.Settings.Set(ctx, models.SettingMaxCartItems, "15"))
	assert.Equal(t, 15, h.Settings.GetInt(ctx, models.SettingMaxCartItems, 1))

	require.NoError(t, h.Settings.Set(ctx, models.SettingTaxRate, "abc"))
	assert.Equal(t, 3, h.Settings.GetInt(ctx, models.SettingTaxRate, 3))

	value, ok, err := h.Settings.Get(ctx, "missing_key")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, value)

	assert.ErrorIs(t, h.Settings.Set(ctx, "  ", "x"), ErrInvalidInput)
}

func TestSettingPublicFiltersPrivateKeys(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()

	_, err := h.Settings.EnsureDefaults(ctx)
	require.NoError(t, err)

	public, err := h.Settings.Public(ctx)
	require.NoError(t, err)
	assert.Contains(t, public, models.SettingSiteName)
	assert.NotContains(t, public, models.SettingOrderNumberPrefix)
	assert.NotContains(t, public, models.SettingTaxRate)
}

func TestNilSettingServiceReturnsDefaults(t *testing.T) {
	var s *SettingService
	assert.Equal(t, "BS", s.GetString(context.Background(), models.SettingOrderNumberPrefix, "BS"))
	assert.Equal(t, 50, s.GetInt(context.Background(), models.SettingMaxCartItems, 50))
}
