package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"docuchat/internal/store"
)

func newSettingsService(st store.Store) *SettingsService {
	return NewSettingsService(st, st, zap.NewNop())
}

func TestToggleThemePersistsScalar(t *testing.T) {
	st := store.NewMemoryStore()
	svc := newSettingsService(st)
	ctx := context.Background()

	assert.Equal(t, ThemeLight, svc.Theme())

	assert.Equal(t, ThemeDark, svc.ToggleTheme(ctx))
	raw, err := st.Get(ctx, "theme")
	require.NoError(t, err)
	assert.Equal(t, "dark", string(raw))

	assert.Equal(t, ThemeLight, svc.ToggleTheme(ctx))
	raw, err = st.Get(ctx, "theme")
	require.NoError(t, err)
	assert.Equal(t, "light", string(raw))
}

func TestIncrementQueryCountPersistsString(t *testing.T) {
	st := store.NewMemoryStore()
	svc := newSettingsService(st)
	ctx := context.Background()

	svc.IncrementQueryCount(ctx)
	svc.IncrementQueryCount(ctx)

	assert.Equal(t, 2, svc.QueryCount())
	raw, err := st.Get(ctx, "queryCount")
	require.NoError(t, err)
	assert.Equal(t, "2", string(raw))
}

func TestLoadsStoredSettings(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, st.Set(ctx, "theme", []byte("dark")))
	require.NoError(t, st.Set(ctx, "queryCount", []byte("7")))

	svc := newSettingsService(st)
	assert.Equal(t, ThemeDark, svc.Theme())
	assert.Equal(t, 7, svc.QueryCount())
}

func TestInvalidStoredSettingsFallBackToDefaults(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, st.Set(ctx, "theme", []byte("blue")))
	require.NoError(t, st.Set(ctx, "queryCount", []byte("many")))

	svc := newSettingsService(st)
	assert.Equal(t, ThemeLight, svc.Theme())
	assert.Equal(t, 0, svc.QueryCount())
}
