package app

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"docuchat/internal/store"
)

const (
	themeKey      = "theme"
	queryCountKey = "queryCount"

	ThemeLight = "light"
	ThemeDark  = "dark"
)

// SettingsService holds the scalar persisted state: the UI theme and the
// successful-query counter.
type SettingsService struct {
	persist Persister
	log     *zap.Logger

	mu         sync.Mutex
	theme      string
	queryCount int
}

func NewSettingsService(st store.Store, persist Persister, log *zap.Logger) *SettingsService {
	s := &SettingsService{persist: persist, log: log, theme: ThemeLight}

	ctx := context.Background()
	if raw, err := st.Get(ctx, themeKey); err == nil {
		if stored := string(raw); stored == ThemeLight || stored == ThemeDark {
			s.theme = stored
		}
	} else if !errors.Is(err, store.ErrKeyNotFound) {
		log.Warn("load theme failed", zap.Error(err))
	}

	if raw, err := st.Get(ctx, queryCountKey); err == nil {
		if parsed, parseErr := strconv.Atoi(string(raw)); parseErr == nil && parsed >= 0 {
			s.queryCount = parsed
		}
	} else if !errors.Is(err, store.ErrKeyNotFound) {
		log.Warn("load query count failed", zap.Error(err))
	}

	return s
}

func (s *SettingsService) Theme() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme
}

// ToggleTheme flips light/dark and persists the new value as a scalar string.
func (s *SettingsService) ToggleTheme(ctx context.Context) string {
	s.mu.Lock()
	if s.theme == ThemeLight {
		s.theme = ThemeDark
	} else {
		s.theme = ThemeLight
	}
	theme := s.theme
	s.mu.Unlock()

	if err := s.persist.Set(ctx, themeKey, []byte(theme)); err != nil {
		s.log.Warn("persist theme failed", zap.Error(err))
	}
	return theme
}

func (s *SettingsService) QueryCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queryCount
}

// IncrementQueryCount bumps the counter after a successful ask and persists
// it as a stringified integer.
func (s *SettingsService) IncrementQueryCount(ctx context.Context) {
	s.mu.Lock()
	s.queryCount++
	count := s.queryCount
	s.mu.Unlock()

	if err := s.persist.Set(ctx, queryCountKey, []byte(strconv.Itoa(count))); err != nil {
		s.log.Warn("persist query count failed", zap.Error(err))
	}
}
