package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatFileSize(t *testing.T) {
	cases := []struct {
		size int64
		want string
	}{
		{0, "0 B"},
		{500, "500 B"},
		{1024, "1 KB"},
		{1536, "1.5 KB"},
		{2048000, "1.95 MB"},
		{5 << 30, "5 GB"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatFileSize(tc.size), "size %d", tc.size)
	}
}

func TestFormatRelativeAge(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "Just now", FormatRelativeAge(now.Add(-30*time.Minute), now))
	assert.Equal(t, "2h ago", FormatRelativeAge(now.Add(-150*time.Minute), now))
	assert.Equal(t, "1d ago", FormatRelativeAge(now.Add(-25*time.Hour), now))
	assert.Equal(t, "3d ago", FormatRelativeAge(now.Add(-80*time.Hour), now))
}
