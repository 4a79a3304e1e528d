package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTodayUsesClubTimezone(t *testing.T) {
	london, err := time.LoadLocation("Europe/London")
	if err != nil {
		t.Skip("tzdata not available")
	}

	// 23:30 UTC on 30 June is already 1 July in London (BST).
	c := New(london)
	c.now = func() time.Time { return time.Date(2024, 6, 30, 23, 30, 0, 0, time.UTC) }

	assert.Equal(t, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), c.Today())
}

func TestFixed(t *testing.T) {
	c := Fixed(time.Date(2024, 1, 15, 18, 0, 0, 0, time.UTC))

	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), c.Today())
	assert.Equal(t, 18, c.Now().Hour())
}

func TestNewDefaultsToUTC(t *testing.T) {
	c := New(nil)
	assert.Equal(t, time.UTC, c.Now().Location())
}
