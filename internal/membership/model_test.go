package membership

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestIsActiveOn(t *testing.T) {
	m := &Membership{
		Status:    StatusActive,
		StartDate: day(2024, time.January, 1),
		EndDate:   day(2024, time.January, 31),
	}

	assert.True(t, m.IsActiveOn(day(2024, time.January, 15)))
	assert.True(t, m.IsActiveOn(day(2024, time.January, 31)), "end date is inclusive")
	assert.False(t, m.IsActiveOn(day(2024, time.February, 1)))
	assert.Equal(t, StatusActive, m.Status, "reading never mutates the status")

	m.Status = StatusCancelled
	assert.False(t, m.IsActiveOn(day(2024, time.January, 15)))
}

func TestEffectiveStatus(t *testing.T) {
	m := &Membership{Status: StatusActive, EndDate: day(2024, time.January, 31)}

	assert.Equal(t, StatusActive, m.EffectiveStatus(day(2024, time.January, 31)))
	assert.Equal(t, StatusExpired, m.EffectiveStatus(day(2024, time.February, 1)))

	m.Status = StatusCancelled
	assert.Equal(t, StatusCancelled, m.EffectiveStatus(day(2024, time.February, 1)))
}

func TestRemainingDays(t *testing.T) {
	m := &Membership{Status: StatusActive, EndDate: day(2024, time.January, 31)}

	assert.Equal(t, 17, m.RemainingDays(day(2024, time.January, 15)))
	assert.Equal(t, 1, m.RemainingDays(day(2024, time.January, 31)))
	assert.Equal(t, 0, m.RemainingDays(day(2024, time.February, 1)))
}
