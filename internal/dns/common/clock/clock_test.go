package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRealClock_Now(t *testing.T) {
	clock := RealClock{}

	before := time.Now()
	now := clock.Now()
	after := time.Now()

	assert.False(t, now.Before(before), "clock time %v is before %v", now, before)
	assert.False(t, now.After(after), "clock time %v is after %v", now, after)
}

func TestMockClock_Now_Consistent(t *testing.T) {
	fixedTime := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	clock := &MockClock{CurrentTime: fixedTime}

	assert.True(t, clock.Now().Equal(fixedTime))
	assert.True(t, clock.Now().Equal(clock.Now()))
}

func TestMockClock_Advance(t *testing.T) {
	initialTime := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	clock := &MockClock{CurrentTime: initialTime}

	testCases := []struct {
		name     string
		duration time.Duration
		expected time.Time
	}{
		{"advance by 1 hour", time.Hour, initialTime.Add(time.Hour)},
		{"advance by 30 minutes more", 30 * time.Minute, initialTime.Add(90 * time.Minute)},
		{"advance backwards", -2 * time.Hour, initialTime.Add(-30 * time.Minute)},
		{"zero duration", 0, initialTime.Add(-30 * time.Minute)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			clock.Advance(tc.duration)
			assert.True(t, clock.Now().Equal(tc.expected), "expected %v, got %v", tc.expected, clock.Now())
		})
	}
}

func TestMockClock_Set(t *testing.T) {
	clock := &MockClock{}
	target := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)

	clock.Set(target)
	assert.Equal(t, target, clock.Now())
}

func TestMockClock_SerialHourRollover(t *testing.T) {
	// serial stamps use the hour; crossing midnight changes the date prefix
	clock := &MockClock{CurrentTime: time.Date(2025, 8, 1, 23, 30, 0, 0, time.UTC)}

	assert.Equal(t, "2025080123", clock.Now().Format("2006010215"))
	clock.Advance(time.Hour)
	assert.Equal(t, "2025080200", clock.Now().Format("2006010215"))
}

func TestClock_InterfaceCompliance(t *testing.T) {
	var _ Clock = RealClock{}
	var _ Clock = &MockClock{}
}
