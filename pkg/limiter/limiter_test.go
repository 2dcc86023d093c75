package limiter

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRevalidationLimiter_Allow(t *testing.T) {
	tests := []struct {
		name        string
		minInterval time.Duration
		advances    []time.Duration
		key         string
		want        []bool
	}{
		{
			name:        "first refresh always allowed",
			minInterval: time.Minute,
			advances:    []time.Duration{0},
			key:         "k1",
			want:        []bool{true},
		},
		{
			name:        "second refresh within interval suppressed",
			minInterval: time.Minute,
			advances:    []time.Duration{0, time.Second},
			key:         "k1",
			want:        []bool{true, false},
		},
		{
			name:        "refresh after interval allowed again",
			minInterval: time.Minute,
			advances:    []time.Duration{0, 2 * time.Minute},
			key:         "k1",
			want:        []bool{true, true},
		},
		{
			name:        "zero interval disables throttling",
			minInterval: 0,
			advances:    []time.Duration{0, 0, 0},
			key:         "k1",
			want:        []bool{true, true, true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewRevalidationLimiter(tt.minInterval)
			base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

			var got []bool
			for _, adv := range tt.advances {
				current := base.Add(adv)
				l.SetClock(func() time.Time { return current })
				got = append(got, l.Allow(tt.key))
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRevalidationLimiter_KeysAreIndependent(t *testing.T) {
	l := NewRevalidationLimiter(time.Minute)

	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("b"))
	assert.False(t, l.Allow("a"))
	assert.False(t, l.Allow("b"))
}

func TestRevalidationLimiter_Forget(t *testing.T) {
	l := NewRevalidationLimiter(time.Minute)

	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))

	l.Forget("a")
	assert.True(t, l.Allow("a"))
}

func TestRevalidationLimiter_ConcurrentSingleWinner(t *testing.T) {
	l := NewRevalidationLimiter(time.Minute)

	const goroutines = 32
	var wg sync.WaitGroup
	results := make(chan bool, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- l.Allow("shared")
		}()
	}
	wg.Wait()
	close(results)

	allowed := 0
	for ok := range results {
		if ok {
			allowed++
		}
	}
	assert.Equal(t, 1, allowed, "exactly one concurrent caller may refresh")
}
