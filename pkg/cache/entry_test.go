package cache

import (
	"testing"
	"time"
)

func TestCacheEntry_IsExpired(t *testing.T) {
	tests := []struct {
		name    string
		expires time.Time
		want    bool
	}{
		{
			name:    "expired entry",
			expires: time.Now().Add(-1 * time.Hour),
			want:    true,
		},
		{
			name:    "valid entry",
			expires: time.Now().Add(1 * time.Hour),
			want:    false,
		},
		{
			name:    "just expired",
			expires: time.Now().Add(-1 * time.Second),
			want:    true,
		},
		{
			name:    "no expiry",
			expires: time.Time{},
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := &CacheEntry{
				Expires: tt.expires,
			}
			if got := entry.IsExpired(); got != tt.want {
				t.Errorf("IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCacheEntry_TTL(t *testing.T) {
	tests := []struct {
		name    string
		expires time.Time
		wantMin time.Duration
		wantMax time.Duration
	}{
		{
			name:    "future expiry",
			expires: time.Now().Add(5 * time.Minute),
			wantMin: 4*time.Minute + 59*time.Second,
			wantMax: 5 * time.Minute,
		},
		{
			name:    "past expiry",
			expires: time.Now().Add(-5 * time.Minute),
			wantMin: 0,
			wantMax: 0,
		},
		{
			name:    "no expiry",
			expires: time.Time{},
			wantMin: -1,
			wantMax: -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := &CacheEntry{Expires: tt.expires}
			got := entry.TTL()
			if got < tt.wantMin || got > tt.wantMax {
				t.Errorf("TTL() = %v, want between %v and %v", got, tt.wantMin, tt.wantMax)
			}
		})
	}
}

func TestNewEntry(t *testing.T) {
	permanent := NewEntry([]byte("x"), 0)
	if !permanent.Expires.IsZero() {
		t.Errorf("NewEntry(ttl=0).Expires = %v, want zero", permanent.Expires)
	}
	if permanent.CachedAt.IsZero() {
		t.Error("CachedAt not set")
	}

	expiring := NewEntry([]byte("x"), time.Minute)
	if expiring.Expires.IsZero() || expiring.IsExpired() {
		t.Errorf("NewEntry(ttl=1m).Expires = %v, want about a minute from now", expiring.Expires)
	}
}
