package domain

import (
	"testing"
	"time"
)

func TestUserLocked(t *testing.T) {
	now := time.Now().UTC()
	var u User

	if u.Locked(now) {
		t.Fatalf("expected unlocked without timestamp")
	}

	future := now.Add(10 * time.Minute)
	u.AccountLockUntil = &future
	if !u.Locked(now) {
		t.Fatalf("expected locked with future timestamp")
	}

	past := now.Add(-10 * time.Minute)
	u.AccountLockUntil = &past
	if u.Locked(now) {
		t.Fatalf("expected past lock to count as unlocked")
	}
}

func TestAppendRefreshToken_FIFOEviction(t *testing.T) {
	var u User
	for i := 0; i < MaxRefreshTokens+2; i++ {
		u.AppendRefreshToken(RefreshToken{ID: string(rune('a' + i))})
	}

	if len(u.RefreshTokens) != MaxRefreshTokens {
		t.Fatalf("expected list capped at %d, got %d", MaxRefreshTokens, len(u.RefreshTokens))
	}
	if _, ok := u.FindRefreshToken("a"); ok {
		t.Fatalf("expected oldest token evicted")
	}
	if _, ok := u.FindRefreshToken("b"); ok {
		t.Fatalf("expected second oldest token evicted")
	}
	if u.RefreshTokens[len(u.RefreshTokens)-1].ID != string(rune('a'+MaxRefreshTokens+1)) {
		t.Fatalf("expected newest token kept")
	}
}

func TestRemoveRefreshToken(t *testing.T) {
	var u User
	u.AppendRefreshToken(RefreshToken{ID: "one"})
	u.AppendRefreshToken(RefreshToken{ID: "two"})

	if !u.RemoveRefreshToken("one") {
		t.Fatalf("expected removal of existing token")
	}
	if u.RemoveRefreshToken("one") {
		t.Fatalf("expected second removal to report missing")
	}
	if len(u.RefreshTokens) != 1 || u.RefreshTokens[0].ID != "two" {
		t.Fatalf("expected only the other token to remain")
	}
}
