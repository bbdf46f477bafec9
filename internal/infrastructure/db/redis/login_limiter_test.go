package redis

import (
	"strings"
	"testing"
	"time"
)

func TestLoginLimiter_Defaults(t *testing.T) {
	l := NewLoginLimiter(nil, 0, 0)
	if l.maxFailures != defaultMaxFailures {
		t.Fatalf("expected default max failures, got %d", l.maxFailures)
	}
	if l.window != defaultWindow {
		t.Fatalf("expected default window, got %s", l.window)
	}

	l = NewLoginLimiter(nil, 3, time.Minute)
	if l.maxFailures != 3 || l.window != time.Minute {
		t.Fatalf("explicit settings ignored: %d %s", l.maxFailures, l.window)
	}
}

func TestLoginLimiter_KeyHidesEmail(t *testing.T) {
	l := NewLoginLimiter(nil, 0, 0)
	k := l.key("alice@example.com")
	if !strings.HasPrefix(k, "login:fail:") {
		t.Fatalf("unexpected key prefix: %s", k)
	}
	if strings.Contains(k, "alice") {
		t.Fatalf("email leaked into key: %s", k)
	}
	if k != l.key("alice@example.com") {
		t.Fatalf("key must be deterministic")
	}
	if k == l.key("bob@example.com") {
		t.Fatalf("distinct emails must not share a key")
	}
}
