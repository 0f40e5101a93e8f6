package memory

import (
	"context"
	"testing"
	"time"

	"github.com/cercino/vointer/internal/domain"
)

func TestUsedTokenStore_FirstConsumeWins(t *testing.T) {
	t.Parallel()

	s := NewUsedTokenStore()
	ctx := context.Background()

	first, err := s.Consume(ctx, domain.PurposePasswordReset, "tok", time.Minute)
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if !first {
		t.Fatalf("first consume must win")
	}

	again, _ := s.Consume(ctx, domain.PurposePasswordReset, "tok", time.Minute)
	if again {
		t.Fatalf("replay must lose")
	}
}

func TestUsedTokenStore_MarkerExpires(t *testing.T) {
	t.Parallel()

	s := NewUsedTokenStore()
	base := time.Now()
	s.now = func() time.Time { return base }

	ctx := context.Background()
	if first, _ := s.Consume(ctx, domain.PurposePasswordReset, "tok", time.Minute); !first {
		t.Fatalf("first consume must win")
	}

	s.now = func() time.Time { return base.Add(2 * time.Minute) }

	first, err := s.Consume(ctx, domain.PurposePasswordReset, "tok", time.Minute)
	if err != nil {
		t.Fatalf("consume after expiry: %v", err)
	}
	if !first {
		t.Fatalf("expired marker must not block")
	}
}

func TestUsedTokenStore_EmptyToken(t *testing.T) {
	t.Parallel()

	s := NewUsedTokenStore()
	_, err := s.Consume(context.Background(), domain.PurposePasswordReset, "", time.Minute)
	if !domain.Is(err, "missing_field") {
		t.Fatalf("expected missing_field, got %v", err)
	}
}
