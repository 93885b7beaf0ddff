package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/you/accountsvc/domain"
)

func TestOTPRepositoryImpl_FindLatest(t *testing.T) {
	repo := NewOTPRepository(newTestDB(t))
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	if _, err := repo.FindLatest(ctx, "x@example.com", domain.PurposeLogin); !errors.Is(err, domain.ErrOTPExpired) {
		t.Fatalf("expected otp_expired for empty ledger, got %v", err)
	}

	old := &domain.OneTimeCode{
		Identifier: "x@example.com", Purpose: domain.PurposeLogin,
		Code: "111111", MaxAttempts: 5, ExpiresAt: base.Add(5 * time.Minute),
	}
	if err := repo.Create(ctx, old); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	// Force distinct created_at ordering.
	time.Sleep(5 * time.Millisecond)
	newer := &domain.OneTimeCode{
		Identifier: "x@example.com", Purpose: domain.PurposeLogin,
		Code: "222222", MaxAttempts: 5, ExpiresAt: base.Add(10 * time.Minute),
	}
	if err := repo.Create(ctx, newer); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	got, err := repo.FindLatest(ctx, "x@example.com", domain.PurposeLogin)
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if got.Code != "222222" {
		t.Errorf("expected the newest code, got %s", got.Code)
	}

	// A different purpose has its own ledger.
	if _, err := repo.FindLatest(ctx, "x@example.com", domain.PurposePasswordReset); !errors.Is(err, domain.ErrOTPExpired) {
		t.Errorf("expected otp_expired for other purpose, got %v", err)
	}
}

func TestOTPRepositoryImpl_IncrementAttempts(t *testing.T) {
	repo := NewOTPRepository(newTestDB(t))
	ctx := context.Background()

	code := &domain.OneTimeCode{
		Identifier: "x@example.com", Purpose: domain.PurposeLogin,
		Code: "111111", MaxAttempts: 5, ExpiresAt: time.Now().Add(5 * time.Minute),
	}
	if err := repo.Create(ctx, code); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	for want := 1; want <= 3; want++ {
		attempts, err := repo.IncrementAttempts(ctx, code.ID)
		if err != nil {
			t.Fatalf("increment failed: %v", err)
		}
		if attempts != want {
			t.Errorf("expected %d attempts, got %d", want, attempts)
		}
	}

	if _, err := repo.IncrementAttempts(ctx, 9999); !errors.Is(err, domain.ErrOTPExpired) {
		t.Errorf("expected otp_expired for unknown row, got %v", err)
	}
}

func TestOTPRepositoryImpl_MarkVerified(t *testing.T) {
	repo := NewOTPRepository(newTestDB(t))
	ctx := context.Background()
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	code := &domain.OneTimeCode{
		Identifier: "x@example.com", Purpose: domain.PurposeLogin,
		Code: "111111", MaxAttempts: 5, ExpiresAt: at.Add(5 * time.Minute),
	}
	if err := repo.Create(ctx, code); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := repo.MarkVerified(ctx, code.ID, at); err != nil {
		t.Fatalf("mark verified failed: %v", err)
	}

	// A second consumption attempt must fail.
	if err := repo.MarkVerified(ctx, code.ID, at); !errors.Is(err, domain.ErrOTPExpired) {
		t.Errorf("expected otp_expired on double consumption, got %v", err)
	}

	// Consumed rows drop out of FindLatest.
	if _, err := repo.FindLatest(ctx, "x@example.com", domain.PurposeLogin); !errors.Is(err, domain.ErrOTPExpired) {
		t.Errorf("expected consumed code to be absent, got %v", err)
	}
}

func TestOTPRepositoryImpl_CountSince(t *testing.T) {
	repo := NewOTPRepository(newTestDB(t))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		code := &domain.OneTimeCode{
			Identifier: "x@example.com", Purpose: domain.PurposeLogin,
			Code: "111111", MaxAttempts: 5, ExpiresAt: time.Now().Add(5 * time.Minute),
		}
		if err := repo.Create(ctx, code); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	count, err := repo.CountSince(ctx, "x@example.com", time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 recent codes, got %d", count)
	}

	count, err = repo.CountSince(ctx, "x@example.com", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected no codes in the future window, got %d", count)
	}
}
