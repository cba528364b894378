package token

import (
	"errors"
	"testing"
	"time"
)

func newTestSigner(t *testing.T, accessTTL, refreshTTL time.Duration) *Signer {
	t.Helper()
	s, err := NewSigner("access-secret", "refresh-secret", accessTTL, refreshTTL)
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	return s
}

func TestNewSignerRejectsMissingOrEqualSecrets(t *testing.T) {
	if _, err := NewSigner("", "r", time.Minute, time.Hour); err == nil {
		t.Fatal("expected error for empty access secret")
	}
	if _, err := NewSigner("a", "  ", time.Minute, time.Hour); err == nil {
		t.Fatal("expected error for empty refresh secret")
	}
	if _, err := NewSigner("same", "same", time.Minute, time.Hour); err == nil {
		t.Fatal("expected error for identical secrets")
	}
}

func TestAccessRoundTrip(t *testing.T) {
	s := newTestSigner(t, time.Minute, time.Hour)

	tok, err := s.IssueAccess(42)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	userID, err := s.VerifyAccess(tok)
	if err != nil {
		t.Fatalf("VerifyAccess: %v", err)
	}
	if userID != 42 {
		t.Fatalf("expected user 42, got %d", userID)
	}
}

func TestRefreshRoundTrip(t *testing.T) {
	s := newTestSigner(t, time.Minute, time.Hour)

	tok, err := s.IssueRefresh(7)
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}
	userID, err := s.VerifyRefresh(tok)
	if err != nil {
		t.Fatalf("VerifyRefresh: %v", err)
	}
	if userID != 7 {
		t.Fatalf("expected user 7, got %d", userID)
	}
}

func TestKindsDoNotCrossVerify(t *testing.T) {
	s := newTestSigner(t, time.Minute, time.Hour)

	access, err := s.IssueAccess(1)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, err := s.VerifyRefresh(access); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid verifying access token as refresh, got %v", err)
	}

	refresh, err := s.IssueRefresh(1)
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}
	if _, err := s.VerifyAccess(refresh); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid verifying refresh token as access, got %v", err)
	}
}

func TestExpiredTokenIsDistinctFromInvalid(t *testing.T) {
	s := newTestSigner(t, -time.Minute, time.Hour)

	tok, err := s.IssueAccess(5)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, err := s.VerifyAccess(tok); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestGarbageTokenIsInvalid(t *testing.T) {
	s := newTestSigner(t, time.Minute, time.Hour)

	for _, tok := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := s.VerifyAccess(tok); !errors.Is(err, ErrTokenInvalid) {
			t.Fatalf("token %q: expected ErrTokenInvalid, got %v", tok, err)
		}
	}
}

func TestTamperedTokenIsInvalid(t *testing.T) {
	s := newTestSigner(t, time.Minute, time.Hour)

	tok, err := s.IssueAccess(9)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	tampered := tok[:len(tok)-2] + "xx"
	if _, err := s.VerifyAccess(tampered); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for tampered token, got %v", err)
	}
}
