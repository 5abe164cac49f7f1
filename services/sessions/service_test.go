package sessions

import (
	"testing"
	"time"
)

func TestCreateAndValidate(t *testing.T) {
	svc, err := NewService(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}

	session, err := svc.Create("acct-1", true, "test-agent", "127.0.0.1")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if session.Token == "" {
		t.Fatal("expected non-empty token")
	}

	got, err := svc.Validate(session.Token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if got.AccountID != "acct-1" || !got.IsMaster {
		t.Errorf("unexpected session: %+v", got)
	}

	if _, err := svc.Validate(""); err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken for empty token, got %v", err)
	}
	if _, err := svc.Validate("bogus"); err != ErrSessionNotFound {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestExpiredSessionRejected(t *testing.T) {
	svc, err := NewService(t.TempDir(), time.Millisecond)
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}

	session, err := svc.Create("acct-1", false, "", "")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	time.Sleep(5 * time.Millisecond)
	if _, err := svc.Validate(session.Token); err != ErrSessionExpired {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	// Expired session is dropped on validation
	if svc.Count() != 0 {
		t.Errorf("expected expired session to be removed, count=%d", svc.Count())
	}
}

func TestRevoke(t *testing.T) {
	svc, err := NewService(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}

	session, _ := svc.Create("acct-1", false, "", "")
	if err := svc.Revoke(session.Token); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}
	if _, err := svc.Validate(session.Token); err != ErrSessionNotFound {
		t.Errorf("expected ErrSessionNotFound after revoke, got %v", err)
	}
	if err := svc.Revoke(session.Token); err != ErrSessionNotFound {
		t.Errorf("expected ErrSessionNotFound for double revoke, got %v", err)
	}
}

func TestRevokeAllForAccount(t *testing.T) {
	svc, err := NewService(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}

	svc.Create("acct-1", false, "", "")
	svc.Create("acct-1", false, "", "")
	other, _ := svc.Create("acct-2", false, "", "")

	if n := svc.RevokeAllForAccount("acct-1"); n != 2 {
		t.Fatalf("expected 2 revoked, got %d", n)
	}
	if _, err := svc.Validate(other.Token); err != nil {
		t.Errorf("other account's session should survive: %v", err)
	}
}

func TestCleanup(t *testing.T) {
	svc, err := NewService(t.TempDir(), time.Millisecond)
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}

	svc.Create("acct-1", false, "", "")
	svc.Create("acct-2", false, "", "")
	time.Sleep(5 * time.Millisecond)

	if n := svc.Cleanup(); n != 2 {
		t.Fatalf("expected 2 cleaned up, got %d", n)
	}
	if svc.Count() != 0 {
		t.Errorf("expected empty session store, count=%d", svc.Count())
	}
}

func TestPersistsAcrossRestart(t *testing.T) {
	dir := t.TempDir()

	svc, err := NewService(dir, time.Hour)
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	session, err := svc.Create("acct-1", false, "agent", "10.0.0.1")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	reloaded, err := NewService(dir, time.Hour)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	got, err := reloaded.Validate(session.Token)
	if err != nil {
		t.Fatalf("Validate after reload failed: %v", err)
	}
	if got.AccountID != "acct-1" || got.UserAgent != "agent" {
		t.Errorf("session fields lost on reload: %+v", got)
	}
}

func TestExpiredSessionsDroppedOnLoad(t *testing.T) {
	dir := t.TempDir()

	svc, err := NewService(dir, time.Millisecond)
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	svc.Create("acct-1", false, "", "")
	time.Sleep(5 * time.Millisecond)

	reloaded, err := NewService(dir, time.Hour)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.Count() != 0 {
		t.Errorf("expired sessions must be filtered at load, count=%d", reloaded.Count())
	}
}
