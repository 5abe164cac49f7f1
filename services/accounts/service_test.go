package accounts

import (
	"testing"

	"cinematch/models"
)

func TestCreateAndAuthenticate(t *testing.T) {
	svc, err := NewService(t.TempDir())
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}

	account, err := svc.Create("alice", "hunter22", "Alice A.")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if account.ID == "" {
		t.Error("expected generated account ID")
	}
	if account.DisplayName != "Alice A." {
		t.Errorf("unexpected display name: %q", account.DisplayName)
	}
	if account.IsMaster {
		t.Error("regular accounts must not be master")
	}

	got, err := svc.Authenticate("alice", "hunter22")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if got.ID != account.ID {
		t.Errorf("authenticated wrong account: %s != %s", got.ID, account.ID)
	}

	// Username lookup is case-insensitive
	if _, err := svc.Authenticate("ALICE", "hunter22"); err != nil {
		t.Errorf("case-insensitive auth failed: %v", err)
	}

	if _, err := svc.Authenticate("alice", "wrong"); err != ErrInvalidCredentials {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Authenticate("nobody", "hunter22"); err != ErrInvalidCredentials {
		t.Errorf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestCreateValidation(t *testing.T) {
	svc, err := NewService(t.TempDir())
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}

	if _, err := svc.Create("", "secret", ""); err != ErrUsernameRequired {
		t.Errorf("expected ErrUsernameRequired, got %v", err)
	}
	if _, err := svc.Create("bob", "  ", ""); err != ErrPasswordRequired {
		t.Errorf("expected ErrPasswordRequired, got %v", err)
	}

	if _, err := svc.Create("bob", "secret", ""); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := svc.Create("BOB", "secret", ""); err != ErrUsernameExists {
		t.Errorf("expected ErrUsernameExists for case-insensitive duplicate, got %v", err)
	}
}

func TestMasterAccountBootstrap(t *testing.T) {
	dir := t.TempDir()

	svc, err := NewService(dir)
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}

	var master models.Account
	found := false
	for _, a := range svc.List() {
		if a.IsMaster {
			master = a
			found = true
		}
	}
	if !found {
		t.Fatal("expected bootstrap master account")
	}
	if master.Username != models.MasterAccountUsername {
		t.Errorf("unexpected master username: %q", master.Username)
	}

	// Reload must not create a second master
	again, err := NewService(dir)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	masters := 0
	for _, a := range again.List() {
		if a.IsMaster {
			masters++
		}
	}
	if masters != 1 {
		t.Errorf("expected exactly one master account, got %d", masters)
	}
}

func TestChangePassword(t *testing.T) {
	svc, err := NewService(t.TempDir())
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}

	account, err := svc.Create("carol", "original", "")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := svc.ChangePassword(account.ID, "updated"); err != nil {
		t.Fatalf("ChangePassword failed: %v", err)
	}
	if _, err := svc.Authenticate("carol", "original"); err != ErrInvalidCredentials {
		t.Error("old password should no longer authenticate")
	}
	if _, err := svc.Authenticate("carol", "updated"); err != nil {
		t.Errorf("new password failed: %v", err)
	}

	if err := svc.ChangePassword("missing-id", "whatever"); err != ErrAccountNotFound {
		t.Errorf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestResetMasterPassword(t *testing.T) {
	svc, err := NewService(t.TempDir())
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}

	generated, err := svc.ResetMasterPassword()
	if err != nil {
		t.Fatalf("ResetMasterPassword failed: %v", err)
	}
	if len(generated) != 20 {
		t.Errorf("expected 20-char generated password, got %d", len(generated))
	}
	if _, err := svc.Authenticate(models.MasterAccountUsername, generated); err != nil {
		t.Errorf("generated password failed to authenticate: %v", err)
	}
}

func TestPersistsAcrossRestart(t *testing.T) {
	dir := t.TempDir()

	svc, err := NewService(dir)
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	if _, err := svc.Create("dave", "secret", "Dave"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	reloaded, err := NewService(dir)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	account, err := reloaded.Authenticate("dave", "secret")
	if err != nil {
		t.Fatalf("Authenticate after reload failed: %v", err)
	}
	if account.DisplayName != "Dave" {
		t.Errorf("display name lost on reload: %q", account.DisplayName)
	}
}
