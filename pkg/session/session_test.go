package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	perrors "github.com/ncassessoria/gerapost/pkg/errors"
)

func TestNew(t *testing.T) {
	s, err := New(ProviderGoogle, "", " Ana@Example.com ", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if s.User.Email != "ana@example.com" || s.User.Name != "ana" {
		t.Errorf("user = %+v", s.User)
	}
	if !s.Authenticated() {
		t.Error("new session not authenticated")
	}

	again, err := New(ProviderGoogle, "Ana", "ana@example.com", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if again.UserID() != s.UserID() {
		t.Errorf("UserID not stable: %s vs %s", again.UserID(), s.UserID())
	}
	if again.ID == s.ID {
		t.Error("session IDs should differ")
	}

	fb, _ := New(ProviderFacebook, "Ana", "ana@example.com", time.Hour)
	if fb.UserID() == s.UserID() {
		t.Error("UserID should be namespaced by provider")
	}
	if want := "facebook:" + fb.User.ID; fb.UserID() != want {
		t.Errorf("UserID() = %q, want %q", fb.UserID(), want)
	}
}

func TestNewErrors(t *testing.T) {
	if _, err := New(ProviderGoogle, "x", "not-an-email", time.Hour); !perrors.Is(err, perrors.ErrCodeAuthInvalidCredentials) {
		t.Errorf("bad email: %v", err)
	}
	if _, err := New("github", "x", "a@b.c", time.Hour); !perrors.Is(err, perrors.ErrCodeAuthProviderDisabled) {
		t.Errorf("unknown provider: %v", err)
	}
}

func TestNilSession(t *testing.T) {
	var s *Session
	if s.UserID() != "" || s.Authenticated() {
		t.Error("nil session should be anonymous")
	}
}

func TestCLIStoreExpired(t *testing.T) {
	ctx := context.Background()
	cs, err := NewCLIStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	old, _ := New(ProviderGoogle, "Old", "old@example.com", -time.Hour)
	if err := cs.SaveSession(ctx, old); err != nil {
		t.Fatal(err)
	}
	if got, err := cs.GetSession(ctx); got != nil || err != nil {
		t.Fatalf("expired session returned: %+v, %v", got, err)
	}
	if _, err := os.Stat(cs.Path()); !os.IsNotExist(err) {
		t.Errorf("expired session file kept: %v", err)
	}
	if err := cs.DeleteSession(ctx); err != nil {
		t.Errorf("deleting a missing session: %v", err)
	}
}

func TestCLIStoreCorrupt(t *testing.T) {
	cs, err := NewCLIStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	os.WriteFile(cs.Path(), []byte("{not json"), 0600)
	if _, err := cs.GetSession(context.Background()); err == nil {
		t.Error("corrupt session file should be an error")
	}
}

func TestCLIStore(t *testing.T) {
	ctx := context.Background()
	cs, err := NewCLIStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if got, err := cs.GetSession(ctx); got != nil || err != nil {
		t.Fatalf("empty store: %+v, %v", got, err)
	}
	s, _ := New(ProviderFacebook, "Bia", "bia@example.com", time.Hour)
	if err := cs.SaveSession(ctx, s); err != nil {
		t.Fatal(err)
	}
	got, err := cs.GetSession(ctx)
	if err != nil || got == nil || got.ID != s.ID {
		t.Fatalf("GetSession() = %+v, %v", got, err)
	}
	if info, err := os.Stat(cs.Path()); err != nil || info.Mode().Perm() != 0600 {
		t.Errorf("session file mode: %v %v", info, err)
	}
	if err := cs.DeleteSession(ctx); err != nil {
		t.Fatal(err)
	}
	if got, _ := cs.GetSession(ctx); got != nil {
		t.Error("session survived sign-out")
	}
}

func TestClassifyAuthError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want perrors.Code
	}{
		{"popup closed", errors.New("Firebase: Error (auth/popup-closed-by-user)."), perrors.ErrCodeAuthCanceled},
		{"context cancelled", fmt.Errorf("login: %w", context.Canceled), perrors.ErrCodeAuthCanceled},
		{"wrong password", errors.New("auth/wrong-password"), perrors.ErrCodeAuthInvalidCredentials},
		{"provider off", errors.New("auth/operation-not-allowed"), perrors.ErrCodeAuthProviderDisabled},
		{"bad api key", errors.New("auth/invalid-api-key"), perrors.ErrCodeAuthMisconfigured},
		{"unknown", errors.New("boom"), perrors.ErrCodeAuthMisconfigured},
		{"already coded", perrors.New(perrors.ErrCodeAuthProviderDisabled, "off"), perrors.ErrCodeAuthProviderDisabled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyAuthError(tt.err)
			if perrors.GetCode(got) != tt.want {
				t.Errorf("code = %s, want %s", perrors.GetCode(got), tt.want)
			}
		})
	}
	if ClassifyAuthError(nil) != nil {
		t.Error("nil error should stay nil")
	}
	if !perrors.Silent(ClassifyAuthError(context.Canceled)) {
		t.Error("cancellation should be silent")
	}
}
