package credential

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/felixgeelhaar/hostprep/internal/testutil/mocks"
)

const testPath = "/etc/hostprep/token"

func TestStore_Get_PromptsOnceAndPersists(t *testing.T) {
	fs := mocks.NewFileSystem()
	prompter := mocks.NewPrompter()
	prompter.SecretAnswer = "tok-12345"

	store := NewStore(testPath, fs, prompter)

	cred, err := store.Get(context.Background())
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if cred.Value() != "tok-12345" {
		t.Errorf("Value() = %q, want %q", cred.Value(), "tok-12345")
	}

	// Second Get must come from the cache, not the prompter.
	if _, err := store.Get(context.Background()); err != nil {
		t.Fatalf("Get() second call error = %v", err)
	}
	if got := len(prompter.SecretCalls()); got != 1 {
		t.Errorf("prompter invoked %d times, want 1", got)
	}

	if !fs.Exists(testPath) {
		t.Fatal("credential was not persisted")
	}
}

func TestStore_Get_OwnerOnlyPermissions(t *testing.T) {
	fs := mocks.NewFileSystem()
	prompter := mocks.NewPrompter()
	prompter.SecretAnswer = "tok-12345"

	store := NewStore(testPath, fs, prompter)
	if _, err := store.Get(context.Background()); err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	perm, ok := fs.Perm(testPath)
	if !ok {
		t.Fatal("credential file missing")
	}
	if perm != 0600 {
		t.Errorf("perm = %o, want 0600", perm)
	}
}

func TestStore_Get_ReadsExistingFile(t *testing.T) {
	fs := mocks.NewFileSystem()
	fs.AddFile(testPath, []byte("tok-on-disk\n"))
	prompter := mocks.NewPrompter()

	store := NewStore(testPath, fs, prompter)
	cred, err := store.Get(context.Background())
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if cred.Value() != "tok-on-disk" {
		t.Errorf("Value() = %q, want trimmed file content", cred.Value())
	}
	if len(prompter.SecretCalls()) != 0 {
		t.Error("prompter must not be invoked when the file exists")
	}
}

func TestStore_Get_ReadError(t *testing.T) {
	fs := mocks.NewFileSystem()
	fs.AddFile(testPath, []byte("tok\n"))
	fs.AddReadError(testPath, errors.New("permission denied"))

	store := NewStore(testPath, fs, mocks.NewPrompter())
	_, err := store.Get(context.Background())

	var storageErr *StorageError
	if !errors.As(err, &storageErr) {
		t.Fatalf("Get() error = %v, want StorageError", err)
	}
	if storageErr.Op != "read" {
		t.Errorf("Op = %q, want %q", storageErr.Op, "read")
	}
}

func TestStore_Get_PromptError(t *testing.T) {
	prompter := mocks.NewPrompter()
	prompter.SecretErr = errors.New("no tty")

	store := NewStore(testPath, mocks.NewFileSystem(), prompter)
	if _, err := store.Get(context.Background()); err == nil {
		t.Error("Get() should fail when the prompt fails")
	}
}

func TestStore_Set_Rotation(t *testing.T) {
	fs := mocks.NewFileSystem()
	fs.AddFile(testPath, []byte("old-token\n"))

	store := NewStore(testPath, fs, mocks.NewPrompter())
	if err := store.Set("new-token"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	cred, err := store.Get(context.Background())
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if cred.Value() != "new-token" {
		t.Errorf("Value() = %q, want rotated token", cred.Value())
	}

	data, _ := fs.ReadFile(testPath)
	if strings.Contains(string(data), "old-token") {
		t.Error("old token still present after rotation")
	}
}

func TestStore_Exists(t *testing.T) {
	fs := mocks.NewFileSystem()
	store := NewStore(testPath, fs, mocks.NewPrompter())

	if store.Exists() {
		t.Error("Exists() = true before any persist")
	}
	fs.AddFile(testPath, []byte("tok\n"))
	if !store.Exists() {
		t.Error("Exists() = false with file present")
	}
}

func TestCredential_Redaction(t *testing.T) {
	cred := New("super-secret")

	if got := fmt.Sprintf("%s", cred); strings.Contains(got, "super-secret") {
		t.Errorf("%%s leaked the secret: %q", got)
	}
	if got := fmt.Sprintf("%v", cred); strings.Contains(got, "super-secret") {
		t.Errorf("%%v leaked the secret: %q", got)
	}
	if got := fmt.Sprintf("%#v", cred); strings.Contains(got, "super-secret") {
		t.Errorf("%%#v leaked the secret: %q", got)
	}
	if cred.String() != "[redacted]" {
		t.Errorf("String() = %q, want [redacted]", cred.String())
	}
}

func TestCredential_IsZero(t *testing.T) {
	if !New("").IsZero() {
		t.Error("empty credential should be zero")
	}
	if New("tok").IsZero() {
		t.Error("non-empty credential should not be zero")
	}
}
