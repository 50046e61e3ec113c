package prompt

import (
	"context"
	"strings"
	"testing"
)

func TestYesPrompter_ConfirmWithoutAsking(t *testing.T) {
	ok, err := NewYesPrompter().Confirm(context.Background(), "Apply 2 change(s)?", false)
	if err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}
	if !ok {
		t.Error("Confirm() = false, want yes in non-interactive mode")
	}
}

func TestYesPrompter_SecretFails(t *testing.T) {
	_, err := NewYesPrompter().Secret(context.Background(), "Enter provisioning token")
	if err == nil {
		t.Fatal("Secret() should fail in non-interactive mode")
	}
	if !strings.Contains(err.Error(), "hostprep secret set") {
		t.Errorf("error should point at 'hostprep secret set': %v", err)
	}
}
