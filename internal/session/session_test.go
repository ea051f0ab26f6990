package session

import "testing"

func TestGateSignedIn(t *testing.T) {
	t.Parallel()

	gate := NewGate(nil)
	if gate.SignedIn() {
		t.Fatal("empty gate should not be signed in")
	}

	gate.SetUser(&User{Email: "ana@example.com"})
	if !gate.SignedIn() {
		t.Fatal("expected signed in after SetUser")
	}
	if gate.User().Email != "ana@example.com" {
		t.Fatalf("unexpected user %+v", gate.User())
	}

	gate.SetUser(nil)
	if gate.SignedIn() {
		t.Fatal("expected signed out after SetUser(nil)")
	}
}
