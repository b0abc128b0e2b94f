package onboarding

import (
	"context"
	"errors"
	"math/rand"
	"regexp"
	"testing"
)

type fakeAccountPort struct {
	updateErr error
	calls     []profileCall
}

type profileCall struct {
	userID      string
	username    string
	displayName string
}

func (f *fakeAccountPort) UpdateProfile(ctx context.Context, userID, username, displayName string) error {
	f.calls = append(f.calls, profileCall{userID: userID, username: username, displayName: displayName})
	return f.updateErr
}

var friendlyName = regexp.MustCompile(`^[A-Z][a-z]+[A-Z][a-z]+\d{4}$`)

func TestOnboardNewUser_SetsFriendlyName(t *testing.T) {
	accounts := &fakeAccountPort{}
	service := NewService(accounts, rand.New(rand.NewSource(1)))

	name, err := service.OnboardNewUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("OnboardNewUser returned error: %v", err)
	}
	if !friendlyName.MatchString(name) {
		t.Fatalf("unexpected name %q", name)
	}
	if len(accounts.calls) != 1 {
		t.Fatalf("Expected 1 profile update, got %d", len(accounts.calls))
	}
	call := accounts.calls[0]
	if call.userID != "user-1" || call.username != name || call.displayName != name {
		t.Fatalf("unexpected profile update: %+v", call)
	}
}

func TestOnboardNewUser_IsDeterministicForSeed(t *testing.T) {
	a, _ := NewService(&fakeAccountPort{}, rand.New(rand.NewSource(7))).OnboardNewUser(context.Background(), "u")
	b, _ := NewService(&fakeAccountPort{}, rand.New(rand.NewSource(7))).OnboardNewUser(context.Background(), "u")
	if a != b {
		t.Fatalf("names differ for the same seed: %q vs %q", a, b)
	}
}

func TestOnboardNewUser_Errors(t *testing.T) {
	service := NewService(&fakeAccountPort{updateErr: errors.New("update failed")}, nil)
	if _, err := service.OnboardNewUser(context.Background(), "user-1"); err == nil {
		t.Fatal("Expected error when profile update fails")
	}
	if _, err := NewService(&fakeAccountPort{}, nil).OnboardNewUser(context.Background(), ""); err == nil {
		t.Fatal("Expected error for empty user id")
	}
	if _, err := NewService(nil, nil).OnboardNewUser(context.Background(), "user-1"); err == nil {
		t.Fatal("Expected error for missing account port")
	}
}
