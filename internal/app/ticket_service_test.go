package app

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/form3tech-oss/jwt-go"
)

func TestTicketServiceRoundTrip(t *testing.T) {
	svc := NewTicketService("test-secret", "gdy", time.Minute)
	ticket, err := svc.GenerateTicket("user123", "match-456")
	if err != nil {
		t.Fatalf("generate ticket error: %v", err)
	}

	claims := parseTicketClaims(t, ticket, "test-secret")
	if got := stringClaim(t, claims, "sub"); got != "user123" {
		t.Fatalf("sub = %s, want user123", got)
	}
	if got := stringClaim(t, claims, "mid"); got != "match-456" {
		t.Fatalf("mid = %s, want match-456", got)
	}
	if got := stringClaim(t, claims, "iss"); got != "gdy" {
		t.Fatalf("iss = %s, want gdy", got)
	}
	stringClaim(t, claims, "jti")

	if err := svc.VerifyTicket(ticket, "user123", "match-456"); err != nil {
		t.Fatalf("verify ticket error: %v", err)
	}
}

func TestTicketServiceRejects(t *testing.T) {
	svc := NewTicketService("test-secret", "gdy", time.Minute)
	ticket, err := svc.GenerateTicket("user123", "match-456")
	if err != nil {
		t.Fatalf("generate ticket error: %v", err)
	}

	expired := NewTicketService("test-secret", "gdy", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	stale, err := expired.GenerateTicket("user123", "match-456")
	if err != nil {
		t.Fatalf("generate ticket error: %v", err)
	}

	otherIssuer, _ := NewTicketService("test-secret", "someone-else", time.Minute).GenerateTicket("user123", "match-456")

	tests := []struct {
		name    string
		svc     *TicketService
		ticket  string
		userID  string
		matchID string
	}{
		{name: "wrong user", svc: svc, ticket: ticket, userID: "intruder", matchID: "match-456"},
		{name: "wrong match", svc: svc, ticket: ticket, userID: "user123", matchID: "match-789"},
		{name: "wrong secret", svc: NewTicketService("other", "gdy", 0), ticket: ticket, userID: "user123", matchID: "match-456"},
		{name: "expired", svc: svc, ticket: stale, userID: "user123", matchID: "match-456"},
		{name: "wrong issuer", svc: svc, ticket: otherIssuer, userID: "user123", matchID: "match-456"},
		{name: "garbage", svc: svc, ticket: "not-a-jwt", userID: "user123", matchID: "match-456"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.svc.VerifyTicket(tt.ticket, tt.userID, tt.matchID)
			if !errors.Is(err, ErrInvalidTicket) {
				t.Fatalf("VerifyTicket() error = %v, want %v", err, ErrInvalidTicket)
			}
		})
	}
}

func TestTicketServiceRequiresConfig(t *testing.T) {
	svc := NewTicketService("", "gdy", 0)
	if svc.Enabled() {
		t.Fatal("service without a secret should be disabled")
	}
	if _, err := svc.GenerateTicket("user", "match"); err == nil {
		t.Fatal("expected error for missing secret")
	}
	var nilSvc *TicketService
	if nilSvc.Enabled() {
		t.Fatal("nil service should be disabled")
	}
	if _, err := NewTicketService("s", "gdy", 0).GenerateTicket("", "match"); err == nil {
		t.Fatal("expected error for empty user")
	}
}

func parseTicketClaims(t *testing.T, tokenString, secret string) jwt.MapClaims {
	t.Helper()

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		t.Fatalf("parse token error: %v", err)
	}
	if !token.Valid {
		t.Fatal("token is invalid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatal("claims are not map claims")
	}
	return claims
}

func stringClaim(t *testing.T, claims jwt.MapClaims, name string) string {
	t.Helper()
	value, ok := claims[name]
	if !ok {
		t.Fatalf("missing %s claim", name)
	}
	str, ok := value.(string)
	if !ok {
		t.Fatalf("%s claim is not a string", name)
	}
	return str
}
