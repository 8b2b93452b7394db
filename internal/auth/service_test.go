package auth

import (
	"testing"
	"time"
)

func TestIssueParseRoundTrip(t *testing.T) {
	svc := NewService("test-secret", time.Minute)

	id := Identity{
		UserID:    "u-1",
		Username:  "amalik",
		Role:      "student",
		ProfileID: "s-1",
	}
	tok, err := svc.Issue(id)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := svc.Parse(tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Sub != id.UserID || claims.Username != id.Username ||
		claims.Role != id.Role || claims.ProfileID != id.ProfileID {
		t.Errorf("claims = %+v, want %+v", claims, id)
	}
	if claims.Issuer != "campusd" {
		t.Errorf("issuer = %q", claims.Issuer)
	}
}

func TestParseRejectsWrongKey(t *testing.T) {
	tok, err := NewService("secret-a", time.Minute).Issue(Identity{UserID: "u-1"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := NewService("secret-b", time.Minute).Parse(tok); err == nil {
		t.Error("token signed with another key should not parse")
	}
}

func TestParseRejectsExpired(t *testing.T) {
	svc := &Service{hmac: []byte("test-secret"), ttl: -time.Minute}
	tok, err := svc.Issue(Identity{UserID: "u-1"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.Parse(tok); err == nil {
		t.Error("expired token should not parse")
	}
}
