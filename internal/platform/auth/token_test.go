package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestIssueAndVerify(t *testing.T) {
	issuer := NewTokenIssuer([]byte("0123456789abcdef0123456789abcdef"), time.Hour)
	uid := uuid.New()
	tok, err := issuer.Issue(uid, "jdoe", "patient")
	if err != nil { t.Fatalf("unexpected error: %v", err) }

	claims, err := issuer.Verify(tok)
	if err != nil { t.Fatalf("unexpected error: %v", err) }
	if claims.Subject != uid.String() { t.Errorf("subject mismatch: %s", claims.Subject) }
	if claims.Username != "jdoe" { t.Errorf("username mismatch: %s", claims.Username) }
	if claims.Role != "patient" { t.Errorf("role mismatch: %s", claims.Role) }
}

func TestVerify_WrongSecret(t *testing.T) {
	issuer := NewTokenIssuer([]byte("0123456789abcdef0123456789abcdef"), time.Hour)
	tok, _ := issuer.Issue(uuid.New(), "jdoe", "patient")

	other := NewTokenIssuer([]byte("ffffffffffffffffffffffffffffffff"), time.Hour)
	if _, err := other.Verify(tok); err == nil { t.Fatal("expected verification failure") }
}

func TestVerify_Expired(t *testing.T) {
	issuer := NewTokenIssuer([]byte("0123456789abcdef0123456789abcdef"), -time.Minute)
	tok, _ := issuer.Issue(uuid.New(), "jdoe", "patient")
	if _, err := issuer.Verify(tok); err == nil { t.Fatal("expected expired token error") }
}

func TestVerify_Garbage(t *testing.T) {
	issuer := NewTokenIssuer([]byte("0123456789abcdef0123456789abcdef"), time.Hour)
	if _, err := issuer.Verify("not.a.token"); err == nil { t.Fatal("expected parse error") }
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil { t.Fatalf("unexpected error: %v", err) }
	if !CheckPassword(hash, "correct horse battery staple") { t.Error("expected password to match") }
	if CheckPassword(hash, "wrong password") { t.Error("expected mismatch") }
}

func TestHashPassword_TooShort(t *testing.T) {
	if _, err := HashPassword("short"); err == nil { t.Fatal("expected error for short password") }
}
