package auth

import (
	"testing"
	"time"

	"github.com/facilitas/chamado-service/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)
	token, exp, err := tm.GenerateToken("user-1", domain.RoleManager)
	if err != nil {
		t.Fatalf("GenerateToken returned %v", err)
	}
	if time.Until(exp) <= 0 {
		t.Fatal("token already expired")
	}

	claims, err := tm.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken returned %v", err)
	}
	if claims.UserID != "user-1" || claims.Role != domain.RoleManager {
		t.Fatalf("claims=%+v", claims)
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenManager("secret-a", 60)
	verifier := NewTokenManager("secret-b", 60)

	token, _, err := issuer.GenerateToken("user-1", domain.RoleClient)
	if err != nil {
		t.Fatalf("GenerateToken returned %v", err)
	}
	if _, err := verifier.ParseToken(token); err == nil {
		t.Fatal("token signed with another secret accepted")
	}
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)
	if _, err := tm.ParseToken("not-a-token"); err == nil {
		t.Fatal("garbage token accepted")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("senha-forte", 4)
	if err != nil {
		t.Fatalf("HashPassword returned %v", err)
	}
	if err := ComparePassword(hash, "senha-forte"); err != nil {
		t.Fatalf("ComparePassword rejected correct password: %v", err)
	}
	if err := ComparePassword(hash, "senha-errada"); err == nil {
		t.Fatal("wrong password accepted")
	}
}
