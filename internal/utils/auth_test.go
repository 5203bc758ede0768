package utils

import (
	"testing"

	"github.com/google/uuid"

	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:          "test-secret",
			ExpirationHours: 1,
		},
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct-horse")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "correct-horse" {
		t.Fatal("password stored in the clear")
	}
	if !CheckPasswordHash("correct-horse", hash) {
		t.Error("correct password rejected")
	}
	if CheckPasswordHash("wrong-horse", hash) {
		t.Error("wrong password accepted")
	}
}

func TestJWTRoundTrip(t *testing.T) {
	cfg := testConfig()
	userID := uuid.New()

	token, err := GenerateJWT(userID, cfg)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := ValidateJWT(token, cfg)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != userID {
		t.Errorf("user_id = %s, want %s", claims.UserID, userID)
	}

	// A token signed under another secret is rejected
	other := testConfig()
	other.JWT.Secret = "different-secret"
	if _, err := ValidateJWT(token, other); err == nil {
		t.Error("token accepted under the wrong secret")
	}

	if _, err := ValidateJWT("not-a-token", cfg); err == nil {
		t.Error("garbage token accepted")
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Maria@Example.COM "); got != "maria@example.com" {
		t.Errorf("NormalizeEmail = %q", got)
	}
}
