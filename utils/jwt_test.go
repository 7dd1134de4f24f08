package utils

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func init() {
	os.Setenv("JWT_SECRET", "test-secret-key-for-unit-tests")
}

func TestGenerateToken(t *testing.T) {
	token, err := GenerateToken(uuid.New(), "tokengen@test.com", "user")
	if err != nil {
		t.Fatalf("expected no error generating token, got: %v", err)
	}

	if token == "" {
		t.Fatal("expected non-empty token string")
	}

	// header.payload.signature
	if dots := strings.Count(token, "."); dots != 2 {
		t.Errorf("expected JWT with 2 dots, got %d dots", dots)
	}
}

func TestValidateToken(t *testing.T) {
	userID := uuid.New()
	email := "validate@test.com"
	role := "admin"

	token, err := GenerateToken(userID, email, role)
	if err != nil {
		t.Fatalf("expected no error generating token, got: %v", err)
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("expected no error validating token, got: %v", err)
	}

	if claims.UserID != userID {
		t.Errorf("expected user_id %s, got %s", userID, claims.UserID)
	}
	if claims.Email != email {
		t.Errorf("expected email %s, got %s", email, claims.Email)
	}
	if claims.Role != role {
		t.Errorf("expected role %s, got %s", role, claims.Role)
	}
	if claims.Issuer != "trendscope" {
		t.Errorf("expected issuer 'trendscope', got %s", claims.Issuer)
	}
}

func signClaims(t *testing.T, claims Claims, method jwt.SigningMethod, key interface{}) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatal(err)
	}
	return signed
}

func TestExpiredTokenRejected(t *testing.T) {
	claims := Claims{
		UserID: uuid.New(),
		Email:  "expired@test.com",
		Role:   "user",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-1 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			Issuer:    "trendscope",
		},
	}

	expired := signClaims(t, claims, jwt.SigningMethodHS256, []byte(os.Getenv("JWT_SECRET")))
	if _, err := ValidateToken(expired); err == nil {
		t.Fatal("expected error for expired token, got nil")
	}
}

func TestTokenWrongSecretRejected(t *testing.T) {
	claims := Claims{
		UserID: uuid.New(),
		Role:   "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			Issuer:    "trendscope",
		},
	}

	forged := signClaims(t, claims, jwt.SigningMethodHS256, []byte("some-other-secret"))
	if _, err := ValidateToken(forged); err == nil {
		t.Fatal("expected error for token signed with a different secret")
	}
}

func TestTokenForeignIssuerRejected(t *testing.T) {
	claims := Claims{
		UserID: uuid.New(),
		Role:   "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			Issuer:    "someone-else",
		},
	}

	foreign := signClaims(t, claims, jwt.SigningMethodHS256, []byte(os.Getenv("JWT_SECRET")))
	if _, err := ValidateToken(foreign); err == nil {
		t.Fatal("expected error for token with a foreign issuer")
	}
}

func TestMalformedTokenRejected(t *testing.T) {
	if _, err := ValidateToken("not.a.token"); err == nil {
		t.Fatal("expected error for malformed token")
	}
}
