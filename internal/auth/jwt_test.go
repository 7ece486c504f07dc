package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestJWTManager_GenerateAndValidate_Success(t *testing.T) {
	secret := "test-secret-at-least-32-chars-long-for-security"
	issuer := "sirreessaa-test"
	ttl := 15 * time.Minute

	manager := NewJWTManager(secret, issuer, ttl)
	userID := uuid.New()

	token, err := manager.GenerateAccessToken(userID)
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	validatedID, err := manager.ValidateToken(context.Background(), token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if validatedID != userID {
		t.Errorf("expected userID %s, got %s", userID, validatedID)
	}
}

func TestJWTManager_ValidateToken_Expired(t *testing.T) {
	secret := "test-secret-at-least-32-chars-long-for-security"
	issuer := "sirreessaa-test"
	ttl := -1 * time.Hour // Already expired

	manager := NewJWTManager(secret, issuer, ttl)
	userID := uuid.New()

	token, err := manager.GenerateAccessToken(userID)
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	_, err = manager.ValidateToken(context.Background(), token)
	if err == nil {
		t.Fatal("expected error for expired token, got nil")
	}
	if !strings.Contains(err.Error(), "expired") && !strings.Contains(err.Error(), "parse token") {
		t.Errorf("expected expiry-related error, got: %v", err)
	}
}

func TestJWTManager_ValidateToken_InvalidSignature(t *testing.T) {
	secret1 := "test-secret-at-least-32-chars-long-for-security"
	secret2 := "different-secret-32-chars-long-for-security!!"
	issuer := "sirreessaa-test"
	ttl := 15 * time.Minute

	manager1 := NewJWTManager(secret1, issuer, ttl)
	manager2 := NewJWTManager(secret2, issuer, ttl)
	userID := uuid.New()

	token, err := manager1.GenerateAccessToken(userID)
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	_, err = manager2.ValidateToken(context.Background(), token)
	if err == nil {
		t.Fatal("expected error for invalid signature, got nil")
	}
}

func TestJWTManager_ValidateToken_Malformed(t *testing.T) {
	secret := "test-secret-at-least-32-chars-long-for-security"
	issuer := "sirreessaa-test"
	ttl := 15 * time.Minute

	manager := NewJWTManager(secret, issuer, ttl)

	malformedTokens := []string{
		"not.a.jwt",
		"invalid-token",
		"header.payload", // Missing signature
	}

	for _, token := range malformedTokens {
		_, err := manager.ValidateToken(context.Background(), token)
		if err == nil {
			t.Errorf("expected error for malformed token %q, got nil", token)
		}
	}
}

func TestJWTManager_ValidateToken_WrongIssuer(t *testing.T) {
	secret := "test-secret-at-least-32-chars-long-for-security"
	issuer1 := "sirreessaa-test"
	issuer2 := "wrong-issuer"
	ttl := 15 * time.Minute

	manager1 := NewJWTManager(secret, issuer1, ttl)
	manager2 := NewJWTManager(secret, issuer2, ttl)
	userID := uuid.New()

	token, err := manager1.GenerateAccessToken(userID)
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	_, err = manager2.ValidateToken(context.Background(), token)
	if err == nil {
		t.Fatal("expected error for wrong issuer, got nil")
	}
	if !strings.Contains(err.Error(), "invalid issuer") {
		t.Errorf("expected 'invalid issuer' error, got: %v", err)
	}
}

func TestJWTManager_ValidateToken_EmptyString(t *testing.T) {
	secret := "test-secret-at-least-32-chars-long-for-security"
	issuer := "sirreessaa-test"
	ttl := 15 * time.Minute

	manager := NewJWTManager(secret, issuer, ttl)

	_, err := manager.ValidateToken(context.Background(), "")
	if err == nil {
		t.Fatal("expected error for empty token, got nil")
	}
	if !strings.Contains(err.Error(), "empty") {
		t.Errorf("expected 'empty' error, got: %v", err)
	}
}
