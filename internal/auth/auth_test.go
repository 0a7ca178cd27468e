package auth_test

import (
	"testing"
	"time"

	"github.com/fleetscale/autoscaler-core/internal/auth"
)

func TestGenerateAndValidateToken(t *testing.T) {
	svc := auth.NewService("test-secret-value-thats-long-enough", time.Hour)

	token, err := svc.GenerateToken(1, "operator")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.UserID != 1 || claims.Username != "operator" {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestValidateToken_Expired(t *testing.T) {
	svc := auth.NewService("test-secret-value-thats-long-enough", -time.Hour)

	token, err := svc.GenerateToken(1, "operator")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	_, err = svc.ValidateToken(token)
	if err != auth.ErrExpiredToken {
		t.Errorf("expected ErrExpiredToken, got %v", err)
	}
}

func TestValidateToken_WrongSecret(t *testing.T) {
	svc := auth.NewService("secret-one-long-enough-for-hs256", time.Hour)
	other := auth.NewService("secret-two-long-enough-for-hs256", time.Hour)

	token, _ := svc.GenerateToken(1, "operator")

	_, err := other.ValidateToken(token)
	if err != auth.ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := auth.HashPassword("correct-horse-battery-staple")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	if !auth.CheckPassword("correct-horse-battery-staple", hash) {
		t.Error("expected password to match its hash")
	}
	if auth.CheckPassword("wrong-password", hash) {
		t.Error("expected wrong password to not match")
	}
}
