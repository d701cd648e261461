package auth

import (
	"testing"
	"time"

	"salonemart/config"
	"salonemart/internal/domain"
)

func testJWTConfig() *config.JWTConfig {
	return &config.JWTConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessExpiry:  time.Hour,
		RefreshExpiry: 24 * time.Hour,
		Issuer:        "salonemart",
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	cfg := testJWTConfig()
	token, err := GenerateAccessToken(cfg, 42, domain.RoleBuyer)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.UserID != 42 || claims.Role != domain.RoleBuyer {
		t.Errorf("claims = %+v", claims)
	}
}

func TestAccessTokenWrongSecretRejected(t *testing.T) {
	cfg := testJWTConfig()
	token, err := GenerateAccessToken(cfg, 42, domain.RoleBuyer)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	other := testJWTConfig()
	other.AccessSecret = "different"
	if _, err := ParseAccessToken(other, token); err != ErrInvalidToken {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

func TestAccessTokenWrongIssuerRejected(t *testing.T) {
	cfg := testJWTConfig()
	token, err := GenerateAccessToken(cfg, 42, domain.RoleSeller)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	other := testJWTConfig()
	other.Issuer = "someone-else"
	if _, err := ParseAccessToken(other, token); err != ErrInvalidToken {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

func TestExpiredAccessTokenRejected(t *testing.T) {
	cfg := testJWTConfig()
	cfg.AccessExpiry = -time.Minute
	token, err := GenerateAccessToken(cfg, 42, domain.RoleBuyer)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	if _, err := ParseAccessToken(cfg, token); err != ErrInvalidToken {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

func TestRefreshTokenIsNotAnAccessToken(t *testing.T) {
	cfg := testJWTConfig()
	refresh, err := GenerateRefreshToken(cfg, 42)
	if err != nil {
		t.Fatalf("GenerateRefreshToken: %v", err)
	}
	if _, err := ParseAccessToken(cfg, refresh); err != ErrInvalidToken {
		t.Fatalf("refresh token accepted as access token: %v", err)
	}
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	cfg := testJWTConfig()
	refresh, err := GenerateRefreshToken(cfg, 42)
	if err != nil {
		t.Fatalf("GenerateRefreshToken: %v", err)
	}
	id, err := ParseRefreshToken(cfg, refresh)
	if err != nil {
		t.Fatalf("ParseRefreshToken: %v", err)
	}
	if id != 42 {
		t.Errorf("user id = %d, want 42", id)
	}
}

func TestAccessTokenIsNotARefreshToken(t *testing.T) {
	cfg := testJWTConfig()
	access, err := GenerateAccessToken(cfg, 42, domain.RoleBuyer)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	if _, err := ParseRefreshToken(cfg, access); err != ErrInvalidToken {
		t.Fatalf("access token accepted as refresh token: %v", err)
	}
}
