package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/groupbuy-next/internal/config"
	"github.com/groupbuy-next/internal/constants"
	"github.com/groupbuy-next/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

func TestAuthLoginAdminIssuesToken(t *testing.T) {
	_, authSvc, binder, db := setupLeaderServiceTest(t)
	admin, err := models.InitDefaultAdmin(db, "root", "Secret123")
	if err != nil || admin == nil {
		t.Fatalf("init admin failed: %v", err)
	}

	result, err := authSvc.Login("root", "Secret123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if result.Leader != nil || result.User.LastLoginAt == nil {
		t.Fatalf("unexpected login result: %+v", result)
	}
	if roles := binder.bound[admin.ID]; len(roles) != 1 || roles[0] != constants.RoleAdmin {
		t.Fatalf("admin role should be synced on login, got %v", roles)
	}

	claims, err := authSvc.ParseJWT(result.Token)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	principal := claims.Principal()
	if !principal.IsAdmin() || principal.UserID != admin.ID || principal.LeaderID != 0 {
		t.Fatalf("unexpected principal: %+v", principal)
	}

	if _, err := authSvc.Login("root", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password want ErrInvalidCredentials got %v", err)
	}
	if _, err := authSvc.Login("nobody", "Secret123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown user want ErrInvalidCredentials got %v", err)
	}
}

func TestAuthParseJWTRejectsForeignTokens(t *testing.T) {
	authSvc := NewAuthService(&config.Config{JWT: config.JWTConfig{SecretKey: "k1", ExpireHours: 1}}, nil, nil, nil)
	other := NewAuthService(&config.Config{JWT: config.JWTConfig{SecretKey: "k2", ExpireHours: 1}}, nil, nil, nil)

	user := &models.User{ID: 7, Username: "u", Role: constants.RoleLeader}
	token, _, err := other.GenerateJWT(user, 3)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if _, err := authSvc.ParseJWT(token); err == nil {
		t.Fatalf("token signed with another secret should fail")
	}

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, JWTClaims{
		UserID: 7,
		Role:   constants.RoleLeader,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	signed, err := expired.SignedString([]byte("k1"))
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if _, err := authSvc.ParseJWT(signed); err == nil {
		t.Fatalf("expired token should fail")
	}

	none := jwt.NewWithClaims(jwt.SigningMethodHS512, JWTClaims{UserID: 7})
	signed512, _ := none.SignedString([]byte("k1"))
	if _, err := authSvc.ParseJWT(signed512); err == nil {
		t.Fatalf("non HS256 token should fail")
	}

	own, _, err := authSvc.GenerateJWT(user, 3)
	if err != nil {
		t.Fatalf("generate own failed: %v", err)
	}
	claims, err := authSvc.ParseJWT(own)
	if err != nil {
		t.Fatalf("parse own failed: %v", err)
	}
	if p := claims.Principal(); !p.IsLeader() || !p.CanActOnLeader(3) || p.CanActOnLeader(4) {
		t.Fatalf("unexpected leader principal: %+v", p)
	}
}

func TestValidatePasswordPolicyKeys(t *testing.T) {
	policy := config.PasswordPolicyConfig{MinLength: 8, RequireUpper: true, RequireNumber: true}
	cases := map[string]string{
		"short":       "error.password_min_length",
		"longenough1": "error.password_require_upper",
		"LongEnough":  "error.password_require_number",
	}
	for password, key := range cases {
		err := validatePassword(policy, password)
		if !errors.Is(err, ErrWeakPassword) {
			t.Fatalf("%s should be weak, got %v", password, err)
		}
		var policyErr passwordPolicyError
		if !errors.As(err, &policyErr) || policyErr.Key() != key {
			t.Fatalf("%s want key %s got %v", password, key, err)
		}
	}
	if err := validatePassword(policy, "LongEnough1"); err != nil {
		t.Fatalf("strong password rejected: %v", err)
	}
	var tooLong passwordPolicyError
	if err := validatePassword(policy, strings.Repeat("Aa1", 30)); !errors.As(err, &tooLong) || tooLong.Key() != "error.password_max_length" {
		t.Fatalf("password over bcrypt limit should be rejected, got %v", err)
	}
}
