package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/groupbuy-next/internal/cache"
	"github.com/groupbuy-next/internal/config"
	"github.com/groupbuy-next/internal/constants"
	"github.com/groupbuy-next/internal/logger"
	"github.com/groupbuy-next/internal/models"
	"github.com/groupbuy-next/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AuthService 认证服务
type AuthService struct {
	cfg        *config.Config
	userRepo   repository.UserRepository
	leaderRepo repository.LeaderRepository
	roles      RoleBinder
}

// NewAuthService 创建认证服务实例
func NewAuthService(
	cfg *config.Config,
	userRepo repository.UserRepository,
	leaderRepo repository.LeaderRepository,
	roles RoleBinder,
) *AuthService {
	return &AuthService{
		cfg:        cfg,
		userRepo:   userRepo,
		leaderRepo: leaderRepo,
		roles:      roles,
	}
}

// LoginResult 登录结果
type LoginResult struct {
	User      *models.User
	Leader    *models.Leader
	Token     string
	ExpiresAt time.Time
}

// HashPassword 使用 bcrypt 加密密码
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword 验证密码
func (s *AuthService) VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// ValidatePassword 校验密码是否符合策略
func (s *AuthService) ValidatePassword(password string) error {
	if s == nil || s.cfg == nil {
		return nil
	}
	return validatePassword(s.cfg.Security.PasswordPolicy, password)
}

// JWTClaims JWT 声明
type JWTClaims struct {
	UserID       uint   `json:"user_id"`
	Username     string `json:"username"`
	Role         string `json:"role"`
	LeaderID     uint   `json:"leader_id,omitempty"`
	TokenVersion uint64 `json:"token_version"`
	jwt.RegisteredClaims
}

// Principal 转换为操作人
func (c *JWTClaims) Principal() Principal {
	if c == nil {
		return Principal{}
	}
	return Principal{UserID: c.UserID, Role: c.Role, LeaderID: c.LeaderID}
}

// GenerateJWT 生成 JWT Token
func (s *AuthService) GenerateJWT(user *models.User, leaderID uint) (string, time.Time, error) {
	now := time.Now()
	expireHours := s.cfg.JWT.ExpireHours
	if expireHours <= 0 {
		expireHours = 24
	}
	expiresAt := now.Add(time.Duration(expireHours) * time.Hour)

	claims := JWTClaims{
		UserID:       user.ID,
		Username:     user.Username,
		Role:         user.Role,
		LeaderID:     leaderID,
		TokenVersion: user.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.JWT.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// HasSecret 是否已配置签名密钥
func (s *AuthService) HasSecret() bool {
	return s != nil && s.cfg != nil && strings.TrimSpace(s.cfg.JWT.SecretKey) != ""
}

// ParseJWT 解析 JWT Token
func (s *AuthService) ParseJWT(tokenString string) (*JWTClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWT.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("无效的 token")
}

// Login 账号登录，团长账号需绑定可用的团长档案
func (s *AuthService) Login(username, password string) (*LoginResult, error) {
	user, err := s.userRepo.GetByUsername(strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := s.VerifyPassword(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	if user.Status != constants.UserStatusActive {
		return nil, ErrUserDisabled
	}

	var leader *models.Leader
	var leaderID uint
	if user.Role == constants.RoleLeader {
		leader, err = s.leaderRepo.GetByUserID(user.ID)
		if err != nil {
			return nil, err
		}
		if leader == nil {
			return nil, ErrLeaderNotFound
		}
		if leader.Status != constants.LeaderStatusActive {
			return nil, ErrLeaderDisabled
		}
		leaderID = leader.ID
	}

	token, expiresAt, err := s.GenerateJWT(user, leaderID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.userRepo.TouchLastLogin(user.ID, now); err != nil {
		return nil, err
	}
	user.LastLoginAt = &now
	_ = cache.SetUserAuthState(context.Background(), cache.BuildUserAuthState(user, leaderID))
	if s.roles != nil {
		if err := s.roles.EnsureUserRole(user.ID, user.Role); err != nil {
			logger.Warnw("auth_role_sync_failed", "user_id", user.ID, "role", user.Role, "error", err)
		}
	}

	return &LoginResult{
		User:      user,
		Leader:    leader,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// ResolveAuthState 读取账号鉴权快照，缓存未命中时回源数据库
func (s *AuthService) ResolveAuthState(ctx context.Context, userID uint) (*cache.UserAuthState, error) {
	if state, ok, err := cache.GetUserAuthState(ctx, userID); err == nil && ok && state != nil {
		return state, nil
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}
	var leaderID uint
	if user.Role == constants.RoleLeader {
		leader, err := s.leaderRepo.GetByUserID(user.ID)
		if err != nil {
			return nil, err
		}
		if leader != nil {
			leaderID = leader.ID
			if leader.Status != constants.LeaderStatusActive {
				user.Status = constants.UserStatusDisabled
			}
		}
	}
	state := cache.BuildUserAuthState(user, leaderID)
	_ = cache.SetUserAuthState(ctx, state)
	return state, nil
}

// Me 当前账号信息
func (s *AuthService) Me(principal Principal) (*models.User, *models.Leader, error) {
	user, err := s.userRepo.GetByID(principal.UserID)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, ErrInvalidCredentials
	}
	if principal.LeaderID == 0 {
		return user, nil, nil
	}
	leader, err := s.leaderRepo.GetByID(principal.LeaderID)
	if err != nil {
		return nil, nil, err
	}
	return user, leader, nil
}
