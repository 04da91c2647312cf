// Package auth 负责密码哈希、JWT 会话签发与角色校验中间件。
package auth

import (
	"errors"
	"fmt"
	"time"

	"talento/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidToken token 缺失、过期或签名错误。
var ErrInvalidToken = errors.New("invalid token")

// Config 会话配置。
type Config struct {
	Secret     string `yaml:"jwt_secret" json:"jwt_secret"`
	TTL        string `yaml:"token_ttl" json:"token_ttl"`
	BcryptCost int    `yaml:"bcrypt_cost" json:"bcrypt_cost"`
}

// Claims JWT 载荷。
type Claims struct {
	UserID    string     `json:"uid"`
	Role      model.Role `json:"role"`
	CompanyID string     `json:"cid,omitempty"`
	jwt.RegisteredClaims
}

// Service 签发与校验 token。
type Service struct {
	secret []byte
	ttl    time.Duration
	cost   int
	now    func() time.Time
}

// New 创建 Service，TTL 默认 72h。
func New(cfg Config) (*Service, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	ttl := 72 * time.Hour
	if cfg.TTL != "" {
		d, err := time.ParseDuration(cfg.TTL)
		if err != nil {
			return nil, fmt.Errorf("parse token ttl: %w", err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("token ttl must be positive, got %s", cfg.TTL)
		}
		ttl = d
	}
	cost := cfg.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost out of range: %d", cost)
	}
	return &Service{secret: []byte(cfg.Secret), ttl: ttl, cost: cost, now: time.Now}, nil
}

// Issue 为账号签发 token。
func (s *Service) Issue(u *model.User) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := &Claims{
		UserID: u.ID,
		Role:   u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	if u.CompanyID != nil {
		claims.CompanyID = *u.CompanyID
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Parse 校验 token 并返回载荷。
func (s *Service) Parse(token string) (*Claims, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.UserID == "" || !claims.Role.Valid() {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// HashPassword 生成 bcrypt 哈希。
func (s *Service) HashPassword(pw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pw), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword 比较明文与哈希。
func (s *Service) CheckPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}
