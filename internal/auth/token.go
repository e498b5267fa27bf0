package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"friendlink/internal/clock"
	"friendlink/internal/constants"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrTokenInvalid   = errors.New("token is invalid or expired")
	ErrWrongTokenType = errors.New("token has wrong type")
	ErrTokenRevoked   = errors.New("token is blacklisted")
)

// CustomClaims 自定义JWT Claims
type CustomClaims struct {
	UserID    uint   `json:"user_id"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenPair 登录/刷新返回的令牌对
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Options 签发参数
type Options struct {
	Secret     string
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// TokenIssuer 签发并校验 HS256 令牌
type TokenIssuer struct {
	opts     Options
	clock    clock.Clock
	denylist Denylist
}

// NewTokenIssuer 创建签发器，denylist 为 nil 时使用进程内实现
func NewTokenIssuer(opts Options, clk clock.Clock, denylist Denylist) *TokenIssuer {
	if denylist == nil {
		denylist = NewMemoryDenylist(clk)
	}
	return &TokenIssuer{opts: opts, clock: clk, denylist: denylist}
}

// Issue 为用户签发 access + refresh
func (i *TokenIssuer) Issue(userID uint) (*TokenPair, error) {
	access, err := i.sign(userID, constants.TokenTypeAccess, i.opts.AccessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := i.sign(userID, constants.TokenTypeRefresh, i.opts.RefreshTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{Access: access, Refresh: refresh}, nil
}

func (i *TokenIssuer) sign(userID uint, tokenType string, ttl time.Duration) (string, error) {
	now := i.clock.Now()
	claims := CustomClaims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    i.opts.Issuer,
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(i.opts.Secret))
}

func (i *TokenIssuer) parse(tokenString, tokenType string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		// 验证签名算法
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(i.opts.Secret), nil
	},
		jwt.WithTimeFunc(i.clock.Now),
		jwt.WithIssuer(i.opts.Issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.TokenType != tokenType {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}

// ParseAccess 校验 access token
func (i *TokenIssuer) ParseAccess(tokenString string) (*CustomClaims, error) {
	return i.parse(tokenString, constants.TokenTypeAccess)
}

// ParseRefresh 校验 refresh token，并检查是否已注销
func (i *TokenIssuer) ParseRefresh(ctx context.Context, tokenString string) (*CustomClaims, error) {
	claims, err := i.parse(tokenString, constants.TokenTypeRefresh)
	if err != nil {
		return nil, err
	}
	revoked, err := i.denylist.Contains(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

// Refresh 轮换 refresh token：旧的加入黑名单，返回新的令牌对
func (i *TokenIssuer) Refresh(ctx context.Context, refresh string) (*TokenPair, error) {
	claims, err := i.ParseRefresh(ctx, refresh)
	if err != nil {
		return nil, err
	}
	if err := i.revokeClaims(ctx, claims); err != nil {
		return nil, err
	}
	return i.Issue(claims.UserID)
}

// Revoke 注销 refresh token
func (i *TokenIssuer) Revoke(ctx context.Context, refresh string) error {
	claims, err := i.ParseRefresh(ctx, refresh)
	if err != nil {
		return err
	}
	return i.revokeClaims(ctx, claims)
}

func (i *TokenIssuer) revokeClaims(ctx context.Context, claims *CustomClaims) error {
	ttl := claims.ExpiresAt.Time.Sub(i.clock.Now())
	if ttl <= 0 {
		return nil
	}
	if err := i.denylist.Add(ctx, claims.ID, ttl); err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"function": "revokeClaims",
		"userID":   claims.UserID,
		"jti":      claims.ID,
	}).Debug("refresh token 已注销")
	return nil
}
