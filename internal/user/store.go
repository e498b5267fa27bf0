package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"friendlink/internal/model"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateEmail     = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Store 用户凭据存储
type Store interface {
	// Create 插入用户，邮箱冲突返回 ErrDuplicateEmail
	Create(ctx context.Context, u *model.User) error
	FindByID(ctx context.Context, id uint) (*model.User, error)
	// FindByEmail 精确（区分大小写）匹配
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// FindByIDs 按 id 升序返回存在的用户
	FindByIDs(ctx context.Context, ids []uint) ([]model.User, error)
	// EmailExists 不区分大小写
	EmailExists(ctx context.Context, email string) (bool, error)
	SearchByEmail(ctx context.Context, email string, excludeID uint) ([]model.User, error)
	// SearchByName 名或姓包含 term（不区分大小写）
	SearchByName(ctx context.Context, term string, excludeID uint) ([]model.User, error)
	TouchLastLogin(ctx context.Context, id uint, at time.Time) error
}

// NormalizeEmail 域名部分转小写，本地部分保持原样
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at+1] + strings.ToLower(email[at+1:])
}
