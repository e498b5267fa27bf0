package user

import (
	"context"
	"strings"
	"time"

	"friendlink/internal/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// GormStore 基于 gorm 的用户存储
type GormStore struct {
	db *gorm.DB
}

// NewGormStore 创建 gorm 用户存储
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Create(ctx context.Context, u *model.User) error {
	err := s.db.WithContext(ctx).Create(u).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateEmail
	}
	return errors.Wrap(err, "创建用户失败")
}

func (s *GormStore) FindByID(ctx context.Context, id uint) (*model.User, error) {
	return s.first(ctx, "id = ?", id)
}

// FindByEmail 走 email 索引（排序规则不区分大小写），再在内存里做精确比较
func (s *GormStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := s.first(ctx, "email = ?", email)
	if err != nil {
		return nil, err
	}
	if u.Email != email {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (s *GormStore) first(ctx context.Context, query string, args ...interface{}) (*model.User, error) {
	var u model.User
	err := s.db.WithContext(ctx).Where(query, args...).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "查询用户失败")
	}
	return &u, nil
}

func (s *GormStore) FindByIDs(ctx context.Context, ids []uint) ([]model.User, error) {
	users := []model.User{}
	if len(ids) == 0 {
		return users, nil
	}
	err := s.db.WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&users).Error
	return users, errors.Wrap(err, "批量查询用户失败")
}

func (s *GormStore) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.User{}).
		Where("LOWER(email) = LOWER(?)", email).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "检查邮箱失败")
	}
	return count > 0, nil
}

func (s *GormStore) SearchByEmail(ctx context.Context, email string, excludeID uint) ([]model.User, error) {
	var found []model.User
	err := s.db.WithContext(ctx).
		Where("email = ? AND id <> ?", email, excludeID).
		Order("id ASC").
		Find(&found).Error
	if err != nil {
		return nil, errors.Wrap(err, "按邮箱搜索用户失败")
	}
	users := []model.User{}
	for _, u := range found {
		if u.Email == email {
			users = append(users, u)
		}
	}
	return users, nil
}

func (s *GormStore) SearchByName(ctx context.Context, term string, excludeID uint) ([]model.User, error) {
	pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
	users := []model.User{}
	err := s.db.WithContext(ctx).
		Where("(LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?) AND id <> ?", pattern, pattern, excludeID).
		Order("id ASC").
		Find(&users).Error
	return users, errors.Wrap(err, "按姓名搜索用户失败")
}

func (s *GormStore) TouchLastLogin(ctx context.Context, id uint, at time.Time) error {
	err := s.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update("last_login", at).Error
	return errors.Wrap(err, "更新最后登录时间失败")
}

// escapeLike 转义 LIKE 通配符
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
