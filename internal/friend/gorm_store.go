package friend

import (
	"context"
	"time"

	"friendlink/internal/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore 基于 gorm 的好友请求仓储
type GormStore struct {
	db *gorm.DB
}

// NewGormStore 创建 gorm 仓储
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

func (s *GormStore) LockSender(ctx context.Context, senderID uint) error {
	var u model.User
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Where("id = ?", senderID).
		First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrSenderNotFound
	}
	return errors.Wrap(err, "锁定发送者失败")
}

func (s *GormStore) ExistsDirected(ctx context.Context, senderID, recipientID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.FriendRequest{}).
		Where("sender_id = ? AND recipient_id = ?", senderID, recipientID).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "查询好友请求失败")
	}
	return count > 0, nil
}

func (s *GormStore) CountSentSince(ctx context.Context, senderID uint, since time.Time) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.FriendRequest{}).
		Where("sender_id = ? AND created_at >= ?", senderID, since).
		Count(&count).Error
	return count, errors.Wrap(err, "统计发送次数失败")
}

// Create 插入请求。撞上 pair 唯一索引时，若占位的是对方发来的请求则返回 ErrReverseRequestExists。
func (s *GormStore) Create(ctx context.Context, fr *model.FriendRequest) error {
	err := s.db.WithContext(ctx).Create(fr).Error
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return errors.Wrap(err, "创建好友请求失败")
	}

	// 事务内普通读只能看到快照，这里用加锁读拿到已提交的冲突行
	var count int64
	err = s.db.WithContext(ctx).Model(&model.FriendRequest{}).
		Clauses(clause.Locking{Strength: "SHARE"}).
		Where("sender_id = ? AND recipient_id = ?", fr.RecipientID, fr.SenderID).
		Count(&count).Error
	if err != nil {
		return errors.Wrap(err, "查询反向请求失败")
	}
	if count > 0 {
		return ErrReverseRequestExists
	}
	return ErrDuplicateRequest
}

func (s *GormStore) FindForRecipient(ctx context.Context, id, recipientID uint) (*model.FriendRequest, error) {
	var fr model.FriendRequest
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		First(&fr).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "查询好友请求失败")
	}
	return &fr, nil
}

func (s *GormStore) MarkAccepted(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Model(&model.FriendRequest{}).
		Where("id = ? AND accepted = ?", id, false).
		Update("accepted", true)
	if res.Error != nil {
		return errors.Wrap(res.Error, "接受好友请求失败")
	}
	if res.RowsAffected == 0 {
		return ErrAlreadyAccepted
	}
	return nil
}

func (s *GormStore) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND accepted = ?", id, false).
		Delete(&model.FriendRequest{})
	if res.Error != nil {
		return errors.Wrap(res.Error, "删除好友请求失败")
	}
	if res.RowsAffected == 0 {
		return ErrRequestNotFound
	}
	return nil
}

func (s *GormStore) FriendIDs(ctx context.Context, userID uint) ([]uint, error) {
	var sent, received []uint
	db := s.db.WithContext(ctx).Model(&model.FriendRequest{})
	if err := db.Where("sender_id = ? AND accepted = ?", userID, true).Pluck("recipient_id", &sent).Error; err != nil {
		return nil, errors.Wrap(err, "查询已发送好友失败")
	}
	db = s.db.WithContext(ctx).Model(&model.FriendRequest{})
	if err := db.Where("recipient_id = ? AND accepted = ?", userID, true).Pluck("sender_id", &received).Error; err != nil {
		return nil, errors.Wrap(err, "查询已接收好友失败")
	}
	return append(sent, received...), nil
}

func (s *GormStore) Pending(ctx context.Context, recipientID uint) ([]model.FriendRequest, error) {
	requests := []model.FriendRequest{}
	err := s.db.WithContext(ctx).
		Where("recipient_id = ? AND accepted = ?", recipientID, false).
		Order("created_at ASC").Order("id ASC").
		Find(&requests).Error
	return requests, errors.Wrap(err, "查询待处理请求失败")
}
