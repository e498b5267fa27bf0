package model

import (
	"time"

	"gorm.io/gorm"
)

// User 用户模型，邮箱即登录名。
// 布尔列不设 gorm default，否则 false 在创建时会被默认值覆盖。
type User struct {
	ID          uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Email       string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password    string     `gorm:"type:varchar(128);not null" json:"-"`
	FirstName   string     `gorm:"type:varchar(150)" json:"first_name"`
	LastName    string     `gorm:"type:varchar(150)" json:"last_name"`
	IsActive    bool       `gorm:"not null" json:"-"`
	IsStaff     bool       `gorm:"not null" json:"-"`
	IsSuperuser bool       `gorm:"not null" json:"-"`
	LastLogin   *time.Time `json:"-"`
	DateJoined  time.Time  `json:"-"`
}

// FriendRequest 有向好友请求。PairLow/PairHigh 是两端 ID 的有序形式，
// 唯一索引保证同一对用户之间（不论方向）只有一条记录。
type FriendRequest struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	SenderID    uint      `gorm:"not null;index:idx_friend_request_sender_created,priority:1" json:"sender"`
	RecipientID uint      `gorm:"not null;index" json:"recipient"`
	PairLow     uint      `gorm:"not null;uniqueIndex:idx_friend_request_pair,priority:1" json:"-"`
	PairHigh    uint      `gorm:"not null;uniqueIndex:idx_friend_request_pair,priority:2" json:"-"`
	CreatedAt   time.Time `gorm:"not null;index:idx_friend_request_sender_created,priority:2" json:"created_at"`
	Accepted    bool      `gorm:"not null" json:"accepted"`
}

// TableName 指定表名
func (FriendRequest) TableName() string {
	return "friend_requests"
}

// NewFriendRequest 创建未接受的请求记录
func NewFriendRequest(senderID, recipientID uint, createdAt time.Time) *FriendRequest {
	low, high := OrderedPair(senderID, recipientID)
	return &FriendRequest{
		SenderID:    senderID,
		RecipientID: recipientID,
		PairLow:     low,
		PairHigh:    high,
		CreatedAt:   createdAt,
	}
}

// OrderedPair 返回 (min, max)
func OrderedPair(a, b uint) (uint, uint) {
	if a > b {
		return b, a
	}
	return a, b
}

// SetupDatabase 初始化数据库表结构
func SetupDatabase(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&FriendRequest{},
	)
}
