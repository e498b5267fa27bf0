package friend

import (
	"context"
	"errors"
	"time"

	"friendlink/internal/model"
)

var (
	ErrSelfRequest          = errors.New("sender and recipient are the same user")
	ErrDuplicateRequest     = errors.New("friend request already sent")
	ErrReverseRequestExists = errors.New("recipient already sent a friend request")
	ErrRateLimited          = errors.New("friend request rate limit reached")
	ErrRecipientNotFound    = errors.New("recipient does not exist")
	ErrSenderNotFound       = errors.New("sender does not exist")
	ErrRequestNotFound      = errors.New("friend request not found")
	ErrAlreadyAccepted      = errors.New("friend request already accepted")
)

// Store 好友请求仓储
type Store interface {
	// Transaction 在一个事务里执行 fn，fn 返回错误时回滚
	Transaction(ctx context.Context, fn func(tx Store) error) error
	// LockSender 锁住发送者，串行化同一发送者的并发 Send
	LockSender(ctx context.Context, senderID uint) error
	ExistsDirected(ctx context.Context, senderID, recipientID uint) (bool, error)
	// CountSentSince 统计 created_at >= since 的发送记录
	CountSentSince(ctx context.Context, senderID uint, since time.Time) (int64, error)
	// Create 同一对用户已有记录时返回 ErrDuplicateRequest，
	// 已有记录由对方发出时返回 ErrReverseRequestExists
	Create(ctx context.Context, fr *model.FriendRequest) error
	// FindForRecipient 只返回 recipient 匹配的记录，事务内加行锁
	FindForRecipient(ctx context.Context, id, recipientID uint) (*model.FriendRequest, error)
	// MarkAccepted 仅当 accepted=false 时更新，否则 ErrAlreadyAccepted
	MarkAccepted(ctx context.Context, id uint) error
	// Delete 仅删除未接受的记录
	Delete(ctx context.Context, id uint) error
	// FriendIDs 已接受请求的另一端用户，未排序
	FriendIDs(ctx context.Context, userID uint) ([]uint, error)
	// Pending 收到的未接受请求，按 created_at、id 升序
	Pending(ctx context.Context, recipientID uint) ([]model.FriendRequest, error)
}

// UserLookup 由 user.Store 实现
type UserLookup interface {
	FindByID(ctx context.Context, id uint) (*model.User, error)
}
