package friend

import (
	"context"
	"errors"
	"time"

	"friendlink/internal/clock"
	"friendlink/internal/model"
	"friendlink/internal/user"

	"github.com/sirupsen/logrus"
)

var (
	_ Store = (*GormStore)(nil)
	_ Store = (*MemoryStore)(nil)
)

// RateLimit 发送频率限制：Window 内最多 Max 次
type RateLimit struct {
	Max    int
	Window time.Duration
}

// DefaultRateLimit 每分钟 3 次
var DefaultRateLimit = RateLimit{Max: 3, Window: time.Minute}

// Ledger 好友请求的状态流转
type Ledger struct {
	store Store
	users UserLookup
	clock clock.Clock
	limit RateLimit
}

// NewLedger 创建 Ledger
func NewLedger(store Store, users UserLookup, clk clock.Clock, limit RateLimit) *Ledger {
	if limit.Max <= 0 || limit.Window <= 0 {
		limit = DefaultRateLimit
	}
	return &Ledger{store: store, users: users, clock: clk, limit: limit}
}

// Send 发送好友请求。
// 检查顺序固定：自己 → 接收者存在 → 正向重复 → 反向重复 → 频率限制。
func (l *Ledger) Send(ctx context.Context, senderID, recipientID uint) (uint, error) {
	if senderID == recipientID {
		return 0, ErrSelfRequest
	}

	if _, err := l.users.FindByID(ctx, recipientID); err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return 0, ErrRecipientNotFound
		}
		return 0, err
	}

	var requestID uint
	err := l.store.Transaction(ctx, func(tx Store) error {
		if err := tx.LockSender(ctx, senderID); err != nil {
			return err
		}

		sent, err := tx.ExistsDirected(ctx, senderID, recipientID)
		if err != nil {
			return err
		}
		if sent {
			return ErrDuplicateRequest
		}

		received, err := tx.ExistsDirected(ctx, recipientID, senderID)
		if err != nil {
			return err
		}
		if received {
			return ErrReverseRequestExists
		}

		now := l.clock.Now()
		count, err := tx.CountSentSince(ctx, senderID, now.Add(-l.limit.Window))
		if err != nil {
			return err
		}
		if count >= int64(l.limit.Max) {
			return ErrRateLimited
		}

		fr := model.NewFriendRequest(senderID, recipientID, now)
		if err := tx.Create(ctx, fr); err != nil {
			return err
		}
		requestID = fr.ID
		return nil
	})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function":    "Send",
			"senderID":    senderID,
			"recipientID": recipientID,
			"error":       err,
		}).Debug("好友请求被拒绝")
		return 0, err
	}

	logrus.WithFields(logrus.Fields{
		"function":    "Send",
		"requestID":   requestID,
		"senderID":    senderID,
		"recipientID": recipientID,
	}).Info("好友请求已发送")
	return requestID, nil
}

// Accept 接收者接受请求；非接收者与不存在的请求同样返回 ErrRequestNotFound
func (l *Ledger) Accept(ctx context.Context, requestID, actingUserID uint) error {
	err := l.store.Transaction(ctx, func(tx Store) error {
		fr, err := tx.FindForRecipient(ctx, requestID, actingUserID)
		if err != nil {
			return err
		}
		if fr.Accepted {
			return ErrAlreadyAccepted
		}
		return tx.MarkAccepted(ctx, fr.ID)
	})
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"function":  "Accept",
		"requestID": requestID,
		"userID":    actingUserID,
	}).Info("好友请求已接受")
	return nil
}

// Reject 接收者拒绝请求，记录被删除；已接受的请求不能拒绝
func (l *Ledger) Reject(ctx context.Context, requestID, actingUserID uint) error {
	err := l.store.Transaction(ctx, func(tx Store) error {
		fr, err := tx.FindForRecipient(ctx, requestID, actingUserID)
		if err != nil {
			return err
		}
		if fr.Accepted {
			return ErrAlreadyAccepted
		}
		return tx.Delete(ctx, fr.ID)
	})
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"function":  "Reject",
		"requestID": requestID,
		"userID":    actingUserID,
	}).Info("好友请求已拒绝")
	return nil
}
