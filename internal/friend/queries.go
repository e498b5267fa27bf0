package friend

import (
	"context"
	"sort"

	"friendlink/internal/model"
)

// Queries 从请求记录推导好友关系与待处理列表
type Queries struct {
	store Store
}

// NewQueries 创建查询服务
func NewQueries(store Store) *Queries {
	return &Queries{store: store}
}

// ListFriends 已接受请求两端的另一方，去重后按 id 升序
func (q *Queries) ListFriends(ctx context.Context, userID uint) ([]uint, error) {
	ids, err := q.store.FriendIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]uint, 0, len(ids))
	for i, id := range ids {
		if i > 0 && ids[i-1] == id {
			continue
		}
		out = append(out, id)
	}
	return out, nil
}

// ListPending 收到且未接受的请求，按创建时间升序
func (q *Queries) ListPending(ctx context.Context, userID uint) ([]model.FriendRequest, error) {
	return q.store.Pending(ctx, userID)
}
