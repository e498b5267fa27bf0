package friend

import (
	"context"
	"sort"
	"sync"
	"time"

	"friendlink/internal/model"
)

type pairKey struct{ low, high uint }

// MemoryStore 进程内仓储，database.driver=memory 与测试使用。
// 所有操作在同一把锁下执行，事务失败时恢复快照。
type MemoryStore struct {
	mu    sync.Mutex
	state memState
}

type memState struct {
	nextID   uint
	requests map[uint]model.FriendRequest
	pairs    map[pairKey]uint
}

// NewMemoryStore 创建空仓储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: memState{
		nextID:   1,
		requests: make(map[uint]model.FriendRequest),
		pairs:    make(map[pairKey]uint),
	}}
}

func (st memState) clone() memState {
	cp := memState{
		nextID:   st.nextID,
		requests: make(map[uint]model.FriendRequest, len(st.requests)),
		pairs:    make(map[pairKey]uint, len(st.pairs)),
	}
	for k, v := range st.requests {
		cp.requests[k] = v
	}
	for k, v := range st.pairs {
		cp.pairs[k] = v
	}
	return cp
}

// memTx 持锁视图
type memTx struct {
	st *memState
}

func (s *MemoryStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.state.clone()
	if err := fn(&memTx{st: &s.state}); err != nil {
		s.state = snapshot
		return err
	}
	return nil
}

func (s *MemoryStore) locked(fn func(tx *memTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&memTx{st: &s.state})
}

func (s *MemoryStore) LockSender(ctx context.Context, senderID uint) error {
	return nil
}

func (s *MemoryStore) ExistsDirected(ctx context.Context, senderID, recipientID uint) (ok bool, err error) {
	err = s.locked(func(tx *memTx) error {
		ok, err = tx.ExistsDirected(ctx, senderID, recipientID)
		return err
	})
	return ok, err
}

func (s *MemoryStore) CountSentSince(ctx context.Context, senderID uint, since time.Time) (n int64, err error) {
	err = s.locked(func(tx *memTx) error {
		n, err = tx.CountSentSince(ctx, senderID, since)
		return err
	})
	return n, err
}

func (s *MemoryStore) Create(ctx context.Context, fr *model.FriendRequest) error {
	return s.locked(func(tx *memTx) error { return tx.Create(ctx, fr) })
}

func (s *MemoryStore) FindForRecipient(ctx context.Context, id, recipientID uint) (fr *model.FriendRequest, err error) {
	err = s.locked(func(tx *memTx) error {
		fr, err = tx.FindForRecipient(ctx, id, recipientID)
		return err
	})
	return fr, err
}

func (s *MemoryStore) MarkAccepted(ctx context.Context, id uint) error {
	return s.locked(func(tx *memTx) error { return tx.MarkAccepted(ctx, id) })
}

func (s *MemoryStore) Delete(ctx context.Context, id uint) error {
	return s.locked(func(tx *memTx) error { return tx.Delete(ctx, id) })
}

func (s *MemoryStore) FriendIDs(ctx context.Context, userID uint) (ids []uint, err error) {
	err = s.locked(func(tx *memTx) error {
		ids, err = tx.FriendIDs(ctx, userID)
		return err
	})
	return ids, err
}

func (s *MemoryStore) Pending(ctx context.Context, recipientID uint) (out []model.FriendRequest, err error) {
	err = s.locked(func(tx *memTx) error {
		out, err = tx.Pending(ctx, recipientID)
		return err
	})
	return out, err
}

func (t *memTx) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return fn(t)
}

func (t *memTx) LockSender(ctx context.Context, senderID uint) error {
	return nil
}

func (t *memTx) ExistsDirected(_ context.Context, senderID, recipientID uint) (bool, error) {
	for _, fr := range t.st.requests {
		if fr.SenderID == senderID && fr.RecipientID == recipientID {
			return true, nil
		}
	}
	return false, nil
}

func (t *memTx) CountSentSince(_ context.Context, senderID uint, since time.Time) (int64, error) {
	var n int64
	for _, fr := range t.st.requests {
		if fr.SenderID == senderID && !fr.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (t *memTx) Create(_ context.Context, fr *model.FriendRequest) error {
	key := pairKey{fr.PairLow, fr.PairHigh}
	if id, taken := t.st.pairs[key]; taken {
		if t.st.requests[id].SenderID == fr.RecipientID {
			return ErrReverseRequestExists
		}
		return ErrDuplicateRequest
	}
	fr.ID = t.st.nextID
	t.st.nextID++
	t.st.requests[fr.ID] = *fr
	t.st.pairs[key] = fr.ID
	return nil
}

func (t *memTx) FindForRecipient(_ context.Context, id, recipientID uint) (*model.FriendRequest, error) {
	fr, ok := t.st.requests[id]
	if !ok || fr.RecipientID != recipientID {
		return nil, ErrRequestNotFound
	}
	return &fr, nil
}

func (t *memTx) MarkAccepted(_ context.Context, id uint) error {
	fr, ok := t.st.requests[id]
	if !ok || fr.Accepted {
		return ErrAlreadyAccepted
	}
	fr.Accepted = true
	t.st.requests[id] = fr
	return nil
}

func (t *memTx) Delete(_ context.Context, id uint) error {
	fr, ok := t.st.requests[id]
	if !ok || fr.Accepted {
		return ErrRequestNotFound
	}
	delete(t.st.requests, id)
	delete(t.st.pairs, pairKey{fr.PairLow, fr.PairHigh})
	return nil
}

func (t *memTx) FriendIDs(_ context.Context, userID uint) ([]uint, error) {
	var ids []uint
	for _, fr := range t.st.requests {
		if !fr.Accepted {
			continue
		}
		switch userID {
		case fr.SenderID:
			ids = append(ids, fr.RecipientID)
		case fr.RecipientID:
			ids = append(ids, fr.SenderID)
		}
	}
	return ids, nil
}

func (t *memTx) Pending(_ context.Context, recipientID uint) ([]model.FriendRequest, error) {
	out := []model.FriendRequest{}
	for _, fr := range t.st.requests {
		if fr.RecipientID == recipientID && !fr.Accepted {
			out = append(out, fr)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
