package user

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"friendlink/internal/model"
)

// MemoryStore 进程内用户存储，database.driver=memory 与测试使用
type MemoryStore struct {
	mu     sync.RWMutex
	nextID uint
	users  map[uint]*model.User
}

// NewMemoryStore 创建空的内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1, users: make(map[uint]*model.User)}
}

func (s *MemoryStore) Create(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// 与 MySQL 默认排序规则一致：唯一索引不区分大小写
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return ErrDuplicateEmail
		}
	}
	u.ID = s.nextID
	s.nextID++
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, id uint) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *MemoryStore) FindByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrUserNotFound
}

func (s *MemoryStore) FindByIDs(_ context.Context, ids []uint) ([]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	want := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	return s.filter(func(u *model.User) bool {
		_, ok := want[u.ID]
		return ok
	}), nil
}

func (s *MemoryStore) EmailExists(_ context.Context, email string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) SearchByEmail(_ context.Context, email string, excludeID uint) ([]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.filter(func(u *model.User) bool {
		return u.ID != excludeID && u.Email == email
	}), nil
}

func (s *MemoryStore) SearchByName(_ context.Context, term string, excludeID uint) ([]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	term = strings.ToLower(term)
	return s.filter(func(u *model.User) bool {
		if u.ID == excludeID {
			return false
		}
		return strings.Contains(strings.ToLower(u.FirstName), term) ||
			strings.Contains(strings.ToLower(u.LastName), term)
	}), nil
}

func (s *MemoryStore) TouchLastLogin(_ context.Context, id uint, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return ErrUserNotFound
	}
	t := at
	u.LastLogin = &t
	return nil
}

// filter 调用方需持有读锁；结果按 id 升序
func (s *MemoryStore) filter(keep func(*model.User) bool) []model.User {
	out := []model.User{}
	for _, u := range s.users {
		if keep(u) {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
