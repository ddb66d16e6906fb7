package repository

import (
	"context"
	"sync"
	"time"

	"github.com/tnbsp/membership-workflow/constants"
	"github.com/tnbsp/membership-workflow/internal/common"
	"github.com/tnbsp/membership-workflow/internal/entity"
)

// InMemoryMemberRepository keeps tests lightweight. It intentionally favors
// clarity over performance.
type InMemoryMemberRepository struct {
	mu      sync.RWMutex
	members map[int64]*entity.Member
	nextID  int64
}

func NewInMemoryMemberRepository() *InMemoryMemberRepository {
	return &InMemoryMemberRepository{members: make(map[int64]*entity.Member), nextID: 1}
}

func (r *InMemoryMemberRepository) CreatePending(_ context.Context, m *entity.Member) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *m
	cp.ID = r.nextID
	cp.Status = string(constants.StatusPendingPayment)
	cp.CreatedAt = time.Now().UTC()
	r.members[cp.ID] = &cp
	r.nextID++
	return cp.ID, nil
}

func (r *InMemoryMemberRepository) AssignMembershipNumber(_ context.Context, id int64, number string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[id]
	if !ok {
		return common.ErrNotFound
	}
	m.MembershipNo = number
	return nil
}

func (r *InMemoryMemberRepository) Activate(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[id]
	if !ok {
		return common.ErrNotFound
	}
	m.Status = string(constants.StatusActive)
	return nil
}

func (r *InMemoryMemberRepository) Delete(_ context.Context, id int64) (string, string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[id]
	if !ok {
		return "", "", common.ErrNotFound
	}
	delete(r.members, id)
	return m.DocumentPath, m.PhotoPath, nil
}

func (r *InMemoryMemberRepository) GetByID(_ context.Context, id int64) (*entity.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if m, ok := r.members[id]; ok {
		cp := *m
		return &cp, nil
	}
	return nil, common.ErrNotFound
}

func (r *InMemoryMemberRepository) GetByMembershipNo(_ context.Context, number string) (*entity.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.members {
		if m.MembershipNo == number {
			cp := *m
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *InMemoryMemberRepository) List(_ context.Context) ([]*entity.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entity.Member, 0, len(r.members))
	for id := int64(1); id < r.nextID; id++ {
		if m, ok := r.members[id]; ok {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}
