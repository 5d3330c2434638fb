package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Evgen-Mutagen/finances/internal/model"
	"github.com/shopspring/decimal"
)

// MemoryStore keeps users and receives in process memory. Every operation,
// and every WithTx call as a whole, runs under a single mutex, so
// transactions are serializable. A transaction works on a copy of the state
// that replaces the live one only on commit.
type MemoryStore struct {
	mu    sync.Mutex
	state *memState
}

type memState struct {
	users    map[string]model.User
	receives map[string]model.Receive
	order    map[string]int64
	seq      int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		state: &memState{
			users:    make(map[string]model.User),
			receives: make(map[string]model.Receive),
			order:    make(map[string]int64),
		},
	}
}

func (s *MemoryStore) Users() UserRepository {
	return memUsers{run: s.autocommit}
}

func (s *MemoryStore) Receives() ReceiveRepository {
	return memReceives{run: s.autocommit}
}

func (s *MemoryStore) WithTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	snapshot := s.state.clone()
	run := func(f func(st *memState) error) error { return f(snapshot) }
	if err := fn(ctx, memRepositories{run: run}); err != nil {
		return err
	}

	s.state = snapshot
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

func (s *MemoryStore) autocommit(f func(st *memState) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return f(s.state)
}

func (st *memState) clone() *memState {
	c := &memState{
		users:    make(map[string]model.User, len(st.users)),
		receives: make(map[string]model.Receive, len(st.receives)),
		order:    make(map[string]int64, len(st.order)),
		seq:      st.seq,
	}
	for k, v := range st.users {
		c.users[k] = v
	}
	for k, v := range st.receives {
		c.receives[k] = v
	}
	for k, v := range st.order {
		c.order[k] = v
	}
	return c
}

type runFunc func(f func(st *memState) error) error

type memRepositories struct {
	run runFunc
}

func (r memRepositories) Users() UserRepository {
	return memUsers{run: r.run}
}

func (r memRepositories) Receives() ReceiveRepository {
	return memReceives{run: r.run}
}

type memUsers struct {
	run runFunc
}

func (r memUsers) Create(_ context.Context, user *model.User) error {
	return r.run(func(st *memState) error {
		if _, ok := st.users[user.ID]; ok {
			return ErrDuplicate
		}
		if st.emailTaken(user.Email, "") {
			return ErrDuplicate
		}
		now := time.Now().UTC()
		user.CreatedAt, user.UpdatedAt = now, now
		st.users[user.ID] = *user
		return nil
	})
}

func (r memUsers) GetByID(_ context.Context, id string) (*model.User, error) {
	var out *model.User
	err := r.run(func(st *memState) error {
		u, ok := st.users[id]
		if !ok {
			return ErrNotFound
		}
		out = &u
		return nil
	})
	return out, err
}

func (r memUsers) GetByIDForUpdate(ctx context.Context, id string) (*model.User, error) {
	return r.GetByID(ctx, id)
}

func (r memUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	var out *model.User
	err := r.run(func(st *memState) error {
		for _, u := range st.users {
			if u.Email == email {
				u := u
				out = &u
				return nil
			}
		}
		return ErrNotFound
	})
	return out, err
}

func (r memUsers) List(_ context.Context) ([]*model.User, error) {
	users := make([]*model.User, 0)
	err := r.run(func(st *memState) error {
		for _, u := range st.users {
			u := u
			users = append(users, &u)
		}
		return nil
	})
	sort.SliceStable(users, func(i, j int) bool {
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, err
}

func (r memUsers) Update(_ context.Context, user *model.User) error {
	return r.run(func(st *memState) error {
		stored, ok := st.users[user.ID]
		if !ok {
			return ErrNotFound
		}
		if st.emailTaken(user.Email, user.ID) {
			return ErrDuplicate
		}
		stored.Name = user.Name
		stored.Email = user.Email
		stored.PasswordHash = user.PasswordHash
		stored.UpdatedAt = time.Now().UTC()
		st.users[user.ID] = stored
		user.UpdatedAt = stored.UpdatedAt
		return nil
	})
}

func (r memUsers) UpdateBalance(_ context.Context, userID string, balance decimal.Decimal) error {
	return r.run(func(st *memState) error {
		stored, ok := st.users[userID]
		if !ok {
			return ErrNotFound
		}
		stored.Balance = balance
		stored.UpdatedAt = time.Now().UTC()
		st.users[userID] = stored
		return nil
	})
}

func (r memUsers) Delete(_ context.Context, id string) error {
	return r.run(func(st *memState) error {
		if _, ok := st.users[id]; !ok {
			return ErrNotFound
		}
		delete(st.users, id)
		for rid, rec := range st.receives {
			if rec.UserID == id {
				delete(st.receives, rid)
				delete(st.order, rid)
			}
		}
		return nil
	})
}

func (st *memState) emailTaken(email, exceptID string) bool {
	for id, u := range st.users {
		if u.Email == email && id != exceptID {
			return true
		}
	}
	return false
}

type memReceives struct {
	run runFunc
}

func (r memReceives) Create(_ context.Context, receive *model.Receive) error {
	return r.run(func(st *memState) error {
		if _, ok := st.users[receive.UserID]; !ok {
			return ErrNotFound
		}
		if _, ok := st.receives[receive.ID]; ok {
			return ErrDuplicate
		}
		now := time.Now().UTC()
		receive.CreatedAt, receive.UpdatedAt = now, now
		stored := *receive
		stored.User = nil
		st.receives[receive.ID] = stored
		st.seq++
		st.order[receive.ID] = st.seq
		return nil
	})
}

func (r memReceives) GetByID(_ context.Context, id string) (*model.Receive, error) {
	var out *model.Receive
	err := r.run(func(st *memState) error {
		rec, ok := st.receives[id]
		if !ok {
			return ErrNotFound
		}
		out = st.withOwner(rec)
		return nil
	})
	return out, err
}

func (r memReceives) ListByUserAndDate(_ context.Context, userID, date string) ([]*model.Receive, error) {
	return r.list(func(rec model.Receive) bool {
		return rec.UserID == userID && rec.Date == date
	})
}

func (r memReceives) ListAll(_ context.Context) ([]*model.Receive, error) {
	return r.list(func(model.Receive) bool { return true })
}

func (r memReceives) list(match func(model.Receive) bool) ([]*model.Receive, error) {
	receives := make([]*model.Receive, 0)
	err := r.run(func(st *memState) error {
		for _, rec := range st.receives {
			if match(rec) {
				receives = append(receives, st.withOwner(rec))
			}
		}
		// newest first
		sort.SliceStable(receives, func(i, j int) bool {
			return st.order[receives[i].ID] > st.order[receives[j].ID]
		})
		return nil
	})
	return receives, err
}

func (r memReceives) Update(_ context.Context, receive *model.Receive) error {
	return r.run(func(st *memState) error {
		stored, ok := st.receives[receive.ID]
		if !ok {
			return ErrNotFound
		}
		stored.Description = receive.Description
		stored.Value = receive.Value
		stored.Type = receive.Type
		stored.Date = receive.Date
		stored.UpdatedAt = time.Now().UTC()
		st.receives[receive.ID] = stored
		receive.UpdatedAt = stored.UpdatedAt
		return nil
	})
}

func (r memReceives) Delete(_ context.Context, id string) error {
	return r.run(func(st *memState) error {
		if _, ok := st.receives[id]; !ok {
			return ErrNotFound
		}
		delete(st.receives, id)
		delete(st.order, id)
		return nil
	})
}

func (st *memState) withOwner(rec model.Receive) *model.Receive {
	if u, ok := st.users[rec.UserID]; ok {
		rec.User = &model.UserRef{ID: u.ID, Name: u.Name, Email: u.Email}
	}
	return &rec
}
