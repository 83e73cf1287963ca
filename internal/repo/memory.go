package repo

import (
	"context"
	"sync"
	"time"

	"github.com/Marcella2706/task2-GeekHaven/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore keeps users and reset tokens in process memory. It enforces the same
// uniqueness rules as the Mongo indexes and is used by STORE=memory and by tests.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[primitive.ObjectID]*domain.User
	byEmail  map[string]primitive.ObjectID
	byGoogle map[string]primitive.ObjectID
	tokens   map[string]*ResetToken
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[primitive.ObjectID]*domain.User),
		byEmail:  make(map[string]primitive.ObjectID),
		byGoogle: make(map[string]primitive.ObjectID),
		tokens:   make(map[string]*ResetToken),
	}
}

func (m *MemoryStore) Ping(context.Context) error          { return nil }
func (m *MemoryStore) Close(context.Context) error         { return nil }
func (m *MemoryStore) EnsureIndexes(context.Context) error { return nil }

func (m *MemoryStore) CreateUser(_ context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byEmail[u.Email]; ok {
		return ErrEmailExists
	}
	if u.GoogleID != "" {
		if _, ok := m.byGoogle[u.GoogleID]; ok {
			return ErrEmailExists
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	m.users[u.ID] = cloneUser(u)
	m.byEmail[u.Email] = u.ID
	if u.GoogleID != "" {
		m.byGoogle[u.GoogleID] = u.ID
	}
	return nil
}

func (m *MemoryStore) get(id primitive.ObjectID) *domain.User {
	if u, ok := m.users[id]; ok {
		return cloneUser(u)
	}
	return nil
}

func (m *MemoryStore) FindUserByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id, ok := m.byEmail[email]; ok {
		return m.get(id), nil
	}
	return nil, nil
}

func (m *MemoryStore) FindLocalUser(ctx context.Context, email string) (*domain.User, error) {
	u, err := m.FindUserByEmail(ctx, email)
	if u == nil || err != nil || u.Provider != domain.ProviderLocal {
		return nil, err
	}
	return u, nil
}

func (m *MemoryStore) FindUserByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.get(id), nil
}

func (m *MemoryStore) FindGoogleUser(_ context.Context, googleID, email string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id, ok := m.byGoogle[googleID]; ok {
		return m.get(id), nil
	}
	if id, ok := m.byEmail[email]; ok && m.users[id].Provider == domain.ProviderGoogle {
		return m.get(id), nil
	}
	return nil, nil
}

func (m *MemoryStore) update(id primitive.ObjectID, fn func(u *domain.User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	fn(u)
	return nil
}

func (m *MemoryStore) TouchLastLogin(_ context.Context, id primitive.ObjectID, at time.Time) error {
	return m.update(id, func(u *domain.User) {
		u.LastLogin = &at
		u.UpdatedAt = at
	})
}

func (m *MemoryStore) SetPasswordHash(_ context.Context, id primitive.ObjectID, hash string) error {
	return m.update(id, func(u *domain.User) {
		u.PasswordHash = hash
		u.UpdatedAt = time.Now().UTC()
	})
}

func (m *MemoryStore) SaveProfile(_ context.Context, in *domain.User) error {
	in = cloneUser(in)
	return m.update(in.ID, func(u *domain.User) {
		u.FullName = in.FullName
		u.Phone = in.Phone
		u.Location = in.Location
		u.Avatar = in.Avatar
		u.Preferences = in.Preferences
		u.Addresses = in.Addresses
		u.UpdatedAt = in.UpdatedAt
		if in.SellerInfo != nil {
			if u.SellerInfo == nil {
				u.SellerInfo = domain.NewSellerInfo(in.FullName)
			}
			u.SellerInfo.BusinessName = in.SellerInfo.BusinessName
			u.SellerInfo.Description = in.SellerInfo.Description
			u.SellerInfo.ResponseTime = in.SellerInfo.ResponseTime
			u.SellerInfo.Policies = in.SellerInfo.Policies
		}
	})
}

func (m *MemoryStore) SetActive(_ context.Context, email string, active bool) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	u := m.users[id]
	u.IsActive = active
	u.UpdatedAt = time.Now().UTC()
	return cloneUser(u), nil
}

func (m *MemoryStore) CreateResetToken(_ context.Context, rt ResetToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tokens[rt.TokenHash]; ok {
		return ErrDuplicate
	}
	rt.ID = primitive.NewObjectID()
	rt.CreatedAt = time.Now().UTC()
	m.tokens[rt.TokenHash] = &rt
	return nil
}

func (m *MemoryStore) ConsumeResetToken(_ context.Context, tokenHash string, now time.Time) (*ResetToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rt, ok := m.tokens[tokenHash]
	if !ok || rt.UsedAt != nil || !rt.ExpiresAt.After(now) {
		return nil, nil
	}
	rt.UsedAt = &now
	out := *rt
	return &out, nil
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	if u.SellerInfo != nil {
		si := *u.SellerInfo
		si.Badges = append([]string(nil), u.SellerInfo.Badges...)
		c.SellerInfo = &si
	}
	if u.Addresses != nil {
		c.Addresses = append([]domain.Address{}, u.Addresses...)
	}
	if u.LastLogin != nil {
		t := *u.LastLogin
		c.LastLogin = &t
	}
	return &c
}
