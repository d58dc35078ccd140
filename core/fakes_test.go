package core

import (
	"context"
	"sync"
	"time"
)

// fakeStorage is an in-memory Storage for tests.
type fakeStorage struct {
	mu       sync.Mutex
	sessions map[string]*Session
	users    map[string]*User
	tokens   map[string]string

	sessionGets int
	userGets    int
	upserts     int

	getSessionErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		sessions: make(map[string]*Session),
		users:    make(map[string]*User),
		tokens:   make(map[string]string),
	}
}

func (f *fakeStorage) GetSession(ctx context.Context, clientID string) (*Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessionGets++
	if f.getSessionErr != nil {
		return nil, f.getSessionErr
	}
	s, ok := f.sessions[clientID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	out := *s
	return &out, nil
}

func (f *fakeStorage) SetSession(ctx context.Context, clientID, token string, user *Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[clientID] = &Session{Token: token, User: user}
	return nil
}

func (f *fakeStorage) ClearSession(ctx context.Context, clientID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, clientID)
	return nil
}

func (f *fakeStorage) UpsertUser(ctx context.Context, u *User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts++
	existing, ok := f.users[u.ID]
	if !ok {
		stored := *u
		f.users[u.ID] = &stored
		return nil
	}
	existing.Username = u.Username
	existing.IsAdmin = u.IsAdmin
	existing.IsWhitelisted = u.IsWhitelisted
	existing.HasPassword = u.HasPassword
	existing.HasDiscord = u.HasDiscord
	existing.TermsAccepted = u.TermsAccepted
	return nil
}

func (f *fakeStorage) GetUserByID(ctx context.Context, id string) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	out := *u
	return &out, nil
}

func (f *fakeStorage) GetUserByTokenHash(ctx context.Context, tokenHash string) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.userGets++
	userID, ok := f.tokens[tokenHash]
	if !ok {
		return nil, ErrUserNotFound
	}
	u, ok := f.users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	out := *u
	return &out, nil
}

func (f *fakeStorage) UpdateUser(ctx context.Context, u *User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[u.ID]; !ok {
		return ErrUserNotFound
	}
	stored := *u
	stored.UpdatedAt = time.Now()
	f.users[u.ID] = &stored
	return nil
}

func (f *fakeStorage) RegisterToken(ctx context.Context, tokenHash, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[tokenHash] = userID
	return nil
}

func (f *fakeStorage) RevokeToken(ctx context.Context, tokenHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tokens, tokenHash)
	return nil
}

// fakeCache is a ProfileCache without TTL or eviction.
type fakeCache struct {
	mu      sync.Mutex
	entries map[string]*Profile
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]*Profile)}
}

func (c *fakeCache) Get(key string) (*Profile, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.entries[key]
	if !ok {
		return nil, ErrCacheNotFound
	}
	return p, nil
}

func (c *fakeCache) Set(key string, p *Profile) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = p
	return nil
}

func (c *fakeCache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *fakeCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*Profile)
	return nil
}

// fakeHasher avoids argon2 cost in service tests.
type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (fakeHasher) Verify(password, hash string) (bool, error) {
	return hash == "hashed:"+password, nil
}

// recordingMetrics captures recorder calls.
type recordingMetrics struct {
	surfaces  []string
	callbacks []string
	clears    int
}

func (m *recordingMetrics) SurfaceResolved(surface string)      { m.surfaces = append(m.surfaces, surface) }
func (m *recordingMetrics) CallbackResolved(disposition string) { m.callbacks = append(m.callbacks, disposition) }
func (m *recordingMetrics) SessionCleared()                     { m.clears++ }

func boolPtr(b bool) *bool { return &b }

// completeProfile has every onboarding step done.
func completeProfile(id string) *Profile {
	return &Profile{
		ID:            id,
		IsWhitelisted: boolPtr(true),
		HasPassword:   boolPtr(true),
		HasDiscord:    boolPtr(true),
		TermsAccepted: boolPtr(true),
	}
}
