package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"threads-accounts/internal/model"
	"threads-accounts/internal/repository"
)

// fakeUserStore keeps users in memory and mirrors the repository contract.
type fakeUserStore struct {
	mu     sync.Mutex
	users  map[primitive.ObjectID]*model.User
	writes int

	findErr   error
	createErr error
	toggleErr error
	// createZeroID simulates a store that accepts the insert but returns no id.
	createZeroID bool
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[primitive.ObjectID]*model.User)}
}

func (f *fakeUserStore) FindByEmailOrUsername(_ context.Context, email, username string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, u := range f.users {
		if u.Email == email || u.Username == username {
			return clone(u), nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) FindByUsername(_ context.Context, username string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, u := range f.users {
		if u.Username == username {
			return clone(u), nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) FindByID(_ context.Context, id primitive.ObjectID) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	return clone(u), nil
}

func (f *fakeUserStore) Create(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	for _, u := range f.users {
		if u.Email == user.Email || u.Username == user.Username {
			return repository.ErrDuplicateKey
		}
	}
	if f.createZeroID {
		return nil
	}
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now().UTC()
	user.Followers = []primitive.ObjectID{}
	user.Following = []primitive.ObjectID{}
	f.users[user.ID] = clone(user)
	f.writes++
	return nil
}

func (f *fakeUserStore) ToggleFollow(_ context.Context, currentID, targetID primitive.ObjectID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.toggleErr != nil {
		return false, f.toggleErr
	}
	if currentID == targetID {
		return false, repository.ErrSelfReference
	}
	current, okCurrent := f.users[currentID]
	target, okTarget := f.users[targetID]
	if !okCurrent || !okTarget {
		return false, repository.ErrNotFound
	}
	follow := !current.IsFollowing(targetID)
	if follow {
		target.Followers = addID(target.Followers, currentID)
		current.Following = addID(current.Following, targetID)
	} else {
		target.Followers = removeID(target.Followers, currentID)
		current.Following = removeID(current.Following, targetID)
	}
	f.writes += 2
	return follow, nil
}

// seed inserts a user directly, bypassing hashing.
func (f *fakeUserStore) seed(username string) *model.User {
	u := &model.User{
		ID:        primitive.NewObjectID(),
		Name:      username,
		Email:     username + "@x.com",
		Username:  username,
		Followers: []primitive.ObjectID{},
		Following: []primitive.ObjectID{},
	}
	f.mu.Lock()
	f.users[u.ID] = u
	f.mu.Unlock()
	return clone(u)
}

// seedAs inserts a user whose username may bypass registration rules.
func (f *fakeUserStore) seedAs(username, email string) *model.User {
	u := f.seed(username)
	f.mu.Lock()
	f.users[u.ID].Email = email
	f.mu.Unlock()
	u.Email = email
	return u
}

func (f *fakeUserStore) get(id primitive.ObjectID) *model.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return clone(f.users[id])
}

func clone(u *model.User) *model.User {
	if u == nil {
		return nil
	}
	c := *u
	c.Followers = append([]primitive.ObjectID{}, u.Followers...)
	c.Following = append([]primitive.ObjectID{}, u.Following...)
	return &c
}

func addID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}

func removeID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := ids[:0]
	for _, existing := range ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}

type fakeSessions struct {
	revoked   map[string]time.Duration
	revokeErr error
	checkErr  error
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{revoked: make(map[string]time.Duration)}
}

func (f *fakeSessions) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	if f.revokeErr != nil {
		return f.revokeErr
	}
	f.revoked[tokenID] = ttl
	return nil
}

func (f *fakeSessions) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	if f.checkErr != nil {
		return false, f.checkErr
	}
	_, ok := f.revoked[tokenID]
	return ok, nil
}

type fakePublisher struct {
	events []model.FollowEvent
	err    error
}

func (f *fakePublisher) PublishFollowEvent(_ context.Context, event model.FollowEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

type fakeProfileCache struct {
	byID       map[string]model.Profile
	byUsername map[string]model.Profile
	getErr     error
	setErr     error
	sets       int
}

func newFakeProfileCache() *fakeProfileCache {
	return &fakeProfileCache{
		byID:       make(map[string]model.Profile),
		byUsername: make(map[string]model.Profile),
	}
}

func (f *fakeProfileCache) GetByID(_ context.Context, userID string) (*model.Profile, bool, error) {
	return f.lookup(f.byID, userID)
}

func (f *fakeProfileCache) GetByUsername(_ context.Context, username string) (*model.Profile, bool, error) {
	return f.lookup(f.byUsername, username)
}

func (f *fakeProfileCache) lookup(entries map[string]model.Profile, key string) (*model.Profile, bool, error) {
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	p, ok := entries[key]
	if !ok {
		return nil, false, nil
	}
	return &p, true, nil
}

func (f *fakeProfileCache) SetProfile(_ context.Context, profile model.Profile) error {
	f.sets++
	if f.setErr != nil {
		return f.setErr
	}
	f.byID[profile.ID] = profile
	f.byUsername[profile.Username] = profile
	return nil
}

var errStoreDown = errors.New("store down")

func fmtDuplicate() error {
	return fmt.Errorf("create user failed: %w", repository.ErrDuplicateKey)
}

func quietLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
