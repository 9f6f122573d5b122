package app

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"threads-accounts/internal/model"
)

func TestGetProfile_ByUsernameAndID(t *testing.T) {
	store := newFakeUserStore()
	cache := newFakeProfileCache()
	svc := NewProfileService(store, cache, quietLogger())
	a := store.seed("alice")

	byName, err := svc.GetProfile(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, a.ID.Hex(), byName.ID)
	assert.Equal(t, 1, cache.sets)

	byID, err := svc.GetProfile(context.Background(), a.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)
	assert.Equal(t, 1, cache.sets, "second lookup is served from cache")
}

func TestGetProfile_CacheHitSkipsStore(t *testing.T) {
	store := newFakeUserStore()
	store.findErr = errStoreDown
	cache := newFakeProfileCache()
	cache.byUsername["alice"] = model.Profile{ID: "cached", Username: "alice"}
	svc := NewProfileService(store, cache, quietLogger())

	p, err := svc.GetProfile(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "cached", p.ID)
}

func TestGetProfile_CacheErrorsAreNotFatal(t *testing.T) {
	store := newFakeUserStore()
	cache := newFakeProfileCache()
	cache.getErr = errStoreDown
	cache.setErr = errStoreDown
	svc := NewProfileService(store, cache, quietLogger())
	store.seed("alice")

	p, err := svc.GetProfile(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", p.Username)
}

func TestGetProfile_NotFoundAndInvalid(t *testing.T) {
	svc := NewProfileService(newFakeUserStore(), nil, quietLogger())

	_, err := svc.GetProfile(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.GetProfile(context.Background(), primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.GetProfile(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetProfile_StoreFailure(t *testing.T) {
	store := newFakeUserStore()
	store.findErr = errStoreDown
	svc := NewProfileService(store, nil, quietLogger())

	_, err := svc.GetProfile(context.Background(), "alice")
	assert.ErrorIs(t, err, errStoreDown)
}

func TestGetProfile_IDAndUsernameCachesAreSeparate(t *testing.T) {
	store := newFakeUserStore()
	cache := newFakeProfileCache()
	svc := NewProfileService(store, cache, quietLogger())
	bob := store.seed("bob")
	// A username equal to bob's id can only come from data written before
	// registration rejected such names.
	impostor := store.seedAs(bob.ID.Hex(), "impostor@x.com")

	_, err := svc.GetProfile(context.Background(), impostor.ID.Hex())
	require.NoError(t, err)

	p, err := svc.GetProfile(context.Background(), bob.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, bob.ID.Hex(), p.ID)
	assert.Equal(t, "bob", p.Username)
}

func TestGetProfile_IDQueryIsCaseInsensitive(t *testing.T) {
	store := newFakeUserStore()
	cache := newFakeProfileCache()
	svc := NewProfileService(store, cache, quietLogger())
	a := store.seed("alice")

	_, err := svc.GetProfile(context.Background(), a.ID.Hex())
	require.NoError(t, err)
	store.findErr = errStoreDown

	p, err := svc.GetProfile(context.Background(), strings.ToUpper(a.ID.Hex()))
	require.NoError(t, err, "served from the id cache")
	assert.Equal(t, "alice", p.Username)
}
