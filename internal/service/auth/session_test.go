package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStorage(t *testing.T) {
	backends := map[string]func(t *testing.T) (SessionStorage, func(time.Duration)){
		"cache": func(t *testing.T) (SessionStorage, func(time.Duration)) {
			return NewCacheStorage(time.Hour, time.Minute), time.Sleep
		},
		"redis": func(t *testing.T) (SessionStorage, func(time.Duration)) {
			mr := miniredis.RunT(t)
			client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
			t.Cleanup(func() { _ = client.Close() })
			return NewRedisStorage(client), mr.FastForward
		},
	}

	for name, build := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			storage, advance := build(t)

			_, err := storage.Get(ctx, "session:missing:auth_user")
			assert.ErrorIs(t, err, ErrSessionNotFound)

			key := sessionKey("tok", userKeySuffix)
			require.NoError(t, storage.Set(ctx, key, []byte(`{"id":"1"}`), time.Hour))
			got, err := storage.Get(ctx, key)
			require.NoError(t, err)
			assert.JSONEq(t, `{"id":"1"}`, string(got))

			require.NoError(t, storage.Delete(ctx, key, sessionKey("tok", tokenKeySuffix)))
			_, err = storage.Get(ctx, key)
			assert.ErrorIs(t, err, ErrSessionNotFound)

			require.NoError(t, storage.Set(ctx, "short", []byte("x"), 50*time.Millisecond))
			advance(100 * time.Millisecond)
			_, err = storage.Get(ctx, "short")
			assert.ErrorIs(t, err, ErrSessionNotFound)

			require.NoError(t, storage.Delete(ctx))
		})
	}
}

func TestSessionKeys(t *testing.T) {
	assert.Equal(t, "session:abc:auth_user", sessionKey("abc", userKeySuffix))
	assert.Equal(t, "session:abc:auth_token", sessionKey("abc", tokenKeySuffix))
	assert.Equal(t, "signup:pat1:new_patient_signup", handoffKey("pat1"))
}

func TestServiceWithRedisStorage(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	f := newFixture(t)
	f.svc.storage = NewRedisStorage(client)
	ctx := context.Background()

	session, err := f.svc.Login(ctx, "admin@naturecure.com", "password")
	require.NoError(t, err)
	assert.True(t, mr.Exists(sessionKey(session.Token, userKeySuffix)))
	assert.True(t, mr.Exists(sessionKey(session.Token, tokenKeySuffix)))

	token, err := mr.Get(sessionKey(session.Token, tokenKeySuffix))
	require.NoError(t, err)
	assert.Equal(t, session.Token, token)

	require.NoError(t, f.svc.Logout(ctx, session.Token))
	assert.False(t, mr.Exists(sessionKey(session.Token, userKeySuffix)))
}
