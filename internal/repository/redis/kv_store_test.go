package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKVStore_Get(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewKVStore(client, 0)
	ctx := context.Background()

	mock.ExpectGet("ab_test:ai_1:hero_cta_text").SetVal("1")
	v, found, err := store.Get(ctx, "ab_test:ai_1:hero_cta_text")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "1", v)

	mock.ExpectGet("visitor:ai_2").RedisNil()
	_, found, err = store.Get(ctx, "visitor:ai_2")
	require.NoError(t, err)
	assert.False(t, found)

	mock.ExpectGet("visitor:ai_3").SetErr(errors.New("i/o timeout"))
	_, _, err = store.Get(ctx, "visitor:ai_3")
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKVStore_SetUsesTTL(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewKVStore(client, 24*time.Hour)

	mock.ExpectSet("cookie_consent:ai_1", "all", 24*time.Hour).SetVal("OK")
	require.NoError(t, store.Set(context.Background(), "cookie_consent:ai_1", "all"))

	mock.ExpectSet("visitor:ai_1", "x", 24*time.Hour).SetErr(errors.New("READONLY"))
	assert.Error(t, store.Set(context.Background(), "visitor:ai_1", "x"))

	assert.NoError(t, mock.ExpectationsWereMet())
}
