package adapter

import (
	"context"
	"errors"
	"testing"
	"time"

	"questa-search/internal/cache"
	"questa-search/internal/domain"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ domain.Cache = (*RedisSearchCache)(nil)

var (
	pageKey       = cache.SearchPageKey("4", []byte(`{"filter":{"query":"coffee"}}`))
	generationKey = cache.GenerationKey
)

func TestRedisSearchCache_Get(t *testing.T) {
	ctx := context.Background()
	page := `{"questions":[],"has_more":false,"source":"remote"}`

	tests := []struct {
		name    string
		setup   func(m redismock.ClientMock)
		want    string
		wantErr error
	}{
		{
			name:  "Hit",
			setup: func(m redismock.ClientMock) { m.ExpectGet(pageKey).SetVal(page) },
			want:  page,
		},
		{
			name:    "Miss",
			setup:   func(m redismock.ClientMock) { m.ExpectGet(pageKey).RedisNil() },
			wantErr: domain.ErrCacheMiss,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			db, mock := redismock.NewClientMock()
			tc.setup(mock)

			got, err := NewRedisSearchCache(db).Get(ctx, pageKey)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tc.want, got)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}

	t.Run("ConnectionError", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		connErr := errors.New("dial tcp: connection refused")
		mock.ExpectGet(pageKey).SetErr(connErr)

		_, err := NewRedisSearchCache(db).Get(ctx, pageKey)
		assert.ErrorIs(t, err, connErr)
		assert.NotErrorIs(t, err, domain.ErrCacheMiss)
		assert.ErrorContains(t, err, pageKey)
	})
}

func TestRedisSearchCache_WritePath(t *testing.T) {
	ctx := context.Background()
	db, mock := redismock.NewClientMock()
	c := NewRedisSearchCache(db)
	questionKey := cache.QuestionKey("01HZY3C4Q0")

	// A question update: bump the generation, drop the cached question,
	// then cache the first page of the new generation.
	mock.ExpectIncr(generationKey).SetVal(5)
	mock.ExpectDel(questionKey).SetVal(0)
	mock.ExpectSet(pageKey, "{}", 5*time.Minute).SetVal("OK")

	gen, err := c.Incr(ctx, generationKey)
	require.NoError(t, err)
	assert.Equal(t, int64(5), gen)
	require.NoError(t, c.Delete(ctx, questionKey))
	require.NoError(t, c.Set(ctx, pageKey, "{}", 5*time.Minute))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisSearchCache_Errors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("READONLY You can't write against a read only replica")

	t.Run("Set", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		mock.ExpectSet(pageKey, "{}", time.Minute).SetErr(boom)
		assert.ErrorIs(t, NewRedisSearchCache(db).Set(ctx, pageKey, "{}", time.Minute), boom)
	})

	t.Run("Delete", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		mock.ExpectDel(pageKey).SetErr(boom)
		assert.ErrorIs(t, NewRedisSearchCache(db).Delete(ctx, pageKey), boom)
	})

	t.Run("Incr", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		mock.ExpectIncr(generationKey).SetErr(boom)
		n, err := NewRedisSearchCache(db).Incr(ctx, generationKey)
		assert.ErrorIs(t, err, boom)
		assert.Zero(t, n)
	})

	t.Run("Ping", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		mock.ExpectPing().SetErr(redis.ErrClosed)
		assert.ErrorIs(t, NewRedisSearchCache(db).Ping(ctx), redis.ErrClosed)
	})
}
