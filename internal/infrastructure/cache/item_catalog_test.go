package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/comfort/backend/internal/domain/catalog"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type mockItemRepository struct {
	mock.Mock
}

func (m *mockItemRepository) GetItems(ctx context.Context, codes []string) (catalog.Lookup, error) {
	args := m.Called(ctx, codes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(catalog.Lookup), args.Error(1)
}

func (m *mockItemRepository) Save(ctx context.Context, item *catalog.Item) error {
	return m.Called(ctx, item).Error(0)
}

// unreachableClient fails every command quickly
func unreachableClient(t *testing.T) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

var wardrobe = &catalog.Item{
	Code: "WARDROBE", Name: "Wardrobe", Rate: 17950, Weight: 80,
	Children: []catalog.ChildItem{
		{ItemCode: "FRAME", ItemName: "Frame", Qty: 2},
		{ItemCode: "DOOR", ItemName: "Door", Qty: 1},
	},
}

func TestItemCodec(t *testing.T) {
	data, err := encodeItem(wardrobe)
	require.NoError(t, err)

	item, err := decodeItem(data)
	require.NoError(t, err)
	assert.Equal(t, wardrobe, item)

	_, err = decodeItem([]byte("{"))
	assert.Error(t, err)
}

func TestRedisItemCatalog_FallsBackWhenRedisIsDown(t *testing.T) {
	ctx := context.Background()
	repo := new(mockItemRepository)
	repo.On("GetItems", ctx, []string{"WARDROBE", "CHAIR"}).
		Return(catalog.Lookup{"WARDROBE": wardrobe}, nil).Once()

	core, recorded := observer.New(zapcore.WarnLevel)
	c := NewRedisItemCatalog(repo, unreachableClient(t), time.Minute, WithLogger(zap.New(core)))

	lookup, err := c.GetItems(ctx, []string{"WARDROBE", "CHAIR"})
	require.NoError(t, err)
	assert.Equal(t, catalog.Lookup{"WARDROBE": wardrobe}, lookup)
	assert.Equal(t, 1, recorded.FilterMessage("item cache read failed").Len())
	assert.Equal(t, 1, recorded.FilterMessage("item cache write failed").Len())
	repo.AssertExpectations(t)
}

func TestRedisItemCatalog_PropagatesRepositoryErrors(t *testing.T) {
	ctx := context.Background()
	repo := new(mockItemRepository)
	repo.On("GetItems", ctx, []string{"CHAIR"}).Return(nil, errors.New("connection reset")).Once()

	c := NewRedisItemCatalog(repo, unreachableClient(t), time.Minute)
	_, err := c.GetItems(ctx, []string{"CHAIR"})
	assert.EqualError(t, err, "connection reset")
}

func TestRedisItemCatalog_EmptyRequest(t *testing.T) {
	repo := new(mockItemRepository)
	c := NewRedisItemCatalog(repo, unreachableClient(t), time.Minute)

	lookup, err := c.GetItems(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, lookup)
	repo.AssertNotCalled(t, "GetItems", mock.Anything, mock.Anything)
}

func TestRedisItemCatalog_Save(t *testing.T) {
	ctx := context.Background()
	chair := &catalog.Item{Code: "CHAIR", Name: "Chair", Rate: 1494}

	t.Run("repository failure skips eviction", func(t *testing.T) {
		repo := new(mockItemRepository)
		repo.On("Save", ctx, chair).Return(errors.New("duplicate key")).Once()

		c := NewRedisItemCatalog(repo, unreachableClient(t), time.Minute)
		assert.EqualError(t, c.Save(ctx, chair), "duplicate key")
	})

	t.Run("eviction failure is reported", func(t *testing.T) {
		repo := new(mockItemRepository)
		repo.On("Save", ctx, chair).Return(nil).Once()

		c := NewRedisItemCatalog(repo, unreachableClient(t), time.Minute)
		err := c.Save(ctx, chair)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to evict cached items")
		repo.AssertExpectations(t)
	})
}
