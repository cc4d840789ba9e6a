package persist

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/board-sync/internal/board"
)

func TestObjectStorage_RoundTrip(t *testing.T) {
	endpoint := os.Getenv("BOARD_TEST_S3_ENDPOINT")
	if endpoint == "" {
		t.Skip("BOARD_TEST_S3_ENDPOINT is not set")
	}
	ctx := context.Background()

	s, err := NewObjectStorage(ctx, ObjectOptions{
		Endpoint:  endpoint,
		AccessKey: os.Getenv("BOARD_TEST_S3_ACCESS_KEY"),
		SecretKey: os.Getenv("BOARD_TEST_S3_SECRET_KEY"),
		Bucket:    "board-sync-test",
		Object:    t.Name() + ".json",
	})
	require.NoError(t, err)

	_, err = s.Load(ctx)
	if err != nil {
		assert.ErrorIs(t, err, ErrNotFound)
	}

	b := board.Default()
	require.NoError(t, s.Save(ctx, b))
	raw, err := s.Load(ctx)
	require.NoError(t, err)

	res := board.Normalize(raw)
	require.True(t, res.OK())
	assert.Equal(t, b.Sections, res.Board.Sections)
}

func TestNewObjectStorage_RequiresBucket(t *testing.T) {
	_, err := NewObjectStorage(context.Background(), ObjectOptions{Endpoint: "localhost:9000"})
	assert.Error(t, err)
}
