package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStoreRoundTrip(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	token, err := s.Create(ctx, "/tmp/doc.pdf", "ABC1234567", time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	sess, err := s.Get(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/doc.pdf", sess.DocumentPath)
	assert.Equal(t, "ABC1234567", sess.EPIC)
}

func TestInMemoryStoreConsumeIsSingleUse(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	token, err := s.Create(ctx, "/tmp/doc.pdf", "ABC1234567", time.Minute)
	require.NoError(t, err)

	_, err = s.Consume(ctx, token)
	require.NoError(t, err)

	_, err = s.Consume(ctx, token)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Get(ctx, token)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInMemoryStoreExpiry(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	now := time.Now()
	s.now = func() time.Time { return now }
	token, err := s.Create(ctx, "/tmp/doc.pdf", "ABC1234567", 15*time.Minute)
	require.NoError(t, err)

	s.now = func() time.Time { return now.Add(14 * time.Minute) }
	_, err = s.Get(ctx, token)
	require.NoError(t, err)

	s.now = func() time.Time { return now.Add(16 * time.Minute) }
	_, err = s.Get(ctx, token)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Consume(ctx, token)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInMemoryStoreUnknownToken(t *testing.T) {
	s := NewInMemoryStore()
	_, err := s.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInMemoryStoreDelete(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	token, err := s.Create(ctx, "/tmp/doc.pdf", "ABC1234567", time.Minute)
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, token))
	_, err = s.Get(ctx, token)
	assert.ErrorIs(t, err, ErrNotFound)
}
