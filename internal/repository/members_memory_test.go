package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tnbsp/membership-workflow/constants"
	"github.com/tnbsp/membership-workflow/internal/common"
	"github.com/tnbsp/membership-workflow/internal/entity"
)

func TestInMemoryMemberLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryMemberRepository()

	id, err := repo.CreatePending(ctx, &entity.Member{
		Name:         "R. Kumar",
		ContactNo:    "9876543210",
		DocumentPath: "/docs/a.pdf",
		PhotoPath:    "/photos/a.jpg",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	m, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, string(constants.StatusPendingPayment), m.Status)
	assert.False(t, m.CreatedAt.IsZero())

	require.NoError(t, repo.AssignMembershipNumber(ctx, id, "BSP-202609-000001"))
	m, err = repo.GetByMembershipNo(ctx, "BSP-202609-000001")
	require.NoError(t, err)
	assert.Equal(t, id, m.ID)

	require.NoError(t, repo.Activate(ctx, id))
	m, err = repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, string(constants.StatusActive), m.Status)

	docPath, photoPath, err := repo.Delete(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "/docs/a.pdf", docPath)
	assert.Equal(t, "/photos/a.jpg", photoPath)

	_, err = repo.GetByID(ctx, id)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestInMemoryMemberListOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryMemberRepository()

	for _, name := range []string{"first", "second", "third"} {
		_, err := repo.CreatePending(ctx, &entity.Member{Name: name, ContactNo: "9876543210"})
		require.NoError(t, err)
	}
	_, _, err := repo.Delete(ctx, 2)
	require.NoError(t, err)

	members, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "first", members[0].Name)
	assert.Equal(t, "third", members[1].Name)
}

func TestInMemoryMemberNotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryMemberRepository()

	assert.ErrorIs(t, repo.Activate(ctx, 7), common.ErrNotFound)
	assert.ErrorIs(t, repo.AssignMembershipNumber(ctx, 7, "x"), common.ErrNotFound)
	_, _, err := repo.Delete(ctx, 7)
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, err = repo.GetByMembershipNo(ctx, "nope")
	assert.ErrorIs(t, err, common.ErrNotFound)
}
