package repository

import (
	"context"

	"github.com/tnbsp/membership-workflow/internal/entity"
)

// MemberRepository persists membership registrations. A pending record always
// carries its document and photo paths; Delete returns them so the caller can
// remove the files in the same logical operation.
type MemberRepository interface {
	CreatePending(ctx context.Context, m *entity.Member) (int64, error)
	AssignMembershipNumber(ctx context.Context, id int64, number string) error
	Activate(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) (documentPath, photoPath string, err error)
	GetByID(ctx context.Context, id int64) (*entity.Member, error)
	GetByMembershipNo(ctx context.Context, number string) (*entity.Member, error)
	List(ctx context.Context) ([]*entity.Member, error)
}
