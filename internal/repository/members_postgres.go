package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tnbsp/membership-workflow/constants"
	"github.com/tnbsp/membership-workflow/internal/common"
	"github.com/tnbsp/membership-workflow/internal/entity"
)

const membersDDL = `
CREATE TABLE IF NOT EXISTS members (
	id BIGSERIAL PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	membership_no VARCHAR(100),
	active_no VARCHAR(100),
	profession VARCHAR(255),
	designation VARCHAR(255),
	mandal VARCHAR(255),
	dob VARCHAR(10),
	blood_group VARCHAR(10),
	contact_no VARCHAR(20) NOT NULL,
	address TEXT,
	document_path VARCHAR(512),
	photo_path VARCHAR(512),
	status VARCHAR(50) NOT NULL DEFAULT 'pending_payment',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

type postgresMemberRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewPostgresMemberRepository(pool *pgxpool.Pool, logger *slog.Logger) MemberRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &postgresMemberRepo{pool: pool, logger: logger}
}

// MigratePostgres ensures the members table exists.
func MigratePostgres(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, membersDDL)
	return err
}

func (r *postgresMemberRepo) CreatePending(ctx context.Context, m *entity.Member) (int64, error) {
	const q = `
		INSERT INTO members
		(name, active_no, profession, designation, mandal, dob, blood_group,
		 contact_no, address, document_path, photo_path, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`
	var id int64
	err := r.pool.QueryRow(ctx, q,
		m.Name, m.ActiveNo, m.Profession, m.Designation, m.Mandal, m.DOB,
		m.BloodGroup, m.ContactNo, m.Address, m.DocumentPath, m.PhotoPath,
		string(constants.StatusPendingPayment), time.Now().UTC(),
	).Scan(&id)
	if err != nil {
		r.logger.Error("failed to insert pending member", "name", m.Name, "error", err)
		return 0, err
	}
	return id, nil
}

func (r *postgresMemberRepo) AssignMembershipNumber(ctx context.Context, id int64, number string) error {
	_, err := r.pool.Exec(ctx, `UPDATE members SET membership_no = $1 WHERE id = $2`, number, id)
	if err != nil {
		r.logger.Error("failed to assign membership number", "member_id", id, "error", err)
	}
	return err
}

func (r *postgresMemberRepo) Activate(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE members SET status = $1 WHERE id = $2`,
		string(constants.StatusActive), id)
	if err != nil {
		r.logger.Error("failed to activate member", "member_id", id, "error", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *postgresMemberRepo) Delete(ctx context.Context, id int64) (string, string, error) {
	var docPath, photoPath string
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(document_path, ''), COALESCE(photo_path, '') FROM members WHERE id = $1`, id,
	).Scan(&docPath, &photoPath)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", "", common.ErrNotFound
	}
	if err != nil {
		r.logger.Error("failed to load member for delete", "member_id", id, "error", err)
		return "", "", err
	}
	if _, err := r.pool.Exec(ctx, `DELETE FROM members WHERE id = $1`, id); err != nil {
		r.logger.Error("failed to delete member", "member_id", id, "error", err)
		return "", "", err
	}
	return docPath, photoPath, nil
}

func (r *postgresMemberRepo) GetByID(ctx context.Context, id int64) (*entity.Member, error) {
	return r.get(ctx, `WHERE id = $1`, id)
}

func (r *postgresMemberRepo) GetByMembershipNo(ctx context.Context, number string) (*entity.Member, error) {
	return r.get(ctx, `WHERE membership_no = $1`, number)
}

const memberColumns = `
	id, name, COALESCE(membership_no, ''), COALESCE(active_no, ''),
	COALESCE(profession, ''), COALESCE(designation, ''), COALESCE(mandal, ''),
	COALESCE(dob, ''), COALESCE(blood_group, ''), contact_no,
	COALESCE(address, ''), COALESCE(document_path, ''), COALESCE(photo_path, ''),
	status, created_at`

func (r *postgresMemberRepo) get(ctx context.Context, where string, arg any) (*entity.Member, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+memberColumns+` FROM members `+where, arg)
	m, err := scanMember(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		r.logger.Error("failed to get member", "error", err)
		return nil, err
	}
	return m, nil
}

func (r *postgresMemberRepo) List(ctx context.Context) ([]*entity.Member, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+memberColumns+` FROM members ORDER BY id`)
	if err != nil {
		r.logger.Error("failed to list members", "error", err)
		return nil, err
	}
	defer rows.Close()

	var out []*entity.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMember(row rowScanner) (*entity.Member, error) {
	var m entity.Member
	err := row.Scan(
		&m.ID, &m.Name, &m.MembershipNo, &m.ActiveNo,
		&m.Profession, &m.Designation, &m.Mandal,
		&m.DOB, &m.BloodGroup, &m.ContactNo,
		&m.Address, &m.DocumentPath, &m.PhotoPath,
		&m.Status, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
