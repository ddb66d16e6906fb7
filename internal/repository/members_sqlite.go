package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/tnbsp/membership-workflow/constants"
	"github.com/tnbsp/membership-workflow/internal/common"
	"github.com/tnbsp/membership-workflow/internal/entity"
)

const membersDDLSQLite = `
CREATE TABLE IF NOT EXISTS members (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
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
	created_at TIMESTAMP NOT NULL
)`

// sqliteMemberRepo backs local deployments that run without Postgres.
type sqliteMemberRepo struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenSQLite opens (or creates) the local members database and ensures the
// schema exists.
func OpenSQLite(path string, logger *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// The modernc driver serializes access itself, but a single writer keeps
	// SQLITE_BUSY out of the picture entirely.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(membersDDLSQLite); err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Info("sqlite members database ready", "path", path)
	return db, nil
}

func NewSQLiteMemberRepository(db *sql.DB, logger *slog.Logger) MemberRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &sqliteMemberRepo{db: db, logger: logger}
}

func (r *sqliteMemberRepo) CreatePending(ctx context.Context, m *entity.Member) (int64, error) {
	const q = `
		INSERT INTO members
		(name, active_no, profession, designation, mandal, dob, blood_group,
		 contact_no, address, document_path, photo_path, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		m.Name, m.ActiveNo, m.Profession, m.Designation, m.Mandal, m.DOB,
		m.BloodGroup, m.ContactNo, m.Address, m.DocumentPath, m.PhotoPath,
		string(constants.StatusPendingPayment), time.Now().UTC(),
	)
	if err != nil {
		r.logger.Error("failed to insert pending member", "name", m.Name, "error", err)
		return 0, err
	}
	return res.LastInsertId()
}

func (r *sqliteMemberRepo) AssignMembershipNumber(ctx context.Context, id int64, number string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE members SET membership_no = ? WHERE id = ?`, number, id)
	if err != nil {
		r.logger.Error("failed to assign membership number", "member_id", id, "error", err)
	}
	return err
}

func (r *sqliteMemberRepo) Activate(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE members SET status = ? WHERE id = ?`,
		string(constants.StatusActive), id)
	if err != nil {
		r.logger.Error("failed to activate member", "member_id", id, "error", err)
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *sqliteMemberRepo) Delete(ctx context.Context, id int64) (string, string, error) {
	var docPath, photoPath sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT document_path, photo_path FROM members WHERE id = ?`, id,
	).Scan(&docPath, &photoPath)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", common.ErrNotFound
	}
	if err != nil {
		r.logger.Error("failed to load member for delete", "member_id", id, "error", err)
		return "", "", err
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM members WHERE id = ?`, id); err != nil {
		r.logger.Error("failed to delete member", "member_id", id, "error", err)
		return "", "", err
	}
	return docPath.String, photoPath.String, nil
}

func (r *sqliteMemberRepo) GetByID(ctx context.Context, id int64) (*entity.Member, error) {
	return r.get(ctx, `WHERE id = ?`, id)
}

func (r *sqliteMemberRepo) GetByMembershipNo(ctx context.Context, number string) (*entity.Member, error) {
	return r.get(ctx, `WHERE membership_no = ?`, number)
}

const memberColumnsSQLite = `
	id, name, COALESCE(membership_no, ''), COALESCE(active_no, ''),
	COALESCE(profession, ''), COALESCE(designation, ''), COALESCE(mandal, ''),
	COALESCE(dob, ''), COALESCE(blood_group, ''), contact_no,
	COALESCE(address, ''), COALESCE(document_path, ''), COALESCE(photo_path, ''),
	status, created_at`

func (r *sqliteMemberRepo) get(ctx context.Context, where string, arg any) (*entity.Member, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+memberColumnsSQLite+` FROM members `+where, arg)
	m, err := scanMember(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		r.logger.Error("failed to get member", "error", err)
		return nil, err
	}
	return m, nil
}

func (r *sqliteMemberRepo) List(ctx context.Context) ([]*entity.Member, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+memberColumnsSQLite+` FROM members ORDER BY id`)
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
