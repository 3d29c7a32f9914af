package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Ozymandias089/devlog-api/internal/domain"
)

// mapPGErr: уникальные конфликты (email/username/slug) -> ErrConflict,
// отсутствие строки -> ErrNotFound
func mapPGErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %v", domain.ErrNotFound, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: %s", domain.ErrConflict, pgErr.ConstraintName)
	}
	return err
}

func (r *PGRepo) CreateMember(ctx context.Context, email, passHash, username string, role domain.Role) (domain.Member, error) {
	q := r.qb().Insert(fmt.Sprintf("%s.members", r.schema)).
		Columns("email", "password_hash", "username", "role").
		Values(email, passHash, username, string(role)).
		Suffix("RETURNING uuid, email, password_hash, username, role, created_at")

	sqlStr, args, _ := q.ToSql()
	r.logSQL("CreateMember", sqlStr, args)

	start := time.Now()
	row := r.pool.QueryRow(ctx, sqlStr, args...)
	var m domain.Member
	if err := row.Scan(&m.UUID, &m.Email, &m.PassHash, &m.Username, &m.Role, &m.CreatedAt); err != nil {
		r.logger.Printf("CreateMember scan error after %s: %v", time.Since(start), err)
		return domain.Member{}, mapPGErr(err)
	}
	r.logger.Printf("CreateMember ok in %s uuid=%s username=%s", time.Since(start), m.UUID, m.Username)
	return m, nil
}

func (r *PGRepo) MemberByEmail(ctx context.Context, email string) (domain.Member, error) {
	return r.memberBy(ctx, "MemberByEmail", sq.Eq{"email": email})
}

func (r *PGRepo) MemberByUUID(ctx context.Context, id domain.MemberID) (domain.Member, error) {
	return r.memberBy(ctx, "MemberByUUID", sq.Eq{"uuid": id})
}

func (r *PGRepo) memberBy(ctx context.Context, op string, where sq.Eq) (domain.Member, error) {
	q := r.qb().Select("uuid", "email", "password_hash", "username", "role", "created_at").
		From(fmt.Sprintf("%s.members", r.schema)).
		Where(where)

	sqlStr, args, _ := q.ToSql()
	r.logSQL(op, sqlStr, args)

	start := time.Now()
	row := r.pool.QueryRow(ctx, sqlStr, args...)
	var m domain.Member
	if err := row.Scan(&m.UUID, &m.Email, &m.PassHash, &m.Username, &m.Role, &m.CreatedAt); err != nil {
		r.logger.Printf("%s scan error after %s: %v", op, time.Since(start), err)
		return domain.Member{}, mapPGErr(err)
	}
	r.logger.Printf("%s ok in %s uuid=%s", op, time.Since(start), m.UUID)
	return m, nil
}

func (r *PGRepo) UsernameTaken(ctx context.Context, username string) (bool, error) {
	q := r.qb().Select("1").
		From(fmt.Sprintf("%s.members", r.schema)).
		Where(sq.Eq{"username": username}).
		Limit(1)

	sqlStr, args, _ := q.ToSql()
	r.logSQL("UsernameTaken", sqlStr, args)

	var one int
	err := r.pool.QueryRow(ctx, sqlStr, args...).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		r.logger.Printf("UsernameTaken error: %v", err)
		return false, err
	}
	return true, nil
}

func (r *PGRepo) UpdateUsername(ctx context.Context, id domain.MemberID, username string) error {
	return r.updateMember(ctx, "UpdateUsername", id, sq.Eq{"username": username})
}

func (r *PGRepo) UpdatePassword(ctx context.Context, id domain.MemberID, passHash string) error {
	return r.updateMember(ctx, "UpdatePassword", id, sq.Eq{"password_hash": passHash})
}

func (r *PGRepo) updateMember(ctx context.Context, op string, id domain.MemberID, set sq.Eq) error {
	q := r.qb().Update(fmt.Sprintf("%s.members", r.schema)).
		SetMap(map[string]any(set)).
		Where(sq.Eq{"uuid": id})

	sqlStr, args, _ := q.ToSql()
	r.logSQL(op, sqlStr, args)

	start := time.Now()
	tag, err := r.pool.Exec(ctx, sqlStr, args...)
	if err != nil {
		r.logger.Printf("%s exec error after %s: %v", op, time.Since(start), err)
		return mapPGErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.Printf("%s ok in %s uuid=%s", op, time.Since(start), id)
	return nil
}

func (r *PGRepo) DeleteMember(ctx context.Context, id domain.MemberID) error {
	q := r.qb().Delete(fmt.Sprintf("%s.members", r.schema)).
		Where(sq.Eq{"uuid": id})

	sqlStr, args, _ := q.ToSql()
	r.logSQL("DeleteMember", sqlStr, args)

	start := time.Now()
	tag, err := r.pool.Exec(ctx, sqlStr, args...)
	if err != nil {
		r.logger.Printf("DeleteMember exec error after %s: %v", time.Since(start), err)
		return mapPGErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.Printf("DeleteMember ok in %s uuid=%s", time.Since(start), id)
	return nil
}
