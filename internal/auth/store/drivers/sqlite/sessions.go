package sqlite

import (
	"context"
	"time"

	"github.com/loomandthread/storefront/internal/auth/domain"
	"github.com/loomandthread/storefront/internal/auth/store"
)

type sessionsRepo struct {
	q querier
}

func (r *sessionsRepo) CreateSession(ctx context.Context, s domain.Session) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO sessions (id, owner_id, access_key, refresh_key, used_tokens, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 1, ?, ?)
		ON CONFLICT(owner_id) DO UPDATE SET
			id          = excluded.id,
			access_key  = excluded.access_key,
			refresh_key = excluded.refresh_key,
			used_tokens = '',
			version     = 1,
			created_at  = excluded.created_at,
			updated_at  = excluded.updated_at`,
		s.ID, s.OwnerID, s.AccessKey, s.RefreshKey,
		joinTokens(s.UsedRefreshTokens), s.CreatedAt, s.UpdatedAt,
	)
	return err
}

func (r *sessionsRepo) GetSessionByOwner(ctx context.Context, ownerID string) (domain.Session, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT id, owner_id, access_key, refresh_key, used_tokens, version, created_at, updated_at
		FROM sessions
		WHERE owner_id = ?`,
		ownerID,
	)

	var (
		s          domain.Session
		usedTokens string
	)
	err := row.Scan(&s.ID, &s.OwnerID, &s.AccessKey, &s.RefreshKey,
		&usedTokens, &s.Version, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return domain.Session{}, mapNotFound(err)
	}

	s.UsedRefreshTokens = splitTokens(usedTokens)
	return s, nil
}

// RotateSession spends one refresh token and installs fresh keys in a single
// UPDATE conditioned on the version the caller observed. Zero rows affected
// means either the record is gone or a concurrent rotation won the race.
func (r *sessionsRepo) RotateSession(ctx context.Context, p store.RotateParams) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE sessions
		SET access_key  = ?,
			refresh_key = ?,
			used_tokens = TRIM(used_tokens || ' ' || ?),
			version     = version + 1,
			updated_at  = ?
		WHERE owner_id = ? AND version = ?`,
		p.AccessKey, p.RefreshKey, p.ConsumedFingerprint,
		time.Now().UTC(), p.OwnerID, p.Version,
	)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	// Distinguish a deleted session from a lost race.
	var exists int
	err = r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sessions WHERE owner_id = ?`, p.OwnerID,
	).Scan(&exists)
	if err != nil {
		return err
	}
	if exists == 0 {
		return store.ErrNotFound
	}
	return store.ErrStaleVersion
}

// DeleteSession is idempotent: deleting an already-deleted session is fine,
// both logout retries and the reuse compromise response rely on that.
func (r *sessionsRepo) DeleteSession(ctx context.Context, ownerID string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM sessions WHERE owner_id = ?`, ownerID)
	return err
}

func (r *sessionsRepo) DeleteIdleSessions(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM sessions WHERE updated_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
