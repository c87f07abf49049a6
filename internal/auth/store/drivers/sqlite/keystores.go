package sqlite

import (
	"context"
	"time"

	"github.com/sableforge/gatekeeper/internal/auth/domain"
	"github.com/sableforge/gatekeeper/internal/auth/store"
)

type keystoresRepo struct {
	db dbtx
}

const keystoreColumns = `id, user_id, primary_key, secondary_key, status, created_at, updated_at`

func (r *keystoresRepo) CreateKeystore(ctx context.Context, k domain.Keystore) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO keystores (id, user_id, primary_key, secondary_key, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		k.ID, k.UserID, k.PrimaryKey, k.SecondaryKey, k.Status, now, now)
	return mapConstraint(err)
}

func (r *keystoresRepo) GetKeystoreForPrimary(
	ctx context.Context,
	userID, primaryKey string,
) (domain.Keystore, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+keystoreColumns+` FROM keystores
		 WHERE user_id = ? AND primary_key = ? AND status = 1`,
		userID, primaryKey)
	return scanKeystore(row)
}

func (r *keystoresRepo) GetKeystore(
	ctx context.Context,
	userID, primaryKey, secondaryKey string,
) (domain.Keystore, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+keystoreColumns+` FROM keystores
		 WHERE user_id = ? AND primary_key = ? AND secondary_key = ? AND status = 1`,
		userID, primaryKey, secondaryKey)
	return scanKeystore(row)
}

// DeleteKeystore removes a single session row. Reporting ErrNotFound when
// nothing was deleted is load-bearing: a replayed refresh loses the race
// here.
func (r *keystoresRepo) DeleteKeystore(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM keystores WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *keystoresRepo) DeleteAllForUser(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM keystores WHERE user_id = ?`, userID)
	return err
}

func (r *keystoresRepo) DeleteIdleSince(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM keystores WHERE updated_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanKeystore(row rowScanner) (domain.Keystore, error) {
	var k domain.Keystore
	if err := row.Scan(
		&k.ID, &k.UserID, &k.PrimaryKey, &k.SecondaryKey, &k.Status, &k.CreatedAt, &k.UpdatedAt,
	); err != nil {
		return domain.Keystore{}, mapNotFound(err)
	}
	return k, nil
}
