package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"memescout/internal/model"
)

// ErrUnknownAccount marks a snapshot write for an account that was never
// upserted. It signals a broken write ordering and is never swallowed.
var ErrUnknownAccount = errors.New("snapshot for unknown account")

// Store persists account profiles (latest wins) and engagement snapshots
// (append-only) in SQLite.
type Store struct{ sql *sql.DB }

func Open(path string) (*Store, error) {
	d, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Single writer; also keeps :memory: databases on one connection.
	d.SetMaxOpenConns(1)
	if _, err := d.Exec(`PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;`); err != nil {
		return nil, err
	}
	s := &Store{sql: d}
	if err := s.migrate(); err != nil {
		_ = d.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.sql.Close() }

func (s *Store) migrate() error {
	_, err := s.sql.Exec(`
	CREATE TABLE IF NOT EXISTS accounts (
	  account_id TEXT PRIMARY KEY,
	  handle TEXT,
	  bio TEXT,
	  follower_count INTEGER,
	  following_count INTEGER,
	  first_seen_at INTEGER NOT NULL,
	  last_updated_at INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS snapshots (
	  snapshot_id INTEGER PRIMARY KEY AUTOINCREMENT,
	  account_id TEXT NOT NULL,
	  captured_at INTEGER NOT NULL,
	  posts_analyzed INTEGER NOT NULL,
	  avg_likes REAL NOT NULL,
	  avg_reposts REAL NOT NULL,
	  avg_replies REAL NOT NULL,
	  avg_quotes REAL NOT NULL,
	  total_engagement INTEGER NOT NULL,
	  engagement_rate REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_snapshots_account_at ON snapshots(account_id, captured_at);
	`)
	return err
}

// UpsertAccount inserts the profile on first sight and overwrites the mutable
// fields afterwards. first_seen_at is set once and never touched again.
func (s *Store) UpsertAccount(ctx context.Context, a model.Account, now time.Time) error {
	_, err := s.sql.ExecContext(ctx, `
	INSERT INTO accounts(account_id, handle, bio, follower_count, following_count, first_seen_at, last_updated_at)
	VALUES(?,?,?,?,?,?,?)
	ON CONFLICT(account_id) DO UPDATE SET
	  handle=excluded.handle,
	  bio=excluded.bio,
	  follower_count=excluded.follower_count,
	  following_count=excluded.following_count,
	  last_updated_at=excluded.last_updated_at`,
		a.ID, a.Handle, a.Bio, a.FollowersCount, a.FollowingCount, now.Unix(), now.Unix())
	return err
}

// AppendSnapshot inserts a new engagement row for the account. The account
// must already exist; the check and the insert run in one transaction.
func (s *Store) AppendSnapshot(ctx context.Context, accountID string, sum model.EngagementSummary, capturedAt time.Time) error {
	tx, err := s.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if err := appendSnapshotTx(ctx, tx, accountID, sum, capturedAt); err != nil {
		return err
	}
	return tx.Commit()
}

func appendSnapshotTx(ctx context.Context, tx *sql.Tx, accountID string, sum model.EngagementSummary, capturedAt time.Time) error {
	var one int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM accounts WHERE account_id=?`, accountID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrUnknownAccount, accountID)
	}
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
	INSERT INTO snapshots(account_id, captured_at, posts_analyzed, avg_likes, avg_reposts, avg_replies, avg_quotes, total_engagement, engagement_rate)
	VALUES(?,?,?,?,?,?,?,?,?)`,
		accountID, capturedAt.Unix(), sum.PostsAnalyzed, sum.AvgLikes, sum.AvgReposts, sum.AvgReplies, sum.AvgQuotes, sum.TotalEngagement, sum.EngagementRate)
	return err
}

// StoreBatch persists ranked results: per account an upsert plus a snapshot
// in one transaction, so a failure never leaves a half-written account.
// A failing account does not block the rest; all failures are joined into
// the returned error.
func (s *Store) StoreBatch(ctx context.Context, results []model.AccountResult, capturedAt time.Time) error {
	var errs []error
	for _, r := range results {
		if err := s.storeOne(ctx, r, capturedAt); err != nil {
			errs = append(errs, fmt.Errorf("account %s: %w", r.Account.ID, err))
		}
	}
	return errors.Join(errs...)
}

func (s *Store) storeOne(ctx context.Context, r model.AccountResult, capturedAt time.Time) error {
	tx, err := s.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	_, err = tx.ExecContext(ctx, `
	INSERT INTO accounts(account_id, handle, bio, follower_count, following_count, first_seen_at, last_updated_at)
	VALUES(?,?,?,?,?,?,?)
	ON CONFLICT(account_id) DO UPDATE SET
	  handle=excluded.handle,
	  bio=excluded.bio,
	  follower_count=excluded.follower_count,
	  following_count=excluded.following_count,
	  last_updated_at=excluded.last_updated_at`,
		r.Account.ID, r.Account.Handle, r.Account.Bio, r.Account.FollowersCount, r.Account.FollowingCount, capturedAt.Unix(), capturedAt.Unix())
	if err != nil {
		return err
	}
	if err := appendSnapshotTx(ctx, tx, r.Account.ID, r.Summary, capturedAt); err != nil {
		return err
	}
	return tx.Commit()
}

// GetAccount returns the stored profile for an account id.
func (s *Store) GetAccount(ctx context.Context, accountID string) (model.Account, error) {
	var a model.Account
	var firstSeen, lastUpdated int64
	err := s.sql.QueryRowContext(ctx, `
	SELECT account_id, handle, bio, follower_count, following_count, first_seen_at, last_updated_at
	FROM accounts WHERE account_id=?`, accountID).
		Scan(&a.ID, &a.Handle, &a.Bio, &a.FollowersCount, &a.FollowingCount, &firstSeen, &lastUpdated)
	if errors.Is(err, sql.ErrNoRows) {
		return a, fmt.Errorf("%w: %s", ErrUnknownAccount, accountID)
	}
	if err != nil {
		return a, err
	}
	a.FirstSeenAt = time.Unix(firstSeen, 0).UTC()
	a.LastUpdatedAt = time.Unix(lastUpdated, 0).UTC()
	return a, nil
}

// TopAccount is one row of the latest-per-account ranking.
type TopAccount struct {
	AccountID       string
	Handle          string
	FollowersCount  int
	EngagementRate  float64
	TotalEngagement int
	CapturedAt      time.Time
}

// TopN ranks accounts by the engagement rate of their most recent snapshot.
// Ties break by total engagement descending, then account id ascending.
func (s *Store) TopN(ctx context.Context, n int) ([]TopAccount, error) {
	rows, err := s.sql.QueryContext(ctx, `
	SELECT a.account_id, a.handle, a.follower_count, sn.engagement_rate, sn.total_engagement, sn.captured_at
	FROM accounts a
	JOIN (
	  SELECT account_id, MAX(snapshot_id) AS sid
	  FROM snapshots s1
	  WHERE captured_at = (SELECT MAX(captured_at) FROM snapshots s2 WHERE s2.account_id = s1.account_id)
	  GROUP BY account_id
	) latest ON a.account_id = latest.account_id
	JOIN snapshots sn ON sn.snapshot_id = latest.sid
	ORDER BY sn.engagement_rate DESC, sn.total_engagement DESC, a.account_id ASC
	LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []TopAccount
	for rows.Next() {
		var t TopAccount
		var at int64
		if err := rows.Scan(&t.AccountID, &t.Handle, &t.FollowersCount, &t.EngagementRate, &t.TotalEngagement, &at); err != nil {
			return nil, err
		}
		t.CapturedAt = time.Unix(at, 0).UTC()
		out = append(out, t)
	}
	return out, rows.Err()
}

// Snapshot is one stored engagement row.
type Snapshot struct {
	ID         int64
	AccountID  string
	CapturedAt time.Time
	Summary    model.EngagementSummary
}

// History returns all snapshots for the account, most recent first.
// An unknown account yields an empty slice, not an error.
func (s *Store) History(ctx context.Context, accountID string) ([]Snapshot, error) {
	rows, err := s.sql.QueryContext(ctx, `
	SELECT snapshot_id, account_id, captured_at, posts_analyzed, avg_likes, avg_reposts, avg_replies, avg_quotes, total_engagement, engagement_rate
	FROM snapshots WHERE account_id=? ORDER BY captured_at DESC, snapshot_id DESC`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Snapshot
	for rows.Next() {
		var sn Snapshot
		var at int64
		if err := rows.Scan(&sn.ID, &sn.AccountID, &at,
			&sn.Summary.PostsAnalyzed, &sn.Summary.AvgLikes, &sn.Summary.AvgReposts, &sn.Summary.AvgReplies,
			&sn.Summary.AvgQuotes, &sn.Summary.TotalEngagement, &sn.Summary.EngagementRate); err != nil {
			return nil, err
		}
		sn.CapturedAt = time.Unix(at, 0).UTC()
		out = append(out, sn)
	}
	return out, rows.Err()
}
