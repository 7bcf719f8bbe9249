package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/pocketbase/dbx"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

const snapshotTable = "booking_snapshots"

// SQLStore keeps one row per collection in booking_snapshots. A snapshot is
// written inside a single transaction.
type SQLStore struct {
	db  *dbx.DB
	now func() time.Time
}

// OpenSQLStore opens the database and makes sure the snapshot table exists.
// driver is "sqlite" (modernc) or "mysql".
func OpenSQLStore(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	db, err := dbx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}

	_, err = db.NewQuery(
		"CREATE TABLE IF NOT EXISTS " + snapshotTable + " (" +
			"collection VARCHAR(32) NOT NULL PRIMARY KEY, " +
			"payload LONGTEXT NOT NULL, " +
			"saved_at BIGINT NOT NULL)",
	).WithContext(ctx).Execute()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create %s: %w", snapshotTable, err)
	}

	return &SQLStore{db: db, now: time.Now}, nil
}

func (s *SQLStore) Save(ctx context.Context, snap Snapshot) error {
	savedAt := s.now().Unix()
	err := s.db.TransactionalContext(ctx, nil, func(tx *dbx.Tx) error {
		for _, c := range Collections {
			data, ok := snap[c]
			if !ok {
				continue
			}
			if _, err := tx.Delete(snapshotTable, dbx.HashExp{"collection": string(c)}).
				WithContext(ctx).Execute(); err != nil {
				return fmt.Errorf("save %s: %w", c, err)
			}
			if _, err := tx.Insert(snapshotTable, dbx.Params{
				"collection": string(c),
				"payload":    string(data),
				"saved_at":   savedAt,
			}).WithContext(ctx).Execute(); err != nil {
				return fmt.Errorf("save %s: %w", c, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("sql save snapshot: %w", err)
	}
	return nil
}

func (s *SQLStore) Load(ctx context.Context) (Snapshot, error) {
	var rows []dbx.NullStringMap
	err := s.db.Select("collection", "payload").
		From(snapshotTable).
		WithContext(ctx).
		All(&rows)
	if err != nil {
		return nil, fmt.Errorf("sql load snapshot: %w", err)
	}

	known := make(map[Collection]bool, len(Collections))
	for _, c := range Collections {
		known[c] = true
	}

	snap := make(Snapshot, len(rows))
	for _, row := range rows {
		c := Collection(row["collection"].String)
		if !known[c] || !row["payload"].Valid {
			continue
		}
		snap[c] = []byte(row["payload"].String)
	}
	return snap, nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
