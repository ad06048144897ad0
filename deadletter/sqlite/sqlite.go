package sqlite

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jirevwe/liteworker/deadletter"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/multierr"
)

const (
	// rfc3339Milli is like time.RFC3339Nano, but with millisecond precision
	rfc3339Milli = "2006-01-02T15:04:05.000Z07:00"
)

var createDeadLetters = `create table if not exists dead_letters (
		id TEXT not null primary key,
		worker TEXT not null,
		payload BLOB,
		error TEXT not null,
		failed_at TEXT not null,
		created_at TEXT not null default (strftime('%Y-%m-%dT%H:%M:%fZ'))
	) strict;`

var createDeadLettersWorkerIndex = `create index if not exists idx_dead_letters_worker on dead_letters (worker);`

type row struct {
	Id       string `db:"id"`
	Worker   string `db:"worker"`
	Payload  []byte `db:"payload"`
	Error    string `db:"error"`
	FailedAt string `db:"failed_at"`
}

func (r row) letter() deadletter.Letter {
	failedAt, err := time.Parse(rfc3339Milli, r.FailedAt)
	if err != nil {
		failedAt = time.Time{}
	}

	return deadletter.Letter{
		Id:       r.Id,
		Worker:   r.Worker,
		Payload:  r.Payload,
		Error:    r.Error,
		FailedAt: failedAt,
	}
}

// Sqlite is a deadletter.Store backed by a sqlite database file.
type Sqlite struct {
	logger *slog.Logger
	db     *sqlx.DB
}

var _ deadletter.Store = (*Sqlite)(nil)

func NewSqlite(dbPath string, logger *slog.Logger) (*Sqlite, error) {
	db, err := sqlx.Open("sqlite3", fmt.Sprintf("%s?cache=shared&mode=rwc&_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", dbPath))
	if err != nil {
		return nil, err
	}

	// sqlite allows a single writer, serialise at the pool
	db.SetMaxOpenConns(1)

	s := &Sqlite{db: db, logger: logger}

	ctx := context.Background()
	err = s.inTx(ctx, func(tx *sqlx.Tx) error {
		if _, innerErr := tx.ExecContext(ctx, createDeadLetters); innerErr != nil {
			return innerErr
		}

		if _, innerErr := tx.ExecContext(ctx, createDeadLettersWorkerIndex); innerErr != nil {
			return innerErr
		}

		return nil
	})
	if err != nil {
		return nil, multierr.Append(err, db.Close())
	}

	return s, nil
}

// Record writes a letter to the store
func (s *Sqlite) Record(ctx context.Context, letter *deadletter.Letter) error {
	if letter == nil {
		return nil
	}

	r := row{
		Id:       letter.Id,
		Worker:   letter.Worker,
		Payload:  letter.Payload,
		Error:    letter.Error,
		FailedAt: letter.FailedAt.UTC().Format(rfc3339Milli),
	}

	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		_, innerErr := tx.NamedExecContext(ctx, `insert into dead_letters (id, worker, payload, error, failed_at) values (:id, :worker, :payload, :error, :failed_at)`, r)
		if innerErr != nil {
			return innerErr
		}

		if s.logger != nil {
			s.logger.Debug("recorded dead letter", "id", letter.Id, "worker", letter.Worker)
		}

		return nil
	})
}

// List returns recorded letters newest first. An empty worker lists every worker's letters.
func (s *Sqlite) List(ctx context.Context, worker string) ([]deadletter.Letter, error) {
	var rows []row

	var err error
	if worker == "" {
		err = s.db.SelectContext(ctx, &rows, `select id, worker, payload, error, failed_at from dead_letters order by id desc`)
	} else {
		err = s.db.SelectContext(ctx, &rows, `select id, worker, payload, error, failed_at from dead_letters where worker = $1 order by id desc`, worker)
	}
	if err != nil {
		return nil, err
	}

	letters := make([]deadletter.Letter, 0, len(rows))
	for _, r := range rows {
		letters = append(letters, r.letter())
	}

	return letters, nil
}

// Count returns the number of recorded letters
func (s *Sqlite) Count(ctx context.Context) (n int, err error) {
	err = s.db.GetContext(ctx, &n, `select count(*) from dead_letters`)
	return n, err
}

// Truncate removes every recorded letter
func (s *Sqlite) Truncate(ctx context.Context) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		_, innerErr := tx.ExecContext(ctx, `delete from dead_letters`)
		return innerErr
	})
}

func (s *Sqlite) Close() error {
	return s.db.Close()
}

func (s *Sqlite) inTx(ctx context.Context, cb func(*sqlx.Tx) error) (err error) {
	tx, beginErr := s.db.BeginTxx(ctx, nil)
	if beginErr != nil {
		return fmt.Errorf("cannot start tx: %w", beginErr)
	}

	defer func() {
		if rec := recover(); rec != nil {
			err = rollback(tx, nil)
			panic(rec)
		}
	}()

	if err = cb(tx); err != nil {
		return rollback(tx, err)
	}

	if commitErr := tx.Commit(); commitErr != nil {
		return fmt.Errorf("cannot commit tx: %w", commitErr)
	}

	return nil
}

func rollback(tx *sqlx.Tx, err error) error {
	if rollbackErr := tx.Rollback(); rollbackErr != nil {
		return multierr.Append(err, fmt.Errorf("cannot roll back tx: %w", rollbackErr))
	}
	return err
}
