package store

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
)

// PostgresStore keeps maps in the t_map table. Thumbnails stay on disk.
type PostgresStore struct {
	db     *sql.DB
	thumbs thumbs
}

func NewPostgresStore(connectionString, thumbsDir string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: ping database: %w", err)
	}

	if thumbsDir == "" {
		thumbsDir = ".thumbs"
	}
	s := &PostgresStore{db: db, thumbs: thumbs{dir: thumbsDir}}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: init schema: %w", err)
	}
	return s, nil
}

func (s *PostgresStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS t_map (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		data TEXT NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS t_map_updated_at ON t_map (updated_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *PostgresStore) Create(name string, data, thumbnail []byte) (int64, error) {
	var id int64
	err := s.db.QueryRow(`INSERT INTO t_map (name, data) VALUES ($1, $2) RETURNING id`, name, string(data)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("store: create %q: %w", name, err)
	}
	s.thumbs.store(id, thumbnail)
	return id, nil
}

func (s *PostgresStore) Update(id int64, name string, data, thumbnail []byte) error {
	res, err := s.db.Exec(`UPDATE t_map SET name = $2, data = $3, updated_at = NOW() WHERE id = $1`, id, name, string(data))
	if err != nil {
		return fmt.Errorf("store: update %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("store: update %d: %w", id, ErrNotFound)
	}
	s.thumbs.store(id, thumbnail)
	return nil
}

func (s *PostgresStore) Get(id int64) (Record, error) {
	var rec Record
	err := s.db.QueryRow(`SELECT id, name, data, created_at, updated_at FROM t_map WHERE id = $1`, id).
		Scan(&rec.ID, &rec.Name, &rec.Data, &rec.Created, &rec.Updated)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("store: get %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return Record{}, fmt.Errorf("store: get %d: %w", id, err)
	}
	return rec, nil
}

func (s *PostgresStore) List() ([]Record, error) {
	rows, err := s.db.Query(`SELECT id, name, data, created_at, updated_at FROM t_map ORDER BY updated_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Data, &rec.Created, &rec.Updated); err != nil {
			return nil, fmt.Errorf("store: list: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Delete(id int64) error {
	res, err := s.db.Exec(`DELETE FROM t_map WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("store: delete %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("store: delete %d: %w", id, ErrNotFound)
	}
	return s.thumbs.remove(id)
}

func (s *PostgresStore) DeleteAll() error {
	if _, err := s.db.Exec(`DELETE FROM t_map`); err != nil {
		return fmt.Errorf("store: delete all: %w", err)
	}
	return s.thumbs.removeAll()
}

func (s *PostgresStore) Thumbnail(id int64) ([]byte, error) {
	return s.thumbs.read(id)
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
