package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const currentSchemaVersion = 1

// SQLiteStore implements Backend using a SQLite database.
// Places are kept as JSON documents keyed by ID so both backends share one model.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens (and migrates) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// A single connection keeps ":memory:" databases coherent.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying %q: %w", pragma, err)
		}
	}

	s := &SQLiteStore{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	return s, nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.path
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	var version int
	if err := s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		version = 0
	}
	if version >= currentSchemaVersion {
		return nil
	}

	schema := `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS places (
			id TEXT PRIMARY KEY NOT NULL,
			name TEXT NOT NULL,
			data TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS favorites (
			id TEXT PRIMARY KEY NOT NULL,
			name TEXT NOT NULL,
			data TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS searches (
			key TEXT PRIMARY KEY NOT NULL,
			data TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_favorites_name ON favorites(name);

		INSERT OR REPLACE INTO schema_version (version) VALUES (1);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) SaveFavorite(place *Place) error {
	fav := place.Clone()
	fav.IsFavorite = true
	fav.UpdatedAt = time.Now()
	data, err := json.Marshal(fav)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		"INSERT OR REPLACE INTO favorites (id, name, data, updated_at) VALUES (?, ?, ?, ?)",
		fav.ID, fav.Name, string(data), fav.UpdatedAt.Format(time.RFC3339),
	)
	return err
}

func (s *SQLiteStore) DeleteFavorite(id string) error {
	_, err := s.db.Exec("DELETE FROM favorites WHERE id = ?", id)
	return err
}

func (s *SQLiteStore) IsFavorite(id string) (bool, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM favorites WHERE id = ?", id).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *SQLiteStore) GetFavorites() ([]*Place, error) {
	favorites, err := s.queryPlaces("SELECT data FROM favorites")
	if err != nil {
		return nil, err
	}
	sortByName(favorites)
	return favorites, nil
}

func (s *SQLiteStore) SavePlaces(places []*Place) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.Prepare("INSERT OR REPLACE INTO places (id, name, data) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, place := range places {
		data, err := json.Marshal(place)
		if err != nil {
			return err
		}
		if _, err := stmt.Exec(place.ID, place.Name, string(data)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) GetPlace(id string) (*Place, error) {
	var data string
	err := s.db.QueryRow("SELECT data FROM places WHERE id = ?", id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		err = s.db.QueryRow("SELECT data FROM favorites WHERE id = ?", id).Scan(&data)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("place %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	var place Place
	if err := json.Unmarshal([]byte(data), &place); err != nil {
		return nil, err
	}
	return &place, nil
}

func (s *SQLiteStore) GetAllPlaces() ([]*Place, error) {
	places, err := s.queryPlaces("SELECT data FROM places")
	if err != nil {
		return nil, err
	}
	sortByName(places)
	return places, nil
}

func (s *SQLiteStore) SaveSearch(meta *SearchMetadata) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	_, err = s.db.Exec("INSERT OR REPLACE INTO searches (key, data) VALUES (?, ?)",
		string(searchKey(meta.Phrase, meta.Near)), string(data))
	return err
}

func (s *SQLiteStore) GetSearch(phrase, near string) (*SearchMetadata, error) {
	var data string
	err := s.db.QueryRow("SELECT data FROM searches WHERE key = ?", string(searchKey(phrase, near))).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("search %q: %w", strings.TrimSpace(phrase), ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	var meta SearchMetadata
	if err := json.Unmarshal([]byte(data), &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *SQLiteStore) queryPlaces(query string, args ...any) ([]*Place, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	places := []*Place{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var place Place
		if err := json.Unmarshal([]byte(data), &place); err != nil {
			continue
		}
		places = append(places, &place)
	}
	return places, rows.Err()
}
