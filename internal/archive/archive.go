// Package archive provides append-only SQLite persistence for generated
// alerts, so they can be reviewed after the session. The engine never
// reads this back; restart delivery stays best-effort.
package archive

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/osintwatch/vigil/internal/alert"
	"github.com/osintwatch/vigil/internal/model"
)

// Archive handles SQLite persistence. NOT an interface - concrete type.
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type Archive struct {
	db *sql.DB
	mu sync.Mutex
}

// Open creates an Archive at the given database path, creating the
// schema if needed. Pass ":memory:" for tests.
func Open(dbPath string) (*Archive, error) {
	connStr := dbPath
	if dbPath == ":memory:" {
		// Shared cache so the whole pool sees the same database.
		connStr = "file::memory:?cache=shared"
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	a := &Archive{db: db}
	if err := a.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return a, nil
}

func (a *Archive) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS alerts (
		id          TEXT PRIMARY KEY,
		title       TEXT NOT NULL,
		description TEXT,
		severity    TEXT NOT NULL,
		source      TEXT NOT NULL,
		url         TEXT,
		latitude    REAL,
		longitude   REAL,
		created_at  DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_alerts_created ON alerts(created_at);
	`
	if _, err := a.db.Exec(schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Record appends one alert.
func (a *Archive) Record(al alert.Alert) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var lat, lon sql.NullFloat64
	if al.Coordinates != nil {
		lat = sql.NullFloat64{Float64: al.Coordinates.Latitude, Valid: true}
		lon = sql.NullFloat64{Float64: al.Coordinates.Longitude, Valid: true}
	}

	_, err := a.db.Exec(`
		INSERT OR IGNORE INTO alerts
			(id, title, description, severity, source, url, latitude, longitude, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		al.ID, al.Title, al.Description, string(al.Severity), string(al.Source),
		al.URL, lat, lon, al.Timestamp.UTC())
	if err != nil {
		return fmt.Errorf("record alert: %w", err)
	}
	return nil
}

// Push makes the archive usable as a notify sink.
func (a *Archive) Push(al alert.Alert) error {
	return a.Record(al)
}

// Recent returns up to n archived alerts, newest first.
func (a *Archive) Recent(n int) ([]alert.Alert, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	rows, err := a.db.Query(`
		SELECT id, title, description, severity, source, url, latitude, longitude, created_at
		FROM alerts
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query alerts: %w", err)
	}
	defer rows.Close()

	var out []alert.Alert
	for rows.Next() {
		var al alert.Alert
		var severity, source string
		var lat, lon sql.NullFloat64
		var created time.Time
		if err := rows.Scan(&al.ID, &al.Title, &al.Description, &severity, &source,
			&al.URL, &lat, &lon, &created); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		al.Severity = alert.Severity(severity)
		al.Source = alert.Source(source)
		al.Timestamp = created
		if lat.Valid && lon.Valid {
			al.Coordinates = &model.Coordinates{Latitude: lat.Float64, Longitude: lon.Float64}
		}
		out = append(out, al)
	}
	return out, rows.Err()
}

// Count returns the number of archived alerts.
func (a *Archive) Count() (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var n int
	if err := a.db.QueryRow(`SELECT COUNT(*) FROM alerts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count alerts: %w", err)
	}
	return n, nil
}

// Close closes the database.
func (a *Archive) Close() error {
	return a.db.Close()
}
