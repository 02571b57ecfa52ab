// Package storage provides the raw event sources consumed by the bucket engine.
//
// Store keeps cameras and detection events in SQLite and answers date-range
// fetches in the [camera][day] shape the engine expects. FileSource serves a
// JSON dump in the same shape. Both implement Source.
package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/tanat44/SmartCam/internal/bucket"
	"github.com/tanat44/SmartCam/internal/logger"
	"github.com/tanat44/SmartCam/internal/models"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var (
	// ErrNoData is returned when a source has nothing to report.
	ErrNoData = errors.New("no detection data")
	// ErrSourceUnavailable is returned when a source cannot be read.
	ErrSourceUnavailable = errors.New("detection source unavailable")
)

// Source supplies raw events for an inclusive range of calendar days.
// The result is indexed [camera][day] and every camera has the same day count.
type Source interface {
	Fetch(ctx context.Context, start, end time.Time) (models.RawEvents, error)
}

// Store is a SQLite-backed detection store
type Store struct {
	db  *sql.DB
	loc *time.Location
}

// New opens (or creates) the database at path and applies pending migrations.
// loc is the zone calendar days are cut in; nil means time.Local.
func New(path string, loc *time.Location) (*Store, error) {
	if loc == nil {
		loc = time.Local
	}

	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if path == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &Store{db: db, loc: loc}
	if err := s.migrateUp(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// connPragmas are applied by the driver to every new pool connection.
var connPragmas = []string{"foreign_keys(1)", "busy_timeout(5000)"}

// dsn appends connPragmas to path as _pragma query parameters.
func dsn(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	params := make([]string, len(connPragmas))
	for i, p := range connPragmas {
		params[i] = "_pragma=" + p
	}
	return path + sep + strings.Join(params, "&")
}

// migrateUp applies the embedded schema migrations.
func (s *Store) migrateUp() error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(s.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to create sqlite driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	m.Log = migrateLogger{}
	// m is not closed: closing it would close the shared *sql.DB.

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

type migrateLogger struct{}

func (migrateLogger) Printf(format string, v ...interface{}) {
	logger.Debug("[migrate] "+format, v...)
}

func (migrateLogger) Verbose() bool {
	return false
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Location returns the zone calendar days are cut in.
func (s *Store) Location() *time.Location {
	return s.loc
}

// AddCamera registers a camera at the next free position. Registering an existing
// name returns the stored camera unchanged.
func (s *Store) AddCamera(ctx context.Context, name string) (*models.Camera, error) {
	cam := &models.Camera{Name: name, CreatedAt: time.Now()}
	if err := cam.Validate(); err != nil {
		return nil, fmt.Errorf("invalid camera: %w", err)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cameras (name, position, created_at)
		VALUES (?, (SELECT COUNT(*) FROM cameras), ?)
		ON CONFLICT(name) DO NOTHING`,
		name, cam.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert camera: %w", err)
	}
	return s.camera(ctx, name)
}

func (s *Store) camera(ctx context.Context, name string) (*models.Camera, error) {
	var cam models.Camera
	var createdMs int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, position, created_at FROM cameras WHERE name = ?`, name,
	).Scan(&cam.ID, &cam.Name, &cam.Position, &createdMs)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("camera not found: %s", name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query camera: %w", err)
	}
	cam.CreatedAt = time.UnixMilli(createdMs)
	return &cam, nil
}

// Cameras returns all registered cameras ordered by position
func (s *Store) Cameras(ctx context.Context) ([]models.Camera, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, position, created_at FROM cameras ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query cameras: %w", err)
	}
	defer rows.Close()

	var cams []models.Camera
	for rows.Next() {
		var cam models.Camera
		var createdMs int64
		if err := rows.Scan(&cam.ID, &cam.Name, &cam.Position, &createdMs); err != nil {
			return nil, fmt.Errorf("failed to scan camera: %w", err)
		}
		cam.CreatedAt = time.UnixMilli(createdMs)
		cams = append(cams, cam)
	}
	return cams, rows.Err()
}

// AddDetection stores one detection. A missing ID is filled with a new UUID.
func (s *Store) AddDetection(ctx context.Context, d *models.Detection) error {
	_, err := s.AddDetections(ctx, []models.Detection{*d})
	return err
}

// AddDetections stores detections in one transaction and returns how many were written.
// The batch is rejected as a whole if any detection is invalid or names an unknown camera.
func (s *Store) AddDetections(ctx context.Context, ds []models.Detection) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO detections (id, camera_id, label, detected_at_ms)
		SELECT ?, id, ?, ? FROM cameras WHERE name = ?`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := range ds {
		d := ds[i]
		if d.ID == "" {
			d.ID = uuid.New().String()
		}
		if err := d.Validate(); err != nil {
			return 0, fmt.Errorf("invalid detection %d: %w", i, err)
		}
		res, err := stmt.ExecContext(ctx, d.ID, d.Label, d.DetectedAt.UnixMilli(), d.Camera)
		if err != nil {
			return 0, fmt.Errorf("failed to insert detection %s: %w", d.ID, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return 0, fmt.Errorf("camera not found: %s", d.Camera)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit detections: %w", err)
	}
	return len(ds), nil
}

// Prune deletes detections older than before and returns how many were removed.
func (s *Store) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM detections WHERE detected_at_ms < ?`, before.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to prune detections: %w", err)
	}
	return res.RowsAffected()
}

// dayStart truncates t to midnight in loc.
func dayStart(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// daysBetween counts whole calendar days from a to b, both midnights in the same zone.
func daysBetween(a, b time.Time) int {
	return int(math.Round(b.Sub(a).Hours() / 24))
}

// Fetch returns every registered camera's detections for each calendar day in
// [start, end], ordered by time. Event times are RFC3339 in the store's location.
func (s *Store) Fetch(ctx context.Context, start, end time.Time) (models.RawEvents, error) {
	first := dayStart(start, s.loc)
	last := dayStart(end, s.loc)
	if last.Before(first) {
		return nil, fmt.Errorf("end %s before start %s", last.Format(time.DateOnly), first.Format(time.DateOnly))
	}
	days := daysBetween(first, last) + 1
	stop := last.AddDate(0, 0, 1)

	cams, err := s.Cameras(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	if len(cams) == 0 {
		return nil, ErrNoData
	}

	index := make(map[int64]int, len(cams))
	raw := make(models.RawEvents, len(cams))
	for i, cam := range cams {
		index[cam.ID] = i
		raw[i] = make([][]models.RawDetection, days)
		for d := range raw[i] {
			raw[i][d] = []models.RawDetection{}
		}
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT camera_id, label, detected_at_ms FROM detections
		WHERE detected_at_ms >= ? AND detected_at_ms < ?
		ORDER BY detected_at_ms, id`,
		first.UnixMilli(), stop.UnixMilli(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query detections: %w", ErrSourceUnavailable, err)
	}
	defer rows.Close()

	total := 0
	for rows.Next() {
		var camID, ms int64
		var label string
		if err := rows.Scan(&camID, &label, &ms); err != nil {
			return nil, fmt.Errorf("%w: failed to scan detection: %w", ErrSourceUnavailable, err)
		}
		t := time.UnixMilli(ms).In(s.loc)
		day := daysBetween(first, dayStart(t, s.loc))
		raw[index[camID]][day] = append(raw[index[camID]][day], models.RawDetection{
			Time:  t.Format(time.RFC3339),
			Label: label,
		})
		total++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}

	logger.Debug("Fetch: %d cameras, %d days (%s..%s), %d detections",
		len(cams), days, first.Format(time.DateOnly), last.Format(time.DateOnly), total)
	return raw, nil
}

// Import stores a raw [camera][day] dump. Camera i is registered as "Camera i+1".
// Events whose time cannot be parsed are skipped and counted. Empty labels are kept.
func (s *Store) Import(ctx context.Context, raw models.RawEvents) (imported, skipped int, err error) {
	var batch []models.Detection
	for c, perDay := range raw {
		name := fmt.Sprintf("Camera %d", c+1)
		if _, err := s.AddCamera(ctx, name); err != nil {
			return 0, 0, err
		}
		for _, events := range perDay {
			for _, ev := range events {
				t, err := bucket.ParseTime(ev.Time, s.loc)
				if err != nil {
					skipped++
					continue
				}
				batch = append(batch, models.Detection{Camera: name, Label: ev.Label, DetectedAt: t})
			}
		}
	}

	imported, err = s.AddDetections(ctx, batch)
	if err != nil {
		return 0, skipped, err
	}
	return imported, skipped, nil
}
