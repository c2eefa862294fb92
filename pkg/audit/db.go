// Package audit provides the modulator's optional persistence layer: a
// sqlite-backed history of remote-control requests and transmission-
// frame-rate samples, written asynchronously off a buffered channel so
// a slow disk never stalls the flowgraph. Adapted from the teacher's
// pkg/database (gorm.Open against the pure-Go modernc.org/sqlite
// driver, no CGO); disabled entirely unless AuditConfig.DBPath names a
// file.
package audit

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dbehnke/dabmod/pkg/logger"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"gorm.io/driver/sqlite"
	_ "modernc.org/sqlite"
)

// DB wraps the GORM connection to the audit sqlite file.
type DB struct {
	db     *gorm.DB
	logger *logger.Logger
}

// Open creates (or opens) the sqlite database at path and migrates its
// two tables: control_events and frame_samples.
func Open(path string, log *logger.Logger) (*DB, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("audit: create directory: %w", err)
		}
	}

	gormLog := gormlogger.New(
		&gormLogAdapter{log: log},
		gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	dialector := sqlite.Dialector{DriverName: "sqlite", DSN: path}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("audit: open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("audit: underlying sql.DB: %w", err)
	}
	if _, err := sqlDB.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("audit: enable WAL: %w", err)
	}
	if _, err := sqlDB.Exec("PRAGMA synchronous=NORMAL"); err != nil {
		return nil, fmt.Errorf("audit: set synchronous mode: %w", err)
	}

	if err := db.AutoMigrate(&ControlEvent{}, &FrameSample{}); err != nil {
		return nil, fmt.Errorf("audit: migrate schema: %w", err)
	}

	log.Info("audit database opened", logger.String("path", path))

	return &DB{db: db, logger: log}, nil
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// GetDB returns the underlying GORM database instance.
func (d *DB) GetDB() *gorm.DB {
	return d.db
}

type gormLogAdapter struct {
	log *logger.Logger
}

func (l *gormLogAdapter) Printf(format string, args ...interface{}) {
	l.log.Info(fmt.Sprintf(format, args...))
}
