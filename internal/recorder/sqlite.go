package recorder

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SqliteBackend persists session telemetry to a local SQLite file.
type SqliteBackend struct {
	path    string
	db      *gorm.DB
	session *Session
}

// NewSqliteBackend creates a backend writing to the given file path.
func NewSqliteBackend(path string) *SqliteBackend {
	return &SqliteBackend{path: path}
}

// Init opens the database and migrates the schema.
func (b *SqliteBackend) Init() error {
	db, err := gorm.Open(sqlite.Open(b.path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("opening sqlite db: %w", err)
	}
	err = db.AutoMigrate(
		&Session{},
		&StateTransition{},
		&SceneEvent{},
		&RuntimeEvent{},
		&FrameTiming{},
	)
	if err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}
	b.db = db
	return nil
}

// Close releases the underlying connection.
func (b *SqliteBackend) Close() error {
	if b.db == nil {
		return nil
	}
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (b *SqliteBackend) StartSession(s *Session) error {
	if err := b.db.Create(s).Error; err != nil {
		return err
	}
	b.session = s
	return nil
}

func (b *SqliteBackend) EndSession(at time.Time) error {
	if b.session == nil {
		return nil
	}
	return b.db.Model(b.session).Update("end_time", at).Error
}

func (b *SqliteBackend) RecordStateTransition(t *StateTransition) error {
	return b.db.Create(t).Error
}

func (b *SqliteBackend) RecordSceneEvent(e *SceneEvent) error {
	return b.db.Create(e).Error
}

func (b *SqliteBackend) RecordRuntimeEvent(e *RuntimeEvent) error {
	return b.db.Create(e).Error
}

func (b *SqliteBackend) RecordFrameTimings(batch []FrameTiming) error {
	if len(batch) == 0 {
		return nil
	}
	return b.db.Create(&batch).Error
}
