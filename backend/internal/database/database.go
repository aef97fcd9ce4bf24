package database

import (
	"errors"
	"fmt"
	"github.com/upper/db/v4"
	"github.com/upper/db/v4/adapter/sqlite"
	"path/filepath"
	"sync/atomic"
	"vincit.fi/photo-frame/common/logger"
	"vincit.fi/photo-frame/common/util"
)

const (
	PhotoTable         = "photos"
	CategoryTable      = "categories"
	CategoryPhotoTable = "categories_photos"
)

type table struct {
	name  string
	query string
}

var tables = []table{
	{
		name: PhotoTable,
		query: `
			CREATE TABLE photos (
			    id INTEGER PRIMARY KEY AUTOINCREMENT,
			    img_path TEXT,
			    img_width INTEGER,
			    img_height INTEGER,
			    date_added TEXT,
			    date_last_displayed TEXT,
			    times_displayed INTEGER,
			    disabled TEXT,
			    title TEXT,
			    subtitle TEXT,
			    score INTEGER
			)
		`,
	},
	{
		name: CategoryTable,
		query: `
			CREATE TABLE categories (
			    id INTEGER PRIMARY KEY AUTOINCREMENT,
			    tag TEXT UNIQUE
			)
		`,
	},
	{
		name: CategoryPhotoTable,
		query: `
			CREATE TABLE categories_photos (
			    category_id INTEGER,
			    photo_id INTEGER,

			    CONSTRAINT fk_category_id FOREIGN KEY (category_id) REFERENCES categories(id),
			    CONSTRAINT fk_photo_id FOREIGN KEY (photo_id) REFERENCES photos(id)
			)
		`,
	},
}

var inMemoryCounter atomic.Int64

var ErrClosed = errors.New("database is closed")

type Database struct {
	session db.Session
	dbPath  string
}

func NewDatabase() *Database {
	return &Database{}
}

// NewInMemoryDatabase opens a private in-memory database. Each call gets its
// own database.
func NewInMemoryDatabase() (*Database, error) {
	name := fmt.Sprintf("photo-frame-memory-%d.db", inMemoryCounter.Add(1))
	logger.Info.Printf("Initializing in-memory database %s", name)
	var settings = sqlite.ConnectionURL{
		Database: name,
		Options: map[string]string{
			"mode":  "memory",
			"cache": "shared",
		},
	}

	session, err := sqlite.Open(settings)
	if err != nil {
		return nil, err
	}
	session.SetMaxOpenConns(1)

	return &Database{session: session, dbPath: name}, nil
}

// Open opens or creates the database file, creating its parent directories
// when needed.
func (s *Database) Open(file string) error {
	directory := filepath.Dir(file)
	if err := util.MakeDirectoriesIfNotExist(directory, directory); err != nil {
		return err
	}

	s.dbPath = file
	logger.Info.Printf("Initializing database %s", s.dbPath)
	var settings = sqlite.ConnectionURL{
		Database: s.dbPath,
	}

	session, err := sqlite.Open(settings)
	if err != nil {
		return err
	}
	// All writes go through one connection so that the
	// service lock is the only serialization point.
	session.SetMaxOpenConns(1)
	s.session = session

	var version map[string]interface{}
	if err := s.session.SQL().Select(db.Func("sqlite_version")).One(&version); err == nil {
		logger.Info.Printf("Database initialized. Using SQLite version %s", version["sqlite_version()"])
	}

	return nil
}

func (s *Database) Path() string {
	return s.dbPath
}

func (s *Database) Session() db.Session {
	return s.session
}

// Setup creates the tables that don't exist yet and returns the names of
// the created ones. Existing tables and their rows are left untouched.
func (s *Database) Setup() ([]string, error) {
	if s.session == nil {
		return nil, ErrClosed
	}
	logger.Info.Printf("Checking tables")
	var created []string
	err := s.session.Tx(func(session db.Session) error {
		for _, t := range tables {
			exists, err := tableExists(session, t.name)
			if err != nil {
				return err
			}
			if exists {
				logger.Warn.Printf("Table %s already exists", t.name)
				continue
			}

			logger.Info.Printf("Creating table: %s", t.name)
			if _, err := session.SQL().Exec(t.query); err != nil {
				return fmt.Errorf("could not create table %s: %w", t.name, err)
			}
			created = append(created, t.name)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info.Printf("Completed table creation, created: %v", created)
	return created, nil
}

func (s *Database) TableNames() ([]string, error) {
	if s.session == nil {
		return nil, ErrClosed
	}
	var names []struct {
		Name string `db:"name"`
	}
	err := s.session.SQL().
		Select("name").
		From("sqlite_master").
		Where("type = ? AND name NOT LIKE ?", "table", "sqlite_%").
		OrderBy("name").
		All(&names)
	if err != nil {
		return nil, err
	}

	result := make([]string, len(names))
	for i, name := range names {
		result[i] = name.Name
	}
	return result, nil
}

func (s *Database) IsClosed() bool {
	return s.session == nil
}

func (s *Database) DoInTransaction(fn func(session db.Session) error) error {
	if s.session == nil {
		return ErrClosed
	}
	return s.session.Tx(fn)
}

func (s *Database) Close() error {
	logger.Info.Printf("Closing database %s", s.dbPath)
	if s.session == nil {
		logger.Warn.Printf("No database instance to close")
		return nil
	}
	err := s.session.Close()
	s.session = nil
	return err
}

func tableExists(session db.Session, name string) (bool, error) {
	row, err := session.SQL().QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name)
	if err != nil {
		return false, err
	}
	count := 0
	if err := row.Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}
