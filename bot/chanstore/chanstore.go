//Package chanstore persists registered channels, their access lists and the
//services-wide user permission levels in SQLite.
package chanstore

import (
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

var (
	ErrNotFound          = errors.New("channel not registered")
	ErrAlreadyRegistered = errors.New("channel already registered")
	ErrInvalidName       = errors.New("channel names start with #")
)

const (
	LevelFounder = 10000
	//access needed to use SET unless a channel lowers it
	DefaultSetLevel = LevelFounder
)

type Flag uint32

const (
	FlagKeepTopic Flag = 1 << iota
	FlagPrivate
	FlagSecure
	FlagPeace
)

const schema = `
create table if not exists channels (
	name        text    not null primary key collate nocase,
	founder     text    not null,
	description text    not null default '',
	url         text    not null default '',
	email       text    not null default '',
	entry_msg   text    not null default '',
	set_level   integer not null default 10000,
	flags       integer not null default 0,
	created_at  text    not null default current_timestamp
);

create table if not exists channel_access (
	channel text    not null collate nocase,
	account text    not null collate nocase,
	level   integer not null,
	primary key (channel, account)
);

create table if not exists users (
	identifier text    not null primary key,
	perm_level integer not null default 0
);
`

type Channel struct {
	Name        string `db:"name"`
	Founder     string `db:"founder"`
	Description string `db:"description"`
	URL         string `db:"url"`
	Email       string `db:"email"`
	EntryMsg    string `db:"entry_msg"`
	SetLevel    int    `db:"set_level"`
	Flags       Flag   `db:"flags"`
	CreatedAt   string `db:"created_at"`
}

func (ci *Channel) HasFlag(flag Flag) bool {
	return ci.Flags&flag != 0
}

func (ci *Channel) IsFounder(account string) bool {
	return account != "" && strings.EqualFold(ci.Founder, account)
}

type Store struct {
	db *sqlx.DB
	//users at or above this level bypass channel access checks
	operLevel int
}

//Open connects to the SQLite database at path (":memory:" works) and creates the schema
func Open(path string, operLevel int) (*Store, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}

	//a single connection keeps :memory: databases alive and serialises writers
	db.SetMaxOpenConns(1)

	store := New(db, operLevel)
	if err := store.Migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func New(db *sqlx.DB, operLevel int) *Store {
	return &Store{db: db, operLevel: operLevel}
}

func (s *Store) Migrate() error {
	_, err := s.db.Exec(schema)
	return errors.Wrap(err, "migrating schema")
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) DB() *sqlx.DB {
	return s.db
}

func (s *Store) Register(name, founder string) (*Channel, error) {
	if !strings.HasPrefix(name, "#") || len(name) < 2 {
		return nil, ErrInvalidName
	}

	if _, err := s.Find(name); err == nil {
		return nil, ErrAlreadyRegistered
	} else if err != ErrNotFound {
		return nil, err
	}

	if _, err := s.db.Exec("insert into channels (name, founder, set_level) values (?, ?, ?);", name, founder, DefaultSetLevel); err != nil {
		return nil, errors.Wrapf(err, "registering %s", name)
	}

	return s.Find(name)
}

func (s *Store) Drop(name string) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return errors.Wrap(err, "beginning drop")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("delete from channel_access where channel = ?;", name); err != nil {
		return errors.Wrapf(err, "dropping access list of %s", name)
	}

	res, err := tx.Exec("delete from channels where name = ?;", name)
	if err != nil {
		return errors.Wrapf(err, "dropping %s", name)
	}

	if err := expectOne(res, name); err != nil {
		return err
	}

	return errors.Wrap(tx.Commit(), "committing drop")
}

//Find looks a channel up case-insensitively
func (s *Store) Find(name string) (*Channel, error) {
	ci := &Channel{}
	err := s.db.Get(ci, "select name, founder, description, url, email, entry_msg, set_level, flags, created_at from channels where name = ?;", name)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, errors.Wrapf(err, "finding %s", name)
	}

	return ci, nil
}

func (s *Store) List() ([]Channel, error) {
	channels := make([]Channel, 0)
	err := s.db.Select(&channels, "select name, founder, description, url, email, entry_msg, set_level, flags, created_at from channels order by name;")
	return channels, errors.Wrap(err, "listing channels")
}

func expectOne(res sql.Result, name string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

//column names come from the setters below, never from user input
func (s *Store) updateColumn(name, column string, value interface{}) error {
	res, err := s.db.Exec("update channels set "+column+" = ? where name = ?;", value, name)
	if err != nil {
		return errors.Wrapf(err, "updating %s of %s", column, name)
	}

	return expectOne(res, name)
}

func (s *Store) SetDescription(name, desc string) error {
	return s.updateColumn(name, "description", desc)
}

func (s *Store) SetURL(name, url string) error {
	return s.updateColumn(name, "url", url)
}

func (s *Store) SetEmail(name, email string) error {
	return s.updateColumn(name, "email", email)
}

func (s *Store) SetEntryMsg(name, msg string) error {
	return s.updateColumn(name, "entry_msg", msg)
}

func (s *Store) SetFounder(name, founder string) error {
	return s.updateColumn(name, "founder", founder)
}

func (s *Store) SetSetLevel(name string, level int) error {
	return s.updateColumn(name, "set_level", level)
}

func (s *Store) SetFlag(name string, flag Flag, on bool) error {
	query := "update channels set flags = flags | ? where name = ?;"
	if !on {
		query = "update channels set flags = flags & ~? where name = ?;"
	}

	res, err := s.db.Exec(query, flag, name)
	if err != nil {
		return errors.Wrapf(err, "updating flags of %s", name)
	}

	return expectOne(res, name)
}
