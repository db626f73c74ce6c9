package chanstore

import (
	"database/sql"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type AccessEntry struct {
	Channel string `db:"channel"`
	Account string `db:"account"`
	Level   int    `db:"level"`
}

func (s *Store) SetAccess(channel, account string, level int) error {
	if _, err := s.Find(channel); err != nil {
		return err
	}

	_, err := s.db.Exec(`insert into channel_access (channel, account, level) values (?, ?, ?)
		on conflict (channel, account) do update set level = excluded.level;`, channel, account, level)
	return errors.Wrapf(err, "setting access of %s on %s", account, channel)
}

func (s *Store) DelAccess(channel, account string) (bool, error) {
	res, err := s.db.Exec("delete from channel_access where channel = ? and account = ?;", channel, account)
	if err != nil {
		return false, errors.Wrapf(err, "deleting access of %s on %s", account, channel)
	}

	n, err := res.RowsAffected()
	return n > 0, errors.Wrap(err, "rows affected")
}

func (s *Store) AccessList(channel string) ([]AccessEntry, error) {
	entries := make([]AccessEntry, 0)
	err := s.db.Select(&entries, "select channel, account, level from channel_access where channel = ? order by level desc, account;", channel)
	return entries, errors.Wrapf(err, "listing access of %s", channel)
}

//AccessLevel returns the account's level on the channel. Founders get LevelFounder, accounts without an entry get 0
func (s *Store) AccessLevel(ci *Channel, account string) (int, error) {
	if ci.IsFounder(account) {
		return LevelFounder, nil
	}

	level := 0
	err := s.db.Get(&level, "select level from channel_access where channel = ? and account = ?;", ci.Name, account)
	if err == sql.ErrNoRows {
		return 0, nil
	}

	return level, errors.Wrapf(err, "access level of %s on %s", account, ci.Name)
}

func (s *Store) UserPerm(ident string) (int, error) {
	level := 0
	err := s.db.Get(&level, "select perm_level from users where identifier = ?;", ident)
	if err == sql.ErrNoRows {
		return 0, nil
	}

	return level, errors.Wrapf(err, "permission level of %s", ident)
}

func (s *Store) SetUserPerm(ident string, level int) error {
	_, err := s.db.Exec(`insert into users (identifier, perm_level) values (?, ?)
		on conflict (identifier) do update set perm_level = excluded.perm_level;`, ident, level)
	return errors.Wrapf(err, "setting permission level of %s", ident)
}

func (s *Store) IsServicesOper(ident string) bool {
	if ident == "" || s.operLevel <= 0 {
		return false
	}

	level, err := s.UserPerm(ident)
	if err != nil {
		log.WithError(err).WithField("ident", ident).Warn("permission lookup failed")
		return false
	}

	return level >= s.operLevel
}

//CanConfigure reports whether principal may change the settings of ci: founders, services operators
//and access entries at or above the channel's SET level. Lookup failures deny
func (s *Store) CanConfigure(principal string, ci *Channel) bool {
	if ci == nil || principal == "" {
		return false
	}

	if ci.IsFounder(principal) || s.IsServicesOper(principal) {
		return true
	}

	level, err := s.AccessLevel(ci, principal)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{"channel": ci.Name, "principal": principal}).Warn("access lookup failed")
		return false
	}

	return level > 0 && level >= ci.SetLevel
}
