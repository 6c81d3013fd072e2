package store

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mazzegi/log"

	"github.com/mazzegi/keva/fsx"
	"github.com/mazzegi/keva/maps"
	"github.com/mazzegi/keva/slicesx"
	"github.com/mazzegi/keva/sqlitex"
	"github.com/mazzegi/keva/sqlx"
)

var _ Store = (*SqliteStore)(nil)

const sqlite_v1_init = `
CREATE TABLE IF NOT EXISTS hashes (
	k      TEXT,
	field  TEXT,
	value  TEXT,
	PRIMARY KEY (k, field)
);

CREATE TABLE IF NOT EXISTS sets (
	k      TEXT,
	member TEXT,
	PRIMARY KEY (k, member)
);

CREATE TABLE IF NOT EXISTS zsets (
	k      TEXT,
	member TEXT,
	score  REAL,
	PRIMARY KEY (k, member)
);
`

// SqliteStore keeps hashes, sets and sorted sets in three tables of a single
// sqlite file, writes through the WAL writer connection and reads through
// the reader pool.
type SqliteStore struct {
	*log.Hook
	db *sqlitex.DB
}

func NewSqliteStore(file string) (*SqliteStore, error) {
	if dir := filepath.Dir(file); !fsx.ExistsDir(dir) {
		return nil, fmt.Errorf("directory %q does not exist", dir)
	}
	db, err := sqlitex.NewDB(file)
	if err != nil {
		return nil, fmt.Errorf("sqlitex.newdb at %q: %w", file, err)
	}
	_, err = db.Exec(sqlite_v1_init)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("exec-init: %w", err)
	}
	s := &SqliteStore{
		Hook: log.ComponentHook("sqlite-store"),
		db:   db,
	}
	s.Debugf("open %q", file)
	return s, nil
}

func (s *SqliteStore) Close() error {
	s.db.Close()
	return nil
}

// sqlRunner is satisfied by both the sqlitex DB and *sql.Tx, so every
// statement helper serves the direct ops and the multi transaction alike.
type sqlRunner interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
}

func (s *SqliteStore) HSetAll(key string, fields map[string]string) error {
	return sqlx.Transact(s.db, func(tx *sql.Tx) error {
		return s.hsetAll(tx, key, fields)
	})
}

func (s *SqliteStore) hsetAll(r sqlRunner, key string, fields map[string]string) error {
	for _, f := range maps.OrderedKeys(fields) {
		_, err := r.Exec("INSERT OR REPLACE INTO hashes (k, field, value) VALUES(?,?,?);", key, f, fields[f])
		if err != nil {
			return fmt.Errorf("exec insert hash %q field %q: %w", key, f, err)
		}
	}
	return nil
}

func (s *SqliteStore) HGetAll(key string) (map[string]string, error) {
	return s.hgetAll(s.db, key)
}

type hashRow struct {
	Field string `sql:"field"`
	Value string `sql:"value"`
}

func (s *SqliteStore) hgetAll(r sqlRunner, key string) (map[string]string, error) {
	rows, err := r.Query("SELECT field, value FROM hashes WHERE k = ?;", key)
	if err != nil {
		return nil, fmt.Errorf("query hash %q: %w", key, err)
	}
	defer rows.Close()
	sc, err := sqlx.NewScanner(rows, nil)
	if err != nil {
		return nil, fmt.Errorf("new-scanner: %w", err)
	}
	fields := map[string]string{}
	for sc.Next() {
		hr, err := sqlx.Scan[hashRow](sc)
		if err != nil {
			return nil, fmt.Errorf("scan hash row: %w", err)
		}
		fields[hr.Field] = hr.Value
	}
	return fields, nil
}

func (s *SqliteStore) Del(keys ...string) error {
	return sqlx.Transact(s.db, func(tx *sql.Tx) error {
		return s.del(tx, keys)
	})
}

func (s *SqliteStore) del(r sqlRunner, keys []string) error {
	for _, chunk := range slicesx.Chunks(keys, 500) {
		in := placeholders(len(chunk))
		args := slicesx.Anys(chunk)
		for _, table := range []string{"hashes", "sets", "zsets"} {
			_, err := r.Exec(fmt.Sprintf("DELETE FROM %s WHERE k IN (%s);", table, in), args...)
			if err != nil {
				return fmt.Errorf("exec delete from %s: %w", table, err)
			}
		}
	}
	return nil
}

func placeholders(n int) string {
	return strings.Join(slicesx.Repeat("?", n), ",")
}

func (s *SqliteStore) SAdd(key string, members ...string) error {
	return sqlx.Transact(s.db, func(tx *sql.Tx) error {
		return s.sadd(tx, key, members)
	})
}

func (s *SqliteStore) sadd(r sqlRunner, key string, members []string) error {
	for _, m := range members {
		_, err := r.Exec("INSERT OR IGNORE INTO sets (k, member) VALUES(?,?);", key, m)
		if err != nil {
			return fmt.Errorf("exec insert set %q member %q: %w", key, m, err)
		}
	}
	return nil
}

func (s *SqliteStore) SRem(key string, members ...string) error {
	return sqlx.Transact(s.db, func(tx *sql.Tx) error {
		return s.srem(tx, key, members)
	})
}

func (s *SqliteStore) srem(r sqlRunner, key string, members []string) error {
	for _, chunk := range slicesx.Chunks(members, 500) {
		args := append([]any{key}, slicesx.Anys(chunk)...)
		_, err := r.Exec(fmt.Sprintf("DELETE FROM sets WHERE k = ? AND member IN (%s);", placeholders(len(chunk))), args...)
		if err != nil {
			return fmt.Errorf("exec delete set members: %w", err)
		}
	}
	return nil
}

func (s *SqliteStore) ZAdd(key string, score float64, member string) (int, error) {
	var added int
	err := sqlx.Transact(s.db, func(tx *sql.Tx) error {
		var err error
		added, err = s.zadd(tx, key, score, member)
		return err
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}

func (s *SqliteStore) zadd(r sqlRunner, key string, score float64, member string) (int, error) {
	rows, err := r.Query("SELECT COUNT(*) FROM zsets WHERE k = ? AND member = ?;", key, member)
	if err != nil {
		return 0, fmt.Errorf("query zset member: %w", err)
	}
	var count int
	if rows.Next() {
		err = rows.Scan(&count)
	}
	rows.Close()
	if err != nil {
		return 0, fmt.Errorf("scan zset member count: %w", err)
	}
	_, err = r.Exec("INSERT OR REPLACE INTO zsets (k, member, score) VALUES(?,?,?);", key, member, score)
	if err != nil {
		return 0, fmt.Errorf("exec insert zset %q member %q: %w", key, member, err)
	}
	if count > 0 {
		return 0, nil
	}
	return 1, nil
}

func (s *SqliteStore) ZRem(key string, members ...string) (int, error) {
	var removed int
	err := sqlx.Transact(s.db, func(tx *sql.Tx) error {
		var err error
		removed, err = s.zrem(tx, key, members)
		return err
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

func (s *SqliteStore) zrem(r sqlRunner, key string, members []string) (int, error) {
	var removed int
	for _, chunk := range slicesx.Chunks(members, 500) {
		args := append([]any{key}, slicesx.Anys(chunk)...)
		res, err := r.Exec(fmt.Sprintf("DELETE FROM zsets WHERE k = ? AND member IN (%s);", placeholders(len(chunk))), args...)
		if err != nil {
			return 0, fmt.Errorf("exec delete zset members: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("rows-affected: %w", err)
		}
		removed += int(n)
	}
	return removed, nil
}

func (s *SqliteStore) ZRange(key string, start, stop int) ([]string, error) {
	return s.zrange(s.db, key, start, stop, false)
}

func (s *SqliteStore) ZRevRange(key string, start, stop int) ([]string, error) {
	return s.zrange(s.db, key, start, stop, true)
}

type memberRow struct {
	Member string `sql:"member"`
}

func (s *SqliteStore) zrange(r sqlRunner, key string, start, stop int, rev bool) ([]string, error) {
	dir := "ASC"
	if rev {
		dir = "DESC"
	}
	rows, err := r.Query(fmt.Sprintf("SELECT member FROM zsets WHERE k = ? ORDER BY score %s, member %s;", dir, dir), key)
	if err != nil {
		return nil, fmt.Errorf("query zset %q: %w", key, err)
	}
	members, err := scanMembers(rows)
	if err != nil {
		return nil, err
	}
	lo, hi, ok := rangeWindow(len(members), start, stop)
	if !ok {
		return nil, nil
	}
	return members[lo : hi+1], nil
}

func scanMembers(rows *sql.Rows) ([]string, error) {
	defer rows.Close()
	sc, err := sqlx.NewScanner(rows, nil)
	if err != nil {
		return nil, fmt.Errorf("new-scanner: %w", err)
	}
	var members []string
	for sc.Next() {
		mr, err := sqlx.Scan[memberRow](sc)
		if err != nil {
			return nil, fmt.Errorf("scan member row: %w", err)
		}
		members = append(members, mr.Member)
	}
	return members, nil
}

func (s *SqliteStore) Sort(key string, spec SortSpec) ([]string, error) {
	return s.sortSet(s.db, key, spec)
}

func (s *SqliteStore) sortSet(r sqlRunner, key string, spec SortSpec) ([]string, error) {
	dir := "ASC"
	if spec.Desc {
		dir = "DESC"
	}
	limit := spec.Limit
	if limit <= 0 {
		limit = -1
	}
	offset := spec.Offset
	if offset < 0 {
		offset = 0
	}

	var q string
	var args []any
	switch {
	case spec.NoSort:
		q = "SELECT member FROM sets WHERE k = ? ORDER BY member ASC LIMIT ? OFFSET ?;"
		args = []any{key, limit, offset}
	case spec.By == "":
		weight := "CAST(member AS REAL)"
		if spec.Alpha {
			weight = "member"
		}
		q = fmt.Sprintf("SELECT member FROM sets WHERE k = ? ORDER BY %s %s, member %s LIMIT ? OFFSET ?;", weight, dir, dir)
		args = []any{key, limit, offset}
	default:
		bp, err := parseByPattern(spec.By)
		if err != nil {
			return nil, err
		}
		weight := "CAST(COALESCE(h.value,'0') AS REAL)"
		if spec.Alpha {
			weight = "COALESCE(h.value,'')"
		}
		q = fmt.Sprintf(
			"SELECT s.member AS member FROM sets s LEFT JOIN hashes h ON h.k = ? || s.member || ? AND h.field = ? WHERE s.k = ? ORDER BY %s %s, s.member %s LIMIT ? OFFSET ?;",
			weight, dir, dir,
		)
		args = []any{bp.prefix, bp.suffix, bp.field, key, limit, offset}
	}

	rows, err := r.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("query sort %q: %w", key, err)
	}
	return scanMembers(rows)
}

func (s *SqliteStore) Multi() *Tx {
	return &Tx{exec: s.execTx}
}

func (s *SqliteStore) execTx(cmds []txCmd) error {
	return sqlx.Transact(s.db, func(tx *sql.Tx) error {
		for _, cmd := range cmds {
			var err error
			switch cmd.op {
			case opHSetAll:
				err = s.hsetAll(tx, cmd.key, cmd.fields)
			case opHGetAll:
				cmd.res.val, cmd.res.err = s.hgetAll(tx, cmd.key)
				err = cmd.res.err
			case opDel:
				err = s.del(tx, cmd.keys)
			case opSAdd:
				err = s.sadd(tx, cmd.key, cmd.members)
			case opSRem:
				err = s.srem(tx, cmd.key, cmd.members)
			case opZAdd:
				_, err = s.zadd(tx, cmd.key, cmd.score, cmd.member)
			case opZRem:
				_, err = s.zrem(tx, cmd.key, cmd.members)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}
