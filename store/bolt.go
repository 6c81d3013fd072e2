package store

import (
	"encoding/binary"
	"fmt"
	"math"
	"path/filepath"

	"go.etcd.io/bbolt"

	"github.com/mazzegi/keva/fsx"
)

var _ Store = (*BoltStore)(nil)

var (
	bucketHash = []byte("hash")
	bucketSet  = []byte("set")
	bucketZSet = []byte("zset")
	bucketZIdx = []byte("zidx")
)

// BoltStore is a single-file backend on bbolt. Each logical key owns a
// nested bucket under one of the top-level buckets. Sorted-set entries are
// keyed by the order-preserving score encoding followed by the member, so a
// cursor walks them in (score, member) order; "zidx" holds the member to
// encoded-score reverse mapping for rescoring and removal.
type BoltStore struct {
	db *bbolt.DB
}

func NewBoltStore(file string) (*BoltStore, error) {
	if dir := filepath.Dir(file); !fsx.ExistsDir(dir) {
		return nil, fmt.Errorf("directory %q does not exist", dir)
	}
	db, err := bbolt.Open(file, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("bolt-open %q: %w", file, err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketHash, bucketSet, bucketZSet, bucketZIdx} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("create bucket %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

// encodeScore makes float64 scores lexicographically sortable as big-endian
// bytes: flip the sign bit of non-negatives, all bits of negatives.
func encodeScore(score float64) []byte {
	bits := math.Float64bits(score)
	if bits&(1<<63) == 0 {
		bits |= 1 << 63
	} else {
		bits = ^bits
	}
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, bits)
	return b
}

// zkey is the 8 encoded score bytes followed by the member.
func zkey(enc []byte, member string) []byte {
	k := make([]byte, 0, 8+len(member))
	k = append(k, enc...)
	k = append(k, member...)
	return k
}

func zkeyMember(k []byte) string {
	return string(k[8:])
}

func (s *BoltStore) HSetAll(key string, fields map[string]string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return hsetAllIn(tx, key, fields)
	})
}

func hsetAllIn(tx *bbolt.Tx, key string, fields map[string]string) error {
	b, err := tx.Bucket(bucketHash).CreateBucketIfNotExists([]byte(key))
	if err != nil {
		return fmt.Errorf("create hash %q: %w", key, err)
	}
	for f, v := range fields {
		if err := b.Put([]byte(f), []byte(v)); err != nil {
			return fmt.Errorf("put hash %q field %q: %w", key, f, err)
		}
	}
	return nil
}

func (s *BoltStore) HGetAll(key string) (map[string]string, error) {
	fields := map[string]string{}
	err := s.db.View(func(tx *bbolt.Tx) error {
		fields = hgetAllIn(tx, key)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return fields, nil
}

func hgetAllIn(tx *bbolt.Tx, key string) map[string]string {
	fields := map[string]string{}
	b := tx.Bucket(bucketHash).Bucket([]byte(key))
	if b == nil {
		return fields
	}
	b.ForEach(func(k, v []byte) error {
		fields[string(k)] = string(v)
		return nil
	})
	return fields
}

func (s *BoltStore) Del(keys ...string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return delIn(tx, keys)
	})
}

func delIn(tx *bbolt.Tx, keys []string) error {
	for _, key := range keys {
		for _, top := range [][]byte{bucketHash, bucketSet, bucketZSet, bucketZIdx} {
			tb := tx.Bucket(top)
			if tb.Bucket([]byte(key)) == nil {
				continue
			}
			if err := tb.DeleteBucket([]byte(key)); err != nil {
				return fmt.Errorf("delete %q: %w", key, err)
			}
		}
	}
	return nil
}

func (s *BoltStore) SAdd(key string, members ...string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return saddIn(tx, key, members)
	})
}

func saddIn(tx *bbolt.Tx, key string, members []string) error {
	b, err := tx.Bucket(bucketSet).CreateBucketIfNotExists([]byte(key))
	if err != nil {
		return fmt.Errorf("create set %q: %w", key, err)
	}
	for _, m := range members {
		if err := b.Put([]byte(m), nil); err != nil {
			return fmt.Errorf("put set %q member %q: %w", key, m, err)
		}
	}
	return nil
}

func (s *BoltStore) SRem(key string, members ...string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return sremIn(tx, key, members)
	})
}

func sremIn(tx *bbolt.Tx, key string, members []string) error {
	b := tx.Bucket(bucketSet).Bucket([]byte(key))
	if b == nil {
		return nil
	}
	for _, m := range members {
		if err := b.Delete([]byte(m)); err != nil {
			return fmt.Errorf("delete set %q member %q: %w", key, m, err)
		}
	}
	return nil
}

func (s *BoltStore) ZAdd(key string, score float64, member string) (int, error) {
	var added int
	err := s.db.Update(func(tx *bbolt.Tx) error {
		var err error
		added, err = zaddIn(tx, key, score, member)
		return err
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}

func zaddIn(tx *bbolt.Tx, key string, score float64, member string) (int, error) {
	zb, err := tx.Bucket(bucketZSet).CreateBucketIfNotExists([]byte(key))
	if err != nil {
		return 0, fmt.Errorf("create zset %q: %w", key, err)
	}
	ib, err := tx.Bucket(bucketZIdx).CreateBucketIfNotExists([]byte(key))
	if err != nil {
		return 0, fmt.Errorf("create zidx %q: %w", key, err)
	}
	enc := encodeScore(score)
	added := 1
	if old := ib.Get([]byte(member)); old != nil {
		added = 0
		if err := zb.Delete(zkey(old, member)); err != nil {
			return 0, fmt.Errorf("delete old zset entry %q: %w", member, err)
		}
	}
	if err := ib.Put([]byte(member), enc); err != nil {
		return 0, fmt.Errorf("put zidx %q: %w", member, err)
	}
	if err := zb.Put(zkey(enc, member), nil); err != nil {
		return 0, fmt.Errorf("put zset %q: %w", member, err)
	}
	return added, nil
}

func (s *BoltStore) ZRem(key string, members ...string) (int, error) {
	var removed int
	err := s.db.Update(func(tx *bbolt.Tx) error {
		var err error
		removed, err = zremIn(tx, key, members)
		return err
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

func zremIn(tx *bbolt.Tx, key string, members []string) (int, error) {
	zb := tx.Bucket(bucketZSet).Bucket([]byte(key))
	ib := tx.Bucket(bucketZIdx).Bucket([]byte(key))
	if zb == nil || ib == nil {
		return 0, nil
	}
	var removed int
	for _, m := range members {
		old := ib.Get([]byte(m))
		if old == nil {
			continue
		}
		if err := zb.Delete(zkey(old, m)); err != nil {
			return 0, fmt.Errorf("delete zset entry %q: %w", m, err)
		}
		if err := ib.Delete([]byte(m)); err != nil {
			return 0, fmt.Errorf("delete zidx entry %q: %w", m, err)
		}
		removed++
	}
	return removed, nil
}

func (s *BoltStore) ZRange(key string, start, stop int) ([]string, error) {
	return s.zrangeDB(key, start, stop, false)
}

func (s *BoltStore) ZRevRange(key string, start, stop int) ([]string, error) {
	return s.zrangeDB(key, start, stop, true)
}

func (s *BoltStore) zrangeDB(key string, start, stop int, rev bool) ([]string, error) {
	var members []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		zb := tx.Bucket(bucketZSet).Bucket([]byte(key))
		if zb == nil {
			return nil
		}
		c := zb.Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			members = append(members, zkeyMember(k))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if rev {
		for i, j := 0, len(members)-1; i < j; i, j = i+1, j-1 {
			members[i], members[j] = members[j], members[i]
		}
	}
	lo, hi, ok := rangeWindow(len(members), start, stop)
	if !ok {
		return nil, nil
	}
	return members[lo : hi+1], nil
}

func (s *BoltStore) Sort(key string, spec SortSpec) ([]string, error) {
	var page []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		sb := tx.Bucket(bucketSet).Bucket([]byte(key))
		if sb == nil {
			return nil
		}
		var members []string
		sb.ForEach(func(k, _ []byte) error {
			members = append(members, string(k))
			return nil
		})
		weightOf := func(member string) string { return member }
		if !spec.NoSort && spec.By != "" {
			bp, err := parseByPattern(spec.By)
			if err != nil {
				return err
			}
			hashTop := tx.Bucket(bucketHash)
			weightOf = func(member string) string {
				hb := hashTop.Bucket([]byte(bp.key(member)))
				if hb == nil {
					return ""
				}
				return string(hb.Get([]byte(bp.field)))
			}
		}
		page = sortedPage(members, weightOf, spec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

func (s *BoltStore) Multi() *Tx {
	return &Tx{exec: s.execTx}
}

func (s *BoltStore) execTx(cmds []txCmd) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, cmd := range cmds {
			var err error
			switch cmd.op {
			case opHSetAll:
				err = hsetAllIn(tx, cmd.key, cmd.fields)
			case opHGetAll:
				cmd.res.val = hgetAllIn(tx, cmd.key)
			case opDel:
				err = delIn(tx, cmd.keys)
			case opSAdd:
				err = saddIn(tx, cmd.key, cmd.members)
			case opSRem:
				err = sremIn(tx, cmd.key, cmd.members)
			case opZAdd:
				_, err = zaddIn(tx, cmd.key, cmd.score, cmd.member)
			case opZRem:
				_, err = zremIn(tx, cmd.key, cmd.members)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}
