package store

const (
	opHSetAll = "hset-all"
	opHGetAll = "hget-all"
	opDel     = "del"
	opSAdd    = "sadd"
	opSRem    = "srem"
	opZAdd    = "zadd"
	opZRem    = "zrem"
)

type txCmd struct {
	op      string
	key     string
	keys    []string
	fields  map[string]string
	members []string
	score   float64
	member  string
	res     *MapResult
}

// MapResult is the deferred result of a read command queued on a Tx. It is
// populated when Exec runs.
type MapResult struct {
	val map[string]string
	err error
}

func (r *MapResult) Value() map[string]string {
	return r.val
}

func (r *MapResult) Err() error {
	return r.err
}

// Tx queues commands for atomic execution. All queued commands are applied
// as one unit by Exec; reads queued after writes on the same key observe the
// written state. Exec returns the first command error, if any.
type Tx struct {
	cmds []txCmd
	exec func(cmds []txCmd) error
}

func (tx *Tx) HSetAll(key string, fields map[string]string) {
	tx.cmds = append(tx.cmds, txCmd{op: opHSetAll, key: key, fields: fields})
}

func (tx *Tx) HGetAll(key string) *MapResult {
	res := &MapResult{}
	tx.cmds = append(tx.cmds, txCmd{op: opHGetAll, key: key, res: res})
	return res
}

func (tx *Tx) Del(keys ...string) {
	tx.cmds = append(tx.cmds, txCmd{op: opDel, keys: keys})
}

func (tx *Tx) SAdd(key string, members ...string) {
	tx.cmds = append(tx.cmds, txCmd{op: opSAdd, key: key, members: members})
}

func (tx *Tx) SRem(key string, members ...string) {
	tx.cmds = append(tx.cmds, txCmd{op: opSRem, key: key, members: members})
}

func (tx *Tx) ZAdd(key string, score float64, member string) {
	tx.cmds = append(tx.cmds, txCmd{op: opZAdd, key: key, score: score, member: member})
}

func (tx *Tx) ZRem(key string, members ...string) {
	tx.cmds = append(tx.cmds, txCmd{op: opZRem, key: key, members: members})
}

// Observe chains fn into Exec. Adapters use it to watch the outcome without
// owning the execution.
func (tx *Tx) Observe(fn func(err error) error) *Tx {
	inner := tx.exec
	tx.exec = func(cmds []txCmd) error {
		return fn(inner(cmds))
	}
	return tx
}

func (tx *Tx) Exec() error {
	return tx.exec(tx.cmds)
}
