package model

import (
	"fmt"

	"github.com/mazzegi/keva/codec"
)

// applyIndexes runs on every settled save. It keeps the namespace set and
// the per-field index sets in line with the record's current values, using
// the raw previous fields to retract outdated memberships. Empty values are
// not indexed; their value segment would vanish from the key.
func (c *Collection) applyIndexes(chg Change) {
	id := chg.Record.ID()
	if err := c.st.SAdd(c.keys.Namespace(c.name), id); err != nil {
		c.emitError("apply-index", fmt.Errorf("sadd namespace: %w", err))
	}
	for _, field := range c.indexes {
		oldVal, hadOld := chg.Prev[field]
		var newVal string
		if cur := chg.Record.Get(field); cur != nil {
			var err error
			newVal, err = codec.EncodeValue(cur)
			if err != nil {
				c.emitError("apply-index", fmt.Errorf("encode %q: %w", field, err))
				continue
			}
		}
		if hadOld && oldVal != "" && oldVal != newVal {
			if err := c.st.SRem(c.keys.Index(c.name, field, oldVal), id); err != nil {
				c.emitError("apply-index", fmt.Errorf("srem %s=%q: %w", field, oldVal, err))
			}
		}
		if newVal != "" {
			if err := c.st.SAdd(c.keys.Index(c.name, field, newVal), id); err != nil {
				c.emitError("apply-index", fmt.Errorf("sadd %s=%q: %w", field, newVal, err))
			}
		}
	}
}

// retractIndexes runs on every destroy and removes the id from the namespace
// set and from all index sets matching the record's in-memory values.
func (c *Collection) retractIndexes(r *Record) {
	id := r.ID()
	if err := c.st.SRem(c.keys.Namespace(c.name), id); err != nil {
		c.emitError("retract-index", fmt.Errorf("srem namespace: %w", err))
	}
	for _, field := range c.indexes {
		cur := r.Get(field)
		if cur == nil {
			continue
		}
		val, err := codec.EncodeValue(cur)
		if err != nil {
			c.emitError("retract-index", fmt.Errorf("encode %q: %w", field, err))
			continue
		}
		if val == "" {
			continue
		}
		if err := c.st.SRem(c.keys.Index(c.name, field, val), id); err != nil {
			c.emitError("retract-index", fmt.Errorf("srem %s=%q: %w", field, val, err))
		}
	}
}
