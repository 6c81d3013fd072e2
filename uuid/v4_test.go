package uuid

import (
	"strings"
	"testing"

	"github.com/mazzegi/keva/testx"
)

func TestMakeV4(t *testing.T) {
	tx := testx.NewTx(t)

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id, err := MakeV4()
		tx.AssertNoErr(err)
		tx.AssertEqual(36, len(id))
		parts := strings.Split(id, "-")
		tx.AssertEqual(5, len(parts))
		tx.AssertEqual("4", parts[2][:1])
		tx.AssertTrue(!seen[id])
		seen[id] = true
	}
}
