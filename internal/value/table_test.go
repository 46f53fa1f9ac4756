package value

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTableSetGet(t *testing.T) {
	tbl := NewTable()
	k := Number(1)
	tbl.Set(k, Number(42))
	v, ok := tbl.Get(k)
	require.True(t, ok)
	require.Equal(t, 42.0, v.AsNumber())
}

func TestTableSetReturnsIsNew(t *testing.T) {
	tbl := NewTable()
	k := Number(1)
	require.True(t, tbl.Set(k, Number(1)))
	require.False(t, tbl.Set(k, Number(2)))
	v, _ := tbl.Get(k)
	require.Equal(t, 2.0, v.AsNumber())
}

// TestTableTombstoneProbing exercises the comment in table.go: a deleted
// entry (key = Empty, active = false, used = true) must not stop probing
// for a later key that collided into the same bucket chain.
func TestTableTombstoneProbing(t *testing.T) {
	tbl := NewTable()
	// Force a tiny table so collisions are easy to create deterministically:
	// insert enough keys to trigger a couple of growths, then delete one and
	// confirm every surviving key is still reachable.
	keys := make([]Value, 0, 20)
	for i := 0; i < 20; i++ {
		k := Number(float64(i))
		keys = append(keys, k)
		tbl.Set(k, Number(float64(i*10)))
	}

	require.True(t, tbl.Delete(keys[5]))
	_, ok := tbl.Get(keys[5])
	require.False(t, ok)

	for i, k := range keys {
		if i == 5 {
			continue
		}
		v, ok := tbl.Get(k)
		require.True(t, ok, "key %d should still be reachable after deleting key 5", i)
		require.Equal(t, float64(i*10), v.AsNumber())
	}
}

func TestTableDeleteMissingKeyReturnsFalse(t *testing.T) {
	tbl := NewTable()
	require.False(t, tbl.Delete(Number(1)))
}

func TestTableUnhashableKeyRejected(t *testing.T) {
	tbl := NewTable()
	list := FromObj(NewList(nil))
	require.False(t, tbl.Set(list, Number(1)))
	require.Equal(t, 0, tbl.Count())
}

func TestTableKeysCountsLiveEntriesOnly(t *testing.T) {
	tbl := NewTable()
	tbl.Set(Number(1), Number(1))
	tbl.Set(Number(2), Number(2))
	tbl.Delete(Number(1))
	require.Equal(t, 1, tbl.Count())
	require.Len(t, tbl.Keys(), 1)
}

func TestTableEachVisitsOnlyActiveEntries(t *testing.T) {
	tbl := NewTable()
	tbl.Set(Number(1), Number(10))
	tbl.Set(Number(2), Number(20))
	tbl.Delete(Number(1))

	seen := map[float64]float64{}
	tbl.Each(func(k, v Value) {
		seen[k.AsNumber()] = v.AsNumber()
	})
	require.Equal(t, map[float64]float64{2: 20}, seen)
}
