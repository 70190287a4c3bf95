package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pixelgrove/metaverse/internal/types"
)

func TestAffinityAdjust(t *testing.T) {
	t.Run("creates pair on first touch", func(t *testing.T) {
		reg := newTestRegistry(t)
		ledger := reg.Affinity()

		score, err := ledger.Adjust(DefaultRoomId, "npc1", "p1", 5)
		assert.NoError(t, err)
		assert.Equal(t, 5, score)
	})

	t.Run("deltas are additive and order independent", func(t *testing.T) {
		reg := newTestRegistry(t)
		ledger := reg.Affinity()

		_, err := ledger.Adjust(DefaultRoomId, "npc1", "p1", 5)
		assert.NoError(t, err)
		score, err := ledger.Adjust(DefaultRoomId, "npc1", "p1", 3)
		assert.NoError(t, err)
		assert.Equal(t, 8, score)

		// reverse order yields the same total
		_, err = ledger.Adjust(DefaultRoomId, "npc2", "p1", 3)
		assert.NoError(t, err)
		score, err = ledger.Adjust(DefaultRoomId, "npc2", "p1", 5)
		assert.NoError(t, err)
		assert.Equal(t, 8, score)
	})

	t.Run("scores can go arbitrarily negative", func(t *testing.T) {
		reg := newTestRegistry(t)
		ledger := reg.Affinity()

		var score int
		var err error
		for i := 0; i < 10; i++ {
			score, err = ledger.Adjust(DefaultRoomId, "npc1", "p1", -20)
			assert.NoError(t, err)
		}
		assert.Equal(t, -200, score, "expected no floor on affinity scores")
	})

	t.Run("unknown room", func(t *testing.T) {
		reg := newTestRegistry(t)

		_, err := reg.Affinity().Adjust("nope", "npc1", "p1", 5)
		assert.ErrorIs(t, err, ErrRoomNotFound)
	})
}

func TestAffinityGet(t *testing.T) {
	reg := newTestRegistry(t)
	ledger := reg.Affinity()

	assert.Equal(t, 0, ledger.Get(DefaultRoomId, "npc1", "p1"), "expected unestablished pair to score zero")
	assert.Equal(t, 0, ledger.Get("nope", "npc1", "p1"), "expected unknown room to score zero")

	_, err := ledger.Adjust(DefaultRoomId, "npc1", "p1", 10)
	assert.NoError(t, err)
	assert.Equal(t, 10, ledger.Get(DefaultRoomId, "npc1", "p1"))
}

func TestAffinityRoomIsolation(t *testing.T) {
	reg := newTestRegistry(t)
	ledger := reg.Affinity()

	_, err := reg.CreateRoom("other", "Other", 5)
	assert.NoError(t, err)

	_, err = ledger.Adjust(DefaultRoomId, "npc1", "p1", 5)
	assert.NoError(t, err)

	assert.Equal(t, 0, ledger.Get("other", "npc1", "p1"), "expected affinity recorded in one room to not leak into another")
}

func TestAffinityAllForRoom(t *testing.T) {
	reg := newTestRegistry(t)
	ledger := reg.Affinity()

	_, err := ledger.Adjust(DefaultRoomId, "npc1", "p1", 5)
	assert.NoError(t, err)
	_, err = ledger.Adjust(DefaultRoomId, "npc1", "p2", -20)
	assert.NoError(t, err)

	all := ledger.AllForRoom(DefaultRoomId)
	assert.Equal(t, types.AffinityMap{
		"npc1": {"p1": 5, "p2": -20},
	}, all)

	t.Run("returns a deep copy", func(t *testing.T) {
		all["npc1"]["p1"] = 999
		assert.Equal(t, 5, ledger.Get(DefaultRoomId, "npc1", "p1"), "expected mutation of snapshot to not affect ledger")
	})

	t.Run("unknown room yields empty map", func(t *testing.T) {
		assert.Empty(t, ledger.AllForRoom("nope"))
	})
}
