package projectile_test

import (
	"testing"

	"github.com/annel0/arrow-physics/internal/projectile"
	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestEffectivePierceLevel(t *testing.T) {
	assert.Equal(t, 0, projectile.EffectivePierceLevel(-3))
	assert.Equal(t, 0, projectile.EffectivePierceLevel(0))
	assert.Equal(t, 4, projectile.EffectivePierceLevel(4))
	assert.Equal(t, 127, projectile.EffectivePierceLevel(127))
	assert.Equal(t, 0, projectile.EffectivePierceLevel(128), "уровень выше 127 отключает пробивание")
}

func TestLedger_AllowsExactlyLevelPlusOneDistinctHits(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		level := rapid.IntRange(0, 300).Draw(t, "level")
		expected := projectile.EffectivePierceLevel(level) + 1

		var l projectile.Ledger
		struck := 0
		for id := projectile.ActorID(1); id <= 200; id++ {
			if l.TryStrike(id, level) {
				struck++
			}
			// повторное попадание в того же актёра никогда не проходит
			if l.TryStrike(id, level) {
				t.Fatalf("актёр %d пробит дважды", id)
			}
		}
		if struck != expected {
			t.Fatalf("пробито %d, ожидалось %d", struck, expected)
		}
		if l.Remaining(level) != 0 {
			t.Fatalf("остаток %d после исчерпания", l.Remaining(level))
		}
	})
}

func TestLedger_RemainingNeverIncreases(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		level := rapid.IntRange(0, 10).Draw(t, "level")
		ids := rapid.SliceOf(rapid.Uint64Range(1, 8)).Draw(t, "ids")

		var l projectile.Ledger
		prev := l.Remaining(level)
		for _, id := range ids {
			l.TryStrike(projectile.ActorID(id), level)
			cur := l.Remaining(level)
			if cur > prev || cur < 0 {
				t.Fatalf("остаток изменился с %d на %d", prev, cur)
			}
			prev = cur
		}
	})
}

func TestLedger_ZeroValueUsable(t *testing.T) {
	var l projectile.Ledger
	assert.False(t, l.Contains(1))
	assert.Equal(t, 0, l.Len())
	assert.True(t, l.TryStrike(1, 0))
	assert.False(t, l.TryStrike(2, 0), "при уровне 0 доступно одно попадание")
	assert.Equal(t, []projectile.ActorID{1}, l.Struck())
}
