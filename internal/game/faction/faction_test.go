package faction

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/survival-game/internal/errors"
	"github.com/wfunc/survival-game/internal/game/entity"
	"go.uber.org/zap"
)

func testFactions() map[string]*entity.Faction {
	return map[string]*entity.Faction{
		"traders": {ID: "traders", Name: "River Traders", Disposition: entity.DispositionFriendly, Ambients: []string{"lake"}},
		"raiders": {ID: "raiders", Name: "Raiders", Disposition: entity.DispositionHostile, Ambients: []string{"forest"}},
		"hermits": {ID: "hermits", Name: "Hermits", Disposition: entity.DispositionGuarded, Ambients: []string{"forest", "lake"}},
	}
}

func TestLevelBoundaries(t *testing.T) {
	tests := []struct {
		score int
		level Level
	}{
		{math.MinInt, LevelHated},
		{-1000, LevelHated},
		{-51, LevelHated},
		{-50, LevelDisliked},
		{-11, LevelDisliked},
		{-10, LevelNeutral},
		{0, LevelNeutral},
		{10, LevelNeutral},
		{11, LevelAccepted},
		{50, LevelAccepted},
		{51, LevelTrusted},
		{99, LevelTrusted},
		{100, LevelAllied},
		{math.MaxInt, LevelAllied},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.level, LevelForScore(tt.score), "score %d", tt.score)
	}
}

func TestRangesExhaustive(t *testing.T) {
	require.Equal(t, math.MinInt, ranges[0].Min)
	require.Equal(t, math.MaxInt, ranges[len(ranges)-1].Max)
	for i := 1; i < len(ranges); i++ {
		assert.Equal(t, ranges[i-1].Max+1, ranges[i].Min, "区间 %s 与 %s 必须相接", ranges[i-1].Level, ranges[i].Level)
		assert.LessOrEqual(t, ranges[i].Min, ranges[i].Max)
	}

	// 每个整数恰好落在一个区间
	for score := -300; score <= 300; score++ {
		hits := 0
		for _, r := range ranges {
			if score >= r.Min && score <= r.Max {
				hits++
			}
		}
		assert.Equal(t, 1, hits, "score %d", score)
	}
	assert.Len(t, Levels(), 6)
}

func TestAdjustReputationUnbounded(t *testing.T) {
	tr := NewTracker(testFactions(), nil, zap.NewNop())

	require.NoError(t, tr.AdjustReputation("traders", 500))
	require.NoError(t, tr.AdjustReputation("traders", 500))
	assert.Equal(t, 1000, tr.Score("traders"))
	lvl, err := tr.LevelFor("traders")
	require.NoError(t, err)
	assert.Equal(t, LevelAllied, lvl)

	err = tr.AdjustReputation("pirates", 1)
	assert.True(t, errors.Is(err, errors.ErrUnknownFaction))
	_, err = tr.LevelFor("pirates")
	assert.True(t, errors.Is(err, errors.ErrUnknownFaction))
}

func TestAdjustReputationSaturatesAtIntBounds(t *testing.T) {
	tr := NewTracker(testFactions(), map[string]int{"traders": math.MaxInt, "raiders": math.MinInt}, zap.NewNop())

	require.NoError(t, tr.AdjustReputation("traders", 1))
	assert.Equal(t, math.MaxInt, tr.Score("traders"))
	lvl, err := tr.LevelFor("traders")
	require.NoError(t, err)
	assert.Equal(t, LevelAllied, lvl)

	require.NoError(t, tr.AdjustReputation("raiders", -1))
	assert.Equal(t, math.MinInt, tr.Score("raiders"))
	lvl, err = tr.LevelFor("raiders")
	require.NoError(t, err)
	assert.Equal(t, LevelHated, lvl)

	require.NoError(t, tr.AdjustReputation("traders", -10))
	assert.Equal(t, math.MaxInt-10, tr.Score("traders"))
}

func TestTradeTerms(t *testing.T) {
	scores := map[string]int{}
	tr := NewTracker(testFactions(), scores, zap.NewNop())

	// 声望为0时按默认态度
	terms, err := tr.TradeTerms("traders")
	require.NoError(t, err)
	assert.True(t, terms.Allowed)
	assert.Equal(t, 1.0, terms.PriceMultiplier)

	terms, err = tr.TradeTerms("hermits")
	require.NoError(t, err)
	assert.Equal(t, 1.5, terms.PriceMultiplier)
	assert.Equal(t, 15, terms.Price(10))

	terms, err = tr.TradeTerms("raiders")
	require.NoError(t, err)
	assert.False(t, terms.Allowed)

	// 声望非0后等级覆盖默认态度
	require.NoError(t, tr.AdjustReputation("raiders", 60))
	terms, err = tr.TradeTerms("raiders")
	require.NoError(t, err)
	assert.True(t, terms.Allowed)
	assert.Equal(t, LevelTrusted, terms.Level)
	assert.Equal(t, 0.85, terms.PriceMultiplier)

	require.NoError(t, tr.AdjustReputation("traders", -11))
	terms, err = tr.TradeTerms("traders")
	require.NoError(t, err)
	assert.False(t, terms.Allowed, "DISLIKED 拒绝交易")

	// 分数表由调用方持有
	assert.Equal(t, -11, scores["traders"])

	_, err = tr.TradeTerms("pirates")
	assert.Error(t, err)
}

func TestHostileOnSight(t *testing.T) {
	tr := NewTracker(testFactions(), nil, zap.NewNop())

	assert.True(t, tr.HostileOnSight("raiders"))
	assert.False(t, tr.HostileOnSight("traders"))
	assert.False(t, tr.HostileOnSight("pirates"))

	require.NoError(t, tr.AdjustReputation("raiders", 5))
	assert.False(t, tr.HostileOnSight("raiders"))

	require.NoError(t, tr.AdjustReputation("traders", -51))
	assert.True(t, tr.HostileOnSight("traders"))
}

func TestPresentIn(t *testing.T) {
	tr := NewTracker(testFactions(), nil, zap.NewNop())
	var ids []string
	for _, f := range tr.PresentIn("forest") {
		ids = append(ids, f.ID)
	}
	assert.Equal(t, []string{"hermits", "raiders"}, ids)
	assert.Equal(t, []string{"hermits", "raiders", "traders"}, tr.IDs())
}
