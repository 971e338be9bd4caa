package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cardtrack/deckscan/internal/decode"
)

func TestChallengeMajorityWins(t *testing.T) {
	p := Params{GenocideScaleFactor: 1.3}
	// 6 > 1.3*4 == 5.2, so a dominates at 1.3.
	a := decode.ScannedCard{CardIndex: 1, Count: 6}
	b := decode.ScannedCard{CardIndex: 2, Count: 4}

	winner, ok := p.Challenge(a, b)
	assert.True(t, ok)
	assert.Equal(t, 1, winner.CardIndex)
}

func TestChallengeAmbiguousAtScaleFactorOnePointThree(t *testing.T) {
	p := Params{GenocideScaleFactor: 1.3}
	// 5 > 1.3*4 == 5.2 is false, so this pair is ambiguous at 1.3.
	_, ok := p.Challenge(decode.ScannedCard{CardIndex: 1, Count: 5}, decode.ScannedCard{CardIndex: 2, Count: 4})
	assert.False(t, ok)
}

func TestChallengeStrictMajorityAtFactorOne(t *testing.T) {
	p := Params{GenocideScaleFactor: 1.0}
	winner, ok := p.Challenge(decode.ScannedCard{CardIndex: 1, Count: 5}, decode.ScannedCard{CardIndex: 2, Count: 4})
	assert.True(t, ok)
	assert.Equal(t, 1, winner.CardIndex)
}

func TestResolveKeepsBothWhenAmbiguous(t *testing.T) {
	p := Params{GenocideScaleFactor: 1.3}
	group := []decode.ScannedCard{
		{CardIndex: 1, Count: 5},
		{CardIndex: 2, Count: 4},
	}
	survivors := Resolve(group, p)
	assert.Len(t, survivors, 2)
}

func TestResolveEliminatesLoser(t *testing.T) {
	p := Params{GenocideScaleFactor: 1.0}
	group := []decode.ScannedCard{
		{CardIndex: 1, Count: 5},
		{CardIndex: 2, Count: 4},
	}
	survivors := Resolve(group, p)
	assert.Len(t, survivors, 1)
	assert.Equal(t, 1, survivors[0].CardIndex)
}

func TestResolvedIndicesExtractsOrder(t *testing.T) {
	survivors := []decode.ScannedCard{{CardIndex: 7}, {CardIndex: 9}}
	assert.Equal(t, []int{7, 9}, ResolvedIndices(survivors))
}
