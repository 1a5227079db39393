package combat

import (
	"math/rand"

	"github.com/wfunc/survival-game/internal/game/entity"
)

// Round 一个战斗回合的记录
type Round struct {
	Number        int              `json:"number"`
	PlayerDealt   float64          `json:"player_dealt"`
	CreatureDealt float64          `json:"creature_dealt"`
	Hostility     entity.Hostility `json:"hostility"`
}

// Report 遭遇战结果
type Report struct {
	Creature       string         `json:"creature"`
	Rounds         []Round        `json:"rounds"`
	CreatureKilled bool           `json:"creature_killed"`
	CreatureFled   bool           `json:"creature_fled"`
	PlayerDefeated bool           `json:"player_defeated"`
	Loot           []*entity.Item `json:"loot,omitempty"`
}

// Fight 自动结算遭遇战
// 玩家总是出手，只有敌对生物反击；速度高者先手，同速玩家先手；
// 逃跑状态的生物在回合结束时脱离战斗
func Fight(rng *rand.Rand, maxRounds int, p *entity.Character, c *entity.Creature, items entity.ItemFactory) *Report {
	report := &Report{Creature: c.Name}
	playerFirst := p.Speed >= c.Speed

	for n := 1; n <= maxRounds; n++ {
		round := Round{Number: n}

		if playerFirst {
			round.PlayerDealt = playerStrike(rng, p, c)
			if c.Alive() {
				round.CreatureDealt = creatureStrike(rng, c, p)
			}
		} else {
			round.CreatureDealt = creatureStrike(rng, c, p)
			if p.Alive() {
				round.PlayerDealt = playerStrike(rng, p, c)
			}
		}
		round.Hostility = c.Hostility
		report.Rounds = append(report.Rounds, round)

		if !p.Alive() {
			report.PlayerDefeated = true
			break
		}
		if !c.Alive() {
			report.CreatureKilled = true
			report.Loot = DropLoot(rng, c, items)
			break
		}
		if c.Hostility == entity.Fleeing {
			report.CreatureFled = true
			break
		}
	}
	return report
}

func playerStrike(rng *rand.Rand, p *entity.Character, c *entity.Creature) float64 {
	dealt, _ := ResolveAttack(rng, PlayerAttack(p), c)
	if w := p.Weapon(); w != nil {
		w.Wear()
	}
	return dealt
}

func creatureStrike(rng *rand.Rand, c *entity.Creature, p *entity.Character) float64 {
	if !c.Attacks() {
		return 0
	}
	dealt, _ := ResolveAttack(rng, CreatureAttack(c), p)
	return dealt
}
