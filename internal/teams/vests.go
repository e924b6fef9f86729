package teams

import (
	"cmp"
	"slices"
)

// BalanceVests splits every team into two alternating groups by descending level and
// marks one group with vests. Teams are balanced independently, players without a team
// form their own group. The result keeps the input order and the input is left untouched.
//
// Under the default Weaker policy the group with the lower level sum wears vests;
// equal sums give the vests to the group holding the highest ranked player.
func BalanceVests(players []Player, opts ...Option) []Player {
	o := newOptions(opts)
	result := slices.Clone(players)

	byTeam := make(map[string][]int)
	var order []string
	for i, p := range result {
		if _, ok := byTeam[p.TeamID]; !ok {
			order = append(order, p.TeamID)
		}
		byTeam[p.TeamID] = append(byTeam[p.TeamID], i)
	}

	for _, teamID := range order {
		idx := byTeam[teamID]
		slices.SortStableFunc(idx, func(a, b int) int { return cmp.Compare(result[b].Level, result[a].Level) })

		var sumA, sumB float64
		for rank, i := range idx {
			if rank%2 == 0 {
				sumA += result[i].Level
			} else {
				sumB += result[i].Level
			}
		}

		vestOnA := true
		switch o.vestPolicy {
		case Weaker:
			vestOnA = !(sumA > sumB)
		case Stronger:
			vestOnA = !(sumB > sumA)
		}

		for rank, i := range idx {
			inA := rank%2 == 0
			result[i].Vest = inA == vestOnA
		}
	}
	return result
}

// ClearVests returns a copy of players with every vest removed.
func ClearVests(players []Player) []Player {
	result := slices.Clone(players)
	for i := range result {
		result[i].Vest = false
	}
	return result
}
