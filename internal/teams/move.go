package teams

import "slices"

// MovePlayer puts one player on another team and recomputes vests for the whole set.
// A target that is not one of teams, or an unknown player, leaves players as they are
// and reports false.
func MovePlayer(players []Player, teams []Team, teamID, playerID string, opts ...Option) ([]Player, bool) {
	moved, ok := Reassign(players, teams, teamID, playerID)
	if !ok {
		return players, false
	}
	return BalanceVests(moved, opts...), true
}

// Reassign is MovePlayer without the vest recompute, for callers running without vests.
func Reassign(players []Player, teams []Team, teamID, playerID string) ([]Player, bool) {
	known := slices.ContainsFunc(teams, func(t Team) bool { return t.ID == teamID })
	if !known {
		return players, false
	}
	idx := slices.IndexFunc(players, func(p Player) bool { return p.ID == playerID })
	if idx < 0 {
		return players, false
	}

	result := slices.Clone(players)
	result[idx].TeamID = teamID
	return result, true
}
