package teams

// Summarize computes average levels per team, in team order.
func Summarize(teams []Team, players []Player) []TeamSummary {
	type sums struct {
		all, vest, noVest float64
	}
	totals := make(map[string]*sums, len(teams))
	summaries := make([]TeamSummary, len(teams))
	index := make(map[string]int, len(teams))
	for i, t := range teams {
		summaries[i] = TeamSummary{TeamID: t.ID, Name: t.Name, Color: t.Color}
		totals[t.ID] = &sums{}
		index[t.ID] = i
	}

	for _, p := range players {
		i, ok := index[p.TeamID]
		if !ok {
			continue
		}
		s := &summaries[i]
		s.Players++
		totals[p.TeamID].all += p.Level
		if p.Vest {
			s.VestPlayers++
			totals[p.TeamID].vest += p.Level
		} else {
			s.NoVestPlayers++
			totals[p.TeamID].noVest += p.Level
		}
	}

	for i := range summaries {
		s := &summaries[i]
		t := totals[s.TeamID]
		s.Average = average(t.all, s.Players)
		s.VestAverage = average(t.vest, s.VestPlayers)
		s.NoVestAverage = average(t.noVest, s.NoVestPlayers)
	}
	return summaries
}

func average(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
