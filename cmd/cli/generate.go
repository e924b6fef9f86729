package main

import (
	"cmp"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/mauv0809/sportsdiff/internal/roster"
	"github.com/mauv0809/sportsdiff/internal/teams"
	"github.com/spf13/cobra"
)

var (
	rosterFile     string
	attendanceFile string
	teamSize       int
	mode           string
	vests          bool
	vestPolicy     string
	foldNames      bool
)

func init() {
	generateCmd.Flags().StringVar(&rosterFile, "roster", "", "Roster file, one \"Name level\" per line")
	generateCmd.Flags().StringVar(&attendanceFile, "attendance", "", "Attendance file, one name per line")
	generateCmd.Flags().IntVar(&teamSize, "size", 6, "Players per team")
	generateCmd.Flags().StringVar(&mode, "mode", string(teams.Even), "Distribution: even or grouped")
	generateCmd.Flags().BoolVar(&vests, "vests", true, "Assign vests within each team")
	generateCmd.Flags().StringVar(&vestPolicy, "policy", string(teams.Weaker), "Who wears the odd vest: weaker or stronger")
	generateCmd.Flags().BoolVar(&foldNames, "fold", false, "Ignore diacritics when matching attendance")
	_ = generateCmd.MarkFlagRequired("roster")
	_ = generateCmd.MarkFlagRequired("attendance")
	rootCmd.AddCommand(generateCmd)
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate teams from local roster and attendance files",
	RunE: func(cmd *cobra.Command, args []string) error {
		rosterText, err := os.ReadFile(rosterFile)
		if err != nil {
			return fmt.Errorf("failed to read roster: %w", err)
		}
		attendanceText, err := os.ReadFile(attendanceFile)
		if err != nil {
			return fmt.Errorf("failed to read attendance: %w", err)
		}
		distribution, err := teams.ParseDistribution(mode)
		if err != nil {
			return err
		}
		policy, err := teams.ParseVestPolicy(vestPolicy)
		if err != nil {
			return err
		}

		all, lineErrs := roster.ParseLines(string(rosterText))
		for _, le := range lineErrs {
			fmt.Fprintf(cmd.ErrOrStderr(), "line %d: %q: %s\n", le.Line, le.Text, le.Err)
		}
		var matchOpts []roster.MatchOption
		if foldNames {
			matchOpts = append(matchOpts, roster.WithFoldedNames())
		}
		attending := roster.MatchAttendance(all, string(attendanceText), matchOpts...)

		result, err := teams.Partition(attending, teamSize, distribution)
		if err != nil {
			return fmt.Errorf("failed to generate teams: %w", err)
		}
		players := teams.ClearVests(result.Players)
		if vests {
			players = teams.BalanceVests(result.Players, teams.WithVestPolicy(policy))
		}
		printLineup(cmd.OutOrStdout(), result.Teams, players)
		return nil
	},
}

func printLineup(w io.Writer, lineup []teams.Team, players []teams.Player) {
	byTeam := make(map[string][]teams.Player, len(lineup))
	for _, p := range players {
		byTeam[p.TeamID] = append(byTeam[p.TeamID], p)
	}
	for i, summary := range teams.Summarize(lineup, players) {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s (%d players, avg %.2f)\n", summary.Name, summary.Players, summary.Average)
		members := byTeam[summary.TeamID]
		slices.SortStableFunc(members, func(a, b teams.Player) int {
			return cmp.Compare(b.Level, a.Level)
		})
		for _, p := range members {
			vest := ""
			if p.Vest {
				vest = " [vest]"
			}
			fmt.Fprintf(w, "  %-20s %5s%s\n", p.Name, roster.FormatLevel(p.Level), vest)
		}
	}
	if len(lineup) == 0 {
		fmt.Fprintln(w, "No one is attending.")
	}
}
