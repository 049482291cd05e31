package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/wordlebot/wordlebot/internal/db"
	"github.com/wordlebot/wordlebot/internal/protocol"
)

const timeLayout = "2006-01-02 15:04:05"

// renderGames prints the game list as a table.
func renderGames(w io.Writer, games []db.GameRecord) {
	if len(games) == 0 {
		fmt.Fprintln(w, "No games recorded yet.")
		return
	}

	tw := tablewriter.NewWriter(w)
	tw.SetHeader([]string{"ID", "Started", "User", "Server", "Outcome", "Guesses", "Duration", "Flag / Error"})
	tw.SetBorder(true)
	tw.SetAutoWrapText(false)

	for _, g := range games {
		detail := g.Flag
		if g.Outcome != "won" {
			detail = truncate(g.Error, 48)
		}
		tw.Append([]string{
			fmt.Sprintf("%d", g.ID),
			g.StartedAt.Local().Format(timeLayout),
			g.Username,
			g.Server,
			strings.ToUpper(g.Outcome),
			fmt.Sprintf("%d", g.GuessCount),
			g.Duration.Round(time.Millisecond).String(),
			detail,
		})
	}

	tw.Render()
}

// renderStats prints the summary line under the game list.
func renderStats(w io.Writer, s *db.Stats) {
	if s.Total == 0 {
		return
	}
	fmt.Fprintf(w, "\n  Games: %d  Won: %d  Failed: %d  Win rate: %.0f%%", s.Total, s.Won, s.Failed, s.WinRate*100)
	if s.Won > 0 {
		fmt.Fprintf(w, "  Avg guesses: %.2f  Best: %d", s.AvgGuesses, s.BestGuesses)
	}
	fmt.Fprintln(w)
}

// renderGame prints one game and its guesses.
func renderGame(w io.Writer, g *db.GameRecord) {
	fmt.Fprintf(w, "\n  Game:      %d\n", g.ID)
	fmt.Fprintf(w, "  Session:   %s\n", g.SessionID)
	fmt.Fprintf(w, "  User:      %s\n", g.Username)
	fmt.Fprintf(w, "  Server:    %s\n", g.Server)
	fmt.Fprintf(w, "  Strategy:  %s\n", g.Strategy)
	fmt.Fprintf(w, "  Started:   %s\n", g.StartedAt.Local().Format(timeLayout))
	fmt.Fprintf(w, "  Duration:  %s\n", g.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "  Outcome:   %s\n", strings.ToUpper(g.Outcome))
	if g.Flag != "" {
		fmt.Fprintf(w, "  Flag:      %s\n", g.Flag)
	}
	if g.Error != "" {
		fmt.Fprintf(w, "  Error:     %s\n", g.Error)
	}
	fmt.Fprintln(w)

	if len(g.Guesses) == 0 {
		return
	}

	tw := tablewriter.NewWriter(w)
	tw.SetHeader([]string{"Turn", "Word", "Feedback", "Pool Before", "Pool After"})
	tw.SetBorder(true)
	tw.SetAutoWrapText(false)

	for _, gr := range g.Guesses {
		tw.Append([]string{
			fmt.Sprintf("%d", gr.Turn),
			gr.Word,
			feedback(gr.Marks),
			fmt.Sprintf("%d", gr.PoolBefore),
			fmt.Sprintf("%d", gr.PoolAfter),
		})
	}

	tw.Render()
}

// feedback renders marks as letters: C correct, W wrong position, . absent.
func feedback(marks []int) string {
	if len(marks) == 0 {
		return "-"
	}
	var b strings.Builder
	for _, m := range marks {
		switch protocol.Mark(m) {
		case protocol.MarkCorrect:
			b.WriteByte('C')
		case protocol.MarkWrongPosition:
			b.WriteByte('W')
		default:
			b.WriteByte('.')
		}
	}
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
