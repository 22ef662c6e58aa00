package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mcoot/trucogame/internal/api/response"
	"github.com/mcoot/trucogame/internal/services/view"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
	errW   io.Writer
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format, w: os.Stdout, errW: os.Stderr}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		_, _ = fmt.Fprintln(o.errW, string(data))
	} else {
		_, _ = fmt.Fprintf(o.errW, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		_, _ = fmt.Fprintln(o.w, string(data))
	} else {
		_, _ = fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case *response.JoinResponse:
		o.printf("Joined room %s\n", v.Room)
		o.printView(v.View)
	case *response.StateResponse:
		if v.Rejected != "" {
			o.printf("Rejected: %s\n", v.Rejected)
		}
		o.printView(v.View)
	case *response.LeaveResponse:
		if v.RoomClosed {
			o.printf("Left; room closed\n")
		} else {
			o.printf("Left\n")
		}
	case *response.HealthResponse:
		o.printf("Status: %s\n", v.Status)
	case *view.View:
		o.printView(v)
	default:
		o.printJSON(data)
	}
}

func (o *Output) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(o.w, format, args...)
}

func teamName(team int) string {
	switch team {
	case 1:
		return "Team 1"
	case 2:
		return "Team 2"
	}
	return "-"
}

func (o *Output) printView(v *view.View) {
	if v == nil {
		return
	}

	o.printf("Room: %s  Seat: %d (%s)  Partner: %s\n", v.Room, v.Seat, teamName(v.Team), orDash(v.Partner))
	o.printf("Score: %d - %d\n", v.Score[0], v.Score[1])

	o.printf("Players:\n")
	for _, p := range v.Players {
		status := "connected"
		if !p.Connected {
			status = "away"
		}
		o.printf("  [%d] %-12s %s  %d cards  %s\n", p.Seat, orDash(p.Name), teamName(p.Team), p.Cards, status)
	}

	switch {
	case v.MatchWinner != 0:
		o.printf("Match won by %s\n", teamName(v.MatchWinner))
	case v.RoundOver:
		o.printf("Round won by %s for %d points\n", teamName(v.RoundWinner), v.RoundPoints)
	case !v.Started:
		o.printf("Waiting for players (%d/4)\n", len(v.Players))
	default:
		o.printf("Hand %d  Value %d  Hands %d - %d\n", v.HandIndex, v.RoundValue, v.HandWins[0], v.HandWins[1])
		if v.Truco.State != "" && v.Truco.State != "none" {
			o.printf("Truco: %s by %s for %d\n", v.Truco.State, teamName(v.Truco.Asker), v.Truco.Value)
		}
		if v.Resolving {
			o.printf("Resolving hand...\n")
		} else if v.MyTurn {
			o.printf("Your turn\n")
		} else if v.CurrentPlayer != "" {
			o.printf("Waiting on %s\n", v.CurrentPlayer)
		}
	}

	if len(v.Table) > 0 {
		plays := make([]string, 0, len(v.Table))
		for _, p := range v.Table {
			card := p.Card.Name
			if p.Hidden {
				card = "(hidden)"
			}
			plays = append(plays, fmt.Sprintf("%s: %s", p.Player, card))
		}
		o.printf("Table: %s\n", strings.Join(plays, ", "))
	}

	if len(v.Hand) > 0 {
		o.printf("Hand:\n")
		for i, c := range v.Hand {
			o.printf("  %d) %s\n", i, c.Name)
		}
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
