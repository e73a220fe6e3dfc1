package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mcoot/aliasgame/internal/model"
	"github.com/mcoot/aliasgame/internal/services/session"
)

// Output handles formatting output based on the configured format
type Output struct {
	w      io.Writer
	format string
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(w io.Writer, format string) *Output {
	return &Output{w: w, format: format}
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
		_, _ = fmt.Fprintln(o.w, string(data))
	} else {
		_, _ = fmt.Fprintf(o.w, "Error: %s\n", err)
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
	case HealthResult:
		o.printf("Status: %s\n", v.Status)
		o.printf("Backend: %s\n", v.Backend)
	case session.View:
		o.printView(v)
	case model.GameSnapshot:
		o.printGame(v)
	case model.GameSettings:
		o.printSettings(v)
	case []model.Player:
		o.printRoster(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(o.w, format, args...)
}

func (o *Output) printView(v session.View) {
	if v.Banner != "" {
		o.printf("! %s\n", v.Banner)
	}

	switch v.Screen {
	case model.ScreenHome:
		o.printf("== Alias ==\n")
		o.printSettings(v.Settings)
		if v.OnlineEnabled {
			o.printf("Commands: local, online, set <option> <value>, quit\n")
		} else {
			o.printf("Commands: local, set <option> <value>, quit\n")
		}
	case model.ScreenOnline:
		o.printf("== Online ==\n")
		o.printSettings(v.Settings)
		o.printf("Commands: create, join <code>, set <option> <value>, back\n")
	case model.ScreenLobby:
		if v.Room != nil {
			o.printf("== Room %s ==\n", v.Room.Code)
		}
		o.printRoster(v.Roster)
		o.printf("Commands: add <name> <team>, start, back\n")
	case model.ScreenPlaying:
		o.printGame(v.Game)
		o.printf("Commands: correct (c), skip (s), foul (f), end\n")
	}
}

func (o *Output) printSettings(s model.GameSettings) {
	o.printf("Timer: %ds  Difficulty: %s  Teams: %d  Target: %d\n",
		s.TimerSeconds, s.Difficulty, s.NumTeams, s.TargetScore)
}

func (o *Output) printRoster(players []model.Player) {
	if len(players) == 0 {
		o.printf("No players yet\n")
		return
	}
	o.printf("Players (%d):\n", len(players))
	for _, p := range players {
		o.printf("  - %s [%s]\n", p.Name, p.Team)
	}
}

func (o *Output) printGame(g model.GameSnapshot) {
	if !g.Playing {
		o.printf("No game in progress\n")
		return
	}
	o.printf("Word #%d: %s\n", g.State.WordCount, strings.ToUpper(g.State.CurrentWord))
	o.printf("Presenter: %s (%s)  Time left: %ds\n", g.Presenter.Name, g.Presenter.Team, g.TimeLeft)
	o.printScores(g)
}

func (o *Output) printScores(g model.GameSnapshot) {
	var parts []string
	for _, t := range model.Teams() {
		if score, ok := g.State.TeamScores[t.Name]; ok {
			parts = append(parts, fmt.Sprintf("%s %d", t.Name, score))
		}
	}
	o.printf("Scores: %s\n", strings.Join(parts, " | "))
}
