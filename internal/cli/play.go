package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/skip2/go-qrcode"
	"github.com/spf13/cobra"

	"github.com/mcoot/aliasgame/internal/factory"
	"github.com/mcoot/aliasgame/internal/model"
	"github.com/mcoot/aliasgame/internal/services/session"
)

func newPlayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play Alias interactively",
		Long: `Start an interactive game session.

Type one command per line; "help" lists the commands for the current screen.
Online play is offered when both --backend-url and --backend-key are set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := factory.New(ctx, cfg.FactoryConfig(logger))
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			sess := app.NewSession()
			defer sess.Close()

			if err := sess.SetSettings(cfg.Settings()); err != nil {
				return err
			}
			return NewREPL(sess, NewOutput(cmd.OutOrStdout(), "text")).Run(ctx, cmd.InOrStdin())
		},
	}

	fs := cmd.Flags()
	fs.IntVar(&cfg.Timer, "timer", cfg.Timer, "Round length in seconds: 30, 45, 60, 90 or 120 (env: ALIAS_TIMER)")
	fs.StringVar(&cfg.Difficulty, "difficulty", cfg.Difficulty, "Word difficulty: easy, medium, hard (env: ALIAS_DIFFICULTY)")
	fs.IntVar(&cfg.Teams, "teams", cfg.Teams, "Number of teams, 2 to 4 (env: ALIAS_TEAMS)")
	fs.IntVar(&cfg.TargetScore, "target-score", cfg.TargetScore, "Target score shown to players (env: ALIAS_TARGET_SCORE)")
	fs.StringVar(&cfg.WordsPath, "words", cfg.WordsPath, "Word corpus file replacing the built-in list (env: ALIAS_WORDS)")
	bindEnv(fs)

	return cmd
}

// REPL drives one session from line-based input. Every session call happens
// on the goroutine running Run; ticks and roster polls arrive over channels.
type REPL struct {
	sess *session.Session
	out  *Output

	lastWord   int
	lastTime   int
	rosterSize int
}

// NewREPL creates a REPL bound to sess
func NewREPL(sess *session.Session, out *Output) *REPL {
	return &REPL{sess: sess, out: out}
}

// Run reads commands until quit, end of input or ctx is cancelled
func (r *REPL) Run(ctx context.Context, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	r.render()
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if r.handle(ctx, line) {
				return nil
			}
		case update := <-r.sess.RosterUpdates():
			r.onRoster(update)
		case snapshot := <-r.sess.GameUpdates():
			r.onGame(snapshot)
		}
	}
}

// handle runs one command line and reports whether the REPL should exit
func (r *REPL) handle(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	command, args := strings.ToLower(fields[0]), fields[1:]

	switch command {
	case "quit", "exit":
		return true
	case "help":
		r.render()
		return false
	}

	var err error
	switch r.sess.Screen() {
	case model.ScreenHome:
		err = r.handleHome(command, args)
	case model.ScreenOnline:
		err = r.handleOnline(ctx, command, args)
	case model.ScreenLobby:
		err = r.handleLobby(ctx, command, args)
	case model.ScreenPlaying:
		err = r.handlePlaying(command)
	}
	if err != nil {
		r.out.PrintError(err)
	}
	return false
}

func (r *REPL) handleHome(command string, args []string) error {
	switch command {
	case "local":
		snapshot, err := r.sess.StartLocal()
		if err != nil {
			return err
		}
		r.showGame(snapshot)
	case "online":
		if err := r.sess.GoOnline(); err != nil {
			return err
		}
		r.render()
	case "set":
		return r.setOption(args)
	default:
		return unknownCommand(command)
	}
	return nil
}

func (r *REPL) handleOnline(ctx context.Context, command string, args []string) error {
	switch command {
	case "create":
		created, err := r.sess.CreateRoom(ctx)
		if err != nil {
			return err
		}
		r.rosterSize = 0
		r.out.PrintMessage(fmt.Sprintf("Room created. Share code %s with the other players:", created.Code))
		r.printQR(created.Code)
		r.render()
	case "join":
		if len(args) != 1 {
			return fmt.Errorf("usage: join <code>")
		}
		if _, err := r.sess.JoinRoom(ctx, args[0]); err != nil {
			return err
		}
		r.rosterSize = 0
		r.render()
	case "set":
		return r.setOption(args)
	case "back":
		return r.goHome()
	default:
		return unknownCommand(command)
	}
	return nil
}

func (r *REPL) handleLobby(ctx context.Context, command string, args []string) error {
	switch command {
	case "add":
		if len(args) < 2 {
			return fmt.Errorf("usage: add <name> <team>")
		}
		name := strings.Join(args[:len(args)-1], " ")
		player, err := r.sess.SubmitPlayer(ctx, name, args[len(args)-1])
		if err != nil {
			return err
		}
		r.out.PrintMessage(fmt.Sprintf("%s joined team %s", player.Name, player.Team))
		r.showRoster(r.sess.View())
	case "start":
		snapshot, err := r.sess.StartOnline(ctx)
		if err != nil {
			return err
		}
		r.showGame(snapshot)
	case "back":
		return r.goHome()
	default:
		return unknownCommand(command)
	}
	return nil
}

func (r *REPL) handlePlaying(command string) error {
	var (
		snapshot model.GameSnapshot
		err      error
	)
	switch command {
	case "correct", "c":
		snapshot, err = r.sess.MarkCorrect()
	case "skip", "s":
		snapshot, err = r.sess.MarkSkip()
	case "foul", "f":
		snapshot, err = r.sess.MarkFoul()
	case "end":
		final, err := r.sess.EndGame()
		if err != nil {
			return err
		}
		r.out.PrintMessage("Game over. Final scores:")
		r.out.printScores(final)
		r.render()
		return nil
	default:
		return unknownCommand(command)
	}
	if err != nil {
		return err
	}
	r.showGame(snapshot)
	return nil
}

func (r *REPL) goHome() error {
	if err := r.sess.Home(); err != nil {
		return err
	}
	r.render()
	return nil
}

// setOption changes one game setting, e.g. "set timer 45"
func (r *REPL) setOption(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: set <timer|difficulty|teams|target> <value>")
	}
	settings := r.sess.View().Settings

	switch strings.ToLower(args[0]) {
	case "timer":
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("%w: timer must be a number", model.ErrInvalidSettings)
		}
		settings.TimerSeconds = n
	case "difficulty":
		settings.Difficulty = model.Difficulty(strings.ToLower(args[1]))
	case "teams":
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("%w: teams must be a number", model.ErrInvalidSettings)
		}
		settings.NumTeams = n
	case "target":
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("%w: target must be a number", model.ErrInvalidSettings)
		}
		settings.TargetScore = n
	default:
		return fmt.Errorf("unknown option %q", args[0])
	}

	if err := r.sess.SetSettings(settings); err != nil {
		return err
	}
	r.out.Print(settings)
	return nil
}

// onRoster applies a polled roster and reports what changed
func (r *REPL) onRoster(update model.RosterUpdate) {
	before := r.sess.Screen()
	r.sess.HandleRosterUpdate(update)
	view := r.sess.View()

	switch {
	case before == model.ScreenLobby && view.Screen == model.ScreenPlaying:
		r.out.PrintMessage("The game has started!")
		r.showGame(view.Game)
	case view.Screen == model.ScreenLobby && len(view.Roster) != r.rosterSize:
		r.showRoster(view)
	}
}

// onGame reports countdown progress and rounds that ran out of time
func (r *REPL) onGame(snapshot model.GameSnapshot) {
	if !snapshot.Playing || r.sess.Screen() != model.ScreenPlaying {
		return
	}

	switch {
	case snapshot.State.WordCount > r.lastWord:
		r.out.PrintMessage("Time's up!")
		r.showGame(snapshot)
	case snapshot.State.WordCount == r.lastWord && snapshot.TimeLeft != r.lastTime:
		r.lastTime = snapshot.TimeLeft
		if snapshot.TimeLeft%10 == 0 || snapshot.TimeLeft <= 5 {
			r.out.PrintMessage(fmt.Sprintf("%ds left", snapshot.TimeLeft))
		}
	}
}

func (r *REPL) showGame(snapshot model.GameSnapshot) {
	r.lastWord = snapshot.State.WordCount
	r.lastTime = snapshot.TimeLeft
	r.out.Print(snapshot)
}

func (r *REPL) showRoster(view session.View) {
	r.rosterSize = len(view.Roster)
	r.out.Print(view.Roster)
}

func (r *REPL) render() {
	r.out.Print(r.sess.View())
}

func (r *REPL) printQR(code model.RoomCode) {
	qr, err := qrcode.New(string(code), qrcode.Medium)
	if err != nil {
		return
	}
	r.out.PrintMessage(qr.ToSmallString(false))
}

func unknownCommand(command string) error {
	return fmt.Errorf("unknown command %q, type help for the list", command)
}
