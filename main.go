package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-threadmusic/config"
	"go-threadmusic/debug"
	"go-threadmusic/midi"
	"go-threadmusic/sequencer"
	"go-threadmusic/theme"
	"go-threadmusic/timeline"
	"go-threadmusic/tui"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", userMessage(err))
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	opts, err := parseFlags(args, stdout)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	opts.apply(cfg)
	cfg.Sanitize()

	if opts.save {
		if err := saveConfig(cfg, opts.configPath); err != nil {
			return err
		}
	}

	if cfg.DebugLog != "" {
		if err := debug.Enable(cfg.DebugLog); err != nil {
			return fault.Wrap(err, fmsg.WithDesc("enable debug log", "Could not open the debug log"))
		}
		defer debug.Disable()
	}

	palette, err := theme.Load(cfg.Palette)
	if err != nil {
		return err
	}
	th := theme.New(palette)

	manager, err := sequencer.NewManager(cfg, timeline.New())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if !opts.monitor {
		fmt.Fprintf(stdout, "Creating %d threads for %d seconds with %d musical phases\n", cfg.Workers, cfg.DurationSec, cfg.Phases)
	}

	started := time.Now()
	var events []midi.Event
	if opts.monitor {
		events, err = runWithMonitor(ctx, manager, th)
	} else {
		events, err = manager.Run(ctx)
	}
	if err != nil {
		return err
	}

	path := cfg.OutputPath(time.Now())
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return fault.Wrap(err, fmsg.WithDesc("create output dir", fmt.Sprintf("Could not create %s", cfg.OutputDir)))
	}
	song := manager.Song(events)
	if err := midi.WriteFile(path, song); err != nil {
		return err
	}

	fmt.Fprintln(stdout, summary(th, path, song, manager, time.Since(started)))
	return nil
}

// runWithMonitor runs the manager while the monitor polls it. Quitting the
// monitor only stops the run; the timeline is still returned.
func runWithMonitor(ctx context.Context, manager *sequencer.Manager, th *theme.Theme) ([]midi.Event, error) {
	p := tea.NewProgram(tui.NewModel(manager, th), tea.WithAltScreen())

	type result struct {
		events []midi.Event
		err    error
	}
	done := make(chan result, 1)
	go func() {
		events, err := manager.Run(ctx)
		p.Send(tui.DoneMsg{Err: err})
		done <- result{events, err}
	}()

	if _, err := p.Run(); err != nil {
		manager.Stop()
		<-done
		return nil, fault.Wrap(err, fmsg.With("run monitor"))
	}
	r := <-done
	return r.events, r.err
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

func saveConfig(cfg *config.Config, path string) error {
	if path != "" {
		return cfg.SaveFile(path)
	}
	return cfg.Save()
}

func summary(th *theme.Theme, path string, song midi.Song, manager *sequencer.Manager, took time.Duration) string {
	accent := lipgloss.NewStyle().Foreground(th.Accent()).Bold(true)
	dim := lipgloss.NewStyle().Foreground(th.Muted())

	notes := 0
	for _, ev := range song.Events {
		if ev.Kind == midi.NoteOn {
			notes++
		}
	}

	return fmt.Sprintf("%s %s\n%s",
		accent.Render("MIDI file"),
		path+" has been created.",
		dim.Render(fmt.Sprintf("Tracks: %d  notes: %d  events: %d  seed: %d  took %s",
			song.Tracks+1, notes, len(song.Events), manager.Seed(), took.Truncate(time.Millisecond))),
	)
}

// userMessage prefers the description attached for users over the raw chain
func userMessage(err error) string {
	if issue := fmsg.GetIssue(err); issue != "" {
		return issue
	}
	return err.Error()
}
