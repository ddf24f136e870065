package main

import (
	"flag"
	"io"
	"strings"

	"go-threadmusic/config"
	"go-threadmusic/music"
)

// options are the command line settings. Values only override the config
// file when their flag was given.
type options struct {
	configPath string
	monitor    bool
	save       bool

	workers int
	secs    int
	phases  int
	seed    int64
	kit     string
	out     string
	debug   string

	set map[string]bool
}

func parseFlags(args []string, out io.Writer) (*options, error) {
	o := &options{set: map[string]bool{}}
	d := config.DefaultConfig()

	fs := flag.NewFlagSet("threadmusic", flag.ContinueOnError)
	fs.SetOutput(out)

	fs.IntVar(&o.workers, "n", d.Workers, "number of threads (1 = drums only)")
	fs.IntVar(&o.workers, "num-threads", d.Workers, "number of threads (1 = drums only)")
	fs.IntVar(&o.secs, "t", d.DurationSec, "duration in seconds")
	fs.IntVar(&o.secs, "time", d.DurationSec, "duration in seconds")
	fs.IntVar(&o.phases, "p", d.Phases, "number of musical phases")
	fs.IntVar(&o.phases, "phases", d.Phases, "number of musical phases")
	fs.Int64Var(&o.seed, "seed", 0, "content seed (0 = time based)")
	fs.StringVar(&o.kit, "kit", d.Kit, "drum kit: "+strings.Join(music.KitNames(), "|"))
	fs.StringVar(&o.out, "o", d.OutputDir, "output directory")
	fs.StringVar(&o.debug, "debug", "", "write a debug log to this file")
	fs.StringVar(&o.configPath, "config", "", "config file (default ~/.config/go-threadmusic/config.yaml)")
	fs.BoolVar(&o.monitor, "tui", false, "show the live monitor")
	fs.BoolVar(&o.save, "save-config", false, "write the effective config back to the config file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) {
		o.set[f.Name] = true
	})
	return o, nil
}

func (o *options) given(names ...string) bool {
	for _, n := range names {
		if o.set[n] {
			return true
		}
	}
	return false
}

// apply copies given flags onto cfg
func (o *options) apply(cfg *config.Config) {
	if o.given("n", "num-threads") {
		cfg.Workers = o.workers
	}
	if o.given("t", "time") {
		cfg.DurationSec = o.secs
	}
	if o.given("p", "phases") {
		cfg.Phases = o.phases
	}
	if o.given("seed") {
		cfg.Seed = o.seed
	}
	if o.given("kit") {
		cfg.Kit = o.kit
	}
	if o.given("o") {
		cfg.OutputDir = o.out
	}
	if o.given("debug") {
		cfg.DebugLog = o.debug
	}
}
