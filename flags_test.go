package main

import (
	"io"
	"testing"

	"go-threadmusic/config"
)

func TestFlagsOverrideOnlyWhenGiven(t *testing.T) {
	opts, err := parseFlags([]string{"-n", "6", "-time", "30", "-kit", "tr8s"}, io.Discard)
	if err != nil {
		t.Fatal(err)
	}

	cfg := config.DefaultConfig()
	cfg.Phases = 5
	cfg.Seed = 7
	opts.apply(cfg)

	if cfg.Workers != 6 || cfg.DurationSec != 30 || cfg.Kit != "tr8s" {
		t.Fatalf("flags not applied: %+v", cfg)
	}
	if cfg.Phases != 5 || cfg.Seed != 7 {
		t.Fatalf("unset flags must not override the file: %+v", cfg)
	}
}

func TestShortAndLongNames(t *testing.T) {
	cases := [][]string{
		{"-p", "4"},
		{"-phases", "4"},
		{"--phases=4"},
	}
	for _, args := range cases {
		opts, err := parseFlags(args, io.Discard)
		if err != nil {
			t.Fatal(err)
		}
		cfg := config.DefaultConfig()
		opts.apply(cfg)
		if cfg.Phases != 4 {
			t.Fatalf("%v: expected 4 phases, got %d", args, cfg.Phases)
		}
	}
}

func TestBadFlag(t *testing.T) {
	if _, err := parseFlags([]string{"-bogus"}, io.Discard); err == nil {
		t.Fatalf("expected error for unknown flag")
	}
}
