package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
)

// RunInfo describes a finished run, parsed from its file name
type RunInfo struct {
	Filename    string
	Workers     int
	DurationSec int
	Phases      int
	Timestamp   time.Time
}

// ParseFileName reads back a name produced by FileName
func ParseFileName(name string) (RunInfo, bool) {
	var info RunInfo
	var unix int64
	n, err := fmt.Sscanf(name, "thread_music_%dthreads_%dsec_%dphases_%d.mid",
		&info.Workers, &info.DurationSec, &info.Phases, &unix)
	if err != nil || n != 4 {
		return RunInfo{}, false
	}
	info.Timestamp = time.Unix(unix, 0)
	info.Filename = name
	// Sscanf ignores trailing input
	if fileNameOf(info) != name {
		return RunInfo{}, false
	}
	return info, true
}

func fileNameOf(r RunInfo) string {
	c := Config{Workers: r.Workers, DurationSec: r.DurationSec, Phases: r.Phases}
	return c.FileName(r.Timestamp)
}

// ListRuns returns the runs found in dir, newest first
func ListRuns(dir string) ([]RunInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []RunInfo{}, nil
		}
		return nil, fault.Wrap(err, fmsg.WithDesc("list runs", fmt.Sprintf("Could not read %s", dir)))
	}

	var runs []RunInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if info, ok := ParseFileName(entry.Name()); ok {
			runs = append(runs, info)
		}
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}
