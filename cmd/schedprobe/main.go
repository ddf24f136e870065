package main

import (
	"fmt"
	"os"
	"runtime"
	"sort"
	"strconv"
	"time"

	"go-threadmusic/config"
	"go-threadmusic/midi"
	"go-threadmusic/sched"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	switch os.Args[1] {
	case "ratio":
		probeRatio(argSeconds(2, 3))
	case "busy":
		probeBusy()
	case "dump":
		if len(os.Args) < 3 {
			usage()
			os.Exit(1)
		}
		dumpFile(os.Args[2])
	case "runs":
		dir := "."
		if len(os.Args) > 2 {
			dir = os.Args[2]
		}
		listRuns(dir)
	default:
		usage()
	}
}

func usage() {
	fmt.Println("Scheduling probe")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  ratio [secs]   - Sample the CPU/wall ratio and compare to the threshold")
	fmt.Println("  busy           - Time busy-work batches")
	fmt.Println("  dump <file>    - List the events in a .mid file")
	fmt.Println("  runs [dir]     - List finished runs, newest first")
}

func argSeconds(i, def int) int {
	if len(os.Args) <= i {
		return def
	}
	n, err := strconv.Atoi(os.Args[i])
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func probeRatio(secs int) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	for _, kind := range []string{sched.ClockProcess, sched.ClockThread} {
		cpu, err := sched.NewCPUClock(kind)
		if err != nil {
			fmt.Printf("%s clock: %v\n", kind, err)
			continue
		}

		fmt.Printf("=== %s clock, %ds, threshold %g ===\n", kind, secs, sched.DefaultThreshold)

		pressure := sched.NewPressure(sched.DefaultBusyMin, sched.DefaultBusyMax, time.Now().UnixNano())
		start := time.Now()
		c0, _ := cpu.Now()
		sampler := sched.NewSampler(sched.DefaultThreshold, 0, c0)

		var ratios []float64
		scheduled, edges := 0, 0
		was := false
		for time.Since(start) < time.Duration(secs)*time.Second {
			c, err := cpu.Now()
			if err != nil {
				fmt.Printf("read: %v\n", err)
				break
			}
			r := sampler.Observe(time.Since(start), c)
			ratios = append(ratios, r.Ratio)
			if r.Scheduled {
				scheduled++
			}
			if r.Scheduled != was {
				edges++
				was = r.Scheduled
			}
			pressure.Apply()
			time.Sleep(time.Millisecond)
		}

		if len(ratios) == 0 {
			continue
		}
		sort.Float64s(ratios)
		fmt.Printf("  samples:   %d\n", len(ratios))
		fmt.Printf("  scheduled: %d (%.1f%%)\n", scheduled, 100*float64(scheduled)/float64(len(ratios)))
		fmt.Printf("  edges:     %d\n", edges)
		for _, q := range []float64{0.05, 0.25, 0.5, 0.75, 0.95} {
			fmt.Printf("  p%-3.0f      %.5f\n", q*100, ratios[int(q*float64(len(ratios)-1))])
		}
	}
}

func probeBusy() {
	for _, n := range []int{sched.DefaultBusyMin, (sched.DefaultBusyMin + sched.DefaultBusyMax) / 2, sched.DefaultBusyMax} {
		const reps = 200
		start := time.Now()
		for i := 0; i < reps; i++ {
			sched.BusyWork(n)
		}
		per := time.Since(start) / reps
		fmt.Printf("  %6d iterations: %v per batch\n", n, per)
	}
}

func dumpFile(path string) {
	song, err := midi.ReadFile(path)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%s: tpq=%d tempo=%d meter=%d/4 tracks=%d events=%d\n",
		path, song.TPQ, song.Tempo, song.BeatsPerBar, song.Tracks, len(song.Events))
	for _, ev := range song.Events {
		fmt.Println(ev)
	}
}

func listRuns(dir string) {
	runs, err := config.ListRuns(dir)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if len(runs) == 0 {
		fmt.Println("No runs found")
		return
	}
	for _, r := range runs {
		fmt.Printf("  %s  %2d threads  %4ds  %2d phases  %s\n",
			r.Timestamp.Format("2006-01-02 15:04:05"), r.Workers, r.DurationSec, r.Phases, r.Filename)
	}
}
