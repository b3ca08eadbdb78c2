// Command fmprobe prints the metadata structures of TIFF/JPEG, MP4, MP3 and
// MIDI files.
//
// Usage:
//
//	fmprobe [-v N] [-debug] [-j N] <file|glob>...
//
// Each argument is expanded as a glob pattern; an argument that matches
// nothing is probed as a literal path so that the failure is reported. The
// exit status is 1 if any file could not be probed.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/filemeta/fmprobe"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("fmprobe", flag.ContinueOnError)
	fs.SetOutput(stderr)
	verbosity := fs.Int("v", 0, "verbosity: 0 prints fields, 1 or more adds offsets and hex dumps")
	debug := fs.Bool("debug", false, "log per-file progress to stderr")
	jobs := fs.Int("j", 1, "number of files to decode at once")
	version := fs.Bool("version", false, "print version information and exit")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: fmprobe [-v N] [-debug] [-j N] <file|glob>...")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *version {
		fmt.Fprintln(stdout, fmprobe.GetVersionInfo())
		return 0
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	level := slog.LevelWarn
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	paths, err := expand(fs.Args())
	if err != nil {
		logger.Error("bad pattern", "err", err)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	_, err = fmprobe.ProbeFiles(ctx, stdout, paths,
		fmprobe.WithVerbosity(*verbosity),
		fmprobe.WithConcurrency(*jobs),
		fmprobe.WithLogger(logger),
	)
	if err != nil {
		return 1
	}
	return 0
}

// expand replaces each glob pattern with its matches, keeping patterns that
// match nothing.
func expand(patterns []string) ([]string, error) {
	var paths []string
	for _, p := range patterns {
		matches, err := filepath.Glob(p)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", p, err)
		}
		if len(matches) == 0 {
			paths = append(paths, p)
			continue
		}
		paths = append(paths, matches...)
	}
	return paths, nil
}
