package fmprobe

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/filemeta/fmprobe/internal/binary"
	"github.com/filemeta/fmprobe/internal/registry"
	"github.com/filemeta/fmprobe/internal/report"
	"github.com/filemeta/fmprobe/internal/sniff"

	// Decoders register themselves with the registry.
	_ "github.com/filemeta/fmprobe/internal/exif"
	_ "github.com/filemeta/fmprobe/internal/id3"
	_ "github.com/filemeta/fmprobe/internal/midi"
	_ "github.com/filemeta/fmprobe/internal/mp4"
)

// Result describes one probed file.
type Result struct {
	// Path of the file, as given
	Path string

	// Detected container format
	Format Format

	// File size in bytes
	Size int64

	// Diagnostics for failures confined to one unit (directory entry, box,
	// frame, track). Each was also printed inline.
	Warnings []Warning

	errs error
}

// Err returns all diagnostics as one error, or nil if there were none.
// errors.Is matches it against the ErrTruncated family of sentinels.
func (r *Result) Err() error {
	return r.errs
}

// Probe detects the format of r, decodes it and writes the report to w.
//
// The report starts with a "FileType: <format>" line. Failures confined to
// one unit are printed inline as "!! ..." lines and collected in
// Result.Warnings. If the container framing itself cannot be decoded, the
// failure is printed and returned, together with a Result describing what
// was decoded before it.
//
// An unrecognised signature returns an *UnsupportedFormatError and no
// Result.
func Probe(w io.Writer, r io.ReaderAt, size int64, path string, opts ...Option) (*Result, error) {
	return probe(w, r, size, path, buildOptions(opts))
}

func probe(w io.Writer, r io.ReaderAt, size int64, path string, o *probeOptions) (*Result, error) {
	format, err := sniff.Detect(r, size, path)
	if err != nil {
		return nil, err
	}

	dec := registry.Get(format)
	if dec == nil {
		return nil, &UnsupportedFormatError{
			Path:   path,
			Reason: fmt.Sprintf("no decoder available for format %s", format),
		}
	}

	cfg := o.config()
	out := report.New(w, cfg.Verbose())
	out.Field("FileType", format)
	if ext := strings.ToLower(filepath.Ext(path)); ext != "" && !slices.Contains(format.Extensions(), ext) {
		out.Detail("Extension %s is unusual for %s", ext, format)
	}

	decodeErr := dec.Decode(binary.NewSafeReader(r, size, path), out, cfg)
	if decodeErr != nil {
		out.Line("!! %v", decodeErr)
	}

	res := &Result{
		Path:     path,
		Format:   format,
		Size:     size,
		Warnings: out.Warnings(),
		errs:     out.Err(),
	}

	switch {
	case out.WriteErr() != nil:
		return res, fmt.Errorf("write report: %w", out.WriteErr())
	case decodeErr != nil:
		return res, fmt.Errorf("decode %s: %w", format, decodeErr)
	case o.strictParsing && res.errs != nil:
		return res, fmt.Errorf("strict parsing failed: %w", res.errs)
	}
	return res, nil
}

// ProbeFile opens the file at path and probes it.
//
// Example:
//
//	res, err := fmprobe.ProbeFile(os.Stdout, "song.mp3")
//	if err != nil {
//		return err
//	}
//	for _, w := range res.Warnings {
//		log.Printf("warning: %s", w)
//	}
func ProbeFile(w io.Writer, path string, opts ...Option) (*Result, error) {
	return probeFile(w, path, buildOptions(opts))
}

func probeFile(w io.Writer, path string, o *probeOptions) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}

	return probe(w, f, stat.Size(), path, o)
}

// ProbeFiles probes every path and writes the reports to w, each preceded
// by a "== path" line, in the order the paths were given.
//
// Files are decoded independently: a file that cannot be opened or decoded
// is reported inline and the batch carries on. Up to WithConcurrency files
// are decoded at once; each renders into its own buffer, so the output is
// the same as for a sequential run. Cancelling ctx stops files that have
// not started yet.
//
// The returned slice has one entry per path, nil where no Result was
// produced. The error aggregates every per-file failure.
//
// Example:
//
//	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
//	defer cancel()
//
//	results, err := fmprobe.ProbeFiles(ctx, os.Stdout, paths,
//	    fmprobe.WithConcurrency(runtime.NumCPU()),
//	)
func ProbeFiles(ctx context.Context, w io.Writer, paths []string, opts ...Option) ([]*Result, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	o := buildOptions(opts)

	results := make([]*Result, len(paths))
	failures := make([]error, len(paths))
	bufs := make([]bytes.Buffer, len(paths))
	done := make([]chan struct{}, len(paths))
	for i := range done {
		done[i] = make(chan struct{})
	}

	var g errgroup.Group
	g.SetLimit(o.concurrency)

	go func() {
		for i, path := range paths {
			i, path := i, path
			g.Go(func() error {
				defer close(done[i])

				if err := ctx.Err(); err != nil {
					failures[i] = err
					fmt.Fprintf(&bufs[i], "!! %v\n", err)
					return nil
				}

				res, err := probeFile(&bufs[i], path, o)
				results[i] = res
				failures[i] = err
				if err != nil && res == nil {
					fmt.Fprintf(&bufs[i], "!! %v\n", err)
				}
				return nil
			})
		}
	}()

	var errs *multierror.Error
	for i, path := range paths {
		<-done[i]

		fmt.Fprintf(w, "== %s\n", path)
		if _, err := bufs[i].WriteTo(w); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("write report: %w", err))
		}

		if err := failures[i]; err != nil {
			o.logger.Warn("probe failed", "path", path, "err", err)
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}
		o.logger.Debug("probed", "path", path, "format", results[i].Format, "warnings", len(results[i].Warnings))
	}

	// Every task has closed its channel; Wait only joins the goroutines.
	_ = g.Wait()

	return results, errs.ErrorOrNil()
}
