// Package batch converts many files at once. Each file is converted in
// isolation: one failure is recorded and the rest of the batch continues.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tsawler/docmorph"
	"github.com/tsawler/docmorph/format"
)

// Status is the outcome of one file.
type Status int

const (
	StatusConverted Status = iota
	StatusSkipped
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusConverted:
		return "OK"
	case StatusSkipped:
		return "SKIP"
	case StatusFailed:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Options configures a batch run.
type Options struct {
	// To is the target format; format.Unknown uses each source's default.
	To format.Format
	// Output names the output file. It is only valid for a single file.
	Output string
	// OutputDir, when set, receives the per-format output folders instead
	// of the source directories.
	OutputDir string
	// Workers bounds the number of concurrent conversions.
	Workers int
	// Overwrite replaces existing outputs instead of skipping them.
	Overwrite bool
	// Recursive scans directories recursively.
	Recursive bool
	// Strict fails files with malformed tables.
	Strict bool
	// Logger receives per-file events. Nil discards them.
	Logger *slog.Logger
}

// DefaultWorkers is used when Options.Workers is not positive.
const DefaultWorkers = 4

// Job is one planned conversion.
type Job struct {
	Source string
	Output string
	From   format.Format
	To     format.Format
	// err is set when the job cannot be run at all.
	err error
}

// FileResult is the outcome of one job.
type FileResult struct {
	Job
	Status   Status
	Warnings []docmorph.Warning
	Err      error
	Duration time.Duration
}

// Line returns the status line printed for the file.
func (r FileResult) Line() string {
	name := filepath.Base(r.Source)
	switch r.Status {
	case StatusConverted:
		return fmt.Sprintf("[OK] %s -> %s: %s -> %s", r.From.FolderName(), r.To.FolderName(), name, filepath.Base(r.Output))
	case StatusSkipped:
		return fmt.Sprintf("[SKIP] %s (output exists)", name)
	default:
		return fmt.Sprintf("[ERROR] %s: %v", name, r.Err)
	}
}

// Result holds the outcome of a batch run, in input order.
type Result struct {
	Files []FileResult
}

// Count returns how many files ended with the given status.
func (r Result) Count(s Status) int {
	n := 0
	for _, f := range r.Files {
		if f.Status == s {
			n++
		}
	}
	return n
}

// HasFailures reports whether any file failed.
func (r Result) HasFailures() bool {
	return r.Count(StatusFailed) > 0
}

// Summary returns a one-line count of outcomes.
func (r Result) Summary() string {
	return fmt.Sprintf("%d converted, %d skipped, %d failed (total: %d)",
		r.Count(StatusConverted), r.Count(StatusSkipped), r.Count(StatusFailed), len(r.Files))
}

// Print writes one status line per file to w, and a summary when more
// than one file was processed.
func (r Result) Print(w io.Writer) {
	for _, f := range r.Files {
		fmt.Fprintln(w, f.Line())
	}
	if len(r.Files) > 1 {
		fmt.Fprintf(w, "\nBatch summary: %s\n", r.Summary())
	}
}

// Plan expands paths into jobs. Directories are scanned and their outputs
// placed in per-format folders inside them; files are converted next to
// themselves, or to opts.Output.
func Plan(paths []string, opts Options) ([]Job, error) {
	if opts.Output != "" && len(paths) != 1 {
		return nil, errors.New("an output path can only be used with a single input file")
	}

	var jobs []Job
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			jobs = append(jobs, Job{Source: path, err: fmt.Errorf("%w: %w", docmorph.ErrUnreadableSource, err)})
			continue
		}

		if !info.IsDir() {
			job := newJob(path, opts.To)
			if job.err == nil {
				switch {
				case opts.Output != "":
					job.Output = opts.Output
				case opts.OutputDir != "":
					job.Output = outputName(filepath.Join(opts.OutputDir, job.To.FolderName()), path, job.To)
				default:
					job.Output = outputName(filepath.Dir(path), path, job.To)
				}
			}
			jobs = append(jobs, job)
			continue
		}

		if opts.Output != "" {
			return nil, errors.New("an output path cannot be used with a directory")
		}
		files, err := Scan(path, opts.Recursive)
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", path, err)
		}
		root := path
		if opts.OutputDir != "" {
			root = opts.OutputDir
		}
		for _, file := range files {
			job := newJob(file, opts.To)
			if job.err == nil {
				job.Output = outputName(filepath.Join(root, job.To.FolderName()), file, job.To)
			}
			jobs = append(jobs, job)
		}
	}
	return jobs, nil
}

func newJob(path string, to format.Format) Job {
	job := Job{Source: path, From: format.Detect(path), To: to}
	if job.From == format.Unknown {
		job.err = fmt.Errorf("%w: unrecognised file type", docmorph.ErrUnsupportedConversion)
		return job
	}
	if job.To == format.Unknown {
		job.To = docmorph.DefaultTarget(job.From)
	}
	if !docmorph.Supported(job.From, job.To) {
		job.err = fmt.Errorf("%w: %s to %s", docmorph.ErrUnsupportedConversion, job.From, job.To)
	}
	return job
}

func outputName(dir, source string, to format.Format) string {
	stem := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	return filepath.Join(dir, stem+to.Extension())
}

// Run converts the jobs with at most opts.Workers conversions in flight.
// Cancelling ctx stops jobs that have not started; they are reported as
// failed.
func Run(ctx context.Context, jobs []Job, opts Options) Result {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	results := make([]FileResult, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, job := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = FileResult{Job: job, Status: StatusFailed, Err: err}
				return nil
			}
			results[i] = convert(job, opts)
			r := results[i]
			switch r.Status {
			case StatusFailed:
				logger.Warn("conversion failed", "path", job.Source, "from", job.From, "to", job.To, "kind", docmorph.KindOf(r.Err), "err", r.Err)
			case StatusSkipped:
				logger.Debug("output exists", "path", job.Source, "output", job.Output)
			default:
				logger.Info("converted", "path", job.Source, "from", job.From, "to", job.To,
					"output", job.Output, "warnings", len(r.Warnings), "duration", r.Duration)
			}
			return nil
		})
	}
	_ = g.Wait()
	return Result{Files: results}
}

func convert(job Job, opts Options) FileResult {
	start := time.Now()
	r := FileResult{Job: job}
	if job.err != nil {
		r.Status, r.Err = StatusFailed, job.err
		return r
	}
	if !opts.Overwrite {
		if _, err := os.Stat(job.Output); err == nil {
			r.Status = StatusSkipped
			return r
		}
	}
	if err := os.MkdirAll(filepath.Dir(job.Output), 0o755); err != nil {
		r.Status, r.Err = StatusFailed, fmt.Errorf("%w: %w", docmorph.ErrEmissionFailure, err)
		return r
	}

	conv := docmorph.Open(job.Source).To(job.To)
	if opts.Strict {
		conv = conv.Strict()
	}
	r.Warnings, r.Err = conv.WriteFile(job.Output)
	r.Duration = time.Since(start)
	if r.Err != nil {
		r.Status = StatusFailed
	}
	return r
}

// ConvertPaths plans and runs a batch.
func ConvertPaths(ctx context.Context, paths []string, opts Options) (Result, error) {
	jobs, err := Plan(paths, opts)
	if err != nil {
		return Result{}, err
	}
	return Run(ctx, jobs, opts), nil
}
