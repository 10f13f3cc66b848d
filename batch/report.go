package batch

import (
	"io"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/tsawler/docmorph"
)

// Report is the serialisable form of a batch result.
type Report struct {
	GeneratedAt time.Time    `yaml:"generated_at"`
	Converted   int          `yaml:"converted"`
	Skipped     int          `yaml:"skipped"`
	Failed      int          `yaml:"failed"`
	Files       []FileReport `yaml:"files"`
}

// FileReport describes one file of a batch.
type FileReport struct {
	Source     string   `yaml:"source"`
	Output     string   `yaml:"output,omitempty"`
	From       string   `yaml:"from,omitempty"`
	To         string   `yaml:"to,omitempty"`
	Status     string   `yaml:"status"`
	Kind       string   `yaml:"kind,omitempty"`
	Error      string   `yaml:"error,omitempty"`
	Warnings   []string `yaml:"warnings,omitempty"`
	DurationMS int64    `yaml:"duration_ms"`
}

// Report summarises the result.
func (r Result) Report() Report {
	rep := Report{
		GeneratedAt: time.Now().UTC(),
		Converted:   r.Count(StatusConverted),
		Skipped:     r.Count(StatusSkipped),
		Failed:      r.Count(StatusFailed),
	}
	for _, f := range r.Files {
		fr := FileReport{
			Source:     f.Source,
			Output:     f.Output,
			From:       f.From.Name(),
			To:         f.To.Name(),
			Status:     f.Status.String(),
			DurationMS: f.Duration.Milliseconds(),
		}
		if f.Err != nil {
			fr.Kind = docmorph.KindOf(f.Err)
			fr.Error = f.Err.Error()
		}
		for _, w := range f.Warnings {
			fr.Warnings = append(fr.Warnings, w.String())
		}
		rep.Files = append(rep.Files, fr)
	}
	return rep
}

// WriteReport writes the result as YAML.
func (r Result) WriteReport(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r.Report()); err != nil {
		return err
	}
	return enc.Close()
}
