package topoprep

import (
	"fmt"
	"io"
)

// sampleSize is the number of output file names listed in the summary.
const sampleSize = 10

// RunSummary is the result part of the run summary.
type RunSummary struct {
	OutputDir   string
	Report      MaterializeReport
	SampleFiles []string // Up to sampleSize output file names, sorted.
}

// SampleOutputFiles returns the first n JPEG file names in dir, sorted lexicographically.
func SampleOutputFiles(dir string, n int) ([]string, error) {
	files, err := filesByExtInDir(dir, ".jpg")
	if err != nil {
		return nil, err
	}
	if len(files) > n {
		files = files[:n]
	}
	return files, nil
}

// NewRunSummary assembles the summary for a finished run, listing a sample of the files in
// the output directory.
func NewRunSummary(outputDir string, report MaterializeReport) (*RunSummary, error) {
	sample, err := SampleOutputFiles(outputDir, sampleSize)
	if err != nil {
		return nil, err
	}

	return &RunSummary{OutputDir: outputDir, Report: report, SampleFiles: sample}, nil
}

// WriteDistributions prints the instance count distributions before and after filtering to the
// range [minCount, maxCount].
func WriteDistributions(w io.Writer, all, selected Histogram, minCount, maxCount int) error {
	p := &errWriter{w: w}

	p.printf("\nObject count distribution (all images with annotations):\n")
	p.histogram(all)

	p.printf("\nFiltering to count range [%d, %d]...\n", minCount, maxCount)
	p.printf("Selected %d images:\n", selected.Total())
	p.histogram(selected)

	return p.err
}

// writeHistogram prints one "c=N: M images" line per bin.
func writeHistogram(w io.Writer, h Histogram) error {
	for _, b := range h {
		if _, err := fmt.Fprintf(w, "  c=%d: %d images\n", b.Count, b.Images); err != nil {
			return err
		}
	}
	if len(h) > 0 {
		mean, stdDev := h.Stats()
		if _, err := fmt.Fprintf(w, "  mean=%.2f std=%.2f\n", mean, stdDev); err != nil {
			return err
		}
	}
	return nil
}

// Write prints the totals, the missing source files and the sample of output file names to w.
func (s *RunSummary) Write(w io.Writer) error {
	p := &errWriter{w: w}

	r := s.Report
	p.printf("\nDone! Copied and resized %d images to %s\n", r.Copied, s.OutputDir)
	p.printf("Attempted %d, skipped %d missing, %d failed\n", r.Attempted, r.SkippedMissing,
		r.Failed)
	if len(r.Missing) > 0 {
		p.printf("\nMissing source files:\n")
		for _, path := range r.Missing {
			p.printf("  WARNING: %s not found\n", path)
		}
	}

	p.printf("\nSample filenames:\n")
	for _, name := range s.SampleFiles {
		p.printf("  %s\n", name)
	}

	return p.err
}

// errWriter remembers the first write error and drops all later writes.
type errWriter struct {
	w   io.Writer
	err error
}

func (p *errWriter) printf(format string, args ...interface{}) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *errWriter) histogram(h Histogram) {
	if p.err != nil {
		return
	}
	p.err = writeHistogram(p.w, h)
}
