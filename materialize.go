package topoprep

// Writes the selected images as a flat, count labelled dataset.

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// DefaultJPEGQuality is the JPEG quality used when MaterializeOptions.JPEGQuality is zero.
const DefaultJPEGQuality = 95

// ItemStatus is the outcome of materializing a single image.
type ItemStatus int

// The item outcomes.
const (
	Success ItemStatus = iota // The canonical image was written.
	Skipped                   // The image has no known or existing source file.
	Failed                    // Loading, processing or writing the image failed.
)

func (s ItemStatus) String() string {
	switch s {
	case Success:
		return "success"
	case Skipped:
		return "skipped"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("ItemStatus(%d)", int(s))
}

// ItemResult describes what happened to one selected image.
type ItemResult struct {
	ID         int64
	Count      int
	Status     ItemStatus
	SourcePath string // Empty if the image ID has no file name.
	OutputName string // Set on Success.
	Err        error  // The reason for Skipped (nil if the file name is unknown) and Failed.
}

// MaterializeOptions configures Materialize.
type MaterializeOptions struct {
	SourceDir   string // The directory with the source images.
	OutputDir   string // The output directory. Created if it does not exist.
	ImageSize   int    // The width and height of the output images.
	JPEGQuality int    // In [1, 100]; zero selects DefaultJPEGQuality.
	Workers     int    // The number of concurrent workers; <= 0 selects runtime.NumCPU().

	// OnItem, if not nil, is called once per selected image as soon as it is done. Calls are
	// made from a single goroutine but in completion order, not in ID order.
	OnItem func(ItemResult)
}

// MaterializeReport summarizes a Materialize run.
type MaterializeReport struct {
	Attempted      int
	Copied         int
	SkippedMissing int
	Failed         int
	Missing        []string     // Source paths that did not exist, in ID order.
	Results        []ItemResult // One per selected image, in ID order.
}

// OutputFileName returns the output file name for an image with the given instance count and
// source file name, e.g. "3_000000001.jpg" for 3 and "000000001.jpg".
func OutputFileName(count int, sourceFileName string) string {
	return fmt.Sprintf("%d_%s.jpg", count, baseNoExt(sourceFileName))
}

// validate checks the options and fills in defaults.
func (o *MaterializeOptions) validate() error {
	switch {
	case o.SourceDir == "":
		return configErrorf("source_dir", "missing source image directory")
	case o.OutputDir == "":
		return configErrorf("output_dir", "missing output directory")
	case o.ImageSize <= 0:
		return configErrorf("image_size", "must be positive, got %d", o.ImageSize)
	case o.JPEGQuality < 0 || o.JPEGQuality > 100:
		return configErrorf("jpeg_quality", "must be in [1, 100], got %d", o.JPEGQuality)
	case filepath.Clean(o.SourceDir) == filepath.Clean(o.OutputDir):
		return configErrorf("output_dir", "the image input and output paths cannot be identical")
	}

	if o.JPEGQuality == 0 {
		o.JPEGQuality = DefaultJPEGQuality
	}
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}
	return nil
}

// prepareOutputDir creates dir if necessary and verifies that files can be created in it.
func prepareOutputDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return newError(WriteError, dir, errors.Wrap(err, "cannot create output directory"))
	}

	probe, err := os.CreateTemp(dir, ".topoprep-probe-*")
	if err != nil {
		return newError(WriteError, dir, errors.Wrap(err, "output directory is not writable"))
	}
	probePath := probe.Name()
	_ = probe.Close()
	if err := os.Remove(probePath); err != nil {
		return newError(WriteError, dir, errors.Wrap(err, "cannot remove probe file"))
	}

	return nil
}

// materializeJob is a single selected image.
type materializeJob struct {
	slot     int // Index into the result list.
	id       int64
	count    int
	fileName string
	known    bool // Whether the image ID has a file name.
}

// Materialize canonicalizes every image in selection and writes it to opts.OutputDir under
// OutputFileName. fileNames maps image IDs to source file names relative to opts.SourceDir.
//
// Errors of individual images are recorded in the report and never abort the run. The returned
// error is a ConfigError for invalid options or a WriteError if the output directory cannot be
// used, in which case no image is processed.
func Materialize(selection Counts, fileNames map[int64]string, opts MaterializeOptions) (
	MaterializeReport, error) {

	if err := opts.validate(); err != nil {
		return MaterializeReport{}, err
	}
	if err := prepareOutputDir(opts.OutputDir); err != nil {
		return MaterializeReport{}, err
	}

	// Process in ascending ID order so that the report and the log are reproducible.
	ids := make([]int64, 0, len(selection))
	for id := range selection {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	log.Printf("Writing %d images to %s", len(ids), opts.OutputDir)

	// Limit the number of goroutines in flight, as they load potentially large images into memory.
	numTasks := opts.Workers
	if len(ids) < numTasks {
		numTasks = len(ids)
	}
	workQueue := make(chan materializeJob, 2*numTasks)
	resultCh := make(chan materializeResult, 2*numTasks)

	var wg sync.WaitGroup
	wg.Add(numTasks)
	for i := 0; i < numTasks; i++ {
		go func() {
			defer wg.Done()
			for job := range workQueue {
				resultCh <- materializeResult{slot: job.slot, ItemResult: materializeItem(job, opts)}
			}
		}()
	}

	// Feed the work queue.
	go func() {
		for i, id := range ids {
			fileName, known := fileNames[id]
			workQueue <- materializeJob{slot: i, id: id, count: selection[id], fileName: fileName,
				known: known}
		}
		close(workQueue)
	}()

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	// Collect the results. Each slot is written exactly once.
	results := make([]ItemResult, len(ids))
	for r := range resultCh {
		results[r.slot] = r.ItemResult
		if opts.OnItem != nil {
			opts.OnItem(r.ItemResult)
		}
	}

	return aggregate(results), nil
}

// materializeResult is an ItemResult tagged with its slot in the result list.
type materializeResult struct {
	ItemResult
	slot int
}

// aggregate builds the report from the per image results and logs the problems.
func aggregate(results []ItemResult) MaterializeReport {
	report := MaterializeReport{Attempted: len(results), Results: results}
	for _, r := range results {
		switch r.Status {
		case Success:
			report.Copied++
		case Skipped:
			report.SkippedMissing++
			if r.Err != nil {
				log.Printf("WARNING: %s not found, skipping", r.SourcePath)
				report.Missing = append(report.Missing, r.SourcePath)
			}
		case Failed:
			report.Failed++
			log.Printf("ERROR processing %s (image %d): %v", r.SourcePath, r.ID, r.Err)
		}
	}
	return report
}

// materializeItem loads, canonicalizes and writes a single image.
func materializeItem(job materializeJob, opts MaterializeOptions) ItemResult {
	result := ItemResult{ID: job.id, Count: job.count}
	if !job.known {
		result.Status = Skipped
		return result
	}

	result.SourcePath = filepath.Join(opts.SourceDir, job.fileName)
	if _, err := os.Stat(result.SourcePath); os.IsNotExist(err) {
		result.Status = Skipped
		result.Err = newError(MissingSourceError, result.SourcePath, err)
		return result
	}

	img, _, err := loadImage(result.SourcePath)
	if err != nil {
		result.Status = Failed
		result.Err = err
		if IsKind(err, MissingSourceError) {
			// Removed after the existence check.
			result.Status = Skipped
		}
		return result
	}

	canonical, err := Canonicalize(img, opts.ImageSize)
	if err != nil {
		result.Status = Failed
		result.Err = newError(DecodeError, result.SourcePath, err)
		return result
	}

	outName := OutputFileName(job.count, job.fileName)
	if err := saveJPEG(filepath.Join(opts.OutputDir, outName), canonical, opts.JPEGQuality); err != nil {
		result.Status = Failed
		result.Err = err
		return result
	}

	result.Status = Success
	result.OutputName = outName
	return result
}
