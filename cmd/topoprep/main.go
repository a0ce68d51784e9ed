// Prepares a count labelled image dataset from COCO instance annotations.
//
// Images are selected by their number of object instances, center-cropped to a square, resized
// and written as {count}_{name}.jpg to a flat output directory.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/sensorable/topoprep"
	"gopkg.in/cheggaaa/pb.v1"
)

func main() {
	if err := loadEnvFile(getEnv("TOPOPREP_ENV_FILE", ".env")); err != nil {
		log.Fatal("Failed to load the environment: ", err)
	}

	cfg := defaultConfig()
	cfg.registerFlags(flag.CommandLine)
	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Usage of %s:\n", filepath.Base(os.Args[0]))
		_, _ = fmt.Fprintln(os.Stderr,
			"  -images <dir> -annotations <file> -out <dir> [options]")
		_, _ = fmt.Fprintln(os.Stderr)
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := cfg.validate(); err != nil {
		log.Print(err)
		flag.Usage()
		os.Exit(2)
	}

	if err := run(cfg, os.Stdout); err != nil {
		log.Fatal("Dataset preparation failed: ", err)
	}
}

// run prepares the dataset and writes the summary to out.
func run(cfg config, out io.Writer) error {
	coco, err := topoprep.FromCOCO(cfg.annotationFilePath)
	if err != nil {
		return err
	}

	idx := topoprep.BuildIndex(coco.Images, coco.Annotations, cfg.minArea)
	selection := topoprep.SelectRange(idx.Counts, cfg.minCount, cfg.maxCount)

	err = topoprep.WriteDistributions(out, topoprep.NewHistogram(idx.Counts),
		topoprep.NewHistogram(selection), cfg.minCount, cfg.maxCount)
	if err != nil {
		return err
	}

	opts := topoprep.MaterializeOptions{
		SourceDir:   cfg.imageDirPath,
		OutputDir:   cfg.outputDirPath,
		ImageSize:   cfg.imageSize,
		JPEGQuality: cfg.jpegQuality,
		Workers:     cfg.workers,
	}
	var bar *pb.ProgressBar
	if cfg.progress && len(selection) > 0 {
		bar = pb.New(len(selection))
		bar.Output = os.Stderr
		bar.Start()
		opts.OnItem = func(topoprep.ItemResult) { bar.Increment() }
	}

	report, err := topoprep.Materialize(selection, idx.FileNames, opts)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return err
	}

	summary, err := topoprep.NewRunSummary(cfg.outputDirPath, report)
	if err != nil {
		return err
	}
	return summary.Write(out)
}
