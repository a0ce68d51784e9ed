package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sensorable/topoprep"
)

// config holds the command line options. The defaults can be overridden with environment
// variables, which may in turn be set in a .env file.
type config struct {
	imageDirPath       string  // The input directory with the source images.
	annotationFilePath string  // The COCO instances annotation file.
	outputDirPath      string  // The output directory for the prepared dataset.
	minCount           int     // The min. instance count to select an image.
	maxCount           int     // The max. instance count to select an image.
	imageSize          int     // The width and height of output images.
	minArea            float64 // The min. annotation area for an instance to be counted.
	jpegQuality        int     // The JPEG quality of output images.
	workers            int     // The number of images processed concurrently.
	progress           bool    // Show a progress bar.
}

// loadEnvFile loads the environment variables from the .env file at path. A missing file is
// not an error.
func loadEnvFile(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return errors.Wrapf(err, "failed to load %q", path)
	}
	return nil
}

// defaultConfig returns the built-in defaults, overridden by the environment.
func defaultConfig() config {
	return config{
		imageDirPath:       getEnv("TOPOPREP_IMAGES", ""),
		annotationFilePath: getEnv("TOPOPREP_ANNOTATIONS", ""),
		outputDirPath:      getEnv("TOPOPREP_OUT", ""),
		minCount:           getEnvAsInt("TOPOPREP_MIN_COUNT", 1),
		maxCount:           getEnvAsInt("TOPOPREP_MAX_COUNT", 7),
		imageSize:          getEnvAsInt("TOPOPREP_IMAGE_SIZE", 256),
		minArea:            getEnvAsFloat("TOPOPREP_MIN_AREA", 1024),
		jpegQuality:        getEnvAsInt("TOPOPREP_JPEG_QUALITY", topoprep.DefaultJPEGQuality),
		workers:            getEnvAsInt("TOPOPREP_WORKERS", runtime.NumCPU()),
	}
}

// registerFlags defines the command line flags on fs, using the current values as defaults.
func (c *config) registerFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.imageDirPath, "images", c.imageDirPath,
		"The `path` to the source image directory")
	fs.StringVar(&c.annotationFilePath, "annotations", c.annotationFilePath,
		"The `path` to the COCO instances annotation file")
	fs.StringVar(&c.outputDirPath, "out", c.outputDirPath,
		"The `path` to the output directory (created if missing)")

	fs.IntVar(&c.minCount, "min-count", c.minCount,
		"The minimum object count to include")
	fs.IntVar(&c.maxCount, "max-count", c.maxCount,
		"The maximum object count to include")
	fs.Float64Var(&c.minArea, "min-area", c.minArea,
		"The minimum annotation `area` to count as an object (filters tiny and noisy annotations)")

	fs.IntVar(&c.imageSize, "image-size", c.imageSize,
		"The width and height in `pixels` of the output images")
	fs.IntVar(&c.jpegQuality, "jpeg-quality", c.jpegQuality,
		"The quality to use when encoding JPEGs [1, 100]")
	fs.IntVar(&c.workers, "workers", c.workers,
		"The number of images to process concurrently")
	fs.BoolVar(&c.progress, "progress", c.progress,
		"Show a progress bar while writing images")
}

// validate checks the options and cleans the paths.
func (c *config) validate() error {
	switch {
	case c.imageDirPath == "":
		return configError("-images", "missing source image directory")
	case c.annotationFilePath == "":
		return configError("-annotations", "missing annotation file")
	case c.outputDirPath == "":
		return configError("-out", "missing output directory")
	case c.imageSize <= 0:
		return configError("-image-size", "must be positive")
	case c.minArea < 0:
		return configError("-min-area", "must not be negative")
	case c.jpegQuality < 1 || c.jpegQuality > 100:
		return configError("-jpeg-quality", "must be in [1, 100]")
	case c.workers < 1:
		return configError("-workers", "must be at least 1")
	}

	c.imageDirPath = filepath.Clean(c.imageDirPath)
	c.annotationFilePath = filepath.Clean(c.annotationFilePath)
	c.outputDirPath = filepath.Clean(c.outputDirPath)
	if c.imageDirPath == c.outputDirPath {
		return configError("-out", "the image input and output paths cannot be identical")
	}

	if info, err := os.Stat(c.imageDirPath); err != nil || !info.IsDir() {
		return configError("-images", "cannot read directory %q", c.imageDirPath)
	}

	if c.minCount > c.maxCount {
		log.Printf("Empty count range [%d, %d], no images will be selected", c.minCount, c.maxCount)
	}
	return nil
}

func configError(flagName, format string, args ...interface{}) error {
	return &topoprep.Error{
		Kind: topoprep.ConfigError,
		Path: flagName,
		Err:  errors.Errorf(format, args...),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		log.Printf("Ignoring invalid integer %s=%q", key, value)
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
		log.Printf("Ignoring invalid number %s=%q", key, value)
	}
	return defaultValue
}
