package topoprep

// COCO instance annotation specific functionality.

import (
	"bytes"
	"encoding/json"
	"log"
	"os"
	"strconv"

	"github.com/pkg/errors"
)

// ImageRecord is an entry of the COCO "images" list. Only the fields used for dataset preparation
// are decoded.
type ImageRecord struct {
	ID       int64  `json:"id"`
	FileName string `json:"file_name"`
}

// AnnotationRecord is an entry of the COCO "annotations" list. Area is zero if absent.
type AnnotationRecord struct {
	ImageID int64     `json:"image_id"`
	IsCrowd CrowdFlag `json:"iscrowd"`
	Area    float64   `json:"area"`
}

// CrowdFlag is the COCO "iscrowd" field. COCO writes it as 0 or 1, other tools as a boolean; any
// non-zero number is true.
type CrowdFlag bool

// UnmarshalJSON accepts booleans, numbers and null.
func (c *CrowdFlag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "null", "false":
		*c = false
		return nil
	case "true":
		*c = true
		return nil
	}

	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return errors.Errorf("invalid iscrowd value %s", data)
	}
	*c = v != 0
	return nil
}

// COCOFile is the subset of a COCO instances file read by FromCOCO.
type COCOFile struct {
	Images      []ImageRecord      `json:"images"`
	Annotations []AnnotationRecord `json:"annotations"`
}

// FromCOCO reads and parses the COCO instances annotation file at path.
//
// Any failure to read or decode the file is returned as an AnnotationParseError.
func FromCOCO(path string) (*COCOFile, error) {
	enc, err := os.ReadFile(path)
	if err != nil {
		return nil, newError(AnnotationParseError, path, err)
	}

	data, err := parseCOCO(enc)
	if err != nil {
		return nil, newError(AnnotationParseError, path, err)
	}
	log.Printf("Parsed %d images and %d annotations from %s", len(data.Images),
		len(data.Annotations), path)

	return data, nil
}

// parseCOCO decodes the encoded COCO file.
func parseCOCO(enc []byte) (*COCOFile, error) {
	var data COCOFile
	if err := json.Unmarshal(enc, &data); err != nil {
		return nil, errors.Wrap(err, "failed to parse COCO input")
	}
	if data.Images == nil {
		return nil, errors.New(`missing "images" list`)
	}
	if data.Annotations == nil {
		return nil, errors.New(`missing "annotations" list`)
	}

	return &data, nil
}
