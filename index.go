package topoprep

import "log"

// Counts maps image IDs to their number of qualifying object instances. Images without a
// qualifying instance have no entry.
type Counts map[int64]int

// Index is the per image data derived from a COCO annotation file.
type Index struct {
	FileNames map[int64]string // Image ID to source file name.
	Counts    Counts           // Image ID to qualifying instance count.
}

// BuildIndex maps image IDs to file names and counts the qualifying annotations per image.
//
// An annotation qualifies if it is not a crowd annotation and its area is at least minArea.
// Duplicate image IDs in images are resolved by the last occurrence.
func BuildIndex(images []ImageRecord, annotations []AnnotationRecord, minArea float64) *Index {
	idx := &Index{
		FileNames: make(map[int64]string, len(images)),
		Counts:    make(Counts),
	}
	for _, img := range images {
		idx.FileNames[img.ID] = img.FileName
	}

	skippedCrowd, skippedArea := 0, 0
	for _, a := range annotations {
		if a.IsCrowd {
			skippedCrowd++
			continue
		}
		if a.Area < minArea {
			skippedArea++
			continue
		}
		idx.Counts[a.ImageID]++
	}

	log.Printf("Counted instances for %d images (skipped %d crowd and %d small annotations)",
		len(idx.Counts), skippedCrowd, skippedArea)
	return idx
}
