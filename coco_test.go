package topoprep

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseCOCO(t *testing.T) {
	enc := []byte(`{
		"info": {"description": "ignored"},
		"images": [
			{"id": 1, "file_name": "000000000001.jpg", "width": 640, "height": 480},
			{"id": 2, "file_name": "000000000002.jpg"}
		],
		"annotations": [
			{"id": 10, "image_id": 1, "iscrowd": 0, "area": 2048.5, "bbox": [0, 0, 10, 10]},
			{"id": 11, "image_id": 1, "iscrowd": 1, "area": 5000},
			{"id": 12, "image_id": 2, "iscrowd": true, "area": 5000},
			{"id": 13, "image_id": 2}
		]
	}`)

	data, err := parseCOCO(enc)
	if err != nil {
		t.Fatalf("parseCOCO failed: %v", err)
	}

	if len(data.Images) != 2 {
		t.Fatalf("got %d images, want 2", len(data.Images))
	}
	if data.Images[0] != (ImageRecord{ID: 1, FileName: "000000000001.jpg"}) {
		t.Errorf("unexpected first image: %+v", data.Images[0])
	}

	want := []AnnotationRecord{
		{ImageID: 1, IsCrowd: false, Area: 2048.5},
		{ImageID: 1, IsCrowd: true, Area: 5000},
		{ImageID: 2, IsCrowd: true, Area: 5000},
		{ImageID: 2, IsCrowd: false, Area: 0},
	}
	if len(data.Annotations) != len(want) {
		t.Fatalf("got %d annotations, want %d", len(data.Annotations), len(want))
	}
	for i, a := range data.Annotations {
		if a != want[i] {
			t.Errorf("annotation %d: got %+v, want %+v", i, a, want[i])
		}
	}
}

func TestCrowdFlagUnmarshal(t *testing.T) {
	tests := []struct {
		in   string
		want CrowdFlag
		err  bool
	}{
		{"0", false, false},
		{"1", true, false},
		{"2", true, false},
		{"0.0", false, false},
		{"true", true, false},
		{"false", false, false},
		{"null", false, false},
		{`"yes"`, false, true},
	}
	for _, tt := range tests {
		var c CrowdFlag
		err := c.UnmarshalJSON([]byte(tt.in))
		if (err != nil) != tt.err {
			t.Errorf("%s: unexpected error state: %v", tt.in, err)
			continue
		}
		if !tt.err && c != tt.want {
			t.Errorf("%s: got %v, want %v", tt.in, c, tt.want)
		}
	}
}

func TestFromCOCOErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := FromCOCO(filepath.Join(dir, "missing.json")); !IsKind(err, AnnotationParseError) {
		t.Errorf("missing file: expected AnnotationParseError, got %v", err)
	}

	for name, content := range map[string]string{
		"truncated.json": `{"images": [`,
		"list.json":      `[1, 2, 3]`,
		"empty.json":     `{}`,
		"noimages.json":  `{"annotations": [{"image_id": 1, "area": 2000}]}`,
		"noanns.json":    `{"images": [{"id": 1, "file_name": "a.jpg"}]}`,
		"badcrowd.json":  `{"annotations": [{"image_id": 1, "iscrowd": "x"}]}`,
	} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
		if _, err := FromCOCO(path); !IsKind(err, AnnotationParseError) {
			t.Errorf("%s: expected AnnotationParseError, got %v", name, err)
		}
	}
}

func TestFromCOCO(t *testing.T) {
	path := filepath.Join(t.TempDir(), "instances.json")
	content := `{"images": [{"id": 42, "file_name": "a.jpg"}], "annotations": []}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write annotation file: %v", err)
	}

	data, err := FromCOCO(path)
	if err != nil {
		t.Fatalf("FromCOCO failed: %v", err)
	}
	if len(data.Images) != 1 || len(data.Annotations) != 0 {
		t.Errorf("unexpected contents: %+v", data)
	}
}
