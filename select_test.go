package topoprep

import "testing"

func TestSelectRange(t *testing.T) {
	counts := Counts{1: 1, 2: 2, 3: 7, 4: 8, 5: 0, 6: 15}

	tests := []struct {
		name     string
		min, max int
		want     []int64
	}{
		{"inclusive bounds", 1, 7, []int64{1, 2, 3}},
		{"single value", 7, 7, []int64{3}},
		{"inverted", 8, 1, nil},
		{"no match", 9, 14, nil},
		{"everything", 0, 100, []int64{1, 2, 3, 4, 5, 6}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SelectRange(counts, tt.min, tt.max)
			if got == nil {
				t.Fatal("got a nil map")
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want ids %v", got, tt.want)
			}
			for _, id := range tt.want {
				if c, ok := got[id]; !ok || c != counts[id] {
					t.Errorf("image %d: got %d (present %v), want %d", id, c, ok, counts[id])
				}
			}
		})
	}

	if len(counts) != 6 {
		t.Errorf("input modified: %v", counts)
	}
}

func TestSelectRangeIdempotent(t *testing.T) {
	counts := Counts{1: 1, 2: 4, 3: 9, 4: 2}

	once := SelectRange(counts, 2, 5)
	twice := SelectRange(once, 2, 5)
	if len(once) != len(twice) {
		t.Fatalf("got %v after one and %v after two selections", once, twice)
	}
	for id, c := range once {
		if twice[id] != c {
			t.Errorf("image %d: %d vs %d", id, c, twice[id])
		}
	}
}
