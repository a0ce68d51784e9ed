package topoprep

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// CountFrequency is a histogram bin: the number of images with a particular instance count.
type CountFrequency struct {
	Count  int
	Images int
}

// Histogram is the distribution of instance counts, sorted ascending by Count.
type Histogram []CountFrequency

// NewHistogram returns the distribution of the count values in counts. The input is not modified.
func NewHistogram(counts Counts) Histogram {
	freq := make(map[int]int)
	for _, c := range counts {
		freq[c]++
	}

	h := make(Histogram, 0, len(freq))
	for c, n := range freq {
		h = append(h, CountFrequency{Count: c, Images: n})
	}
	sort.Slice(h, func(i, j int) bool { return h[i].Count < h[j].Count })

	return h
}

// Total is the number of images in the histogram.
func (h Histogram) Total() int {
	total := 0
	for _, b := range h {
		total += b.Images
	}
	return total
}

// Stats returns the mean and the standard deviation of the instance count over all images. Both
// are zero for an empty histogram, the standard deviation is zero for a single image.
func (h Histogram) Stats() (mean, stdDev float64) {
	if h.Total() == 0 {
		return 0, 0
	}

	x := make([]float64, len(h))
	weights := make([]float64, len(h))
	for i, b := range h {
		x[i] = float64(b.Count)
		weights[i] = float64(b.Images)
	}
	if h.Total() == 1 {
		return x[0], 0
	}

	return stat.MeanStdDev(x, weights)
}
