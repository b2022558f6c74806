package domain

import "testing"

func TestSourceStringRendering(t *testing.T) {
	if got := SourceAurora.String(); got != "aurora" {
		t.Errorf("SourceAurora.String() = %q, want %q", got, "aurora")
	}
	if got := SourceBrontes.String(); got != "brontes" {
		t.Errorf("SourceBrontes.String() = %q, want %q", got, "brontes")
	}
}

func TestBucketIndexBoundaries(t *testing.T) {
	cases := []struct {
		dollars float64
		want    int
	}{
		{0.0, 0},
		{0.01, 1},
		{10.0, 1},
		{10.01, 2},
		{100.0, 2},
		{100.01, 3},
		{500.0, 3},
		{500.01, 4},
		{1000.0, 4},
		{1000.01, 5},
		{10000.0, 5},
		{10000.01, 6},
		{1e9, 6},
	}
	for _, c := range cases {
		if got := BucketIndex(c.dollars); got != c.want {
			t.Errorf("BucketIndex(%f) = %d, want %d", c.dollars, got, c.want)
		}
	}
}

func TestBucketLabelsMatchBucketCount(t *testing.T) {
	if len(BucketLabels) != BucketCount {
		t.Errorf("expected %d bucket labels, got %d", BucketCount, len(BucketLabels))
	}
	for i, label := range BucketLabels {
		if label == "" {
			t.Errorf("bucket label at index %d is empty", i)
		}
	}
}
