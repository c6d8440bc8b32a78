package vision

import "testing"

func TestIoU(t *testing.T) {
	tests := []struct {
		name string
		a    [4]float32
		b    [4]float32
		want float32
	}{
		{"identical", [4]float32{0, 0, 10, 10}, [4]float32{0, 0, 10, 10}, 1},
		{"disjoint", [4]float32{0, 0, 10, 10}, [4]float32{20, 20, 30, 30}, 0},
		{"half overlap", [4]float32{0, 0, 10, 10}, [4]float32{5, 0, 15, 10}, 1.0 / 3.0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := iou(tc.a, tc.b)
			if diff := got - tc.want; diff > 1e-5 || diff < -1e-5 {
				t.Errorf("iou = %v; want %v", got, tc.want)
			}
		})
	}
}

func TestNMSSuppressesOverlaps(t *testing.T) {
	detections := []Detection{
		{BBox: [4]float32{0, 0, 10, 10}, Confidence: 0.9},
		{BBox: [4]float32{1, 1, 11, 11}, Confidence: 0.8}, // heavy overlap, suppressed
		{BBox: [4]float32{50, 50, 60, 60}, Confidence: 0.7},
	}

	kept := nms(detections, 0.4)
	if len(kept) != 2 {
		t.Fatalf("kept %d detections, want 2", len(kept))
	}
	if kept[0].Confidence != 0.9 {
		t.Errorf("highest-confidence detection must survive, got %v", kept[0])
	}
}

func TestNMSKeepsDistinctFaces(t *testing.T) {
	detections := []Detection{
		{BBox: [4]float32{0, 0, 10, 10}, Confidence: 0.9},
		{BBox: [4]float32{12, 0, 22, 10}, Confidence: 0.85},
	}

	if kept := nms(detections, 0.4); len(kept) != 2 {
		t.Errorf("non-overlapping detections must both survive, kept %d", len(kept))
	}
}

func TestClampF(t *testing.T) {
	if got := clampF(-5, 0, 100); got != 0 {
		t.Errorf("clampF(-5) = %v; want 0", got)
	}
	if got := clampF(150, 0, 100); got != 100 {
		t.Errorf("clampF(150) = %v; want 100", got)
	}
	if got := clampF(42, 0, 100); got != 42 {
		t.Errorf("clampF(42) = %v; want 42", got)
	}
}

func TestCosine(t *testing.T) {
	a := []float32{1, 0, 0}
	b := []float32{0, 1, 0}

	if got := cosine(a, a); got < 0.999 {
		t.Errorf("cosine(a,a) = %v; want 1", got)
	}
	if got := cosine(a, b); got > 1e-6 {
		t.Errorf("cosine(orthogonal) = %v; want 0", got)
	}
	if got := cosine(a, []float32{1, 0}); got != 0 {
		t.Errorf("mismatched lengths = %v; want 0", got)
	}
}

func TestNormalize(t *testing.T) {
	v := []float32{3, 4}
	normalize(v)

	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum < 0.999 || sum > 1.001 {
		t.Errorf("norm^2 = %v; want 1", sum)
	}
}
