package logmel

import (
	"math"
	"testing"
)

func testParams() Params {
	return Params{
		SampleRate: 32000,
		WindowSize: 1024,
		HopSize:    500,
		MelBins:    64,
		FMin:       50,
		FMax:       14000,
	}
}

func TestTransformFrameCountCoversFixedFramesNum(t *testing.T) {
	p := testParams()
	ex, err := NewExtractor(p)
	if err != nil {
		t.Fatalf("NewExtractor: %v", err)
	}

	clipSeconds := 10
	totalSamples := p.SampleRate * clipSeconds
	framesNum := p.SampleRate / p.HopSize * clipSeconds

	audio := make([]float64, totalSamples)
	for i := range audio {
		audio[i] = math.Sin(2 * math.Pi * 440 * float64(i) / float64(p.SampleRate))
	}

	feature, err := ex.Transform(audio)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if len(feature) < framesNum {
		t.Fatalf("raw frame count %d below fixed frames_num %d", len(feature), framesNum)
	}
	if len(feature) != totalSamples/p.HopSize+1 {
		t.Fatalf("unexpected raw frame count %d", len(feature))
	}
	for _, row := range feature {
		if len(row) != p.MelBins {
			t.Fatalf("row width %d, want %d", len(row), p.MelBins)
		}
	}
}

func TestTransformSilenceIsFiniteAndFloored(t *testing.T) {
	ex, err := NewExtractor(testParams())
	if err != nil {
		t.Fatalf("NewExtractor: %v", err)
	}

	audio := make([]float64, 32000)
	feature, err := ex.Transform(audio)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}

	want := float32(10 * math.Log10(amin)) // -100 dB floor
	for _, row := range feature {
		for _, v := range row {
			if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
				t.Fatalf("non-finite value %v for silent input", v)
			}
			if v != want {
				t.Fatalf("silent input should hit the amin floor: got %v want %v", v, want)
			}
		}
	}
}

func TestTransformIsDeterministic(t *testing.T) {
	ex, err := NewExtractor(testParams())
	if err != nil {
		t.Fatalf("NewExtractor: %v", err)
	}

	audio := make([]float64, 16000)
	for i := range audio {
		audio[i] = math.Sin(2*math.Pi*950*float64(i)/32000) * 0.5
	}

	a, err := ex.Transform(audio)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	b, err := ex.Transform(audio)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	for i := range a {
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				t.Fatalf("nondeterministic value at (%d,%d): %v vs %v", i, j, a[i][j], b[i][j])
			}
		}
	}
}

func TestToneEnergyTracksFrequency(t *testing.T) {
	p := testParams()
	ex, err := NewExtractor(p)
	if err != nil {
		t.Fatalf("NewExtractor: %v", err)
	}

	peak := func(freq float64) int {
		audio := make([]float64, 32000)
		for i := range audio {
			audio[i] = math.Sin(2 * math.Pi * freq * float64(i) / float64(p.SampleRate))
		}
		feature, err := ex.Transform(audio)
		if err != nil {
			t.Fatalf("Transform: %v", err)
		}
		row := feature[len(feature)/2]
		best := 0
		for m, v := range row {
			if v > row[best] {
				best = m
			}
		}
		return best
	}

	low := peak(200)
	high := peak(5000)
	if low >= high {
		t.Fatalf("mel peak should move up with frequency: 200Hz->%d, 5kHz->%d", low, high)
	}
}

func TestFilterBankShapeAndSupport(t *testing.T) {
	p := testParams()
	fb, err := NewFilterBank(p.SampleRate, p.WindowSize, p.MelBins, p.FMin, p.FMax)
	if err != nil {
		t.Fatalf("NewFilterBank: %v", err)
	}
	if fb.Bins() != p.WindowSize/2+1 {
		t.Fatalf("bins = %d, want %d", fb.Bins(), p.WindowSize/2+1)
	}
	if fb.MelBins() != p.MelBins {
		t.Fatalf("mel bins = %d, want %d", fb.MelBins(), p.MelBins)
	}

	// Every band must have support, all weights non-negative, and bins far
	// outside [fmin, fmax] must carry no weight.
	binHz := float64(p.SampleRate) / float64(p.WindowSize)
	for m := 0; m < p.MelBins; m++ {
		var sum float64
		for k := 0; k < fb.Bins(); k++ {
			w := fb.Weight(k, m)
			if w < 0 {
				t.Fatalf("negative weight at (%d,%d)", k, m)
			}
			if w > 0 {
				f := float64(k) * binHz
				if f < p.FMin-binHz || f > p.FMax+binHz {
					t.Fatalf("band %d has weight at %.0f Hz outside [%g, %g]", m, f, p.FMin, p.FMax)
				}
			}
			sum += w
		}
		if sum == 0 {
			t.Fatalf("band %d has no support", m)
		}
	}
}

func TestReflectPadMirrorsWithoutEdgeRepeat(t *testing.T) {
	got := reflectPad([]float64{1, 2, 3, 4}, 2)
	want := []float64{3, 2, 1, 2, 3, 4, 3, 2}
	if len(got) != len(want) {
		t.Fatalf("length %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("padded[%d] = %v, want %v (full %v)", i, got[i], want[i], got)
		}
	}
}
