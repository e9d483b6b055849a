package audioio

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

func writeTestWAV(t *testing.T, path string, rate, channels int, frames int) {
	t.Helper()

	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create wav: %v", err)
	}
	defer file.Close()

	encoder := wav.NewEncoder(file, rate, 16, channels, 1)
	data := make([]int, frames*channels)
	for f := 0; f < frames; f++ {
		v := int(16000 * math.Sin(2*math.Pi*440*float64(f)/float64(rate)))
		for c := 0; c < channels; c++ {
			data[f*channels+c] = v
		}
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: rate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := encoder.Write(buf); err != nil {
		t.Fatalf("write wav: %v", err)
	}
	if err := encoder.Close(); err != nil {
		t.Fatalf("close wav: %v", err)
	}
}

func TestReadMonoWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	writeTestWAV(t, path, 32000, 1, 3200)

	samples, err := Read(path, 32000)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(samples) != 3200 {
		t.Fatalf("sample count = %d, want 3200", len(samples))
	}
	var peak float64
	for _, s := range samples {
		if math.Abs(s) > 1 {
			t.Fatalf("sample %v outside [-1, 1]", s)
		}
		if math.Abs(s) > peak {
			peak = math.Abs(s)
		}
	}
	if peak < 0.4 {
		t.Fatalf("tone amplitude lost in decode: peak %v", peak)
	}
}

func TestReadDownmixesStereo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stereo.wav")
	writeTestWAV(t, path, 16000, 2, 1600)

	samples, err := Read(path, 16000)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(samples) != 1600 {
		t.Fatalf("sample count = %d, want 1600", len(samples))
	}
}

func TestReadResamplesToTargetRate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hi.wav")
	writeTestWAV(t, path, 44100, 1, 44100)

	samples, err := Read(path, 32000)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(samples) != 32000 {
		t.Fatalf("sample count = %d, want 32000", len(samples))
	}
}

func TestReadRejectsMissingFile(t *testing.T) {
	if _, err := Read(filepath.Join(t.TempDir(), "absent.wav"), 32000); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestResampleHalvesLength(t *testing.T) {
	in := make([]float64, 1000)
	for i := range in {
		in[i] = float64(i)
	}
	out := Resample(in, 2000, 1000)
	if len(out) != 500 {
		t.Fatalf("length = %d, want 500", len(out))
	}
	// Linear interpolation of a ramp stays on the ramp.
	if out[100] != 200 {
		t.Fatalf("out[100] = %v, want 200", out[100])
	}
}

func TestPadTruncate(t *testing.T) {
	in := []float64{1, 2, 3}

	padded := PadTruncate(in, 5)
	if len(padded) != 5 || padded[3] != 0 || padded[4] != 0 {
		t.Fatalf("padded = %v", padded)
	}

	cut := PadTruncate(in, 2)
	if len(cut) != 2 || cut[0] != 1 || cut[1] != 2 {
		t.Fatalf("cut = %v", cut)
	}

	same := PadTruncate(in, 3)
	if len(same) != 3 {
		t.Fatalf("same = %v", same)
	}
}
