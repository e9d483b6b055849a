package videofeat

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Tensor is a dense 4-D float32 stack shaped (dim, dim, frames, channels).
type Tensor struct {
	Dims [4]int
	Data []float32
}

// At returns the value at spatial position (y, x), frame t, channel c.
func (t *Tensor) At(y, x, frame, c int) float32 {
	d := t.Dims
	return t.Data[((y*d[1]+x)*d[2]+frame)*d[3]+c]
}

// Extractor samples a fixed number of frames from a video file.
type Extractor struct {
	FFmpeg     string
	FFprobe    string
	Dim        int
	FrameCount int
	Color      bool
	// Skip selects frames uniformly across the whole stream; when false the
	// first FrameCount frames are taken instead.
	Skip bool
}

// Channels returns the per-frame channel count.
func (e *Extractor) Channels() int {
	if e.Color {
		return 3
	}
	return 1
}

// SampleIndices selects count frame indices from a stream of total frames.
// With skip, indices are spread uniformly as i*total/count (duplicates occur
// when total < count). Without skip, the first count indices are used, clamped
// to the last valid frame for short streams so decoding never seeks past the
// end.
func SampleIndices(total, count int, skip bool) []int {
	indices := make([]int, count)
	for i := range indices {
		if skip {
			indices[i] = i * total / count
		} else {
			indices[i] = i
		}
		if indices[i] >= total {
			indices[i] = total - 1
		}
	}
	return indices
}

// Frames decodes the sampled frame stack of the video at path.
func (e *Extractor) Frames(ctx context.Context, path string) (*Tensor, error) {
	probe, err := Inspect(ctx, e.FFprobe, path)
	if err != nil {
		return nil, err
	}

	indices := SampleIndices(probe.FrameCount, e.FrameCount, e.Skip)
	frameSize := e.Dim * e.Dim * e.Channels()

	frames := make([][]byte, len(indices))
	for i, idx := range indices {
		// Duplicate indices decode once and share the bytes.
		if i > 0 && idx == indices[i-1] {
			frames[i] = frames[i-1]
			continue
		}
		frame, err := e.decodeFrame(ctx, path, idx)
		if err != nil {
			return nil, err
		}
		if len(frame) != frameSize {
			return nil, fmt.Errorf("videofeat decode %s frame %d: got %d bytes, want %d", path, idx, len(frame), frameSize)
		}
		frames[i] = frame
	}

	return assemble(frames, e.Dim, e.Channels()), nil
}

// decodeFrame extracts one frame as raw pixels, resized with bicubic
// interpolation and converted to the target pixel format by ffmpeg.
func (e *Extractor) decodeFrame(ctx context.Context, path string, index int) ([]byte, error) {
	binary := strings.TrimSpace(e.FFmpeg)
	if binary == "" {
		binary = "ffmpeg"
	}
	pixFmt := "rgb24"
	if !e.Color {
		pixFmt = "gray"
	}
	filter := fmt.Sprintf("select=eq(n\\,%d),scale=%d:%d:flags=bicubic", index, e.Dim, e.Dim)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary,
		"-v", "error",
		"-i", path,
		"-vf", filter,
		"-frames:v", "1",
		"-f", "rawvideo",
		"-pix_fmt", pixFmt,
		"-")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("videofeat decode %s frame %d: %w: %s", path, index, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// assemble stacks decoded (y, x, c) frames and moves the time axis to
// position 2, yielding (y, x, frame, c).
func assemble(frames [][]byte, dim, channels int) *Tensor {
	count := len(frames)
	data := make([]float32, dim*dim*count*channels)
	for t, frame := range frames {
		for y := 0; y < dim; y++ {
			for x := 0; x < dim; x++ {
				for c := 0; c < channels; c++ {
					src := (y*dim+x)*channels + c
					dst := ((y*dim+x)*count+t)*channels + c
					data[dst] = float32(frame[src])
				}
			}
		}
	}
	return &Tensor{Dims: [4]int{dim, dim, count, channels}, Data: data}
}
