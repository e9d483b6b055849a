package videofeat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// Probe describes the video stream properties the sampler needs.
type Probe struct {
	FrameCount int
	Width      int
	Height     int
	Duration   float64
}

type probeResult struct {
	Streams []struct {
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		NBFrames     string `json:"nb_frames"`
		NBReadFrames string `json:"nb_read_frames"`
		AvgFrameRate string `json:"avg_frame_rate"`
		Duration     string `json:"duration"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Inspect executes ffprobe against the first video stream of the file and
// decodes the JSON response. Frame counting decodes the stream, which is slow
// but exact for containers that do not carry nb_frames.
func Inspect(ctx context.Context, binary, path string) (Probe, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return Probe{}, errors.New("videofeat inspect: empty path")
	}

	cmd := exec.CommandContext(ctx, binary,
		"-v", "error",
		"-select_streams", "v:0",
		"-count_frames",
		"-show_entries", "stream=width,height,nb_frames,nb_read_frames,avg_frame_rate,duration",
		"-show_entries", "format=duration",
		"-of", "json",
		"--", path)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return Probe{}, fmt.Errorf("videofeat inspect %s: %w: %s", path, err, strings.TrimSpace(string(output)))
	}

	var result probeResult
	if err := json.Unmarshal(output, &result); err != nil {
		return Probe{}, fmt.Errorf("videofeat parse probe: %w", err)
	}
	if len(result.Streams) == 0 {
		return Probe{}, fmt.Errorf("videofeat inspect %s: no video stream", path)
	}

	stream := result.Streams[0]
	probe := Probe{Width: stream.Width, Height: stream.Height}

	probe.Duration = parseFloat(stream.Duration)
	if probe.Duration == 0 {
		probe.Duration = parseFloat(result.Format.Duration)
	}

	probe.FrameCount = parseInt(stream.NBReadFrames)
	if probe.FrameCount == 0 {
		probe.FrameCount = parseInt(stream.NBFrames)
	}
	if probe.FrameCount == 0 {
		// Last resort: estimate from duration and average rate.
		if fps := parseRate(stream.AvgFrameRate); fps > 0 && probe.Duration > 0 {
			probe.FrameCount = int(math.Round(probe.Duration * fps))
		}
	}
	if probe.FrameCount <= 0 {
		return Probe{}, fmt.Errorf("videofeat inspect %s: could not determine frame count", path)
	}

	return probe, nil
}

func parseInt(value string) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func parseFloat(value string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(f) || f < 0 {
		return 0
	}
	return f
}

// parseRate parses an ffprobe rational such as "25/1".
func parseRate(value string) float64 {
	parts := strings.SplitN(strings.TrimSpace(value), "/", 2)
	if len(parts) != 2 {
		return parseFloat(value)
	}
	num := parseFloat(parts[0])
	den := parseFloat(parts[1])
	if den == 0 {
		return 0
	}
	return num / den
}
