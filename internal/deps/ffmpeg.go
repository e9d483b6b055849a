package deps

import (
	"fmt"
	"strings"

	"melpack/internal/config"
)

// CheckVideoTools verifies the ffmpeg and ffprobe binaries the video transform
// shells out to. Extraction fails fast when either is missing rather than
// part-way through a split.
func CheckVideoTools(cfg *config.Config) error {
	statuses := CheckBinaries([]Requirement{
		{Name: "FFmpeg", Command: cfg.FFmpegBinary(), Description: "Decodes and resizes video frames"},
		{Name: "FFprobe", Command: cfg.FFprobeBinary(), Description: "Counts frames before sampling"},
	})

	var missing []string
	for _, status := range statuses {
		if !status.Available {
			missing = append(missing, fmt.Sprintf("%s (%s)", status.Name, status.Detail))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing video tools: %s", strings.Join(missing, ", "))
	}
	return nil
}
