package archive

import (
	"fmt"
	"path/filepath"
)

// Layout identifies one feature layout under the workspace. Archives produced
// with different analysis constants live side by side; the directory name
// carries the constants so a stale layout is never silently reused.
type Layout struct {
	FramesPerSecond int
	MelBins         int
	MiniData        bool
}

func (l Layout) dirName() string {
	prefix := ""
	if l.MiniData {
		prefix = "minidata_"
	}
	return fmt.Sprintf("%slogmel_%dframes_%dmelbins", prefix, l.FramesPerSecond, l.MelBins)
}

// FeaturePath returns the archive location for one split.
func FeaturePath(workspaceDir string, l Layout, relativeName string) string {
	return filepath.Join(workspaceDir, "features", l.dirName(), relativeName+".db")
}

// ScalarPath returns the scalar-record location mirroring FeaturePath.
func ScalarPath(workspaceDir string, l Layout, relativeName string) string {
	return filepath.Join(workspaceDir, "scalars", l.dirName(), relativeName+".db")
}
