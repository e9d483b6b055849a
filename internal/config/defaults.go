package config

const (
	defaultDatasetDir   = "~/datasets/dcase2019-task4"
	defaultWorkspaceDir = "~/.local/share/melpack/workspace"
	defaultLogDir       = "~/.local/share/melpack/logs"
	defaultSampleRate   = 32000
	defaultWindowSize   = 1024
	defaultHopSize      = 500
	defaultMelBins      = 64
	defaultFMin         = 50
	defaultFMax         = 14000
	defaultClipSeconds  = 10
	defaultFrameCount   = 25
	defaultVideoDim     = 64
	defaultAudioExt     = ".wav"
	defaultVideoExt     = ".avi"
	defaultMiniItems    = 10
	defaultMiniSeed     = 1234
	defaultLogFormat    = "console"
	defaultLogLevel     = "info"
)

// defaultClasses is the domestic sound event vocabulary the pipeline was built
// for. Index order is load-bearing: it defines the class axis of every target
// array written to an archive.
var defaultClasses = []string{
	"Speech",
	"Dog",
	"Cat",
	"Alarm_bell_ringing",
	"Dishes",
	"Frying",
	"Blender",
	"Running_water",
	"Vacuum_cleaner",
	"Electric_shaver_toothbrush",
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DatasetDir:   defaultDatasetDir,
			WorkspaceDir: defaultWorkspaceDir,
			LogDir:       defaultLogDir,
		},
		Audio: Audio{
			SampleRate:  defaultSampleRate,
			WindowSize:  defaultWindowSize,
			HopSize:     defaultHopSize,
			MelBins:     defaultMelBins,
			FMin:        defaultFMin,
			FMax:        defaultFMax,
			ClipSeconds: defaultClipSeconds,
		},
		Video: Video{
			FrameCount: defaultFrameCount,
			Dim:        defaultVideoDim,
			Color:      true,
			AudioExt:   defaultAudioExt,
			VideoExt:   defaultVideoExt,
		},
		Labels: Labels{
			Classes: append([]string(nil), defaultClasses...),
		},
		Extract: Extract{
			MiniData:  false,
			MiniItems: defaultMiniItems,
			MiniSeed:  defaultMiniSeed,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
