package config

const VERSION = "0.3.1"

// Config holds global application settings
type Config struct {
	Debug   bool
	Quiet   bool
	Version string

	// Preset is the default launcher preset used when none is given on
	// the command line.
	Preset string

	// TimeHours is the default requested walltime in hours.
	TimeHours int

	// ProfileFile is the environment file sourced inside jobs. Empty
	// means none.
	ProfileFile string

	// GroupList and Account fill the scheduler accounting directives
	// for clusters that require them.
	GroupList string
	Account   string

	// Mpiexec overrides the MPI runtime command name when non-empty.
	Mpiexec string

	// Batch settings.
	PollSeconds  int
	MaxActive    int
	SeparateDirs bool
}

// Global holds the singleton configuration instance
var Global Config

func LoadDefaults() {
	Global = Config{
		Debug:   false,
		Quiet:   false,
		Version: VERSION,

		Preset:      "k4",
		TimeHours:   72,
		ProfileFile: "~/.bashrc",

		PollSeconds:  30,
		MaxActive:    20,
		SeparateDirs: true,
	}
}
