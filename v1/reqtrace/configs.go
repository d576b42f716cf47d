package reqtrace

// DefaultFinishedMemory is the number of finished request ids remembered when
// Config.FinishedMemory is zero.
const DefaultFinishedMemory = 4096

// Config controls the request span tracker.
type Config struct {
	// FinishedMemory bounds how many finished request ids the tracker
	// remembers to reject a second End for the same request. Zero means
	// DefaultFinishedMemory; a negative value disables the check, in which case
	// a repeated End synthesizes and finishes another span.
	FinishedMemory int `yaml:"finished_memory" envconfig:"TRACKER_FINISHED_MEMORY"`
}

func (c Config) withDefaults() Config {
	if c.FinishedMemory == 0 {
		c.FinishedMemory = DefaultFinishedMemory
	}
	return c
}
