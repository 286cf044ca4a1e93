package ir

// Version constants for the table model and the engine.
const (
	// IRVersion is the table schema version.
	IRVersion = "1"

	// EngineVersion is the atengine release.
	EngineVersion = "0.1.0"
)
