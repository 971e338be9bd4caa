// Package messaging defines the typed payloads exchanged with an
// external controller (spec.md §6.4). The core only produces/consumes
// these values; framing and transport are a collaborator's concern
// (a Codec), never this package's.
package messaging

// StatusCode is the two-letter scan outcome code carried by
// ScanMetadata.
type StatusCode string

const (
	StatusNotSharp              StatusCode = "NS"
	StatusTooSmall              StatusCode = "TS"
	StatusNotFound              StatusCode = "NF"
	StatusTooFewCards           StatusCode = "TF"
	StatusInconclusive          StatusCode = "IN"
	StatusInsufficientHistory   StatusCode = "NH"
	StatusInsufficientConfidence StatusCode = "NC"
	StatusLowConfidence         StatusCode = "RL"
	StatusHighConfidence        StatusCode = "RH"
	StatusGeneralFailure        StatusCode = "GF"
)

// ScanReport is the analyzer's verdict for one resolved deck.
type ScanReport struct {
	HighConfidence    bool
	FormatID          string
	ConfidenceFactor  float64
	Indices           []int
	Robustness        []uint8
	ReportCount       int
}

// ScanMetadata accompanies a ScanReport with frame bookkeeping.
type ScanMetadata struct {
	FrameCount int
	StatusCode StatusCode
}

// PerformanceStats reports per-frame timing in milliseconds.
type PerformanceStats struct {
	ScanMs         int64
	FullFrameMs    int64
	FrameToFrameMs int64
}

// ViewportType selects what a Viewport's pixel data represents.
type ViewportType int

const (
	LumaResampled ViewportType = iota
	LumaCenterRect
)

// Viewport carries a debug-overlay frame for remote display.
type Viewport struct {
	Type   ViewportType
	Width  int
	Height int
	Data   []byte
}

// CommandName is the closed set of controller commands the core
// passes upward without interpreting.
type CommandName string

const (
	CommandShutdown        CommandName = "shutdown"
	CommandReboot          CommandName = "reboot"
	CommandCheckForUpdates CommandName = "checkForUpdates"
)

// Command is an opaque instruction from the controller; the core
// never acts on it directly.
type Command struct {
	Name       CommandName
	Parameters []string
}

// ConfigValueKind mirrors config.Kind for wire purposes without this
// package importing internal/config, keeping messaging's payloads
// transport-agnostic plain data (spec.md §6.4: "oblivious to framing
// and transport").
type ConfigValueKind string

// ConfigValue is one key/value pair of configuration plumbing.
type ConfigValue struct {
	Key         string
	Kind        ConfigValueKind
	Raw         string
	Description string
	Public      bool
}

// ConfigValueList batches ConfigValue entries, e.g. for a full dump.
type ConfigValueList struct {
	Values []ConfigValue
}

// TriggerVibration asks a connected device to vibrate for Duration
// milliseconds (used to signal a successful high-confidence scan).
type TriggerVibration struct {
	DurationMs int64
}

// ServerConnect carries the controller endpoint a peer should dial.
type ServerConnect struct {
	Host string
	Port int
}
