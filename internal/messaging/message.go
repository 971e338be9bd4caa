package messaging

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/cardtrack/deckscan/internal/util"
)

// Kind identifies which payload a Message carries.
type Kind int

const (
	KindScanReport Kind = iota
	KindScanMetadata
	KindPerformanceStats
	KindViewport
	KindCommand
	KindConfigValue
	KindConfigValueList
	KindTriggerVibration
	KindServerConnect
)

func (k Kind) String() string {
	switch k {
	case KindScanReport:
		return "ScanReport"
	case KindScanMetadata:
		return "ScanMetadata"
	case KindPerformanceStats:
		return "PerformanceStats"
	case KindViewport:
		return "Viewport"
	case KindCommand:
		return "Command"
	case KindConfigValue:
		return "ConfigValue"
	case KindConfigValueList:
		return "ConfigValueList"
	case KindTriggerVibration:
		return "TriggerVibration"
	case KindServerConnect:
		return "ServerConnect"
	default:
		return "Unknown"
	}
}

// Message is the envelope every payload travels in: a 16-byte
// identifier plus the typed body (spec.md §6.4).
type Message struct {
	id      [16]byte
	kind    Kind
	payload any
}

// NewMessage wraps payload in an envelope with a random identifier.
func NewMessage(kind Kind, payload any) Message {
	return Message{id: uuid.New(), kind: kind, payload: payload}
}

// NewDeterministicMessage derives the envelope's identifier from the
// payload's content, for reproducible tests and idempotent re-sends
// of the same logical event.
func NewDeterministicMessage(kind Kind, payload any) (Message, error) {
	idStr := util.HashUUID(payload)
	id, err := uuid.Parse(idStr)
	if err != nil {
		return Message{}, fmt.Errorf("messaging: deriving id: %w", err)
	}
	return Message{id: id, kind: kind, payload: payload}, nil
}

// ID returns the envelope's 16-byte identifier.
func (m Message) ID() [16]byte { return m.id }

// Kind returns which payload type m carries.
func (m Message) Kind() Kind { return m.kind }

// Payload returns the typed body. Callers type-assert against the
// concrete struct matching Kind.
func (m Message) Payload() any { return m.payload }

// Codec encodes and decodes Messages to and from wire bytes. The core
// never implements Codec itself; a transport collaborator does
// (spec.md §6.4: "the core is oblivious to framing and transport").
type Codec interface {
	Encode(Message) ([]byte, error)
	Decode([]byte) (Message, error)
}
