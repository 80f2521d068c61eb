package protocol

import (
	"errors"
	"fmt"
	"strings"

	"github.com/billie-coop/minefile/internal/protocol/codec"
)

// MessageType tells requests and responses apart when one file carries both.
type MessageType string

const (
	TypeRequest  MessageType = "request"
	TypeResponse MessageType = "response"
)

// Status is the outcome carried by a response.
type Status string

const (
	StatusOK    Status = "ok"
	StatusError Status = "error"
)

// Framing selects how a message is laid out in the channel file.
type Framing string

const (
	// FramingEnvelope wraps the body in an Envelope (default)
	FramingEnvelope Framing = "envelope"

	// FramingRaw writes the bare body, no id, no sequence number
	FramingRaw Framing = "raw"
)

// ParseFraming validates a framing name from configuration.
func ParseFraming(s string) (Framing, error) {
	switch f := Framing(strings.ToLower(strings.TrimSpace(s))); f {
	case FramingEnvelope, FramingRaw:
		return f, nil
	case "":
		return FramingEnvelope, nil
	default:
		return "", fmt.Errorf("unknown framing %q", s)
	}
}

// Envelope is one request or response.
// The same struct serves both directions so a single file can be reused
// for request and response without ambiguity.
type Envelope struct {
	Type   MessageType `json:"type" cbor:"type"`
	ID     string      `json:"id" cbor:"id"`
	Seq    uint64      `json:"seq" cbor:"seq"`
	Kind   string      `json:"kind" cbor:"kind"`
	Status Status      `json:"status,omitempty" cbor:"status,omitempty"`
	Body   string      `json:"body" cbor:"body"`
	Error  string      `json:"error,omitempty" cbor:"error,omitempty"`
}

// NewRequest builds a request envelope.
func NewRequest(id string, seq uint64, kind, body string) *Envelope {
	return &Envelope{Type: TypeRequest, ID: id, Seq: seq, Kind: kind, Body: body}
}

// Reply builds the successful response to e.
func (e *Envelope) Reply(body string) *Envelope {
	return &Envelope{Type: TypeResponse, ID: e.ID, Seq: e.Seq, Kind: e.Kind, Status: StatusOK, Body: body}
}

// Fail builds the error response to e.
func (e *Envelope) Fail(err error) *Envelope {
	return &Envelope{Type: TypeResponse, ID: e.ID, Seq: e.Seq, Kind: e.Kind, Status: StatusError, Error: err.Error()}
}

// IsRequest reports whether e travels requester to worker.
func (e *Envelope) IsRequest() bool { return e.Type == TypeRequest }

// IsResponse reports whether e travels worker to requester.
func (e *Envelope) IsResponse() bool { return e.Type == TypeResponse }

// Validate checks the fields every envelope must carry.
func (e *Envelope) Validate() error {
	switch e.Type {
	case TypeRequest, TypeResponse:
	default:
		return fmt.Errorf("unknown message type %q", e.Type)
	}
	if e.ID == "" {
		return errors.New("missing id")
	}
	if e.Kind == "" {
		return errors.New("missing kind")
	}
	if e.Type == TypeResponse {
		switch e.Status {
		case StatusOK, StatusError:
		default:
			return fmt.Errorf("unknown status %q", e.Status)
		}
	}
	return nil
}

// Encode lays out env according to framing.
// Raw framing writes only the body; c may be nil in that case.
func Encode(framing Framing, c codec.Codec, env *Envelope) ([]byte, error) {
	if framing == FramingRaw {
		return []byte(env.Body), nil
	}
	if c == nil {
		return nil, errors.New("envelope framing needs a codec")
	}
	data, err := c.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encode %s envelope: %w", c.Name(), err)
	}
	return data, nil
}

// Decode reads one envelope from the entire content of a channel file.
// Under raw framing there is nothing to decode: the caller gets an envelope
// holding only the body and must interpret it using out-of-band knowledge
// of the kind.
func Decode(framing Framing, c codec.Codec, data []byte) (*Envelope, error) {
	if framing == FramingRaw {
		return &Envelope{Body: string(data)}, nil
	}
	if c == nil {
		return nil, errors.New("envelope framing needs a codec")
	}
	if len(data) == 0 {
		return nil, NewParseError("envelope", data, errors.New("empty content"))
	}

	var env Envelope
	if err := c.Unmarshal(data, &env); err != nil {
		return nil, NewParseError(c.Name()+" envelope", data, err)
	}
	if err := env.Validate(); err != nil {
		return nil, NewParseError(c.Name()+" envelope", data, err)
	}
	return &env, nil
}
