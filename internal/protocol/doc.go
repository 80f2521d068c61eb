// Package protocol defines what travels through a file channel.
//
// # Overview
//
// A channel file holds exactly one message at a time. There is no framing
// between successive messages: the whole file IS the message. This package
// describes how that message is laid out.
//
// # Framing
//
// Two framings are supported:
//
//   - FramingEnvelope: the payload is wrapped in an Envelope carrying a
//     unique id and a sequence number, serialized with a Codec (JSON or CBOR).
//     Requesters use the id to discard stale responses, workers use it to
//     skip requests they already served.
//   - FramingRaw: the bare payload text, exactly as the legacy board.txt
//     worker expected it. No correlation is possible.
//
// # Example
//
//	env := protocol.NewRequest(id, seq, "board", "5 5 3")
//	data, err := protocol.Encode(protocol.FramingEnvelope, codec.JSON(), env)
//	...
//	got, err := protocol.Decode(protocol.FramingEnvelope, codec.JSON(), data)
//
// Payload-level decode failures are reported as *ParseError.
package protocol
