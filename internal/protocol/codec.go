package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// variant describes how to decode one message type.
type variant struct {
	required []string
	new      func() Message
}

// registry maps every known type tag to its variant. Tags absent from this
// table are rejected by Decode.
var registry = map[string]variant{
	TypeHello: {required: []string{"northeastern_username"}, new: func() Message { return &Hello{} }},
	TypeStart: {required: []string{"id"}, new: func() Message { return &Start{} }},
	TypeGuess: {required: []string{"id", "word"}, new: func() Message { return &Guess{} }},
	TypeRetry: {required: []string{"id", "guesses"}, new: func() Message { return &Retry{} }},
	TypeBye:   {required: []string{"id", "flag"}, new: func() Message { return &Bye{} }},
	TypeError: {required: []string{"message"}, new: func() Message { return &Error{} }},
}

// Encode serializes a message into a single newline-terminated frame.
// Format: {"type":"<tag>", <variant fields>...}\n
//
// A Retry with nil Guesses is written as an empty list, so it decodes back
// with an empty non-nil slice.
func Encode(msg Message) ([]byte, error) {
	var body interface{}

	switch m := msg.(type) {
	case *Hello:
		body = struct {
			Type string `json:"type"`
			*Hello
		}{TypeHello, m}
	case *Start:
		body = struct {
			Type string `json:"type"`
			*Start
		}{TypeStart, m}
	case *Guess:
		body = struct {
			Type string `json:"type"`
			*Guess
		}{TypeGuess, m}
	case *Retry:
		r := *m
		if r.Guesses == nil {
			r.Guesses = []GuessRecord{}
		}
		body = struct {
			Type string `json:"type"`
			*Retry
		}{TypeRetry, &r}
	case *Bye:
		body = struct {
			Type string `json:"type"`
			*Bye
		}{TypeBye, m}
	case *Error:
		body = struct {
			Type string `json:"type"`
			*Error
		}{TypeError, m}
	default:
		return nil, fmt.Errorf("cannot encode message of type %T", msg)
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s message: %w", msg.Type(), err)
	}
	return append(data, FrameDelimiter), nil
}

// Decode parses one frame into its message variant. The trailing
// delimiter is optional.
func Decode(frame []byte) (Message, error) {
	data := bytes.TrimRight(frame, "\r\n")

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, &ProtocolError{Reason: "invalid JSON frame", Err: err}
	}

	rawType, ok := fields["type"]
	if !ok {
		return nil, Protocolf("frame has no %q field", "type")
	}
	var tag string
	if err := json.Unmarshal(rawType, &tag); err != nil {
		return nil, &ProtocolError{Reason: "type field is not a string", Err: err}
	}

	v, ok := registry[tag]
	if !ok {
		return nil, Protocolf("unknown message type %q", tag)
	}

	for _, name := range v.required {
		raw, present := fields[name]
		if !present || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			return nil, Protocolf("%s message is missing field %q", tag, name)
		}
	}

	msg := v.new()
	if err := json.Unmarshal(data, msg); err != nil {
		return nil, &ProtocolError{Reason: fmt.Sprintf("malformed %s message", tag), Err: err}
	}

	if r, ok := msg.(*Retry); ok {
		if err := validateRetry(r); err != nil {
			return nil, err
		}
	}

	return msg, nil
}

// validateRetry checks that every guess record has one valid mark per letter.
func validateRetry(r *Retry) error {
	for i, g := range r.Guesses {
		if len(g.Marks) != len(g.Word) {
			return Protocolf("retry guess %d: %d marks for %d-letter word %q",
				i, len(g.Marks), len(g.Word), g.Word)
		}
		for j, m := range g.Marks {
			if !m.Valid() {
				return Protocolf("retry guess %d: invalid mark %d at position %d", i, int(m), j)
			}
		}
	}
	return nil
}
