package protocol

import (
	"bytes"
	"errors"
	"reflect"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
	}{
		{"hello", &Hello{Username: "user"}},
		{"start", &Start{ID: "abc123"}},
		{"guess", &Guess{ID: "abc123", Word: "tests"}},
		{"retry", &Retry{ID: "abc123", Guesses: []GuessRecord{
			{Word: "tests", Marks: []Mark{0, 0, 0, 0, 0}},
			{Word: "crane", Marks: []Mark{2, 1, 0, 0, 2}},
		}}},
		{"bye", &Bye{ID: "abc123", Flag: "FLAG123"}},
		{"error", &Error{Message: "bad username \"x\""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, err := Encode(tt.msg)
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			if !bytes.HasSuffix(frame, []byte{FrameDelimiter}) {
				t.Fatalf("frame %q is not newline-terminated", frame)
			}
			if bytes.Count(frame, []byte{FrameDelimiter}) != 1 {
				t.Fatalf("frame %q contains more than one delimiter", frame)
			}

			got, err := Decode(frame)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.msg) {
				t.Errorf("Decode(Encode(m)) = %#v, want %#v", got, tt.msg)
			}
		})
	}
}

func TestRetryNilGuessesDecodesEmpty(t *testing.T) {
	frame, err := Encode(&Retry{ID: "abc123"})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	got, err := Decode(frame)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	want := &Retry{ID: "abc123", Guesses: []GuessRecord{}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Decode(Encode(m)) = %#v, want %#v", got, want)
	}
}

func TestEncodeWireFormat(t *testing.T) {
	tests := []struct {
		msg  Message
		want string
	}{
		{&Hello{Username: "user"}, `{"type":"hello","northeastern_username":"user"}` + "\n"},
		{&Guess{ID: "abc123", Word: "crane"}, `{"type":"guess","id":"abc123","word":"crane"}` + "\n"},
		{&Retry{ID: "x"}, `{"type":"retry","id":"x","guesses":[]}` + "\n"},
	}

	for _, tt := range tests {
		got, err := Encode(tt.msg)
		if err != nil {
			t.Fatalf("Encode(%T) error = %v", tt.msg, err)
		}
		if string(got) != tt.want {
			t.Errorf("Encode(%T) = %q, want %q", tt.msg, got, tt.want)
		}
	}
}

func TestDecodeServerFrames(t *testing.T) {
	frame := []byte(`{"type": "retry", "id": "s1", "guesses": [{"word": "lemon", "marks": [0, 1, 0, 0, 0]}]}` + "\r\n")
	msg, err := Decode(frame)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	retry, ok := msg.(*Retry)
	if !ok {
		t.Fatalf("Decode() returned %T, want *Retry", msg)
	}
	latest, ok := retry.Latest()
	if !ok {
		t.Fatal("Latest() reported no records")
	}
	if latest.Word != "lemon" || latest.Marks[1] != MarkWrongPosition {
		t.Errorf("Latest() = %+v", latest)
	}
}

func TestDecodeRejects(t *testing.T) {
	tests := []struct {
		name  string
		frame string
	}{
		{"invalid json", `{"type":"start",`},
		{"not an object", `["start"]`},
		{"null", `null`},
		{"missing type", `{"id":"abc"}`},
		{"non-string type", `{"type":5}`},
		{"unknown type", `{"type":"welcome","id":"abc"}`},
		{"capitalized type", `{"type":"Start","id":"abc"}`},
		{"missing id", `{"type":"start"}`},
		{"null id", `{"type":"start","id":null}`},
		{"wrong field type", `{"type":"start","id":42}`},
		{"bye missing flag", `{"type":"bye","id":"abc"}`},
		{"error missing message", `{"type":"error"}`},
		{"retry missing guesses", `{"type":"retry","id":"abc"}`},
		{"retry mark count", `{"type":"retry","id":"abc","guesses":[{"word":"lemon","marks":[0,1]}]}`},
		{"retry mark range", `{"type":"retry","id":"abc","guesses":[{"word":"lemon","marks":[0,1,3,0,0]}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := Decode([]byte(tt.frame + "\n"))
			if err == nil {
				t.Fatalf("Decode() = %#v, want error", msg)
			}
			var perr *ProtocolError
			if !errors.As(err, &perr) {
				t.Errorf("Decode() error = %T (%v), want *ProtocolError", err, err)
			}
		})
	}
}

func TestMarkString(t *testing.T) {
	if MarkCorrect.String() != "correct" {
		t.Errorf("MarkCorrect.String() = %q", MarkCorrect.String())
	}
	if Mark(7).Valid() {
		t.Error("Mark(7).Valid() = true")
	}
	if Mark(7).String() != "unknown" {
		t.Errorf("Mark(7).String() = %q", Mark(7).String())
	}
}
