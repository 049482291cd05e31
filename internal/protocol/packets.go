// Package protocol implements the line-delimited JSON protocol spoken
// between wordlebot and a game server. Every frame is a single JSON object
// carrying a "type" discriminator, terminated by one newline byte.
package protocol

// Message type tags as they appear in the "type" field on the wire.
const (
	// Client -> server
	TypeHello = "hello"
	TypeGuess = "guess"

	// Server -> client
	TypeStart = "start"
	TypeRetry = "retry"
	TypeBye   = "bye"
	TypeError = "error"
)

// FrameDelimiter terminates every frame on the wire.
const FrameDelimiter byte = '\n'

// MaxFrameSize is the maximum allowed size for a single frame.
const MaxFrameSize = 1 << 20

// Mark is the server's per-letter verdict on a guessed word.
type Mark int

const (
	MarkNotInWord     Mark = 0 // Letter gives no positional information
	MarkWrongPosition Mark = 1 // Letter is in the word, but not here
	MarkCorrect       Mark = 2 // Letter is in the word at this position
)

var markStrings = map[Mark]string{
	MarkNotInWord:     "not_in_word",
	MarkWrongPosition: "wrong_position",
	MarkCorrect:       "correct",
}

// String returns the string representation of a Mark.
func (m Mark) String() string {
	if s, ok := markStrings[m]; ok {
		return s
	}
	return "unknown"
}

// Valid reports whether m is one of the three known marks.
func (m Mark) Valid() bool {
	_, ok := markStrings[m]
	return ok
}

// Message is implemented by every protocol message variant.
// The set of implementations is closed: only this package defines them.
type Message interface {
	Type() string
	isMessage()
}

// Hello opens a session on behalf of an account.
type Hello struct {
	Username string `json:"northeastern_username"`
}

// Start is the server's reply to Hello and carries the session id.
type Start struct {
	ID string `json:"id"`
}

// Guess submits one candidate word for the session.
type Guess struct {
	ID   string `json:"id"`
	Word string `json:"word"`
}

// GuessRecord is one entry of a Retry's guess history.
type GuessRecord struct {
	Word  string `json:"word"`
	Marks []Mark `json:"marks"`
}

// Retry reports that the last guess was wrong, with the full guess history.
type Retry struct {
	ID      string        `json:"id"`
	Guesses []GuessRecord `json:"guesses"`
}

// Latest returns the most recent guess record, if any.
func (r *Retry) Latest() (GuessRecord, bool) {
	if len(r.Guesses) == 0 {
		return GuessRecord{}, false
	}
	return r.Guesses[len(r.Guesses)-1], true
}

// Bye ends a won session and carries the reward flag.
type Bye struct {
	ID   string `json:"id"`
	Flag string `json:"flag"`
}

// Error is sent by the server when it rejects the client.
type Error struct {
	Message string `json:"message"`
}

func (*Hello) Type() string { return TypeHello }
func (*Start) Type() string { return TypeStart }
func (*Guess) Type() string { return TypeGuess }
func (*Retry) Type() string { return TypeRetry }
func (*Bye) Type() string   { return TypeBye }
func (*Error) Type() string { return TypeError }

func (*Hello) isMessage() {}
func (*Start) isMessage() {}
func (*Guess) isMessage() {}
func (*Retry) isMessage() {}
func (*Bye) isMessage()   {}
func (*Error) isMessage() {}
