// Package protocol defines the wire contract between clients and the
// server: a closed set of command and response variants, encoded as
// compact msgpack maps whose "type" entry carries the variant tag. Each
// WebSocket binary frame holds exactly one encoded message.
package protocol

// Variant tags. Commands and responses are decoded through separate entry
// points, so the move/reset tags are shared between the two directions.
const (
	TagConnect = "connect"
	TagMove    = "move"
	TagReset   = "reset"
	TagOk      = "ok"
	TagFail    = "fail"
)

// Command is a client-to-server message.
type Command interface {
	isCommand()
}

// Connect registers a participant under a display name.
type Connect struct {
	Name string
}

// Move attempts to place a stone at a flat cell index.
type Move struct {
	Cell uint32
	Name string
}

// Reset clears the active game, keeping the roster.
type Reset struct{}

func (*Connect) isCommand() {}
func (*Move) isCommand()    {}
func (*Reset) isCommand()   {}

// Response is a server-to-client message. Ok and Fail are delivered only
// to the originating peer; MoveMade and ResetDone are broadcast.
type Response interface {
	isResponse()
}

// Ok acknowledges a command to the peer that sent it.
type Ok struct {
	Addr string
}

// Fail reports a recoverable rejection to the offending peer.
type Fail struct {
	Message string
	Addr    string
}

// MoveMade announces a committed move to every peer. Winner is empty until
// the game is decided.
type MoveMade struct {
	Cell   uint32
	Color  uint8
	Winner string
}

// ResetDone announces that the game was cleared.
type ResetDone struct{}

func (*Ok) isResponse()        {}
func (*Fail) isResponse()      {}
func (*MoveMade) isResponse()  {}
func (*ResetDone) isResponse() {}
