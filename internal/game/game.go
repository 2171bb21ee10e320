// Package game implements the authoritative five-in-a-row state machine:
// the board, win detection, turn order and the player roster. The package
// is deliberately lock-free; the server serializes every command through a
// single mutex, which is the system's only ordering guarantee.
package game

import "errors"

// Error messages are surfaced verbatim to the offending peer.
var (
	ErrNotEnoughPlayers = errors.New("wait for a second player to connect")
	ErrOutOfTurn        = errors.New("it's not your move")
	ErrUnknownPlayer    = errors.New("you are not a participant in this game")
	ErrInvalidCell      = errors.New("cell index is outside the board")
)

// DefaultWinLength is how many contiguous stones win a game.
const DefaultWinLength = 5

// Player is a roster entry. Color stays zero until the opening move of a
// game assigns colors; once assigned it only changes on the opening move
// of the next game after a reset.
type Player struct {
	Addr  string
	Name  string
	Color uint8
}

// MoveResult describes a committed move.
type MoveResult struct {
	Cell  int
	Color uint8
	// Winner carries the winner's name once a game is decided, empty
	// before that.
	Winner string
}

// Game owns the roster, the whose-turn state, the winner and the board.
// Only the first two roster entries are participants; later connections
// receive broadcasts but their moves are rejected.
type Game struct {
	players []Player
	active  int // index into players, -1 until the opening move
	winner  string
	board   *Board
	winLen  int
}

// New creates a game on the default 17x15 board.
func New() *Game {
	return NewSized(DefaultRows, DefaultCols, DefaultWinLength)
}

// NewSized creates a game on a rows x cols board won by winLen in a row.
func NewSized(rows, cols, winLen int) *Game {
	return &Game{
		active: -1,
		board:  NewBoard(rows, cols),
		winLen: winLen,
	}
}

// Connect appends a player bound to the caller's network address, with no
// color yet. It always succeeds; name collisions are resolved by first
// roster match when moving.
func (g *Game) Connect(name, addr string) {
	g.players = append(g.players, Player{Addr: addr, Name: name})
}

// Move validates and applies a move by the named player. A failed
// validation leaves the game completely unchanged.
//
// The opening move of a game is never turn-checked: whichever participant
// sends it gets color 1, the other participant gets color 2 and the next
// turn. After that turns strictly alternate.
func (g *Game) Move(cell int, name string) (MoveResult, error) {
	if len(g.players) < 2 {
		return MoveResult{}, ErrNotEnoughPlayers
	}
	if !g.board.InBounds(cell) {
		return MoveResult{}, ErrInvalidCell
	}

	var mover, other int
	switch name {
	case g.players[0].Name:
		mover, other = 0, 1
	case g.players[1].Name:
		mover, other = 1, 0
	default:
		return MoveResult{}, ErrUnknownPlayer
	}

	if g.active >= 0 {
		if mover != g.active {
			return MoveResult{}, ErrOutOfTurn
		}
	} else {
		g.players[mover].Color = 1
		g.players[other].Color = 2
	}
	g.active = other

	color := g.players[mover].Color
	g.board.Set(cell, color)
	if g.winner == "" && findWin(g.board, color, g.winLen) {
		g.winner = g.players[mover].Name
	}

	return MoveResult{Cell: cell, Color: color, Winner: g.winner}, nil
}

// Reset clears the active player, the winner and the board. The roster and
// any colors already assigned are left untouched; colors are reassigned on
// the next opening move.
func (g *Game) Reset() {
	g.active = -1
	g.winner = ""
	g.board.Reset()
}

// Players returns a copy of the roster.
func (g *Game) Players() []Player {
	out := make([]Player, len(g.players))
	copy(out, g.players)
	return out
}

// Active returns the index of the player whose turn it is. ok is false
// before the opening move.
func (g *Game) Active() (int, bool) {
	return g.active, g.active >= 0
}

// Winner returns the winner's name, or empty while the game is undecided.
func (g *Game) Winner() string {
	return g.winner
}

// Board exposes the underlying board for inspection.
func (g *Game) Board() *Board {
	return g.board
}
