package message

import "github.com/rocketscienceinc/tictactoe-worlds/internal/entity"

// Tag names a message variant; on the wire it is the single key of the message object.
type Tag string

// Message is one variant of the tagged union exchanged between peers and dispatched to systems.
type Message interface {
	Tag() Tag
}

const (
	TagMark             Tag = "Mark"
	TagSwitch           Tag = "Switch"
	TagMarked           Tag = "Marked"
	TagReady            Tag = "Ready"
	TagStart            Tag = "Start"
	TagSync             Tag = "Sync"
	TagVictory          Tag = "Victory"
	TagDraw             Tag = "Draw"
	TagNewWorld         Tag = "NewWorld"
	TagJoinWorld        Tag = "JoinWorld"
	TagJoinedWorld      Tag = "JoinedWorld"
	TagWorldNotFound    Tag = "WorldNotFound"
	TagWorldOccupied    Tag = "WorldOccupied"
	TagDisconnected     Tag = "Disconnected"
	TagRequestRematch   Tag = "RequestRematch"
	TagRematchRequested Tag = "RematchRequested"
	TagUpdateColors     Tag = "UpdateColors"
	TagPlayerProfile    Tag = "PlayerProfile"
	TagOpponentProfile  Tag = "OpponentProfile"
	TagReconnectID      Tag = "ReconnectId"
	TagConnected        Tag = "Connected"

	TagPlayerMark           Tag = "PlayerMark"
	TagPlayerReady          Tag = "PlayerReady"
	TagPlayerNewWorld       Tag = "PlayerNewWorld"
	TagPlayerJoinWorld      Tag = "PlayerJoinWorld"
	TagPlayerRequestRematch Tag = "PlayerRequestRematch"
	TagPlayerProfileChanged Tag = "PlayerProfileChanged"
	TagPlayerReconnect      Tag = "PlayerReconnect"
	TagPlayerDisconnected   Tag = "PlayerDisconnected"
)

// Mark asks to put the mover's sign on place 1..9.
type Mark struct {
	Place int `json:"place"`
}

// Switch hands the turn to To, or to the other sign when To is nil.
type Switch struct {
	To *entity.Mark `json:"to,omitempty"`
}

// Marked is raised after a mark was accepted.
type Marked struct {
	Place int         `json:"place"`
	Sign  entity.Mark `json:"sign"`
}

type Ready struct{}

// Start tells a player the match began, which sign they hold and whose turn it is.
type Start struct {
	Sign entity.Mark `json:"sign"`
	Turn entity.Mark `json:"turn"`
}

// Sync carries authoritative state; absent fields are left untouched by the receiver.
type Sync struct {
	ID    string        `json:"id,omitempty"`
	Board *entity.Board `json:"board,omitempty"`
	Turn  *entity.Mark  `json:"turn,omitempty"`
}

type Victory struct {
	Winner entity.Mark `json:"winner"`
	Line   entity.Line `json:"line"`
}

type Draw struct{}

type NewWorld struct{}

type JoinWorld struct {
	Name string `json:"name"`
}

type JoinedWorld struct {
	Name string `json:"name"`
}

type WorldNotFound struct {
	Name string `json:"name"`
}

type WorldOccupied struct {
	Name string `json:"name"`
}

type Disconnected struct{}

type RequestRematch struct{}

type RematchRequested struct{}

type UpdateColors struct {
	Scheme string `json:"scheme"`
	Hue    int    `json:"hue"`
}

type PlayerProfile struct {
	entity.Profile
}

type OpponentProfile struct {
	entity.Profile
}

// ReconnectID carries a player's stable id: server to client on connect, client to server to reclaim it.
type ReconnectID struct {
	ID string `json:"id"`
}

type Connected struct{}

// Messages below are produced at the player boundary; PlayerID is filled in by the server,
// never by the client.

type PlayerMark struct {
	PlayerID string `json:"playerId"`
	Place    int    `json:"place"`
}

type PlayerReady struct {
	PlayerID string `json:"playerId"`
}

type PlayerNewWorld struct {
	PlayerID string `json:"playerId"`
}

type PlayerJoinWorld struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
}

type PlayerRequestRematch struct {
	PlayerID string `json:"playerId"`
}

type PlayerProfileChanged struct {
	PlayerID string         `json:"playerId"`
	Profile  entity.Profile `json:"profile"`
}

type PlayerReconnect struct {
	PlayerID   string `json:"playerId"`
	PreviousID string `json:"previousId"`
}

type PlayerDisconnected struct {
	PlayerID string `json:"playerId"`
}

func (Mark) Tag() Tag                 { return TagMark }
func (Switch) Tag() Tag               { return TagSwitch }
func (Marked) Tag() Tag               { return TagMarked }
func (Ready) Tag() Tag                { return TagReady }
func (Start) Tag() Tag                { return TagStart }
func (Sync) Tag() Tag                 { return TagSync }
func (Victory) Tag() Tag              { return TagVictory }
func (Draw) Tag() Tag                 { return TagDraw }
func (NewWorld) Tag() Tag             { return TagNewWorld }
func (JoinWorld) Tag() Tag            { return TagJoinWorld }
func (JoinedWorld) Tag() Tag          { return TagJoinedWorld }
func (WorldNotFound) Tag() Tag        { return TagWorldNotFound }
func (WorldOccupied) Tag() Tag        { return TagWorldOccupied }
func (Disconnected) Tag() Tag         { return TagDisconnected }
func (RequestRematch) Tag() Tag       { return TagRequestRematch }
func (RematchRequested) Tag() Tag     { return TagRematchRequested }
func (UpdateColors) Tag() Tag         { return TagUpdateColors }
func (PlayerProfile) Tag() Tag        { return TagPlayerProfile }
func (OpponentProfile) Tag() Tag      { return TagOpponentProfile }
func (ReconnectID) Tag() Tag          { return TagReconnectID }
func (Connected) Tag() Tag            { return TagConnected }
func (PlayerMark) Tag() Tag           { return TagPlayerMark }
func (PlayerReady) Tag() Tag          { return TagPlayerReady }
func (PlayerNewWorld) Tag() Tag       { return TagPlayerNewWorld }
func (PlayerJoinWorld) Tag() Tag      { return TagPlayerJoinWorld }
func (PlayerRequestRematch) Tag() Tag { return TagPlayerRequestRematch }
func (PlayerProfileChanged) Tag() Tag { return TagPlayerProfileChanged }
func (PlayerReconnect) Tag() Tag      { return TagPlayerReconnect }
func (PlayerDisconnected) Tag() Tag   { return TagPlayerDisconnected }

// NewSync - builds a full Sync for the given board and turn.
func NewSync(id string, board entity.Board, turn entity.Mark) Sync {
	return Sync{ID: id, Board: &board, Turn: &turn}
}

// SwitchTo - builds a Switch with an explicit target.
func SwitchTo(mark entity.Mark) Switch {
	return Switch{To: &mark}
}
