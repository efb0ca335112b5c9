package message

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrMalformed  = errors.New("malformed message")
	ErrUnknownTag = errors.New("unknown message tag")
)

type decoder func(raw json.RawMessage) (Message, error)

// Entry binds one message type to its tag inside a Registry.
type Entry struct {
	tag    Tag
	decode decoder
}

// Of - builds the registry entry for message type M.
func Of[M Message]() Entry {
	var zero M

	return Entry{
		tag: zero.Tag(),
		decode: func(raw json.RawMessage) (Message, error) {
			var msg M
			if err := json.Unmarshal(raw, &msg); err != nil {
				return nil, fmt.Errorf("%w: %s: %w", ErrMalformed, zero.Tag(), err)
			}

			return msg, nil
		},
	}
}

// Registry lists the tags a peer accepts from the wire.
// Decoding with a registry rejects every tag it does not list.
type Registry struct {
	name     string
	decoders map[Tag]decoder
}

func NewRegistry(name string, entries ...Entry) *Registry {
	registry := &Registry{
		name:     name,
		decoders: make(map[Tag]decoder, len(entries)),
	}

	for _, entry := range entries {
		registry.decoders[entry.tag] = entry.decode
	}

	return registry
}

func (that *Registry) Name() string {
	return that.name
}

func (that *Registry) Has(tag Tag) bool {
	_, ok := that.decoders[tag]
	return ok
}

// Decode - reads a single-key object {"<Tag>": payload} into its message type.
func (that *Registry) Decode(raw []byte) (Message, error) {
	var envelope map[Tag]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	if len(envelope) != 1 {
		return nil, fmt.Errorf("%w: expected one tag, got %d", ErrMalformed, len(envelope))
	}

	for tag, payload := range envelope {
		decode, ok := that.decoders[tag]
		if !ok {
			return nil, fmt.Errorf("%w: %s in %s", ErrUnknownTag, tag, that.name)
		}

		if len(payload) == 0 || string(payload) == "null" {
			payload = json.RawMessage("{}")
		}

		return decode(payload)
	}

	return nil, ErrMalformed
}

// Encode - writes msg as {"<Tag>": payload}.
func Encode(msg Message) ([]byte, error) {
	raw, err := json.Marshal(map[Tag]Message{msg.Tag(): msg})
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", msg.Tag(), err)
	}

	return raw, nil
}

// ClientToServer lists what a server accepts from a browser.
var ClientToServer = NewRegistry("client-to-server",
	Of[Mark](),
	Of[Ready](),
	Of[NewWorld](),
	Of[JoinWorld](),
	Of[RequestRematch](),
	Of[PlayerProfile](),
	Of[ReconnectID](),
)

// ServerToClient lists what a client accepts from the server.
var ServerToClient = NewRegistry("server-to-client",
	Of[Start](),
	Of[Sync](),
	Of[Victory](),
	Of[Draw](),
	Of[JoinedWorld](),
	Of[WorldNotFound](),
	Of[WorldOccupied](),
	Of[Disconnected](),
	Of[RematchRequested](),
	Of[OpponentProfile](),
	Of[ReconnectID](),
)

// All lists every message shape, including the ones that never leave a peer.
var All = NewRegistry("all",
	Of[Mark](),
	Of[Switch](),
	Of[Marked](),
	Of[Ready](),
	Of[Start](),
	Of[Sync](),
	Of[Victory](),
	Of[Draw](),
	Of[NewWorld](),
	Of[JoinWorld](),
	Of[JoinedWorld](),
	Of[WorldNotFound](),
	Of[WorldOccupied](),
	Of[Disconnected](),
	Of[RequestRematch](),
	Of[RematchRequested](),
	Of[UpdateColors](),
	Of[PlayerProfile](),
	Of[OpponentProfile](),
	Of[ReconnectID](),
	Of[Connected](),
	Of[PlayerMark](),
	Of[PlayerReady](),
	Of[PlayerNewWorld](),
	Of[PlayerJoinWorld](),
	Of[PlayerRequestRematch](),
	Of[PlayerProfileChanged](),
	Of[PlayerReconnect](),
	Of[PlayerDisconnected](),
)
