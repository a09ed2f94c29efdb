package lib

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType is the aleph message kind
type MessageType string

const (
	MessageAggregate MessageType = "AGGREGATE"
	MessagePost      MessageType = "POST"
	MessageStore     MessageType = "STORE"
)

// ItemType describes where the message content lives
type ItemType string

const (
	ItemInline  ItemType = "inline"
	ItemStorage ItemType = "storage"
	ItemIPFS    ItemType = "ipfs"
)

// Message is an aleph network message; content is attached by the storage layer before signing
type Message struct {
	Chain       ChainType       `json:"chain"`
	Channel     string          `json:"channel,omitempty"`
	Sender      string          `json:"sender"`
	Type        MessageType     `json:"type"`
	Time        float64         `json:"time"`
	ItemType    ItemType        `json:"item_type,omitempty"`
	ItemContent string          `json:"item_content,omitempty"`
	ItemHash    string          `json:"item_hash,omitempty"`
	Signature   string          `json:"signature,omitempty"`
	Content     json.RawMessage `json:"content,omitempty"`
}

// NewMessage() creates an unsigned message stamped with the current time
func NewMessage(chain ChainType, channel, sender string, t MessageType) *Message {
	return &Message{
		Chain:   chain,
		Channel: channel,
		Sender:  sender,
		Type:    t,
		Time:    UnixSeconds(time.Now()),
	}
}

// VerificationBuffer() returns the exact bytes every chain signs
// changing the separators or the field order breaks verification across the network
func (m *Message) VerificationBuffer() []byte {
	return []byte(fmt.Sprintf("%s\n%s\n%s\n%s", m.Chain, m.Sender, m.Type, m.ItemHash))
}

// IsSigned() returns true if a signature was written back
func (m *Message) IsSigned() bool { return m.Signature != "" }

// UnixSeconds() converts t to fractional unix seconds
func UnixSeconds(t time.Time) float64 { return float64(t.UnixNano()) / float64(time.Second) }
