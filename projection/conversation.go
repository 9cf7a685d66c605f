// Package projection builds read models over stored messages.
// Handles ordering and deduplication; it never touches storage itself.
package projection

import (
	"sort"

	"social-lab/domain"
)

// Conversation is the two-sided message history between an owner and one
// peer, deduplicated by message id.
type Conversation struct {
	Owner string
	Peer  string

	messages []domain.Message
	seen     map[string]struct{}
}

func NewConversation(owner, peer string) *Conversation {
	return &Conversation{
		Owner: owner,
		Peer:  peer,
		seen:  map[string]struct{}{},
	}
}

// Consume folds one message into the conversation. Messages involving
// other peers, and duplicates, are ignored.
func (c *Conversation) Consume(message domain.Message) {
	if !c.between(message.SenderID, message.ReceiverID) {
		return
	}
	id := message.ID.String()
	if _, dup := c.seen[id]; dup {
		return
	}
	c.seen[id] = struct{}{}
	c.messages = append(c.messages, message)
}

// Messages returns the conversation oldest first.
func (c *Conversation) Messages() []domain.Message {
	sort.SliceStable(c.messages, func(i, j int) bool {
		return c.messages[i].CreatedAt.Before(c.messages[j].CreatedAt)
	})
	return c.messages
}

func (c *Conversation) between(sender, receiver string) bool {
	return (sender == c.Owner && receiver == c.Peer) ||
		(sender == c.Peer && receiver == c.Owner)
}
