// Package search maintains a full-text index over message content.
// Indexing is best-effort from the messaging service: a failed index write
// is logged and never fails the send.
package search

import (
	"context"
	"social-lab/domain"

	"github.com/blugelabs/bluge"
	"github.com/google/uuid"
)

// defaultSearchLimit caps unbounded queries.
const defaultSearchLimit = 50

type Index struct {
	writer *bluge.Writer
}

// Open creates or reopens the index at path.
func Open(path string) (*Index, error) {
	writer, err := bluge.OpenWriter(bluge.DefaultConfig(path))
	if err != nil {
		return nil, err
	}
	return &Index{writer: writer}, nil
}

func (i *Index) Close() error {
	return i.writer.Close()
}

// IndexMessage stores the message content under both participants, so a
// later search can be scoped to messages the actor sent or received.
func (i *Index) IndexMessage(message domain.Message) error {
	doc := bluge.NewDocument(message.ID.String()).
		AddField(bluge.NewTextField("content", message.Content)).
		AddField(bluge.NewKeywordField("participant", message.SenderID)).
		AddField(bluge.NewKeywordField("participant", message.ReceiverID))
	return i.writer.Update(doc.ID(), doc)
}

// Remove drops a message from the index.
func (i *Index) Remove(id uuid.UUID) error {
	return i.writer.Delete(bluge.Identifier(id.String()))
}

// Search returns ids of the actor's messages matching the terms, best
// match first.
func (i *Index) Search(ctx context.Context, actorID, terms string, limit int) ([]uuid.UUID, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	reader, err := i.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	query := bluge.NewBooleanQuery().
		AddMust(bluge.NewMatchQuery(terms).SetField("content")).
		AddMust(bluge.NewTermQuery(actorID).SetField("participant"))

	iterator, err := reader.Search(ctx, bluge.NewTopNSearch(limit, query))
	if err != nil {
		return nil, err
	}

	var ids []uuid.UUID
	match, err := iterator.Next()
	for err == nil && match != nil {
		visitErr := match.VisitStoredFields(func(field string, value []byte) bool {
			if field == "_id" {
				if id, parseErr := uuid.Parse(string(value)); parseErr == nil {
					ids = append(ids, id)
				}
			}
			return true
		})
		if visitErr != nil {
			return nil, visitErr
		}
		match, err = iterator.Next()
	}
	if err != nil {
		return nil, err
	}
	return ids, nil
}
