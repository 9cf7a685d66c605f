package api

import (
	"encoding/base64"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"social-lab/auth"
	"social-lab/errors"
)

type sendMessageRequest struct {
	Receiver string `json:"receiver" binding:"required"`
	Content  string `json:"content"`
	// Image is an optional base64-encoded attachment.
	Image string `json:"image"`
}

func (s *Server) sendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	imageRef, err := s.saveImage("messages", req.Image)
	if err != nil {
		respondError(c, err)
		return
	}

	message, err := s.messaging.Send(c.Request.Context(), auth.ActorID(c), req.Receiver, req.Content, imageRef)
	if err != nil {
		s.discardImage(imageRef)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toMessageResponse(message))
}

func (s *Server) listMessages(c *gin.Context) {
	box, err := s.messaging.List(auth.ActorID(c), queryLimit(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sent_messages":     toMessageResponses(box.Sent),
		"received_messages": toMessageResponses(box.Received),
	})
}

func (s *Server) markMessageRead(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		// An unparseable id is indistinguishable from an unknown one.
		respondError(c, errors.ErrNotFound)
		return
	}

	if _, err := s.messaging.MarkRead(auth.ActorID(c), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Message is marked as read"})
}

func (s *Server) conversation(c *gin.Context) {
	messages, err := s.messaging.Conversation(auth.ActorID(c), c.Param("user_id"), queryLimit(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": toMessageResponses(messages)})
}

func (s *Server) searchMessages(c *gin.Context) {
	terms := c.Query("q")
	if terms == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter q is required"})
		return
	}

	results, err := s.messaging.Search(c.Request.Context(), auth.ActorID(c), terms, queryLimit(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": toMessageResponses(results)})
}

// saveImage decodes an optional base64 payload and persists it under the
// given media category. Empty input yields an empty reference.
func (s *Server) saveImage(category, encoded string) (string, error) {
	if encoded == "" {
		return "", nil
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", errors.ErrUnsupportedImage
	}
	return s.media.Save(category, data)
}

// discardImage removes a stored upload whose owning record was never
// created.
func (s *Server) discardImage(ref string) {
	if ref == "" {
		return
	}
	if err := s.media.Remove(ref); err != nil {
		s.log.Warn("orphan media cleanup failed", "ref", ref, "error", err)
	}
}

// queryLimit parses the optional limit parameter; 0 means no limit.
func queryLimit(c *gin.Context) int {
	raw := c.Query("limit")
	if raw == "" {
		return 0
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}
