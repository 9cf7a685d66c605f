package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"social-lab/auth"
)

func (s *Server) follow(c *gin.Context) {
	if err := s.social.Follow(c.Request.Context(), auth.ActorID(c), c.Param("user_id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user followed successfully"})
}

func (s *Server) unfollow(c *gin.Context) {
	if err := s.social.Unfollow(c.Request.Context(), auth.ActorID(c), c.Param("user_id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user unfollowed successfully"})
}

func (s *Server) following(c *gin.Context) {
	ids, err := s.social.Following(auth.ActorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"following": ids})
}

func (s *Server) followers(c *gin.Context) {
	ids, err := s.social.Followers(auth.ActorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"followers": ids})
}
