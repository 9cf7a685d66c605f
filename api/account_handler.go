package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"social-lab/auth"
	"social-lab/services"
)

func (s *Server) me(c *gin.Context) {
	view, err := s.accounts.Me(auth.ActorID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	body := gin.H{"user": toUserResponse(view.User)}
	if view.Profile != nil {
		body["profile"] = toProfileResponse(*view.Profile)
	}
	c.JSON(http.StatusOK, body)
}

// accountUpdateRequest mirrors services.AccountFields; Avatar is base64.
type accountUpdateRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Bio      *string `json:"bio"`
	Avatar   *string `json:"avatar"`
}

func (s *Server) updateAccount(c *gin.Context) {
	var req accountUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fields := services.AccountFields{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Bio:      req.Bio,
	}
	if req.Avatar != nil {
		ref, err := s.saveImage("avatars", *req.Avatar)
		if err != nil {
			respondError(c, err)
			return
		}
		fields.AvatarRef = &ref
	}

	user, err := s.accounts.Update(auth.ActorID(c), fields)
	if err != nil {
		if fields.AvatarRef != nil {
			s.discardImage(*fields.AvatarRef)
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}

func (s *Server) deleteAccount(c *gin.Context) {
	if err := s.accounts.Delete(auth.ActorID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) notifications(c *gin.Context) {
	items, err := s.accounts.Notifications(auth.ActorID(c), queryLimit(c))
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]notificationResponse, 0, len(items))
	for _, n := range items {
		out = append(out, toNotificationResponse(n))
	}
	c.JSON(http.StatusOK, gin.H{"notifications": out})
}
