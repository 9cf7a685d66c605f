package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"social-lab/auth"
	"social-lab/errors"
	"social-lab/services"
)

// profileRequest carries an optional extended-profile payload. Pointer
// fields distinguish "absent" from "set to empty". CoverPhoto is base64.
type profileRequest struct {
	Location   *string `json:"location"`
	Website    *string `json:"website"`
	CoverPhoto *string `json:"cover_photo"`
}

func (s *Server) profileFields(req profileRequest) (services.ProfileFields, error) {
	fields := services.ProfileFields{
		Location: req.Location,
		Website:  req.Website,
	}
	if req.CoverPhoto != nil {
		ref, err := s.saveImage("covers", *req.CoverPhoto)
		if err != nil {
			return services.ProfileFields{}, err
		}
		fields.CoverRef = &ref
	}
	return fields, nil
}

func (s *Server) discardProfileCover(fields services.ProfileFields) {
	if fields.CoverRef != nil {
		s.discardImage(*fields.CoverRef)
	}
}

func (s *Server) createCoverProfile(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fields, err := s.profileFields(req)
	if err != nil {
		respondError(c, err)
		return
	}

	profile, err := s.profiles.Create(auth.ActorID(c), fields)
	if err != nil {
		s.discardProfileCover(fields)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toProfileResponse(profile))
}

func (s *Server) listCoverProfiles(c *gin.Context) {
	profiles, err := s.profiles.List(auth.ActorID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]profileResponse, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, toProfileResponse(p))
	}
	c.JSON(http.StatusOK, gin.H{"profiles": out})
}

func (s *Server) getCoverProfile(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, errors.ErrNotFound)
		return
	}

	profile, err := s.profiles.Get(auth.ActorID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProfileResponse(profile))
}

func (s *Server) updateCoverProfile(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, errors.ErrNotFound)
		return
	}

	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fields, err := s.profileFields(req)
	if err != nil {
		respondError(c, err)
		return
	}

	profile, err := s.profiles.Update(auth.ActorID(c), id, fields)
	if err != nil {
		s.discardProfileCover(fields)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProfileResponse(profile))
}

func (s *Server) deleteCoverProfile(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, errors.ErrNotFound)
		return
	}

	if err := s.profiles.Delete(auth.ActorID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
