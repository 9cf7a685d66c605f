package api

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"social-lab/errors"
)

// statusFromError maps domain errors onto HTTP status codes. Unknown
// errors become 500 without leaking their message to the client.
func statusFromError(err error) int {
	switch {
	case stderrors.Is(err, errors.ErrNotFound):
		return http.StatusNotFound
	case stderrors.Is(err, errors.ErrNotOwner):
		return http.StatusForbidden
	case stderrors.Is(err, errors.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case stderrors.Is(err, errors.ErrSelfTarget),
		stderrors.Is(err, errors.ErrAlreadyFollowing),
		stderrors.Is(err, errors.ErrNotFollowing),
		stderrors.Is(err, errors.ErrProfileExists),
		stderrors.Is(err, errors.ErrEmptyContent),
		stderrors.Is(err, errors.ErrUserAlreadyExists),
		stderrors.Is(err, errors.ErrInvalidPassword),
		stderrors.Is(err, errors.ErrUnsupportedImage):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	status := statusFromError(err)
	if status == http.StatusInternalServerError {
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
