package api

import (
	"time"

	"github.com/samber/lo"

	"social-lab/domain"
)

// JSON shapes returned by the HTTP layer. Internal fields such as the
// password hash never cross this boundary.

type userResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Bio       string    `json:"bio,omitempty"`
	Avatar    string    `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toUserResponse(u domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Bio:       u.Bio,
		Avatar:    u.AvatarRef,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type messageResponse struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"`
	Receiver  string    `json:"receiver"`
	Content   string    `json:"content"`
	Image     string    `json:"image,omitempty"`
	Lang      string    `json:"lang,omitempty"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toMessageResponse(m domain.Message) messageResponse {
	return messageResponse{
		ID:        m.ID.String(),
		Sender:    m.SenderID,
		Receiver:  m.ReceiverID,
		Content:   m.Content,
		Image:     m.ImageRef,
		Lang:      m.Lang,
		IsRead:    m.IsRead,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func toMessageResponses(messages []domain.Message) []messageResponse {
	return lo.Map(messages, func(m domain.Message, _ int) messageResponse {
		return toMessageResponse(m)
	})
}

type profileResponse struct {
	ID         string    `json:"id"`
	User       string    `json:"user"`
	Location   string    `json:"location,omitempty"`
	Website    string    `json:"website,omitempty"`
	CoverPhoto string    `json:"cover_photo,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func toProfileResponse(p domain.Profile) profileResponse {
	return profileResponse{
		ID:         p.ID.String(),
		User:       p.OwnerID,
		Location:   p.Location,
		Website:    p.Website,
		CoverPhoto: p.CoverRef,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

type notificationResponse struct {
	ID         string    `json:"id"`
	Actor      string    `json:"actor"`
	Verb       string    `json:"verb"`
	TargetKind string    `json:"target_kind"`
	TargetID   string    `json:"target_id"`
	CreatedAt  time.Time `json:"created_at"`
}

func toNotificationResponse(n domain.Notification) notificationResponse {
	return notificationResponse{
		ID:         n.ID.String(),
		Actor:      n.ActorID,
		Verb:       n.Verb,
		TargetKind: string(n.Target.Kind),
		TargetID:   n.Target.ID,
		CreatedAt:  n.CreatedAt,
	}
}
