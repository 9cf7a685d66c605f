package api

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"social-lab/auth"
	"social-lab/observability"
	"social-lab/repositories"
	"social-lab/search"
	"social-lab/services"
	"social-lab/sink"
	"social-lab/storage"
)

func newTestRouter(t *testing.T) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	index, err := search.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	mediaRoot := t.TempDir()
	media, err := storage.NewMediaStore(mediaRoot)
	require.NoError(t, err)

	log := slog.Default()
	users := repositories.NewUserRepository(db)
	messages := repositories.NewMessageRepository(db, log)
	edges := repositories.NewFollowRepository(db)
	profiles := repositories.NewProfileRepository(db)
	notifications := repositories.NewNotificationRepository(db)
	events := sink.NewDiskSink(notifications, log)
	tokens := auth.NewTokenManager("api-test-secret", time.Hour)

	server := NewServer(
		services.NewAuthService(users, tokens),
		services.NewAccountService(users, messages, edges, profiles, notifications, log),
		services.NewMessagingService(messages, users, events, index, nil, log),
		services.NewSocialService(edges, users, events, log),
		services.NewProfileService(profiles),
		media,
		tokens,
		observability.NewMonitor(),
		log,
	)
	return server.Router(), mediaRoot
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

// registerUser creates an account through the public endpoint and returns
// its token and id.
func registerUser(t *testing.T, router *gin.Engine, username string) (token, id string) {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/register/", "", gin.H{
		"username": username,
		"email":    fmt.Sprintf("%s@example.com", username),
		"password": "Sup3r-Secret-Pass!",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decode(t, rec)
	user := body["user"].(map[string]any)
	return body["token"].(string), user["id"].(string)
}

func TestRegisterAndLogin(t *testing.T) {
	router, _ := newTestRouter(t)

	token, _ := registerUser(t, router, "alice")
	require.NotEmpty(t, token)

	t.Run("duplicate username rejected", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/register/", "", gin.H{
			"username": "alice",
			"email":    "other@example.com",
			"password": "Sup3r-Secret-Pass!",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("weak password rejected", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/register/", "", gin.H{
			"username": "carol",
			"email":    "carol@example.com",
			"password": "short",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("login succeeds with correct password", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/login/", "", gin.H{
			"username": "alice",
			"password": "Sup3r-Secret-Pass!",
		})
		require.Equal(t, http.StatusOK, rec.Code)
		require.NotEmpty(t, decode(t, rec)["token"])
	})

	t.Run("login fails with wrong password", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/login/", "", gin.H{
			"username": "alice",
			"password": "Wrong-Password-99!",
		})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestMessagingScenario(t *testing.T) {
	router, _ := newTestRouter(t)
	aliceToken, aliceID := registerUser(t, router, "alice")
	bobToken, bobID := registerUser(t, router, "bob")

	rec := doJSON(t, router, http.MethodPost, "/messages/", aliceToken, gin.H{
		"receiver": bobID,
		"content":  "hello bob",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	sent := decode(t, rec)
	require.Equal(t, false, sent["is_read"])
	messageID := sent["id"].(string)

	t.Run("receiver sees it unread", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/messages/", bobToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		received := decode(t, rec)["received_messages"].([]any)
		require.Len(t, received, 1)
		require.Equal(t, "hello bob", received[0].(map[string]any)["content"])
	})

	t.Run("sender cannot mark it read", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPut, "/messages/"+messageID+"/", aliceToken, nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("receiver marks it read", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPut, "/messages/"+messageID+"/", bobToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "Message is marked as read", decode(t, rec)["message"])
	})

	t.Run("self message rejected", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/messages/", bobToken, gin.H{
			"receiver": bobID,
			"content":  "note to self",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("empty content rejected", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/messages/", aliceToken, gin.H{
			"receiver": bobID,
			"content":  "   ",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("conversation merges both directions", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/messages/", bobToken, gin.H{
			"receiver": aliceID,
			"content":  "hi alice",
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = doJSON(t, router, http.MethodGet, "/messages/conversation/"+bobID+"/", aliceToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		messages := decode(t, rec)["messages"].([]any)
		require.Len(t, messages, 2)
		require.Equal(t, "hello bob", messages[0].(map[string]any)["content"])
		require.Equal(t, "hi alice", messages[1].(map[string]any)["content"])
	})

	t.Run("search finds own conversation", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/messages/search/?q=hello", bobToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, decode(t, rec)["results"].([]any), 1)
	})

	t.Run("notification recorded for receiver", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/notifications/", bobToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		items := decode(t, rec)["notifications"].([]any)
		require.Len(t, items, 1)
		require.Equal(t, "Direct message", items[0].(map[string]any)["verb"])
	})

	t.Run("unauthenticated request rejected", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/messages/", "", nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestFollowScenario(t *testing.T) {
	router, _ := newTestRouter(t)
	aliceToken, aliceID := registerUser(t, router, "alice")
	bobToken, bobID := registerUser(t, router, "bob")

	rec := doJSON(t, router, http.MethodPost, "/follow/"+bobID+"/", aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	t.Run("double follow rejected", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/follow/"+bobID+"/", aliceToken, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("self follow rejected", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/follow/"+aliceID+"/", aliceToken, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("edge visible from both sides", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/following/", aliceToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, []any{bobID}, decode(t, rec)["following"])

		rec = doJSON(t, router, http.MethodGet, "/followers/", bobToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, []any{aliceID}, decode(t, rec)["followers"])
	})

	t.Run("unfollow then unfollow again", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/unfollow/"+bobID+"/", aliceToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = doJSON(t, router, http.MethodPost, "/unfollow/"+bobID+"/", aliceToken, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown target is 404", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/follow/no-such-user/", aliceToken, nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestCoverProfileCRUD(t *testing.T) {
	router, _ := newTestRouter(t)
	aliceToken, _ := registerUser(t, router, "alice")
	bobToken, _ := registerUser(t, router, "bob")

	rec := doJSON(t, router, http.MethodPost, "/cover_profile/", aliceToken, gin.H{
		"location": "Paris",
		"website":  "https://alice.example.com",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	profileID := decode(t, rec)["id"].(string)

	t.Run("second profile rejected", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/cover_profile/", aliceToken, gin.H{
			"location": "Lyon",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("owner reads and updates it", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/cover_profile/"+profileID+"/", aliceToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "Paris", decode(t, rec)["location"])

		rec = doJSON(t, router, http.MethodPut, "/cover_profile/"+profileID+"/", aliceToken, gin.H{
			"location": "Lyon",
		})
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "Lyon", decode(t, rec)["location"])
	})

	t.Run("non owner is forbidden", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPut, "/cover_profile/"+profileID+"/", bobToken, gin.H{
			"location": "Oslo",
		})
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("own account view includes profile", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/profile/", aliceToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		require.Equal(t, "alice", body["user"].(map[string]any)["username"])
		require.Contains(t, body, "profile")
	})

	t.Run("delete then 404", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodDelete, "/cover_profile/"+profileID+"/", aliceToken, nil)
		require.Equal(t, http.StatusNoContent, rec.Code)

		rec = doJSON(t, router, http.MethodGet, "/cover_profile/"+profileID+"/", aliceToken, nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestAccountLifecycle(t *testing.T) {
	router, _ := newTestRouter(t)
	aliceToken, _ := registerUser(t, router, "alice")

	t.Run("update bio", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPut, "/profile/update/", aliceToken, gin.H{
			"bio": "gopher",
		})
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "gopher", decode(t, rec)["bio"])
	})

	t.Run("delete account revokes access to data", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodDelete, "/profile/delete/", aliceToken, nil)
		require.Equal(t, http.StatusNoContent, rec.Code)

		rec = doJSON(t, router, http.MethodGet, "/profile/", aliceToken, nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHealthz(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, decode(t, rec), "uptime_seconds")
}

// Minimal valid PNG header plus IHDR chunk, enough for content sniffing.
var pngPayload = []byte{
	0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a,
	0x00, 0x00, 0x00, 0x0d, 'I', 'H', 'D', 'R',
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x02, 0x00, 0x00, 0x00,
}

func mediaFiles(t *testing.T, root string) []string {
	t.Helper()
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	require.NoError(t, err)
	return files
}

func TestSendImageCleanup(t *testing.T) {
	router, mediaRoot := newTestRouter(t)
	aliceToken, aliceID := registerUser(t, router, "alice")
	_, bobID := registerUser(t, router, "bob")

	image := base64.StdEncoding.EncodeToString(pngPayload)

	t.Run("rejected send leaves no file behind", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/messages/", aliceToken, gin.H{
			"receiver": aliceID,
			"content":  "note to self",
			"image":    image,
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Empty(t, mediaFiles(t, mediaRoot))
	})

	t.Run("accepted send keeps the file", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/messages/", aliceToken, gin.H{
			"receiver": bobID,
			"content":  "picture attached",
			"image":    image,
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		require.Len(t, mediaFiles(t, mediaRoot), 1)
	})

	t.Run("rejected profile cover leaves no file behind", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/cover_profile/", aliceToken, gin.H{
			"location":    "Paris",
			"cover_photo": image,
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		before := len(mediaFiles(t, mediaRoot))
		rec = doJSON(t, router, http.MethodPost, "/cover_profile/", aliceToken, gin.H{
			"location":    "Lyon",
			"cover_photo": image,
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Len(t, mediaFiles(t, mediaRoot), before)
	})
}
