package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"threads-server/controllers"
	"threads-server/middlewares"
	"threads-server/models"
	"threads-server/repository"
	"threads-server/routes"
	"threads-server/services"
)

const testSecret = "test-secret"

type stubUploader struct{}

func (stubUploader) Upload(_ context.Context, _ string) (string, error) {
	return "https://media.example/hosted/upload123.png", nil
}

func (stubUploader) Destroy(_ context.Context, _ string) error { return nil }

type testServer struct {
	router   *gin.Engine
	db       *gorm.DB
	registry *services.Registry
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.Post{},
		&models.PostLike{},
		&models.PostReply{},
		&models.Conversation{},
		&models.Message{},
	))

	users := repository.NewUserRepository(db)
	posts := repository.NewPostRepository(db)
	conversations := repository.NewConversationRepository(db)
	messages := repository.NewMessageRepository(db)

	media := stubUploader{}
	registry := services.NewRegistry()
	chat := services.NewChatService(conversations, messages, media, registry)

	router := routes.RegisterRoutes(
		controllers.NewUserController(users, posts, media, testSecret),
		controllers.NewPostController(posts, users, media),
		controllers.NewMessageController(chat),
		controllers.NewWSController(registry, chat),
		middlewares.TokenAuth(users, testSecret),
	)

	return &testServer{router: router, db: db, registry: registry}
}

func (s *testServer) request(t *testing.T, method, path, cookie string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: middlewares.CookieName, Value: cookie})
	}

	recorder := httptest.NewRecorder()
	s.router.ServeHTTP(recorder, req)
	return recorder
}

// signUp registers an account and returns its id and session token.
func (s *testServer) signUp(t *testing.T, name, username string) (string, string) {
	t.Helper()

	recorder := s.request(t, http.MethodPost, "/api/user/sign-up", "", gin.H{
		"name":     name,
		"email":    username + "@example.com",
		"username": username,
		"password": "hunter22",
	})
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	var body struct {
		Data struct {
			ID string `json:"_id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))

	var token string
	for _, cookie := range recorder.Result().Cookies() {
		if cookie.Name == middlewares.CookieName {
			token = cookie.Value
		}
	}
	require.NotEmpty(t, token)
	return body.Data.ID, token
}

func TestUserEndpoints(t *testing.T) {
	server := newTestServer(t)

	aliceID, aliceToken := server.signUp(t, "Alice", "alice")
	bobID, _ := server.signUp(t, "Bob", "bob")

	t.Run("duplicate sign-up is rejected", func(t *testing.T) {
		recorder := server.request(t, http.MethodPost, "/api/user/sign-up", "", gin.H{
			"name":     "Alice Again",
			"email":    "alice@example.com",
			"username": "alice2",
			"password": "hunter22",
		})
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("sign-in with wrong password fails uniformly", func(t *testing.T) {
		recorder := server.request(t, http.MethodPost, "/api/user/sign-in", "", gin.H{
			"username": "alice",
			"password": "wrong",
		})
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)

		recorder = server.request(t, http.MethodPost, "/api/user/sign-in", "", gin.H{
			"username": "nobody",
			"password": "wrong",
		})
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("sign-in succeeds and never leaks the password", func(t *testing.T) {
		recorder := server.request(t, http.MethodPost, "/api/user/sign-in", "", gin.H{
			"username": "alice",
			"password": "hunter22",
		})
		require.Equal(t, http.StatusOK, recorder.Code)
		assert.NotContains(t, recorder.Body.String(), "password")
		assert.NotContains(t, recorder.Body.String(), "hunter22")
	})

	t.Run("profile lookup by id and username", func(t *testing.T) {
		byID := server.request(t, http.MethodGet, "/api/user/profile/"+aliceID, "", nil)
		assert.Equal(t, http.StatusOK, byID.Code)

		byName := server.request(t, http.MethodGet, "/api/user/profile/alice", "", nil)
		assert.Equal(t, http.StatusOK, byName.Code)

		missing := server.request(t, http.MethodGet, "/api/user/profile/nobody", "", nil)
		assert.Equal(t, http.StatusNotFound, missing.Code)
	})

	t.Run("follow rules", func(t *testing.T) {
		self := server.request(t, http.MethodPost, "/api/user/follow/"+aliceID, aliceToken, nil)
		assert.Equal(t, http.StatusBadRequest, self.Code)

		ok := server.request(t, http.MethodPost, "/api/user/follow/"+bobID, aliceToken, nil)
		assert.Equal(t, http.StatusOK, ok.Code)

		again := server.request(t, http.MethodPost, "/api/user/follow/"+bobID, aliceToken, nil)
		assert.Equal(t, http.StatusBadRequest, again.Code)

		unfollow := server.request(t, http.MethodPost, "/api/user/unfollow/"+bobID, aliceToken, nil)
		assert.Equal(t, http.StatusOK, unfollow.Code)

		notFollowing := server.request(t, http.MethodPost, "/api/user/unfollow/"+bobID, aliceToken, nil)
		assert.Equal(t, http.StatusBadRequest, notFollowing.Code)
	})

	t.Run("auth required", func(t *testing.T) {
		recorder := server.request(t, http.MethodGet, "/api/user/suggested", "", nil)
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})
}

func TestPostEndpoints(t *testing.T) {
	server := newTestServer(t)

	aliceID, aliceToken := server.signUp(t, "Alice", "alice")
	_, bobToken := server.signUp(t, "Bob", "bob")

	create := server.request(t, http.MethodPost, "/api/post/create", aliceToken, gin.H{
		"postedBy": aliceID,
		"text":     "hello threads",
	})
	require.Equal(t, http.StatusCreated, create.Code, create.Body.String())

	var created struct {
		Data models.Post `json:"data"`
	}
	require.NoError(t, json.Unmarshal(create.Body.Bytes(), &created))
	postID := created.Data.ID

	t.Run("cannot post as someone else", func(t *testing.T) {
		recorder := server.request(t, http.MethodPost, "/api/post/create", bobToken, gin.H{
			"postedBy": aliceID,
			"text":     "impersonation",
		})
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("text length is capped", func(t *testing.T) {
		long := make([]byte, models.MaxPostTextLength+1)
		for i := range long {
			long[i] = 'a'
		}
		recorder := server.request(t, http.MethodPost, "/api/post/create", aliceToken, gin.H{
			"postedBy": aliceID,
			"text":     string(long),
		})
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("like rules", func(t *testing.T) {
		own := server.request(t, http.MethodPost, "/api/post/like/"+postID, aliceToken, nil)
		assert.Equal(t, http.StatusBadRequest, own.Code)

		ok := server.request(t, http.MethodPost, "/api/post/like/"+postID, bobToken, nil)
		assert.Equal(t, http.StatusOK, ok.Code)

		again := server.request(t, http.MethodPost, "/api/post/like/"+postID, bobToken, nil)
		assert.Equal(t, http.StatusBadRequest, again.Code)

		unlike := server.request(t, http.MethodPost, "/api/post/unlike/"+postID, bobToken, nil)
		assert.Equal(t, http.StatusOK, unlike.Code)
	})

	t.Run("reply requires text", func(t *testing.T) {
		empty := server.request(t, http.MethodPost, "/api/post/reply/"+postID, bobToken, gin.H{})
		assert.Equal(t, http.StatusBadRequest, empty.Code)

		ok := server.request(t, http.MethodPost, "/api/post/reply/"+postID, bobToken, gin.H{"text": "nice"})
		assert.Equal(t, http.StatusOK, ok.Code)
	})

	t.Run("feed shows followed authors only", func(t *testing.T) {
		before := server.request(t, http.MethodGet, "/api/post/feed", bobToken, nil)
		require.Equal(t, http.StatusOK, before.Code)
		assert.NotContains(t, before.Body.String(), postID)

		follow := server.request(t, http.MethodPost, "/api/user/follow/"+aliceID, bobToken, nil)
		require.Equal(t, http.StatusOK, follow.Code)

		after := server.request(t, http.MethodGet, "/api/post/feed", bobToken, nil)
		require.Equal(t, http.StatusOK, after.Code)
		assert.Contains(t, after.Body.String(), postID)
	})

	t.Run("only the owner deletes", func(t *testing.T) {
		denied := server.request(t, http.MethodDelete, "/api/post/delete/"+postID, bobToken, nil)
		assert.Equal(t, http.StatusUnauthorized, denied.Code)

		ok := server.request(t, http.MethodDelete, "/api/post/delete/"+postID, aliceToken, nil)
		assert.Equal(t, http.StatusOK, ok.Code)

		gone := server.request(t, http.MethodGet, "/api/post/get/"+postID, "", nil)
		assert.Equal(t, http.StatusNotFound, gone.Code)
	})
}

func TestMessageEndpoints(t *testing.T) {
	server := newTestServer(t)

	aliceID, aliceToken := server.signUp(t, "Alice", "alice")
	bobID, bobToken := server.signUp(t, "Bob", "bob")

	t.Run("history without a conversation is 404", func(t *testing.T) {
		recorder := server.request(t, http.MethodGet, "/api/message/get-all/"+bobID, aliceToken, nil)
		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})

	t.Run("send then fetch history", func(t *testing.T) {
		send := server.request(t, http.MethodPost, "/api/message/send", aliceToken, gin.H{
			"recipientId": bobID,
			"text":        "hi",
		})
		require.Equal(t, http.StatusOK, send.Code, send.Body.String())

		var sent struct {
			Data models.Message `json:"data"`
		}
		require.NoError(t, json.Unmarshal(send.Body.Bytes(), &sent))
		assert.Equal(t, aliceID, sent.Data.Sender)
		assert.Equal(t, "hi", sent.Data.Text)
		assert.False(t, sent.Data.Seen)

		history := server.request(t, http.MethodGet, "/api/message/get-all/"+bobID, aliceToken, nil)
		require.Equal(t, http.StatusOK, history.Code)

		var listed struct {
			Data []models.Message `json:"data"`
		}
		require.NoError(t, json.Unmarshal(history.Body.Bytes(), &listed))
		require.Len(t, listed.Data, 1)
		assert.Equal(t, sent.Data.ID, listed.Data[0].ID)
	})

	t.Run("empty send is rejected", func(t *testing.T) {
		recorder := server.request(t, http.MethodPost, "/api/message/send", aliceToken, gin.H{
			"recipientId": bobID,
		})
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("conversation list filters the caller out", func(t *testing.T) {
		recorder := server.request(t, http.MethodGet, "/api/message/get-all-conversation", bobToken, nil)
		require.Equal(t, http.StatusOK, recorder.Code)

		var listed struct {
			Data []services.ConversationView `json:"data"`
		}
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &listed))
		require.Len(t, listed.Data, 1)
		require.Len(t, listed.Data[0].Participants, 1)
		assert.Equal(t, aliceID, listed.Data[0].Participants[0].ID)
		assert.Equal(t, "alice", listed.Data[0].Participants[0].Username)
		assert.Equal(t, "hi", listed.Data[0].LastMessage.Text)
	})

	t.Run("auth required", func(t *testing.T) {
		recorder := server.request(t, http.MethodPost, "/api/message/send", "", gin.H{
			"recipientId": bobID,
			"text":        "hi",
		})
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})
}
