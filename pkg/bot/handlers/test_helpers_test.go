package handlers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"
	"testing"
	"time"

	telegram "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/smith3v/tg-smile-reminder/pkg/bot/reminders"
	"github.com/smith3v/tg-smile-reminder/pkg/bot/timeinput"
	"github.com/smith3v/tg-smile-reminder/pkg/internal/testutil"
	"github.com/smith3v/tg-smile-reminder/pkg/logger"
)

type recordedRequest struct {
	path        string
	method      string
	contentType string
	body        []byte
}

// method is the Bot API method name, e.g. "sendMessage".
func (r recordedRequest) apiMethod() string {
	return r.path[strings.LastIndex(r.path, "/")+1:]
}

type mockClient struct {
	requests  []recordedRequest
	response  string
	responses map[string]string
}

func newMockClient() *mockClient {
	return &mockClient{
		response: `{"ok":true,"result":{}}`,
		responses: map[string]string{
			"sendChatAction":      `{"ok":true,"result":true}`,
			"answerCallbackQuery": `{"ok":true,"result":true}`,
		},
	}
}

func (m *mockClient) Do(req *http.Request) (*http.Response, error) {
	body, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	if err := req.Body.Close(); err != nil {
		return nil, fmt.Errorf("failed to close request body: %w", err)
	}
	recorded := recordedRequest{
		path:        req.URL.Path,
		method:      req.Method,
		contentType: req.Header.Get("Content-Type"),
		body:        body,
	}
	m.requests = append(m.requests, recorded)

	response := m.response
	if override, ok := m.responses[recorded.apiMethod()]; ok {
		response = override
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(response)),
		Header:     make(http.Header),
	}, nil
}

func (m *mockClient) requestsTo(method string) []recordedRequest {
	var out []recordedRequest
	for _, req := range m.requests {
		if req.apiMethod() == method {
			out = append(out, req)
		}
	}
	return out
}

// lastField returns a multipart field of the last request to method.
func (m *mockClient) lastField(t *testing.T, method, field string) string {
	t.Helper()
	reqs := m.requestsTo(method)
	if len(reqs) == 0 {
		t.Fatalf("expected at least one %s request", method)
	}
	value, ok := multipartField(t, reqs[len(reqs)-1], field)
	if !ok {
		t.Fatalf("field %q not found in %s request", field, method)
	}
	return value
}

func (m *mockClient) lastMessageText(t *testing.T) string {
	t.Helper()
	return m.lastField(t, "sendMessage", "text")
}

func multipartField(t *testing.T, req recordedRequest, field string) (string, bool) {
	t.Helper()
	mediaType, params, err := mime.ParseMediaType(req.contentType)
	if err != nil {
		t.Fatalf("failed to parse media type: %v", err)
	}
	if !strings.HasPrefix(mediaType, "multipart/") {
		t.Fatalf("unexpected media type: %s", mediaType)
	}

	reader := multipart.NewReader(bytes.NewReader(req.body), params["boundary"])
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			return "", false
		}
		if err != nil {
			t.Fatalf("failed to read multipart part: %v", err)
		}
		if part.FormName() == field {
			data, err := io.ReadAll(part)
			if err != nil {
				t.Fatalf("failed to read multipart field: %v", err)
			}
			return string(data), true
		}
	}
}

func newTestTelegramBot(t *testing.T, client *mockClient) *telegram.Bot {
	t.Helper()
	b, err := telegram.New("test-token",
		telegram.WithSkipGetMe(),
		telegram.WithHTTPClient(time.Second, client),
	)
	if err != nil {
		t.Fatalf("failed to create test bot: %v", err)
	}
	return b
}

func newTestUpdate(text string, userID int64) *models.Update {
	return &models.Update{
		Message: &models.Message{
			From: &models.User{
				ID: userID,
			},
			Chat: models.Chat{
				ID: userID,
			},
			Text: text,
		},
	}
}

func newTestCallbackUpdate(data string, userID, chatID int64, messageID int) *models.Update {
	return &models.Update{
		CallbackQuery: &models.CallbackQuery{
			ID:   "callback-1",
			From: models.User{ID: userID},
			Data: data,
			Message: models.MaybeInaccessibleMessage{
				Type: models.MaybeInaccessibleMessageTypeMessage,
				Message: &models.Message{
					ID: messageID,
					Chat: models.Chat{
						ID:   chatID,
						Type: models.ChatTypePrivate,
					},
				},
			},
		},
	}
}

// setupHandlerTest gives each test an empty database, a fixed clock and a
// clean pending time-input state.
func setupHandlerTest(t *testing.T) context.Context {
	t.Helper()
	testutil.SetupTestDB(t)
	logger.SetLogLevel(logger.ERROR)

	now := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	reminders.Clock = func() time.Time { return now }
	timeinput.ResetDefaultManager(func() time.Time { return now })
	t.Cleanup(func() {
		reminders.Clock = time.Now
		timeinput.ResetDefaultManager(nil)
	})
	return context.Background()
}
