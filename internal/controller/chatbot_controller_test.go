package controller

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"ecomm-product-bot/internal/pkg/logger"
	"ecomm-product-bot/internal/pkg/serverutils"
	"ecomm-product-bot/internal/service"
	"ecomm-product-bot/pkg/failure"
	"ecomm-product-bot/pkg/vectorstore"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChatbot struct {
	mu       sync.Mutex
	answer   string
	err      error
	sessions []string
	messages []string
}

func (f *fakeChatbot) Ask(ctx context.Context, sessionID, message string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions = append(f.sessions, sessionID)
	f.messages = append(f.messages, message)
	return f.answer, f.err
}

func (f *fakeChatbot) Attach(store *vectorstore.Store) {}

func (f *fakeChatbot) Ready() bool { return f.err == nil }

func newApp(svc service.IChatbotService) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: serverutils.ErrorHandlerMiddleware(logger.NewNopLogger())})
	app.Use(serverutils.SessionMiddleware([]byte("secret"), false))
	NewChatbotController(svc).RegisterRoutes(app)
	return app
}

func postMsg(t *testing.T, app *fiber.App, msg string, cookies ...*http.Cookie) (*http.Response, string) {
	t.Helper()
	form := url.Values{}
	if msg != "" {
		form.Set("msg", msg)
	}
	req := httptest.NewRequest(http.MethodPost, "/get", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func TestIndexServesChatPage(t *testing.T) {
	resp, err := newApp(&fakeChatbot{}).Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)

	assert.Equal(t, 200, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, string(body), `fetch("/get"`)
}

func TestChatReturnsPlainTextAnswer(t *testing.T) {
	svc := &fakeChatbot{answer: "Try the boAt Airdopes 141."}
	resp, body := postMsg(t, newApp(svc), "hello")

	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "Try the boAt Airdopes 141.", body)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/plain")
	assert.Equal(t, []string{"hello"}, svc.messages)
	assert.NotEmpty(t, svc.sessions[0])
}

func TestChatKeepsSessionAcrossRequests(t *testing.T) {
	svc := &fakeChatbot{answer: "ok"}
	app := newApp(svc)

	resp, _ := postMsg(t, app, "first")
	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == serverutils.SessionCookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie)

	postMsg(t, app, "second", cookie)
	postMsg(t, app, "stranger")

	require.Len(t, svc.sessions, 3)
	assert.Equal(t, svc.sessions[0], svc.sessions[1])
	assert.NotEqual(t, svc.sessions[0], svc.sessions[2])
}

func TestChatErrors(t *testing.T) {
	tests := []struct {
		name string
		msg  string
		err  error
		want int
	}{
		{"missing msg", "", nil, 400},
		{"blank msg", "   ", nil, 400},
		{"not initialized", "hi", failure.Application("chatbot.ask", service.ErrChainNotInitialized), 503},
		{"llm unreachable", "hi", failure.Transient("llm.chat", errors.New("timeout")), 502},
		{"llm rejected", "hi", failure.Remote("llm.chat", errors.New("401")), 502},
		{"unexpected", "hi", errors.New("boom"), 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeChatbot{answer: "x", err: tt.err}
			resp, body := postMsg(t, newApp(svc), tt.msg)
			assert.Equal(t, tt.want, resp.StatusCode)
			assert.NotEmpty(t, body)
		})
	}
}

func TestGetOnlyAcceptsPost(t *testing.T) {
	resp, err := newApp(&fakeChatbot{}).Test(httptest.NewRequest(http.MethodGet, "/get", nil))
	require.NoError(t, err)
	assert.Equal(t, 405, resp.StatusCode)
}
