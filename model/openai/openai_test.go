package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hupe1980/agentcrew/core"
	"github.com/hupe1980/agentcrew/model"
	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMessages(t *testing.T) {
	msgs := buildMessages([]core.Message{
		core.SystemMessage("sys"),
		core.UserMessage("question"),
		core.AssistantMessage("thought"),
	})

	require.Len(t, msgs, 3)
	assert.NotNil(t, msgs[0].OfSystem)
	assert.NotNil(t, msgs[1].OfUser)
	assert.NotNil(t, msgs[2].OfAssistant)
}

func TestBuildParams_RequestModelOverridesDefault(t *testing.T) {
	m := NewModel(func(o *Options) { o.APIKey = "test" })

	params := m.buildParams(model.Request{Model: "llama-3.3-70b-versatile"})
	assert.Equal(t, "llama-3.3-70b-versatile", string(params.Model))

	params = m.buildParams(model.Request{})
	assert.Equal(t, "gpt-4o-mini", string(params.Model))
}

func TestComplete_AgainstCompatibleEndpoint(t *testing.T) {
	var got struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"m","choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"<response>5</response>"}}]}`))
	}))
	defer srv.Close()

	m := NewModel(func(o *Options) {
		o.APIKey = "test"
		o.BaseURL = srv.URL + "/"
		o.RequestOptions = []option.RequestOption{option.WithMaxRetries(0)}
	})

	out, err := m.Complete(context.Background(), model.Request{
		Model:    "m",
		Messages: []core.Message{core.SystemMessage("sys"), core.UserMessage("2+3?")},
	})
	require.NoError(t, err)
	assert.Equal(t, "<response>5</response>", out)

	assert.Equal(t, "m", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "2+3?", got.Messages[1].Content)
}

func TestComplete_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"bad","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	m := NewModel(func(o *Options) {
		o.APIKey = "test"
		o.BaseURL = srv.URL + "/"
		o.RequestOptions = []option.RequestOption{option.WithMaxRetries(0)}
	})

	_, err := m.Complete(context.Background(), model.Request{Messages: []core.Message{core.UserMessage("x")}})
	assert.Error(t, err)
}

func TestNewGroqModel(t *testing.T) {
	m := NewGroqModel("key")
	assert.Equal(t, model.Info{Name: model.DefaultModelID, Provider: "groq"}, m.Info())
	assert.Equal(t, GroqBaseURL, m.opts.BaseURL)
}
