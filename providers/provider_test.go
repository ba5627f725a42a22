package providers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestParseProvider(t *testing.T) {
	cases := []struct {
		in   string
		want Provider
		ok   bool
	}{
		{"openai", OpenAI, true},
		{"OpenAI", OpenAI, true},
		{" mistral ", Mistral, true},
		{"CLAUDE", Claude, true},
		{"cohere", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseProvider(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Errorf("ParseProvider(%q) = %v, %v; want %v", tc.in, got, err, tc.want)
		}
		if !tc.ok && err == nil {
			t.Errorf("ParseProvider(%q) should fail", tc.in)
		}
	}
}

func TestModelCatalogs(t *testing.T) {
	for _, p := range []Provider{OpenAI, Mistral, Claude} {
		if len(Models(p)) == 0 {
			t.Errorf("Expected a model catalog for %s", p)
		}
	}
	if Models(Provider("cohere")) != nil {
		t.Error("Unknown provider must have a nil catalog")
	}
}

func TestProviderErrorUnwrap(t *testing.T) {
	inner := errors.New("boom")
	err := &ProviderError{Provider: OpenAI, Message: "chat completion failed", Err: inner}
	if !errors.Is(err, inner) {
		t.Error("Expected ProviderError to unwrap its cause")
	}
}

// chatStub captures a chat-completions request and replies with a fixed
// message
type chatStub struct {
	gotModel    string
	gotMessages []map[string]string
	gotPenalty  bool
	reply       string
	status      int
}

func newChatStubServer(t *testing.T, stub *chatStub) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req struct {
			Model            string              `json:"model"`
			Messages         []map[string]string `json:"messages"`
			PresencePenalty  float64             `json:"presence_penalty"`
			FrequencyPenalty float64             `json:"frequency_penalty"`
		}
		json.Unmarshal(body, &req)
		stub.gotModel = req.Model
		stub.gotMessages = req.Messages
		stub.gotPenalty = req.PresencePenalty != 0 || req.FrequencyPenalty != 0

		if stub.status != 0 {
			w.WriteHeader(stub.status)
			w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": stub.reply}},
			},
		})
	}))
}

func TestGenerateOpenAI(t *testing.T) {
	stub := &chatStub{reply: "  Bonjour!  "}
	server := newChatStubServer(t, stub)
	defer server.Close()

	m := &Manager{openAIBaseURL: server.URL}
	reply, err := m.Generate(context.Background(), Config{
		Provider: OpenAI, APIKey: "sk-test",
	}, "system prompt", "user question")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if reply != "Bonjour!" {
		t.Errorf("Expected trimmed reply, got %q", reply)
	}
	if stub.gotModel != defaultOpenAIModel {
		t.Errorf("Expected default model %s, got %s", defaultOpenAIModel, stub.gotModel)
	}
	if len(stub.gotMessages) != 2 || stub.gotMessages[0]["role"] != "system" {
		t.Errorf("Expected system+user messages, got %v", stub.gotMessages)
	}
	if stub.gotMessages[0]["content"] != "system prompt" {
		t.Errorf("Expected system prompt forwarded, got %q", stub.gotMessages[0]["content"])
	}
	if !stub.gotPenalty {
		t.Error("Expected repetition penalties on OpenAI requests")
	}
}

func TestGenerateMistralOmitsPenalties(t *testing.T) {
	stub := &chatStub{reply: "Réponse"}
	server := newChatStubServer(t, stub)
	defer server.Close()

	m := &Manager{mistralBaseURL: server.URL}
	reply, err := m.Generate(context.Background(), Config{
		Provider: Mistral, Model: "mistral-medium", APIKey: "mk-test",
	}, "sys", "question")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if reply != "Réponse" {
		t.Errorf("Unexpected reply %q", reply)
	}
	if stub.gotModel != "mistral-medium" {
		t.Errorf("Expected configured model, got %s", stub.gotModel)
	}
	if stub.gotPenalty {
		t.Error("Mistral requests must not carry repetition penalties")
	}
}

func TestGenerateUpstreamError(t *testing.T) {
	stub := &chatStub{status: http.StatusUnauthorized}
	server := newChatStubServer(t, stub)
	defer server.Close()

	m := &Manager{openAIBaseURL: server.URL}
	_, err := m.Generate(context.Background(), Config{Provider: OpenAI, APIKey: "bad"}, "s", "u")
	if err == nil {
		t.Fatal("Expected upstream failure")
	}

	var perr *ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("Expected ProviderError, got %T", err)
	}
	if perr.Provider != OpenAI {
		t.Errorf("Expected provider openai, got %s", perr.Provider)
	}
}

func TestGenerateUnknownProvider(t *testing.T) {
	m := NewManager()
	_, err := m.Generate(context.Background(), Config{Provider: "cohere"}, "s", "u")
	if err == nil {
		t.Fatal("Expected error for unknown provider")
	}
}

func TestValidateOpenAI(t *testing.T) {
	stub := &chatStub{reply: "ok"}
	server := newChatStubServer(t, stub)
	defer server.Close()

	m := &Manager{openAIBaseURL: server.URL}
	if err := m.Validate(context.Background(), Config{Provider: OpenAI, APIKey: "sk-test"}); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if len(stub.gotMessages) != 1 || stub.gotMessages[0]["content"] != "Test" {
		t.Errorf("Expected minimal Test message, got %v", stub.gotMessages)
	}
}

func TestValidateRejectsBadCredential(t *testing.T) {
	stub := &chatStub{status: http.StatusUnauthorized}
	server := newChatStubServer(t, stub)
	defer server.Close()

	m := &Manager{mistralBaseURL: server.URL}
	if err := m.Validate(context.Background(), Config{Provider: Mistral, APIKey: "bad"}); err == nil {
		t.Fatal("Expected validation failure")
	}
}

func TestGenerateClaude(t *testing.T) {
	var gotModel string
	var gotSystem bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req struct {
			Model  string        `json:"model"`
			System []interface{} `json:"system"`
		}
		json.Unmarshal(body, &req)
		gotModel = req.Model
		gotSystem = len(req.System) > 0

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-3-sonnet-20240229",
			"content": [{"type": "text", "text": "Réponse de Claude"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 10, "output_tokens": 5}
		}`))
	}))
	defer server.Close()

	m := &Manager{anthropicBaseURL: server.URL}
	reply, err := m.Generate(context.Background(), Config{
		Provider: Claude, APIKey: "ak-test",
	}, "system prompt", "question")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if reply != "Réponse de Claude" {
		t.Errorf("Unexpected reply %q", reply)
	}
	if gotModel != defaultClaudeModel {
		t.Errorf("Expected default Claude model, got %s", gotModel)
	}
	if !gotSystem {
		t.Error("Expected system prompt in the request")
	}
}
