package messenger

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSendText(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"recipient_id":"u1","message_id":"m_out"}`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	err := client.SendText(context.Background(), "pg1", "u1", "Bonjour!", "tok123")
	if err != nil {
		t.Fatalf("SendText failed: %v", err)
	}

	if gotPath != "/pg1/messages" {
		t.Errorf("Expected /pg1/messages path, got %s", gotPath)
	}
	if gotAuth != "Bearer tok123" {
		t.Errorf("Expected bearer auth, got %q", gotAuth)
	}
	recipient := gotBody["recipient"].(map[string]interface{})
	if recipient["id"] != "u1" {
		t.Errorf("Expected recipient u1, got %v", recipient["id"])
	}
	message := gotBody["message"].(map[string]interface{})
	if message["text"] != "Bonjour!" {
		t.Errorf("Expected message text, got %v", message["text"])
	}
	if gotBody["messaging_type"] != "RESPONSE" {
		t.Errorf("Expected RESPONSE messaging type, got %v", gotBody["messaging_type"])
	}
}

func TestSendTextGraphError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"Invalid OAuth access token","type":"OAuthException","code":190}}`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	err := client.SendText(context.Background(), "pg1", "u1", "hi", "bad-token")
	if err == nil {
		t.Fatal("Expected delivery error")
	}

	var derr *DeliveryError
	if !errors.As(err, &derr) {
		t.Fatalf("Expected DeliveryError, got %T", err)
	}
	if derr.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", derr.StatusCode)
	}
	if derr.Message != "Invalid OAuth access token" {
		t.Errorf("Expected Graph error message extracted, got %q", derr.Message)
	}
}

func TestSenderName(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("fields") != "first_name,last_name" {
			t.Errorf("Expected name fields requested, got %q", r.URL.Query().Get("fields"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"first_name":"Jean","last_name":"Dupont"}`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	name, err := client.SenderName(context.Background(), "u1", "tok")
	if err != nil {
		t.Fatalf("SenderName failed: %v", err)
	}
	if name != "Jean Dupont" {
		t.Errorf("Expected Jean Dupont, got %q", name)
	}
}

func TestSenderNameFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	if _, err := client.SenderName(context.Background(), "u1", "tok"); err == nil {
		t.Fatal("Expected error on profile lookup failure")
	}
}

func TestValidatePageToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"pg1","name":"Ma Boutique"}`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	info, err := client.ValidatePageToken(context.Background(), "pg1", "tok")
	if err != nil {
		t.Fatalf("ValidatePageToken failed: %v", err)
	}
	if info.ID != "pg1" || info.Name != "Ma Boutique" {
		t.Errorf("Unexpected page info %+v", info)
	}
}

func TestValidatePageTokenRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Invalid OAuth access token"}}`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	if _, err := client.ValidatePageToken(context.Background(), "pg1", "bad"); err == nil {
		t.Fatal("Expected validation failure")
	}
}
