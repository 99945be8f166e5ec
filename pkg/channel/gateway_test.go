package channel

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newGatewayServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *GatewayClient) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv, NewGatewayClient(srv.URL, "test-token", 5*time.Second, nil)
}

func TestGatewayClientIsUsable(t *testing.T) {
	var gotAuth string
	_, client := newGatewayServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Path != "/v1/sessions/acct-1/status" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]bool{"online": true})
	})

	if !client.IsUsable(context.Background(), "acct-1") {
		t.Fatal("online session must be usable")
	}
	if gotAuth != "Bearer test-token" {
		t.Fatalf("authorization header = %q", gotAuth)
	}
}

func TestGatewayClientSendChatMessage(t *testing.T) {
	_, client := newGatewayServer(t, func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		json.NewDecoder(r.Body).Decode(&payload)
		if payload["chat_ref"] != ChatRef("buyer-1", "item-1") || payload["text"] != "你好" {
			t.Fatalf("unexpected payload: %v", payload)
		}
		json.NewEncoder(w).Encode(gatewayResult{Success: true})
	})

	ok, err := client.SendChatMessage(context.Background(), "acct-1", ChatRef("buyer-1", "item-1"), "buyer-1", "你好")
	if err != nil || !ok {
		t.Fatalf("send = (%v, %v), want success", ok, err)
	}
}

func TestGatewayClientRejectedSend(t *testing.T) {
	_, client := newGatewayServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(gatewayResult{Success: false, Message: "session busy"})
	})

	ok, err := client.SendChatMessage(context.Background(), "acct-1", "ref", "buyer-1", "你好")
	if ok || err == nil {
		t.Fatalf("send = (%v, %v), want rejection error", ok, err)
	}
}

func TestGatewayClientPostReviewStatusError(t *testing.T) {
	_, client := newGatewayServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	ok, err := client.PostReview(context.Background(), "acct-1", "order-1", "好评")
	if ok || err == nil {
		t.Fatalf("post review = (%v, %v), want error on non-200", ok, err)
	}
}
