package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dkeye/Estimate/internal/app"
	"github.com/dkeye/Estimate/internal/app/orch"
	"github.com/dkeye/Estimate/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type frame map[string]any

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	reg := app.NewRegistry()
	o := orch.New(reg, app.NewRoomManager(), app.NewFanout(reg), app.SimplePolicy{})
	cfg := &config.Config{Mode: "test", Secret: "test-secret"}
	srv := httptest.NewServer(SetupRouter(ctx, cfg, o))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) (*http.Response, frame) {
	t.Helper()
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(buf))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	defer resp.Body.Close()
	out := frame{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func getJSON(t *testing.T, url string) (*http.Response, frame) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("get %s: %v", url, err)
	}
	defer resp.Body.Close()
	out := frame{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws/signal"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msg frame) {
	t.Helper()
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write: %v", err)
	}
}

// readUntil skips frames until one of type typ arrives.
func readUntil(t *testing.T, conn *websocket.Conn, typ string) frame {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for {
		_ = conn.SetReadDeadline(deadline)
		var f frame
		if err := conn.ReadJSON(&f); err != nil {
			t.Fatalf("waiting for %s: %v", typ, err)
		}
		if f["type"] == typ {
			return f
		}
	}
}

func TestRESTRooms(t *testing.T) {
	srv := newTestServer(t)

	resp, body := getJSON(t, srv.URL+"/healthz")
	if resp.StatusCode != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("healthz: %d %v", resp.StatusCode, body)
	}

	resp, body = postJSON(t, srv.URL+"/api/rooms", frame{"name": "  Host  ", "mode": "SPLIT", "role": "DEV"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: %d %v", resp.StatusCode, body)
	}
	roomID, _ := body["roomId"].(string)
	if len(roomID) != 6 || body["mode"] != "SPLIT" || body["participantId"] == "" {
		t.Fatalf("unexpected create response %v", body)
	}

	resp, body = getJSON(t, srv.URL+"/api/rooms/"+strings.ToLower(roomID))
	if resp.StatusCode != http.StatusOK || body["exists"] != true || body["phase"] != "IDLE" {
		t.Fatalf("check: %d %v", resp.StatusCode, body)
	}

	resp, body = getJSON(t, srv.URL+"/api/rooms/NOPE22")
	if resp.StatusCode != http.StatusNotFound || body["exists"] != false {
		t.Fatalf("missing room: %d %v", resp.StatusCode, body)
	}

	resp, body = getJSON(t, srv.URL+"/api/rooms")
	rooms, _ := body["rooms"].([]any)
	if resp.StatusCode != http.StatusOK || len(rooms) != 1 {
		t.Fatalf("list: %d %v", resp.StatusCode, body)
	}
}

func TestRESTCreateValidation(t *testing.T) {
	srv := newTestServer(t)
	for _, req := range []frame{
		{"name": strings.Repeat("x", 40)},
		{"name": "Ann", "mode": "CHAOS"},
		{"name": "Ann", "role": "KING"},
	} {
		resp, body := postJSON(t, srv.URL+"/api/rooms", req)
		if resp.StatusCode != http.StatusBadRequest || body["error"] != "bad_payload" {
			t.Fatalf("%v: expected 400 bad_payload, got %d %v", req, resp.StatusCode, body)
		}
	}
}

func TestCreateRoomWithoutName(t *testing.T) {
	srv := newTestServer(t)

	resp, body := postJSON(t, srv.URL+"/api/rooms", frame{})
	if resp.StatusCode != http.StatusCreated || body["mode"] != "UNIFIED" {
		t.Fatalf("create without name: %d %v", resp.StatusCode, body)
	}
	resp, body = postJSON(t, srv.URL+"/api/rooms", frame{"name": "   "})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create with blank name: %d %v", resp.StatusCode, body)
	}

	conn := dial(t, srv)
	send(t, conn, frame{"type": "create_room", "mode": "SPLIT"})
	joined := readUntil(t, conn, "room_joined")
	parts, _ := joined["participants"].([]any)
	if len(parts) != 1 {
		t.Fatalf("unexpected participants %v", joined)
	}
	host := parts[0].(map[string]any)
	if host["name"] != "Host" || host["isHost"] != true || joined["mode"] != "SPLIT" {
		t.Fatalf("unexpected host seat %v", host)
	}
}

func TestSplitSessionOverWebsocket(t *testing.T) {
	srv := newTestServer(t)
	_, created := postJSON(t, srv.URL+"/api/rooms", frame{"name": "Host", "mode": "SPLIT"})
	roomID := created["roomId"].(string)
	hostID := created["participantId"].(string)

	host := dial(t, srv)
	send(t, host, frame{"type": "join_room", "roomId": roomID, "participantId": hostID, "name": "Host"})
	joined := readUntil(t, host, "room_joined")
	if joined["reconnected"] != true || joined["hostId"] != hostID {
		t.Fatalf("host must resume the created seat: %v", joined)
	}

	qa := dial(t, srv)
	send(t, qa, frame{"type": "join_room", "roomId": roomID, "name": "Quinn", "role": "QA"})
	readUntil(t, qa, "room_joined")
	readUntil(t, host, "presence")

	send(t, host, frame{"type": "start_vote", "roomId": roomID})
	readUntil(t, qa, "vote_started")

	send(t, qa, frame{"type": "cast_vote", "roomId": roomID, "value": "5"})
	ack := readUntil(t, qa, "ack")
	if ack["command"] != "cast_vote" {
		t.Fatalf("unexpected ack %v", ack)
	}
	update := readUntil(t, host, "vote_update")
	payload := update["payload"].(map[string]any)
	if _, leaked := payload["value"]; leaked || payload["hasVoted"] != true {
		t.Fatalf("vote value must stay hidden: %v", payload)
	}

	send(t, host, frame{"type": "cast_vote", "roomId": roomID, "value": "3"})
	send(t, host, frame{"type": "reveal", "roomId": roomID})
	revealed := readUntil(t, qa, "revealed")
	aggs := revealed["payload"].(map[string]any)["aggregates"].(map[string]any)
	groupA := aggs["groupA"].(map[string]any)
	groupB := aggs["groupB"].(map[string]any)
	if groupA["mean"] != 3.0 || groupB["mean"] != 5.0 {
		t.Fatalf("expected 3.0/5.0, got %v/%v", groupA["mean"], groupB["mean"])
	}

	send(t, qa, frame{"type": "end_session", "roomId": roomID})
	if f := readUntil(t, qa, "error"); f["error"] != "not_authorized" || f["command"] != "end_session" {
		t.Fatalf("unexpected error frame %v", f)
	}

	send(t, qa, frame{"type": "moonwalk"})
	if f := readUntil(t, qa, "error"); f["error"] != "unknown_command" {
		t.Fatalf("unexpected error frame %v", f)
	}

	send(t, host, frame{"type": "end_session", "roomId": roomID})
	ended := readUntil(t, qa, "session_ended")
	if ended["payload"].(map[string]any)["reason"] != "host" {
		t.Fatalf("unexpected end notice %v", ended)
	}

	send(t, qa, frame{"type": "ping"})
	readUntil(t, qa, "pong")

	resp, _ := getJSON(t, srv.URL+"/api/rooms/"+roomID)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("ended room must be gone, got %d", resp.StatusCode)
	}
}

func TestWebsocketDisconnectMarksParticipant(t *testing.T) {
	srv := newTestServer(t)
	_, created := postJSON(t, srv.URL+"/api/rooms", frame{"name": "Host"})
	roomID := created["roomId"].(string)

	host := dial(t, srv)
	send(t, host, frame{"type": "join_room", "roomId": roomID, "participantId": created["participantId"], "name": "Host"})
	readUntil(t, host, "room_joined")

	guest := dial(t, srv)
	send(t, guest, frame{"type": "join_room", "roomId": roomID, "name": "Gus"})
	joined := readUntil(t, guest, "room_joined")
	guestID := joined["participantId"].(string)
	readUntil(t, host, "presence")
	_ = guest.Close()

	for {
		p := readUntil(t, host, "presence")
		for _, raw := range p["payload"].(map[string]any)["participants"].([]any) {
			part := raw.(map[string]any)
			if part["id"] == guestID && part["connected"] == false {
				return
			}
		}
	}
}
