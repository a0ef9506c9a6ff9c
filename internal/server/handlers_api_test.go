package server

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
)

func getJSON(t *testing.T, url string, dest any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("get %s: %v", url, err)
	}
	defer resp.Body.Close()
	if dest != nil {
		if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp
}

func TestHealthEndpoint(t *testing.T) {
	_, ts := newGameServer(t)
	var body struct {
		Status    string `json:"status"`
		Timestamp string `json:"timestamp"`
	}
	resp := getJSON(t, ts.URL+"/health", &body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if body.Status != "ok" || body.Timestamp == "" {
		t.Fatalf("unexpected body: %+v", body)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("missing CORS header, got %q", got)
	}
}

func TestCronHealthEndpoint(t *testing.T) {
	_, ts := newGameServer(t)
	var body struct {
		Success bool   `json:"success"`
		Status  string `json:"status"`
	}
	resp := getJSON(t, ts.URL+"/api/cron/health", &body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if !body.Success || body.Status != "OK" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestGetRoomEndpointNotFound(t *testing.T) {
	_, ts := newGameServer(t)
	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	resp := getJSON(t, ts.URL+"/api/rooms/NOPE", &body)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if body.Success || body.Message != "Room not found" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestGetRoomEndpoint(t *testing.T) {
	srv, ts := newGameServer(t)
	room := newRoom("AB12CD34", "p1", "Alice")
	room.Voters["v1"] = newVoter("Cara")
	if err := srv.store.SaveRoom(context.Background(), room); err != nil {
		t.Fatalf("save: %v", err)
	}

	var body struct {
		Success bool `json:"success"`
		Room    struct {
			ID          string `json:"id"`
			State       string `json:"state"`
			PlayerCount int    `json:"playerCount"`
			VoterCount  int    `json:"voterCount"`
		} `json:"room"`
	}
	resp := getJSON(t, ts.URL+"/api/rooms/"+room.ID, &body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if !body.Success || body.Room.ID != room.ID || body.Room.State != stateWaiting {
		t.Fatalf("unexpected body: %+v", body)
	}
	if body.Room.PlayerCount != 1 || body.Room.VoterCount != 1 {
		t.Fatalf("unexpected counts: %+v", body.Room)
	}
}

func TestCORSPreflight(t *testing.T) {
	_, ts := newGameServer(t)
	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/rooms/AB12CD34", nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("preflight: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Methods"); got == "" {
		t.Fatal("missing Access-Control-Allow-Methods header")
	}
}
