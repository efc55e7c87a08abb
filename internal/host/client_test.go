package host

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{}

// recordingHandler captures every dispatched event.
type recordingHandler struct {
	mu         sync.Mutex
	properties []string
	inspector  Sink
	messages   []string
	tiles      []string
	opens      int
	closes     int
}

func (h *recordingHandler) OnProperties(properties []byte) {
	h.mu.Lock()
	h.properties = append(h.properties, string(properties))
	h.mu.Unlock()
}

func (h *recordingHandler) OnInspectorOpen(ins Sink) {
	h.mu.Lock()
	h.inspector = ins
	h.opens++
	h.mu.Unlock()
}

func (h *recordingHandler) OnInspectorClose() {
	h.mu.Lock()
	h.closes++
	h.mu.Unlock()
}

func (h *recordingHandler) OnInspectorMessage(ins Sink, message []byte) {
	h.mu.Lock()
	h.inspector = ins
	h.messages = append(h.messages, string(message))
	h.mu.Unlock()
}

func (h *recordingHandler) OnTileClicked(actionID string, properties []byte) {
	h.mu.Lock()
	h.tiles = append(h.tiles, actionID+":"+string(properties))
	h.mu.Unlock()
}

// newRuntime starts a fake host runtime that pushes the given envelopes to
// the plugin after registration, then keeps reading until the client hangs
// up. Frames written by the plugin are collected into sent.
func newRuntime(t *testing.T, push []outEnvelope, sent *[][]byte, sentMu *sync.Mutex) string {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		// Expect REGISTER_PLUGIN then GET_PROPERTIES.
		for i := 0; i < 2; i++ {
			var env envelope
			if err := conn.ReadJSON(&env); err != nil {
				return
			}
			if i == 0 && env.Type != MsgRegisterPlugin {
				t.Errorf("first message type = %s, want REGISTER_PLUGIN", env.Type)
			}
		}

		conn.WriteJSON(outEnvelope{Type: MsgRegistered})
		for _, env := range push {
			if err := conn.WriteJSON(env); err != nil {
				return
			}
		}

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			sentMu.Lock()
			*sent = append(*sent, data)
			sentMu.Unlock()
		}
	}))
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("timed out waiting for condition")
}

func TestRunDispatch(t *testing.T) {
	var sent [][]byte
	var sentMu sync.Mutex

	push := []outEnvelope{
		{Type: MsgProperties, Properties: map[string]any{"auth": map[string]any{"host": "127.0.0.1", "port": 4455, "password": ""}}},
		{Type: MsgInspectorOpen, Inspector: "ins-1"},
		{Type: MsgSendToInspector}, // bogus direction, must be ignored
		{Type: MsgRecvFromInspector, Inspector: "ins-1", Message: map[string]string{"type": "GET_CLIENT_STATE"}},
		{Type: MsgTileClicked, Inspector: "", Message: nil},
		{Type: MsgInspectorClose, Inspector: "ins-1"},
	}
	url := newRuntime(t, push, &sent, &sentMu)

	client := NewClient(url, "com.tilepad.obs-studio")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := client.Connect(ctx); err != nil {
		t.Fatalf("Connect error: %v", err)
	}

	h := &recordingHandler{}
	done := make(chan struct{})
	go func() {
		client.Run(ctx, h)
		close(done)
	}()

	waitFor(t, func() bool {
		h.mu.Lock()
		defer h.mu.Unlock()
		return h.closes == 1
	})

	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.properties) != 1 || !strings.Contains(h.properties[0], `"port":4455`) {
		t.Errorf("properties = %v", h.properties)
	}
	if h.opens != 1 {
		t.Errorf("inspector opens = %d, want 1", h.opens)
	}
	if len(h.messages) != 1 || !strings.Contains(h.messages[0], "GET_CLIENT_STATE") {
		t.Errorf("inspector messages = %v", h.messages)
	}
	if len(h.tiles) != 1 {
		t.Errorf("tile clicks = %v", h.tiles)
	}

	cancel()
	<-done
}

func TestTileClickedEnvelopeDecoding(t *testing.T) {
	env := envelope{}
	raw := []byte(`{"type":"TILE_CLICKED","action_id":"recording","properties":{"action":"Start"}}`)
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if env.Type != MsgTileClicked || env.ActionID != "recording" {
		t.Errorf("envelope = %+v", env)
	}
	if !strings.Contains(string(env.Properties), "Start") {
		t.Errorf("properties = %s", env.Properties)
	}
}

func TestSetPropertiesAndInspectorSend(t *testing.T) {
	var sent [][]byte
	var sentMu sync.Mutex

	push := []outEnvelope{
		{Type: MsgInspectorOpen, Inspector: "ins-7"},
	}
	url := newRuntime(t, push, &sent, &sentMu)

	client := NewClient(url, "com.tilepad.obs-studio")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := client.Connect(ctx); err != nil {
		t.Fatalf("Connect error: %v", err)
	}

	h := &recordingHandler{}
	go client.Run(ctx, h)

	waitFor(t, func() bool {
		h.mu.Lock()
		defer h.mu.Unlock()
		return h.inspector != nil
	})

	if err := client.SetProperties(map[string]string{"note": "hello"}); err != nil {
		t.Fatalf("SetProperties error: %v", err)
	}

	h.mu.Lock()
	ins := h.inspector
	h.mu.Unlock()
	if err := ins.Send(InspectorOut{Type: OutClientState, State: "CONNECTED"}); err != nil {
		t.Fatalf("inspector Send error: %v", err)
	}

	waitFor(t, func() bool {
		sentMu.Lock()
		defer sentMu.Unlock()
		return len(sent) >= 2
	})

	sentMu.Lock()
	defer sentMu.Unlock()

	var props envelope
	if err := json.Unmarshal(sent[0], &props); err != nil {
		t.Fatalf("unmarshal sent frame: %v", err)
	}
	if props.Type != MsgSetProperties {
		t.Errorf("first sent type = %s, want SET_PROPERTIES", props.Type)
	}

	var toIns envelope
	if err := json.Unmarshal(sent[1], &toIns); err != nil {
		t.Fatalf("unmarshal sent frame: %v", err)
	}
	if toIns.Type != MsgSendToInspector || toIns.Inspector != "ins-7" {
		t.Errorf("second sent frame = %+v, want SEND_TO_INSPECTOR to ins-7", toIns)
	}
	if !strings.Contains(string(toIns.Message), "CONNECTED") {
		t.Errorf("inspector message = %s", toIns.Message)
	}
}
