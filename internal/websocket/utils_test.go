package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
)

// dialTestConn upgrades a loopback connection and returns the wrapped server
// side plus a channel of every frame the client receives.
func dialTestConn(t *testing.T, frames int) (*Conn, <-chan []byte) {
	t.Helper()

	upgrader := websocket.Upgrader{}
	serverSide := make(chan *Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		serverSide <- Wrap(raw)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	received := make(chan []byte, frames)
	go func() {
		defer close(received)
		for i := 0; i < frames; i++ {
			_, data, err := client.ReadMessage()
			if err != nil {
				return
			}
			received <- data
		}
	}()

	conn := <-serverSide
	t.Cleanup(func() { conn.Close() })
	return conn, received
}

// The feed handler writes pong replies from its reader goroutine while the
// relay loop writes prediction events. Both must be able to hit the
// connection at once without corrupting frames.
func TestConnConcurrentWriters(t *testing.T) {
	const perWriter = 50
	conn, received := dialTestConn(t, perWriter*2)

	payload := []byte(`{"id":1,"student_id":7,"prediction_result":"safe"}`)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < perWriter; i++ {
			if err := conn.WriteTyped(PongResponse{Event: EventPong}); err != nil {
				t.Errorf("WriteTyped: %v", err)
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < perWriter; i++ {
			if err := conn.WritePrediction(payload); err != nil {
				t.Errorf("WritePrediction: %v", err)
				return
			}
		}
	}()
	wg.Wait()

	count := 0
	for data := range received {
		var frame struct {
			Event Event `json:"event"`
		}
		if err := json.Unmarshal(data, &frame); err != nil {
			t.Fatalf("frame %d not valid JSON: %v", count, err)
		}
		if frame.Event != EventPong && frame.Event != EventPrediction {
			t.Fatalf("frame %d has event %q", count, frame.Event)
		}
		count++
	}
	if count != perWriter*2 {
		t.Fatalf("received %d frames, want %d", count, perWriter*2)
	}
}

func TestConnWritePredictionSplicesPayload(t *testing.T) {
	conn, received := dialTestConn(t, 1)

	if err := conn.WritePrediction([]byte(`{"id":42}`)); err != nil {
		t.Fatalf("WritePrediction: %v", err)
	}

	data, ok := <-received
	if !ok {
		t.Fatal("no frame received")
	}
	var frame struct {
		Event Event           `json:"event"`
		Data  json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &frame); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if frame.Event != EventPrediction {
		t.Errorf("event = %q", frame.Event)
	}
	if string(frame.Data) != `{"id":42}` {
		t.Errorf("data = %s", frame.Data)
	}
}
