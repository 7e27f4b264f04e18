// internal/handler/websocket_handler_test.go
package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap/zaptest"

	"meter-print-service/internal/model"
)

func readMessage(t *testing.T, conn *websocket.Conn) WebSocketMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg WebSocketMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	return msg
}

func TestWebSocketEventStream(t *testing.T) {
	logger := zaptest.NewLogger(t)
	ws := NewWebSocketHandler(NewEventBus(logger), nil, logger)

	router := gin.New()
	ws.RegisterRoutes(router.Group("/ws"))
	srv := httptest.NewServer(router)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/events", nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(WebSocketMessage{Type: "ping"}); err != nil {
		t.Fatal(err)
	}
	if msg := readMessage(t, conn); msg.Type != "pong" {
		t.Fatalf("got %q, want pong", msg.Type)
	}

	sub := WebSocketMessage{Type: "subscribe", Data: map[string]interface{}{"topic": "print_completed"}}
	if err := conn.WriteJSON(sub); err != nil {
		t.Fatal(err)
	}
	if msg := readMessage(t, conn); msg.Type != "subscribed" {
		t.Fatalf("got %q, want subscribed", msg.Type)
	}

	ws.BroadcastPrinterEvent(model.NewPrinterEvent(model.EventWidthChanged, ""))
	ws.BroadcastPrinterEvent(model.NewPrinterEvent(model.EventPrintCompleted, testAddress))

	msg := readMessage(t, conn)
	if msg.Type != "printer_event" {
		t.Fatalf("got %q, want printer_event", msg.Type)
	}
	raw, _ := json.Marshal(msg.Data)
	var event model.PrinterEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		t.Fatal(err)
	}
	if event.EventType != model.EventPrintCompleted || event.Address != testAddress {
		t.Errorf("event = %+v", event)
	}

	if stats := ws.GetConnectionStats(); stats.TotalConnections != 1 {
		t.Errorf("connections = %d, want 1", stats.TotalConnections)
	}
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"http://localhost:8081"})

	req := httptest.NewRequest(http.MethodGet, "/ws/events", nil)
	if !check(req) {
		t.Error("request without Origin rejected")
	}

	req.Header.Set("Origin", "http://localhost:8081")
	if !check(req) {
		t.Error("allowed origin rejected")
	}

	req.Header.Set("Origin", "http://evil.example")
	if check(req) {
		t.Error("foreign origin accepted")
	}
}
