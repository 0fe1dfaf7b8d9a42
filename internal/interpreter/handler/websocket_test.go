package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	mdwlog "github.com/msto63/funlang/foundation/core/log"
	"github.com/msto63/funlang/foundation/lang"
	"github.com/msto63/funlang/internal/history/store"
	"github.com/msto63/funlang/internal/interpreter/service"
)

type rawResponse struct {
	Type    string          `json:"type"`
	Session string          `json:"session"`
	Payload json.RawMessage `json:"payload"`
}

func dial(t *testing.T, history store.Store, configs ...Config) *websocket.Conn {
	t.Helper()

	engine, err := lang.New(lang.Options{Logger: mdwlog.Discard(), Stdout: io.Discard, MaxSourceBytes: 64})
	if err != nil {
		t.Fatalf("lang.New() error = %v", err)
	}
	svc, err := service.NewService(service.Config{
		Engine:  engine,
		History: history,
		Timeout: 200 * time.Millisecond,
		Logger:  mdwlog.Discard(),
	})
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}

	cfg := Config{}
	if len(configs) > 0 {
		cfg = configs[0]
	}
	cfg.Logger = mdwlog.Discard()

	srv := httptest.NewServer(NewWebSocketHandler(svc, cfg))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) rawResponse {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var resp rawResponse
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	return resp
}

func exchange(t *testing.T, conn *websocket.Conn, msg interface{}) rawResponse {
	t.Helper()
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	return read(t, conn)
}

func runMsg(source string) map[string]interface{} {
	return map[string]interface{}{"type": TypeRun, "payload": map[string]string{"source": source}}
}

func TestRun(t *testing.T) {
	history := store.NewMemoryStore()
	conn := dial(t, history)

	tests := []struct {
		name   string
		source string
		output string
		code   string
		line   int
	}{
		{"success", "println(2, 3)", "2 3\n", "", 0},
		{"runtime error", "println(1)\nprintln(1 % 0)", "1\n", "ARITHMETIC_ERROR", 2},
		{"timeout", "while (1) {}", "", "CANCELLED", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := exchange(t, conn, runMsg(tt.source))
			if resp.Type != TypeResult {
				t.Fatalf("Type = %q, want result (%s)", resp.Type, resp.Payload)
			}
			var result WSResultPayload
			if err := json.Unmarshal(resp.Payload, &result); err != nil {
				t.Fatalf("decode payload: %v", err)
			}
			if result.Output != tt.output || result.ErrorCode != tt.code {
				t.Errorf("result = %+v", result)
			}
			if result.Line != tt.line {
				t.Errorf("Line = %d, want %d", result.Line, tt.line)
			}

			stored, err := history.Get(context.Background(), result.RunID)
			if err != nil {
				t.Fatalf("history.Get() error = %v", err)
			}
			if stored.Origin != store.OriginWS {
				t.Errorf("Origin = %q, want ws", stored.Origin)
			}
		})
	}
}

func TestSessionIDIsStable(t *testing.T) {
	conn := dial(t, nil)

	first := exchange(t, conn, map[string]string{"type": TypePing})
	second := exchange(t, conn, map[string]string{"type": TypePing})
	if first.Type != TypePong || second.Type != TypePong {
		t.Fatalf("types = %q, %q, want pong", first.Type, second.Type)
	}
	if first.Session == "" || first.Session != second.Session {
		t.Errorf("sessions = %q, %q", first.Session, second.Session)
	}
}

func TestTokens(t *testing.T) {
	conn := dial(t, nil)

	resp := exchange(t, conn, map[string]interface{}{
		"type":    TypeTokens,
		"payload": map[string]string{"source": "var a = 1\nprintln(a)"},
	})
	if resp.Type != TypeTokens {
		t.Fatalf("Type = %q, want tokens", resp.Type)
	}
	var payload WSTokensPayload
	if err := json.Unmarshal(resp.Payload, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if len(payload.Tokens) != 8 {
		t.Fatalf("len(Tokens) = %d, want 8", len(payload.Tokens))
	}
	first, last := payload.Tokens[0], payload.Tokens[7]
	if first.Text != "var" || first.Kind != "KEYWORD" || first.Line != 1 {
		t.Errorf("first token = %+v", first)
	}
	if last.Text != ")" || last.Kind != "PUNCTUATION" || last.Line != 2 {
		t.Errorf("last token = %+v", last)
	}
}

func TestErrors(t *testing.T) {
	conn := dial(t, nil)

	tests := []struct {
		name string
		msg  interface{}
		code string
		line int
	}{
		{"unknown type", map[string]string{"type": "compile"}, CodeUnknownType, 0},
		{"bad payload", map[string]interface{}{"type": TypeRun, "payload": "nope"}, CodeInvalidPayload, 0},
		{"lexical", map[string]interface{}{"type": TypeTokens, "payload": map[string]string{"source": "a\nB"}}, "LEXICAL_ERROR", 2},
		{"too large", runMsg(strings.Repeat("1;", 40)), "INVALID_INPUT", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := exchange(t, conn, tt.msg)
			if resp.Type != TypeError {
				t.Fatalf("Type = %q, want error", resp.Type)
			}
			var payload WSErrorPayload
			if err := json.Unmarshal(resp.Payload, &payload); err != nil {
				t.Fatalf("decode payload: %v", err)
			}
			if payload.Code != tt.code || payload.Line != tt.line {
				t.Errorf("payload = %+v, want code %s line %d", payload, tt.code, tt.line)
			}
		})
	}
}

func TestRunsInFlightAreBounded(t *testing.T) {
	conn := dial(t, nil, Config{MaxConcurrentRuns: 1})

	// the first loop holds the only slot until the service timeout
	for i := 0; i < 2; i++ {
		if err := conn.WriteJSON(runMsg("while (1) {}")); err != nil {
			t.Fatalf("WriteJSON() error = %v", err)
		}
	}

	busy := read(t, conn)
	if busy.Type != TypeError {
		t.Fatalf("Type = %q, want error (%s)", busy.Type, busy.Payload)
	}
	var payload WSErrorPayload
	if err := json.Unmarshal(busy.Payload, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.Code != CodeBusy {
		t.Errorf("Code = %q, want %q", payload.Code, CodeBusy)
	}

	if resp := read(t, conn); resp.Type != TypeResult {
		t.Fatalf("Type = %q, want result of the first run", resp.Type)
	}

	// the slot is free again once the result arrived
	if resp := exchange(t, conn, runMsg("println(1)")); resp.Type != TypeResult {
		t.Errorf("Type = %q, want result (%s)", resp.Type, resp.Payload)
	}
}
