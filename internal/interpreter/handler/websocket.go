package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	mdwerror "github.com/msto63/funlang/foundation/core/error"
	mdwlog "github.com/msto63/funlang/foundation/core/log"
	"github.com/msto63/funlang/foundation/lang"
	"github.com/msto63/funlang/internal/history/store"
	"github.com/msto63/funlang/internal/interpreter/service"
	"github.com/msto63/funlang/pkg/core/logging"
)

// Message types
const (
	TypeRun    = "run"
	TypeTokens = "tokens"
	TypePing   = "ping"
	TypeResult = "result"
	TypePong   = "pong"
	TypeError  = "error"
)

// Error codes sent in error payloads besides the interpreter codes
const (
	CodeInvalidPayload = "invalid_payload"
	CodeUnknownType    = "unknown_type"
	CodeBusy           = "busy"
)

// DefaultMaxConcurrentRuns bounds the runs in flight on one connection
const DefaultMaxConcurrentRuns = 4

const readTimeout = 120 * time.Second

// WSMessage represents a client message
type WSMessage struct {
	Type    string          `json:"type"`    // "run", "tokens", "ping"
	Payload json.RawMessage `json:"payload"` // Message-specific payload
}

// WSSourcePayload carries a program for "run" and "tokens"
type WSSourcePayload struct {
	Source string `json:"source"`
}

// WSResponse represents a server message
type WSResponse struct {
	Type    string      `json:"type"` // "result", "tokens", "pong", "error"
	Session string      `json:"session"`
	Payload interface{} `json:"payload"`
}

// WSResultPayload is the answer to "run"
type WSResultPayload struct {
	RunID     string `json:"run_id"`
	Output    string `json:"output"`
	Error     string `json:"error,omitempty"`
	ErrorCode string `json:"error_code,omitempty"`
	Line      int    `json:"line,omitempty"`
}

// WSToken is one token of a "tokens" answer
type WSToken struct {
	Text string `json:"text"`
	Kind string `json:"kind"`
	Line int    `json:"line"`
}

// WSTokensPayload is the answer to "tokens"
type WSTokensPayload struct {
	Tokens []WSToken `json:"tokens"`
}

// WSErrorPayload represents an error payload
type WSErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}

// Config holds handler configuration
type Config struct {
	Logger *mdwlog.Logger

	// AllowedOrigins restricts browser origins. Empty allows all.
	AllowedOrigins []string

	// MaxConcurrentRuns bounds the runs in flight per connection. Further
	// run messages are answered with a "busy" error.
	MaxConcurrentRuns int
}

// WebSocketHandler evaluates programs sent over WebSocket connections
type WebSocketHandler struct {
	service  *service.Service
	logger   *logging.Logger
	upgrader websocket.Upgrader
	maxRuns  int
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(svc *service.Service, cfg Config) *WebSocketHandler {
	if cfg.Logger == nil {
		cfg.Logger = mdwlog.GetDefault()
	}
	if cfg.MaxConcurrentRuns <= 0 {
		cfg.MaxConcurrentRuns = DefaultMaxConcurrentRuns
	}

	allowed := make(map[string]bool, len(cfg.AllowedOrigins))
	for _, origin := range cfg.AllowedOrigins {
		allowed[origin] = true
	}

	return &WebSocketHandler{
		service: svc,
		logger:  logging.Wrap(cfg.Logger, "ws-handler"),
		maxRuns: cfg.MaxConcurrentRuns,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				if len(allowed) == 0 {
					return true
				}
				return allowed[r.Header.Get("Origin")]
			},
		},
	}
}

// connection serializes writes; gorilla allows one concurrent writer
type connection struct {
	conn    *websocket.Conn
	session string
	writeMu sync.Mutex

	// one slot per run in flight
	runs chan struct{}
}

// ServeHTTP handles WebSocket upgrade and connections
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("WebSocket upgrade failed", "error", err)
		return
	}
	h.handleConnection(&connection{
		conn:    conn,
		session: uuid.New().String(),
		runs:    make(chan struct{}, h.maxRuns),
	})
}

// handleConnection reads messages until the client disconnects. Runs in
// flight are cancelled when the connection closes.
func (h *WebSocketHandler) handleConnection(c *connection) {
	defer c.conn.Close()

	h.logger.Info("WebSocket connection established", "remote", c.conn.RemoteAddr().String(), "session", c.session)

	var wg sync.WaitGroup
	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		wg.Wait()
	}()

	c.conn.SetReadDeadline(time.Now().Add(readTimeout))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	for {
		var msg WSMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("WebSocket read error", "error", err, "session", c.session)
			} else {
				h.logger.Info("WebSocket connection closed", "session", c.session)
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(readTimeout))

		switch msg.Type {
		case TypePing:
			h.send(c, TypePong, nil)

		case TypeRun:
			payload, ok := h.decodeSource(c, msg)
			if !ok {
				continue
			}
			select {
			case c.runs <- struct{}{}:
			default:
				h.sendError(c, CodeBusy, fmt.Sprintf("at most %d runs in flight per connection", h.maxRuns), 0)
				continue
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				h.handleRun(ctx, c, payload.Source)
			}()

		case TypeTokens:
			payload, ok := h.decodeSource(c, msg)
			if !ok {
				continue
			}
			h.handleTokens(c, payload.Source)

		default:
			h.sendError(c, CodeUnknownType, "unknown message type: "+msg.Type, 0)
		}
	}
}

func (h *WebSocketHandler) decodeSource(c *connection, msg WSMessage) (WSSourcePayload, bool) {
	var payload WSSourcePayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		h.sendError(c, CodeInvalidPayload, "invalid "+msg.Type+" payload", 0)
		return payload, false
	}
	return payload, true
}

// handleRun frees the connection's run slot before answering
func (h *WebSocketHandler) handleRun(ctx context.Context, c *connection, source string) {
	run, err := h.service.Run(ctx, source, store.OriginWS)
	<-c.runs
	if err != nil {
		h.sendError(c, string(mdwerror.GetCode(err)), err.Error(), 0)
		return
	}

	h.send(c, TypeResult, WSResultPayload{
		RunID:     run.ID,
		Output:    run.Output,
		Error:     run.Error,
		ErrorCode: run.ErrorCode,
		Line:      run.Line,
	})
}

func (h *WebSocketHandler) handleTokens(c *connection, source string) {
	tokens, err := h.service.Tokenize(source)
	if err != nil {
		h.sendError(c, string(mdwerror.GetCode(err)), err.Error(), lang.Line(err))
		return
	}

	payload := WSTokensPayload{Tokens: make([]WSToken, len(tokens))}
	for i, tok := range tokens {
		payload.Tokens[i] = WSToken{Text: tok.Text, Kind: tok.Kind.String(), Line: tok.Line}
	}
	h.send(c, TypeTokens, payload)
}

// send writes a response message
func (h *WebSocketHandler) send(c *connection, typ string, payload interface{}) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	resp := WSResponse{Type: typ, Session: c.session, Payload: payload}
	if err := c.conn.WriteJSON(resp); err != nil {
		h.logger.Error("WebSocket send error", "error", err, "session", c.session)
	}
}

// sendError sends an error response
func (h *WebSocketHandler) sendError(c *connection, code, message string, line int) {
	h.send(c, TypeError, WSErrorPayload{Code: code, Message: message, Line: line})
}
