package server

import (
	"context"
	"time"

	mdwerror "github.com/msto63/funlang/foundation/core/error"
	mdwlog "github.com/msto63/funlang/foundation/core/log"
	coreGrpc "github.com/msto63/funlang/pkg/core/grpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// RunResponse is the decoded response of Interpreter.Run
type RunResponse struct {
	RunID      string `json:"run_id"`
	Output     string `json:"output"`
	Error      string `json:"error,omitempty"`
	ErrorCode  string `json:"error_code,omitempty"`
	Line       int    `json:"line,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

// Failed reports whether the program ended with an error
func (r *RunResponse) Failed() bool {
	return r.Error != ""
}

// Err returns the program error as a structured error, or nil
func (r *RunResponse) Err() error {
	if !r.Failed() {
		return nil
	}
	// Error already carries the "line N:" prefix
	return mdwerror.New(r.Error).
		WithCode(mdwerror.Code(r.ErrorCode)).
		WithOperation("server.Client.Run")
}

// Client calls a remote interpreter
type Client struct {
	conn  *grpc.ClientConn
	owned bool
}

// Dial connects to the interpreter at target
func Dial(target string, timeout time.Duration, logger *mdwlog.Logger) (*Client, error) {
	cfg := coreGrpc.DefaultClientConfig(target)
	if timeout > 0 {
		cfg.Timeout = timeout
	}
	cfg.Logger = logger

	conn, err := coreGrpc.Dial(cfg)
	if err != nil {
		return nil, mdwerror.Wrap(err, "failed to connect to interpreter").
			WithCode(mdwerror.CodeNetworkError).
			WithOperation("server.Dial")
	}
	return &Client{conn: conn, owned: true}, nil
}

// NewClient wraps an existing connection. Close leaves conn open.
func NewClient(conn *grpc.ClientConn) *Client {
	return &Client{conn: conn}
}

// Run sends source to the remote interpreter
func (c *Client) Run(ctx context.Context, source string) (*RunResponse, error) {
	req, err := structpb.NewStruct(map[string]interface{}{"source": source})
	if err != nil {
		return nil, mdwerror.Wrap(err, "failed to encode request").
			WithCode(mdwerror.CodeInvalidInput).
			WithOperation("server.Client.Run")
	}

	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, RunMethod, req, out); err != nil {
		return nil, mdwerror.Wrap(err, "remote run failed").
			WithCode(codeFromStatus(err)).
			WithOperation("server.Client.Run")
	}
	return decodeRun(out), nil
}

// Close closes the connection if the client opened it
func (c *Client) Close() error {
	if c.owned {
		return c.conn.Close()
	}
	return nil
}

func codeFromStatus(err error) mdwerror.Code {
	switch status.Code(err) {
	case codes.InvalidArgument:
		return mdwerror.CodeInvalidInput
	case codes.Unavailable:
		return mdwerror.CodeServiceUnavailable
	case codes.DeadlineExceeded:
		return mdwerror.CodeTimeout
	case codes.Canceled:
		return mdwerror.CodeCancelled
	default:
		return mdwerror.CodeNetworkError
	}
}

func decodeRun(s *structpb.Struct) *RunResponse {
	fields := s.GetFields()
	return &RunResponse{
		RunID:      fields["run_id"].GetStringValue(),
		Output:     fields["output"].GetStringValue(),
		Error:      fields["error"].GetStringValue(),
		ErrorCode:  fields["error_code"].GetStringValue(),
		Line:       int(fields["line"].GetNumberValue()),
		DurationMS: int64(fields["duration_ms"].GetNumberValue()),
	}
}
