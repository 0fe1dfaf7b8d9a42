package grpc

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	mdwlog "github.com/msto63/funlang/foundation/core/log"
	"github.com/msto63/funlang/pkg/core/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func testLogger(buf *bytes.Buffer) *logging.Logger {
	base := mdwlog.NewWithConfig(mdwlog.Config{Level: mdwlog.LevelDebug, Format: mdwlog.FormatLogfmt, Output: buf})
	return logging.Wrap(base, "grpc-test")
}

var testInfo = &grpc.UnaryServerInfo{FullMethod: "/funlang.v1.Interpreter/Run"}

func TestRequestIDInterceptor(t *testing.T) {
	interceptor := RequestIDInterceptor()

	tests := []struct {
		name string
		ctx  context.Context
		want string
	}{
		{"from metadata", metadata.NewIncomingContext(context.Background(), metadata.Pairs(RequestIDHeader, "abc")), "abc"},
		{"generated", context.Background(), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			_, err := interceptor(tt.ctx, nil, testInfo, func(ctx context.Context, req interface{}) (interface{}, error) {
				seen = GetRequestID(ctx)
				return nil, nil
			})
			if err != nil {
				t.Fatal(err)
			}
			if tt.want != "" && seen != tt.want {
				t.Errorf("request id = %q, want %q", seen, tt.want)
			}
			if tt.want == "" && len(seen) != 36 {
				t.Errorf("generated request id = %q, want a UUID", seen)
			}
		})
	}
}

func TestRecoveryInterceptor(t *testing.T) {
	var buf bytes.Buffer
	interceptor := RecoveryInterceptor(testLogger(&buf))

	_, err := interceptor(context.Background(), nil, testInfo, func(context.Context, interface{}) (interface{}, error) {
		panic("boom")
	})
	if status.Code(err) != codes.Internal {
		t.Errorf("status = %v, want Internal", status.Code(err))
	}
	if !strings.Contains(buf.String(), "gRPC panic recovered") {
		t.Errorf("panic not logged: %q", buf.String())
	}
}

func TestLoggingInterceptor(t *testing.T) {
	var buf bytes.Buffer
	interceptor := LoggingInterceptor(testLogger(&buf))
	ctx := WithRequestID(context.Background(), "req-1")

	_, err := interceptor(ctx, nil, testInfo, func(context.Context, interface{}) (interface{}, error) {
		return nil, status.Error(codes.InvalidArgument, "bad")
	})
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("status = %v", status.Code(err))
	}
	for _, want := range []string{`request_id="req-1"`, `status="InvalidArgument"`, `method="/funlang.v1.Interpreter/Run"`} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("log %q missing %s", buf.String(), want)
		}
	}
}

func TestClientTimeoutInterceptor(t *testing.T) {
	interceptor := ClientTimeoutInterceptor(time.Second)

	invoker := func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		if _, ok := ctx.Deadline(); !ok {
			t.Error("invoker context has no deadline")
		}
		return nil
	}
	if err := interceptor(context.Background(), "/m", nil, nil, nil, invoker); err != nil {
		t.Fatal(err)
	}
}

func TestClientRequestIDInterceptor(t *testing.T) {
	interceptor := ClientRequestIDInterceptor()
	ctx := WithRequestID(context.Background(), "client-1")

	invoker := func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		md, _ := metadata.FromOutgoingContext(ctx)
		if got := md.Get(RequestIDHeader); len(got) != 1 || got[0] != "client-1" {
			t.Errorf("outgoing request id = %v", got)
		}
		return nil
	}
	if err := interceptor(ctx, "/m", nil, nil, nil, invoker); err != nil {
		t.Fatal(err)
	}
}
