package server

import (
	"context"
	"net"

	mdwerror "github.com/msto63/funlang/foundation/core/error"
	mdwlog "github.com/msto63/funlang/foundation/core/log"
	"github.com/msto63/funlang/internal/history/store"
	"github.com/msto63/funlang/internal/interpreter/service"
	coreGrpc "github.com/msto63/funlang/pkg/core/grpc"
	"github.com/msto63/funlang/pkg/core/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Ensure Server implements InterpreterServer
var _ InterpreterServer = (*Server)(nil)

// Server is the interpreter gRPC server
type Server struct {
	service *service.Service
	grpc    *coreGrpc.Server
	logger  *logging.Logger
	config  coreGrpc.ServerConfig
}

// New creates a new interpreter server for svc
func New(cfg coreGrpc.ServerConfig, svc *service.Service) (*Server, error) {
	if svc == nil {
		return nil, mdwerror.New("service is required").
			WithCode(mdwerror.CodeInvalidConfig).
			WithOperation("server.New")
	}

	if cfg.Logger == nil {
		cfg.Logger = mdwlog.GetDefault()
	}

	grpcServer := coreGrpc.NewServer(cfg)
	server := &Server{
		service: svc,
		grpc:    grpcServer,
		logger:  logging.Wrap(cfg.Logger, "interpreter-server"),
		config:  cfg,
	}

	RegisterInterpreterServer(grpcServer.GRPCServer(), server)
	return server, nil
}

// Run implements InterpreterServer.Run. Program errors are part of the
// response; only requests that cannot run fail with a status.
func (s *Server) Run(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	source, ok := req.GetFields()["source"]
	if !ok {
		return nil, status.Error(codes.InvalidArgument, "source is required")
	}
	if _, isString := source.GetKind().(*structpb.Value_StringValue); !isString {
		return nil, status.Error(codes.InvalidArgument, "source must be a string")
	}

	run, err := s.service.Run(ctx, source.GetStringValue(), store.OriginGRPC)
	if err != nil {
		if mdwerror.HasCode(err, mdwerror.CodeInvalidInput) {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		s.logger.Error("Run failed", "error", err)
		return nil, status.Error(codes.Internal, err.Error())
	}

	return encodeRun(run)
}

// Start starts the server
func (s *Server) Start() error {
	s.logger.Info("Starting interpreter server", "host", s.config.Host, "port", s.config.Port)
	return s.grpc.Start()
}

// StartAsync starts the server asynchronously
func (s *Server) StartAsync() error {
	s.logger.Info("Starting interpreter server (async)", "host", s.config.Host, "port", s.config.Port)
	return s.grpc.StartAsync()
}

// Serve serves on an existing listener
func (s *Server) Serve(listener net.Listener) error {
	return s.grpc.Serve(listener)
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) {
	s.logger.Info("Stopping interpreter server")
	s.grpc.StopWithTimeout(ctx)
}

// GRPCServer returns the underlying gRPC server
func (s *Server) GRPCServer() *grpc.Server {
	return s.grpc.GRPCServer()
}

// Address returns the configured listen address
func (s *Server) Address() string {
	return s.grpc.Address()
}

func encodeRun(run *store.Run) (*structpb.Struct, error) {
	resp, err := structpb.NewStruct(map[string]interface{}{
		"run_id":      run.ID,
		"output":      run.Output,
		"error":       run.Error,
		"error_code":  run.ErrorCode,
		"line":        run.Line,
		"duration_ms": run.Duration.Milliseconds(),
	})
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return resp, nil
}
