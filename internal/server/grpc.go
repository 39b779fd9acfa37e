package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/medreport-summarizer/internal/common"
)

const (
	SummarizerServiceName = "medsummary.v1.SummarizerService"
	summarizeMethod       = "/" + SummarizerServiceName + "/Summarize"
)

// SummarizerServer is the gRPC surface of the summarizer. Requests and
// responses are google.protobuf.Struct values carrying the HTTP JSON shapes.
type SummarizerServer interface {
	Summarize(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// SummarizerServiceDesc registers SummarizerServer with a grpc.Server.
var SummarizerServiceDesc = grpc.ServiceDesc{
	ServiceName: SummarizerServiceName,
	HandlerType: (*SummarizerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Summarize", Handler: summarizeHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: summarizerFile.Path(),
}

func summarizeHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SummarizerServer).Summarize(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: summarizeMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SummarizerServer).Summarize(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// SummarizerClient calls a remote SummarizerServer.
type SummarizerClient struct {
	cc grpc.ClientConnInterface
}

func NewSummarizerClient(cc grpc.ClientConnInterface) *SummarizerClient {
	return &SummarizerClient{cc: cc}
}

func (c *SummarizerClient) Summarize(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, summarizeMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// SummarizerService implements SummarizerServer over the shared API.
type SummarizerService struct {
	api *API
}

func NewSummarizerService(api *API) *SummarizerService {
	return &SummarizerService{api: api}
}

// Summarize runs the pipeline on req.medical_report. Failures are returned
// as gRPC status errors carrying the same client messages as HTTP.
func (s *SummarizerService) Summarize(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	raw, err := protojson.Marshal(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, msgInvalidJSON)
	}
	var body SummarizeRequest
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, status.Error(codes.InvalidArgument, msgInvalidJSON)
	}
	if err := common.ValidateStruct(body); err != nil {
		return nil, status.Error(codes.InvalidArgument, msgNoReport)
	}

	res, err := s.api.proc.Process(ctx, sourceGRPC, *body.MedicalReport)
	if err != nil {
		return nil, grpcError(ctx, s.api.logger, err)
	}
	out, err := toStruct(successEnvelope(res.Record, s.api.now()))
	if err != nil {
		return nil, grpcError(ctx, s.api.logger, err)
	}
	return out, nil
}

func grpcError(ctx context.Context, logger *slog.Logger, err error) error {
	switch {
	case errors.Is(err, common.ErrEmptyInput):
		return status.Error(codes.InvalidArgument, msgEmptyReport)
	case errors.Is(err, common.ErrTimeout):
		return status.Error(codes.DeadlineExceeded, msgTimeout)
	}
	common.LoggerFromContext(ctx, logger).Error("grpc.request.failed", "error", err)
	return status.Error(codes.Internal, msgInternal)
}

func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := protojson.Unmarshal(raw, out); err != nil {
		return nil, err
	}
	return out, nil
}

// unaryContext mirrors requestContext for gRPC calls. An incoming
// x-request-id header is kept; otherwise a new id is assigned.
func unaryContext(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		reqID := ""
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if v := md.Get("x-request-id"); len(v) > 0 {
				reqID = v[0]
			}
		}
		if reqID == "" {
			reqID = uuid.NewString()
		}
		log := logger.With("request_id", reqID)
		ctx = common.WithLogger(common.WithRequestID(ctx, reqID), log)

		resp, err := handler(ctx, req)
		log.Info("grpc.request",
			"method", info.FullMethod,
			"code", status.Code(err).String(),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return resp, err
	}
}

// NewGRPCServer returns a server with the summarizer, health and reflection
// services registered.
func NewGRPCServer(api *API) (*grpc.Server, *health.Server) {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(unaryContext(api.logger)))
	srv.RegisterService(&SummarizerServiceDesc, NewSummarizerService(api))

	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(SummarizerServiceName, healthpb.HealthCheckResponse_SERVING)

	// Reflection for grpcurl
	reflection.Register(srv)
	return srv, hs
}
