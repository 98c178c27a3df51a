package api

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"retail-sales-analytics/internal/report"
)

// ReportServiceName is the fully qualified gRPC service name.
const ReportServiceName = "salesreport.v1.ReportService"

const (
	listReportsMethod = "/" + ReportServiceName + "/ListReports"
	getReportMethod   = "/" + ReportServiceName + "/GetReport"
)

// ReportServiceServer serves report tables over gRPC. Messages are
// google.protobuf.Struct values:
//
//	ListReports {}                           -> {"reports": [name, ...]}
//	GetReport   {"name": "...", "limit": n}  -> {"name", "header", "rows", "total_rows"}
type ReportServiceServer interface {
	ListReports(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetReport(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// ReportServiceDesc registers a ReportServiceServer on a grpc.Server.
var ReportServiceDesc = grpc.ServiceDesc{
	ServiceName: ReportServiceName,
	HandlerType: (*ReportServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListReports", Handler: listReportsHandler},
		{MethodName: "GetReport", Handler: getReportHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "salesreport/v1/report.proto",
}

func RegisterReportServiceServer(s grpc.ServiceRegistrar, srv ReportServiceServer) {
	s.RegisterService(&ReportServiceDesc, srv)
}

func listReportsHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ReportServiceServer).ListReports(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: listReportsMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ReportServiceServer).ListReports(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func getReportHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ReportServiceServer).GetReport(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getReportMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ReportServiceServer).GetReport(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// ReportServiceClient is the client side of ReportService.
type ReportServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewReportServiceClient(cc grpc.ClientConnInterface) *ReportServiceClient {
	return &ReportServiceClient{cc: cc}
}

func (c *ReportServiceClient) ListReports(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, listReportsMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ReportServiceClient) GetReport(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, getReportMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// GRPCHandler implements ReportServiceServer.
type GRPCHandler struct {
	reports  ReportSource
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewGRPCHandler creates a new GRPCHandler.
func NewGRPCHandler(reports ReportSource, logger zerolog.Logger) *GRPCHandler {
	return &GRPCHandler{
		reports:  reports,
		validate: validator.New(),
		logger:   logger.With().Str("component", "grpc").Logger(),
	}
}

var errUnknownReport = errors.New("unknown report")

// --- Helper: Error Mapping ---
func (s *GRPCHandler) mapErrorToGrpcStatus(err error, name string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, errUnknownReport):
		return status.Errorf(codes.NotFound, "report %q not found", name)
	case errors.Is(err, report.ErrNotReady):
		return status.Error(codes.Unavailable, "reports are not available yet")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		s.logger.Error().Err(err).Str("report", name).Msg("report request failed")
		return status.Errorf(codes.Internal, "failed to load report %q", name)
	}
}

func (s *GRPCHandler) ListReports(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	set, err := s.reports.Reports(ctx)
	if err != nil {
		return nil, s.mapErrorToGrpcStatus(err, "")
	}
	names := set.Names()
	list := make([]interface{}, len(names))
	for i, n := range names {
		list[i] = n
	}
	out, err := structpb.NewStruct(map[string]interface{}{"reports": list})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode report list: %v", err)
	}
	return out, nil
}

func (s *GRPCHandler) GetReport(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()
	name := fields["name"].GetStringValue()
	if name == "" {
		return nil, status.Error(codes.InvalidArgument, "name is required")
	}

	var query ReportQuery
	if v, ok := fields["limit"]; ok {
		n, ok := v.GetKind().(*structpb.Value_NumberValue)
		if !ok || n.NumberValue != float64(int(n.NumberValue)) {
			return nil, status.Error(codes.InvalidArgument, "limit must be an integer")
		}
		limit := int(n.NumberValue)
		query.Limit = &limit
	}
	if err := s.validate.Struct(query); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "validation failed: %v", err)
	}

	set, err := s.reports.Reports(ctx)
	if err != nil {
		return nil, s.mapErrorToGrpcStatus(err, name)
	}
	table, found := set.Table(name)
	if !found {
		return nil, s.mapErrorToGrpcStatus(errUnknownReport, name)
	}

	resp := newReportResponse(table, query.limit())
	out, err := structpb.NewStruct(map[string]interface{}{
		"name":       resp.Name,
		"header":     stringList(resp.Header),
		"rows":       rowList(resp.Rows),
		"total_rows": resp.TotalRows,
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode report %q: %v", name, err)
	}
	return out, nil
}

func stringList(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func rowList(rows [][]string) []interface{} {
	out := make([]interface{}, len(rows))
	for i, row := range rows {
		out[i] = stringList(row)
	}
	return out
}

// UnaryLoggingInterceptor logs every unary call with its status code.
func UnaryLoggingInterceptor(logger zerolog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		code := status.Code(err)
		event := logger.Info()
		if code != codes.OK {
			event = logger.Warn().Err(err)
		}
		event.
			Str("method", info.FullMethod).
			Str("code", code.String()).
			Dur("duration", time.Since(start)).
			Msg("rpc completed")
		return resp, err
	}
}
