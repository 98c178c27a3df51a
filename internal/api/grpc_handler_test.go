package api

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"retail-sales-analytics/internal/report"
)

func setupTestGRPCClient(t *testing.T, source ReportSource) *ReportServiceClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(UnaryLoggingInterceptor(zerolog.Nop())))
	RegisterReportServiceServer(srv, NewGRPCHandler(source, zerolog.Nop()))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewReportServiceClient(conn)
}

func request(t *testing.T, fields map[string]interface{}) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(fields)
	require.NoError(t, err)
	return s
}

func TestGRPC_ListReports(t *testing.T) {
	source := new(MockReportSource)
	source.On("Reports", mock.Anything).Return(sampleSet(), nil).Once()
	client := setupTestGRPCClient(t, source)

	resp, err := client.ListReports(context.Background(), &structpb.Struct{})
	require.NoError(t, err)

	names := resp.AsMap()["reports"].([]interface{})
	assert.Len(t, names, 9)
	assert.Equal(t, "summary", names[0])
	source.AssertExpectations(t)
}

func TestGRPC_GetReport(t *testing.T) {
	source := new(MockReportSource)
	source.On("Reports", mock.Anything).Return(sampleSet(), nil).Once()
	client := setupTestGRPCClient(t, source)

	resp, err := client.GetReport(context.Background(), request(t, map[string]interface{}{
		"name":  "top_products",
		"limit": 2,
	}))
	require.NoError(t, err)

	got := resp.AsMap()
	assert.Equal(t, "top_products", got["name"])
	assert.Equal(t, float64(3), got["total_rows"])
	assert.Equal(t, []interface{}{
		[]interface{}{"Laptop", "2", "1800.00"},
		[]interface{}{"Jeans", "3", "60.00"},
	}, got["rows"])
	source.AssertExpectations(t)
}

func TestGRPC_GetReport_Errors(t *testing.T) {
	tests := []struct {
		name     string
		fields   map[string]interface{}
		setup    func(*MockReportSource)
		wantCode codes.Code
	}{
		{
			name:     "MissingName",
			fields:   map[string]interface{}{},
			wantCode: codes.InvalidArgument,
		},
		{
			name:     "FractionalLimit",
			fields:   map[string]interface{}{"name": "summary", "limit": 1.5},
			wantCode: codes.InvalidArgument,
		},
		{
			name:     "ZeroLimit",
			fields:   map[string]interface{}{"name": "summary", "limit": 0},
			wantCode: codes.InvalidArgument,
		},
		{
			name:     "LimitOutOfRange",
			fields:   map[string]interface{}{"name": "summary", "limit": 5000},
			wantCode: codes.InvalidArgument,
		},
		{
			name:   "UnknownReport",
			fields: map[string]interface{}{"name": "by_weather"},
			setup: func(m *MockReportSource) {
				m.On("Reports", mock.Anything).Return(sampleSet(), nil).Once()
			},
			wantCode: codes.NotFound,
		},
		{
			name:   "NotReady",
			fields: map[string]interface{}{"name": "summary"},
			setup: func(m *MockReportSource) {
				m.On("Reports", mock.Anything).Return(nil, report.ErrNotReady).Once()
			},
			wantCode: codes.Unavailable,
		},
		{
			name:   "SourceError",
			fields: map[string]interface{}{"name": "summary"},
			setup: func(m *MockReportSource) {
				m.On("Reports", mock.Anything).Return(nil, errors.New("disk I/O error")).Once()
			},
			wantCode: codes.Internal,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			source := new(MockReportSource)
			if tc.setup != nil {
				tc.setup(source)
			}
			client := setupTestGRPCClient(t, source)

			_, err := client.GetReport(context.Background(), request(t, tc.fields))

			require.Error(t, err)
			assert.Equal(t, tc.wantCode, status.Code(err))
			source.AssertExpectations(t)
		})
	}
}
