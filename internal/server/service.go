package server

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/clarencejohnson126/angebotsagent/constants"
	"github.com/clarencejohnson126/angebotsagent/internal/common"
	"github.com/clarencejohnson126/angebotsagent/internal/core"
	"github.com/clarencejohnson126/angebotsagent/internal/core/lv"
	"github.com/clarencejohnson126/angebotsagent/internal/core/risk"
	"github.com/clarencejohnson126/angebotsagent/internal/entity"
	"github.com/clarencejohnson126/angebotsagent/internal/ingest"
	"github.com/clarencejohnson126/angebotsagent/internal/repository"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "takeoff.v1.TakeoffService"

// DocumentProcessor is the part of core.Processor the service calls.
type DocumentProcessor interface {
	ProcessAreas(ctx context.Context, path string, opts core.AreaOptions) (*core.Outcome, error)
	ProcessLV(ctx context.Context, path string) (*core.Outcome, error)
	ProcessAuto(ctx context.Context, path string) (*core.Outcome, error)
}

// TakeoffService serves extraction, export and risk checks over gRPC.
type TakeoffService struct {
	processor DocumentProcessor
	jobs      repository.ExtractJobRepository
	exporter  JobExporter
	ingestor  ingest.Ingestor
	logger    *zap.Logger
}

func NewTakeoffService(proc DocumentProcessor, jobs repository.ExtractJobRepository, exp JobExporter, ing ingest.Ingestor, logger *zap.Logger) *TakeoffService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TakeoffService{processor: proc, jobs: jobs, exporter: exp, ingestor: ing, logger: logger}
}

func (s *TakeoffService) ExtractAreas(ctx context.Context, req *ExtractAreasRequest) (*ExtractAreasResponse, error) {
	v := common.NewValidator().
		Field("path", req.Path, common.Required).
		Field("style", strings.ToLower(strings.TrimSpace(req.Style)), common.OneOf(constants.StyleNames()...)).
		Field("pages", req.Pages, common.NonNegativeInts)
	if err := common.ValidateAndReturnError(v); err != nil {
		return nil, err
	}

	out, err := s.processor.ProcessAreas(ctx, req.Path, core.AreaOptions{Style: req.Style, Pages: req.Pages})
	if err != nil {
		return nil, err
	}
	return &ExtractAreasResponse{
		DocumentID:   out.DocumentID.String(),
		JobID:        out.JobID.String(),
		Deduplicated: out.Deduplicated,
		Result:       *out.Areas,
	}, nil
}

func (s *TakeoffService) ExtractLV(ctx context.Context, req *ExtractLVRequest) (*ExtractLVResponse, error) {
	v := common.NewValidator().Field("path", req.Path, common.Required)
	if err := common.ValidateAndReturnError(v); err != nil {
		return nil, err
	}

	out, err := s.processor.ProcessLV(ctx, req.Path)
	if err != nil {
		return nil, err
	}
	return &ExtractLVResponse{
		DocumentID:   out.DocumentID.String(),
		JobID:        out.JobID.String(),
		Deduplicated: out.Deduplicated,
		Document:     *out.LV,
		Tender:       out.Tender,
	}, nil
}

func (s *TakeoffService) ParseLVLine(_ context.Context, req *ParseLVLineRequest) (*lv.ParsedLVLine, error) {
	v := common.NewValidator().Field("line", req.Line, common.Required, common.MaxLength(2000))
	if err := common.ValidateAndReturnError(v); err != nil {
		return nil, err
	}
	parsed := lv.ParseLVLine(req.Line)
	return &parsed, nil
}

func (s *TakeoffService) GetJob(ctx context.Context, req *GetJobRequest) (*entity.ExtractionJob, error) {
	id, err := parseJobID(req.JobID)
	if err != nil {
		return nil, err
	}
	return s.jobs.Get(ctx, id)
}

func (s *TakeoffService) CompareQuantities(_ context.Context, req *CompareQuantitiesRequest) (*CompareQuantitiesResponse, error) {
	return &CompareQuantitiesResponse{Risks: risk.CompareQuantities(req.Positions, req.Takeoffs)}, nil
}

// Register adds the service to a gRPC server.
func Register(gs *grpc.Server, s *TakeoffService) {
	gs.RegisterService(&ServiceDesc, s)
}

// TakeoffServer is the method set ServiceDesc dispatches to.
type TakeoffServer interface {
	ExtractAreas(context.Context, *ExtractAreasRequest) (*ExtractAreasResponse, error)
	ExtractLV(context.Context, *ExtractLVRequest) (*ExtractLVResponse, error)
	ParseLVLine(context.Context, *ParseLVLineRequest) (*lv.ParsedLVLine, error)
	GetJob(context.Context, *GetJobRequest) (*entity.ExtractionJob, error)
	ExportJob(context.Context, *ExportJobRequest) (*ExportJobResponse, error)
	CompareQuantities(context.Context, *CompareQuantitiesRequest) (*CompareQuantitiesResponse, error)
	IngestDirectory(context.Context, *IngestDirectoryRequest) (*IngestDirectoryResponse, error)
}

var _ TakeoffServer = (*TakeoffService)(nil)

// ServiceDesc is written by hand; requests and responses are the Go structs
// of this package carried by JSONCodec.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TakeoffServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ExtractAreas", Handler: unary("ExtractAreas", (*TakeoffService).ExtractAreas)},
		{MethodName: "ExtractLV", Handler: unary("ExtractLV", (*TakeoffService).ExtractLV)},
		{MethodName: "ParseLVLine", Handler: unary("ParseLVLine", (*TakeoffService).ParseLVLine)},
		{MethodName: "GetJob", Handler: unary("GetJob", (*TakeoffService).GetJob)},
		{MethodName: "ExportJob", Handler: unary("ExportJob", (*TakeoffService).ExportJob)},
		{MethodName: "CompareQuantities", Handler: unary("CompareQuantities", (*TakeoffService).CompareQuantities)},
		{MethodName: "IngestDirectory", Handler: unary("IngestDirectory", (*TakeoffService).IngestDirectory)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "takeoff/v1/takeoff.json",
}

// unary adapts a typed method to a grpc.MethodDesc handler.
func unary[Req, Resp any](name string, fn func(*TakeoffService, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	fullMethod := "/" + ServiceName + "/" + name
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		svc := srv.(*TakeoffService)
		if interceptor == nil {
			return fn(svc, ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return fn(svc, ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}
