// Package grpcserver exposes the dashboard queries of the board service over
// gRPC for the Gateway.
//
// It delegates all business logic to the workflow engine and handles only
// the transport concerns: metadata extraction, ownership checks, error
// mapping, and conversion to google.protobuf.Struct messages.
package grpcserver

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"jobmate/board-service/internal/domain"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "jobmate.board.v1.Dashboard"

// AccountResolver resolves the Gateway-forwarded user id.
type AccountResolver interface {
	AccountByUserID(ctx context.Context, userID string) (domain.Account, error)
}

// Workflow is the part of *workflow.Engine this server uses.
type Workflow interface {
	CountByStatus(ctx context.Context, scope domain.Scope) (domain.StatusCounts, error)
	HasApplied(ctx context.Context, seekerID, jobID string) (bool, error)
}

// JobLookup is the part of *jobs.Manager this server uses.
type JobLookup interface {
	Get(ctx context.Context, jobID string) (*domain.Job, error)
}

// DashboardServer is the handler interface behind ServiceName.
type DashboardServer interface {
	CountByStatus(context.Context, *structpb.Struct) (*structpb.Struct, error)
	PendingCount(context.Context, *structpb.Struct) (*structpb.Struct, error)
	HasApplied(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// Server implements DashboardServer.
type Server struct {
	accounts AccountResolver
	workflow Workflow
	jobs     JobLookup
}

// NewServer constructs a Server backed by the given services.
func NewServer(accounts AccountResolver, wf Workflow, jobs JobLookup) *Server {
	return &Server{accounts: accounts, workflow: wf, jobs: jobs}
}

// Register mounts the dashboard and health services on gs and returns the
// health server so the caller can flip serving status.
func Register(gs *grpc.Server, s *Server) *health.Server {
	gs.RegisterService(&serviceDesc, s)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	return hs
}

// ─── RPC implementations ──────────────────────────────────────────────────────

// CountByStatus returns {"counts": {status: n}, "total": n} for the calling
// employer, or for one of its jobs when "jobId" is set.
func (s *Server) CountByStatus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	scope, err := s.employerScope(ctx, req)
	if err != nil {
		return nil, err
	}
	counts, err := s.workflow.CountByStatus(ctx, scope)
	if err != nil {
		return nil, toGRPCError(err)
	}
	byStatus := make(map[string]any, len(counts))
	for st, n := range counts {
		byStatus[string(st)] = n
	}
	return newStruct(map[string]any{"counts": byStatus, "total": counts.Total()})
}

// PendingCount returns {"pending": n} for the same scopes as CountByStatus.
func (s *Server) PendingCount(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	scope, err := s.employerScope(ctx, req)
	if err != nil {
		return nil, err
	}
	counts, err := s.workflow.CountByStatus(ctx, scope)
	if err != nil {
		return nil, toGRPCError(err)
	}
	return newStruct(map[string]any{"pending": counts.Pending()})
}

// HasApplied returns {"applied": bool} for the calling job seeker and "jobId".
func (s *Server) HasApplied(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	account, err := s.account(ctx)
	if err != nil {
		return nil, err
	}
	seeker, ok := account.(domain.JobSeekerAccount)
	if !ok {
		return nil, status.Error(codes.PermissionDenied, "only job seekers can apply")
	}
	jobID := stringField(req, "jobId")
	if jobID == "" {
		return nil, status.Error(codes.InvalidArgument, "jobId is required")
	}
	applied, err := s.workflow.HasApplied(ctx, seeker.Profile.ID, jobID)
	if err != nil {
		return nil, toGRPCError(err)
	}
	return newStruct(map[string]any{"applied": applied})
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func (s *Server) employerScope(ctx context.Context, req *structpb.Struct) (domain.Scope, error) {
	account, err := s.account(ctx)
	if err != nil {
		return domain.Scope{}, err
	}
	employer, ok := account.(domain.EmployerAccount)
	if !ok {
		return domain.Scope{}, status.Error(codes.PermissionDenied, "only employers can view application counts")
	}
	jobID := stringField(req, "jobId")
	if jobID == "" {
		return domain.EmployerScope(employer.Profile.ID), nil
	}
	job, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		return domain.Scope{}, toGRPCError(err)
	}
	if job.EmployerID != employer.Profile.ID {
		return domain.Scope{}, toGRPCError(domain.ErrNotAuthorized)
	}
	return domain.JobScope(jobID), nil
}

// account resolves the x-user-id value forwarded by the Gateway via gRPC
// metadata.
func (s *Server) account(ctx context.Context) (domain.Account, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing metadata")
	}
	vals := md.Get("x-user-id")
	if len(vals) == 0 || vals[0] == "" {
		return nil, status.Error(codes.Unauthenticated, "missing x-user-id metadata")
	}
	account, err := s.accounts.AccountByUserID(ctx, vals[0])
	if errors.Is(err, domain.ErrNotFound) {
		return nil, status.Error(codes.Unauthenticated, "unknown user")
	}
	if err != nil {
		return nil, toGRPCError(err)
	}
	return account, nil
}

// toGRPCError maps domain errors to gRPC status errors.
func toGRPCError(err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrNotAuthorized):
		return status.Error(codes.PermissionDenied, err.Error())
	}
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return status.Error(codes.InvalidArgument, ve.Error())
	}
	var se *domain.InvalidStatusError
	if errors.As(err, &se) {
		return status.Error(codes.InvalidArgument, se.Error())
	}
	return status.Error(codes.Internal, "internal server error")
}

func stringField(req *structpb.Struct, key string) string {
	if req == nil {
		return ""
	}
	return req.GetFields()[key].GetStringValue()
}

func newStruct(m map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("encode response: %v", err))
	}
	return out, nil
}
