package worker

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/VAshish07243/Chai-Shots/internal/jobs/scheduler"
	"github.com/VAshish07243/Chai-Shots/internal/pkg/logger"
)

// HealthService is the service name the worker reports on the gRPC health endpoint.
const HealthService = "chaishots.scheduler"

// Worker runs the scheduler loop next to a gRPC health server. The health
// status follows the last cycle: a cycle cut short by a store failure reports
// NOT_SERVING until a later cycle succeeds.
type Worker struct {
	log        *logger.Logger
	sched      *scheduler.Scheduler
	healthAddr string
	health     *health.Server
}

func NewWorker(baseLog *logger.Logger, sched *scheduler.Scheduler, healthAddr string) *Worker {
	if baseLog == nil {
		baseLog = logger.NewNop()
	}
	return &Worker{
		log:        baseLog.With("component", "SchedulerWorker"),
		sched:      sched,
		healthAddr: strings.TrimSpace(healthAddr),
		health:     health.NewServer(),
	}
}

// ObserveCycle updates the health status from a cycle report. Pass it to the
// scheduler with scheduler.WithCycleHook.
func (w *Worker) ObserveCycle(rep scheduler.Report) {
	status := healthpb.HealthCheckResponse_SERVING
	if rep.Err != nil {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	w.health.SetServingStatus(HealthService, status)
	w.health.SetServingStatus("", status)
}

// Run listens on the configured health address (none when empty) and blocks
// until ctx is done and the in-flight cycle has finished.
func (w *Worker) Run(ctx context.Context) error {
	if w.healthAddr == "" {
		return w.Serve(ctx, nil)
	}
	lis, err := net.Listen("tcp", w.healthAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", w.healthAddr, err)
	}
	return w.Serve(ctx, lis)
}

func (w *Worker) Serve(ctx context.Context, lis net.Listener) error {
	if w.sched == nil {
		return errors.New("scheduler required")
	}
	g, gctx := errgroup.WithContext(ctx)

	var srv *grpc.Server
	if lis != nil {
		srv = grpc.NewServer()
		healthpb.RegisterHealthServer(srv, w.health)
		w.health.SetServingStatus(HealthService, healthpb.HealthCheckResponse_SERVING)
		w.log.Info("worker health server listening", "addr", lis.Addr().String())
		g.Go(func() error {
			if err := srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				return fmt.Errorf("health server: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		err := w.sched.Run(gctx)
		w.health.Shutdown()
		if srv != nil {
			srv.GracefulStop()
		}
		return err
	})

	err := g.Wait()
	w.log.Info("worker stopped")
	return err
}

// RunOnce executes a single scheduler cycle and reports its claim error, if any.
func (w *Worker) RunOnce(ctx context.Context) (scheduler.Report, error) {
	if w.sched == nil {
		return scheduler.Report{}, errors.New("scheduler required")
	}
	rep := w.sched.RunCycle(ctx)
	return rep, rep.Err
}
