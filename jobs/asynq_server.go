package jobs

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/cadet-portal/cadet-portal/internal/platform/httpx"
	"github.com/cadet-portal/cadet-portal/internal/shared"
)

// Worker wraps the Asynq server and optional scheduler.
type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	scheduler *asynq.Scheduler
	logger    *slog.Logger
}

// TaskHandler allows injecting custom Asynq handlers during worker setup.
type TaskHandler struct {
	Type    string
	Handler asynq.HandlerFunc
}

// CronRegistration wires a cron expression to a prepared task.
type CronRegistration struct {
	Spec    string
	Task    *asynq.Task
	Options []asynq.Option
}

// WorkerConfig collects dependencies required to bootstrap the worker.
type WorkerConfig struct {
	RedisOpts asynq.RedisClientOpt
	Logger    *slog.Logger
	Handlers  []TaskHandler
	Cron      []CronRegistration
}

// NewWorker constructs a Worker instance.
func NewWorker(cfg WorkerConfig) (*Worker, error) {
	srv := asynq.NewServer(cfg.RedisOpts, asynq.Config{
		Concurrency: 2,
		Queues: map[string]int{
			QueueDefault: 1,
		},
	})
	mux := asynq.NewServeMux()
	for _, h := range cfg.Handlers {
		if h.Type == "" || h.Handler == nil {
			continue
		}
		mux.HandleFunc(h.Type, h.Handler)
	}

	var scheduler *asynq.Scheduler
	if len(cfg.Cron) > 0 {
		scheduler = asynq.NewScheduler(cfg.RedisOpts, &asynq.SchedulerOpts{Location: time.UTC})
		for _, entry := range cfg.Cron {
			if entry.Spec == "" || entry.Task == nil {
				continue
			}
			if _, err := scheduler.Register(entry.Spec, entry.Task, entry.Options...); err != nil {
				return nil, err
			}
		}
	}

	return &Worker{server: srv, mux: mux, scheduler: scheduler, logger: cfg.Logger}, nil
}

// Run starts processing jobs until context cancellation.
func (w *Worker) Run(ctx context.Context) error {
	if w == nil {
		return errors.New("worker: not configured")
	}
	if w.scheduler != nil {
		if err := w.scheduler.Start(); err != nil {
			return err
		}
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- w.server.Run(w.mux)
	}()
	select {
	case <-ctx.Done():
		if w.scheduler != nil {
			w.scheduler.Shutdown()
		}
		w.server.Shutdown()
		return ctx.Err()
	case err := <-errCh:
		if w.scheduler != nil {
			w.scheduler.Shutdown()
		}
		return err
	}
}

// Client submits jobs to the queue.
type Client struct {
	client *asynq.Client
}

// NewClient constructs an Asynq client.
func NewClient(redisOpts asynq.RedisClientOpt) (*Client, error) {
	client := asynq.NewClient(redisOpts)
	return &Client{client: client}, nil
}

// EnqueueBackup enqueues a backup task under a fresh task id.
func (c *Client) EnqueueBackup(ctx context.Context, requestedBy string) (*asynq.TaskInfo, error) {
	task, err := NewBackupTask(requestedBy)
	if err != nil {
		return nil, err
	}
	return c.client.EnqueueContext(ctx, task, asynq.TaskID(uuid.NewString()))
}

// EnqueueRestore enqueues a restore task under a fresh task id.
func (c *Client) EnqueueRestore(ctx context.Context, file, requestedBy string) (*asynq.TaskInfo, error) {
	task, err := NewRestoreTask(file, requestedBy)
	if err != nil {
		return nil, err
	}
	return c.client.EnqueueContext(ctx, task, asynq.TaskID(uuid.NewString()))
}

// Close releases client resources.
func (c *Client) Close() error {
	return c.client.Close()
}

// Scheduler enqueues backup and restore work.
type Scheduler interface {
	EnqueueBackup(ctx context.Context, requestedBy string) (*asynq.TaskInfo, error)
	EnqueueRestore(ctx context.Context, file, requestedBy string) (*asynq.TaskInfo, error)
}

// QueueInspector reports queue depth.
type QueueInspector interface {
	GetQueueInfo(queue string) (*asynq.QueueInfo, error)
}

// Handler serves /api/master/backup-restore.
type Handler struct {
	scheduler Scheduler
	inspector QueueInspector
	logger    *slog.Logger
}

// NewHandler constructs the backup/restore handler. inspector may be nil.
func NewHandler(scheduler Scheduler, inspector QueueInspector, logger *slog.Logger) *Handler {
	return &Handler{scheduler: scheduler, inspector: inspector, logger: logger}
}

// MountRoutes attaches backup/restore routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/backup", h.backup)
	r.Post("/restore", h.restore)
	r.Get("/health", h.health)
}

type scheduledResponse struct {
	Msg    string `json:"msg"`
	TaskID string `json:"task_id"`
}

func (h *Handler) backup(w http.ResponseWriter, r *http.Request) {
	m, ok := shared.AsMaster(shared.PrincipalFromContext(r.Context()))
	if !ok {
		httpx.Msg(w, http.StatusForbidden, "Only master may create a backup.")
		return
	}
	info, err := h.scheduler.EnqueueBackup(r.Context(), m.Phone)
	if err != nil {
		h.logger.Error("enqueue backup", slog.Any("error", err))
		httpx.Msg(w, http.StatusInternalServerError, "Failed to schedule backup.")
		return
	}
	httpx.JSON(w, http.StatusOK, scheduledResponse{Msg: "Backup scheduled.", TaskID: info.ID})
}

type restoreRequest struct {
	File string `json:"file"`
}

func (h *Handler) restore(w http.ResponseWriter, r *http.Request) {
	m, ok := shared.AsMaster(shared.PrincipalFromContext(r.Context()))
	if !ok {
		httpx.Msg(w, http.StatusForbidden, "Only master may restore from backup.")
		return
	}
	var req restoreRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Msg(w, http.StatusBadRequest, "Invalid restore request.")
		return
	}
	if req.File != "" && !ValidSnapshotName(req.File) {
		httpx.Msg(w, http.StatusBadRequest, "Invalid backup file name.")
		return
	}
	info, err := h.scheduler.EnqueueRestore(r.Context(), req.File, m.Phone)
	if err != nil {
		h.logger.Error("enqueue restore", slog.String("file", req.File), slog.Any("error", err))
		httpx.Msg(w, http.StatusInternalServerError, "Failed to schedule restore.")
		return
	}
	httpx.JSON(w, http.StatusOK, scheduledResponse{Msg: "Restore scheduled.", TaskID: info.ID})
}

type queueHealth struct {
	Queue   string `json:"queue"`
	Pending int    `json:"pending"`
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if _, ok := shared.AsMaster(shared.PrincipalFromContext(r.Context())); !ok {
		httpx.Msg(w, http.StatusForbidden, "Only master may view job health.")
		return
	}
	if h.inspector == nil {
		httpx.JSON(w, http.StatusOK, queueHealth{Queue: QueueDefault})
		return
	}
	info, err := h.inspector.GetQueueInfo(QueueDefault)
	if err != nil {
		h.logger.Warn("jobs health", slog.Any("error", err))
		httpx.Msg(w, http.StatusServiceUnavailable, http.StatusText(http.StatusServiceUnavailable))
		return
	}
	res := queueHealth{Queue: QueueDefault}
	if info != nil {
		res.Pending = info.Pending
		res.Queue = info.Queue
	}
	httpx.JSON(w, http.StatusOK, res)
}
