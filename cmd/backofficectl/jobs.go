package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"

	"github.com/arguide/backoffice/jobs"
)

// taskQueue is the subset of *asynq.Client the jobs helper uses.
type taskQueue interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

// queueInspector is the subset of *asynq.Inspector the jobs helper uses.
type queueInspector interface {
	GetQueueInfo(queue string) (*asynq.QueueInfo, error)
	Close() error
}

// JobsCLI wraps manual management helpers for the worker queues.
type JobsCLI struct {
	client    taskQueue
	inspector queueInspector
}

// NewJobsCLI initialises the helpers against the Redis at redisAddr.
func NewJobsCLI(redisAddr string) *JobsCLI {
	opts := asynq.RedisClientOpt{Addr: redisAddr}
	return &JobsCLI{client: asynq.NewClient(opts), inspector: asynq.NewInspector(opts)}
}

// Close releases underlying resources.
func (c *JobsCLI) Close() error {
	var err error
	if c.inspector != nil {
		if closeErr := c.inspector.Close(); closeErr != nil {
			err = closeErr
		}
	}
	if c.client != nil {
		if closeErr := c.client.Close(); closeErr != nil {
			err = closeErr
		}
	}
	return err
}

// TriggerCleanup enqueues an idempotency cleanup with the given retention.
func (c *JobsCLI) TriggerCleanup(ctx context.Context, retention time.Duration) (*asynq.TaskInfo, error) {
	if c == nil || c.client == nil {
		return nil, errors.New("jobs cli: client not configured")
	}
	task, err := jobs.NewIdempotencyCleanupTask(retention)
	if err != nil {
		return nil, err
	}
	return c.client.EnqueueContext(ctx, task, asynq.MaxRetry(3))
}

// QueueStats summarises one queue.
type QueueStats struct {
	Queue     string `json:"queue"`
	Pending   int    `json:"pending"`
	Active    int    `json:"active"`
	Scheduled int    `json:"scheduled"`
	Retry     int    `json:"retry"`
	Archived  int    `json:"archived"`
}

// InspectQueues reports the audit and default queues.
func (c *JobsCLI) InspectQueues() ([]QueueStats, error) {
	if c == nil || c.inspector == nil {
		return nil, errors.New("jobs cli: inspector not configured")
	}
	queues := []string{jobs.QueueAudit, jobs.QueueDefault}
	out := make([]QueueStats, 0, len(queues))
	for _, name := range queues {
		info, err := c.inspector.GetQueueInfo(name)
		if err != nil {
			return nil, fmt.Errorf("queue %s: %w", name, err)
		}
		stats := QueueStats{Queue: name}
		if info != nil {
			stats.Pending = info.Pending
			stats.Active = info.Active
			stats.Scheduled = info.Scheduled
			stats.Retry = info.Retry
			stats.Archived = info.Archived
		}
		out = append(out, stats)
	}
	return out, nil
}

func newJobsCmd(c *cli) *cobra.Command {
	var redisAddr string
	newJobs := func() *JobsCLI {
		addr := redisAddr
		if addr == "" {
			addr = c.profile.RedisAddr
		}
		if addr == "" {
			addr = "127.0.0.1:6379"
		}
		return NewJobsCLI(addr)
	}
	if c.newJobs != nil {
		newJobs = c.newJobs
	}

	cmd := &cobra.Command{
		Use:     "jobs",
		Short:   "Inspect and trigger background jobs",
		GroupID: "system",
	}
	cmd.PersistentFlags().StringVar(&redisAddr, "redis", "", "Redis address (overrides the profile)")

	var retention time.Duration
	cleanup := &cobra.Command{
		Use:   "cleanup",
		Short: "Purge expired confirmation tokens now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			j := newJobs()
			defer j.Close()
			info, err := j.TriggerCleanup(cmd.Context(), retention)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.stdout, "Enqueued %s as %s on %s.\n", info.Type, info.ID, info.Queue)
			return nil
		},
	}
	cleanup.Flags().DurationVar(&retention, "retention", 24*time.Hour, "keep tokens newer than this")

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Show queue depth",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			j := newJobs()
			defer j.Close()
			out, err := j.InspectQueues()
			if err != nil {
				return err
			}
			if c.jsonOutput {
				return printJSON(c.stdout, out)
			}
			for _, s := range out {
				fmt.Fprintf(c.stdout, "%-8s pending=%d active=%d scheduled=%d retry=%d archived=%d\n",
					s.Queue, s.Pending, s.Active, s.Scheduled, s.Retry, s.Archived)
			}
			return nil
		},
	}
	cmd.AddCommand(cleanup, stats)
	return cmd
}
