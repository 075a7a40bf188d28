package service

import (
	"context"
	"errors"
	"io"
	"os/exec"
	"sync"
	"sync/atomic"
	"videoverse/video-api/pkg/util"

	"go.uber.org/zap"
)

var ErrQueueStopped = errors.New("job queue stopped")

// CommandRunner runs one external command to completion
type CommandRunner interface {
	Run(ctx context.Context, name string, args []string, stdout, stderr io.Writer) error
}

// ExecRunner is the os/exec backed CommandRunner
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args []string, stdout, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	zap.L().Debug("Running command", zap.String("cmd", cmd.String()))
	return cmd.Run()
}

type Job struct {
	ID     string
	Name   string
	Args   []string
	Stdout io.Writer
	Stderr io.Writer
	Ctx    context.Context
	Done   chan error
}

// JobQueue limits how many media tool processes run at once across all
// requests. A request waits for a free worker or for its context to end
type JobQueue struct {
	jobs    chan *Job
	quit    chan struct{}
	stop    sync.Once
	running atomic.Int32
	workers int
	runner  CommandRunner
}

func NewJobQueue(workers int, runner CommandRunner) *JobQueue {
	if workers <= 0 {
		workers = 1
	}

	if runner == nil {
		runner = ExecRunner{}
	}

	zap.L().Debug("Initializing job queue", zap.Int("workers", workers))

	return &JobQueue{
		jobs:    make(chan *Job),
		quit:    make(chan struct{}),
		workers: workers,
		runner:  runner,
	}
}

func (q *JobQueue) StartWorkerPool() {
	for range q.workers {
		go q.worker()
	}
}

// Stop makes the workers exit once their current job is done
func (q *JobQueue) Stop() {
	q.stop.Do(func() {
		close(q.quit)
	})
}

// Running returns the amount of jobs being executed right now
func (q *JobQueue) Running() int {
	return int(q.running.Load())
}

func (q *JobQueue) worker() {
	for {
		select {
		case <-q.quit:
			return
		case job := <-q.jobs:
			q.running.Add(1)
			err := q.runner.Run(job.Ctx, job.Name, job.Args, job.Stdout, job.Stderr)
			q.running.Add(-1)

			job.Done <- err
			close(job.Done)

			if err != nil {
				zap.L().Debug("Job finished with an error", zap.String("job_id", job.ID), zap.String("name", job.Name), zap.Error(err))
			} else {
				zap.L().Debug("Job finished successfully", zap.String("job_id", job.ID), zap.String("name", job.Name))
			}
		}
	}
}

// Enqueue hands the job to a worker, blocking until one is free
func (q *JobQueue) Enqueue(job *Job) error {
	if job.Ctx == nil {
		job.Ctx = context.Background()
	}

	if job.Done == nil {
		job.Done = make(chan error, 1)
	}

	select {
	case q.jobs <- job:
		zap.L().Debug("New job enqueued", zap.String("job_id", job.ID), zap.Int32("running", q.running.Load()))
		return nil
	case <-q.quit:
		return ErrQueueStopped
	case <-job.Ctx.Done():
		return job.Ctx.Err()
	}
}

// Run enqueues a command and waits for it to exit
func (q *JobQueue) Run(ctx context.Context, name string, args []string, stdout, stderr io.Writer) error {
	job := &Job{
		ID:     util.RandStr(5),
		Name:   name,
		Args:   args,
		Stdout: stdout,
		Stderr: stderr,
		Ctx:    ctx,
		Done:   make(chan error, 1),
	}

	if err := q.Enqueue(job); err != nil {
		return err
	}

	return <-job.Done
}
