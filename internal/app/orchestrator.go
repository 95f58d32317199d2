package app

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"privyscope/internal/model"
)

type JobEventType string

const (
	JobEventStatus JobEventType = "status"
	JobEventStage  JobEventType = "stage"
	JobEventResult JobEventType = "result"
)

type JobStatus string

const (
	JobPending  JobStatus = "pending"
	JobRunning  JobStatus = "running"
	JobDone     JobStatus = "done"
	JobFailed   JobStatus = "failed"
	JobCanceled JobStatus = "canceled"
)

type JobEvent struct {
	JobID string       `json:"job_id"`
	Type  JobEventType `json:"type"`

	Status JobStatus `json:"status,omitempty"`
	Stage  string    `json:"stage,omitempty"`
	Error  string    `json:"error,omitempty"`

	Result *model.AnalysisResult `json:"result,omitempty"`
}

type Job struct {
	ID        string        `json:"id"`
	PageURL   string        `json:"page_url"`
	Status    JobStatus     `json:"status"`
	Error     string        `json:"error,omitempty"`
	StartedAt time.Time     `json:"started_at"`
	EndedAt   time.Time     `json:"ended_at"`
	Events    chan JobEvent `json:"-"`

	Result *model.AnalysisResult `json:"result,omitempty"`
}

// Orchestrator runs analyses as cancelable background jobs and streams
// their progress over buffered event channels.
type Orchestrator struct {
	app *Application

	jobsMu     sync.Mutex
	jobs       map[string]*Job
	jobCancels map[string]context.CancelFunc
}

func NewOrchestrator(app *Application) *Orchestrator {
	return &Orchestrator{
		app:        app,
		jobs:       make(map[string]*Job),
		jobCancels: make(map[string]context.CancelFunc),
	}
}

// GetJob returns a snapshot of the job taken under the lock; the running
// goroutine keeps mutating the original, so callers must never see it.
func (o *Orchestrator) GetJob(jobID string) *Job {
	o.jobsMu.Lock()
	defer o.jobsMu.Unlock()
	return snapshotJob(o.jobs[jobID])
}

// ListJobs returns snapshots of every job the orchestrator still tracks,
// in no particular order.
func (o *Orchestrator) ListJobs() []*Job {
	o.jobsMu.Lock()
	defer o.jobsMu.Unlock()
	jobs := make([]*Job, 0, len(o.jobs))
	for _, job := range o.jobs {
		jobs = append(jobs, snapshotJob(job))
	}
	return jobs
}

// snapshotJob must be called with jobsMu held. The Events channel is shared
// between the copy and the original; Result is written once, before the
// result event, and never mutated after.
func snapshotJob(job *Job) *Job {
	if job == nil {
		return nil
	}
	cp := *job
	return &cp
}

// CancelJob cancels a running job; unknown ids are a no-op.
func (o *Orchestrator) CancelJob(jobID string) {
	o.jobsMu.Lock()
	cancel := o.jobCancels[jobID]
	o.jobsMu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (o *Orchestrator) emit(job *Job, ev JobEvent) {
	ev.JobID = job.ID
	// Non-blocking send; drop if the consumer lags.
	select {
	case job.Events <- ev:
	default:
	}
}

func (o *Orchestrator) setStatus(job *Job, status JobStatus, errMsg string) {
	o.jobsMu.Lock()
	job.Status = status
	job.Error = errMsg
	o.jobsMu.Unlock()
	o.emit(job, JobEvent{Type: JobEventStatus, Status: status, Error: errMsg})
}

// StartAnalyzeJob analyzes an assembled snapshot in the background. When
// acquire is true the snapshot carries only a page URL and the server
// acquires everything itself.
func (o *Orchestrator) StartAnalyzeJob(ctx context.Context, in model.AnalysisInput, acquire bool) *Job {
	job := &Job{
		ID:        uuid.NewString(),
		PageURL:   in.PageURL,
		Status:    JobPending,
		StartedAt: time.Now().UTC(),
		Events:    make(chan JobEvent, 16),
	}

	jobCtx, cancel := context.WithCancel(ctx)
	o.jobsMu.Lock()
	o.jobs[job.ID] = job
	o.jobCancels[job.ID] = cancel
	o.jobsMu.Unlock()

	o.emit(job, JobEvent{Type: JobEventStatus, Status: JobPending})

	go func() {
		defer func() {
			o.jobsMu.Lock()
			job.EndedAt = time.Now().UTC()
			delete(o.jobCancels, job.ID)
			o.jobsMu.Unlock()
			close(job.Events)
		}()

		o.setStatus(job, JobRunning, "")

		var res model.AnalysisResult
		var err error
		if acquire {
			o.emit(job, JobEvent{Type: JobEventStage, Stage: "acquire"})
			res, err = o.app.AnalyzeURL(jobCtx, in.PageURL, in.SiteCategory)
		} else {
			o.emit(job, JobEvent{Type: JobEventStage, Stage: "analyze"})
			res, err = o.app.AnalyzeSnapshot(jobCtx, in)
		}

		if err != nil {
			if jobCtx.Err() != nil {
				o.setStatus(job, JobCanceled, jobCtx.Err().Error())
			} else {
				o.setStatus(job, JobFailed, err.Error())
			}
			return
		}

		o.jobsMu.Lock()
		job.Status = JobDone
		job.Result = &res
		o.jobsMu.Unlock()
		o.emit(job, JobEvent{Type: JobEventResult, Status: JobDone, Result: &res})
	}()

	return job
}
