package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jogodabiblia/biblia/internal/logging"
	"github.com/jogodabiblia/biblia/internal/search"
)

// JobStatus represents the current state of a job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// IndexRequest is the request body for a semantic indexing job.
type IndexRequest struct {
	Version string `json:"version"`
}

// IndexResult is the outcome of a completed indexing job.
type IndexResult struct {
	Indexed  int    `json:"indexed"`
	Duration string `json:"duration"`
}

// Job represents an asynchronous indexing job.
type Job struct {
	ID          string             `json:"id"`
	Status      JobStatus          `json:"status"`
	Progress    int                `json:"progress"` // 0-100
	Result      *IndexResult       `json:"result,omitempty"`
	Error       string             `json:"error,omitempty"`
	CreatedAt   string             `json:"created_at"`
	UpdatedAt   string             `json:"updated_at"`
	CompletedAt string             `json:"completed_at,omitempty"`
	Request     IndexRequest       `json:"request"`
	ctx         context.Context    `json:"-"`
	cancel      context.CancelFunc `json:"-"`
}

// JobStore manages indexing jobs in memory.
type JobStore struct {
	jobs map[string]*Job
	mu   sync.RWMutex
}

// NewJobStore creates a new job store.
func NewJobStore() *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
	}
}

// Create creates a new job and returns it.
func (s *JobStore) Create(req IndexRequest) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	now := time.Now().UTC().Format(time.RFC3339)

	job := &Job{
		ID:        uuid.New().String(),
		Status:    JobStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
		Request:   req,
		ctx:       ctx,
		cancel:    cancel,
	}

	s.jobs[job.ID] = job
	return job
}

// Get retrieves a snapshot of a job by ID. The returned copy is taken
// under the lock, so callers can read it while the job keeps running.
func (s *JobStore) Get(id string) (Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, exists := s.jobs[id]
	if !exists {
		return Job{}, false
	}
	return *job, true
}

// Update updates a job's status and progress.
func (s *JobStore) Update(id string, status JobStatus, progress int, result *IndexResult, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, exists := s.jobs[id]
	if !exists {
		return fmt.Errorf("job not found: %s", id)
	}

	job.Status = status
	job.Progress = progress
	job.UpdatedAt = time.Now().UTC().Format(time.RFC3339)

	if result != nil {
		job.Result = result
	}
	if errMsg != "" {
		job.Error = errMsg
	}
	if status == JobStatusCompleted || status == JobStatusFailed || status == JobStatusCancelled {
		job.CompletedAt = time.Now().UTC().Format(time.RFC3339)
	}

	return nil
}

// List returns snapshots of all jobs.
func (s *JobStore) List() []Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		jobs = append(jobs, *job)
	}
	return jobs
}

// Cancel cancels a pending or running job.
func (s *JobStore) Cancel(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, exists := s.jobs[id]
	if !exists {
		return fmt.Errorf("job not found: %s", id)
	}

	if job.Status != JobStatusPending && job.Status != JobStatusRunning {
		return fmt.Errorf("job cannot be cancelled (status: %s)", job.Status)
	}

	if job.cancel != nil {
		job.cancel()
	}

	now := time.Now().UTC().Format(time.RFC3339)
	job.Status = JobStatusCancelled
	job.UpdatedAt = now
	job.CompletedAt = now

	return nil
}

// runIndexJob walks the version's verses through the indexer in a
// goroutine, streaming progress to the job store and the hub.
func (s *Server) runIndexJob(job *Job) {
	go func() {
		s.jobs.Update(job.ID, JobStatusRunning, 0, nil, "")
		start := time.Now()

		// Track progress locally so the failure paths below never read
		// the shared job struct outside the store's lock.
		lastPct := 0

		indexer := search.NewIndexer(s.search, s.store)
		indexed, err := indexer.IndexVersion(job.ctx, job.Request.Version, func(done, total int) {
			pct := done * 100 / total
			lastPct = pct
			s.jobs.Update(job.ID, JobStatusRunning, pct, nil, "")
			s.hub.Broadcast(ProgressMessage{
				Type:      "progress",
				Operation: "index",
				Stage:     "embedding",
				Progress:  pct,
				Message:   fmt.Sprintf("Indexed %d of %d verses", done, total),
			})
		})

		if err != nil {
			if job.ctx.Err() != nil {
				s.jobs.Update(job.ID, JobStatusCancelled, lastPct, nil, "Job cancelled by user")
				s.hub.Broadcast(ProgressMessage{
					Type: "error", Operation: "index", Message: "Indexing cancelled",
				})
				return
			}
			logging.Error("index job failed", "job_id", job.ID, "error", err)
			s.jobs.Update(job.ID, JobStatusFailed, lastPct, nil, err.Error())
			s.hub.Broadcast(ProgressMessage{
				Type: "error", Operation: "index", Message: err.Error(),
			})
			return
		}

		result := &IndexResult{Indexed: indexed, Duration: time.Since(start).String()}
		s.jobs.Update(job.ID, JobStatusCompleted, 100, result, "")
		s.hub.Broadcast(ProgressMessage{
			Type:      "complete",
			Operation: "index",
			Progress:  100,
			Message:   fmt.Sprintf("Indexed %d verses", indexed),
			Data:      map[string]any{"indexed": indexed, "version": job.Request.Version},
		})
	}()
}

// handleSearchIndex handles POST /api/v1/search/index.
func (s *Server) handleSearchIndex(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only POST is allowed")
		return
	}
	if s.search == nil {
		respondError(w, http.StatusServiceUnavailable, "SEARCH_DISABLED", "Semantic search is not enabled")
		return
	}

	var req IndexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}
	if req.Version == "" {
		req.Version = s.cfg.DefaultVersion
	}

	job := s.jobs.Create(req)
	// Snapshot before the worker goroutine starts mutating the job.
	snapshot := *job
	s.runIndexJob(job)

	respond(w, http.StatusCreated, snapshot)
}

// handleJobByID handles GET and DELETE on /api/v1/jobs/{id}.
func (s *Server) handleJobByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/jobs/")
	if id == "" {
		respondError(w, http.StatusBadRequest, "MISSING_ID", "Job ID is required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		job, exists := s.jobs.Get(id)
		if !exists {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "Job not found")
			return
		}
		respond(w, http.StatusOK, job)
	case http.MethodDelete:
		if err := s.jobs.Cancel(id); err != nil {
			if strings.Contains(err.Error(), "not found") {
				respondError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
				return
			}
			respondError(w, http.StatusBadRequest, "CANCEL_FAILED", err.Error())
			return
		}
		respond(w, http.StatusOK, map[string]string{"message": "Job cancelled"})
	default:
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET and DELETE are allowed")
	}
}
