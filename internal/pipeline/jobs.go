package pipeline

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/agridoc/internal/assistant"
	"github.com/dgallion1/agridoc/internal/document"
	"github.com/dgallion1/agridoc/internal/fields"
	"github.com/dgallion1/agridoc/internal/parser"
)

// JobStatus represents the state of a generation job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusGenerating JobStatus = "generating"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// Job tracks one streamed reply. The text grows as deltas arrive and is
// parsed again from the start on every Snapshot.
type Job struct {
	mu sync.Mutex

	ID     string           `json:"job_id"`
	Prompt assistant.Prompt `json:"prompt"`

	Status    JobStatus `json:"status"`
	Phase     string    `json:"phase"`
	Attempts  int       `json:"attempts"`
	HistoryID string    `json:"history_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	text   strings.Builder
	deltas int
	errors []string
}

// NewJob returns a queued job for p with a fresh id.
func NewJob(p assistant.Prompt) *Job {
	now := time.Now()
	return &Job{
		ID:        uuid.NewString(),
		Prompt:    p,
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Len returns the number of stored jobs.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.lastUpdate()) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

func (j *Job) lastUpdate() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.UpdatedAt
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// SetPhase updates the phase without changing the status.
func (j *Job) SetPhase(phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.UpdatedAt = time.Now()
}

// IncrAttempts counts one call to the generator.
func (j *Job) IncrAttempts() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Attempts++
	j.UpdatedAt = time.Now()
}

// AppendDelta appends streamed text.
func (j *Job) AppendDelta(delta string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.text.WriteString(delta)
	j.deltas++
	j.UpdatedAt = time.Now()
}

// HasText reports whether any delta has arrived.
func (j *Job) HasText() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.deltas > 0
}

// Text returns the text accumulated so far.
func (j *Job) Text() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.text.String()
}

// SetHistoryID records where the finished reply was stored.
func (j *Job) SetHistoryID(id string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.HistoryID = id
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID        string             `json:"job_id"`
	Kind      assistant.Kind     `json:"kind"`
	Subject   string             `json:"subject"`
	Status    JobStatus          `json:"status"`
	Phase     string             `json:"phase"`
	Attempts  int                `json:"attempts"`
	Deltas    int                `json:"deltas"`
	Text      string             `json:"text"`
	Document  *document.Document `json:"document,omitempty"`
	Fields    any                `json:"fields,omitempty"`
	HistoryID string             `json:"history_id,omitempty"`
	Errors    []string           `json:"errors"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state. Marker-text replies
// carry the Document parsed from the full text received so far. JSON replies
// carry their rendered fields once the job completes.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	snap := JobSnapshot{
		ID:        j.ID,
		Kind:      j.Prompt.Kind,
		Subject:   j.Prompt.Subject(),
		Status:    j.Status,
		Phase:     j.Phase,
		Attempts:  j.Attempts,
		Deltas:    j.deltas,
		Text:      j.text.String(),
		HistoryID: j.HistoryID,
		Errors:    append([]string{}, j.errors...),
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
	j.mu.Unlock()

	if snap.Kind.JSONReply() {
		if snap.Status == StatusCompleted {
			raw := assistant.StripCodeFence(snap.Text)
			v, err := fields.RenderFields(context.Background(), []byte(raw), parser.Full)
			if err != nil {
				snap.Errors = append(snap.Errors, "render fields: "+err.Error())
			} else {
				snap.Fields = v
			}
		}
		return snap
	}

	opts, _ := parser.DialectByName(snap.Kind.Dialect())
	doc := parser.ParseWith(snap.Text, opts)
	snap.Document = &doc
	return snap
}
