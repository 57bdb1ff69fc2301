// Package jobstore persists job state as one JSON file per job so that
// in-flight work survives process restarts. Record files are the sole
// durable representation of a job; recovery is "re-read everything and
// pick up whatever is non-terminal".
package jobstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	"reel/internal/pkg/errors"
	"reel/internal/pkg/logger"
)

// Job statuses written by this service. Status is an open string; the
// job owner may record additional terminal states.
const (
	StatusQueued     = "queued"
	StatusProcessing = "processing"
	StatusDone       = "done"
	StatusFailed     = "failed"
)

// Record is the on-disk representation of a job. Extra carries
// caller-defined fields merged in by UpdateStatus; they are flattened
// into the top-level JSON object next to job_id/status/payload.
type Record struct {
	JobID   string
	Status  string
	Payload map[string]any
	Extra   map[string]any
}

// Pending reports whether the record describes unfinished work.
func (r *Record) Pending() bool {
	return r.Status == StatusQueued || r.Status == StatusProcessing
}

func (r *Record) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(r.Extra)+3)
	for k, v := range r.Extra {
		m[k] = v
	}
	m["job_id"] = r.JobID
	m["status"] = r.Status
	m["payload"] = r.Payload
	return json.Marshal(m)
}

func (r *Record) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	if v, ok := m["job_id"].(string); ok {
		r.JobID = v
	}
	if v, ok := m["status"].(string); ok {
		r.Status = v
	}
	if v, ok := m["payload"].(map[string]any); ok {
		r.Payload = v
	}
	delete(m, "job_id")
	delete(m, "status")
	delete(m, "payload")
	r.Extra = nil
	if len(m) > 0 {
		r.Extra = m
	}
	return nil
}

// Store reads and writes job record files under a single directory.
// Writers serialize per record through an exclusive advisory file lock;
// scans read without locking (a torn read is recovered by a later scan).
type Store struct {
	dir string
	log *logger.Logger
}

// New creates the record directory if needed and returns a store.
func New(dir string, log *logger.Logger) (*Store, error) {
	if dir == "" {
		return nil, errors.Validation("jobstore: directory is required")
	}
	if log == nil {
		log = logger.NewDefault()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "jobstore.new", "failed to create queue directory")
	}
	return &Store{dir: dir, log: log.WithComponent("jobstore")}, nil
}

// Dir returns the record directory.
func (s *Store) Dir() string { return s.dir }

func (s *Store) recordPath(jobID string) (string, error) {
	if jobID == "" || strings.ContainsAny(jobID, `/\`) || jobID != filepath.Base(jobID) {
		return "", errors.ValidationField("job_id", "invalid job id")
	}
	return filepath.Join(s.dir, jobID+".json"), nil
}

// Save creates or overwrites the job's record file with status queued.
// The exclusive lock is held for the whole write so no concurrent
// reader observes a partially written record.
func (s *Store) Save(jobID string, payload map[string]any) error {
	path, err := s.recordPath(jobID)
	if err != nil {
		return err
	}

	rec := &Record{JobID: jobID, Status: StatusQueued, Payload: payload}
	data, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrap(err, "jobstore.save", "failed to encode job record")
	}

	fl := flock.New(path)
	if err := fl.Lock(); err != nil {
		return errors.Wrap(err, "jobstore.save", "failed to lock job record")
	}
	defer fl.Unlock()

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, "jobstore.save", "failed to write job record")
	}
	return nil
}

// Get reads a single record. It does not take the lock.
func (s *Store) Get(jobID string) (*Record, error) {
	path, err := s.recordPath(jobID)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound("job", jobID)
		}
		return nil, errors.Wrap(err, "jobstore.get", "failed to read job record")
	}

	rec := &Record{}
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, errors.Wrap(err, "jobstore.get", "failed to decode job record")
	}
	return rec, nil
}

// UpdateStatus merges a new status and extra fields into an existing
// record under the exclusive lock. Missing records are a silent no-op:
// lost jobs are not resurrected, and the job may already have been
// completed and removed by its consumer.
func (s *Store) UpdateStatus(jobID, status string, extra map[string]any) error {
	path, err := s.recordPath(jobID)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	fl := flock.New(path)
	if err := fl.Lock(); err != nil {
		return errors.Wrap(err, "jobstore.update", "failed to lock job record")
	}
	defer fl.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrap(err, "jobstore.update", "failed to read job record")
	}
	if len(data) == 0 {
		// Record was deleted while we waited for the lock and the lock
		// acquisition recreated an empty file. Remove the husk.
		_ = os.Remove(path)
		return nil
	}

	rec := &Record{}
	if err := json.Unmarshal(data, rec); err != nil {
		return errors.Wrap(err, "jobstore.update", "failed to decode job record")
	}

	rec.Status = status
	if len(extra) > 0 {
		if rec.Extra == nil {
			rec.Extra = make(map[string]any, len(extra))
		}
		for k, v := range extra {
			rec.Extra[k] = v
		}
	}

	out, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrap(err, "jobstore.update", "failed to encode job record")
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return errors.Wrap(err, "jobstore.update", "failed to write job record")
	}
	return nil
}

// Delete removes the record file. Absent records are a no-op.
func (s *Store) Delete(jobID string) error {
	path, err := s.recordPath(jobID)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "jobstore.delete", "failed to delete job record")
	}
	return nil
}

// ListPending scans every record file and returns the queued and
// processing ones. A record that fails to parse is logged and skipped;
// one corrupted file must not hide other jobs from recovery.
func (s *Store) ListPending() ([]*Record, error) {
	paths, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		return nil, errors.Wrap(err, "jobstore.list", "failed to scan queue directory")
	}

	var pending []*Record
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			s.log.Warn("failed to read job record", "path", path, "error", err.Error())
			continue
		}
		rec := &Record{}
		if err := json.Unmarshal(data, rec); err != nil {
			s.log.Warn("failed to parse job record", "path", path, "error", err.Error())
			continue
		}
		if rec.Pending() {
			pending = append(pending, rec)
		}
	}
	return pending, nil
}
