package app

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"fasting_tracker_backend/internal/domain/fast"
	"fasting_tracker_backend/internal/domain/report"
	idb "fasting_tracker_backend/internal/infra/database"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func scheduleKey(userID string, startTime time.Time) string {
	return userID + "|" + startTime.UTC().Format(time.RFC3339Nano)
}

// fakeReportRepo is an in-memory report.Repository mirroring the postgres
// upsert and claim semantics.
type fakeReportRepo struct {
	mu      sync.Mutex
	records map[string]*report.ScheduledReport
}

func newFakeReportRepo() *fakeReportRepo {
	return &fakeReportRepo{records: make(map[string]*report.ScheduledReport)}
}

func copyReport(rec *report.ScheduledReport) *report.ScheduledReport {
	cp := *rec
	cp.Recipients = append([]string(nil), rec.Recipients...)
	return &cp
}

func (r *fakeReportRepo) Upsert(_ context.Context, rec *report.ScheduledReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := scheduleKey(rec.UserID, rec.StartTime)
	if existing, ok := r.records[key]; ok {
		rec.ID = existing.ID
		rec.CreatedAt = existing.CreatedAt
	} else {
		rec.CreatedAt = time.Now()
	}
	rec.Enabled = true
	rec.Processing = false
	rec.SendAttempts = 0
	rec.UpdatedAt = time.Now()
	r.records[key] = copyReport(rec)
	return nil
}

func (r *fakeReportRepo) GetByUserAndStart(_ context.Context, userID string, startTime time.Time) (*report.ScheduledReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[scheduleKey(userID, startTime)]
	if !ok {
		return nil, idb.ErrScheduleNotFound
	}
	return copyReport(rec), nil
}

func (r *fakeReportRepo) Disable(_ context.Context, userID string, startTime time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[scheduleKey(userID, startTime)]
	if !ok {
		return idb.ErrScheduleNotFound
	}
	rec.Enabled = false
	rec.Recipients = []string{}
	rec.Processing = false
	rec.ProcessingAt.Valid = false
	return nil
}

func (r *fakeReportRepo) DisableByID(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.ID == id {
			rec.Enabled = false
			rec.Processing = false
			rec.ProcessingAt.Valid = false
			return nil
		}
	}
	return idb.ErrScheduleNotFound
}

func (r *fakeReportRepo) ListDue(_ context.Context, now, staleBefore time.Time, limit int) ([]*report.ScheduledReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	due := make([]*report.ScheduledReport, 0)
	for _, rec := range r.records {
		if len(due) >= limit {
			break
		}
		if rec.Enabled && !rec.NextSendAt.After(now) && (!rec.Processing || rec.ProcessingAt.Time.Before(staleBefore)) {
			due = append(due, copyReport(rec))
		}
	}
	return due, nil
}

func (r *fakeReportRepo) TryClaim(_ context.Context, id string, now, staleBefore time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.ID != id {
			continue
		}
		if !rec.Enabled {
			return false, nil
		}
		if rec.Processing && !rec.ProcessingAt.Time.Before(staleBefore) {
			return false, nil
		}
		rec.Processing = true
		rec.ProcessingAt.Time = now
		rec.ProcessingAt.Valid = true
		return true, nil
	}
	return false, nil
}

func (r *fakeReportRepo) CompleteSend(_ context.Context, id string, nextSendAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.ID == id {
			rec.NextSendAt = nextSendAt
			rec.Processing = false
			rec.ProcessingAt.Valid = false
			rec.SendAttempts = 0
			return nil
		}
	}
	return idb.ErrScheduleNotFound
}

func (r *fakeReportRepo) ReleaseClaim(_ context.Context, id string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.ID == id {
			rec.Processing = false
			rec.ProcessingAt.Valid = false
			rec.SendAttempts++
			return rec.SendAttempts, nil
		}
	}
	return 0, idb.ErrScheduleNotFound
}

// fakeFastRepo is an in-memory fast.Repository.
type fakeFastRepo struct {
	mu    sync.Mutex
	fasts map[string]*fast.Fast
	notes map[string][]*fast.Note
	seq   int64
}

func newFakeFastRepo() *fakeFastRepo {
	return &fakeFastRepo{
		fasts: make(map[string]*fast.Fast),
		notes: make(map[string][]*fast.Note),
	}
}

func (r *fakeFastRepo) Create(_ context.Context, f *fast.Fast) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	// Mirror the store's partial unique index: one active fast per user.
	if f.Active() {
		for _, existing := range r.fasts {
			if existing.UserID == f.UserID && existing.Active() {
				return idb.ErrActiveFastExists
			}
		}
	}
	f.CreatedAt = time.Now()
	f.UpdatedAt = f.CreatedAt
	cp := *f
	r.fasts[f.ID] = &cp
	return nil
}

func (r *fakeFastRepo) GetByID(_ context.Context, userID, id string) (*fast.Fast, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.fasts[id]
	if !ok || f.UserID != userID {
		return nil, idb.ErrFastNotFound
	}
	cp := *f
	return &cp, nil
}

func (r *fakeFastRepo) GetByUserAndStart(_ context.Context, userID string, startTime time.Time) (*fast.Fast, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.fasts {
		if f.UserID == userID && f.StartTime.Equal(startTime) {
			cp := *f
			return &cp, nil
		}
	}
	return nil, idb.ErrFastNotFound
}

func (r *fakeFastRepo) GetActive(_ context.Context, userID string) (*fast.Fast, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.fasts {
		if f.UserID == userID && f.Active() {
			cp := *f
			return &cp, nil
		}
	}
	return nil, idb.ErrFastNotFound
}

func (r *fakeFastRepo) Update(_ context.Context, f *fast.Fast) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.fasts[f.ID]; !ok {
		return idb.ErrFastNotFound
	}
	f.UpdatedAt = time.Now()
	cp := *f
	r.fasts[f.ID] = &cp
	return nil
}

func (r *fakeFastRepo) ListByUser(_ context.Context, userID string, limit int) ([]*fast.Fast, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*fast.Fast, 0)
	for _, f := range r.fasts {
		if f.UserID == userID && len(out) < limit {
			cp := *f
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeFastRepo) Delete(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.fasts[id]
	if !ok || f.UserID != userID {
		return idb.ErrFastNotFound
	}
	delete(r.fasts, id)
	delete(r.notes, id)
	return nil
}

func (r *fakeFastRepo) AddNote(_ context.Context, n *fast.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	n.ID = r.seq
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	cp := *n
	r.notes[n.FastID] = append(r.notes[n.FastID], &cp)
	return nil
}

func (r *fakeFastRepo) ListNotes(_ context.Context, fastID string) ([]*fast.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*fast.Note, 0, len(r.notes[fastID]))
	for _, n := range r.notes[fastID] {
		cp := *n
		out = append(out, &cp)
	}
	return out, nil
}

// fakeMailer records sends and can be told to fail.
type fakeMailer struct {
	mu    sync.Mutex
	sends []sentMail
	fail  bool
}

type sentMail struct {
	recipients []string
	subject    string
	body       string
}

func (m *fakeMailer) Send(_ context.Context, recipients []string, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return fmt.Errorf("mail transport unavailable")
	}
	m.sends = append(m.sends, sentMail{
		recipients: append([]string(nil), recipients...),
		subject:    subject,
		body:       body,
	})
	return nil
}

func (m *fakeMailer) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sends)
}
