package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"vehicle-tracking-backend/internal/cache"
	"vehicle-tracking-backend/internal/datausage/domain"
)

type mockRepo struct {
	samples   []*domain.Usage
	nextID    int64
	createErr error
}

func (m *mockRepo) CreateUsage(ctx context.Context, u *domain.Usage) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.nextID++
	u.ID = m.nextID
	m.samples = append(m.samples, u)
	return nil
}

func (m *mockRepo) ListSince(ctx context.Context, cutoff time.Time) ([]*domain.Usage, error) {
	var out []*domain.Usage
	for _, u := range m.samples {
		if !u.Timestamp.Before(cutoff) {
			out = append(out, u)
		}
	}
	return out, nil
}

func newServiceAt(repo *mockRepo, now time.Time) *Service {
	s := New(repo, cache.NewMemoryStore(), time.UTC, 30*time.Second, 5*time.Second)
	s.nowF = func() time.Time { return now }
	return s
}

func TestUsage_WindowCorrectness(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := &mockRepo{}
	ctx := context.Background()
	svc := newServiceAt(repo, now)

	for _, sample := range []struct {
		age  time.Duration
		sent int64
		recv int64
	}{
		{40 * 24 * time.Hour, 1000, 2000},
		{10 * 24 * time.Hour, 100, 200},
		{2 * 24 * time.Hour, 10, 20},
		{2 * time.Hour, 1, 2},
	} {
		ts := now.Add(-sample.age)
		if _, err := svc.Record(ctx, sample.sent, sample.recv, &ts); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	report, err := svc.Usage(ctx)
	if err != nil {
		t.Fatalf("Usage: %v", err)
	}

	if report.Day.BytesSent != 1 || report.Day.BytesReceived != 2 {
		t.Errorf("1d = %d/%d, want 1/2 (only the 2h-old row)", report.Day.BytesSent, report.Day.BytesReceived)
	}
	if len(report.Day.Points) != 1 {
		t.Errorf("1d points = %d, want 1", len(report.Day.Points))
	}
	if report.Week.BytesSent != 11 || report.Week.BytesReceived != 22 {
		t.Errorf("1w = %d/%d, want 11/22 (2h and 2d rows)", report.Week.BytesSent, report.Week.BytesReceived)
	}
	if report.Month.BytesSent != 111 || report.Month.BytesReceived != 222 {
		t.Errorf("1m = %d/%d, want 111/222 (all but the 40d row)", report.Month.BytesSent, report.Month.BytesReceived)
	}
	if len(report.Month.Points) != 3 {
		t.Errorf("1m points = %d, want 3", len(report.Month.Points))
	}
}

func TestUsage_EmptyStore(t *testing.T) {
	svc := newServiceAt(&mockRepo{}, time.Now().UTC())

	report, err := svc.Usage(context.Background())
	if err != nil {
		t.Fatalf("Usage: %v", err)
	}
	if report.Day.BytesSent != 0 || len(report.Day.Points) != 0 {
		t.Errorf("empty store should yield zero sums and no points, got %+v", report.Day)
	}
}

func TestRecord_DefaultsToNow(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := &mockRepo{}
	svc := newServiceAt(repo, now)

	id, err := svc.Record(context.Background(), 5, 7, nil)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if id != 1 {
		t.Errorf("id = %d, want 1", id)
	}
	if !repo.samples[0].Timestamp.Equal(now) {
		t.Errorf("timestamp = %v, want now (%v)", repo.samples[0].Timestamp, now)
	}
}

func TestRecord_InvalidatesUsageCache(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := &mockRepo{}
	svc := newServiceAt(repo, now)
	ctx := context.Background()

	report, err := svc.Usage(ctx)
	if err != nil {
		t.Fatalf("Usage: %v", err)
	}
	if report.Day.BytesSent != 0 {
		t.Fatalf("1d sent = %d, want 0", report.Day.BytesSent)
	}

	if _, err := svc.Record(ctx, 42, 0, nil); err != nil {
		t.Fatalf("Record: %v", err)
	}

	report, err = svc.Usage(ctx)
	if err != nil {
		t.Fatalf("Usage: %v", err)
	}
	if report.Day.BytesSent != 42 {
		t.Errorf("1d sent after write = %d, want 42 (cache invalidated)", report.Day.BytesSent)
	}
}

func TestRecord_StorageError(t *testing.T) {
	repo := &mockRepo{createErr: errors.New("connection refused")}
	svc := newServiceAt(repo, time.Now().UTC())

	if _, err := svc.Record(context.Background(), 1, 1, nil); err == nil {
		t.Fatal("Record should surface storage errors")
	}
}

func TestRecord_DefaultTimestampIsCallTime(t *testing.T) {
	repo := &mockRepo{}
	svc := New(repo, cache.NewMemoryStore(), time.UTC, 30*time.Second, 5*time.Second)

	time.Sleep(200 * time.Millisecond)

	before := time.Now().UTC()
	if _, err := svc.Record(context.Background(), 10, 20, nil); err != nil {
		t.Fatalf("Record: %v", err)
	}
	after := time.Now().UTC()

	got := repo.samples[0].Timestamp
	if got.Before(before) || got.After(after) {
		t.Errorf("timestamp = %v, want between %v and %v (an omitted timestamp means the time of the call, not service start)", got, before, after)
	}
}
