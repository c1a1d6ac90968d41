package jobs

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func intp(v int) *int { return &v }

func strp(v string) *string { return &v }

func timep(v time.Time) *time.Time { return &v }

func TestUpsertCreatesAndMergesFields(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, "j1", Update{
		Status:           StatusQueued,
		Message:          "queued",
		OriginalFilename: "lecture.mp3",
		CreatedAt:        time.Now(),
	}))
	require.NoError(t, s.Upsert(ctx, "j1", Update{
		Status:   StatusRunning,
		Message:  "transcoding (ffmpeg)...",
		Progress: intp(0),
	}))

	job, ok, err := s.Get(ctx, "j1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, StatusRunning, job.Status)
	require.Equal(t, "transcoding (ffmpeg)...", job.Message)
	require.Equal(t, "lecture.mp3", job.OriginalFilename, "earlier fields survive later partial updates")
	require.Equal(t, 0, *job.Progress)
}

func TestGetUnknownJob(t *testing.T) {
	s := NewMemoryStore()

	_, ok, err := s.Get(context.Background(), "nope")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestTerminalStatusIsSticky(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, "j1", Update{Status: StatusRunning}))
	require.NoError(t, s.Upsert(ctx, "j1", Update{Status: StatusDone, Text: strp("final text")}))

	// A late progress update from a straggling callback must not revive the job.
	require.NoError(t, s.Upsert(ctx, "j1", Update{Status: StatusRunning, Progress: intp(99)}))

	job, _, err := s.Get(ctx, "j1")
	require.NoError(t, err)
	require.Equal(t, StatusDone, job.Status)
	require.Equal(t, "final text", job.Text)
	require.Equal(t, 99, *job.Progress, "non-status fields still merge")
}

func TestRunningCannotGoBackToQueued(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, "j1", Update{Status: StatusRunning}))
	require.NoError(t, s.Upsert(ctx, "j1", Update{Status: StatusQueued}))

	job, _, err := s.Get(ctx, "j1")
	require.NoError(t, err)
	require.Equal(t, StatusRunning, job.Status)
}

func TestLogTailIsCapped(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	tail := make([]string, 0, 3*MaxLogTail)
	for i := 0; i < 3*MaxLogTail; i++ {
		tail = append(tail, fmt.Sprintf("line %d", i))
	}
	require.NoError(t, s.Upsert(ctx, "j1", Update{LogTail: tail}))

	job, _, err := s.Get(ctx, "j1")
	require.NoError(t, err)
	require.Len(t, job.LogTail, MaxLogTail)
	require.Equal(t, fmt.Sprintf("line %d", 2*MaxLogTail), job.LogTail[0])
	require.Equal(t, fmt.Sprintf("line %d", 3*MaxLogTail-1), job.LogTail[MaxLogTail-1])
}

func TestSnapshotIsIsolatedFromLaterUpdates(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	started := time.Now()
	require.NoError(t, s.Upsert(ctx, "j1", Update{
		Status:    StatusRunning,
		Progress:  intp(10),
		LogTail:   []string{"a"},
		StartedAt: timep(started),
	}))

	snap, _, err := s.Get(ctx, "j1")
	require.NoError(t, err)

	require.NoError(t, s.Upsert(ctx, "j1", Update{Progress: intp(90), LogTail: []string{"b", "c"}}))

	require.Equal(t, 10, *snap.Progress)
	require.Equal(t, []string{"a"}, snap.LogTail)
}

func TestConcurrentUpserts(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = s.Upsert(ctx, "j1", Update{Progress: intp(n), LogTail: []string{fmt.Sprintf("line %d", n)}})
		}(i)
	}
	wg.Wait()

	job, ok, err := s.Get(ctx, "j1")
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, job.Progress)
	require.Len(t, job.LogTail, 1)
}
