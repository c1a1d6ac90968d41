package transcribe

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExplicitProgressIsLastWriteWins(t *testing.T) {
	s := newProgressScraper()

	u, ok := s.feed("progress = 42%")
	require.True(t, ok)
	require.NotNil(t, u.Progress)
	require.Equal(t, 42, *u.Progress)

	u, ok = s.feed("progress = 10%")
	require.True(t, ok)
	require.NotNil(t, u.Progress)
	require.Equal(t, 10, *u.Progress)
	require.Equal(t, "transcribing... 10%", u.Message)
}

func TestOpportunisticProgressIsRunningMax(t *testing.T) {
	s := newProgressScraper()

	u, ok := s.feed("hello 30%")
	require.True(t, ok)
	require.Equal(t, 30, *u.Progress)

	u, ok = s.feed("hello 10%")
	require.True(t, ok)
	require.Equal(t, 30, *u.Progress)

	u, ok = s.feed("hello 55%")
	require.True(t, ok)
	require.Equal(t, 55, *u.Progress)
}

func TestExplicitProgressOverridesOpportunisticValue(t *testing.T) {
	s := newProgressScraper()

	_, _ = s.feed("working 90%")
	u, ok := s.feed("progress = 20%")
	require.True(t, ok)
	require.Equal(t, 20, *u.Progress)
}

func TestOpportunisticIgnoresOutOfRangeValues(t *testing.T) {
	s := newProgressScraper()

	u, ok := s.feed("weird 250% spike")
	require.True(t, ok)
	require.Nil(t, u.Progress)
	require.Empty(t, u.Message)
	require.Equal(t, []string{"weird 250% spike"}, u.LogTail)
}

func TestBlankLinesAreSkipped(t *testing.T) {
	s := newProgressScraper()

	_, ok := s.feed("   \t  ")
	require.False(t, ok)

	u, ok := s.feed("first real line")
	require.True(t, ok)
	require.Equal(t, []string{"first real line"}, u.LogTail)
}

func TestLogTailNeverExceedsEightyLines(t *testing.T) {
	s := newProgressScraper()

	var last ProgressUpdate
	for i := 0; i < 200; i++ {
		u, ok := s.feed(fmt.Sprintf("line %d", i))
		require.True(t, ok)
		last = u
	}

	require.Len(t, last.LogTail, 80)
	require.Equal(t, "line 120", last.LogTail[0])
	require.Equal(t, "line 199", last.LogTail[79])
}

func TestLogTailCopyIsIsolatedFromScraper(t *testing.T) {
	s := newProgressScraper()

	u1, _ := s.feed("one")
	_, _ = s.feed("two")
	require.Equal(t, []string{"one"}, u1.LogTail)
}
