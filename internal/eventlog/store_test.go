package eventlog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestStore(t *testing.T, now time.Time) *Store {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Shanghai")
	require.NoError(t, err)
	return NewStore(t.TempDir(), loc, WithClock(fixedClock(now)))
}

func TestAppendBehavior_WritesToLocalDateFile(t *testing.T) {
	// 2024-01-01 17:30 UTC = 2024-01-02 01:30 в Шанхае
	now := time.Date(2024, 1, 1, 17, 30, 0, 0, time.UTC)
	s := newTestStore(t, now)

	s.AppendBehavior(BehaviorEvent{Type: PageView, SessionID: "a", RequestInfo: RequestInfo{Referer: "/home"}})

	_, err := os.Stat(filepath.Join(s.Dir(), "behavior-2024-01-02.log"))
	require.NoError(t, err)

	events, err := s.ReadBehavior("2024-01-02")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, PageView, events[0].Type)
	assert.Equal(t, "a", events[0].SessionID)
	assert.Equal(t, "/home", events[0].Referer)
	assert.True(t, events[0].Timestamp.Equal(now))
}

func TestRead_MissingFileIsEmpty(t *testing.T) {
	s := newTestStore(t, time.Now())

	events, err := s.ReadBehavior("2020-05-05")
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestRead_InvalidDate(t *testing.T) {
	s := newTestStore(t, time.Now())

	_, err := s.Read(KindBehavior, "../secrets")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestRead_SkipsTruncatedTrailingLine(t *testing.T) {
	s := newTestStore(t, time.Now())
	require.NoError(t, os.MkdirAll(s.Dir(), 0o755))

	content := `{"type":"page_view","sessionId":"a","referer":"/home","timestamp":"2024-01-01T10:00:00Z"}` + "\n" +
		`{"type":"article_view","sessionId":"b","targetId":"art1","targetTitle":"Hello","timestamp":"2024-01-01T10:01:00Z"}` + "\n" +
		`{"type":"page_view","sessionId":"c","ref`
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "behavior-2024-01-01.log"), []byte(content), 0o644))

	events, err := s.ReadBehavior("2024-01-01")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "a", events[0].SessionID)
	assert.Equal(t, "art1", events[1].TargetID)
}

func TestRead_SkipsMalformedMiddleLine(t *testing.T) {
	s := newTestStore(t, time.Now())
	require.NoError(t, os.MkdirAll(s.Dir(), 0o755))

	content := "{\"type\":\"page_view\",\"sessionId\":\"a\"}\nnot json\n\n{\"type\":\"like_action\",\"sessionId\":\"b\"}\n"
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "behavior-2024-01-01.log"), []byte(content), 0o644))

	raw, err := s.Read(KindBehavior, "2024-01-01")
	require.NoError(t, err)
	assert.Len(t, raw, 2)
}

func TestAppendError_DefaultsLevel(t *testing.T) {
	now := time.Date(2024, 3, 10, 4, 0, 0, 0, time.UTC)
	s := newTestStore(t, now)

	s.AppendError(ErrorEvent{Message: "boom", Extra: map[string]any{"taskName": "daily-analytics"}})

	events, err := s.ReadErrors("2024-03-10")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, LevelError, events[0].Level)
	assert.Equal(t, "boom", events[0].Message)
	assert.Equal(t, "daily-analytics", events[0].Extra["taskName"])
}

func TestListDates_SortedAndFilteredByKind(t *testing.T) {
	s := newTestStore(t, time.Now())
	require.NoError(t, os.MkdirAll(s.Dir(), 0o755))

	for _, name := range []string{
		"behavior-2024-01-03.log",
		"behavior-2024-01-01.log",
		"error-2024-01-02.log",
		"behavior-2024-1-4.log",
		"app.log",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), name), nil, 0o644))
	}

	dates, err := s.ListDates(KindBehavior)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-01", "2024-01-03"}, dates)

	dates, err = s.ListDates(KindError)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-02"}, dates)
}

func TestListDates_MissingDir(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "nope"), time.UTC)

	dates, err := s.ListDates(KindBehavior)
	require.NoError(t, err)
	assert.Empty(t, dates)
}

func TestCleanup_DeletesStrictlyOlderThanCutoff(t *testing.T) {
	// today = 2024-02-10, R = 30 -> cutoff 2024-01-11
	now := time.Date(2024, 2, 10, 12, 0, 0, 0, time.UTC)
	s := newTestStore(t, now)
	require.NoError(t, os.MkdirAll(s.Dir(), 0o755))

	files := []string{
		"behavior-2024-01-09.log",
		"behavior-2024-01-10.log",
		"behavior-2024-01-11.log",
		"behavior-2024-02-10.log",
		"error-2024-01-10.log",
	}
	for _, name := range files {
		require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), name), []byte("{}\n"), 0o644))
	}

	removed, err := s.Cleanup(KindBehavior, 30)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	dates, err := s.ListDates(KindBehavior)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-11", "2024-02-10"}, dates)

	// error-журнал не тронут
	_, err = os.Stat(filepath.Join(s.Dir(), "error-2024-01-10.log"))
	assert.NoError(t, err)

	removed, err = s.CleanupAll(30)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
}
