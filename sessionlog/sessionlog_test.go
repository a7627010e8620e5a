package sessionlog

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openLog(t *testing.T) *Log {
	t.Helper()
	l, err := Open(filepath.Join(t.TempDir(), "session.jsonl"))
	require.NoError(t, err)
	return l
}

func TestAppendAssignsIDAndTimestamp(t *testing.T) {
	l := openLog(t)
	rec, err := l.Append(Record{Input: "mk:todo-app", Status: StatusDelegated})
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.False(t, rec.Timestamp.IsZero())

	got, ok := l.Get(rec.ID)
	require.True(t, ok)
	assert.Equal(t, "mk:todo-app", got.Input)
}

func TestReopenReadsAppendedRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.jsonl")
	l, err := Open(path)
	require.NoError(t, err)
	first, err := l.Append(Record{Input: "mk:api", Status: StatusExecuted, Outputs: []string{"api/server.ts"}})
	require.NoError(t, err)
	_, err = l.Append(Record{Input: "tst:api", Status: StatusExecuted})
	require.NoError(t, err)

	reopened, err := Open(path)
	require.NoError(t, err)
	last := reopened.Last(2)
	require.Len(t, last, 2)
	assert.Equal(t, "tst:api", last[0].Input, "newest first")
	assert.Equal(t, first.ID, last[1].ID)
}

func TestPreviousResolvesOutputs(t *testing.T) {
	l := openLog(t)
	_, err := l.Append(Record{Input: "mk:api", Status: StatusExecuted, Outputs: []string{"api/server.ts"}})
	require.NoError(t, err)
	_, err = l.Append(Record{Input: "dx:@data.csv", Status: StatusExecuted, Outputs: []string{"reports/profile.md"}})
	require.NoError(t, err)

	outs, ok := l.Previous(1)
	require.True(t, ok)
	assert.Equal(t, []string{"reports/profile.md"}, outs)

	outs, ok = l.Previous(2)
	require.True(t, ok)
	assert.Equal(t, []string{"api/server.ts"}, outs)

	_, ok = l.Previous(3)
	assert.False(t, ok)
}

func TestBookmarkRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.jsonl")
	l, err := Open(path)
	require.NoError(t, err)
	rec, err := l.Append(Record{Input: "mk:signup", Status: StatusExecuted, Outputs: []string{"auth/signup.ts"}})
	require.NoError(t, err)

	require.NoError(t, l.SetBookmark("signup", rec.ID))
	outs, ok := l.Bookmark("signup")
	require.True(t, ok)
	assert.Equal(t, []string{"auth/signup.ts"}, outs)

	// Bookmarks survive a reopen.
	reopened, err := Open(path)
	require.NoError(t, err)
	outs, ok = reopened.Bookmark("signup")
	require.True(t, ok)
	assert.Equal(t, []string{"auth/signup.ts"}, outs)

	_, ok = l.Bookmark("absent")
	assert.False(t, ok)
	assert.Error(t, l.SetBookmark("bad", "no-such-id"))
}

func TestPreviousRequiresOutputs(t *testing.T) {
	l := openLog(t)
	_, err := l.Append(Record{Input: "?plan refactor", Status: StatusDelegated})
	require.NoError(t, err)
	_, ok := l.Previous(1)
	assert.False(t, ok, "records without outputs do not resolve")
}
