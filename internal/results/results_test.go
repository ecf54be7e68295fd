package results

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rankedlist/internal/config"
	"rankedlist/internal/model"
)

func sampleResponse(id string, labels ...string) model.TrialResponse {
	sliders := make([]int, len(labels))
	scales := make([]int, len(labels))
	for i := range labels {
		sliders[i] = i + 1
		scales[i] = model.ScaleUnset
	}
	return model.TrialResponse{
		TrialID:      id,
		RT:           1234,
		Started:      time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		Ended:        time.Date(2024, 3, 1, 10, 0, 1, 234e6, time.UTC),
		Response:     labels,
		SliderValues: sliders,
		ScaleValues:  scales,
	}
}

func openAll(t *testing.T) map[string]Sink {
	t.Helper()
	dir := t.TempDir()
	ctx := context.Background()
	sq, err := Open(ctx, config.ResultsConfig{Backend: config.BackendSQLite, Path: filepath.Join(dir, "db", "r.db")})
	require.NoError(t, err)
	jl, err := Open(ctx, config.ResultsConfig{Backend: config.BackendJSONL, Path: filepath.Join(dir, "r.jsonl")})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sq.Close()
		_ = jl.Close()
	})
	return map[string]Sink{"sqlite": sq, "jsonl": jl}
}

func TestSink_RecordAndListNewestFirst(t *testing.T) {
	for name, sink := range openAll(t) {
		sink := sink
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, sink.Record(ctx, sampleResponse("t1", "APPLE", "PEAR")))
			require.NoError(t, sink.Record(ctx, sampleResponse("t2", "FIG")))
			require.NoError(t, sink.Record(ctx, sampleResponse("t3")))

			all, err := sink.List(ctx, 0)
			require.NoError(t, err)
			require.Len(t, all, 3)
			assert.Equal(t, "t3", all[0].Response.TrialID)
			assert.Equal(t, "t1", all[2].Response.TrialID)
			assert.Equal(t, []string{"APPLE", "PEAR"}, all[2].Response.Response)
			assert.Equal(t, []int{1, 2}, all[2].Response.SliderValues)
			assert.True(t, all[0].Seq > all[1].Seq)
			assert.False(t, all[0].RecordedAt.IsZero())

			two, err := sink.List(ctx, 2)
			require.NoError(t, err)
			require.Len(t, two, 2)
			assert.Equal(t, "t2", two[1].Response.TrialID)
		})
	}
}

func TestSink_ClosedRejectsWrites(t *testing.T) {
	for name, sink := range openAll(t) {
		sink := sink
		t.Run(name, func(t *testing.T) {
			require.NoError(t, sink.Close())
			err := sink.Record(context.Background(), sampleResponse("late"))
			assert.ErrorIs(t, err, ErrClosed)
		})
	}
}

func TestJSONL_ResumesSequence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "r.jsonl")
	ctx := context.Background()
	j, err := OpenJSONL(path)
	require.NoError(t, err)
	require.NoError(t, j.Record(ctx, sampleResponse("a", "ONE")))
	require.NoError(t, j.Close())

	j, err = OpenJSONL(path)
	require.NoError(t, err)
	require.NoError(t, j.Record(ctx, sampleResponse("b", "TWO")))
	recs, err := j.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, int64(2), recs[0].Seq)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"trial_id":"a"`)
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), config.ResultsConfig{Backend: "postgres"})
	require.Error(t, err)

	s, err := Open(context.Background(), config.ResultsConfig{Backend: config.BackendNone})
	require.NoError(t, err)
	require.NoError(t, s.Record(context.Background(), sampleResponse("x")))
	recs, err := s.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, recs)
}
