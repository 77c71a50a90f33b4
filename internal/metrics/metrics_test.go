package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()

	m.Started("agents")
	m.Started("agents")
	m.Answered("agents", true)
	m.Answered("agents", false)
	m.Answered("agents", false)
	m.Invalid("runner")
	m.Completed("agents", "Developing", 66.7)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.SessionsStarted.WithLabelValues("agents")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Answers.WithLabelValues("agents", "correct")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Answers.WithLabelValues("agents", "incorrect")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.InvalidSelections.WithLabelValues("runner")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsCompleted.WithLabelValues("agents", "Developing")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.ScorePercent))
}

func TestHandlerExposesQuizMetrics(t *testing.T) {
	m := New()
	m.Started("tracing")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `quiz_sessions_started_total{bank="tracing"} 1`)
}
