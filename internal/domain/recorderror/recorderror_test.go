package recorderror_test

import (
	"testing"
	"time"

	"github.com/oronts/datahub/internal/domain/record"
	"github.com/oronts/datahub/internal/domain/recorderror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	assert.True(t, recorderror.Classify("Connection reset by peer"))
	assert.True(t, recorderror.Classify("request TIMEOUT exceeded"))
	assert.True(t, recorderror.Classify("service temporarily unavailable"))
	assert.False(t, recorderror.Classify("duplicate slug"))
}

func TestNewDerivesRecoverable(t *testing.T) {
	err := recorderror.New("e1", "r1", "load", "connection refused", "EXEC_ERROR", record.Record{}, time.Now())
	assert.True(t, err.Recoverable)
}

func TestRetryAppendsAuditAndClearsDeadLetter(t *testing.T) {
	payload := record.Record{"slug": record.String("bad-slug")}
	err := recorderror.New("e1", "r1", "load", "duplicate", "DUPLICATE", payload, time.Now())
	err.MarkDeadLetter(true)

	patch := record.Record{"slug": record.String("fixed")}
	audit := err.Retry("a1", "user-1", patch, time.Now())

	require.Len(t, err.Audits, 1)
	assert.False(t, err.DeadLetter)

	slug, _ := err.Payload.Get("slug")
	s, _ := slug.AsString()
	assert.Equal(t, "fixed", s)

	resultingSlug, _ := audit.ResultingPayload.Get("slug")
	rs, _ := resultingSlug.AsString()
	assert.Equal(t, "fixed", rs)
}

func TestUnmarkResolvesAndClearsDeadLetter(t *testing.T) {
	err := recorderror.New("e1", "r1", "load", "duplicate", "DUPLICATE", record.Record{}, time.Now())
	err.MarkDeadLetter(true)

	err.Unmark()

	assert.True(t, err.Resolved)
	assert.False(t, err.DeadLetter)
}
