package scheduler

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolfee_backend/internals/configs"
	"schoolfee_backend/internals/features/finance/payment_schedules/service"
)

type fakeGenerator struct {
	rep   *service.GenerateReport
	err   error
	calls int
}

func (f *fakeGenerator) GenerateAllMissing(context.Context) (*service.GenerateReport, error) {
	f.calls++
	return f.rep, f.err
}

func TestParseSpec(t *testing.T) {
	_, err := ParseSpec("15 2 * * *")
	assert.NoError(t, err)
	_, err = ParseSpec("@daily")
	assert.NoError(t, err)
	_, err = ParseSpec("")
	assert.Error(t, err)
	_, err = ParseSpec("not a cron")
	assert.Error(t, err)
}

func TestRunSweepLogsReport(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))
	gen := &fakeGenerator{rep: &service.GenerateReport{
		Generated: []service.GeneratedEntry{{EnrollmentID: uuid.New()}},
		Skipped:   2,
	}}

	RunSweep(context.Background(), gen, log)
	assert.Equal(t, 1, gen.calls)
	assert.Contains(t, buf.String(), `"generated":1`)
	assert.Contains(t, buf.String(), `"skipped":2`)

	buf.Reset()
	RunSweep(context.Background(), &fakeGenerator{err: errors.New("db down")}, log)
	assert.Contains(t, buf.String(), "schedule sweep failed")
}

func TestStartScheduleSweepDisabledAndInvalid(t *testing.T) {
	log := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	c, err := StartScheduleSweep(nil, configs.Settings{}, log)
	require.NoError(t, err)
	assert.Nil(t, c)

	_, err = StartScheduleSweep(nil, configs.Settings{ScheduleSweepCron: "every tuesday"}, log)
	assert.Error(t, err)
}
