package service

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogUseCaseObserver(t *testing.T) {
	var buf bytes.Buffer
	obs := NewLogUseCaseObserver(&buf)

	track(context.Background(), obs, "add_task", map[string]any{"block": "1:2024-03-07"})(nil)
	out := buf.String()
	assert.Contains(t, out, "level=INFO")
	assert.Contains(t, out, "component=taskstore")
	assert.Contains(t, out, "use_case=add_task")
	assert.Contains(t, out, "success=true")
	assert.Contains(t, out, "block=1:2024-03-07")

	buf.Reset()
	track(context.Background(), obs, "delete_timeline", nil)(errors.New("boom"))
	out = buf.String()
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, "success=false")
	assert.Contains(t, out, "error=boom")
}

func TestLogUseCaseObserver_NilWriter(t *testing.T) {
	assert.IsType(t, NoopUseCaseObserver{}, NewLogUseCaseObserver(nil))
}

func TestUseCaseObserverOrNoop(t *testing.T) {
	rec := &recordingObserver{}
	assert.Same(t, rec, useCaseObserverOrNoop([]UseCaseObserver{nil, rec}))
	assert.IsType(t, NoopUseCaseObserver{}, useCaseObserverOrNoop(nil))
}
