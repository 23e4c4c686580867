package work

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/ares-safety/ares/server/models"
	"github.com/stretchr/testify/assert"
)

type syncBuffer struct {
	mu   sync.Mutex
	buff bytes.Buffer
}

func (b *syncBuffer) WriteString(s string) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buff.WriteString(s)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buff.String()
}

func TestPerform(t *testing.T) {
	models.InitializeTestDb()

	workerPool := NewWorkerAdapter("UTC")
	outputBuffer := &syncBuffer{}

	writeToBuffer := func(m map[string]interface{}) error {
		_, err := outputBuffer.WriteString("Hello")
		return err
	}
	assert.Nil(t, workerPool.Register("write_to_buffer", writeToBuffer))

	err := workerPool.Perform(JobParams{
		Name:    "write_to_buffer",
		Handler: "write_to_buffer",
		Args:    map[string]interface{}{},
	})
	assert.Nil(t, err)

	workerPool.Start()

	// Wait for job to be processed
	time.Sleep(2 * time.Second)

	workerPool.Stop()

	assert.Equal(t, "Hello", outputBuffer.String(), "Expected job to write to outputBuffer")
}

func TestPerformIn(t *testing.T) {
	models.InitializeTestDb()

	workerPool := NewWorkerAdapter("UTC")
	outputBuffer := &syncBuffer{}

	writeToBuffer := func(m map[string]interface{}) error {
		_, err := outputBuffer.WriteString("Hello")
		return err
	}
	assert.Nil(t, workerPool.Register("write_to_buffer", writeToBuffer))

	err := workerPool.PerformIn(2, JobParams{
		Name:    "write_to_buffer",
		Handler: "write_to_buffer",
		Args:    map[string]interface{}{},
	})
	assert.Nil(t, err)
	assert.Empty(t, outputBuffer.String(), "Expected outputBuffer to be empty")

	// Wait until time to perform job has elapsed
	time.Sleep(3 * time.Second)

	workerPool.Start()

	// Wait for job to be processed
	time.Sleep(2 * time.Second)

	workerPool.Stop()

	assert.Equal(t, "Hello", outputBuffer.String(), "Expected job to write to outputBuffer")
}

func TestPerformWithUniqueJobIsIdempotent(t *testing.T) {
	models.InitializeTestDb()

	workerPool := NewWorkerAdapter("UTC")
	assert.Nil(t, workerPool.Register("no_op", func(map[string]interface{}) error { return nil }))

	job := JobParams{Name: "no_op", Handler: "no_op", Unique: true, Args: map[string]interface{}{}}
	assert.Nil(t, workerPool.Perform(job))

	// A duplicate of a unique job is dropped without error
	assert.Nil(t, workerPool.Perform(job))

	lastJob, err := models.LastJob(models.ENQUEUED_JOB, false)
	assert.Nil(t, err)
	assert.Equal(t, "no_op", lastJob.Name)
}

func TestRegisterRejectsDuplicateHandlerName(t *testing.T) {
	workerPool := NewWorkerAdapter("UTC")
	handler := func(map[string]interface{}) error { return nil }

	assert.Nil(t, workerPool.Register("no_op", handler))
	assert.ErrorIs(t, workerPool.Register("no_op", handler), ErrDuplicateHandler)
}
