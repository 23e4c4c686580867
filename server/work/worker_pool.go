package work

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/ares-safety/ares/server/logger"
	"github.com/ares-safety/ares/server/models"
)

var (
	ErrDuplicateHandler = errors.New("handler with provided name already mapped")

	requeuerInterval = 500 * time.Millisecond

	logg = logger.NewLogger()
)

type JobParams struct {
	Name    string
	Handler string
	Unique  bool
	Args    map[string]interface{}
}

type Handler func(map[string]interface{}) error

// workerPool owns the workers pulling from the persisted job queue, plus a
// requeuer loop that moves due scheduled jobs into the queue.
type workerPool struct {
	workers      []*worker
	requeuerStop chan struct{}
	started      bool
}

func newWorkerPool(concurrency int) *workerPool {
	pool := &workerPool{requeuerStop: make(chan struct{})}

	for i := 0; i < concurrency; i++ {
		pool.workers = append(pool.workers, newWorker())
	}

	return pool
}

func (pool *workerPool) registerHandler(name string, handler Handler) error {
	for _, poolWorker := range pool.workers {
		if err := poolWorker.registerHandler(name, handler); err != nil {
			return err
		}
	}

	return nil
}

func (pool *workerPool) enqueue(job JobParams) error {
	args, err := json.Marshal(job.Args)
	if err != nil {
		return err
	}

	return models.CreateJob(job.Name, job.Handler, string(args), job.Unique)
}

func (pool *workerPool) enqueueIn(secondsInFuture int64, job JobParams) error {
	args, err := json.Marshal(job.Args)
	if err != nil {
		return err
	}

	scheduledFor := time.Now().Add(time.Duration(secondsInFuture) * time.Second)
	return models.CreateScheduledJob(job.Name, job.Handler, string(args), scheduledFor)
}

func (pool *workerPool) start() {
	if pool.started {
		return
	}
	pool.started = true

	for _, poolWorker := range pool.workers {
		poolWorker.start()
	}

	go pool.requeuerLoop()
}

func (pool *workerPool) stop() {
	if !pool.started {
		return
	}
	pool.started = false

	for _, poolWorker := range pool.workers {
		poolWorker.stop()
	}

	pool.requeuerStop <- struct{}{}
}

// requeuerLoop moves scheduled jobs whose time has elapsed into the
// enqueued state, where workers pick them up.
func (pool *workerPool) requeuerLoop() {
	ticker := time.NewTicker(requeuerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-pool.requeuerStop:
			return
		case <-ticker.C:
			dueJobs, err := models.DueScheduledJobs(time.Now())
			if err != nil {
				logg.Error(err)
				continue
			}

			if len(dueJobs) == 0 {
				continue
			}

			enqueuedStatus, err := models.FindJobStatus(models.ENQUEUED_JOB)
			if err != nil {
				logg.Error(err)
				continue
			}

			for _, dueJob := range dueJobs {
				err = models.UpdateJob(dueJob.ID, map[string]interface{}{"job_status_id": enqueuedStatus.ID})
				if err != nil {
					logg.Error(err)
				}
			}
		}
	}
}
