package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrDuplicateJob = errors.New("job with the given name already exists in queue")

type Job struct {
	BaseModel
	Fails        int        `json:"fails"`
	Name         string     `json:"name"`
	Handler      string     `json:"handler"`
	Args         string     `json:"args"`
	LastError    string     `json:"last_error"`
	Claimed      bool       `json:"claimed" gorm:"default:false"`
	ScheduledFor *time.Time `json:"scheduled_for"`
	JobStatusID  string     `json:"job_status_id"`
	JobStatus    *JobStatus `json:"status"`
}

// MarkAsClaimed atomically claims the job for a worker. Returns false when
// another worker got there first.
func (job *Job) MarkAsClaimed() (bool, error) {
	inProgressStatus, err := FindJobStatus(IN_PROGRESS_JOB)
	if err != nil {
		return false, err
	}

	res := db.Model(&Job{}).Where("id = ? AND claimed = ?", job.ID, false).Updates(map[string]interface{}{
		"claimed":       true,
		"job_status_id": inProgressStatus.ID,
	})

	if res.Error != nil {
		return false, res.Error
	}

	return res.RowsAffected > 0, nil
}

func (job *Job) Update(data map[string]interface{}) error {
	return db.Model(job).Updates(data).Error
}

// CreateJob enqueues a job right away. With 'unique' set, a job with the
// same name already waiting or running gives ErrDuplicateJob.
func CreateJob(name, handler, args string, unique bool) error {
	if unique {
		exists, err := queuedJobExists(name)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicateJob
		}
	}

	enqueuedStatus, err := FindJobStatus(ENQUEUED_JOB)
	if err != nil {
		return err
	}

	return db.Create(&Job{
		Name:        name,
		Handler:     handler,
		Args:        args,
		JobStatusID: enqueuedStatus.ID,
	}).Error
}

// CreateScheduledJob enqueues a job to be moved into the queue once
// 'scheduledFor' has elapsed.
func CreateScheduledJob(name, handler, args string, scheduledFor time.Time) error {
	scheduledStatus, err := FindJobStatus(SCHEDULED_JOB)
	if err != nil {
		return err
	}

	return db.Create(&Job{
		Name:         name,
		Handler:      handler,
		Args:         args,
		ScheduledFor: &scheduledFor,
		JobStatusID:  scheduledStatus.ID,
	}).Error
}

func LastJob(status string, claimed bool) (*Job, error) {
	job := Job{}
	err := db.Joins(
		"INNER JOIN job_statuses ON job_statuses.id = jobs.job_status_id AND job_statuses.name = ? AND claimed = ?",
		status, claimed).Last(&job).Error
	if err != nil {
		return nil, err
	}

	return &job, nil
}

// FirstScheduledJobToBeQueued returns the scheduled job closest to its
// queue time.
func FirstScheduledJobToBeQueued() (*Job, error) {
	job := Job{}
	err := db.Preload("JobStatus").Joins(
		"INNER JOIN job_statuses ON job_statuses.id = jobs.job_status_id AND job_statuses.name = ?",
		SCHEDULED_JOB).Order("scheduled_for asc").First(&job).Error
	if err != nil {
		return nil, err
	}

	return &job, nil
}

// DueScheduledJobs returns scheduled jobs whose queue time has elapsed.
func DueScheduledJobs(now time.Time) ([]Job, error) {
	jobs := []Job{}
	err := db.Joins(
		"INNER JOIN job_statuses ON job_statuses.id = jobs.job_status_id AND job_statuses.name = ?",
		SCHEDULED_JOB).Where("scheduled_for <= ?", now).Find(&jobs).Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return jobs, nil
}

func UpdateJob(id string, data map[string]interface{}) error {
	return db.Model(&Job{}).Where("id = ?", id).Updates(data).Error
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

func queuedJobExists(name string) (bool, error) {
	queuedStatuses := []JobStatus{}
	err := db.Where("name IN ?", []string{ENQUEUED_JOB, IN_PROGRESS_JOB, SCHEDULED_JOB}).
		Find(&queuedStatuses).Error
	if err != nil {
		return false, err
	}

	statusIDs := []string{}
	for _, status := range queuedStatuses {
		statusIDs = append(statusIDs, status.ID)
	}

	res := db.Where("name = ? AND job_status_id IN ?", name, statusIDs).First(&Job{})
	if res.Error != nil && !errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return false, res.Error
	}

	return res.RowsAffected > 0, nil
}
