package queue

import (
	"github.com/go-keel/keel/pkg/log"
	"github.com/hibiken/asynq"
)

/**
 * @author: keel.authors@gmail.com
 * @time: 2025/3/11 10:02
 * @file: scheduler.go
 * @description: periodic sweep schedule
 */

// sweeps run daily, outside the request path
const defaultSweepSpec = "@daily"

type Scheduler struct {
	scheduler *asynq.Scheduler
}

func NewScheduler(redisOpt asynq.RedisConnOpt, sweepSpec string) (*Scheduler, error) {
	if sweepSpec == "" {
		sweepSpec = defaultSweepSpec
	}

	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{
		Logger: loggerAdapter{},
	})

	for _, taskType := range []string{TaskSweepMemberships, TaskSweepInvitations} {
		entryId, err := scheduler.Register(sweepSpec, asynq.NewTask(taskType, nil))
		if err != nil {
			return nil, err
		}
		log.Infow("registered sweep entry", "task", taskType, "spec", sweepSpec, "entryId", entryId)
	}

	return &Scheduler{scheduler: scheduler}, nil
}

// Start runs the scheduler in the background.
func (s *Scheduler) Start() error {
	return s.scheduler.Start()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
