package dispatcher

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ClaraBenejam/PAWSture/internal/chronic"
	"github.com/ClaraBenejam/PAWSture/internal/domain/model"
	"github.com/ClaraBenejam/PAWSture/internal/logger"
)

// Scheduler drives the posture and emotion ticks plus the daily chronic
// monitor on independent cron entries, mirroring the teacher's CronScheduler
// wrapper around robfig/cron. cron.SkipIfStillRunning enforces §4.H/§5's
// no-overlap rule per domain: an overrunning tick delays, never stacks, the
// next one.
type Scheduler struct {
	cron     *cron.Cron
	disp     *Dispatcher
	monitor  *chronic.Monitor
	notifier Sender
	log      *logger.Logger
}

// NewScheduler builds a Scheduler. Its tickEvery argument is not read: the
// posture/emotion interval is the one passed to Start. notifier
// broadcasts chronic-monitor findings to every current subscriber; the
// monitor's own per-(user,kind,date) dedup makes a cooldown check here
// unnecessary.
func NewScheduler(disp *Dispatcher, monitor *chronic.Monitor, notifier Sender, tickEvery time.Duration, log *logger.Logger) *Scheduler {
	c := cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	return &Scheduler{cron: c, disp: disp, monitor: monitor, notifier: notifier, log: log}
}

// Start registers the posture, emotion and chronic-monitor jobs and starts
// the underlying cron runner. It does not block. tickEvery is the
// posture/emotion interval (default 10s per §4.H); the emotion tick is
// staggered by half the interval so the two domains' I/O bursts do not
// coincide.
func (s *Scheduler) Start(tickEvery time.Duration) {
	postureSchedule := cron.ConstantDelaySchedule{Delay: tickEvery}
	s.cron.Schedule(postureSchedule, cron.FuncJob(func() {
		if err := s.disp.TickPosture(context.Background()); err != nil {
			s.log.Warn("posture tick returned an error", "error", err)
		}
	}))

	stagger := tickEvery / 2
	s.cron.Schedule(postureSchedule, cron.FuncJob(func() {
		time.Sleep(stagger)
		if err := s.disp.TickEmotion(context.Background()); err != nil {
			s.log.Warn("emotion tick returned an error", "error", err)
		}
	}))

	if s.monitor != nil {
		// Runs once daily at 06:00 local time; Check() is itself idempotent per date,
		// so a missed or delayed run is harmless.
		dailySchedule, err := cron.ParseStandard("0 6 * * *")
		if err != nil {
			s.log.Error("failed to parse chronic monitor schedule", "error", err)
		} else {
			s.cron.Schedule(dailySchedule, cron.FuncJob(func() {
				alerts, err := s.monitor.Check(context.Background(), time.Now())
				if err != nil {
					s.log.Warn("chronic monitor check failed", "error", err)
					return
				}
				s.broadcastChronic(context.Background(), alerts)
			}))
		}
	}

	s.cron.Start()
}

// broadcastChronic fans a day's chronic findings out to every subscriber as
// a plain informational message, logging any send failure without retrying.
func (s *Scheduler) broadcastChronic(ctx context.Context, alerts []chronic.Alert) {
	if len(alerts) == 0 || s.notifier == nil {
		return
	}
	subscribers, err := s.notifier.Subscribers(ctx)
	if err != nil {
		s.log.Warn("chronic monitor: could not list subscribers", "error", err)
		return
	}
	for _, a := range alerts {
		s.log.Info("chronic alert", "user", a.UserID, "kind", a.Kind, "message", a.Message)
		msg := OutboundMessage{
			TriggeredUserID: a.UserID,
			Urgency:         model.UrgencyHigh,
			Bullets:         []string{a.Message},
		}
		for _, sub := range subscribers {
			if err := s.notifier.Send(ctx, sub, msg); err != nil {
				s.log.Warn("chronic monitor: send failed", "subscriber", sub, "error", err)
			}
		}
	}
}

// Stop gracefully stops the scheduler, waiting for any in-flight job.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
