package service

import (
	"time"

	"github.com/veonhoon/bible-reader-sub000/internal/domain"
	"github.com/veonhoon/bible-reader-sub000/internal/domain/contract"
	"github.com/veonhoon/bible-reader-sub000/internal/domain/entity"
	"github.com/veonhoon/bible-reader-sub000/internal/logger"
)

type Options struct {
	Entitlement        contract.Entitlement
	ScheduleCollection string
	ScheduleDocumentID string
	ContentCollection  string
	QuietHours         entity.QuietHours
	HorizonWeeks       int
	CronSpec           string
	Location           *time.Location
}

type Instance struct {
	Notification *notificationService
	Scheduler    *scheduler
}

func NewInstance(dm contract.DataManager, docs contract.DocumentReader, notifier contract.Notifier, opts Options) *Instance {
	log := logger.Component("notification")

	if opts.HorizonWeeks <= 0 {
		opts.HorizonWeeks = domain.PlanningHorizonWeeks
	}
	if opts.Entitlement == nil {
		opts.Entitlement = NewEntitlement(domain.EntitlementModeStore, dm.KeyValue())
	}

	location := opts.Location
	if location == nil {
		location = time.Local
	}

	notification := &notificationService{
		kv:           dm.KeyValue(),
		entitlement:  opts.Entitlement,
		notifier:     notifier,
		content:      newContentReader(docs, opts.ScheduleCollection, opts.ScheduleDocumentID, opts.ContentCollection, log),
		cursor:       newCursorStore(dm.KeyValue(), log),
		dispatcher:   newDispatcher(notifier, domain.NotificationScope, log),
		scope:        domain.NotificationScope,
		quiet:        opts.QuietHours,
		horizonWeeks: opts.HorizonWeeks,
		now:          func() time.Time { return time.Now().In(location) },
		log:          log,
	}

	return &Instance{
		Notification: notification,
		Scheduler:    newScheduler(notification, opts.CronSpec, location, logger.Component("scheduler")),
	}
}
