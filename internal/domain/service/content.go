package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/veonhoon/bible-reader-sub000/internal/domain"
	"github.com/veonhoon/bible-reader-sub000/internal/domain/contract"
	"github.com/veonhoon/bible-reader-sub000/internal/domain/entity"
)

// contentReader adapts documents of the managed store into domain types
type contentReader struct {
	docs               contract.DocumentReader
	scheduleCollection string
	scheduleID         string
	contentCollection  string
	log                *logrus.Entry
}

func newContentReader(docs contract.DocumentReader, scheduleCollection, scheduleID, contentCollection string, log *logrus.Entry) *contentReader {
	return &contentReader{
		docs:               docs,
		scheduleCollection: scheduleCollection,
		scheduleID:         scheduleID,
		contentCollection:  contentCollection,
		log:                log,
	}
}

func (r *contentReader) FetchSchedule(ctx context.Context) (*entity.DeliverySchedule, error) {
	doc, err := r.docs.Get(ctx, r.scheduleCollection, r.scheduleID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schedule: %w", err)
	}
	if doc == nil {
		return nil, nil
	}

	var raw entity.ScheduleDocument
	if err := doc.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode schedule %s/%s: %w", doc.Collection, doc.ID, err)
	}

	return r.toSchedule(raw), nil
}

func (r *contentReader) toSchedule(raw entity.ScheduleDocument) *entity.DeliverySchedule {
	schedule := &entity.DeliverySchedule{PerDay: raw.PerDay}
	if schedule.PerDay < 0 {
		schedule.PerDay = 0
	}

	seen := make(map[time.Weekday]bool)
	for _, name := range raw.Days {
		day, ok := domain.ParseWeekday(name)
		if !ok {
			r.log.WithField("day", name).Warn("ignoring unknown weekday in schedule")
			continue
		}
		if !seen[day] {
			seen[day] = true
			schedule.ActiveDays = append(schedule.ActiveDays, day)
		}
	}
	sort.Slice(schedule.ActiveDays, func(i, j int) bool {
		return schedule.ActiveDays[i] < schedule.ActiveDays[j]
	})

	for _, value := range raw.Times {
		t, err := entity.ParseLocalTime(value)
		if err != nil {
			r.log.WithError(err).Warn("ignoring malformed time in schedule")
			continue
		}
		schedule.Times = append(schedule.Times, t)
	}

	return schedule
}

func (r *contentReader) FetchContentPool(ctx context.Context) (*entity.ContentPool, error) {
	docs, err := r.docs.Query(ctx, r.contentCollection, entity.Query{
		OrderBy:    "publishedAt",
		Descending: true,
		Limit:      1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch content pool: %w", err)
	}
	if len(docs) == 0 {
		return nil, nil
	}

	doc := docs[0]
	var raw entity.ContentDocument
	if err := doc.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode content %s/%s: %w", doc.Collection, doc.ID, err)
	}

	pool := r.toPool(raw)
	if pool.WeekID == "" {
		pool.WeekID = doc.ID
	}
	if pool.Len() == 0 {
		return nil, nil
	}

	return pool, nil
}

func (r *contentReader) toPool(raw entity.ContentDocument) *entity.ContentPool {
	pool := &entity.ContentPool{WeekID: raw.WeekID}

	if raw.PublishedAt != "" {
		if t, err := time.Parse(time.RFC3339, raw.PublishedAt); err == nil {
			pool.PublishedAt = t
		}
	}

	seen := make(map[string]bool, len(raw.Snippets))
	for _, s := range raw.Snippets {
		if s.ID == "" {
			r.log.WithField("title", s.Title).Warn("ignoring snippet without id")
			continue
		}
		if seen[s.ID] {
			r.log.WithField("snippet_id", s.ID).Warn("ignoring duplicate snippet id")
			continue
		}
		seen[s.ID] = true

		body := s.Snippet
		if body == "" {
			body = s.Body
		}

		pool.Items = append(pool.Items, entity.Snippet{
			ID:                 s.ID,
			Title:              s.Title,
			Subtitle:           s.Subtitle,
			Body:               body,
			ScriptureReference: s.Scripture.Reference,
			ScriptureText:      s.Scripture.Text,
		})
	}

	return pool
}
