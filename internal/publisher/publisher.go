package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/veonhoon/bible-reader-sub000/internal/domain"
	"github.com/veonhoon/bible-reader-sub000/internal/domain/contract"
	"github.com/veonhoon/bible-reader-sub000/internal/domain/entity"
	"github.com/veonhoon/bible-reader-sub000/internal/logger"
)

// Extractor produces snippets from a long-form teaching
type Extractor interface {
	Snippets(ctx context.Context, teaching string, minCount, maxCount int) ([]entity.SnippetDocument, error)
}

type Options struct {
	ScheduleCollection string
	ScheduleDocumentID string
	ContentCollection  string
}

// Publisher writes the documents the notifier service reads
type Publisher struct {
	docs contract.DocumentStore
	opts Options
	now  func() time.Time
	log  *logrus.Entry
}

func New(docs contract.DocumentStore, opts Options) *Publisher {
	if opts.ScheduleCollection == "" {
		opts.ScheduleCollection = domain.DefaultScheduleCollection
	}
	if opts.ScheduleDocumentID == "" {
		opts.ScheduleDocumentID = domain.DefaultScheduleDocumentID
	}
	if opts.ContentCollection == "" {
		opts.ContentCollection = domain.DefaultContentCollection
	}

	return &Publisher{
		docs: docs,
		opts: opts,
		now:  time.Now,
		log:  logger.Component("publisher"),
	}
}

// PublishSchedule validates and stores the delivery schedule
func (p *Publisher) PublishSchedule(ctx context.Context, perDay int, days, times []string) (*entity.ScheduleDocument, error) {
	if perDay < 1 {
		return nil, fmt.Errorf("per-day must be at least 1")
	}

	doc := &entity.ScheduleDocument{PerDay: perDay}

	for _, d := range days {
		day, ok := domain.ParseWeekday(d)
		if !ok {
			return nil, fmt.Errorf("unknown weekday: %q", d)
		}
		doc.Days = append(doc.Days, domain.WeekdayNames[day])
	}
	if len(doc.Days) == 0 {
		return nil, fmt.Errorf("at least one day is required")
	}

	for _, t := range times {
		lt, err := entity.ParseLocalTime(t)
		if err != nil {
			return nil, fmt.Errorf("invalid time %q: %w", t, err)
		}
		doc.Times = append(doc.Times, lt.String())
	}
	if len(doc.Times) < perDay {
		return nil, fmt.Errorf("need at least %d times for %d notifications per day, got %d", perDay, perDay, len(doc.Times))
	}

	if err := p.docs.Set(ctx, p.opts.ScheduleCollection, p.opts.ScheduleDocumentID, doc); err != nil {
		return nil, fmt.Errorf("failed to publish schedule: %w", err)
	}

	p.log.WithFields(logrus.Fields{
		"per_day": doc.PerDay,
		"days":    strings.Join(doc.Days, ","),
		"times":   strings.Join(doc.Times, ","),
	}).Info("Schedule published")

	return doc, nil
}

// PublishContent stores a week of snippets as the newest content version
func (p *Publisher) PublishContent(ctx context.Context, weekID string, snippets []entity.SnippetDocument) (*entity.ContentDocument, error) {
	weekID = strings.TrimSpace(weekID)
	if weekID == "" {
		return nil, fmt.Errorf("week id is required")
	}

	kept := make([]entity.SnippetDocument, 0, len(snippets))
	seen := make(map[string]bool, len(snippets))
	for i, s := range snippets {
		if strings.TrimSpace(s.Snippet) == "" && strings.TrimSpace(s.Body) == "" {
			continue
		}

		// readers drop snippets without a unique id
		s.ID = strings.TrimSpace(s.ID)
		if s.ID == "" {
			return nil, fmt.Errorf("snippet %d of week %s has no id", i+1, weekID)
		}
		if seen[s.ID] {
			return nil, fmt.Errorf("duplicate snippet id %q in week %s", s.ID, weekID)
		}
		seen[s.ID] = true

		kept = append(kept, s)
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("week %s has no snippets with text", weekID)
	}

	doc := &entity.ContentDocument{
		WeekID:      weekID,
		PublishedAt: p.now().UTC().Format(time.RFC3339),
		Snippets:    kept,
	}

	if err := p.docs.Set(ctx, p.opts.ContentCollection, weekID, doc); err != nil {
		return nil, fmt.Errorf("failed to publish content: %w", err)
	}

	p.log.WithFields(logrus.Fields{
		"week_id":  weekID,
		"snippets": len(kept),
	}).Info("Content published")

	return doc, nil
}

// PublishContentJSON accepts either a bare snippet array or a full content document
func (p *Publisher) PublishContentJSON(ctx context.Context, weekID string, data []byte) (*entity.ContentDocument, error) {
	var snippets []entity.SnippetDocument
	if err := json.Unmarshal(data, &snippets); err != nil {
		var doc entity.ContentDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse snippets: %w", err)
		}
		snippets = doc.Snippets
		if weekID == "" {
			weekID = doc.WeekID
		}
	}

	return p.PublishContent(ctx, weekID, snippets)
}

// PublishTeaching extracts snippets from a teaching and publishes them
func (p *Publisher) PublishTeaching(ctx context.Context, extractor Extractor, weekID, teaching string, minCount, maxCount int) (*entity.ContentDocument, error) {
	snippets, err := extractor.Snippets(ctx, teaching, minCount, maxCount)
	if err != nil {
		return nil, fmt.Errorf("failed to extract snippets: %w", err)
	}

	p.log.WithField("snippets", len(snippets)).Debug("Snippets extracted")

	return p.PublishContent(ctx, weekID, snippets)
}
