package push

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/user/moviedash-go/internal/dashboard"
	"github.com/user/moviedash-go/internal/metrics"
	"github.com/user/moviedash-go/internal/model"
	"github.com/user/moviedash-go/internal/pipeline"
	"github.com/user/moviedash-go/internal/store"
	"golang.org/x/time/rate"
)

// PeriodLayout formats the start of a digest period
const PeriodLayout = "2006-01-02T15:04"

// TelegramClient defines the interface for sending Telegram messages
type TelegramClient interface {
	SendMarkdown(chatID int64, text string) error
}

// DashboardBuilder builds dashboards for digest requests
type DashboardBuilder interface {
	Build(req dashboard.Request) (*pipeline.Dashboard, error)
	Options() dashboard.Options
}

// Summary counts the outcome of one digest cycle
type Summary struct {
	Sent    int
	Skipped int
	Failed  int
}

// Service pushes dashboard digests to subscribed chats
type Service struct {
	store      store.Store
	telegram   TelegramClient
	dashboards DashboardBuilder
	limiter    *rate.Limiter
	interval   time.Duration
	now        func() time.Time
}

// NewService creates a new push service. ratePerSecond caps messages sent
// globally, interval is the digest period.
func NewService(store store.Store, telegram TelegramClient, dashboards DashboardBuilder, ratePerSecond float64, interval time.Duration) *Service {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &Service{
		store:      store,
		telegram:   telegram,
		dashboards: dashboards,
		limiter:    rate.NewLimiter(rate.Limit(ratePerSecond), 1),
		interval:   interval,
		now:        time.Now,
	}
}

// Period returns the key of the digest period containing t
func Period(t time.Time, interval time.Duration) string {
	return t.UTC().Truncate(interval).Format(PeriodLayout)
}

// RequestFor converts a subscription into a dashboard request
func RequestFor(sub *model.Subscription) dashboard.Request {
	req := dashboard.Request{
		Genres: sub.GenreList(),
		Match:  sub.GenreMatch,
	}
	if sub.HasYears() {
		minYear, maxYear := sub.MinYear, sub.MaxYear
		req.MinYear = &minYear
		req.MaxYear = &maxYear
	}
	return req
}

// PushDigests sends the current period's digest to every enabled subscription
func (s *Service) PushDigests(ctx context.Context) (Summary, error) {
	var summary Summary

	subs, err := s.store.GetAllSubscriptions(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to get subscriptions: %w", err)
	}

	period := Period(s.now(), s.interval)
	log.Info().Int("subscriptions", len(subs)).Str("period", period).Msg("Pushing digests")

	for _, sub := range subs {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		sent, err := s.PushDigest(ctx, sub, period)
		switch {
		case err != nil:
			summary.Failed++
			log.Error().
				Err(err).
				Uint("subscription", sub.ID).
				Int64("chatID", sub.ChatID).
				Msg("Failed to push digest")
		case sent:
			summary.Sent++
		default:
			summary.Skipped++
		}
	}

	log.Info().
		Int("sent", summary.Sent).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Msg("Digest cycle completed")

	return summary, nil
}

// PushDigest sends one subscription's digest for a period. It reports false
// without sending when the period was already delivered.
func (s *Service) PushDigest(ctx context.Context, sub *model.Subscription, period string) (bool, error) {
	delivered, err := s.store.HasDelivered(ctx, sub.ID, period)
	if err != nil {
		return false, fmt.Errorf("failed to check delivery history: %w", err)
	}
	if delivered {
		log.Debug().
			Uint("subscription", sub.ID).
			Str("period", period).
			Msg("Digest already delivered, skipping")
		return false, nil
	}

	d, err := s.dashboards.Build(RequestFor(sub))
	if err != nil {
		return false, fmt.Errorf("failed to build dashboard: %w", err)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return false, fmt.Errorf("rate limiter error: %w", err)
	}

	message := FormatDigest(sub, d, len(s.dashboards.Options().Genres))
	sendErr := s.telegram.SendMarkdown(sub.ChatID, message)

	record := &model.DigestRecord{
		SubscriptionID: sub.ID,
		ChatID:         sub.ChatID,
		Period:         period,
		Rows:           d.Total,
		DeliveredAt:    s.now(),
	}

	if sendErr != nil {
		record.Status = model.DeliveryStatusFailed
		record.FailReason = truncate(sendErr.Error(), 500)
		metrics.RecordDigest("failed")
	} else {
		record.Status = model.DeliveryStatusSuccess
		metrics.RecordDigest("success")
		log.Info().
			Uint("subscription", sub.ID).
			Int64("chatID", sub.ChatID).
			Int("rows", d.Total).
			Msg("Successfully pushed digest")
	}

	if err := s.store.RecordDelivery(ctx, record); err != nil {
		log.Error().Err(err).Msg("Failed to record delivery")
	}

	if sendErr != nil {
		return false, sendErr
	}
	return true, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
