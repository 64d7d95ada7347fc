package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
	"github.com/user/moviedash-go/internal/dashboard"
	"github.com/user/moviedash-go/internal/metrics"
	"github.com/user/moviedash-go/internal/model"
	"github.com/user/moviedash-go/internal/pipeline"
	"github.com/user/moviedash-go/internal/push"
	"github.com/user/moviedash-go/internal/store"
)

// RankedLimit is the number of entries listed by /top and /popular
const RankedLimit = pipeline.TopMoviesLimit

// Sender sends messages to Telegram chats
type Sender interface {
	SendMessage(chatID int64, text string) error
	SendMarkdown(chatID int64, text string) error
}

// Handler handles Telegram bot commands
type Handler struct {
	store      store.Store
	dashboards push.DashboardBuilder
	telegram   Sender
	startTime  time.Time
}

// NewHandler creates a new command handler
func NewHandler(store store.Store, dashboards push.DashboardBuilder, telegram Sender) *Handler {
	return &Handler{
		store:      store,
		dashboards: dashboards,
		telegram:   telegram,
		startTime:  time.Now(),
	}
}

// HandleUpdate processes an incoming Telegram update
func (h *Handler) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.Message == nil || update.Message.Chat == nil {
		return
	}

	msg := update.Message
	if msg.IsCommand() {
		h.handleCommand(ctx, msg)
		return
	}

	// Group chats get a default digest subscription on first contact
	if msg.Chat.Type == "group" || msg.Chat.Type == "supergroup" {
		h.autoSubscribeGroup(ctx, msg.Chat.ID, msg.Chat.Type)
	}
}

// handleCommand routes commands to their respective handlers
func (h *Handler) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	chatType := msg.Chat.Type
	command := msg.Command()
	args := strings.TrimSpace(msg.CommandArguments())

	log.Info().
		Int64("chatID", chatID).
		Str("command", command).
		Str("args", args).
		Msg("Received command")

	switch command {
	case "start", "help":
		h.handleStart(chatID)
	case "dashboard":
		h.handleDashboard(chatID, args)
	case "top":
		h.handleRanked(chatID, args, "⭐ *Top rated*", func(d *pipeline.Dashboard) []pipeline.Row { return d.TopRated },
			func(r *pipeline.Row) float64 { return r.VoteAverage })
	case "popular":
		h.handleRanked(chatID, args, "🔥 *Most popular*", func(d *pipeline.Dashboard) []pipeline.Row { return d.MostPopular },
			func(r *pipeline.Row) float64 { return r.Popularity })
	case "genres":
		h.handleGenres(chatID, args)
	case "years":
		h.handleYears(chatID, args)
	case "subscribe":
		h.handleSubscribe(ctx, chatID, chatType, args)
	case "unsubscribe":
		h.handleUnsubscribe(ctx, chatID, args)
	case "list":
		h.handleList(ctx, chatID)
	case "status":
		h.handleStatus(ctx, chatID)
	default:
		command = "unknown"
		h.sendError(chatID, "Unknown command. Use /help to see available commands.")
	}
	metrics.RecordCommand(command)
}

// handleStart handles /start and /help
func (h *Handler) handleStart(chatID int64) {
	helpText := `🤖 *Movie Dashboard Bot*

*Dashboard Commands:*
/dashboard \[years\] \[genres\] \- Summary for a filter
/top \[years\] \[genres\] \- Top rated movies
/popular \[years\] \[genres\] \- Most popular movies
/genres \[years\] \[genres\] \- Genre distribution
/years \[years\] \[genres\] \- Movies and mean rating per year

*Digest Commands:*
/subscribe \[years\] \[genres\] \- Receive a periodic digest
/unsubscribe \[id\] \- Remove one digest or all
/list \- List your digests
/status \- Show bot statistics

_Years are_ ` + "`2015`" + ` _or_ ` + "`2010-2020`" + `_, genres are comma separated, e\.g\._ ` + "`/top 2010-2020 Action, Drama`" + `
_Add_ ` + "`match=raw`" + ` _after the years to compare whole genre strings\._`

	if err := h.telegram.SendMarkdown(chatID, helpText); err != nil {
		log.Error().Err(err).Int64("chatID", chatID).Msg("Failed to send help message")
	}
}

// buildDashboard parses a query and builds its dashboard. Invalid queries are
// reported to the chat and return nil.
func (h *Handler) buildDashboard(chatID int64, args string) (*pipeline.Dashboard, dashboard.Request, bool) {
	req, err := h.parseRequest(args)
	if err != nil {
		h.sendError(chatID, queryErrorMessage(err))
		return nil, req, false
	}

	d, err := h.dashboards.Build(req)
	if err != nil {
		h.sendError(chatID, queryErrorMessage(err))
		return nil, req, false
	}
	return d, req, true
}

func (h *Handler) parseRequest(args string) (dashboard.Request, error) {
	req, err := ParseQuery(args)
	if err != nil {
		return req, err
	}
	req.Genres, err = CanonicalGenres(req.Genres, h.dashboards.Options().Genres)
	return req, err
}

func queryErrorMessage(err error) string {
	switch {
	case errors.Is(err, dashboard.ErrInvalidYearRange):
		return "The first year must not be after the second one."
	case errors.Is(err, dashboard.ErrInvalidMatch):
		return "Unknown match mode. Use match=exploded or match=raw."
	case errors.Is(err, ErrUnknownGenre):
		return fmt.Sprintf("Unknown genre%s. Use /genres to see the available labels.", strings.TrimPrefix(err.Error(), ErrUnknownGenre.Error()))
	default:
		return "Failed to build the dashboard. Please try again."
	}
}

// handleDashboard handles /dashboard
func (h *Handler) handleDashboard(chatID int64, args string) {
	d, _, ok := h.buildDashboard(chatID, args)
	if !ok {
		return
	}

	message := push.FormatDigest(nil, d, len(h.dashboards.Options().Genres))
	if err := h.telegram.SendMarkdown(chatID, message); err != nil {
		log.Error().Err(err).Int64("chatID", chatID).Msg("Failed to send dashboard")
	}
}

// handleRanked handles /top and /popular
func (h *Handler) handleRanked(chatID int64, args, title string, rows func(*pipeline.Dashboard) []pipeline.Row, value func(*pipeline.Row) float64) {
	d, _, ok := h.buildDashboard(chatID, args)
	if !ok {
		return
	}

	lines := []string{title, push.DescribeFilter(d.Params, len(h.dashboards.Options().Genres)), ""}
	ranked := push.FormatRanked(rows(d), value, RankedLimit)
	if len(ranked) == 0 {
		ranked = []string{"_No movies match this filter\\._"}
	}
	lines = append(lines, ranked...)

	if err := h.telegram.SendMarkdown(chatID, strings.Join(lines, "\n")); err != nil {
		log.Error().Err(err).Int64("chatID", chatID).Msg("Failed to send ranking")
	}
}

// handleGenres handles /genres
func (h *Handler) handleGenres(chatID int64, args string) {
	d, _, ok := h.buildDashboard(chatID, args)
	if !ok {
		return
	}

	lines := []string{"🏷 *Genres*", push.DescribeFilter(d.Params, len(h.dashboards.Options().Genres)), ""}
	if len(d.GenreDistribution) == 0 {
		lines = append(lines, "_No movies match this filter\\._")
	}
	for _, gc := range d.GenreDistribution {
		lines = append(lines, fmt.Sprintf("%s: %d", push.EscapeMarkdown(gc.Genre), gc.Count))
	}

	if err := h.telegram.SendMarkdown(chatID, strings.Join(lines, "\n")); err != nil {
		log.Error().Err(err).Int64("chatID", chatID).Msg("Failed to send genres")
	}
}

// handleYears handles /years
func (h *Handler) handleYears(chatID int64, args string) {
	d, _, ok := h.buildDashboard(chatID, args)
	if !ok {
		return
	}

	averages := make(map[int]float64, len(d.YearlyAverage))
	for _, ya := range d.YearlyAverage {
		averages[ya.Year] = ya.VoteAverage
	}

	lines := []string{"📅 *Movies per year*", push.DescribeFilter(d.Params, len(h.dashboards.Options().Genres)), ""}
	if len(d.MoviesPerYear) == 0 {
		lines = append(lines, "_No movies match this filter\\._")
	}
	for _, yc := range d.MoviesPerYear {
		lines = append(lines, fmt.Sprintf("%d: %d movies, ⭐ %s", yc.Year, yc.Count, push.FormatNumber(averages[yc.Year])))
	}

	if err := h.telegram.SendMarkdown(chatID, strings.Join(lines, "\n")); err != nil {
		log.Error().Err(err).Int64("chatID", chatID).Msg("Failed to send years")
	}
}

// handleSubscribe handles /subscribe
func (h *Handler) handleSubscribe(ctx context.Context, chatID int64, chatType string, args string) {
	d, req, ok := h.buildDashboard(chatID, args)
	if !ok {
		return
	}

	sub := &model.Subscription{
		ChatID:     chatID,
		ChatType:   chatType,
		GenreMatch: req.Match,
		Enabled:    true,
	}
	if req.MinYear != nil && req.MaxYear != nil {
		sub.MinYear, sub.MaxYear = *req.MinYear, *req.MaxYear
	}
	sub.SetGenreList(req.Genres)

	if err := h.store.CreateSubscription(ctx, sub); err != nil {
		log.Error().Err(err).Int64("chatID", chatID).Msg("Failed to create subscription")
		h.sendError(chatID, "Failed to create subscription. Please try again.")
		return
	}

	message := fmt.Sprintf("✅ Subscribed to digest \\#%d\n%s", sub.ID, push.DescribeFilter(d.Params, len(h.dashboards.Options().Genres)))
	if err := h.telegram.SendMarkdown(chatID, message); err != nil {
		log.Error().Err(err).Int64("chatID", chatID).Msg("Failed to send subscription confirmation")
	}
}

// handleUnsubscribe handles /unsubscribe
func (h *Handler) handleUnsubscribe(ctx context.Context, chatID int64, args string) {
	args = strings.TrimPrefix(strings.TrimSpace(args), "#")

	if args == "" {
		n, err := h.store.DeleteAllSubscriptions(ctx, chatID)
		if err != nil {
			log.Error().Err(err).Int64("chatID", chatID).Msg("Failed to delete all subscriptions")
			h.sendError(chatID, "Failed to unsubscribe. Please try again.")
			return
		}
		if err := h.telegram.SendMessage(chatID, fmt.Sprintf("✅ Unsubscribed from %d digest(s).", n)); err != nil {
			log.Error().Err(err).Int64("chatID", chatID).Msg("Failed to send unsubscribe confirmation")
		}
		return
	}

	id, err := strconv.ParseUint(args, 10, 64)
	if err != nil {
		h.sendError(chatID, "Please provide a digest id from /list. Example: /unsubscribe 3")
		return
	}

	found, err := h.store.DeleteSubscription(ctx, chatID, uint(id))
	if err != nil {
		log.Error().Err(err).Int64("chatID", chatID).Uint64("id", id).Msg("Failed to delete subscription")
		h.sendError(chatID, "Failed to unsubscribe. Please try again.")
		return
	}
	if !found {
		h.sendError(chatID, fmt.Sprintf("No digest #%d in this chat.", id))
		return
	}

	if err := h.telegram.SendMessage(chatID, fmt.Sprintf("✅ Unsubscribed from digest #%d.", id)); err != nil {
		log.Error().Err(err).Int64("chatID", chatID).Msg("Failed to send unsubscribe confirmation")
	}
}

// handleList handles /list
func (h *Handler) handleList(ctx context.Context, chatID int64) {
	subs, err := h.store.GetSubscriptions(ctx, chatID)
	if err != nil {
		log.Error().Err(err).Int64("chatID", chatID).Msg("Failed to get subscriptions")
		h.sendError(chatID, "Failed to get subscriptions. Please try again.")
		return
	}

	if len(subs) == 0 {
		if err := h.telegram.SendMessage(chatID, "📭 You have no active digests.\nUse /subscribe to receive one."); err != nil {
			log.Error().Err(err).Int64("chatID", chatID).Msg("Failed to send empty list message")
		}
		return
	}

	lines := []string{"📋 *Your Digests:*", ""}
	for _, sub := range subs {
		lines = append(lines, fmt.Sprintf("\\#%d %s", sub.ID, describeSubscription(sub)))
	}

	if err := h.telegram.SendMarkdown(chatID, strings.Join(lines, "\n")); err != nil {
		log.Error().Err(err).Int64("chatID", chatID).Msg("Failed to send subscription list")
	}
}

// describeSubscription renders a subscription filter as escaped MarkdownV2
func describeSubscription(sub *model.Subscription) string {
	years := "default years"
	if sub.HasYears() {
		years = fmt.Sprintf("%d to %d", sub.MinYear, sub.MaxYear)
	}
	genres := "all genres"
	if list := sub.GenreList(); list != nil {
		genres = strings.Join(list, ", ")
	}
	match := sub.GenreMatch
	if match == "" {
		match = "default"
	}
	return fmt.Sprintf("📅 %s  🎭 %s \\(%s\\)", push.EscapeMarkdown(years), push.EscapeMarkdown(genres), push.EscapeMarkdown(match))
}

// handleStatus handles /status
func (h *Handler) handleStatus(ctx context.Context, chatID int64) {
	stored, err := h.store.CountMovies(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to count movies")
		stored = -1
	}

	subs, err := h.store.GetSubscriptions(ctx, chatID)
	if err != nil {
		log.Error().Err(err).Int64("chatID", chatID).Msg("Failed to get subscriptions")
	}

	opts := h.dashboards.Options()
	uptime := time.Since(h.startTime)

	var lines []string
	lines = append(lines, "📊 *Bot Status*", "")
	lines = append(lines, fmt.Sprintf("🎬 Movies loaded: %d", opts.Total))
	lines = append(lines, fmt.Sprintf("💾 Movies in database: %s", push.EscapeMarkdown(strconv.FormatInt(stored, 10))))
	lines = append(lines, fmt.Sprintf("📅 Years: %d to %d", opts.MinYear, opts.MaxYear))
	lines = append(lines, fmt.Sprintf("🏷 Genres: %d", len(opts.Genres)))
	lines = append(lines, fmt.Sprintf("📬 Digests in this chat: %d", len(subs)))
	lines = append(lines, fmt.Sprintf("⏱ Uptime: %s", formatDuration(uptime)))
	lines = append(lines, fmt.Sprintf("🕐 Started: %s", h.startTime.Format("2006\\-01\\-02 15:04:05")))

	if err := h.telegram.SendMarkdown(chatID, strings.Join(lines, "\n")); err != nil {
		log.Error().Err(err).Int64("chatID", chatID).Msg("Failed to send status")
	}
}

// autoSubscribeGroup subscribes a group chat to the default digest
func (h *Handler) autoSubscribeGroup(ctx context.Context, chatID int64, chatType string) {
	subs, err := h.store.GetSubscriptions(ctx, chatID)
	if err != nil {
		log.Error().Err(err).Int64("chatID", chatID).Msg("Failed to check existing subscriptions")
		return
	}
	if len(subs) > 0 {
		return
	}

	sub := &model.Subscription{
		ChatID:   chatID,
		ChatType: chatType,
		Enabled:  true,
	}
	if err := h.store.CreateSubscription(ctx, sub); err != nil {
		log.Error().Err(err).Int64("chatID", chatID).Msg("Failed to auto-subscribe group")
		return
	}

	log.Info().Int64("chatID", chatID).Uint("subscription", sub.ID).Msg("Auto-subscribed group to the default digest")
}

// sendError sends an error message to a chat
func (h *Handler) sendError(chatID int64, message string) {
	if err := h.telegram.SendMessage(chatID, "❌ "+message); err != nil {
		log.Error().Err(err).Int64("chatID", chatID).Msg("Failed to send error message")
	}
}

// formatDuration formats a duration into a human-readable string
func formatDuration(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
