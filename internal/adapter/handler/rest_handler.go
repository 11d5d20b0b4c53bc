package handler

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/regulartim/GreedyBear/internal/adapter/exporter"
	"github.com/regulartim/GreedyBear/internal/adapter/metrics"
	"github.com/regulartim/GreedyBear/internal/core/feeds"
	"github.com/regulartim/GreedyBear/internal/core/ports"
)

// FeedHandler serves the threat-intelligence feed endpoint.
type FeedHandler struct {
	repo           ports.IOCRepository
	registry       ports.HoneypotRegistry
	stats          ports.StatisticsSink
	log            *logrus.Logger
	skipValidation bool
}

func NewFeedHandler(repo ports.IOCRepository, registry ports.HoneypotRegistry, stats ports.StatisticsSink, log *logrus.Logger, skipValidation bool) *FeedHandler {
	return &FeedHandler{
		repo:           repo,
		registry:       registry,
		stats:          stats,
		log:            log,
		skipValidation: skipValidation,
	}
}

// Health check endpoint
func (h *FeedHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "greedybear-api",
	})
}

// Feeds serves GET /api/v1/feeds in json, csv or txt form.
func (h *FeedHandler) Feeds(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	query := r.URL.Query()

	params := feeds.NewFeedParams(query)
	if age := query.Get("age"); age != "" {
		params.SetLegacyAge(age)
	}

	validTypes, err := feeds.ValidFeedTypes(ctx, h.registry)
	if err != nil {
		h.log.WithError(err).Error("failed to load valid feed types")
		writeError(w, http.StatusInternalServerError, "failed to query honeypot registry")
		return
	}

	cfg, err := feeds.ParseConfig(params, validTypes)
	if err != nil {
		h.writeValidationError(w, err)
		return
	}

	h.log.WithFields(logrus.Fields{
		"feed_type":   cfg.FeedType,
		"attack_type": cfg.AttackType,
		"max_age":     cfg.MaxAge,
		"format":      cfg.Format,
	}).Info("feed request")

	iocs, err := h.repo.FindFeed(ctx, cfg.Filter(time.Now().UTC()))
	if err != nil {
		h.log.WithError(err).Error("feed query failed")
		writeError(w, http.StatusInternalServerError, "failed to query IOCs")
		return
	}

	// Fire-and-forget bookkeeping: a failed statistics write never aborts
	// the response.
	if err := h.stats.RecordRequest(ctx, clientAddr(r)); err != nil {
		metrics.RecordStatisticsWriteFailure()
		h.log.WithError(err).Warn("failed to record request statistics")
	}

	defer func() {
		metrics.ObserveFeedRequest(cfg.Format, cfg.FeedType, len(iocs), time.Since(start).Seconds())
	}()

	switch cfg.Format {
	case feeds.FormatTXT:
		if err := exporter.WriteTXT(w, feeds.ValueLines(iocs)); err != nil {
			h.log.WithError(err).Error("failed to write txt feed")
		}
	case feeds.FormatCSV:
		if err := exporter.StreamCSV(w, feeds.ValueLines(iocs)); err != nil {
			h.log.WithError(err).Error("failed to stream csv feed")
		}
	default:
		items, err := feeds.RenderItems(iocs, cfg, validTypes, h.skipValidation)
		if err != nil {
			h.writeValidationError(w, err)
			return
		}
		h.log.WithField("count", len(items)).Info("feed rendered")
		writeJSON(w, http.StatusOK, feeds.FeedResponse{License: feeds.FeedsLicense, IOCs: items})
	}
}

// writeValidationError reports every violated field to the caller. Errors
// that are not validation errors at this point are logic defects in the
// renderer and surface as server failures.
func (h *FeedHandler) writeValidationError(w http.ResponseWriter, err error) {
	var verr *feeds.ValidationError
	if !errors.As(err, &verr) {
		h.log.WithError(err).Error("feed rendering failed")
		writeError(w, http.StatusInternalServerError, "failed to render feed")
		return
	}
	for field := range verr.Fields {
		metrics.RecordValidationFailure(field)
	}
	h.log.WithError(verr).Info("rejected feed request")
	writeJSON(w, http.StatusBadRequest, map[string]any{"errors": verr.Fields})
}

// Helper functions

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logrus.WithError(err).Error("error encoding JSON response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func clientAddr(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
