// internal/report/service.go
package report

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"forecast-assistant/internal/chat"
	"forecast-assistant/internal/common/config"
	"forecast-assistant/internal/common/database"
	"forecast-assistant/internal/common/errors"
	"forecast-assistant/internal/common/logger"
	"forecast-assistant/internal/common/metrics"
)

// Cache is the subset of the redis wrapper the report service needs.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

// Service turns a chat transcript and workflow log into a markdown report.
// Generated reports are cached by content hash; a dead cache degrades to
// regeneration, never to failure.
type Service struct {
	backend chat.Backend
	cache   Cache
	config  *config.ReportConfig
	logger  logger.Logger
}

// NewService builds a report service. cache may be nil when redis is
// disabled.
func NewService(backend chat.Backend, cache Cache, cfg *config.ReportConfig, log logger.Logger) *Service {
	return &Service{
		backend: backend,
		cache:   cache,
		config:  cfg,
		logger:  log.WithFields(map[string]interface{}{"component": "report-service"}),
	}
}

// Request carries the raw material for one report.
type Request struct {
	ConversationHistory string `json:"conversationHistory"`
	AnalysisContext     string `json:"analysisContext"`
}

// Generate produces the report markdown for the given request.
func (s *Service) Generate(ctx context.Context, req Request) (string, error) {
	key := cacheKey(req)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key)
		if err == nil {
			metrics.ReportCacheHits.Inc()
			s.logger.Debug("report served from cache", map[string]interface{}{"key": key})
			return cached, nil
		}
		if !database.IsNil(err) {
			s.logger.WithError(err).Warn("report cache read failed, regenerating", nil)
		}
	}

	timeout := time.Duration(s.config.Timeout) * time.Millisecond
	genCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	markdown, err := s.backend.Complete(genCtx, []chat.Message{
		{Role: "system", Content: reportSystemPrompt},
		{Role: "user", Content: buildReportPrompt(req)},
	})
	if err != nil {
		if genCtx.Err() == context.DeadlineExceeded {
			return "", errors.NewReportTimeoutError(timeout.String())
		}
		return "", errors.NewReportFailedError(err)
	}

	if s.cache != nil {
		ttl := time.Duration(s.config.CacheTTL) * time.Second
		if err := s.cache.Set(ctx, key, markdown, ttl); err != nil {
			s.logger.WithError(err).Warn("report cache write failed", nil)
		}
	}

	return markdown, nil
}

func cacheKey(req Request) string {
	sum := sha256.Sum256([]byte(req.ConversationHistory + "\x00" + req.AnalysisContext))
	return "report:" + hex.EncodeToString(sum[:16])
}

const reportSystemPrompt = "You are a senior BI analyst. You write clear, " +
	"executive-ready markdown reports from forecasting sessions. Use the " +
	"exact section structure the user asks for and never invent numbers " +
	"that are not present in the source material."

func buildReportPrompt(req Request) string {
	var b strings.Builder

	b.WriteString("Generate a forecasting session report in markdown with these sections, in order:\n\n")
	for i, section := range []string{
		"Title",
		"Executive Summary",
		"Data Overview",
		"Analysis and Findings",
		"Forecasting Workflow",
		"Forecast Results",
		"Recommendations",
	} {
		fmt.Fprintf(&b, "%d. %s\n", i+1, section)
	}

	b.WriteString("\n## Conversation History\n\n")
	b.WriteString(req.ConversationHistory)
	b.WriteString("\n\n## Analysis Context\n\n")
	b.WriteString(req.AnalysisContext)
	b.WriteString("\n")

	return b.String()
}
