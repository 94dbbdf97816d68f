package report

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forecast-assistant/internal/chat"
	"forecast-assistant/internal/common/config"
	"forecast-assistant/internal/common/database"
	stderrors "forecast-assistant/internal/common/errors"
	"forecast-assistant/internal/common/logger"
)

type backendFunc func(ctx context.Context, messages []chat.Message) (string, error)

func (f backendFunc) Complete(ctx context.Context, messages []chat.Message) (string, error) {
	return f(ctx, messages)
}

func testReportConfig() *config.ReportConfig {
	return &config.ReportConfig{Timeout: 60000, CacheTTL: 900}
}

func newTestCache(t *testing.T) (*database.RedisClient, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	cache, err := database.NewRedis(config.RedisConfig{Enabled: true, Address: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })
	return cache, mr
}

func TestGenerate_BuildsPromptAndReturnsMarkdown(t *testing.T) {
	var seen []chat.Message
	backend := backendFunc(func(ctx context.Context, messages []chat.Message) (string, error) {
		seen = messages
		return "# Forecast Report\n\nAll good.", nil
	})
	svc := NewService(backend, nil, testReportConfig(), logger.NewTestLogger(t))

	markdown, err := svc.Generate(context.Background(), Request{
		ConversationHistory: "user: forecast please",
		AnalysisContext:     "step-1: completed",
	})

	require.NoError(t, err)
	assert.Equal(t, "# Forecast Report\n\nAll good.", markdown)
	require.Len(t, seen, 2)
	assert.Equal(t, "system", seen[0].Role)
	assert.Contains(t, seen[1].Content, "Executive Summary")
	assert.Contains(t, seen[1].Content, "user: forecast please")
	assert.Contains(t, seen[1].Content, "step-1: completed")
}

func TestGenerate_CachesByContent(t *testing.T) {
	cache, _ := newTestCache(t)
	calls := 0
	backend := backendFunc(func(ctx context.Context, messages []chat.Message) (string, error) {
		calls++
		return "# Report", nil
	})
	svc := NewService(backend, cache, testReportConfig(), logger.NewTestLogger(t))

	req := Request{ConversationHistory: "hi", AnalysisContext: "log"}
	first, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)
	second, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)

	// Different content misses the cache.
	_, err = svc.Generate(context.Background(), Request{ConversationHistory: "other", AnalysisContext: "log"})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestGenerate_DeadCacheDegradesToRegeneration(t *testing.T) {
	cache, mr := newTestCache(t)
	backend := backendFunc(func(ctx context.Context, messages []chat.Message) (string, error) {
		return "# Report", nil
	})
	svc := NewService(backend, cache, testReportConfig(), logger.NewTestLogger(t))

	mr.Close()

	markdown, err := svc.Generate(context.Background(), Request{ConversationHistory: "hi", AnalysisContext: "log"})
	require.NoError(t, err)
	assert.Equal(t, "# Report", markdown)
}

func TestGenerate_BackendFailure(t *testing.T) {
	backend := backendFunc(func(ctx context.Context, messages []chat.Message) (string, error) {
		return "", assert.AnError
	})
	svc := NewService(backend, nil, testReportConfig(), logger.NewTestLogger(t))

	_, err := svc.Generate(context.Background(), Request{ConversationHistory: "hi", AnalysisContext: "log"})

	require.Error(t, err)
	var stdErr *stderrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, stderrors.ErrCodeReportFailed, stdErr.Code)
}

func TestGenerate_Timeout(t *testing.T) {
	backend := backendFunc(func(ctx context.Context, messages []chat.Message) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	svc := NewService(backend, nil, &config.ReportConfig{Timeout: 20, CacheTTL: 900}, logger.NewTestLogger(t))

	start := time.Now()
	_, err := svc.Generate(context.Background(), Request{ConversationHistory: "hi", AnalysisContext: "log"})

	require.Error(t, err)
	var stdErr *stderrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, stderrors.ErrCodeReportTimeout, stdErr.Code)
	assert.Less(t, time.Since(start), time.Second)
}
