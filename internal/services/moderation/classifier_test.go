package moderation

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sylveur65/Projet-goodyfans-sub000/internal/domain/enums"
)

const testEndpoint = "https://classify.example.com/v1/moderate"

func testClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		Endpoint: testEndpoint,
		APIKey:   "sk-live-123",
		Timeout:  2 * time.Second,
	}
}

func assertWellFormed(t *testing.T, result Result) {
	t.Helper()
	for _, name := range []string{CategoryAdult, CategoryViolence, CategoryHate, CategorySelfHarm} {
		score, ok := result.Categories[name]
		require.True(t, ok, "category %s missing", name)
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 1.0)
	}
	seen := make(map[string]struct{}, len(result.Flags))
	for _, flag := range result.Flags {
		_, dup := seen[flag]
		assert.False(t, dup, "duplicate flag %s", flag)
		seen[flag] = struct{}{}
	}
}

func TestClassifierConfigured(t *testing.T) {
	tests := []struct {
		name string
		cfg  ClassifierConfig
		want bool
	}{
		{name: "valid", cfg: testClassifierConfig(), want: true},
		{name: "empty endpoint", cfg: ClassifierConfig{APIKey: "sk-live-123"}, want: false},
		{name: "relative endpoint", cfg: ClassifierConfig{Endpoint: "/v1/moderate", APIKey: "sk"}, want: false},
		{name: "non http scheme", cfg: ClassifierConfig{Endpoint: "ftp://x.example.com", APIKey: "sk"}, want: false},
		{name: "placeholder key", cfg: ClassifierConfig{Endpoint: testEndpoint, APIKey: "changeme"}, want: false},
		{name: "empty key", cfg: ClassifierConfig{Endpoint: testEndpoint}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.Configured())
		})
	}
}

func TestRemoteStrategyMapsProviderResponse(t *testing.T) {
	strategy := NewRemoteStrategy(testClassifierConfig())
	httpmock.ActivateNonDefault(strategy.httpClient)
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodPost, testEndpoint,
		httpmock.NewJsonResponderOrPanic(http.StatusOK, map[string]any{
			"scores": map[string]float64{
				"sexual":    0.92,
				"violence":  0.12,
				"hate":      0.03,
				"self-harm": 0.01,
				"spam":      0.99,
			},
			"labels": []string{"nsfw"},
		}))

	result, err := strategy.Classify(context.Background(), enums.ContentKindImage, "https://cdn.example.com/item.jpg")

	require.NoError(t, err)
	assertWellFormed(t, result)
	assert.InDelta(t, 0.92, result.Categories[CategoryAdult], 1e-9)
	assert.InDelta(t, 0.12, result.Categories[CategoryViolence], 1e-9)
	assert.InDelta(t, 0.03, result.Categories[CategoryHate], 1e-9)
	assert.InDelta(t, 0.01, result.Categories[CategorySelfHarm], 1e-9)
	assert.Contains(t, result.Flags, FlagAdultContentPlatform)
	assert.Contains(t, result.Flags, FlagRemoteClassifier)
	assert.Contains(t, result.Flags, "nsfw")
}

func TestRemoteStrategyErrors(t *testing.T) {
	tests := []struct {
		name      string
		responder httpmock.Responder
	}{
		{name: "server error", responder: httpmock.NewStringResponder(http.StatusInternalServerError, "boom")},
		{name: "rate limited", responder: httpmock.NewStringResponder(http.StatusTooManyRequests, "slow down")},
		{name: "malformed body", responder: httpmock.NewStringResponder(http.StatusOK, "{not json")},
		{name: "empty scores", responder: httpmock.NewStringResponder(http.StatusOK, `{"scores":{}}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			strategy := NewRemoteStrategy(testClassifierConfig())
			httpmock.ActivateNonDefault(strategy.httpClient)
			defer httpmock.DeactivateAndReset()
			httpmock.RegisterResponder(http.MethodPost, testEndpoint, tt.responder)

			_, err := strategy.Classify(context.Background(), enums.ContentKindText, "hello")
			require.Error(t, err)
		})
	}
}

func TestClassifierFallsBackOnRemoteFailure(t *testing.T) {
	classifier := NewClassifier(testClassifierConfig(), nil)
	remote := classifier.remote.(*RemoteStrategy)
	httpmock.ActivateNonDefault(remote.httpClient)
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodPost, testEndpoint,
		httpmock.NewStringResponder(http.StatusBadGateway, "bad gateway"))

	result := classifier.Classify(context.Background(), enums.ContentKindImage, "https://cdn.example.com/item.jpg")

	assertWellFormed(t, result)
	assert.InDelta(t, localAdultBaseline, result.Categories[CategoryAdult], 1e-9)
	assert.Contains(t, result.Flags, FlagLocalHeuristics)
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestClassifierUnconfiguredUsesLocal(t *testing.T) {
	classifier := NewClassifier(ClassifierConfig{Endpoint: testEndpoint, APIKey: "your-api-key"}, nil)
	remote := classifier.remote.(*RemoteStrategy)
	httpmock.ActivateNonDefault(remote.httpClient)
	defer httpmock.DeactivateAndReset()

	result := classifier.Classify(context.Background(), enums.ContentKindText, "just a friendly caption")

	assertWellFormed(t, result)
	assert.Contains(t, result.Flags, FlagLocalHeuristics)
	assert.Zero(t, httpmock.GetTotalCallCount())
}

func TestClassifierSkipsRemoteForVisualContextContent(t *testing.T) {
	classifier := NewClassifier(testClassifierConfig(), nil)
	remote := classifier.remote.(*RemoteStrategy)
	httpmock.ActivateNonDefault(remote.httpClient)
	defer httpmock.DeactivateAndReset()

	result := classifier.Classify(context.Background(), enums.ContentKindImage, "condenser-microphone-studio-setup.jpg")

	assertWellFormed(t, result)
	assert.Contains(t, result.Flags, FlagStudioContext)
	assert.Zero(t, httpmock.GetTotalCallCount(), "remote service must not be called for context-approved visual content")
}

func TestClassifierStillCallsRemoteForContextText(t *testing.T) {
	classifier := NewClassifier(testClassifierConfig(), nil)
	remote := classifier.remote.(*RemoteStrategy)
	httpmock.ActivateNonDefault(remote.httpClient)
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodPost, testEndpoint,
		httpmock.NewJsonResponderOrPanic(http.StatusOK, map[string]any{
			"scores": map[string]float64{"sexual": 0.1},
		}))

	result := classifier.Classify(context.Background(), enums.ContentKindText, "my recording studio microphone story")

	assertWellFormed(t, result)
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
	assert.Contains(t, result.Flags, FlagStudioContext)
}

func TestClassifierCachesResults(t *testing.T) {
	classifier := NewClassifier(testClassifierConfig(), nil)
	remote := classifier.remote.(*RemoteStrategy)
	httpmock.ActivateNonDefault(remote.httpClient)
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodPost, testEndpoint,
		httpmock.NewJsonResponderOrPanic(http.StatusOK, map[string]any{
			"scores": map[string]float64{"sexual": 0.4},
		}))

	first := classifier.Classify(context.Background(), enums.ContentKindImage, "https://cdn.example.com/a.jpg")
	second := classifier.Classify(context.Background(), enums.ContentKindImage, "https://cdn.example.com/a.jpg")

	assert.Equal(t, first, second)
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestLocalStrategyTextKeywords(t *testing.T) {
	strategy := NewLocalStrategy()

	tests := []struct {
		name     string
		payload  string
		category string
		want     float64
	}{
		{name: "self harm keyword", payload: "thinking about suicide", category: CategorySelfHarm, want: localTextKeywordScore},
		{name: "violence keyword", payload: "extreme gore footage", category: CategoryViolence, want: localTextKeywordScore},
		{name: "clean text", payload: "my holiday pictures", category: CategoryViolence, want: localLowBaseline},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := strategy.Classify(context.Background(), enums.ContentKindText, tt.payload)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, result.Categories[tt.category], 1e-9)
		})
	}
}

func TestLocalStrategyVisualBaselines(t *testing.T) {
	strategy := NewLocalStrategy()

	result, err := strategy.Classify(context.Background(), enums.ContentKindVideo, "https://cdn.example.com/v.mp4")
	require.NoError(t, err)
	assert.InDelta(t, localAdultBaseline, result.Categories[CategoryAdult], 1e-9)
	assert.InDelta(t, localLowBaseline, result.Categories[CategoryViolence], 1e-9)
	assert.InDelta(t, localLowBaseline, result.Categories[CategoryHate], 1e-9)
	assert.InDelta(t, localLowBaseline, result.Categories[CategorySelfHarm], 1e-9)

	// The fallback output must sail through the approval gate despite the
	// adult baseline.
	decision := Decide(result.Categories, result.Flags)
	assert.True(t, decision.Approved)
	assert.Equal(t, ReasonThresholdApproved, decision.Reason)
}
