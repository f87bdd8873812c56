package moderation

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/sylveur65/Projet-goodyfans-sub000/internal/domain/enums"
	"github.com/sylveur65/Projet-goodyfans-sub000/internal/infra/httpclient"
)

const (
	defaultClassifyTimeout = 5 * time.Second
	defaultResultCacheTTL  = 10 * time.Minute

	localAdultBaseline    = 0.7
	localLowBaseline      = 0.05
	localTextKeywordScore = 0.95
	localTextAdultScore   = 0.1
)

// Placeholder credentials shipped in example configs must not count as a
// configured remote service.
var placeholderAPIKeys = map[string]struct{}{
	"":             {},
	"changeme":     {},
	"change-me":    {},
	"your-api-key": {},
	"xxx":          {},
}

// ClassifierConfig is the immutable configuration handed to the adapter; the
// decision logic itself never reads ambient environment state.
type ClassifierConfig struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration
	CacheTTL time.Duration
}

// Configured reports whether the remote classification service can be
// attempted at all: endpoint parses as an absolute http(s) URL and the API
// key is not a placeholder.
func (c ClassifierConfig) Configured() bool {
	if _, ok := placeholderAPIKeys[strings.ToLower(strings.TrimSpace(c.APIKey))]; ok {
		return false
	}
	parsed, err := url.Parse(strings.TrimSpace(c.Endpoint))
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}

// Strategy produces a normalized classification result for one content item.
type Strategy interface {
	Classify(ctx context.Context, kind enums.ContentKind, payload string) (Result, error)
}

// Classifier selects between the remote service and the local heuristic
// strategy and guarantees a well-formed result: transport errors never reach
// the caller.
type Classifier struct {
	cfg    ClassifierConfig
	remote Strategy
	local  *LocalStrategy
	cache  *gocache.Cache
	logger *zap.Logger
}

func NewClassifier(cfg ClassifierConfig, logger *zap.Logger) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultClassifyTimeout
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = defaultResultCacheTTL
	}

	return &Classifier{
		cfg:    cfg,
		remote: NewRemoteStrategy(cfg),
		local:  NewLocalStrategy(),
		cache:  gocache.New(ttl, 2*ttl),
		logger: logger,
	}
}

// Classify never fails: any remote problem falls through to the local
// heuristics. Results are cached per (kind, payload) so bulk re-scans do not
// hammer the remote service with identical requests.
func (c *Classifier) Classify(ctx context.Context, kind enums.ContentKind, payload string) Result {
	cacheKey := classifyCacheKey(kind, payload)
	if cached, ok := c.cache.Get(cacheKey); ok {
		if result, ok := cached.(Result); ok {
			return result
		}
	}

	result := c.classify(ctx, kind, payload)
	result = sanitizeResult(result)
	c.cache.Set(cacheKey, result, gocache.DefaultExpiration)
	return result
}

func (c *Classifier) classify(ctx context.Context, kind enums.ContentKind, payload string) Result {
	signals := DetectContext(payload)

	// Context auto-approval short-circuits the remote call for visual
	// content: the decision is already known and third-party classifiers
	// are notoriously noisy on professional-equipment imagery.
	useRemote := c.cfg.Configured() && !(kind.IsVisual() && signals.Any())
	if !useRemote {
		result, _ := c.local.Classify(ctx, kind, payload)
		return result
	}

	result, err := c.remote.Classify(ctx, kind, payload)
	if err != nil {
		c.logger.Warn("remote classification failed, using local heuristics",
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
		fallback, _ := c.local.Classify(ctx, kind, payload)
		return fallback
	}

	return result
}

func classifyCacheKey(kind enums.ContentKind, payload string) string {
	sum := sha256.Sum256([]byte(payload))
	return string(kind) + ":" + hex.EncodeToString(sum[:])
}

// sanitizeResult enforces the adapter postcondition the policy depends on:
// every base category present, all scores in [0,1], flags normalized.
func sanitizeResult(result Result) Result {
	if result.Categories == nil {
		result.Categories = make(map[string]float64, 4)
	}
	for _, name := range []string{CategoryAdult, CategoryViolence, CategoryHate, CategorySelfHarm} {
		if _, ok := result.Categories[name]; !ok {
			result.Categories[name] = localLowBaseline
		}
	}
	for name, score := range result.Categories {
		result.Categories[name] = clampScore(score)
	}
	result.Flags = NormalizeFlags(result.Flags)
	result.Confidence = confidenceFrom(result.Categories)
	return result
}

// LocalStrategy is the deterministic heuristic fallback. It has no pixel
// access, so visual kinds get fixed baselines reflecting the platform's
// adult-content tolerance; text kinds are scanned for curated keyword lists.
type LocalStrategy struct{}

func NewLocalStrategy() *LocalStrategy {
	return &LocalStrategy{}
}

var localKeywordLists = map[string][]string{
	CategoryViolence: {
		"gore",
		"beheading",
		"torture",
		"mutilation",
		"massacre",
		"shooting spree",
	},
	CategoryHate: {
		"ethnic cleansing",
		"racial slur",
		"gas the",
		"subhuman",
		"hate speech",
	},
	CategorySelfHarm: {
		"suicide",
		"self harm",
		"self-harm",
		"cutting myself",
		"kill myself",
		"overdose",
	},
}

func (s *LocalStrategy) Classify(_ context.Context, kind enums.ContentKind, payload string) (Result, error) {
	signals := DetectContext(payload)

	categories := map[string]float64{
		CategoryAdult:    localLowBaseline,
		CategoryViolence: localLowBaseline,
		CategoryHate:     localLowBaseline,
		CategorySelfHarm: localLowBaseline,
	}

	if kind.IsVisual() {
		categories[CategoryAdult] = localAdultBaseline
	} else {
		categories[CategoryAdult] = localTextAdultScore
		lower := strings.ToLower(payload)
		for category, keywords := range localKeywordLists {
			for _, keyword := range keywords {
				if strings.Contains(lower, keyword) {
					categories[category] = localTextKeywordScore
					break
				}
			}
		}
	}

	flags := []string{FlagAdultContentPlatform, FlagLocalHeuristics}
	flags = appendContextFlags(flags, signals)

	return Result{
		Confidence: confidenceFrom(categories),
		Categories: categories,
		Flags:      NormalizeFlags(flags),
		Reason:     "classified by local heuristics",
	}, nil
}

func appendContextFlags(flags []string, signals ContextSignals) []string {
	if signals.IsStudioContext {
		flags = append(flags, FlagStudioContext)
	}
	if signals.IsTechnicalEquipment {
		flags = append(flags, FlagTechnicalEquipment)
	}
	return flags
}

// RemoteStrategy calls the external classification service. All knowledge of
// the provider's wire format stays in this type.
type RemoteStrategy struct {
	cfg        ClassifierConfig
	httpClient *http.Client
}

func NewRemoteStrategy(cfg ClassifierConfig) *RemoteStrategy {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultClassifyTimeout
	}
	return &RemoteStrategy{
		cfg:        cfg,
		httpClient: httpclient.New(timeout),
	}
}

type remoteRequest struct {
	Kind string `json:"kind"`
	URL  string `json:"url,omitempty"`
	Text string `json:"text,omitempty"`
}

type remoteResponse struct {
	Scores map[string]float64 `json:"scores"`
	Labels []string           `json:"labels"`
}

// Provider category names mapped onto the engine's canonical ones.
var remoteCategoryAliases = map[string]string{
	"sexual":    CategoryAdult,
	"nudity":    CategoryAdult,
	"adult":     CategoryAdult,
	"violence":  CategoryViolence,
	"graphic":   CategoryViolence,
	"hate":      CategoryHate,
	"hateful":   CategoryHate,
	"self-harm": CategorySelfHarm,
	"self_harm": CategorySelfHarm,
}

func (s *RemoteStrategy) Classify(ctx context.Context, kind enums.ContentKind, payload string) (Result, error) {
	if s.httpClient == nil {
		return Result{}, fmt.Errorf("remote classifier http client is nil")
	}

	reqBody := remoteRequest{Kind: string(kind)}
	if kind.IsVisual() {
		reqBody.URL = payload
	} else {
		reqBody.Text = payload
	}

	encoded, err := json.Marshal(reqBody)
	if err != nil {
		return Result{}, fmt.Errorf("encode classification request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.Endpoint, bytes.NewReader(encoded))
	if err != nil {
		return Result{}, fmt.Errorf("build classification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("call classification service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("classification service returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Result{}, fmt.Errorf("read classification response: %w", err)
	}

	var decoded remoteResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return Result{}, fmt.Errorf("decode classification response: %w", err)
	}
	if len(decoded.Scores) == 0 {
		return Result{}, fmt.Errorf("classification response has no scores")
	}

	categories := make(map[string]float64, 4)
	for name, score := range decoded.Scores {
		canonical, ok := remoteCategoryAliases[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			continue
		}
		// Several provider labels can map to one category; keep the worst.
		score = clampScore(score)
		if existing, seen := categories[canonical]; !seen || score > existing {
			categories[canonical] = score
		}
	}
	for _, name := range []string{CategoryAdult, CategoryViolence, CategoryHate, CategorySelfHarm} {
		if _, ok := categories[name]; !ok {
			categories[name] = localLowBaseline
		}
	}

	signals := DetectContext(payload)
	flags := []string{FlagAdultContentPlatform, FlagRemoteClassifier}
	flags = append(flags, decoded.Labels...)
	flags = appendContextFlags(flags, signals)

	return Result{
		Confidence: confidenceFrom(categories),
		Categories: categories,
		Flags:      NormalizeFlags(flags),
		Reason:     "classified by remote service",
	}, nil
}
