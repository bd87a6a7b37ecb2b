package slack

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskflow/pkg/domain/interfaces"
	"github.com/secmon-lab/riskflow/pkg/domain/model"
	"github.com/slack-go/slack"
)

const (
	// DefaultCacheTTL is the default TTL for the user name cache
	DefaultCacheTTL = 10 * time.Minute
)

// cacheEntry holds a cached user name with expiration
type cacheEntry struct {
	name      string
	expiresAt time.Time
}

// Client posts workflow notifications to Slack. The recipient gets a direct
// message and the organization channel, when set, gets a copy.
type Client struct {
	api      *slack.Client
	cacheTTL time.Duration
	riskURL  string

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

var _ interfaces.Notifier = &Client{}

// Option is a functional option for client configuration
type Option func(*clientConfig)

type clientConfig struct {
	apiURL   string
	cacheTTL time.Duration
	riskURL  string
}

// WithAPIURL overrides the Slack API endpoint
func WithAPIURL(url string) Option {
	return func(c *clientConfig) {
		c.apiURL = url
	}
}

// WithCacheTTL sets the TTL for the user name cache
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *clientConfig) {
		c.cacheTTL = ttl
	}
}

// WithRiskURL sets a base URL that links each notification to its risk, e.g.
// https://grc.example.com/risks
func WithRiskURL(url string) Option {
	return func(c *clientConfig) {
		c.riskURL = url
	}
}

// New creates a new Slack notifier with the provided bot token
func New(token string, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, goerr.New("Slack bot token is required")
	}

	cfg := &clientConfig{cacheTTL: DefaultCacheTTL}
	for _, opt := range opts {
		opt(cfg)
	}

	var apiOpts []slack.Option
	if cfg.apiURL != "" {
		apiOpts = append(apiOpts, slack.OptionAPIURL(cfg.apiURL))
	}

	return &Client{
		api:      slack.New(token, apiOpts...),
		cacheTTL: cfg.cacheTTL,
		riskURL:  cfg.riskURL,
		cache:    make(map[string]cacheEntry),
	}, nil
}

// Notify sends the notification to its recipient and organization channel
func (c *Client) Notify(ctx context.Context, n *model.Notification) error {
	var targets []string
	if n.RecipientID != "" {
		targets = append(targets, n.RecipientID)
	}
	if n.Channel != "" {
		targets = append(targets, n.Channel)
	}
	if len(targets) == 0 {
		return nil
	}

	blocks := buildBlocks(n, c.displayName(ctx, n.RecipientID), c.riskURL)
	for _, target := range targets {
		if _, err := c.PostMessage(ctx, target, blocks, n.Message); err != nil {
			return goerr.Wrap(err, "failed to notify",
				goerr.V("target", target),
				goerr.V("risk_id", n.RiskID),
				goerr.V("action", n.Action))
		}
	}
	return nil
}

// PostMessage posts a Block Kit message to a channel or user and returns the message timestamp.
// The text parameter is used as a fallback for notifications.
func (c *Client) PostMessage(ctx context.Context, channelID string, blocks []slack.Block, text string) (string, error) {
	_, ts, err := c.api.PostMessageContext(ctx, channelID,
		slack.MsgOptionBlocks(blocks...),
		slack.MsgOptionText(text, false),
	)
	if err != nil {
		return "", goerr.Wrap(err, "failed to post Slack message", goerr.V("channel_id", channelID))
	}
	return ts, nil
}

// displayName resolves a user's real name with caching. Lookup failures fall
// back to the bare ID so a notification is never lost on a profile error.
func (c *Client) displayName(ctx context.Context, userID string) string {
	if userID == "" {
		return ""
	}

	now := time.Now()
	c.mu.RLock()
	entry, ok := c.cache[userID]
	c.mu.RUnlock()
	if ok && entry.expiresAt.After(now) {
		return entry.name
	}

	user, err := c.api.GetUserInfoContext(ctx, userID)
	if err != nil {
		return userID
	}
	name := user.RealName
	if name == "" {
		name = user.Name
	}

	c.mu.Lock()
	c.cache[userID] = cacheEntry{name: name, expiresAt: now.Add(c.cacheTTL)}
	c.mu.Unlock()
	return name
}
