// Package callo is the client SDK for the Callo productivity backend. It
// bundles the remote data gateway, the observable state store, the assistant
// conversation manager and the chat-completion client behind a single Client,
// wired together from environment configuration.
//
// Demo mode (the default) keeps all productivity data in memory; pointing the
// client at a backend with CALLO_BACKEND_URL switches every mutation to
// write-through persistence over the background executor.
package callo

import (
	"context"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/rishikanchi/Callo/assistant"
	"github.com/rishikanchi/Callo/completion"
	"github.com/rishikanchi/Callo/gateway"
	"github.com/rishikanchi/Callo/internal/config"
	"github.com/rishikanchi/Callo/internal/logger"
	"github.com/rishikanchi/Callo/internal/shardqueue"
	"github.com/rishikanchi/Callo/store"
)

// Config is the client's runtime configuration. See LoadConfig for the
// environment mapping.
type Config = config.Config

// LoadConfig resolves Config from CALLO_-prefixed environment variables.
func LoadConfig() (Config, error) { return config.Load() }

// Client is the top-level handle. Construct with New or NewFromEnv, release
// with Close.
type Client struct {
	cfg Config
	log zerolog.Logger

	exec *shardqueue.Executor
	gw   *gateway.Gateway
	st   *store.Store
	asst *assistant.Manager
	comp *completion.Client

	// construction knobs, set by options before wiring
	debug    bool
	demoData bool

	closedOnce uint32
}

// New wires a Client from cfg. In demo mode no gateway is constructed and the
// store starts seeded with sample data unless WithDemoData(false) says
// otherwise.
func New(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "callo: invalid config")
	}

	c := &Client{
		cfg:      cfg,
		log:      logger.New("callo"),
		demoData: cfg.DemoMode,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if c.exec == nil {
		qcfg, err := shardqueue.LoadConfig()
		if err != nil {
			return nil, errors.Wrap(err, "callo: executor config")
		}
		qcfg.ErrorHandler = func(err error) {
			c.log.Error().Err(err).Msg("background job exhausted retries")
		}
		c.exec = shardqueue.New(qcfg)
	}

	if c.gw == nil && !cfg.DemoMode {
		c.gw = gateway.New(cfg.BackendURL, cfg.BackendAnonKey,
			gateway.WithTimeout(cfg.HTTPTimeout),
			gateway.WithLogger(c.log))
	}

	storeOpts := []store.Option{
		store.WithExecutor(c.exec),
		store.WithLogger(c.log),
	}
	if c.gw != nil {
		storeOpts = append(storeOpts, store.WithGateway(c.gw))
	}
	if c.demoData {
		storeOpts = append(storeOpts, store.WithDemoData())
	}
	c.st = store.New(storeOpts...)

	comp, err := completion.New(cfg.CompletionURL, cfg.CompletionAPIKey,
		completion.WithHTTPTimeout(cfg.HTTPTimeout),
		completion.WithDebugLogging(c.debug))
	if err != nil {
		return nil, err
	}
	c.comp = comp
	c.asst = assistant.NewManager(comp,
		assistant.WithExecutor(c.exec),
		assistant.WithLogger(c.log))

	return c, nil
}

// NewFromEnv loads configuration from the environment and constructs a
// Client.
func NewFromEnv(opts ...Option) (*Client, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	return New(cfg, opts...)
}

// Close stops the background executor. Safe to call multiple times.
func (c *Client) Close() error {
	if !atomic.CompareAndSwapUint32(&c.closedOnce, 0, 1) {
		return nil
	}
	if c.exec != nil {
		c.exec.Stop()
	}
	return nil
}

// Store is the observable productivity state.
func (c *Client) Store() *store.Store { return c.st }

// Assistant is the conversation manager.
func (c *Client) Assistant() *assistant.Manager { return c.asst }

// Gateway is the remote data gateway, nil in demo mode.
func (c *Client) Gateway() *gateway.Gateway { return c.gw }

// Completions is the raw chat-completion client, for callers that want to
// bypass conversation bookkeeping entirely.
func (c *Client) Completions() *completion.Client { return c.comp }

// Ask sends a stateless one-shot question using the configured model.
func (c *Client) Ask(ctx context.Context, question string) (string, error) {
	return c.asst.AskQuestion(ctx, question, c.cfg.Model, c.cfg.Temperature)
}

// Chat sends one turn in an existing conversation using the configured model.
func (c *Client) Chat(ctx context.Context, conversationID, message string) (string, error) {
	return c.asst.Chat(ctx, conversationID, message, c.cfg.Model, c.cfg.Temperature)
}

// NewAssistantConversation starts a conversation pinned to a rendering of the
// store's current data. Requires a signed-in user.
func (c *Client) NewAssistantConversation() (string, error) {
	cs, err := assistant.BuildContext(c.st.Snapshot())
	if err != nil {
		return "", err
	}
	return c.asst.NewConversationFromSnapshot(cs), nil
}

// AwaitConsistency blocks until every background job previously submitted for
// key has run. Persistence jobs are keyed "user-<id>", chat turns by their
// conversation id.
func (c *Client) AwaitConsistency(ctx context.Context, key string) error {
	return c.exec.Barrier(ctx, key)
}
