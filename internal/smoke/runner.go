package smoke

import (
	"context"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"alertsmoke/internal/smoke/stub"
)

// Runner executes one smoke suite against a live platform. A Runner is
// single-use: create one per suite.
type Runner struct {
	cfg    Config
	logger Logger
	client *Client

	state *stub.State
	stubs *stub.Set

	admin       *AuthContext
	adminUserID string
	groupID     string

	resources *Registry
	outcomes  []CheckOutcome
	poller    Poller

	// alert is filled once the firing lifecycle scenario observed its
	// alert-history row; later scenarios read from it.
	alert AlertSnapshot
}

// NewRunner wires a runner from configuration.
func NewRunner(cfg Config, logger Logger) *Runner {
	state := stub.NewState()
	return &Runner{
		cfg:    cfg,
		logger: logger,
		client: NewClient(cfg.APIBase, cfg.HTTPTimeout, logger),
		state:  state,
		stubs: stub.NewSet(state, stub.Ports{
			Metrics:   cfg.MetricsPort,
			Webhook:   cfg.WebhookPort,
			ChatBot:   cfg.ChatBotPort,
			Messaging: cfg.MessagingPort,
		}),
		resources: NewRegistry(),
		poller: Poller{
			Timeout: cfg.PollTimeout,
			Step:    cfg.PollStep,
			Logger:  logger,
			Spin:    logger.IsVerboseEnabled(),
		},
	}
}

// Run executes the suite and returns all recorded outcomes. A non-nil
// error means the run aborted outside scenario execution; scenario
// failures are reported through the outcomes only.
func (r *Runner) Run(ctx context.Context, suite Suite) ([]CheckOutcome, error) {
	if err := r.stubs.Start(ctx); err != nil {
		return nil, &SetupError{Err: fmt.Errorf("failed to start stub servers: %w", err)}
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := r.stubs.Stop(stopCtx); err != nil {
			r.logger.Debug("stub shutdown: %v\n", err)
		}
	}()
	defer r.cleanup()

	if err := r.setup(ctx); err != nil {
		return r.outcomes, &SetupError{Err: err}
	}

	switch suite {
	case SuiteFast:
		r.runFast(ctx)
	case SuiteSlow:
		if err := r.runSlow(ctx); err != nil {
			return r.outcomes, &SetupError{Err: err}
		}
	default:
		return r.outcomes, &SetupError{Err: fmt.Errorf("unknown suite %q", suite)}
	}

	return r.outcomes, nil
}

// setup authenticates the admin and resolves the seed business group
// every created resource is attached to.
func (r *Runner) setup(ctx context.Context) error {
	result, err := r.client.Call(ctx, http.MethodPost, "/auth/login", map[string]interface{}{
		"username": r.cfg.AdminUser,
		"password": r.cfg.AdminPass,
	}, nil)
	if err != nil {
		return fmt.Errorf("admin login: %w", err)
	}
	token := stringField(result.Data(), "token")
	if token == "" {
		return Assertf("login response carried no token for user %s", r.cfg.AdminUser)
	}
	r.admin = NewAuthContext(token)
	r.adminUserID = stringField(objectField(result.Data(), "user"), "id")

	groups, err := r.client.Call(ctx, http.MethodGet, "/business-groups", nil, r.admin)
	if err != nil {
		return fmt.Errorf("list business groups: %w", err)
	}
	rows := groups.Rows()
	if len(rows) == 0 {
		return Assertf("no business group found, is the platform seeded?")
	}
	r.groupID = stringField(rows[0], "id")
	r.logger.Info("using business group %s\n", r.groupID)
	return nil
}

// Check runs one named scenario with failure isolation: errors and
// panics are recorded as a failed outcome and execution continues with
// the next scenario.
func (r *Runner) Check(name string, fn func() error) {
	r.logger.Info("🎯 %s\n", name)

	err := runIsolated(fn)
	if err != nil {
		r.logger.Error("❌ %s: %v\n", name, err)
		r.outcomes = append(r.outcomes, CheckOutcome{
			Name:   name,
			Status: StatusFail,
			Detail: err.Error(),
		})
		return
	}

	r.logger.Info("✅ %s\n", name)
	r.outcomes = append(r.outcomes, CheckOutcome{Name: name, Status: StatusOK})
}

func runIsolated(fn func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("scenario panicked: %v", rec)
		}
	}()
	return fn()
}

// Optional runs a side call whose failure must not affect any verdict.
func (r *Runner) Optional(label string, fn func() error) {
	if err := fn(); err != nil {
		r.logger.Debug("optional %s: %v\n", label, err)
	}
}

// cleanup deletes every registered resource with a fresh background
// context, in dependency order so rules go before the channels and
// templates they reference. Deletion failures only surface in debug
// output: cleanup is best effort.
func (r *Runner) cleanup() {
	if r.admin == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	order := []ResourceKind{KindRule, KindChannel, KindTemplate, KindSLAConfig, KindSchedule, KindUser}
	paths := map[ResourceKind]string{
		KindRule:      "/alert-rules/",
		KindChannel:   "/channels/",
		KindTemplate:  "/templates/",
		KindSLAConfig: "/sla/configs/",
		KindSchedule:  "/oncall/schedules/",
		KindUser:      "/users/",
	}
	for _, kind := range order {
		id, ok := r.resources.Get(kind)
		if !ok {
			continue
		}
		if _, err := r.client.Call(ctx, http.MethodDelete, paths[kind]+id, nil, r.admin); err != nil {
			r.logger.Debug("cleanup %s %s: %v\n", kind, id, err)
		} else {
			r.logger.Debug("cleaned up %s %s\n", kind, id)
		}
	}
}

// webhookURL is the address the platform must call to reach the
// webhook stub, from the platform's network perspective.
func (r *Runner) webhookURL() string {
	return fmt.Sprintf("http://%s:%d/hook", r.cfg.CallbackHost, r.stubs.Webhook.Port())
}

// chatBotAPIBase points the chat-bot channel at the chat-bot stub.
func (r *Runner) chatBotAPIBase() string {
	return fmt.Sprintf("http://%s:%d", r.cfg.CallbackHost, r.stubs.ChatBot.Port())
}

// messagingURL points the messaging channel at the messaging stub.
func (r *Runner) messagingURL() string {
	return fmt.Sprintf("http://%s:%d/lark", r.cfg.CallbackHost, r.stubs.Messaging.Port())
}

// metricsURL points alert rules at the metrics stub.
func (r *Runner) metricsURL() string {
	return fmt.Sprintf("http://%s:%d", r.cfg.CallbackHost, r.stubs.Metrics.Port())
}

// shortID yields a six-hex-character suffix to keep created resource
// names unique across runs.
func shortID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:3])
}
