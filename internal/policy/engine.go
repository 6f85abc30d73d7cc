package policy

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"go.uber.org/zap"

	"github.com/spec-kit/marketplace/internal/domain"
)

//go:embed model.conf
var embeddedModel string

//go:embed policy.csv
var embeddedPolicy string

// DecisionRecorder receives one call per gatekeeper decision.
type DecisionRecorder interface {
	RecordDecision(kind, outcome string)
}

// Engine evaluates route admission against the role hierarchy.
type Engine struct {
	table    *Table
	enforcer *casbin.SyncedEnforcer
	logger   *zap.Logger
	recorder DecisionRecorder
}

// Option customizes an Engine.
type Option func(*Engine)

// WithRules replaces the default route table.
func WithRules(rules []Rule) Option {
	return func(e *Engine) { e.table = NewTable(rules) }
}

// WithLogger sets the logger used for enforcement faults.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithRecorder attaches a decision recorder.
func WithRecorder(r DecisionRecorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// NewEngine loads the embedded casbin model and policy. The enforcer is not
// modified after construction.
func NewEngine(opts ...Option) (*Engine, error) {
	m, err := model.NewModelFromString(embeddedModel)
	if err != nil {
		return nil, fmt.Errorf("parse policy model: %w", err)
	}
	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create enforcer: %w", err)
	}
	if err := loadPolicy(enforcer, embeddedPolicy); err != nil {
		return nil, err
	}

	e := &Engine{
		table:    NewTable(DefaultRules),
		enforcer: enforcer,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func loadPolicy(enforcer *casbin.SyncedEnforcer, policy string) error {
	for _, line := range strings.Split(policy, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		switch {
		case parts[0] == "p" && len(parts) == 4:
			if _, err := enforcer.AddPolicy(parts[1], parts[2], parts[3]); err != nil {
				return fmt.Errorf("add policy %v: %w", parts[1:], err)
			}
		case parts[0] == "g" && len(parts) == 3:
			if _, err := enforcer.AddGroupingPolicy(parts[1], parts[2]); err != nil {
				return fmt.Errorf("add grouping policy %v: %w", parts[1:], err)
			}
		default:
			return fmt.Errorf("malformed policy line %q", line)
		}
	}
	return nil
}

// Classify returns the kind of a path.
func (e *Engine) Classify(path string) RouteKind {
	return e.table.Classify(path)
}

// ClassifyRequest returns the kind of a method and path pair.
func (e *Engine) ClassifyRequest(method, path string) RouteKind {
	return e.table.ClassifyRequest(method, path)
}

// Admit applies the role admission rule for a route kind. Unknown roles and
// kinds are denied.
func (e *Engine) Admit(role domain.Role, kind RouteKind) Outcome {
	if kind == KindPublic {
		return Allow
	}
	if !role.Valid() || !kind.Valid() {
		return Deny
	}
	ok, err := e.enforcer.Enforce(string(role), string(kind))
	if err != nil {
		e.logger.Error("policy enforcement failed", zap.String("role", string(role)), zap.String("kind", string(kind)), zap.Error(err))
		return Deny
	}
	if !ok {
		return Deny
	}
	return Allow
}

// Decide resolves the gatekeeper action for an optional identity. A nil
// identity is sent to the login page; a denied identity is sent to its own
// landing area for role-tier routes and to the forbidden page otherwise.
func (e *Engine) Decide(identity *Identity, kind RouteKind) Decision {
	d := e.decide(identity, kind)
	if e.recorder != nil {
		e.recorder.RecordDecision(string(kind), string(d.Outcome))
	}
	return d
}

func (e *Engine) decide(identity *Identity, kind RouteKind) Decision {
	if kind == KindPublic {
		return Decision{Outcome: Allow}
	}
	if identity == nil || !identity.Role.Valid() || identity.SubjectID == "" {
		return Decision{Outcome: Redirect, Location: LoginPath, Anonymous: true}
	}
	if e.Admit(identity.Role, kind) == Allow {
		return Decision{Outcome: Allow}
	}
	if kind.roleTier() {
		return Decision{Outcome: Redirect, Location: LandingPath(identity.Role)}
	}
	return Decision{Outcome: Redirect, Location: ForbiddenPath}
}
