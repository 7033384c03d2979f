package authz

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
)

// Identity is the verified claim extracted from an access token.
type Identity struct {
	UserID uuid.UUID
	Role   Role
}

// TokenVerifier validates a raw credential and reconstructs the identity
// embedded in it. Implementations must not touch any store.
type TokenVerifier interface {
	Verify(rawToken string) (Identity, error)
}

// Request is the framework-agnostic view of an inbound request the engine
// decides on.
type Request struct {
	Method string
	Path   string
	Token  string
}

// Outcome enumerates the terminal states of an authorization decision.
type Outcome int

const (
	// OutcomeAllow lets the request proceed, carrying Identity when the
	// route was protected.
	OutcomeAllow Outcome = iota
	// OutcomeRedirect sends a browser to Location.
	OutcomeRedirect
	// OutcomeFail terminates the request with a JSON failure body.
	OutcomeFail
)

// Decision is the result of Engine.Decide.
type Decision struct {
	Outcome  Outcome
	Identity *Identity
	Location string
	Status   int
	Message  string
}

// Client-facing failure messages.
const (
	MsgInvalidToken = "Invalid or expired access token"
	MsgNoAccess     = "You don't have access to this resource"
	MsgUserGone     = "User not found"
	MsgStaleRole    = "Your access rights have changed, please log in again"
	MsgServerError  = "Something went wrong"
)

// Redirect targets for page-route denials.
const (
	LoginPath     = "/auth/login"
	ForbiddenPath = "/forbidden"
	HomePath      = "/"
)

// Engine decides whether a request may proceed. All checks are fail-closed:
// the request is denied unless every applicable check explicitly passes.
// The policy table and matcher are read-only after construction, so a single
// Engine is safe for unlimited concurrent use.
type Engine struct {
	policy   *Policy
	verifier TokenVerifier
	reverify Reverifier
	logger   *slog.Logger
}

// NewEngine constructs an Engine. reverify may be nil for deployments that
// accept token-lifetime staleness (tests, read replicas).
func NewEngine(policy *Policy, verifier TokenVerifier, reverify Reverifier, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{policy: policy, verifier: verifier, reverify: reverify, logger: logger}
}

// Decide classifies the request and walks it through token verification,
// the role check and, for API routes, the freshness re-validation.
func (e *Engine) Decide(ctx context.Context, req Request) Decision {
	// Credential establishment pages stay reachable no matter what; their
	// whole purpose is to mint or refresh the token being judged here.
	if e.policy.IsBypassPage(req.Path) {
		return allow(nil)
	}

	// A request that already carries a valid credential has no business on
	// the login/register pages.
	if e.policy.IsAuthPage(req.Path) {
		if req.Token != "" {
			if _, err := e.verifier.Verify(req.Token); err == nil {
				return redirect(HomePath)
			}
		}
		return allow(nil)
	}

	if rule, ok := e.policy.FindPageRule(req.Path); ok {
		return e.decidePage(rule, req)
	}

	if hasPathPrefix(req.Path, e.policy.APIPrefix()) {
		return e.decideAPI(ctx, req)
	}

	// Public content never requires a token round-trip.
	return allow(nil)
}

func (e *Engine) decidePage(rule PageRule, req Request) Decision {
	if req.Token == "" {
		return redirect(LoginPath)
	}
	identity, err := e.verifier.Verify(req.Token)
	if err != nil {
		return redirect(LoginPath)
	}
	if !rule.Allows(identity.Role) {
		return redirect(ForbiddenPath)
	}
	return allow(&identity)
}

func (e *Engine) decideAPI(ctx context.Context, req Request) Decision {
	rule, ok := e.policy.FindAPIRule(req.Method, req.Path)
	if !ok {
		// No rule means public API; proceed without identity.
		return allow(nil)
	}
	if req.Token == "" {
		return fail(http.StatusUnauthorized, MsgInvalidToken)
	}
	identity, err := e.verifier.Verify(req.Token)
	if err != nil {
		return fail(http.StatusUnauthorized, MsgInvalidToken)
	}
	if !rule.Allows(identity.Role) {
		return fail(http.StatusForbidden, MsgNoAccess)
	}
	if e.reverify != nil {
		switch err := e.reverify.Reverify(ctx, identity.UserID, identity.Role); {
		case errors.Is(err, ErrIdentityGone):
			return fail(http.StatusNotFound, MsgUserGone)
		case errors.Is(err, ErrRoleDrift):
			return fail(http.StatusForbidden, MsgStaleRole)
		case err != nil:
			// Infrastructure fault, not a policy decision.
			e.logger.Error("authz reverify", slog.Any("error", err))
			return fail(http.StatusInternalServerError, MsgServerError)
		}
	}
	return allow(&identity)
}

func allow(identity *Identity) Decision {
	return Decision{Outcome: OutcomeAllow, Identity: identity}
}

func redirect(location string) Decision {
	return Decision{Outcome: OutcomeRedirect, Location: location}
}

func fail(status int, message string) Decision {
	return Decision{Outcome: OutcomeFail, Status: status, Message: message}
}

// hasPathPrefix matches on whole segments so /apifoo is not an API route.
func hasPathPrefix(path, prefix string) bool {
	if len(path) < len(prefix) || path[:len(prefix)] != prefix {
		return false
	}
	return len(path) == len(prefix) || path[len(prefix)] == '/'
}
