package metrics

import (
	"fmt"
	"sort"
	"strings"

	"git.home.luguber.info/inful/eventmetrics/internal/keycloak"
)

// DefaultProvider tags events that carry no identity_provider detail.
const DefaultProvider = "keycloak"

// seriesDef is one counter a specialized event increments.
type seriesDef struct {
	suffix    string
	help      string
	withError bool
}

var (
	loginAttempts      = seriesDef{suffix: "login_attempts", help: "Total number of login attempts"}
	logins             = seriesDef{suffix: "logins", help: "Total successful logins"}
	failedLogins       = seriesDef{suffix: "failed_login_attempts", help: "Total failed login attempts", withError: true}
	registrations      = seriesDef{suffix: "registrations", help: "Total registered users"}
	registrationErrors = seriesDef{suffix: "registrations_errors", help: "Total errors on registrations", withError: true}
	refreshTokens      = seriesDef{suffix: "refresh_tokens", help: "Total number of successful token refreshes"}
	refreshTokenErrors = seriesDef{suffix: "refresh_tokens_errors", help: "Total number of failed token refreshes", withError: true}
	clientLogins       = seriesDef{suffix: "client_logins", help: "Total successful client logins"}
	failedClientLogins = seriesDef{suffix: "failed_client_login_attempts", help: "Total failed client login attempts", withError: true}
	codeToTokens       = seriesDef{suffix: "code_to_tokens", help: "Total number of successful code to token"}
	codeToTokensErrors = seriesDef{suffix: "code_to_tokens_errors", help: "Total number of failed code to token", withError: true}
)

// policies maps each specialized event type to the series it feeds.
// login_attempts is shared by LOGIN and LOGIN_ERROR and never carries the
// error tag, so its key set stays the same for both.
var policies = map[keycloak.EventType][]seriesDef{
	keycloak.EventLogin:             {loginAttempts, logins},
	keycloak.EventLoginError:        {loginAttempts, failedLogins},
	keycloak.EventRegister:          {registrations},
	keycloak.EventRegisterError:     {registrationErrors},
	keycloak.EventRefreshToken:      {refreshTokens},
	keycloak.EventRefreshTokenError: {refreshTokenErrors},
	keycloak.EventClientLogin:       {clientLogins},
	keycloak.EventClientLoginError:  {failedClientLogins},
	keycloak.EventCodeToToken:       {codeToTokens},
	keycloak.EventCodeToTokenError:  {codeToTokensErrors},
}

// PolicySet is the set of event types routed to specialized policies.
type PolicySet map[keycloak.EventType]struct{}

// Named policy sets.
const (
	PolicySetMinimal = "minimal"
	PolicySetFull    = "full"
)

// MinimalPolicies covers login, login failure and registration.
func MinimalPolicies() PolicySet {
	return newPolicySet(keycloak.EventLogin, keycloak.EventLoginError, keycloak.EventRegister)
}

// FullPolicies covers every event type with a specialized policy.
func FullPolicies() PolicySet {
	types := make([]keycloak.EventType, 0, len(policies))
	for t := range policies {
		types = append(types, t)
	}
	return newPolicySet(types...)
}

// ParsePolicySet resolves a policy set by name. The empty name selects the
// full set.
func ParsePolicySet(name string) (PolicySet, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PolicySetFull:
		return FullPolicies(), nil
	case PolicySetMinimal:
		return MinimalPolicies(), nil
	default:
		return nil, fmt.Errorf("unknown policy set %q (want %s or %s)", name, PolicySetMinimal, PolicySetFull)
	}
}

func newPolicySet(types ...keycloak.EventType) PolicySet {
	s := make(PolicySet, len(types))
	for _, t := range types {
		s[t] = struct{}{}
	}
	return s
}

// Has reports whether t is routed to a specialized policy.
func (s PolicySet) Has(t keycloak.EventType) bool {
	_, ok := s[t]
	return ok
}

// Types lists the members in lexical order.
func (s PolicySet) Types() []keycloak.EventType {
	types := make([]keycloak.EventType, 0, len(s))
	for t := range s {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// identityProvider returns the brokered provider alias or the fallback.
func identityProvider(ev *keycloak.Event, fallback string) string {
	if p := ev.Detail(keycloak.DetailIdentityProvider); p != "" {
		return p
	}
	return fallback
}

// applyPolicy increments every series of the specialized policy for ev.
// All series are attempted; the first error is returned.
func (l *Listener) applyPolicy(ev *keycloak.Event, realm string) error {
	base := NewTags(
		TagRealm, realm,
		TagProvider, identityProvider(ev, l.defaultProvider),
		TagClientID, ev.ClientID,
	)
	var first error
	for _, spec := range policies[ev.Type] {
		tags := base
		if spec.withError {
			tags = base.With(TagError, ev.Error)
		}
		c := l.registry.GetOrCreateCounter(l.names.Series(spec.suffix), spec.help)
		if err := c.Inc(tags); err != nil && first == nil {
			first = err
		}
	}
	return first
}
