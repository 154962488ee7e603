package gate

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/ibrahimkeyboad/agrilink/domain"
	"github.com/ibrahimkeyboad/agrilink/internal/authstate"
	"github.com/ibrahimkeyboad/agrilink/internal/profile"
)

// Route names for the client shell. Onboarding screens form one group; the
// main app lives under tabs.
const (
	RouteAuth         = "/onboarding/auth"
	RouteProfileSetup = "/onboarding/profile-setup"
	RouteShopLocation = "/onboarding/shop-location"
	RouteShopDetails  = "/onboarding/shop-details"
	RouteTabs         = "/tabs"
)

// InOnboardingGroup reports whether route belongs to the onboarding flow
func InOnboardingGroup(route string) bool {
	return strings.HasPrefix(route, "/onboarding")
}

// InTabsGroup reports whether route belongs to the main app
func InTabsGroup(route string) bool {
	return strings.HasPrefix(route, RouteTabs)
}

// Redirector performs navigation on behalf of the gate
type Redirector interface {
	Redirect(route string)
}

// CompletionSource answers where a user stands in onboarding
type CompletionSource interface {
	Completion(ctx context.Context, userID string) profile.Completion
}

// Decide is the pure routing rule. It returns the route to redirect to and
// whether a redirect is wanted at all.
//
// No decision is made before the auth state has settled: redirecting on a
// half-initialized snapshot would bounce a signed-in user through the auth
// screen on every cold start. Screens inside the onboarding group drive their
// own forward navigation, so the gate never redirects within the group; its
// job is guarding the boundary.
func Decide(snap domain.AuthSnapshot, completion profile.Completion, current string) (string, bool) {
	if !snap.Initialized || snap.Loading {
		return "", false
	}

	inOnboarding := InOnboardingGroup(current)

	if !snap.Authenticated() {
		if inOnboarding {
			return "", false
		}
		return RouteAuth, true
	}

	if inOnboarding {
		return "", false
	}

	switch completion.Status {
	case domain.CompletionNeedsName:
		return RouteProfileSetup, true
	case domain.CompletionNeedsShopAddress:
		return RouteShopLocation, true
	}

	// Profile fields are complete; the flag records whether the user saw the
	// final shop-details step. Without it they are sent there once, with it
	// anything outside tabs lands back in the app.
	if !completion.OnboardingCompleted {
		return RouteShopDetails, true
	}
	if !InTabsGroup(current) {
		return RouteTabs, true
	}
	return "", false
}

// Gate observes auth snapshots and the current route, and issues redirects
// through the Redirector. Completion lookups run asynchronously; a lookup that
// raced with a newer snapshot or route change is discarded.
type Gate struct {
	profiles   CompletionSource
	redirector Redirector
	log        *zap.Logger

	mu    sync.Mutex
	route string
	snap  domain.AuthSnapshot
	rev   uint64

	evalWG sync.WaitGroup
}

// New creates a gate; Attach wires it to a store
func New(profiles CompletionSource, redirector Redirector, log *zap.Logger) *Gate {
	return &Gate{
		profiles:   profiles,
		redirector: redirector,
		log:        log,
		route:      RouteAuth,
	}
}

// Attach subscribes the gate to store snapshots and evaluates the current one.
// The returned func detaches.
func (g *Gate) Attach(store *authstate.Store) func() {
	unsubscribe := store.Subscribe(g.OnSnapshot)
	g.OnSnapshot(store.Snapshot())
	return unsubscribe
}

// OnSnapshot records a new auth snapshot and re-evaluates routing
func (g *Gate) OnSnapshot(snap domain.AuthSnapshot) {
	g.mu.Lock()
	g.snap = snap
	g.rev++
	rev := g.rev
	route := g.route
	g.mu.Unlock()

	g.evaluate(snap, route, rev)
}

// SetRoute records a navigation (user-initiated or our own redirect landing)
// and re-evaluates routing against it
func (g *Gate) SetRoute(route string) {
	g.mu.Lock()
	g.route = route
	g.rev++
	rev := g.rev
	snap := g.snap
	g.mu.Unlock()

	g.evaluate(snap, route, rev)
}

// Route returns the route the gate currently believes the client is on
func (g *Gate) Route() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.route
}

// Wait blocks until in-flight evaluations have finished
func (g *Gate) Wait() {
	g.evalWG.Wait()
}

func (g *Gate) evaluate(snap domain.AuthSnapshot, route string, rev uint64) {
	// The cheap checks need no profile lookup.
	if !snap.Initialized || snap.Loading {
		return
	}

	if !snap.Authenticated() {
		if target, ok := Decide(snap, profile.Completion{}, route); ok {
			g.redirect(target, rev)
		}
		return
	}

	userID := snap.Session.UserID
	g.evalWG.Add(1)
	go func() {
		defer g.evalWG.Done()
		completion := g.profiles.Completion(context.Background(), userID)

		g.mu.Lock()
		stale := rev != g.rev
		g.mu.Unlock()
		if stale {
			return
		}

		if target, ok := Decide(snap, completion, route); ok {
			g.redirect(target, rev)
		}
	}()
}

func (g *Gate) redirect(target string, rev uint64) {
	g.mu.Lock()
	if rev != g.rev || g.route == target {
		g.mu.Unlock()
		return
	}
	g.route = target
	g.rev++
	g.mu.Unlock()

	g.log.Debug("redirecting", zap.String("route", target))
	g.redirector.Redirect(target)
}
