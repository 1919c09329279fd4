// Package resolver produces the user-visible variable set of a host from the
// layered configuration engine.
package resolver

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -source=$GOFILE -destination=mock_engine_test.go -package=$GOPACKAGE

import (
	"sort"

	"github.com/cockroachdb/errors"

	errUtils "github.com/andreatomassetti/ansible-variables/errors"
	log "github.com/andreatomassetti/ansible-variables/pkg/logger"
	"github.com/andreatomassetti/ansible-variables/pkg/schema"
)

// Engine is the layered configuration engine the resolver delegates
// precedence decisions to.
type Engine interface {
	// LoadSources returns the precedence chain applicable to host.
	LoadSources(host *schema.Host) (*schema.Registry, error)
	// ResolveRaw returns the winning value and source of every variable of
	// host, or of filter alone when filter is not empty.
	ResolveRaw(host *schema.Host, filter string) ([]schema.Variable, error)
}

// Resolver filters and orders the engine's resolution.
type Resolver struct {
	engine Engine
}

// New creates a Resolver.
func New(engine Engine) *Resolver {
	return &Resolver{engine: engine}
}

// Sources returns the precedence chain of host.
func (r *Resolver) Sources(host *schema.Host) (*schema.Registry, error) {
	if host == nil {
		return nil, errUtils.ErrMissingHost
	}

	registry, err := r.engine.LoadSources(host)
	if err != nil {
		return nil, errUtils.Build(errors.Wrapf(err, "load sources for host %s", host.Name)).
			WithSentinel(errUtils.ErrSourceLoad).
			WithContext("host", host.Name).
			Err()
	}
	return registry, nil
}

// Resolve returns the variables of host sorted by name, or only variable
// when it is not empty. Internal names are never returned.
func (r *Resolver) Resolve(host *schema.Host, variable string) ([]schema.Variable, error) {
	if host == nil {
		return nil, errUtils.ErrMissingHost
	}
	if variable != "" && IsInternal(variable) {
		log.Debug("Variable is internal and not shown", "host", host.Name, "variable", variable)
		return nil, nil
	}

	raw, err := r.engine.ResolveRaw(host, variable)
	if err != nil {
		return nil, errUtils.Build(errors.Wrapf(err, "resolve variables for host %s", host.Name)).
			WithSentinel(errUtils.ErrSourceLoad).
			WithContext("host", host.Name).
			Err()
	}

	vars := make([]schema.Variable, 0, len(raw))
	for _, v := range raw {
		if IsInternal(v.Name) {
			continue
		}
		if variable != "" && v.Name != variable {
			continue
		}
		vars = append(vars, v)
	}

	sort.SliceStable(vars, func(i, j int) bool {
		return vars[i].Name < vars[j].Name
	})

	log.Trace("Resolved variables", "host", host.Name, "count", len(vars))
	return vars, nil
}
