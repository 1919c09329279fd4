package exec

import (
	"strings"

	"github.com/samber/lo"

	errUtils "github.com/andreatomassetti/ansible-variables/errors"
	"github.com/andreatomassetti/ansible-variables/pkg/duplicate"
	"github.com/andreatomassetti/ansible-variables/pkg/inventory"
	"github.com/andreatomassetti/ansible-variables/pkg/loader"
	log "github.com/andreatomassetti/ansible-variables/pkg/logger"
	"github.com/andreatomassetti/ansible-variables/pkg/occurrence"
	"github.com/andreatomassetti/ansible-variables/pkg/remover"
	"github.com/andreatomassetti/ansible-variables/pkg/resolver"
	"github.com/andreatomassetti/ansible-variables/pkg/schema"
)

// VariableReport is the per-variable output model.
type VariableReport = schema.VariableReport

// Printer renders the reports of a run.
type Printer interface {
	Print(reports []schema.HostReport) error
}

// VariablesRunner resolves, inspects and optionally de-duplicates the
// variables of the hosts matching a pattern.
type VariablesRunner struct {
	inv      *inventory.Inventory
	engine   *loader.Loader
	resolver *resolver.Resolver
	locator  *occurrence.Locator
	remover  duplicate.Remover
	opts     schema.RunOptions
}

// NewVariablesRunner loads the inventory and the variable engine described by config.
func NewVariablesRunner(config *schema.Configuration, opts schema.RunOptions) (*VariablesRunner, error) {
	inv, err := inventory.Load(config.Inventory...)
	if err != nil {
		return nil, err
	}

	engine, err := loader.New(inv,
		loader.WithPlaybookDir(config.PlaybookDir),
		loader.WithHashBehaviour(config.HashBehaviour),
		loader.WithExtraVars(opts.ExtraVars...),
	)
	if err != nil {
		return nil, err
	}

	if opts.RemoveDuplicates {
		opts.CheckDuplicates = true
	}

	return &VariablesRunner{
		inv:      inv,
		engine:   engine,
		resolver: resolver.New(engine),
		locator:  occurrence.NewLocator(),
		remover: remover.New(
			remover.WithLock(config.Remove.Lock),
			remover.WithLockRetries(config.Remove.LockRetries),
		),
		opts: opts,
	}, nil
}

// Run processes the matching hosts one at a time. Only the first host of
// each most specific group is reported. Removal failures do not stop the
// run; they are returned together once every host has been processed.
func (r *VariablesRunner) Run() ([]schema.HostReport, error) {
	if r.opts.Pattern == "" {
		return nil, errUtils.Build(errUtils.ErrMissingHost).
			WithHint("Pass a host, group or pattern, e.g. `ansible-variables web01`").
			WithExitCode(errUtils.ExitCodeOptionsError).
			Err()
	}

	hosts, err := r.inv.Hosts(r.opts.Pattern)
	if err != nil {
		return nil, err
	}

	var (
		reports []schema.HostReport
		failed  []error
	)
	for _, host := range partition(hosts) {
		report, errs, err := r.processHost(host)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
		failed = append(failed, errs...)
	}

	if r.opts.RemoveDuplicates {
		r.warnShared(reports)
	}

	if len(failed) > 0 {
		return reports, errUtils.Build(errUtils.ErrDuplicatesRemaining).
			WithContext("failed", len(failed)).
			WithHint("Fix the reported files and run again with `--remove-duplicates`").
			WithExitCode(1).
			Err()
	}
	return reports, nil
}

// partition keeps the first host of every most specific group.
func partition(hosts []*schema.Host) []*schema.Host {
	var out []*schema.Host
	seen := make(map[string]struct{})
	for _, host := range hosts {
		group := host.LastGroup()
		if _, ok := seen[group]; ok {
			log.Debug("Skipping host, its group is already reported", "host", host.Name, "group", group)
			continue
		}
		seen[group] = struct{}{}
		out = append(out, host)
	}
	return out
}

func (r *VariablesRunner) processHost(host *schema.Host) (schema.HostReport, []error, error) {
	log.Debug("Processing host", "host", host.Name, "group", host.LastGroup())

	report := schema.HostReport{Host: host.Name, Group: host.LastGroup()}

	registry, err := r.resolver.Sources(host)
	if err != nil {
		return report, nil, err
	}
	log.Trace("Loaded variable sources", "host", host.Name, "sources", registry.Len())

	variables, err := r.resolver.Resolve(host, r.opts.Variable)
	if err != nil {
		return report, nil, err
	}

	var failed []error
	for _, v := range variables {
		vr := VariableReport{Name: v.Name, Value: v.Value, Source: v.Source.Label}
		if r.opts.Verbosity >= 1 || r.opts.CheckDuplicates {
			failed = append(failed, r.inspect(host, registry, v, &vr)...)
		}
		report.Variables = append(report.Variables, vr)
	}
	return report, failed, nil
}

// inspect fills the occurrence and duplicate details of vr and removes the
// duplicates when requested.
func (r *VariablesRunner) inspect(host *schema.Host, registry *schema.Registry, v schema.Variable, vr *VariableReport) []error {
	result := r.locator.Find(registry, v.Name)
	if r.opts.Verbosity >= 1 {
		vr.Occurrences = result.Paths()
	}
	if !r.opts.CheckDuplicates {
		return nil
	}

	vr.Duplicates = duplicate.Detect(v.Name, result.Occurrences)
	if vr.Duplicates == nil || !r.opts.RemoveDuplicates {
		return nil
	}

	if err := duplicate.Verify(vr.Duplicates, v.Source); err != nil {
		log.Warn("Duplicates are kept", "variable", v.Name, "err", err)
		return nil
	}
	if err := duplicate.VerifyUnmerged(vr.Duplicates, r.engine.Contributors(host, v.Name)); err != nil {
		log.Warn("Duplicates are kept", "variable", v.Name, "err", err)
		return nil
	}

	vr.Removals = duplicate.Apply(duplicate.Plan(vr.Duplicates), r.remover)
	return duplicate.Failed(vr.Removals)
}

// warnShared logs every removed definition that hosts left out of the
// reports also load. Their resolved values may have changed.
func (r *VariablesRunner) warnShared(reports []schema.HostReport) {
	reported := make(map[string]struct{}, len(reports))
	for _, report := range reports {
		reported[report.Host] = struct{}{}
	}

	all, err := r.inv.Hosts(inventory.AllGroup)
	if err != nil {
		return
	}
	others := lo.Filter(all, func(h *schema.Host, _ int) bool {
		_, ok := reported[h.Name]
		return !ok
	})
	if len(others) == 0 {
		return
	}

	for _, report := range reports {
		for _, v := range report.Variables {
			for _, result := range v.Removals {
				if !result.OK() {
					continue
				}
				if hosts := r.hostsLoading(others, result.Target.Path); len(hosts) > 0 {
					log.Warn("Removed definition is also loaded by hosts that were not reported",
						"variable", v.Name, "file", result.Target.Path, "hosts", strings.Join(hosts, ","))
				}
			}
		}
	}
}

func (r *VariablesRunner) hostsLoading(hosts []*schema.Host, path string) []string {
	var names []string
	for _, h := range hosts {
		registry, err := r.resolver.Sources(h)
		if err != nil {
			log.Debug("Skipping host while checking shared files", "host", h.Name, "err", err)
			continue
		}
		if _, ok := registry.ByPath(path); ok {
			names = append(names, h.Name)
		}
	}
	return names
}

// ExecuteVariables runs the variables command and prints its reports.
// Reports are still printed when only some removals failed.
func ExecuteVariables(config *schema.Configuration, opts schema.RunOptions, printer Printer) error {
	runner, err := NewVariablesRunner(config, opts)
	if err != nil {
		return err
	}

	reports, runErr := runner.Run()
	if len(reports) > 0 {
		if err := printer.Print(reports); err != nil {
			return err
		}
	}
	return runErr
}
