package duplicate

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errUtils "github.com/andreatomassetti/ansible-variables/errors"
	"github.com/andreatomassetti/ansible-variables/pkg/occurrence"
	"github.com/andreatomassetti/ansible-variables/pkg/remover"
	"github.com/andreatomassetti/ansible-variables/pkg/schema"
)

func occ(path string, rank int) schema.Occurrence {
	return schema.Occurrence{Name: "timeout", Path: path, Label: path, Rank: rank, StartLine: 1, EndLine: 1}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name        string
		occurrences []schema.Occurrence
		wantNil     bool
		wantAuth    string
		wantDups    []string
	}{
		{name: "none", wantNil: true},
		{name: "single", occurrences: []schema.Occurrence{occ("a", 2)}, wantNil: true},
		{
			name:        "two",
			occurrences: []schema.Occurrence{occ("web", 2), occ("all", 1)},
			wantAuth:    "web",
			wantDups:    []string{"all"},
		},
		{
			name:        "three keeps order",
			occurrences: []schema.Occurrence{occ("host", 3), occ("web", 2), occ("all", 1)},
			wantAuth:    "host",
			wantDups:    []string{"web", "all"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := Detect("timeout", tt.occurrences)
			if tt.wantNil {
				assert.Nil(t, report)
				return
			}
			require.NotNil(t, report)
			assert.Equal(t, "timeout", report.Name)
			assert.Equal(t, tt.wantAuth, report.Authoritative.Path)

			var dups []string
			for _, d := range report.Duplicates {
				dups = append(dups, d.Path)
			}
			assert.Equal(t, tt.wantDups, dups)
		})
	}
}

func TestDetect_DoesNotAliasInput(t *testing.T) {
	occurrences := []schema.Occurrence{occ("web", 2), occ("all", 1)}
	report := Detect("timeout", occurrences)
	require.NotNil(t, report)

	occurrences[1].Path = "changed"

	assert.Equal(t, "all", report.Duplicates[0].Path)
}

func TestVerify(t *testing.T) {
	report := Detect("timeout", []schema.Occurrence{occ("web.yml", 2), occ("all.yml", 1)})

	tests := []struct {
		name    string
		winner  schema.Source
		wantErr bool
	}{
		{name: "winner is authoritative", winner: schema.Source{Path: "web.yml", VarsFile: true}},
		{name: "winner is extra vars", winner: schema.Source{Label: "extra vars"}},
		{name: "winner is inventory file", winner: schema.Source{Path: "hosts.ini"}},
		{name: "winner is a shadowed file", winner: schema.Source{Path: "all.yml", VarsFile: true}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Verify(report, tt.winner)
			if tt.wantErr {
				assert.ErrorIs(t, err, errUtils.ErrInconsistentPrecedence)
				return
			}
			assert.NoError(t, err)
		})
	}

	assert.NoError(t, Verify(nil, schema.Source{Path: "x", VarsFile: true}))
}

func TestVerifyUnmerged(t *testing.T) {
	report := Detect("users", []schema.Occurrence{occ("web1.yml", 3), occ("all.yml", 1)})

	tests := []struct {
		name         string
		contributors []schema.Source
		wantErr      bool
	}{
		{name: "winner alone", contributors: []schema.Source{{Path: "web1.yml", VarsFile: true}}},
		{name: "merged with inventory vars", contributors: []schema.Source{{Path: "hosts"}, {Path: "web1.yml", VarsFile: true}}},
		{
			name:         "merged with a duplicate",
			contributors: []schema.Source{{Path: "all.yml", VarsFile: true}, {Path: "web1.yml", VarsFile: true}},
			wantErr:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifyUnmerged(report, tt.contributors)
			if tt.wantErr {
				assert.ErrorIs(t, err, errUtils.ErrMergedValue)
				return
			}
			assert.NoError(t, err)
		})
	}

	assert.NoError(t, VerifyUnmerged(nil, nil))
}

func TestPlan_NeverTargetsAuthoritative(t *testing.T) {
	a := Detect("timeout", []schema.Occurrence{occ("host.yml", 3), occ("web.yml", 2), occ("all.yml", 1)})
	b := Detect("retries", []schema.Occurrence{
		{Name: "retries", Path: "web.yml", Rank: 2},
		{Name: "retries", Path: "all.yml", Rank: 1},
	})

	targets := Plan(a, nil, b)

	assert.Equal(t, []schema.RemovalTarget{
		{Path: "web.yml", Name: "timeout"},
		{Path: "all.yml", Name: "timeout"},
		{Path: "all.yml", Name: "retries"},
	}, targets)
	for _, target := range targets {
		if target.Name == "timeout" {
			assert.NotEqual(t, "host.yml", target.Path)
		}
	}
}

func TestPlan_Empty(t *testing.T) {
	assert.Empty(t, Plan())
	assert.Empty(t, Plan(nil))
}

type fakeRemover struct {
	calls []schema.RemovalTarget
	fail  map[string]error
}

func (f *fakeRemover) Remove(path, name string) error {
	f.calls = append(f.calls, schema.RemovalTarget{Path: path, Name: name})
	return f.fail[path]
}

func TestApply_CollectsFailuresAndContinues(t *testing.T) {
	boom := errUtils.Wrapf(errUtils.ErrRemoval, "write b").Err()
	rm := &fakeRemover{fail: map[string]error{"b": boom}}
	targets := []schema.RemovalTarget{{Path: "a", Name: "x"}, {Path: "b", Name: "x"}, {Path: "c", Name: "x"}}

	results := Apply(targets, rm)

	assert.Equal(t, targets, rm.calls)
	require.Len(t, results, 3)
	assert.True(t, results[0].OK())
	assert.False(t, results[1].OK())
	assert.True(t, results[2].OK())

	failed := Failed(results)
	require.Len(t, failed, 1)
	assert.True(t, errors.Is(failed[0], errUtils.ErrRemoval))
}

// End to end: after removing the planned targets only the authoritative
// occurrence remains and it still holds the resolved value.
func TestApply_KeepsAuthoritativeDefinition(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}
	all := write("all.yml", "timeout: 30\nretries: 3\n")
	web := write("web.yml", "timeout: 60\n")

	registry := schema.NewRegistry(&schema.Host{Name: "web1"}, []schema.Source{
		{Rank: 1, Label: "group_vars/all", Path: all, VarsFile: true},
		{Rank: 2, Label: "group_vars/web", Path: web, VarsFile: true},
	})
	locator := occurrence.NewLocator()

	report := Detect("timeout", locator.Find(registry, "timeout").Occurrences)
	require.NotNil(t, report)
	require.NoError(t, Verify(report, schema.Source{Path: web, VarsFile: true}))

	results := Apply(Plan(report), remover.New())
	require.Empty(t, Failed(results))

	assert.Equal(t, []string{web}, locator.Find(registry, "timeout").Paths())
	data, err := os.ReadFile(web)
	require.NoError(t, err)
	assert.Equal(t, "timeout: 60\n", string(data))
}
