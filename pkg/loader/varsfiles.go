package loader

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	errUtils "github.com/andreatomassetti/ansible-variables/errors"
	log "github.com/andreatomassetti/ansible-variables/pkg/logger"
)

const (
	groupVarsDir = "group_vars"
	hostVarsDir  = "host_vars"
)

// varsExtensions are the extensions a vars file may have. The empty
// extension accepts files named exactly after the group or host.
var varsExtensions = []string{"", ".yml", ".yaml", ".json"}

// varsFile is a discovered vars file and its display label.
type varsFile struct {
	path  string
	label string
}

// findVarsFiles returns the vars files of name under base/kind:
// base/kind/name, base/kind/name.{yml,yaml,json} and every file below the
// directory base/kind/name, in lexical order.
func findVarsFiles(base, kind, name string) ([]varsFile, error) {
	dir := filepath.Join(base, kind)

	var files []varsFile
	for _, ext := range varsExtensions {
		path := filepath.Join(dir, name+ext)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			files = append(files, varsFile{path: path, label: varsLabel(base, path)})
		}
	}

	root := filepath.Join(dir, name)
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return files, nil
	}

	matches, err := doublestar.Glob(os.DirFS(root), "**", doublestar.WithFilesOnly(), doublestar.WithNoHidden())
	if err != nil {
		return nil, errUtils.Wrapf(errUtils.ErrSourceLoad, "list %s", root).
			WithFile(root).
			WithExplanation(err.Error()).
			Err()
	}
	sort.Strings(matches)

	for _, match := range matches {
		if !hasVarsExtension(match) {
			log.Trace("Skipping file with unknown extension", "file", filepath.Join(root, match))
			continue
		}
		path := filepath.Join(root, filepath.FromSlash(match))
		files = append(files, varsFile{path: path, label: varsLabel(base, path)})
	}
	return files, nil
}

func hasVarsExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range varsExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// varsLabel is the path relative to base, with forward slashes and without
// extension, e.g. "group_vars/all" or "host_vars/web1/network".
func varsLabel(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)
	if ext := filepath.Ext(rel); hasVarsExtension(rel) && ext != "" {
		rel = strings.TrimSuffix(rel, ext)
	}
	return rel
}

// readVarsFile parses a YAML or JSON vars file. The top level must be a
// mapping; an empty file defines nothing.
func readVarsFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errUtils.Wrapf(errUtils.ErrSourceLoad, "read %s", path).
			WithFile(path).
			WithExplanation(err.Error()).
			Err()
	}
	return parseVars(path, data)
}

func parseVars(path string, data []byte) (map[string]any, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, invalidVarsFile(path, err.Error())
	}
	if len(root.Content) == 0 {
		return nil, nil
	}

	doc := root.Content[0]
	if doc.Kind == yaml.ScalarNode && doc.Tag == "!!null" {
		return nil, nil
	}
	if doc.Kind != yaml.MappingNode {
		return nil, invalidVarsFile(path, "the top level must be a mapping of variable names to values")
	}

	vars := map[string]any{}
	if err := doc.Decode(&vars); err != nil {
		return nil, invalidVarsFile(path, err.Error())
	}
	return stringKeys(vars).(map[string]any), nil
}

func invalidVarsFile(path, explanation string) error {
	return errUtils.Wrapf(errUtils.ErrInvalidVarsFile, "%s", path).
		WithSentinel(errUtils.ErrSourceLoad).
		WithFile(path).
		WithExplanation(explanation).
		Err()
}
