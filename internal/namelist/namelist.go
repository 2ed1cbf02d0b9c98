package namelist

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/matzegoebel/run-wrf/internal/utils"
)

// FileName is the canonical namelist file name inside a run directory.
const FileName = "namelist.input"

var entryRe = regexp.MustCompile(`^\s*([A-Za-z0-9_]+)\s*=\s*(.+?)\s*,?\s*$`)

// ReadFile parses a Fortran namelist file into an ordered parameter map.
// Section markers (&time_control, /) are skipped; values keep their raw
// typed form (see Parse). Comments starting with ! are stripped.
func ReadFile(path string) (*Params, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNamelistNotFound, path)
		}
		return nil, err
	}
	defer file.Close()

	params := NewParams()
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if idx := strings.Index(line, "!"); idx >= 0 {
			line = line[:idx]
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "&") || trimmed == "/" {
			continue
		}
		m := entryRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		params.Set(strings.ToLower(m[1]), Parse(m[2]))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return params, nil
}

// CheckCollisions verifies that none of the orchestrator-managed keys is
// already defined in the given namelist. A collision must be fixed by
// renaming the parameter, never by silently merging.
func CheckCollisions(nl *Params, managed []string) error {
	for _, key := range managed {
		if nl.Has(key) {
			return &CollisionError{Param: key}
		}
	}
	return nil
}

// PatchFile rewrites the namelist at path, replacing the values of keys
// present in updates and appending any missing keys after the first
// section header. The original line order is preserved.
func PatchFile(path string, updates *Params) error {
	lines, err := utils.ReadLines(path)
	if err != nil {
		return fmt.Errorf("read namelist %s: %w", path, err)
	}

	remaining := updates.Clone()
	out := make([]string, 0, len(lines)+remaining.Len())
	for _, line := range lines {
		if m := entryRe.FindStringSubmatch(line); m != nil {
			key := strings.ToLower(m[1])
			if v, ok := remaining.Get(key); ok {
				out = append(out, fmt.Sprintf(" %s = %s,", key, v.String()))
				remaining.Delete(key)
				continue
			}
		}
		out = append(out, line)
	}

	if remaining.Len() > 0 {
		// Insert leftover keys right after the first section header so
		// they land in &time_control, where the restart keys belong.
		inserted := false
		withNew := make([]string, 0, len(out)+remaining.Len())
		for _, line := range out {
			withNew = append(withNew, line)
			if !inserted && strings.HasPrefix(strings.TrimSpace(line), "&") {
				for _, k := range remaining.Keys() {
					v, _ := remaining.Get(k)
					withNew = append(withNew, fmt.Sprintf(" %s = %s,", k, v.String()))
				}
				inserted = true
			}
		}
		if !inserted {
			for _, k := range remaining.Keys() {
				v, _ := remaining.Get(k)
				withNew = append(withNew, fmt.Sprintf(" %s = %s,", k, v.String()))
			}
		}
		out = withNew
	}

	return os.WriteFile(path, []byte(strings.Join(out, "\n")+"\n"), utils.PermFile)
}
