package typechecker

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is data, not code: the qualifier-combination table and the
// solver's branch-exploration budget, loaded the same way the teacher
// loads its package manifest (pkg/driver/manifest.go's yaml.Unmarshal
// into a typed struct, defaulting when the file is absent).
type Config struct {
	// QualifierCombinations lists the admissible {cst,mut,stk,shd,val,ref}
	// sets spec.md §3.1 requires; entries are "+"-joined flag names, e.g.
	// "cst+stk+val".
	QualifierCombinations []string `yaml:"qualifierCombinations"`

	// MaxExploredBranches bounds disjunction backtracking (spec.md §5's
	// "maximum-explored-branches budget"); 0 means unbounded.
	MaxExploredBranches int `yaml:"maxExploredBranches"`
}

// DefaultConfig returns the qualifier table spec.md §3.1 names as an
// example, with a generous default branch budget.
func DefaultConfig() *Config {
	combos := make([]string, len(defaultQualifierCombinations))
	for i, q := range defaultQualifierCombinations {
		combos[i] = q.String()
	}
	return &Config{
		QualifierCombinations: combos,
		MaxExploredBranches:   10000,
	}
}

// LoadConfig reads a YAML configuration file at path, falling back to
// DefaultConfig when path does not exist.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("typechecker: reading config %q: %w", path, err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("typechecker: parsing config %q: %w", path, err)
	}
	return cfg, nil
}

// qualifierSetFromString parses one "cst+stk+val"-shaped entry back into
// a Qualifier bitflag set.
func qualifierSetFromString(s string) Qualifier {
	var q Qualifier
	cur := ""
	flush := func() {
		q |= qualifierNames[cur]
		cur = ""
	}
	for _, r := range s {
		if r == '+' {
			flush()
			continue
		}
		cur += string(r)
	}
	flush()
	return q
}

// IsValidQualifierCombination reports whether q is one of cfg's admissible
// combinations.
func (cfg *Config) IsValidQualifierCombination(q Qualifier) bool {
	for _, s := range cfg.QualifierCombinations {
		if qualifierSetFromString(s) == q {
			return true
		}
	}
	return false
}
