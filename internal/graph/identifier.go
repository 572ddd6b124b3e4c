// Package graph implements the core TfData state: the graphdict, per-node
// metadata, the hidden set, and the identifier normalization rules from
// §3. It is the adaptation of the teacher's diagram/graph package to the
// pipeline's directed-multigraph-of-strings model.
package graph

import (
	"regexp"
	"strconv"
	"strings"
)

var reBracketIndex = regexp.MustCompile(`\[(\d+)\]$`)

// NormalizeID applies the §3 identifier rules: strip a leading
// "module.<mod>." prefix is NOT done here (callers decide whether module
// scoping matters for the comparison at hand); this only folds planner
// bracket-index notation `name[0]` into the pipeline's `~1`-based clone
// suffix, 0 becoming suffix 1.
func NormalizeID(id string) string {
	m := reBracketIndex.FindStringSubmatchIndex(id)
	if m == nil {
		return id
	}
	idxStr := id[m[2]:m[3]]
	idx, err := strconv.Atoi(idxStr)
	if err != nil {
		return id
	}
	base := id[:m[0]]
	return base + "~" + strconv.Itoa(idx+1)
}

// StripModule removes a leading "module.<name>." prefix for comparisons
// that must ignore module scoping.
func StripModule(id string) string {
	for strings.HasPrefix(id, "module.") {
		rest := strings.TrimPrefix(id, "module.")
		dot := strings.Index(rest, ".")
		if dot < 0 {
			return rest
		}
		id = rest[dot+1:]
	}
	return id
}

// TypeOf returns the "<type>" portion of a "<type>.<name>" identifier.
func TypeOf(id string) string {
	id = StripModule(id)
	dot := strings.Index(id, ".")
	if dot < 0 {
		return id
	}
	return id[:dot]
}

// NameOf returns the "<name>" portion, including any "~k" clone suffix.
func NameOf(id string) string {
	id = StripModule(id)
	dot := strings.Index(id, ".")
	if dot < 0 {
		return ""
	}
	return id[dot+1:]
}

// BaseID strips a "~k" clone suffix, returning the identifier of the node
// the clone was expanded from.
func BaseID(id string) string {
	if i := strings.LastIndex(id, "~"); i >= 0 {
		if _, err := strconv.Atoi(id[i+1:]); err == nil {
			return id[:i]
		}
	}
	return id
}

// CloneIndex returns the "~k" suffix's k, or 0 if id is not a numbered
// clone.
func CloneIndex(id string) int {
	if i := strings.LastIndex(id, "~"); i >= 0 {
		if n, err := strconv.Atoi(id[i+1:]); err == nil {
			return n
		}
	}
	return 0
}

// CloneID builds the identifier for the i-th numbered clone of base.
func CloneID(base string, i int) string {
	return base + "~" + strconv.Itoa(i)
}
