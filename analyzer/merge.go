package analyzer

import "strings"

// MergeStructTypedefs rewrites a finished per-file forest, coalescing the
// C-family "anonymous aggregate, then typedef alias" idiom into single nodes.
// Children are rewritten before their sibling lists are scanned. Matched
// pairs are replaced with a fresh node; nothing is mutated in place, so
// re-running on an already-merged forest is a no-op.
func MergeStructTypedefs(nodes []*SymbolNode) []*SymbolNode {
	if len(nodes) == 0 {
		return nil
	}
	rewritten := make([]*SymbolNode, 0, len(nodes))
	for _, node := range nodes {
		children := MergeStructTypedefs(node.Children)
		if !sameNodeSlice(children, node.Children) {
			clone := *node
			clone.Children = children
			node = &clone
		}
		rewritten = append(rewritten, node)
	}

	out := make([]*SymbolNode, 0, len(rewritten))
	for i := 0; i < len(rewritten); i++ {
		cur := rewritten[i]
		if i+1 < len(rewritten) && mergeablePair(cur, rewritten[i+1]) {
			out = append(out, mergePair(cur, rewritten[i+1]))
			i++
			continue
		}
		out = append(out, cur)
	}
	return out
}

// mergeablePair requires the next sibling to be type-like, nested within the
// first's range, and the first to be anonymous or share the alias name.
func mergeablePair(first, second *SymbolNode) bool {
	if !isTypeLike(second.Kind) {
		return false
	}
	if !rangeWithin(second.Range, first.Range) {
		return false
	}
	return isAnonymousAggregate(first.Name) || first.Name == second.Name
}

// mergePair builds the replacement node: the aggregate's range and children
// under the typedef's name.
func mergePair(first, second *SymbolNode) *SymbolNode {
	merged := &SymbolNode{
		Name:           cleanName(second.Name),
		Kind:           first.Kind,
		File:           first.File,
		Range:          first.Range,
		Preview:        first.Preview,
		Documentation:  first.Documentation,
		TypeParameters: first.TypeParameters,
		Supertypes:     first.Supertypes,
		Children:       first.Children,
	}
	if !isTypeLike(merged.Kind) {
		merged.Kind = second.Kind
	}
	if merged.Preview == "" {
		merged.Preview = second.Preview
	}
	if merged.Documentation == "" {
		merged.Documentation = second.Documentation
	}
	if len(merged.TypeParameters) == 0 {
		merged.TypeParameters = second.TypeParameters
	}
	if len(merged.Supertypes) == 0 {
		merged.Supertypes = second.Supertypes
	}
	return merged
}

// isAnonymousAggregate matches the placeholder names servers assign to
// unnamed aggregates, e.g. "(anonymous struct)" from clangd.
func isAnonymousAggregate(name string) bool {
	if name == "" {
		return true
	}
	lower := strings.ToLower(name)
	return strings.Contains(lower, "anonymous") || strings.Contains(lower, "unnamed")
}

func sameNodeSlice(a, b []*SymbolNode) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
