package tree

import "strings"

// ChainPaths turns a flat list into the paths of a single-branch chain, so a
// linear sequence (a tech stack, a pipeline) renders through the same engine:
// ["React", "Vite", "Tailwind"] becomes ["React", "React/Vite",
// "React/Vite/Tailwind"].
//
// A separator inside an item is replaced with "-" so each item stays one
// segment. Blank items are skipped.
func ChainPaths(items []string) []string {
	out := make([]string, 0, len(items))
	prefix := ""
	for _, item := range items {
		item = strings.TrimSpace(strings.ReplaceAll(item, Separator, "-"))
		if item == "" {
			continue
		}
		if prefix == "" {
			prefix = item
		} else {
			prefix += Separator + item
		}
		out = append(out, prefix)
	}
	return out
}
