package extract

import "strings"

// SplitList turns the lines of a list section into items. Marked lines start
// items and unmarked lines continue the previous one; a blank line followed by
// unmarked text ends a marked list. Without any markers every non-blank line
// is an item. A single item containing ';' is split on ';'.
func SplitList(lines []string) []string {
	marked := false
	for _, l := range lines {
		if len(listItemMatcher.Match(l)) > 0 {
			marked = true
			break
		}
	}

	var items []string
	if !marked {
		for _, l := range lines {
			if s := strings.TrimSpace(l); s != "" {
				items = append(items, s)
			}
		}
		return splitSemicolons(items)
	}

	afterBlank := false
	for _, l := range lines {
		s := strings.TrimSpace(l)
		if s == "" {
			afterBlank = true
			continue
		}
		if ms := listItemMatcher.Match(l); len(ms) > 0 {
			items = append(items, ms[0].Value)
			afterBlank = false
			continue
		}
		switch {
		case len(items) == 0:
			items = append(items, s)
		case afterBlank:
			return splitSemicolons(items)
		default:
			items[len(items)-1] += " " + s
		}
		afterBlank = false
	}
	return splitSemicolons(items)
}

func splitSemicolons(items []string) []string {
	if len(items) != 1 || !strings.Contains(items[0], ";") {
		return items
	}
	var out []string
	for _, part := range strings.Split(items[0], ";") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
