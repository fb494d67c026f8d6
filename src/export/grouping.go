package export

import "strings"

// GroupPath computes the group placement for a service under the given
// strategy. Pure: the same inputs always yield the same path, so repeated
// records never ask the adapter for divergent spellings of one group.
func GroupPath(service string, strategy GroupStrategy) []string {
	switch strategy {
	case GroupFlat:
		return nil
	case GroupDomain:
		return []string{domainOf(service)}
	default:
		return []string{service}
	}
}

// domainOf reduces a service identifier to a registrable-domain-ish label:
// scheme, path and port stripped, lowercased, and hosts with more than two
// labels cut down to the rightmost two. Strings without a dot (localhost,
// plain application names) pass through after the same stripping.
func domainOf(service string) string {
	s := strings.ToLower(strings.TrimSpace(service))
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	}
	if i := strings.IndexByte(s, '/'); i >= 0 {
		s = s[:i]
	}
	if i := strings.IndexByte(s, ':'); i >= 0 {
		s = s[:i]
	}
	if s == "" {
		return service
	}
	if !strings.Contains(s, ".") {
		return s
	}
	labels := strings.Split(s, ".")
	if len(labels) > 2 {
		labels = labels[len(labels)-2:]
	}
	return strings.Join(labels, ".")
}
