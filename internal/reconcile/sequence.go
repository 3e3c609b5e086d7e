package reconcile

// Sequence merges incoming free-text items into existing ones. Existing items
// keep their order and casing; an incoming item is appended in its original
// casing unless it is empty or already present case-insensitively.
func Sequence(existing, incoming []string) []string {
	out := make([]string, 0, len(existing)+len(incoming))
	out = append(out, existing...)

	seen := make(map[string]struct{}, len(out)+len(incoming))
	for _, s := range out {
		seen[Normalize(s)] = struct{}{}
	}
	for _, s := range incoming {
		key := Normalize(s)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}
