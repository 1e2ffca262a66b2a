package pipeline

// ResumeFrom truncates a freshly fetched listing to start at the stored cursor
// value, inclusively: the unit that was in flight when the process died is
// retried in full, relying on the upsert engine's idempotence. When the cursor
// is empty or no longer present in the listing, the whole list is returned.
func ResumeFrom[T any](items []T, cursor string, keyOf func(T) string) []T {
	if cursor == "" {
		return items
	}

	for i, item := range items {
		if keyOf(item) == cursor {
			return items[i:]
		}
	}

	return items
}
