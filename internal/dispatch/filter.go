package dispatch

// Eligible reports whether n has content to deliver.
func Eligible(n RecipientNotification) bool {
	return n.NewsContent != ""
}

// Partition splits batch into eligible and skipped recipients, preserving
// input order in both.
func Partition(batch []RecipientNotification) (eligible, skipped []RecipientNotification) {
	for _, n := range batch {
		if Eligible(n) {
			eligible = append(eligible, n)
		} else {
			skipped = append(skipped, n)
		}
	}
	return eligible, skipped
}
