package mapper

// rootSentinel stands in for "no parent" in the children index, so root
// entries and entries whose parent never appears share one bucket key.
const rootSentinel = ""

// activeBranch reduces a parent-pointer DAG to the single path the user
// last continued working with. Agents that allow regenerating a reply
// record multiple children off the same parent; only the path ending at
// the most recently produced leaf belongs in the canonical transcript.
//
// The entries must already be filtered to conversational, id-bearing
// records in their original log order. id and parent extract the link
// fields, which is all that differs between the tree formats.
func activeBranch[T any](entries []T, id, parent func(T) string) []T {
	if len(entries) == 0 {
		return entries
	}

	byID := make(map[string]int, len(entries))
	children := make(map[string][]int, len(entries))
	for i, entry := range entries {
		entryID := id(entry)
		if _, exists := byID[entryID]; !exists {
			byID[entryID] = i
		}
		parentID := parent(entry)
		if parentID == "" {
			parentID = rootSentinel
		}
		children[parentID] = append(children[parentID], i)
	}

	// The leaf is the last entry in raw order with no recorded children:
	// nothing in the log was produced as a reply to it. This picks the
	// most recently written branch tip, not the structurally deepest node.
	leaf := -1
	for i := len(entries) - 1; i >= 0; i-- {
		if len(children[id(entries[i])]) == 0 {
			leaf = i
			break
		}
	}
	if leaf == -1 {
		// Every entry has children (possible with duplicate ids); fall
		// back to the unreduced order rather than dropping everything.
		return entries
	}

	// Walk parent links back to the root, then reverse into
	// chronological order.
	var path []T
	index := leaf
	for {
		path = append(path, entries[index])
		parentID := parent(entries[index])
		if parentID == "" {
			break
		}
		next, ok := byID[parentID]
		if !ok {
			break
		}
		index = next
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
