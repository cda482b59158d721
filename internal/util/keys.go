package util

// EntryKey returns the namespaced storage key for a cached payload. Both
// provider variants must agree on this mapping so their entries are
// interchangeable.
func EntryKey(ns, key string) string {
	return "entry:" + ns + ":" + key
}
