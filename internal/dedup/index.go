package dedup

import "sync"

// Index maps content hashes to the path of the first file saved with
// that hash.
type Index struct {
	// mu protects paths.
	mu sync.Mutex

	// paths maps content hash to the first saved path for that hash.
	// The empty string marks a hash that has been claimed but whose
	// file is still being written.
	paths map[string]string
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{paths: make(map[string]string)}
}

// CheckAndInsert atomically checks whether hash is already known and
// claims it if not. Under concurrent calls with the same hash, exactly
// one caller observes wasNew = true; all others observe false. The
// winner is expected to save the file and then call RecordPath.
func (i *Index) CheckAndInsert(hash string) (wasNew bool) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if _, ok := i.paths[hash]; ok {
		return false
	}

	i.paths[hash] = ""
	return true
}

// RecordPath stores the saved path for a previously claimed hash.
func (i *Index) RecordPath(hash, path string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.paths[hash] = path
}

// Path returns the saved path for a hash, or an empty string when the
// hash is unknown or its file is still being written.
func (i *Index) Path(hash string) string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.paths[hash]
}

// Len returns the number of distinct hashes seen so far.
func (i *Index) Len() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.paths)
}
