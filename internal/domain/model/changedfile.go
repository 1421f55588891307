package model

// ChangedFile is one entry from the pull request's file listing. Patch holds
// the file's unified-diff text and is empty when the API withholds it
// (binary files, oversized diffs).
type ChangedFile struct {
	Path         string
	PreviousPath string // Set for renames.
	Status       string // "added", "modified", "removed", "renamed".
	Patch        string
	Additions    int
	Deletions    int
}

// HasPatch reports whether diff text is available for location validation.
func (f ChangedFile) HasPatch() bool {
	return f.Patch != ""
}
