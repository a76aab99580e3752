package models

// DuplicateScan is the result of a duplicate-account scan. Duplicates holds
// every non-original member of each shared-address group; the originals are
// not listed. Token references the staged id set for the confirmation step
// and is empty when nothing was found.
type DuplicateScan struct {
	Token      string `json:"token,omitempty"`
	Duplicates []User `json:"duplicates"`
}

// DuplicateDeleteResult reports a confirmed, atomic duplicate delete.
type DuplicateDeleteResult struct {
	Deleted int `json:"deleted"`
}
