package models

// Version is one historical snapshot of a paper's content.
type Version struct {
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
}

// Paper is the stored record for one bucket hash. Content always mirrors
// the content of the last element of Versions.
type Paper struct {
	BucketHash string `json:"bucket_hash"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	// AuthorAddress keeps the original wire format: when a second author
	// stores under the same hash the field becomes "<address> (shared)".
	AuthorAddress string `json:"author_address"`
	// Shared is the structured form of the "(shared)" suffix; older
	// records may lack it, readers must tolerate absence.
	Shared   bool      `json:"shared,omitempty"`
	Versions []Version `json:"versions"`
}

// Latest returns the most recent version. Versions is never empty once a
// record exists.
func (p *Paper) Latest() Version {
	return p.Versions[len(p.Versions)-1]
}
