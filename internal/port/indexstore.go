package port

import "jassjr/internal/domain"

// IndexSnapshot is the read side of a completed indexing pass.
type IndexSnapshot interface {
	// Terms returns every distinct term in serialization order.
	Terms() []string

	Postings(term string) domain.PostingsList

	DocIDs() []string

	Lengths() []uint32
}

type ManifestStore interface {
	PutManifest(m domain.Manifest) error

	GetManifest() (domain.Manifest, error)

	Close() error
}
