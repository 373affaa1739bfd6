package usecases

import "procdesk/internal/domain/order"

// RepositoryProvider supplies order repositories per operator. Each
// operator's orders live in a private database file; cross-operator
// queries enumerate Slugs and merge.
type RepositoryProvider interface {
	// ForUser returns username's repository, creating the backing file on
	// first use.
	ForUser(username string) (order.Repository, error)

	// ForSlug returns the repository for an already-computed slug.
	ForSlug(slug string) (order.Repository, error)

	// Slugs lists the operators that currently have a database file.
	Slugs() ([]string, error)
}
