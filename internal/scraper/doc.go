// Package scraper defines the core types and interfaces shared by the listing
// scraper pipeline: the fetched page, the summary record, the error taxonomy,
// and the small collaborator interfaces workers depend on.
package scraper
