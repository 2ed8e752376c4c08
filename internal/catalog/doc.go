// Package catalog is the static table of packet layers the operator can
// build: for every layer, its fields in order, each field's format template,
// its default value and the two sanitize chains between display and protocol
// text.
//
// Defaults are resolved outside this package (configuration, live interface
// addresses) and bound with Catalog.Resolve; the catalog never reads them
// itself.
package catalog
