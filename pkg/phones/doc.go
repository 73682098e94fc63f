// Package phones is the phone number registry: the ordered collection of
// dial numbers the site displays, with CRUD for the operator and the
// derived values the page renders (grouped display format, primary number,
// call and WhatsApp links).
//
// The collection is never empty (removal of the last record is refused)
// and the first record is the primary number used by the default call and
// message actions. Every mutation is persisted immediately under the
// StorageKey collection key.
package phones
