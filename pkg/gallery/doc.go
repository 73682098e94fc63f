// Package gallery is the photo gallery registry: the ordered sequence of
// image references the site displays, plus the staged upload pipeline the
// operator feeds it through.
//
// An image reference is either a site-relative path ("/gallery-1.jpg") or a
// self-contained data URI produced from an uploaded file. Uploads go
// through a single staging slot: Select validates and decodes the file
// asynchronously, Commit appends the staged image, Cancel discards it. The
// slot is a versioned cell: when two decodes race, only the one belonging
// to the latest Select installs its result; stale completions are dropped.
package gallery
