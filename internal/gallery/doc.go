// Package gallery holds the media-facing helpers that sit on top of the
// store: ordering and filtering for display, demo seeding, the one-shot
// import of the legacy media slot, and dominant-colour extraction.
//
// Sorting is always stable. Items keep their retrieval order (ID order from
// the MediaStore) when the sort key ties.
package gallery
