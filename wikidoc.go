// Package wikidoc extracts structured documents from hierarchical wiki
// pages. It reads a page's table of contents, extracts the content of each
// section, follows sections that defer to other pages up to a hop limit, and
// emits a flat, depth-first list of records annotated with their position in
// the document hierarchy.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, sqlite/, gemini/).
package wikidoc
