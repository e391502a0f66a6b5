// Package convert holds small, quirk-preserving conversions between the
// analysis engine's path representation and protocol-level URIs. These are
// building blocks for turning an engine-produced SourceChange/FileSystemEdit
// (see spec glossary) into the wire shape a textDocument/rename or
// code-action response carries; no such response exists inside this core,
// since request handlers are an external collaborator's business logic
// (spec.md §1), not this package's concern. StripUpOnePrefix is exposed for
// that external handler to call when it assembles the conversion itself.
package convert

import "strings"

// upOnePrefix is the fixed relative-path prefix the analysis engine's
// filesystem-edit paths always carry: they are rooted one directory above
// the workspace root that produced them.
const upOnePrefix = "../"

// StripUpOnePrefix removes a leading "../" from a filesystem-edit's relative
// path, if present, before joining it onto the workspace root to form an
// absolute path. Paths that do not carry the prefix are returned unchanged;
// this is defensive rather than an assertion, since a future analysis-engine
// version is free to stop emitting it.
//
// Has no caller in this core: a FileSystemEdit's path only exists as the
// output of a CreateFile/MoveFile SourceChange, which only a request
// handler constructs, and handlers live outside this core's boundary. This
// function is the one piece of that conversion that isn't handler-specific
// (it's a quirk of the engine's path convention, not of any particular
// request), so it lives here for whatever assembles the handler to call.
func StripUpOnePrefix(relPath string) string {
	return strings.TrimPrefix(relPath, upOnePrefix)
}
