// Package anchor builds the deterministic header prepended to a chunk's
// text before it is sent to the embedder. The header enriches the dense
// embedding with file/role locality without ever being stored alongside
// the chunk's own content.
package anchor
