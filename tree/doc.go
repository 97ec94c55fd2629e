// Package tree holds the syntax tree produced by a parse: the Tree
// snapshot, the Node value handles used to navigate it, and the
// TreeCursor used to traverse it in bulk.
//
// A Tree is an immutable snapshot except for Edit, which adjusts the
// tree's byte and point bookkeeping to match a text change before the
// tree is handed back to the parser as a reuse base. Trees share
// storage across Dupe calls and across incremental reparses; the
// required discipline for threads is "duplicate before sharing, edit
// only your own duplicate".
package tree
