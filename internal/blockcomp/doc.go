// Package blockcomp implements framed block compression for the document
// store. Each block carries an eight byte header with the uncompressed and
// compressed sizes; a compressed size of zero marks a raw block, which is
// how incompressible data is stored without inflating it.
package blockcomp
