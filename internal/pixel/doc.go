// Package pixel holds the in-memory pixel grid used by the mapper and the
// codec that packs an RGB triple into a single comparable key.
//
// # Keys
//
// A Key is the 24-bit RGB cube packed into a uint32 as (R<<16)|(G<<8)|B.
// Alpha never takes part in a key: two pixels that differ only in alpha map
// to the same key. Pack and Unpack are exact inverses.
//
// # Grids
//
// Grid is a row-major width×height array of 3-channel pixels. Grids built from
// raw buffers must have exactly three channels; a 4-channel buffer is rejected
// with ErrChannels rather than silently dropping alpha.
//
// # Thread Safety
//
// Grids and KeyGrids are plain values. They are safe to share between
// goroutines as long as nobody writes to them, which is how the parallel
// execution strategy uses them.
package pixel
