// Package engine implements the template-guided color averaging.
//
// A mapping runs in three steps over a template key grid and a source grid of
// the same size:
//
//  1. Build: every coordinate adds its source pixel, converted to the working
//     space, to the bucket named by the template key at that coordinate.
//  2. Reduce: every bucket is averaged per channel.
//  3. Assemble: every coordinate of the output takes the average of its
//     bucket, converted back to RGB.
//
// # Strategies
//
// Serial runs the steps in row-major order with float64 sums and is the
// reference. Parallel splits the rows into bands, gives each band a private
// partial accumulator, joins once, merges the partials in band order and only
// then reduces. No bucket is shared between workers while they accumulate.
//
// For integral working spaces (RGB, HSV) Parallel sums exact uint64 channel
// totals and rounds the mean half to even with integer arithmetic, so its
// bucket means equal Serial's exactly. For LAB both strategies sum float64
// values and may differ by summation order; LabTolerance bounds that.
package engine
