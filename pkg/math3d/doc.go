// Package math3d holds the vector and affine matrix types the facet
// pipeline transforms geometry with.
//
// Points are column vectors. A chain written a.Transform(b).Transform(c)
// applies a, then b, then c.
package math3d
