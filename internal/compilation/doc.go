// Package compilation provides the types shared by the harvest pipeline.
//
// A Candidate is a listing entry whose title carries the compilation marker.
// A Result is a candidate that survived range filtering, enriched with the
// post's publication date and its downloadable document links. DateRange
// models the inclusive month window a caller asks for.
package compilation
