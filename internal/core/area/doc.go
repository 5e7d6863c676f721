// Package area recovers room areas from the text layer of German
// floor-plan PDFs.
//
// Input is a document split into pages, each page a list of text lines in
// reading order. The package detects which annotation dialect (blueprint
// style) a document uses, runs a scanner configured for that dialect over
// every page, falls back to the other dialects and then to a generic
// label/identifier pairing when a page yields nothing, and aggregates the
// rooms into an entity.ExtractionResult with totals per category.
//
// Supported dialects:
//
//	Haardtring  R2.E5.3.5 / R1A / E.E0.2.1 identifiers, "F: 22,79 m²" areas,
//	            optional "50%: 11,40 m²" lines for balconies
//	LeiQ        B.00.2.002 identifiers, "NRF: 176,99 m²" (legacy "F= 50.37 m²"),
//	            optional "U: 55,20 m" perimeter and "LH: 2,80 m" height
//	Omniturm    03_b6.12 / BT1.TR.01 identifiers, "NGF: 20,79 m2" areas,
//	            "Schacht 01" shafts with a type line and an unlabelled area
//
// Every emitted room carries the literal text its area was parsed from.
// Everything in this package is a pure function of its input.
package area
