// Package model holds the values exchanged between the Word decoder and
// the rendering backends.
//
// A decoded document is never stored as a tree. It exists only as the
// ordered sequence of calls a decoder makes into a diagram, and these
// types are the arguments of those calls.
//
// # Runs
//
// [Style] describes one run of text: emphasis, hidden-text and font
// attributes. Hidden text is an attribute and is always delivered; each
// backend decides whether to show it.
//
// # Paragraphs
//
// [Paragraph] carries the properties known when a paragraph opens:
// justification and table membership.
//
// # Pages
//
// [PageGeometry] describes a physical page in PostScript points. Use
// [NewPageGeometry] with one of the names in [PaperNames]:
//
//	geo, err := model.NewPageGeometry("a4", model.Landscape)
//
// [BBox] describes the printable area inside the margins.
package model
