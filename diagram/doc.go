// Package diagram renders decoded Word content.
//
// A [Diagram] receives an ordered stream of events from the decoder:
//
//	OpenDocument
//	  OpenParagraph / EmitRun ... / CloseParagraph
//	  PageBreak
//	CloseDocument
//	Close
//
// Four backends implement it: [Text] (line-wrapped text), [PostScript]
// (paginated DSC PostScript), [XML] (DocBook) and [Trace] (an event log
// used for debugging and tests). The set is closed; every backend embeds
// the same state machine, so calling an event out of order panics with
// the offending call and state.
//
// Writes to the destination are buffered. The first write error is
// sticky: the failing call and every later call report it wrapped in
// [ErrDestination]. Close must be called exactly once, whether or not
// decoding succeeded; it closes any open paragraph and the document and
// flushes the output.
//
// # Creating a diagram
//
//	opts := diagram.DefaultOptions()
//	opts.Width = 72
//	d, err := diagram.New("wordview", "letter.doc", &opts, os.Stdout)
package diagram
