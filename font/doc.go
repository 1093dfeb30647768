// Package font maps Word font names onto the PostScript Standard 14
// fonts and measures text with their metrics.
//
// Word documents name fonts freely ("Times New Roman", "Arial",
// "Courier New"). The PostScript backend only relies on printer-resident
// fonts, so every name is first resolved to a [Family]:
//
//	fam := font.Resolve("Arial")                 // font.Sans
//	ps := font.PostScriptName(fam, true, false) // "Helvetica-Bold"
//	w := font.StringWidth(ps, "Hello", 12)       // points
//
// The name table is YAML and can be replaced with [LoadNames].
package font
