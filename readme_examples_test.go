package wordview_test

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/tsawler/wordview"
	"github.com/tsawler/wordview/convert"
	"github.com/tsawler/wordview/diagram"
)

// These examples verify the README code samples compile correctly.
// They are not meant to be run as actual tests since they require files.

func Example_extractText() {
	text, warnings, err := wordview.Open("letter.doc").Text()
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(text)

	for _, w := range warnings {
		fmt.Println("Warning:", w.Message)
	}
}

func Example_withOptions() {
	text, warnings, err := wordview.Open("letter.doc").
		Width(60).         // wrap at 60 columns
		ShowHidden().      // include hidden text
		Mapping("cp1252"). // 8-bit output
		Text()
	_ = text
	_ = warnings
	_ = err
}

func Example_postScript() {
	ps, _, err := wordview.Open("report.doc").
		Paper("letter").
		Landscape().
		ImageLevel(3).
		PostScript()
	if err != nil {
		log.Fatal(err)
	}
	_ = os.WriteFile("report.ps", []byte(ps), 0o644)
}

func Example_docBook() {
	f, err := os.Create("report.xml")
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	if _, err := wordview.Open("report.doc").WriteTo(f, diagram.ConvertXML); err != nil {
		log.Fatal(err)
	}
}

func Example_version() {
	tag, err := wordview.Open("old.doc").Version()
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(tag.Description(), tag.Supported())
}

func Example_batch() {
	p := convert.New("wordview")
	p.Jobs = 4
	res := p.Batch(context.Background(), convert.FileInputs([]string{"a.doc", "b.doc"}), os.Stdout)
	os.Exit(res.ExitCode())
}
