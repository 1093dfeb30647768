// Package main is the wordview command: it converts legacy Word documents
// to plain text, PostScript or DocBook XML on standard output.
package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, filepath.Base(os.Args[0]), os.Args[1:])
	stop()
	os.Exit(code)
}
