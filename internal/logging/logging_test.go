package logging

import (
	"bytes"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlainFormat(t *testing.T) {
	var buf bytes.Buffer
	l, err := New("wordview", "", &buf)
	require.NoError(t, err)

	l.Error("report.doc is not a Word Document.")
	l.Debug("hidden at info level")
	assert.Equal(t, "wordview: report.doc is not a Word Document.\n", buf.String())
}

func TestFieldsAreSorted(t *testing.T) {
	var buf bytes.Buffer
	l, err := New("wv", "debug", &buf)
	require.NoError(t, err)

	l.WithFields(logrus.Fields{"op": "clx", "count": 3, "file": "a b.doc", "err": errors.New("bad")}).Debug("decoding")
	assert.Equal(t, "wv: DEBUG decoding count=3 err=\"bad\" file=\"a b.doc\" op=clx\n", buf.String())
}

func TestFieldsOnlyAtDebug(t *testing.T) {
	var buf bytes.Buffer
	l, err := New("wordview", "info", &buf)
	require.NoError(t, err)

	l.WithFields(logrus.Fields{"file": "a.doc", "op": "picf"}).Warn("picture at 12 has no recognised image data")
	l.WithField("error", errors.New("context canceled")).Error("a.doc: conversion stopped")
	assert.Equal(t, "wordview: picture at 12 has no recognised image data\nwordview: a.doc: conversion stopped\n", buf.String())
}

func TestInvalidLevel(t *testing.T) {
	_, err := New("wv", "loud", &bytes.Buffer{})
	assert.Error(t, err)
}

func TestDiscard(t *testing.T) {
	l := Discard()
	l.Error("nothing")
	assert.NotNil(t, l.Out)
}
