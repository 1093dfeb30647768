package filters

import (
	"bytes"
	"compress/zlib"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func zlibCompress(data []byte) []byte {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	w.Write(data)
	w.Close()
	return buf.Bytes()
}

func TestFlateDecodeBasic(t *testing.T) {
	original := []byte("Hello, World! This is picture data.")
	decoded, err := FlateDecode(zlibCompress(original), nil)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

func TestFlateEncodeInflates(t *testing.T) {
	original := bytes.Repeat([]byte("abc"), 100)
	encoded, err := FlateEncode(original)
	require.NoError(t, err)
	assert.Less(t, len(encoded), len(original))

	decoded, err := FlateDecode(encoded, &Predictor{Kind: NoPrediction})
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

func TestFlateDecodeCorrupt(t *testing.T) {
	_, err := FlateDecode([]byte{0x78, 0x9c, 0xff, 0xff, 0x00}, nil)
	assert.Error(t, err)
}

func TestPNGPredictorRows(t *testing.T) {
	tests := []struct {
		name string
		pred Predictor
		in   []byte
		want []byte
	}{
		{
			name: "none",
			pred: Predictor{Kind: PNGOptimum, Columns: 3},
			in:   []byte{0, 1, 2, 3, 0, 4, 5, 6},
			want: []byte{1, 2, 3, 4, 5, 6},
		},
		{
			name: "sub",
			pred: Predictor{Kind: PNGOptimum, Columns: 3},
			in:   []byte{1, 1, 1, 1},
			want: []byte{1, 2, 3},
		},
		{
			name: "up",
			pred: Predictor{Kind: PNGOptimum, Columns: 2},
			in:   []byte{0, 5, 6, 2, 1, 1},
			want: []byte{5, 6, 6, 7},
		},
		{
			name: "average",
			pred: Predictor{Kind: PNGOptimum, Columns: 2},
			in:   []byte{0, 4, 8, 3, 2, 0},
			want: []byte{4, 8, 4, 6},
		},
		{
			name: "paeth",
			pred: Predictor{Kind: PNGOptimum, Columns: 2},
			in:   []byte{0, 10, 20, 4, 0, 0},
			want: []byte{10, 20, 10, 20},
		},
		{
			name: "rgb sub",
			pred: Predictor{Kind: PNGOptimum, Columns: 2, Colors: 3},
			in:   []byte{1, 10, 20, 30, 1, 1, 1},
			want: []byte{10, 20, 30, 11, 21, 31},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FlateDecode(zlibCompress(tt.in), &tt.pred)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPNGPredictorErrors(t *testing.T) {
	_, err := FlateDecode(zlibCompress([]byte{0, 1, 2}), &Predictor{Kind: PNGOptimum, Columns: 3})
	assert.Error(t, err, "row size mismatch")

	_, err = FlateDecode(zlibCompress([]byte{9, 1, 2, 3}), &Predictor{Kind: PNGOptimum, Columns: 3})
	assert.Error(t, err, "unknown filter type")

	_, err = FlateDecode(zlibCompress([]byte{0, 1}), &Predictor{Kind: 7})
	assert.Error(t, err, "unknown predictor")
}
