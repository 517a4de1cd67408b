package encoding_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/pfm/internal/encoding"
)

func read(t *testing.T, input []byte) (string, encoding.Charset) {
	t.Helper()

	r, charset, err := encoding.NewUTF8Reader(bytes.NewReader(input))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)

	return string(got), charset
}

func TestNewUTF8Reader(t *testing.T) {
	type testCase struct {
		name        string
		input       []byte
		want        string
		wantCharset encoding.Charset
	}

	tests := []testCase{
		{
			name:        "UTF8Passthrough",
			input:       []byte("Date,Description\n2024-03-01,Café ₹\n"),
			want:        "Date,Description\n2024-03-01,Café ₹\n",
			wantCharset: encoding.UTF8,
		},
		{
			name:        "UTF8BOMStripped",
			input:       append([]byte{0xEF, 0xBB, 0xBF}, "Date,Amount\n"...),
			want:        "Date,Amount\n",
			wantCharset: encoding.UTF8BOM,
		},
		{
			name:        "UTF16LE",
			input:       []byte{0xFF, 0xFE, 'A', 0x00, 0xE9, 0x00},
			want:        "Aé",
			wantCharset: encoding.UTF16LE,
		},
		{
			name:        "UTF16BE",
			input:       []byte{0xFE, 0xFF, 0x00, 'A', 0x00, 0xE9},
			want:        "Aé",
			wantCharset: encoding.UTF16BE,
		},
		{
			name:  "EmptyInput",
			input: nil,
			want:  "",
			// An empty sample is valid UTF-8.
			wantCharset: encoding.UTF8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, charset := read(t, tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantCharset, charset)
		})
	}
}

func TestNewUTF8Reader_Latin(t *testing.T) {
	// "Caf\xe9,Cr\xe8me" is not valid UTF-8; both single-byte guesses
	// decode these bytes identically.
	got, charset := read(t, []byte("Description\nCaf\xe9,Cr\xe8me br\xfbl\xe9e\n"))

	assert.Equal(t, "Description\nCafé,Crème brûlée\n", got)
	assert.Contains(t, []encoding.Charset{encoding.Windows1252, encoding.ISO8859_1}, charset)
}
