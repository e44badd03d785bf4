package encoding_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tobiaswld/werkstatt/internal/encoding"
)

func TestNewUTF8Reader_UTF8Passthrough(t *testing.T) {
	// Valid UTF-8 with German characters should pass through unchanged.
	input := "Belegnummer;Beschreibung;Betrag\nRE-0001;Displaytausch, Gehäuse;119,00\n"
	r, err := encoding.NewUTF8Reader(bytes.NewReader([]byte(input)))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, input, string(got))
}

func TestNewUTF8Reader_Latin1(t *testing.T) {
	// Windows-1252 encoded "Gehäusetausch für Kunde Müller\n".
	// In Windows-1252: ä = 0xE4, ü = 0xFC
	latin1Bytes := []byte{
		'G', 'e', 'h', 0xE4, 'u', 's', 'e', 't', 'a', 'u', 's', 'c', 'h', ' ',
		'f', 0xFC, 'r', ' ', 'K', 'u', 'n', 'd', 'e', ' ',
		'M', 0xFC, 'l', 'l', 'e', 'r', '\n',
	}

	r, err := encoding.NewUTF8Reader(bytes.NewReader(latin1Bytes))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "Gehäusetausch für Kunde Müller\n", string(got))
}

func TestNewUTF8Reader_UTF8BOM(t *testing.T) {
	// UTF-8 BOM (0xEF 0xBB 0xBF) should be stripped.
	bom := []byte{0xEF, 0xBB, 0xBF}
	content := []byte("Belegnummer;Betrag\n")
	input := append(bom, content...)

	r, err := encoding.NewUTF8Reader(bytes.NewReader(input))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "Belegnummer;Betrag\n", string(got))
}
