package legacy_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tobiaswld/werkstatt/internal/billing"
	"github.com/tobiaswld/werkstatt/internal/importer/legacy"
)

func TestParser_Parse(t *testing.T) {
	type args struct {
		csvContent string
	}

	type testCase struct {
		name    string
		args    args
		wantLen int
		verify  func(t *testing.T, docs []billing.ImportParams)
		wantErr bool
	}

	tests := []testCase{
		{
			name: "Standard Export",
			args: args{
				csvContent: `Handy-Werkstatt Nord;Export vom 15.03.2024

Belegnummer;Typ;Datum;Name;Firma;E-Mail;Betrag;Beschreibung
RE-0001;Rechnung;02.01.2024;Max Müller;;max@example.com;119,00;Displaytausch
AN-0003;Angebot;05.01.2024;Erika Schmidt;Schmidt GmbH;;1.234,56;Datenrettung

Summe;;;;;;1.353,56;
`,
			},
			wantLen: 2,
			verify: func(t *testing.T, docs []billing.ImportParams) {
				assert.Equal(t, "RE-0001", docs[0].Number)
				assert.Equal(t, billing.DocTypeInvoice, docs[0].Type)
				assert.Equal(t, "Max Müller", docs[0].Customer.Name)
				assert.Equal(t, "max@example.com", docs[0].Customer.Email)
				assert.Equal(t, int64(11900), docs[0].Lines[0].Amount)
				assert.Equal(t, "Displaytausch", docs[0].Lines[0].Description)

				expectedDate, _ := time.Parse("02.01.2006", "02.01.2024")
				assert.True(t, docs[0].IssuedAt.Equal(expectedDate))

				assert.Equal(t, "AN-0003", docs[1].Number)
				assert.Equal(t, billing.DocTypeQuote, docs[1].Type)
				assert.Equal(t, "Schmidt GmbH", docs[1].Customer.Company)
				assert.Equal(t, int64(123456), docs[1].Lines[0].Amount)
			},
		},
		{
			name: "Missing Type Defaults To Invoice",
			args: args{
				csvContent: `Belegnummer;Datum;Betrag;Beschreibung
RE-0042;10.02.2024;49,90;Akku
`,
			},
			wantLen: 1,
			verify: func(t *testing.T, docs []billing.ImportParams) {
				assert.Equal(t, billing.DocTypeInvoice, docs[0].Type)
			},
		},
		{
			name: "Unknown Type Skipped",
			args: args{
				csvContent: `Belegnummer;Typ;Datum;Betrag
RE-0001;Rechnung;02.01.2024;10,00
XX-0002;Gutschrift;03.01.2024;5,00
`,
			},
			wantLen: 1,
		},
		{
			name: "Bad Date Skipped",
			args: args{
				csvContent: `Belegnummer;Typ;Datum;Betrag
RE-0001;Rechnung;not-a-date;10,00
RE-0002;Rechnung;04.01.2024;20,00
`,
			},
			wantLen: 1,
			verify: func(t *testing.T, docs []billing.ImportParams) {
				assert.Equal(t, "RE-0002", docs[0].Number)
			},
		},
		{
			name: "No Header",
			args: args{
				csvContent: "just;some;cells\n1;2;3\n",
			},
			wantErr: true,
		},
		{
			name: "Empty File",
			args: args{
				csvContent: "",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := legacy.NewParser()

			docs, err := p.Parse(strings.NewReader(tt.args.csvContent))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			assert.Len(t, docs, tt.wantLen)

			if tt.verify != nil {
				tt.verify(t, docs)
			}
		})
	}
}

func TestParser_Parse_Windows1252(t *testing.T) {
	// Older exports arrive as Windows-1252; umlauts must survive decoding.
	header := "Belegnummer;Typ;Datum;Name;Betrag;Beschreibung\n"
	row := []byte("RE-0007;Rechnung;01.03.2024;J\xF6rg K\xFChn;15,00;Geh\xE4usetausch\n")

	input := append([]byte(header), row...)

	p := legacy.NewParser()

	docs, err := p.Parse(strings.NewReader(string(input)))
	assert.NoError(t, err)
	assert.Len(t, docs, 1)
	assert.Equal(t, "Jörg Kühn", docs[0].Customer.Name)
	assert.Equal(t, "Gehäusetausch", docs[0].Lines[0].Description)
}
