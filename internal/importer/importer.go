package importer

import (
	"io"

	"github.com/tobiaswld/werkstatt/internal/billing"
)

type Format string

const (
	FormatLegacy Format = "legacy"
)

type Importer interface {
	Parse(r io.Reader) ([]billing.ImportParams, error)
}
