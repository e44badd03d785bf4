package importer

import (
	"fmt"
	"io"

	"github.com/tobiaswld/werkstatt/internal/billing"
	"github.com/tobiaswld/werkstatt/internal/importer/legacy"
)

type Service struct {
	legacyImporter Importer
}

func NewService() *Service {
	return &Service{
		legacyImporter: legacy.NewParser(),
	}
}

func (s *Service) Import(format Format, r io.Reader) ([]billing.ImportParams, error) {
	var imp Importer

	switch format {
	case FormatLegacy:
		imp = s.legacyImporter
	default:
		return nil, fmt.Errorf("unknown import format: %s", format)
	}

	return imp.Parse(r)
}
