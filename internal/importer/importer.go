// Package importer turns bank statement exports into transaction payloads
// ready for the add endpoint. Each source produces model.NewTransaction
// values with the spending sign convention already applied: outflows are
// negative, inflows positive.
package importer

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/osirenko/finch/internal/common"
	"github.com/osirenko/finch/internal/model"
)

// Format identifies a statement file format.
type Format string

// Supported statement formats.
const (
	FormatCSV          Format = "csv"
	FormatWealthsimple Format = "wealthsimple"
	FormatOFX          Format = "ofx"
)

// DetectFormat guesses the statement format from the file name and a peek
// at the content.
func DetectFormat(filename string, content []byte) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".ofx", ".qfx":
		return FormatOFX
	case ".json":
		return FormatWealthsimple
	case ".csv":
		return FormatCSV
	}

	head := strings.TrimLeft(string(content), " \t\r\n")
	switch {
	case strings.HasPrefix(head, "OFXHEADER") || strings.HasPrefix(head, "<OFX>"):
		return FormatOFX
	case strings.HasPrefix(head, "[") || strings.HasPrefix(head, "{"):
		return FormatWealthsimple
	default:
		return FormatCSV
	}
}

// Importer parses one statement format.
type Importer interface {
	// Parse reads a statement and returns transaction payloads. An empty
	// statement is an error, not an empty slice.
	Parse(ctx context.Context, reader io.Reader) ([]model.NewTransaction, error)
}

// ForFormat returns the importer handling the given format.
func ForFormat(format Format, categorizer *Categorizer) (Importer, error) {
	switch format {
	case FormatCSV:
		return NewCSVImporter(), nil
	case FormatWealthsimple:
		return NewWealthsimpleImporter(categorizer), nil
	case FormatOFX:
		return NewOFXImporter(), nil
	default:
		return nil, common.NewUserError("Unsupported statement format: "+string(format), common.ErrUnknownFormat)
	}
}
