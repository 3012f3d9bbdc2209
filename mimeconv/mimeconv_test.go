package mimeconv

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChainReturnsEmptyForIdenticalTypes(t *testing.T) {
	a := assert.New(t)
	tbl := NewTable()
	stages, err := tbl.Chain("application/pdf", "application/pdf")
	a.NoError(err)
	a.Nil(stages)
}

func TestChainFindsDirectConversion(t *testing.T) {
	a := assert.New(t)
	tbl := NewTable()
	tbl.AddConversion("application/pdf", "application/vnd.cups-raster", 100, "pdftoraster")
	stages, err := tbl.Chain("application/pdf", "application/vnd.cups-raster")
	a.NoError(err)
	a.Len(stages, 1)
	a.Equal("pdftoraster", stages[0].Program)
	a.Equal(100, stages[0].Cost)
}

func TestChainFindsMultiHopConversion(t *testing.T) {
	a := assert.New(t)
	tbl := NewTable()
	tbl.AddConversion("application/postscript", "application/vnd.cups-pdf", 50, "pstopdf")
	tbl.AddConversion("application/vnd.cups-pdf", "application/vnd.cups-raster", 80, "pdftoraster")
	stages, err := tbl.Chain("application/postscript", "application/vnd.cups-raster")
	a.NoError(err)
	a.Len(stages, 2)
	a.Equal("pstopdf", stages[0].Program)
	a.Equal("pdftoraster", stages[1].Program)
}

func TestChainReturnsErrorWhenNoPathExists(t *testing.T) {
	a := assert.New(t)
	tbl := NewTable()
	_, err := tbl.Chain("image/png", "application/vnd.cups-raster")
	a.Error(err)
}

func TestParseReadsDirectiveFile(t *testing.T) {
	a := assert.New(t)
	tbl, err := Parse(strings.NewReader(`
# comment
application/pdf application/vnd.cups-raster 100 pdftoraster
text/plain application/postscript 33 texttops
`))
	a.NoError(err)
	stages, err := tbl.Chain("text/plain", "application/postscript")
	a.NoError(err)
	a.Equal("texttops", stages[0].Program)
}

func TestParseRejectsMalformedLine(t *testing.T) {
	a := assert.New(t)
	_, err := Parse(strings.NewReader("application/pdf application/vnd.cups-raster notacost pdftoraster\n"))
	a.Error(err)
}
