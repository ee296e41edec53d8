package export_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hallops/dues-engine/dues"
	"github.com/hallops/dues-engine/export"
)

func TestWriteDefaulterCSV(t *testing.T) {
	defaulters := []dues.Defaulter{
		{
			IndexNumber: "NTCW/23/002",
			FirstName:   "Abena",
			LastName:    "Owusu",
			Program:     "RGN",
			HallID:      "h1",
			HallName:    "Agongo",
			AmountDue:   dues.NewAmountFromInt(20),
		},
		{
			IndexNumber: "NTCW/24/010",
			FirstName:   "Esi",
			LastName:    "Asante",
			Program:     "NAC",
			HallID:      "h2",
			HallName:    "", // name missing: falls back to the id
			AmountDue:   dues.NewAmountFromInt(20),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, export.WriteDefaulterCSV(&buf, defaulters))

	want := "IndexNumber,FirstName,LastName,Program,Hall,AmountDue,Status\n" +
		"NTCW/23/002,Abena,Owusu,RGN,Agongo,20,UNPAID\n" +
		"NTCW/24/010,Esi,Asante,NAC,h2,20,UNPAID\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteDefaulterCSV_EmptyListStillEmitsHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteDefaulterCSV(&buf, nil))
	assert.Equal(t, "IndexNumber,FirstName,LastName,Program,Hall,AmountDue,Status\n", buf.String())
}
