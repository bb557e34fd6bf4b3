package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestXLSXWorkbookLayout(t *testing.T) {
	f, err := XLSX(sampleRecord())
	require.NoError(t, err)

	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", f.ContentType)
	assert.True(t, strings.HasSuffix(f.Filename, ".xlsx"), f.Filename)

	wb, err := excelize.OpenReader(bytes.NewReader(f.Content))
	require.NoError(t, err)
	defer wb.Close()

	assert.Equal(t, []string{"Claim"}, wb.GetSheetList())

	rows, err := wb.GetRows("Claim")
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 3)

	assert.Equal(t, csvHeaders, rows[0][:15])
	assert.Equal(t, "2024-03-01", rows[1][0])
	assert.Equal(t, `Smith, John "MD"`, rows[1][1])
	assert.Equal(t, "CO-97", rows[2][13])

	// Summary block sits below the table after one blank row.
	label, err := wb.GetCellValue("Claim", "A5")
	require.NoError(t, err)
	assert.Equal(t, "Total Billed", label)
	total, err := wb.GetCellValue("Claim", "B8")
	require.NoError(t, err)
	assert.Equal(t, "90", total)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	long := strings.Repeat("x", 150)
	got := truncate(long, 140)
	assert.True(t, strings.HasSuffix(got, "…"))
	assert.Equal(t, 139, strings.Count(got, "x"))
}
