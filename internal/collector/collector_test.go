package collector

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentStatus(t *testing.T) {
	assert.Equal(t, "Final Rule", documentStatus("Rule"))
	assert.Equal(t, "Final Rule", documentStatus("RULE"))
	assert.Equal(t, "Proposed Rule", documentStatus("Proposed Rule"))
	assert.Equal(t, "Proposed Rule", documentStatus("PRORULE"))
	assert.Equal(t, "Notice", documentStatus("Notice"))
	assert.Equal(t, "Published", documentStatus("Presidential Document"))
}

func TestPrimaryAgency(t *testing.T) {
	agencies := []Agency{{Name: "Centers for Medicare & Medicaid Services"}, {Name: "HHS"}}
	assert.Equal(t, "Centers for Medicare & Medicaid Services", primaryAgency(agencies))

	// Missing agencies fall back to CMS, the dominant issuer for this feed.
	assert.Equal(t, "Centers for Medicare & Medicaid Services", primaryAgency(nil))
}

func TestParseDate(t *testing.T) {
	parsed := parseDate("2026-03-15")
	require.NotNil(t, parsed)
	assert.Equal(t, time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC), *parsed)

	assert.Nil(t, parseDate(""))
	assert.Nil(t, parseDate("03/15/2026"))
}
