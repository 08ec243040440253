package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "comphub/pkg/domain-errors"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-02-28")
	require.NoError(t, err)
	assert.Equal(t, Date("2025-02-28"), d)

	for _, bad := range []string{"", "2025-2-8", "02/08/2025", "2025-13-01", "not a date"} {
		_, err := ParseDate(bad)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput), "input %q", bad)
	}
}

func TestDateEndOfMonth(t *testing.T) {
	cases := map[Date]Date{
		"2025-06-01": "2025-06-30",
		"2025-06-30": "2025-06-30",
		"2025-02-10": "2025-02-28",
		"2024-02-10": "2024-02-29",
		"2025-12-05": "2025-12-31",
	}
	for in, want := range cases {
		assert.Equal(t, want, in.EndOfMonth(), "input %s", in)
	}
}
