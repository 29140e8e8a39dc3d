package locations

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTriple(t *testing.T) {
	cases := []struct {
		in   string
		want Triple
	}{
		{"Hostel-Ganga-A", Triple{"Hostel", "Ganga", "A"}},
		{"Hostel-Ganga", Triple{"Hostel", "Ganga", ""}},
		{"Hostel", Triple{"Hostel", "", ""}},
		{"", Triple{}},
		{"Hostel-Ganga-A-extra", Triple{"Hostel", "Ganga", "A"}},
		{" Academic - LHC - 2 ", Triple{"Academic", "LHC", "2"}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ParseTriple(tc.in), tc.in)
	}
}

func TestTripleStringRoundTrip(t *testing.T) {
	for _, in := range []string{"Hostel-Ganga-A", "Hostel-Ganga", "Hostel"} {
		assert.Equal(t, in, ParseTriple(in).String())
	}
	assert.True(t, ParseTriple("").IsZero())
}
