package logx_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"churnguard/pkg/logx"
)

func TestSensitiveDataMaskerMask(t *testing.T) {
	rq := require.New(t)

	masker := logx.NewSensitiveDataMasker()

	testCases := []struct {
		name   string
		input  []byte
		output []byte
	}{
		{
			name:   "Password",
			input:  []byte(`{"hello":"world","password":"abc123"}`),
			output: []byte(`{"hello":"world","password":"[MASKED]"}`),
		},
		{
			name:   "Password capital letter",
			input:  []byte(`{"hello":"world","Password":"abc123"}`),
			output: []byte(`{"hello":"world","Password":"[MASKED]"}`),
		},
		{
			name:   "Client id",
			input:  []byte(`{"clientId":"client_12345","tenure":2}`),
			output: []byte(`{"clientId":"[MASKED]","tenure":2}`),
		},
		{
			name:   "Nothing sensitive",
			input:  []byte(`{"monthlyCharges":80.0,"totalCharges":160.0}`),
			output: []byte(`{"monthlyCharges":80.0,"totalCharges":160.0}`),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(*testing.T) {
			output := masker.Mask(tc.input)

			rq.Equal(tc.output, output, "%s vs %s", tc.output, output)
		})
	}
}
