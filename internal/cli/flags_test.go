package cli

import (
	"testing"

	"github.com/rileyhilliard/plantdash/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeconds(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"30", 30, false},
		{" 45 ", 45, false},
		{"0", 0, true},
		{"-1", 0, true},
		{"1.5", 0, true},
		{"soon", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseSeconds(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.ErrInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateDropRate(t *testing.T) {
	assert.NoError(t, validateDropRate(0))
	assert.NoError(t, validateDropRate(0.25))
	assert.NoError(t, validateDropRate(1))
	assert.Error(t, validateDropRate(-0.1))
	assert.Error(t, validateDropRate(1.5))
}
