package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateChannelSize(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		wantErr bool
	}{
		{"minimum", 1, false},
		{"maximum", 50, false},
		{"typical", 10, false},
		{"zero", 0, true},
		{"negative", -5, true},
		{"above maximum", 51, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateChannelSize(tt.size)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateTopK(t *testing.T) {
	assert.NoError(t, ValidateTopK(1))
	assert.NoError(t, ValidateTopK(100))
	assert.ErrorIs(t, ValidateTopK(0), ErrMalformedConfig)
	assert.ErrorIs(t, ValidateTopK(-1), ErrMalformedConfig)
}

func TestValidateWeights(t *testing.T) {
	tests := []struct {
		name       string
		wLex, wVec float64
		wantErr    bool
	}{
		{"default weights", 0.3, 0.7, false},
		{"weights need not sum to one", 2.0, 3.0, false},
		{"lexical only", 1.0, 0.0, false},
		{"vector only", 0.0, 1.0, false},
		{"negative lexical", -0.1, 0.7, true},
		{"negative vector", 0.3, -0.7, true},
		{"both zero", 0.0, 0.0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateWeights(tt.wLex, tt.wVec)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateDocument(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, ValidateDocument(&Document{Content: "some text"}))
	})

	t.Run("nil", func(t *testing.T) {
		assert.ErrorIs(t, ValidateDocument(nil), ErrInvalidDocument)
	})

	t.Run("empty content", func(t *testing.T) {
		err := ValidateDocument(&Document{Title: "Doc"})
		assert.ErrorIs(t, err, ErrInvalidDocument)
		assert.ErrorIs(t, err, ErrEmptyContent)
	})
}
