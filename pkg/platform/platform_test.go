package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsCaseInsensitive(t *testing.T) {
	assert.True(t, IsCaseInsensitive(Windows))
	assert.False(t, IsCaseInsensitive(Linux))
	assert.False(t, IsCaseInsensitive(Darwin))
}

func TestNormalizeKey(t *testing.T) {
	assert.Equal(t, "path", NormalizeKey("Path", true))
	assert.Equal(t, "Path", NormalizeKey("Path", false))
	assert.Equal(t, NormalizeKey("PATH", true), NormalizeKey("path", true))
}

func TestParseCaseMode(t *testing.T) {
	tests := []struct {
		mode    string
		goos    string
		want    bool
		wantErr bool
	}{
		{"auto", Windows, true, false},
		{"auto", Linux, false, false},
		{"", Darwin, false, false},
		{"true", Linux, true, false},
		{"Insensitive", Linux, true, false},
		{"false", Windows, false, false},
		{"sometimes", Linux, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.mode+"/"+tt.goos, func(t *testing.T) {
			got, err := ParseCaseMode(tt.mode, tt.goos)
			if tt.wantErr {
				var modeErr *UnknownCaseModeError
				require.ErrorAs(t, err, &modeErr)
				assert.Equal(t, tt.mode, modeErr.Mode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
