package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"slashes", "2019/06/01", time.Date(2019, 6, 1, 0, 0, 0, 0, time.UTC)},
		{"dashes", "2019-6-1", time.Date(2019, 6, 1, 0, 0, 0, 0, time.UTC)},
		{"month only", "2019/06", time.Date(2019, 6, 15, 0, 0, 0, 0, time.UTC)},
		{"cjk units", "2019年6月", time.Date(2019, 6, 15, 0, 0, 0, 0, time.UTC)},
		{"cjk full", "2019年6月3日", time.Date(2019, 6, 3, 0, 0, 0, 0, time.UTC)},
		{"year only", "2019", time.Date(2019, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"surrounding text", " 出版日期：2020/02/29 ", time.Date(2020, 2, 29, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input, 15)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}

func TestParseClampsDefaultDay(t *testing.T) {
	got, err := Parse("2021/02", 31)
	require.NoError(t, err)
	assert.Equal(t, 28, got.Day())
}

func TestParseRejects(t *testing.T) {
	_, err := Parse("近期出版", 15)
	require.ErrorIs(t, err, ErrNoDate)

	_, err = Parse("2019/13/01", 15)
	require.Error(t, err)

	_, err = Parse("2019/02/30", 15)
	require.Error(t, err)
}
