package validation

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashprao/chatbox/internal/models"
)

func TestValidatePositiveInt(t *testing.T) {
	n, err := ValidatePositiveInt(" 42 ", "width")
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	for _, bad := range []string{"0", "-1", "abc", ""} {
		_, err := ValidatePositiveInt(bad, "width")
		assert.EqualError(t, err, "width must be a positive number", bad)
	}
}

func TestValidateNonNegativeInt(t *testing.T) {
	n, err := ValidateNonNegativeInt("0", "count")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	_, err = ValidateNonNegativeInt("-3", "count")
	assert.Error(t, err)
}

func TestValidateFloat(t *testing.T) {
	v, err := ValidateFloat("0.5", "temperature", 0, 1)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, v, 1e-9)

	_, err = ValidateFloat("1.5", "temperature", 0, 1)
	assert.EqualError(t, err, "temperature must be a number between 0.0 and 1.0")
}

func TestValidateUIValues(t *testing.T) {
	assert.NoError(t, ValidateUIValues(900, 700, 220))
	assert.Error(t, ValidateUIValues(0, 700, 220))
	assert.Error(t, ValidateUIValues(900, -1, 220))
	assert.Error(t, ValidateUIValues(900, 700, 0))
	assert.Error(t, ValidateUIValues(200, 700, 220))
}

func TestValidateFontSize(t *testing.T) {
	assert.NoError(t, ValidateFontSize(12))
	assert.NoError(t, ValidateFontSize(18))
	assert.Error(t, ValidateFontSize(11))
	assert.Error(t, ValidateFontSize(19))
}

func TestNormalizeTokenLimit(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "inf", want: "inf"},
		{input: "2048", want: "2048"},
		{input: " 100 ", want: "100"},
		{input: "0", want: "0"},
		{input: "8192", want: "8192"},
		{input: "8193", want: "inf"},
		{input: "100000", want: "inf"},
		{input: "1000.0", want: "1000"},
		{input: "1e3", want: "1000"},
		{input: "64.5", want: "64"},
		{input: "NaN", wantErr: true},
		{input: "-1", wantErr: true},
		{input: "lots", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := NormalizeTokenLimit(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeTokenLimit_ParsesAsLimit(t *testing.T) {
	for _, input := range []string{"1000.0", "1e3", "64.5", "0", "2048"} {
		t.Run(input, func(t *testing.T) {
			stored, err := NormalizeTokenLimit(input)
			require.NoError(t, err)

			setting := models.ModelSetting{MaxContextSize: stored, MaxTokens: stored}
			limit, unlimited := setting.ContextLimit()
			assert.False(t, unlimited)
			assert.Equal(t, stored, strconv.Itoa(limit))

			_, unlimited = setting.ReplyLimit()
			assert.False(t, unlimited)
		})
	}
}

func TestSliderConversions(t *testing.T) {
	assert.Equal(t, "inf", SliderToTokenLimit(8192))
	assert.Equal(t, "4032", SliderToTokenLimit(4032))
	assert.Equal(t, "64", SliderToTokenLimit(64))

	assert.Equal(t, 8192.0, TokenLimitToSlider("inf"))
	assert.Equal(t, 4000.0, TokenLimitToSlider("4000"))
	assert.Equal(t, 64.0, TokenLimitToSlider("10"))
	assert.Equal(t, 8192.0, TokenLimitToSlider("99999"))
	assert.Equal(t, 8192.0, TokenLimitToSlider("garbage"))
}

func TestCheckAPIHost(t *testing.T) {
	codes := func(issues []HostIssue) []string {
		out := []string{}
		for _, i := range issues {
			out = append(out, i.Code)
		}
		return out
	}

	tests := []struct {
		host      string
		want      []string
		wantError bool
	}{
		{host: "https://api.openai.com", want: []string{}},
		{host: "api.openai.com", want: []string{IssueScheme}, wantError: true},
		{host: "https://api.openai.com:443", want: []string{}},
		{host: "http://api.openai.com", want: []string{IssueProtocol}},
		{host: "https://proxy.example.com", want: []string{IssueProxy}},
		{host: "http://localhost:8080", want: []string{IssueProxy, IssueProtocol}},
		{host: "ftp://example.com", want: []string{IssueProxy, IssueScheme}, wantError: true},
		{host: "https://apiXopenai.com", want: []string{IssueProxy}},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			issues := CheckAPIHost(tt.host)
			assert.Equal(t, tt.want, codes(issues))
			assert.Equal(t, tt.wantError, HasErrors(issues))
		})
	}
}
