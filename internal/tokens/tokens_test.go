package tokens

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimate(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{name: "empty", text: "", want: 0},
		{name: "one byte", text: "a", want: 1},
		{name: "four bytes", text: "abcd", want: 1},
		{name: "five bytes", text: "abcde", want: 2},
		{name: "cjk", text: "你好", want: 2},
		{name: "mixed", text: "hi 你好", want: 1 + 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Estimate(tt.text))
		})
	}
}

func TestEstimateAll(t *testing.T) {
	assert.Equal(t, 0, EstimateAll())
	assert.Equal(t, 3, EstimateAll("abcd", "abcde"))
}

func TestCountWords(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{name: "empty", text: "", want: 0},
		{name: "latin", text: "Hello, world!", want: 2},
		{name: "contraction", text: "don't stop", want: 2},
		{name: "numbers", text: "route 66 north", want: 3},
		{name: "cjk", text: "你好世界", want: 4},
		{name: "japanese", text: "こんにちは", want: 5},
		{name: "mixed", text: "Go 语言 rocks", want: 4},
		{name: "whitespace only", text: " \n\t ", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CountWords(tt.text))
		})
	}
}
