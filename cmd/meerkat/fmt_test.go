package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatText_NormalizesSpacing(t *testing.T) {
	t.Parallel()

	got := formatText("alert   tcp any any ->   any any\n# comment stays\n")

	assert.Equal(t, "alert tcp any any -> any any\n# comment stays\n", got)
}

func TestFormatText_LeavesUnparsableLinesAlone(t *testing.T) {
	t.Parallel()

	input := "this is not a rule (\nalert  udp any any -> any any"

	got := formatText(input)

	assert.Equal(t, "this is not a rule (\nalert udp any any -> any any", got)
}
