package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMainRunsCLIOnce(t *testing.T) {
	calls := 0
	orig := execute
	t.Cleanup(func() { execute = orig })
	execute = func() { calls++ }

	main()

	assert.Equal(t, 1, calls, "main hands control to the CLI exactly once")
}
