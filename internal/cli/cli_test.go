package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		checkImageName, checkImageSize, checkImageType, checkDenylist = "", 0, "", ""
		distanceRadius = 0
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "locomctl dev (none)\n", out)
}

func TestCheckText(t *testing.T) {
	out, err := run(t, "check-text", "click", "here", "now")
	require.NoError(t, err)

	var verdict struct {
		IsAppropriate bool     `json:"isAppropriate"`
		Reason        string   `json:"reason"`
		FlaggedTerms  []string `json:"flaggedTerms"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &verdict))
	assert.False(t, verdict.IsAppropriate)
	assert.Equal(t, "Contains inappropriate language", verdict.Reason)
	assert.Equal(t, []string{"click here"}, verdict.FlaggedTerms)
}

func TestCheckText_WithImage(t *testing.T) {
	out, err := run(t, "check-text", "--image-name", "cat.png", "--image-size", "2048", "--image-type", "image/png", "Found", "a", "cat")
	require.NoError(t, err)

	var result struct {
		IsValid bool     `json:"isValid"`
		Errors  []string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
}

func TestDistance(t *testing.T) {
	out, err := run(t, "distance", "--radius", "5", "35.1856,33.3823", "35.1856,33.3823")
	require.NoError(t, err)
	assert.Equal(t, "0.000 km\nwithin 5.0 km: true\n", out)

	_, err = run(t, "distance", "north", "35,33")
	assert.Error(t, err)
}
