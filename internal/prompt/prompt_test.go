package prompt

import (
	"errors"
	"testing"

	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	var p Prompter = Defaults{}

	idx, err := p.Select("Select source", []string{"Public mirror", "Alternate web site"})
	require.NoError(t, err)
	assert.Equal(t, 0, idx)

	_, err = p.Select("Select source", nil)
	assert.Error(t, err)

	ok, err := p.Confirm("Sync repo?", true)
	require.NoError(t, err)
	assert.True(t, ok)

	s, err := p.Input("URL", "http://host/repos/", nil)
	require.NoError(t, err)
	assert.Equal(t, "http://host/repos/", s)

	_, err = p.Input("URL", "", func(s string) error {
		if s == "" {
			return errors.New("empty")
		}
		return nil
	})
	assert.Error(t, err)
}

func TestWrapInterrupt(t *testing.T) {
	assert.ErrorIs(t, wrap(terminal.InterruptErr), ErrAborted)
	assert.NoError(t, wrap(nil))
}
