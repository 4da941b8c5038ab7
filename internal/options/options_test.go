package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type blockConfig struct {
	size    int
	verify  bool
	applied []string
}

var errNegative = errors.New("size cannot be negative")

func withSize(n int) Option[*blockConfig] {
	return New(func(c *blockConfig) error {
		if n < 0 {
			return errNegative
		}
		c.size = n
		c.applied = append(c.applied, "size")

		return nil
	})
}

func withVerify(v bool) Option[*blockConfig] {
	return NoError(func(c *blockConfig) {
		c.verify = v
		c.applied = append(c.applied, "verify")
	})
}

func TestApply_InOrder(t *testing.T) {
	cfg := &blockConfig{}

	err := Apply(cfg, withSize(1024), withVerify(true), withSize(2048))
	require.NoError(t, err)
	require.Equal(t, 2048, cfg.size)
	require.True(t, cfg.verify)
	require.Equal(t, []string{"size", "verify", "size"}, cfg.applied)
}

func TestApply_StopsAtFirstError(t *testing.T) {
	cfg := &blockConfig{}

	err := Apply(cfg, withSize(-1), withVerify(true))
	require.ErrorIs(t, err, errNegative)
	require.False(t, cfg.verify, "options after a failure must not run")
}

func TestApply_SkipsNil(t *testing.T) {
	cfg := &blockConfig{}

	var opt Option[*blockConfig]
	require.NoError(t, Apply(cfg, opt, withVerify(true)))
	require.True(t, cfg.verify)
}

func TestApply_Empty(t *testing.T) {
	cfg := &blockConfig{size: 7}

	require.NoError(t, Apply(cfg))
	require.Equal(t, 7, cfg.size)
}
