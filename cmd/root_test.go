package cmd

import (
	"strings"
	"testing"

	"github.com/inkwell/printsched/common"
	"github.com/inkwell/printsched/config"
	"github.com/stretchr/testify/assert"
)

func TestRootCommandRegistersSpecFlags(t *testing.T) {
	a := assert.New(t)
	root := NewRootCommand()
	for _, shorthand := range []string{"c", "f", "F", "l", "s", "t", "T", "P"} {
		flag := root.Flags().ShorthandLookup(shorthand)
		a.NotNil(flag, "missing -%s", shorthand)
	}
}

func TestTestConfigFlagPrintsAndExitsWithoutStartingDaemon(t *testing.T) {
	a := assert.New(t)
	root := NewRootCommand()
	root.SetArgs([]string{"-t"})
	a.NoError(root.Execute())
}

func TestMergeFilesConfOverridesOnlyNonDefaultFields(t *testing.T) {
	a := assert.New(t)
	base := config.Default()
	overlay := base
	overlay.SpoolDir = "/custom/spool"

	merged := mergeFilesConf(base, overlay)
	a.Equal("/custom/spool", merged.SpoolDir)
	a.Equal(base.BannerDir, merged.BannerDir)
}

func TestDefaultUIHooksPromptReturnsDefaultOption(t *testing.T) {
	a := assert.New(t)
	// NewJobUIHooks' Prompt answers EResponseOption.Default() whatever the
	// offered options, which confirmDestructive in the dispatch package
	// treats as "operation declined", since only Yes/YesForAll proceed.
	h := common.NewJobUIHooks()
	resp := h.Prompt("delete \"office\"?", common.PromptDetails{
		ResponseOptions: []common.ResponseOption{common.EResponseOption.Yes(), common.EResponseOption.No()},
	})
	a.Equal(common.EResponseOption.Default(), resp)
	a.True(strings.HasPrefix("delete \"office\"?", "delete"))
}
