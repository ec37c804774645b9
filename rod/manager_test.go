//go:build integration

package rod_test

import (
	"testing"

	"github.com/fwojciec/wikidoc/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrowserManager_ReplacesBrowserAfterMaxPages(t *testing.T) {
	t.Parallel()

	manager, err := rod.NewBrowserManager(rod.WithMaxPages(3))
	require.NoError(t, err)
	defer manager.Close()

	firstBrowser := manager.Browser()
	require.NotNil(t, firstBrowser)

	for range 3 {
		manager.PageDone()
	}

	secondBrowser := manager.Browser()
	require.NotNil(t, secondBrowser)

	assert.NotSame(t, firstBrowser, secondBrowser)
}

func TestBrowserManager_KeepsBrowserBeforeMaxPages(t *testing.T) {
	t.Parallel()

	manager, err := rod.NewBrowserManager(rod.WithMaxPages(5))
	require.NoError(t, err)
	defer manager.Close()

	firstBrowser := manager.Browser()
	require.NotNil(t, firstBrowser)

	manager.PageDone()
	manager.PageDone()

	sameBrowser := manager.Browser()
	assert.Same(t, firstBrowser, sameBrowser)
}

func TestBrowserManager_Close(t *testing.T) {
	t.Parallel()

	manager, err := rod.NewBrowserManager()
	require.NoError(t, err)

	assert.NotZero(t, manager.LauncherPID())
	require.NoError(t, manager.Close())
	require.NoError(t, manager.Close())
	assert.Zero(t, manager.LauncherPID())
	assert.Nil(t, manager.Browser())
}
