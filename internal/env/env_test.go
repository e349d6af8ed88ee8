package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func withGOOS(t *testing.T, platform string) {
	t.Helper()
	prev := goos
	goos = platform
	t.Cleanup(func() { goos = prev })
}

func TestSamePath(t *testing.T) {
	withGOOS(t, "linux")

	assert.True(t, SamePath("/usr/lib/jvm/jdk-17", "/usr/lib/jvm/jdk-17/"))
	assert.False(t, SamePath("/USR/lib/jvm/JDK-17", "/usr/lib/jvm/jdk-17"))
	assert.False(t, SamePath("/usr/lib/jvm/jdk-17", "/usr/lib/jvm/jdk-21"))
	assert.False(t, SamePath("", ""))
}

func TestSamePathDarwinIsCaseSensitive(t *testing.T) {
	withGOOS(t, "darwin")

	assert.False(t, SamePath("/Library/Java/JDK-17", "/Library/Java/jdk-17"))
}

func TestSamePathWindowsFoldsCase(t *testing.T) {
	withGOOS(t, "windows")

	assert.True(t, SamePath(`C:\Program Files\Java\JDK-17`, `c:\program files\java\jdk-17`))
	assert.Equal(t, PathKey(`C:\Java\JDK`), PathKey(`c:\java\jdk`))
}
