package java

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeInstall creates <root>/bin/<tools> as empty files
func makeInstall(t *testing.T, root string, tools ...string) string {
	t.Helper()
	bin := filepath.Join(root, "bin")
	require.NoError(t, os.MkdirAll(bin, 0755))
	for _, tool := range tools {
		require.NoError(t, os.WriteFile(filepath.Join(bin, exe(tool)), nil, 0755))
	}
	return root
}

// clearDetectEnv isolates tests from a developer's exported JDK settings
func clearDetectEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{JDKEnvKey, JavaTargetEnvKey, JavaTargetOverrideKey, JavaSourceOverrideKey} {
		t.Setenv(key, "")
	}
}

func TestResolveJDKHome(t *testing.T) {
	t.Run("jdk", func(t *testing.T) {
		jdk := makeInstall(t, t.TempDir(), "java", "javac")
		got, err := ResolveJDKHome(jdk)
		require.NoError(t, err)
		assert.Equal(t, filepath.Clean(jdk), got)
	})

	t.Run("jre nested in jdk", func(t *testing.T) {
		jdk := makeInstall(t, t.TempDir(), "java", "javac")
		jre := makeInstall(t, filepath.Join(jdk, "jre"), "java")

		got, err := ResolveJDKHome(jre)
		require.NoError(t, err)
		assert.Equal(t, filepath.Clean(jdk), got)
	})

	t.Run("standalone jre", func(t *testing.T) {
		jre := makeInstall(t, filepath.Join(t.TempDir(), "jre"), "java")

		_, err := ResolveJDKHome(jre)
		assert.ErrorIs(t, err, ErrJREOnly)
		assert.Contains(t, err.Error(), "no JDK found, but found JRE")
	})

	t.Run("nothing", func(t *testing.T) {
		_, err := ResolveJDKHome(filepath.Join(t.TempDir(), "missing"))
		assert.ErrorIs(t, err, ErrNoJDK)
	})
}

func TestDetect_ProbesAndExports(t *testing.T) {
	clearDetectEnv(t)
	jdk := makeInstall(t, t.TempDir(), "java", "javac")

	out := "Property settings:\n    java.home = " + jdk + "\n    java.specification.version = 17\n\n"
	r := &fakeRunner{outputs: map[string]string{"-XshowSettings:properties -version": out}}
	p := newTestProbe(filepath.Join(jdk, "bin", "java"), r)

	got, err := Detect(context.Background(), p, Overrides{})
	require.NoError(t, err)

	assert.Equal(t, &JDK{Home: filepath.Clean(jdk), Target: "17", Source: "17"}, got)
	assert.Equal(t, filepath.Clean(jdk), os.Getenv(JDKEnvKey))
	assert.Equal(t, "17", os.Getenv(JavaTargetEnvKey))

	// The exported values short-circuit the next detection
	got, err = Detect(context.Background(), p, Overrides{})
	require.NoError(t, err)
	assert.Equal(t, filepath.Clean(jdk), got.Home)
	assert.Len(t, r.calls, 1)
}

func TestDetect_UsesCachedEnv(t *testing.T) {
	clearDetectEnv(t)
	t.Setenv(JDKEnvKey, "/sample/home/java")
	t.Setenv(JavaTargetEnvKey, "9")

	r := &fakeRunner{}
	got, err := Detect(context.Background(), newTestProbe("/usr/bin/java", r), Overrides{})
	require.NoError(t, err)

	assert.Equal(t, &JDK{Home: "/sample/home/java", Target: "9", Source: "9"}, got)
	assert.Empty(t, r.calls)
}

func TestDetect_Overrides(t *testing.T) {
	tests := []struct {
		name       string
		envTarget  string
		envSource  string
		overrides  Overrides
		wantTarget string
		wantSource string
	}{
		{"env target", "10", "", Overrides{}, "10", "10"},
		{"env source", "", "8", Overrides{}, "9", "8"},
		{"config source", "", "", Overrides{Source: "10"}, "9", "10"},
		{"config both", "", "", Overrides{Target: "11", Source: "10"}, "11", "10"},
		{"config beats env", "10", "8", Overrides{Target: "11"}, "11", "8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearDetectEnv(t)
			t.Setenv(JDKEnvKey, "/sample/home/java")
			t.Setenv(JavaTargetEnvKey, "9")
			t.Setenv(JavaTargetOverrideKey, tt.envTarget)
			t.Setenv(JavaSourceOverrideKey, tt.envSource)

			got, err := Detect(context.Background(), newTestProbe("/usr/bin/java", &fakeRunner{}), tt.overrides)
			require.NoError(t, err)
			assert.Equal(t, "/sample/home/java", got.Home)
			assert.Equal(t, tt.wantTarget, got.Target)
			assert.Equal(t, tt.wantSource, got.Source)
		})
	}
}

func TestDetect_JREOnly(t *testing.T) {
	clearDetectEnv(t)
	jre := makeInstall(t, filepath.Join(t.TempDir(), "jre"), "java")

	out := "Property settings:\n    java.home = " + jre + "\n    java.specification.version = 17\n\n"
	r := &fakeRunner{outputs: map[string]string{"-XshowSettings:properties -version": out}}

	_, err := Detect(context.Background(), newTestProbe("/usr/bin/java", r), Overrides{})
	assert.ErrorIs(t, err, ErrJREOnly)
	assert.Empty(t, os.Getenv(JDKEnvKey))
}

func withGOOS(t *testing.T, platform string) {
	t.Helper()
	prev := goos
	goos = platform
	t.Cleanup(func() { goos = prev })
}

func TestJDKEnv(t *testing.T) {
	withGOOS(t, "linux")
	j := &JDK{Home: "/opt/jdk"}

	assert.Equal(t, map[string]string{
		"JAVA_HOME": "/opt/jdk",
		"JAVAC":     filepath.Join("/opt/jdk", "bin", "javac"),
	}, j.Env())
}

func TestJavaCmd(t *testing.T) {
	j := &JDK{Home: "/opt/jdk", Target: "17", Source: "17"}
	java := func(name string) string { return filepath.Join("/opt/jdk", "bin", name) }

	withGOOS(t, "linux")
	assert.Equal(t, []string{java("java")}, j.JavaCmd(CmdOptions{}))
	assert.Equal(t, []string{java("java"), "-Xmx512m"}, j.JavaCmd(CmdOptions{MaxMem: "512m"}))

	withGOOS(t, "darwin")
	assert.Equal(t, []string{java("java"), "-Djava.awt.headless=false"}, j.JavaCmd(CmdOptions{}))

	withGOOS(t, "windows")
	assert.Equal(t, []string{java("java.exe"), "-Dfile.encoding=UTF8"}, j.JavaCmd(CmdOptions{}))
}

func TestJavacCmd(t *testing.T) {
	j := &JDK{Home: "/opt/jdk", Target: "11", Source: "8"}
	javac := filepath.Join("/opt/jdk", "bin", "javac")

	withGOOS(t, "linux")
	assert.Equal(t,
		[]string{javac, "-target", "11", "-source", "8"},
		j.JavacCmd(CmdOptions{}))
	assert.Equal(t,
		[]string{javac, "-J-Xmx1g", "-target", "17", "-source", "17"},
		j.JavacCmd(CmdOptions{MaxMem: "1g", Target: "17", Source: "17"}))

	withGOOS(t, "darwin")
	assert.Equal(t,
		[]string{javac, "-target", "11", "-source", "8", "-encoding", "UTF8"},
		j.JavacCmd(CmdOptions{}))

	bare := &JDK{Home: "/opt/jdk"}
	withGOOS(t, "linux")
	assert.Equal(t, []string{javac}, bare.JavacCmd(CmdOptions{}))
}

func TestCommandCarriesJDKEnv(t *testing.T) {
	j := &JDK{Home: "/opt/jdk"}
	cmd := j.Command(context.Background(), []string{"/opt/jdk/bin/javac", "-version"})

	assert.Equal(t, []string{"/opt/jdk/bin/javac", "-version"}, cmd.Args)
	assert.Contains(t, cmd.Env, "JAVA_HOME=/opt/jdk")
	var hasJavac bool
	for _, kv := range cmd.Env {
		if strings.HasPrefix(kv, "JAVAC=") {
			hasJavac = true
		}
	}
	assert.True(t, hasJavac)
}

func TestCmdClasspath(t *testing.T) {
	withGOOS(t, "linux")
	j := &JDK{Home: "/opt/jdk", Target: "17"}
	cp := Classpath("lib/a.jar", "build/classes")

	java := j.JavaCmd(CmdOptions{Classpath: []string{"lib/a.jar", "", "build/classes"}})
	assert.Equal(t, []string{filepath.Join("/opt/jdk", "bin", "java"), "-cp", cp}, java)

	javac := j.JavacCmd(CmdOptions{Classpath: []string{"lib/a.jar", "build/classes"}})
	assert.Equal(t, []string{"-cp", cp}, javac[len(javac)-2:])
}

func TestClasspath(t *testing.T) {
	sep := string(os.PathListSeparator)
	assert.Equal(t, "a.jar"+sep+"b.jar", Classpath("a.jar", "", "b.jar"))
	assert.Equal(t, "", Classpath())
}
