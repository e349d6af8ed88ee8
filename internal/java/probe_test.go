package java

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const settingsJDK17 = `Property settings:
    file.encoding = UTF-8
    java.class.path =
    java.home = /usr/lib/runtime
    java.library.path = /usr/java/packages/lib
        /usr/lib64
        /lib64
    java.specification.name = Java Platform API Specification
    java.specification.version = 17
    java.version = 17.0.2

openjdk version "17.0.2" 2022-01-18
OpenJDK Runtime Environment (build 17.0.2+8-86)
`

// fakeRunner answers by the joined argument list
type fakeRunner struct {
	outputs map[string]string
	errs    map[string]error
	calls   []string
}

func (f *fakeRunner) run(_ context.Context, _ string, args ...string) ([]byte, error) {
	key := strings.Join(args, " ")
	f.calls = append(f.calls, key)
	return []byte(f.outputs[key]), f.errs[key]
}

func newTestProbe(launcher string, r *fakeRunner) *Probe {
	p := NewProbe(nil)
	p.Run = r.run
	p.lookPath = func(string) (string, error) { return launcher, nil }
	return p
}

func TestQuery_ReadsProperties(t *testing.T) {
	r := &fakeRunner{outputs: map[string]string{"-XshowSettings:properties -version": settingsJDK17}}
	p := newTestProbe("/usr/bin/java", r)

	info, err := p.Query(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Info{Home: "/usr/lib/runtime", SpecVersion: "17"}, info)
	assert.Equal(t, []string{"-XshowSettings:properties -version"}, r.calls)
}

func TestInfoWrite(t *testing.T) {
	info := Info{Home: "/usr/lib/runtime", SpecVersion: "17"}

	var labeled bytes.Buffer
	require.NoError(t, info.Write(&labeled, true))
	assert.Equal(t, "java.home:/usr/lib/runtime\njava.specification.version:17\n", labeled.String())

	var raw bytes.Buffer
	require.NoError(t, info.Write(&raw, false))
	assert.Equal(t, "/usr/lib/runtime\n17\n", raw.String())
}

func TestQuery_FallsBackToReleaseFile(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(home, ReleaseFile), []byte("IMPLEMENTOR=\"Eclipse Adoptium\"\nJAVA_VERSION=\"11.0.20\"\n"), 0644))

	out := "Property settings:\n    java.home = " + home + "\n    java.version = 99\n\n"
	r := &fakeRunner{outputs: map[string]string{"-XshowSettings:properties -version": out}}

	info, err := newTestProbe("/usr/bin/java", r).Query(context.Background())
	require.NoError(t, err)
	assert.Equal(t, home, info.Home)
	assert.Equal(t, "11", info.SpecVersion)
}

func TestQuery_FallsBackToVersionProperty(t *testing.T) {
	out := "Property settings:\n    java.home = /nonexistent/jre\n    java.version = 1.8.0_292\n\n"
	r := &fakeRunner{outputs: map[string]string{"-XshowSettings:properties -version": out}}

	info, err := newTestProbe("/usr/bin/java", r).Query(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1.8", info.SpecVersion)
}

func TestQuery_LegacyLauncherWithoutShowSettings(t *testing.T) {
	home := t.TempDir()
	bin := filepath.Join(home, "bin")
	require.NoError(t, os.MkdirAll(bin, 0755))
	launcher := filepath.Join(bin, exe("java"))
	require.NoError(t, os.WriteFile(launcher, nil, 0755))

	r := &fakeRunner{
		outputs: map[string]string{
			"-XshowSettings:properties -version": "Unrecognized option: -XshowSettings:properties\nError: Could not create the Java Virtual Machine.\n",
			"-version":                           "java version \"1.6.0_45\"\nJava(TM) SE Runtime Environment (build 1.6.0_45-b06)\n",
		},
		errs: map[string]error{"-XshowSettings:properties -version": errors.New("exit status 1")},
	}

	info, err := newTestProbe(launcher, r).Query(context.Background())
	require.NoError(t, err)

	wantHome, err := filepath.EvalSymlinks(home)
	require.NoError(t, err)
	assert.Equal(t, wantHome, info.Home)
	assert.Equal(t, "1.6", info.SpecVersion)
}

func TestQuery_BrokenRuntimeIsNotLegacy(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(home, ReleaseFile), []byte(`JAVA_VERSION="17.0.2"`), 0644))
	bin := filepath.Join(home, "bin")
	require.NoError(t, os.MkdirAll(bin, 0755))
	launcher := filepath.Join(bin, exe("java"))
	require.NoError(t, os.WriteFile(launcher, nil, 0755))

	for _, out := range []string{
		"Error: could not find libjava.so\nError: Could not find Java SE Runtime Environment.\n",
		"Error: Could not create the Java Virtual Machine.\nError: A fatal exception has occurred. Program will exit.\n",
	} {
		r := &fakeRunner{
			outputs: map[string]string{"-XshowSettings:properties -version": out},
			errs:    map[string]error{"-XshowSettings:properties -version": errors.New("exit status 1")},
		}

		_, err := newTestProbe(launcher, r).Query(context.Background())
		require.Error(t, err, out)
		assert.Contains(t, err.Error(), "exit status 1")
		assert.Contains(t, err.Error(), "Error: ")
		assert.Equal(t, []string{"-XshowSettings:properties -version"}, r.calls)
	}
}

func TestQuery_LauncherMissing(t *testing.T) {
	p := NewProbe(nil)
	p.lookPath = func(name string) (string, error) { return "", errors.New("executable file not found in $PATH") }

	_, err := p.Query(context.Background())
	assert.ErrorIs(t, err, ErrJavaNotFound)
}

func TestQuery_LauncherFailsWithoutOutput(t *testing.T) {
	r := &fakeRunner{errs: map[string]error{"-XshowSettings:properties -version": errors.New("permission denied")}}

	_, err := newTestProbe("/usr/bin/java", r).Query(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
}

func TestQuery_NoVersionAnywhere(t *testing.T) {
	out := "Property settings:\n    java.home = /nonexistent\n\n"
	r := &fakeRunner{
		outputs: map[string]string{"-XshowSettings:properties -version": out},
		errs:    map[string]error{"-version": errors.New("boom")},
	}

	_, err := newTestProbe("/usr/bin/java", r).Query(context.Background())
	assert.ErrorIs(t, err, ErrNoSpecVersion)
}

func TestQuery_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &fakeRunner{errs: map[string]error{"-XshowSettings:properties -version": context.Canceled}}

	_, err := newTestProbe("/usr/bin/java", r).Query(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLauncherUsesExplicitPath(t *testing.T) {
	p := NewProbe(nil)
	p.Java = "/opt/jdk-21/bin/java"
	var asked string
	p.lookPath = func(name string) (string, error) {
		asked = name
		return name, nil
	}

	got, err := p.Launcher()
	require.NoError(t, err)
	assert.Equal(t, "/opt/jdk-21/bin/java", got)
	assert.Equal(t, "/opt/jdk-21/bin/java", asked)
}

func TestHomeFromLauncherOutsideBin(t *testing.T) {
	launcher := filepath.Join(t.TempDir(), "java")
	require.NoError(t, os.WriteFile(launcher, nil, 0755))

	_, err := homeFromLauncher(launcher)
	assert.ErrorIs(t, err, ErrNoJavaHome)
}
