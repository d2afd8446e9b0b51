package confkit

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePath(t *testing.T) {
	t.Setenv("YI_CONFKIT_DIR", "/srv/yidino")
	tests := []struct {
		name string
		base string
		file string
		want string
	}{
		{"absolute", "/etc/yidino", "/opt/market.yaml", "/opt/market.yaml"},
		{"relative", "/etc/yidino", "market.yaml", "/etc/yidino/market.yaml"},
		{"expands to absolute", "/etc/yidino", "${YI_CONFKIT_DIR}/market.yaml", "/srv/yidino/market.yaml"},
		{"empty", "/etc/yidino", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolvePath(tt.base, tt.file))
		})
	}
}

func TestBaseDir(t *testing.T) {
	assert.Equal(t, "etc", BaseDir("etc/yidino.yaml"))
	assert.Equal(t, "/", BaseDir("/yidino.yaml"))
}

func TestSectionHydrate(t *testing.T) {
	t.Run("empty file is a no-op", func(t *testing.T) {
		var s Section[string]
		err := s.Hydrate("/base", func(string) (*string, error) {
			t.Fatal("loader called")
			return nil, nil
		})
		require.NoError(t, err)
		assert.False(t, s.Loaded())
	})

	t.Run("loads relative to base", func(t *testing.T) {
		s := Section[string]{File: "market.yaml"}
		v := "ok"
		var gotPath string
		require.NoError(t, s.Hydrate("/base", func(p string) (*string, error) {
			gotPath = p
			return &v, nil
		}))
		assert.Equal(t, "/base/market.yaml", gotPath)
		assert.Equal(t, "/base/market.yaml", s.File)
		assert.True(t, s.Loaded())
		assert.Equal(t, "ok", *s.Value)
	})

	t.Run("loader error keeps file", func(t *testing.T) {
		s := Section[string]{File: "market.yaml"}
		boom := errors.New("boom")
		err := s.Hydrate("/base", func(string) (*string, error) { return nil, boom })
		require.ErrorIs(t, err, boom)
		assert.Equal(t, "market.yaml", s.File)
		assert.False(t, s.Loaded())
	})
}

func TestProjectRoot(t *testing.T) {
	root, err := ProjectRoot()
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(root, "go.mod"))
}

func TestLocate(t *testing.T) {
	root, err := ProjectRoot()
	require.NoError(t, err)

	tests := []struct {
		name string
		rel  string
		want string
	}{
		{"empty", "", ""},
		{"absolute kept", "/nowhere/yidino.yaml", "/nowhere/yidino.yaml"},
		{"found under module root", "etc/market.yaml", filepath.Join(root, "etc", "market.yaml")},
		{"missing everywhere", "etc/absent.yaml", "etc/absent.yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Locate(tt.rel))
		})
	}

	dir := t.TempDir()
	local := filepath.Join(dir, "local.yaml")
	require.NoError(t, os.WriteFile(local, []byte("x: 1\n"), 0o600))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	assert.Equal(t, "local.yaml", Locate("local.yaml"), "working directory wins")
}

func TestLoadDotenvExplicitFile(t *testing.T) {
	const key = "YI_CONFKIT_DOTENV_PROBE"
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte(key+"=from-file\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv(key) })

	env := map[string]string{EnvFile: path}
	loaded := loadDotenv(func(k string) string { return env[k] })
	assert.Equal(t, []string{path}, loaded)
	assert.Equal(t, "from-file", os.Getenv(key))

	// existing values win without overload
	require.NoError(t, os.WriteFile(path, []byte(key+"=second\n"), 0o600))
	loadDotenv(func(k string) string { return env[k] })
	assert.Equal(t, "from-file", os.Getenv(key))

	env[EnvOverload] = "1"
	loadDotenv(func(k string) string { return env[k] })
	assert.Equal(t, "second", os.Getenv(key))
}

func TestLoadDotenvDisabled(t *testing.T) {
	env := map[string]string{EnvNoDotenv: "1", EnvFile: "/does/not/matter"}
	assert.Empty(t, loadDotenv(func(k string) string { return env[k] }))
}
