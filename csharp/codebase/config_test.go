package codebase

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    Config
		wantErr bool
	}{
		{
			name: "toml",
			file: "codedom.toml",
			content: `[format]
indent = 2
align_enums = true

[check]
jobs = 3
exclude = ["gen/"]
cache = true
`,
			want: Config{
				Format: FormatConfig{Indent: 2, AlignEnums: true},
				Check:  CheckConfig{Jobs: 3, Exclude: []string{"gen/"}, Cache: true},
			},
		},
		{
			name:    "toml keeps defaults",
			file:    "codedom.toml",
			content: "[check]\njobs = 1\n",
			want:    Config{Format: FormatConfig{Indent: 4}, Check: CheckConfig{Jobs: 1}},
		},
		{
			name:    "yaml",
			file:    ".codedom.yaml",
			content: "format:\n  indent: 0\ncheck:\n  exclude:\n    - \"*.g.cs\"\n",
			want:    Config{Check: CheckConfig{Exclude: []string{"*.g.cs"}}},
		},
		{name: "bad toml", file: "codedom.toml", content: "[format\n", wantErr: true},
		{name: "negative indent", file: "codedom.toml", content: "[format]\nindent = -1\n", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			sub := filepath.Join(root, "src", "deep")
			require.NoError(t, os.MkdirAll(sub, 0o755))
			path := filepath.Join(root, tt.file)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			got, err := LoadConfig(sub)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, path, got.Path)
			assert.Equal(t, root, got.Root(sub))
			got.Path = ""
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	if cfg.Path != "" {
		t.Skipf("found configuration above the temp dir: %s", cfg.Path)
	}
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, dir, cfg.Root(dir))
	assert.Len(t, cfg.FormatOptions(), 2)
}

func TestReadConfigUnknownFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codedom.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))
	_, err := ReadConfig(path)
	assert.Error(t, err)
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.cs":            "class A {}",
		"sub/b.cs":        "class B {}",
		"readme.txt":      "",
		".hidden/c.cs":    "class C {}",
		"bin/d.cs":        "class D {}",
		"gen/e.cs":        "class E {}",
		"ignored.cs":      "class F {}",
		"sub/.private.cs": "class G {}",
		".gitignore":      "ignored.cs\n",
	})

	got, err := Discover(dir, []string{"gen/"})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.cs"), filepath.Join(dir, "sub", "b.cs")}, got)

	got, err = Discover(dir, nil)
	require.NoError(t, err)
	assert.Contains(t, got, filepath.Join(dir, "gen", "e.cs"))
	assert.NotContains(t, got, filepath.Join(dir, "ignored.cs"))
}
