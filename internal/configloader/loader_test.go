package configloader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/yaklabco/textanalyzer/pkg/config"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func isolated(dir string) LoadOptions {
	return LoadOptions{
		WorkingDir:         dir,
		IgnoreSystemConfig: true,
		IgnoreUserConfig:   true,
		IgnoreEnv:          true,
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	result, err := Load(context.Background(), isolated(t.TempDir()))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if result.Config == nil {
		t.Fatal("Load() returned nil config")
	}
	if result.Config.Analysis.MarkdownFlavor != config.FlavorCommonMark {
		t.Errorf("expected flavor %q, got %q", config.FlavorCommonMark, result.Config.Analysis.MarkdownFlavor)
	}
	if result.Config.PoolSize() != config.DefaultPoolEntries {
		t.Errorf("expected pool size %d, got %d", config.DefaultPoolEntries, result.Config.PoolSize())
	}
	if len(result.LoadedFrom()) != 0 {
		t.Errorf("expected no files loaded, got %v", result.LoadedFrom())
	}
}

func TestLoad_ProjectConfig(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, ".textanalyzer.yml"), `
analysis:
  markdown_flavor: gfm
  pool:
    enabled: false
languages:
  python:
    strategy: lexer
jobs: 2
`)

	result, err := Load(context.Background(), isolated(tmpDir))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	cfg := result.Config
	if cfg.Analysis.MarkdownFlavor != config.FlavorGFM {
		t.Errorf("expected flavor gfm, got %q", cfg.Analysis.MarkdownFlavor)
	}
	if cfg.PoolSize() != 0 {
		t.Errorf("expected pool disabled, got size %d", cfg.PoolSize())
	}
	if cfg.Languages["python"].Strategy != "lexer" {
		t.Errorf("expected python strategy lexer, got %q", cfg.Languages["python"].Strategy)
	}
	if cfg.Jobs != 2 {
		t.Errorf("expected jobs 2, got %d", cfg.Jobs)
	}
	// Unset fields keep their defaults.
	if cfg.Analysis.MaxBlocks != config.DefaultMaxBlocks {
		t.Errorf("expected default max_blocks, got %d", cfg.Analysis.MaxBlocks)
	}
	if len(result.LoadedFrom()) != 1 {
		t.Errorf("expected one loaded file, got %v", result.LoadedFrom())
	}
}

func TestLoad_ProjectConfigFoundFromSubdirectory(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	sub := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(root, "textanalyzer.yaml"), "jobs: 5\n")

	result, err := Load(context.Background(), isolated(sub))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if result.Config.Jobs != 5 {
		t.Errorf("expected jobs 5, got %d", result.Config.Jobs)
	}
}

func TestFindProjectConfig_StopsAtVCSRoot(t *testing.T) {
	t.Parallel()

	outer := t.TempDir()
	writeFile(t, filepath.Join(outer, ".textanalyzer.yml"), "jobs: 1\n")

	repo := filepath.Join(outer, "repo")
	if err := os.MkdirAll(filepath.Join(repo, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}

	path, err := FindProjectConfig(context.Background(), repo)
	if err != nil {
		t.Fatalf("FindProjectConfig() error = %v", err)
	}
	if path != "" {
		t.Errorf("expected no config past the VCS root, got %q", path)
	}
}

func TestLoad_IgnoreProjectConfig(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, ".textanalyzer.yml"), "jobs: 3\n")

	opts := isolated(tmpDir)
	opts.IgnoreProjectConfig = true

	result, err := Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if result.Config.Jobs == 3 {
		t.Error("project config should be ignored")
	}
	if len(result.Layers) != 0 {
		t.Errorf("expected no layers, got %v", result.Layers)
	}
}

func TestUserConfigDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")

	dir, err := UserConfigDir()
	if err != nil {
		t.Fatalf("UserConfigDir() error = %v", err)
	}
	if dir != filepath.Join("/tmp/xdg", "textanalyzer") {
		t.Errorf("unexpected user config dir %q", dir)
	}
}

func TestLoad_ExplicitConfig(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, ".textanalyzer.yml"), "output:\n  format: json\n")
	customPath := filepath.Join(tmpDir, "custom-config.yml")
	writeFile(t, customPath, "output:\n  format: summary\n")

	opts := isolated(tmpDir)
	opts.ExplicitPath = customPath

	result, err := Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if result.Config.Output.Format != config.FormatSummary {
		t.Errorf("expected format summary, got %q", result.Config.Output.Format)
	}
	want := []Layer{
		{Source: SourceProject, Path: filepath.Join(tmpDir, ".textanalyzer.yml")},
		{Source: SourceExplicit, Path: customPath},
	}
	if len(result.Layers) != len(want) {
		t.Fatalf("expected layers %v, got %v", want, result.Layers)
	}
	for i := range want {
		if result.Layers[i] != want[i] {
			t.Errorf("layer %d = %v, want %v", i, result.Layers[i], want[i])
		}
	}
}

func TestLoad_CLIOverrides(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, ".textanalyzer.yml"), "jobs: 2\noutput:\n  format: json\n")

	opts := isolated(tmpDir)
	opts.CLIConfig = &config.Config{
		Jobs:  8,
		Debug: true,
	}

	result, err := Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if result.Config.Jobs != 8 {
		t.Errorf("expected jobs 8 (CLI override), got %d", result.Config.Jobs)
	}
	if !result.Config.Debug {
		t.Error("expected debug true (CLI override)")
	}
	if result.Config.Output.Format != config.FormatJSON {
		t.Errorf("expected format json from project config, got %q", result.Config.Output.Format)
	}
}

func TestLoad_InvalidConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		field   string
	}{
		{"flavor", "analysis:\n  markdown_flavor: invalid\n", "analysis.markdown_flavor"},
		{"format", "output:\n  format: sarif\n", "output.format"},
		{"color", "output:\n  color: rainbow\n", "output.color"},
		{"jobs", "jobs: -1\n", "jobs"},
		{"strategy", "languages:\n  json:\n    strategy: treesitter\n", "languages.json.strategy"},
		{"glob", "ignore:\n  - \"[\"\n", "ignore[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tmpDir := t.TempDir()
			writeFile(t, filepath.Join(tmpDir, ".textanalyzer.yml"), tt.content)

			_, err := Load(context.Background(), isolated(tmpDir))
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if verr.Field != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, verr.Field)
			}
		})
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, ".textanalyzer.yml"), "analysis: [oops")

	_, err := Load(context.Background(), isolated(tmpDir))
	if err == nil || !strings.Contains(err.Error(), "load project config") {
		t.Fatalf("expected project config error, got %v", err)
	}
}

func TestLoad_ContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Load(ctx, isolated(t.TempDir()))
	if err == nil {
		t.Fatal("expected context cancellation error")
	}
}

func TestLoad_NormalizesLanguageKeys(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, ".textanalyzer.yml"), `
languages:
  golang:
    strategy: lexer
  go:
    strategy: treesitter
  JS:
    enabled: false
`)

	result, err := Load(context.Background(), isolated(tmpDir))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	langs := result.Config.Languages
	if _, ok := langs["golang"]; ok {
		t.Error("alias key should be normalized away")
	}
	// Keys are processed in sorted order: "go" then "golang".
	if langs["go"].Strategy != "lexer" {
		t.Errorf("expected go strategy lexer, got %q", langs["go"].Strategy)
	}
	if langs["javascript"].LanguageEnabled() {
		t.Error("expected javascript disabled")
	}
	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0], "duplicate language") {
		t.Errorf("expected one duplicate warning, got %v", result.Warnings)
	}
}

func TestLoadFromLookup(t *testing.T) {
	t.Parallel()

	env := map[string]string{
		"TEXTANALYZER_JOBS":           "3",
		"TEXTANALYZER_FORMAT":         "json",
		"TEXTANALYZER_POOL_ENABLED":   "false",
		"TEXTANALYZER_IGNORE":         "vendor/**, dist/**",
		"TEXTANALYZER_WATCH_DEBOUNCE": "50ms",
		"TEXTANALYZER_METRICS_ADDR":   ":9000",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := config.NewConfig()
	if err := loadFromLookup(cfg, lookup); err != nil {
		t.Fatalf("loadFromLookup() error = %v", err)
	}

	if cfg.Jobs != 3 {
		t.Errorf("expected jobs 3, got %d", cfg.Jobs)
	}
	if cfg.Output.Format != config.FormatJSON {
		t.Errorf("expected format json, got %q", cfg.Output.Format)
	}
	if cfg.PoolSize() != 0 {
		t.Errorf("expected pool disabled, got %d", cfg.PoolSize())
	}
	if len(cfg.Ignore) != 2 || cfg.Ignore[1] != "dist/**" {
		t.Errorf("unexpected ignore %v", cfg.Ignore)
	}
	if cfg.Watch.Debounce != 50*time.Millisecond {
		t.Errorf("expected debounce 50ms, got %v", cfg.Watch.Debounce)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Addr != ":9000" {
		t.Errorf("expected metrics on :9000, got %+v", cfg.Metrics)
	}
}

func TestLoadFromLookup_InvalidValues(t *testing.T) {
	t.Parallel()

	for name, value := range map[string]string{
		"TEXTANALYZER_JOBS":           "many",
		"TEXTANALYZER_POOL_ENABLED":   "sometimes",
		"TEXTANALYZER_WATCH_DEBOUNCE": "soon",
	} {
		lookup := func(k string) (string, bool) {
			if k == name {
				return value, true
			}
			return "", false
		}

		err := loadFromLookup(config.NewConfig(), lookup)
		if err == nil || !strings.Contains(err.Error(), name) {
			t.Errorf("%s=%s: expected error naming the variable, got %v", name, value, err)
		}
	}
}

func TestListEnvVars(t *testing.T) {
	t.Parallel()

	vars := ListEnvVars()
	if len(vars) != len(envVars) {
		t.Fatalf("expected %d vars, got %d", len(envVars), len(vars))
	}
	for _, v := range vars {
		if !strings.HasPrefix(v.Name, envVarPrefix) || v.Description == "" {
			t.Errorf("bad env var entry %+v", v)
		}
	}
}

func TestMergeAll(t *testing.T) {
	t.Parallel()

	base := config.NewConfig()
	base.Languages["go"] = config.LanguageConfig{Strategy: "treesitter", Extensions: []string{".go"}}

	override := &config.Config{
		Languages: map[string]config.LanguageConfig{
			"go": {Enabled: config.BoolPtr(false)},
		},
		Watch: config.WatchConfig{Poll: true},
	}

	merged := MergeAll(base, override)
	goCfg := merged.Languages["go"]
	if goCfg.Strategy != "treesitter" || len(goCfg.Extensions) != 1 || goCfg.LanguageEnabled() {
		t.Errorf("unexpected merged go config %+v", goCfg)
	}
	if !merged.Watch.Poll {
		t.Error("expected poll enabled")
	}
	if merged.Watch.Debounce != config.DefaultDebounce {
		t.Errorf("expected default debounce kept, got %v", merged.Watch.Debounce)
	}

	merged.Ignore = append(merged.Ignore, "vendor/**")
	merged.Languages["rust"] = config.LanguageConfig{Strategy: "lexer"}
	if _, ok := base.Languages["rust"]; ok {
		t.Error("merge result aliases base languages")
	}
	if len(base.Ignore) != 0 {
		t.Errorf("merge result aliases base ignore list: %v", base.Ignore)
	}

	if MergeAll() != nil {
		t.Error("expected nil for no configs")
	}
}

func TestNormalizeLanguage(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"golang":   "go",
		" Python3": "python",
		"bash":     "shell",
		"Markdown": "markdown",
		"cobol":    "cobol",
	}
	for in, want := range tests {
		if got := NormalizeLanguage(in); got != want {
			t.Errorf("NormalizeLanguage(%q) = %q, want %q", in, got, want)
		}
	}

	aliases := AliasesFor("shell")
	if strings.Join(aliases, ",") != "bash,sh,zsh" {
		t.Errorf("AliasesFor(shell) = %v", aliases)
	}
}

func TestWriteConfigRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ".textanalyzer.yml")
	cfg := config.NewConfig()
	cfg.Jobs = 6

	if err := WriteConfig(context.Background(), cfg, path); err != nil {
		t.Fatalf("WriteConfig() error = %v", err)
	}

	loaded, err := readConfigFile(context.Background(), path)
	if err != nil {
		t.Fatalf("readConfigFile() error = %v", err)
	}
	if loaded.Jobs != 6 {
		t.Errorf("expected jobs 6, got %d", loaded.Jobs)
	}
}
