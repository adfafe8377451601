package site

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/simplesite/internal/assets"
	ferrors "git.home.luguber.info/inful/simplesite/internal/foundation/errors"
	"git.home.luguber.info/inful/simplesite/internal/locale"
	"git.home.luguber.info/inful/simplesite/internal/metrics"
	"git.home.luguber.info/inful/simplesite/internal/paths"
	"git.home.luguber.info/inful/simplesite/internal/util/sets"
)

const stringsTOML = `
[en]
site = "Cats"
post_a = "First"
post_b = "Second"

[jp]
site = "猫"
post_a = "一"
post_b = "二"

[fr]
site = "Chats"
post_a = "Premier"
post_b = "Deuxième"
`

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

// siteFixture lays out a small blog and returns source dir and strings path.
func siteFixture(t *testing.T) (string, string) {
	t.Helper()
	base := t.TempDir()
	src := filepath.Join(base, "src")
	writeTree(t, src, map[string]string{
		"index.html.tmpl":       `<html lang="{{ .Lang }}"><head><title>{{ str "site" }}</title></head></html>`,
		"blog/index.html.tmpl":  `{{ range autolink "." }}<a href="{{ .URL }}">{{ .Title }}</a>{{ end }}`,
		"blog/post-a.html.tmpl": `<head><title>{{ str "post_a" }}</title><meta name="description" content="a"></head>`,
		"blog/post-b.html.tmpl": `<head><title>{{ str "post_b" }}</title></head>`,
		"drafts/wip.html.tmpl":  `{{ str "does_not_exist" }}`,
		"img/cat.jpg":           "meow",
		".siteignore":           "# unfinished\ndrafts/wip.html.tmpl\n",
	})
	stringsPath := filepath.Join(base, "strings.toml")
	require.NoError(t, os.WriteFile(stringsPath, []byte(stringsTOML), 0o644))
	return src, stringsPath
}

type countingRecorder struct {
	metrics.NoopRecorder
	pages    map[string]int
	outcomes map[metrics.Outcome]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{pages: map[string]int{}, outcomes: map[metrics.Outcome]int{}}
}

func (c *countingRecorder) IncPagesRendered(locale string)          { c.pages[locale]++ }
func (c *countingRecorder) IncBuildOutcome(outcome metrics.Outcome) { c.outcomes[outcome]++ }

func newBuilder(src, out, stringsPath string, rec metrics.Recorder, mutate ...func(*Options)) *Builder {
	opts := Options{
		SourceDir:   src,
		OutputDir:   out,
		StringsFile: stringsPath,
		IgnoreFile:  ".siteignore",
		Symlinks:    true,
		Mapper:      paths.NewMapper("", ""),
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		Recorder:    rec,
	}
	for _, m := range mutate {
		m(&opts)
	}
	return NewBuilder(opts)
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestBuild_Localized(t *testing.T) {
	src, stringsPath := siteFixture(t)
	out := filepath.Join(t.TempDir(), "out")
	rec := newCountingRecorder()

	report, err := newBuilder(src, out, stringsPath, rec).Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"en", "jp", "fr"}, report.Locales)
	assert.Equal(t, 4, report.Templates)
	assert.Equal(t, map[string]int{"en": 4, "jp": 4, "fr": 4}, report.Pages)
	assert.Equal(t, map[string]int{"en": 4, "jp": 4, "fr": 4}, rec.pages)
	assert.Equal(t, 1, rec.outcomes[metrics.OutcomeSuccess])
	assert.NotEmpty(t, report.BuildID)

	assert.Equal(t,
		`<a href="post-a.html">一</a><a href="post-b.html">二</a>`,
		readFile(t, filepath.Join(out, "jp", "blog", "index.html")))
	assert.Contains(t, readFile(t, filepath.Join(out, "fr", "index.html")), `<title>Chats</title>`)
	assert.Contains(t, readFile(t, filepath.Join(out, "en", "index.html")), `lang="en"`)

	assert.NoFileExists(t, filepath.Join(out, "en", "drafts", "wip.html"))
	assert.NoFileExists(t, filepath.Join(out, "en", ".siteignore"))
	assert.NoFileExists(t, filepath.Join(out, "en", "index.html.tmpl"))
}

func TestBuild_SecondaryLocalesSymlinkToPrimary(t *testing.T) {
	src, stringsPath := siteFixture(t)
	out := filepath.Join(t.TempDir(), "out")

	report, err := newBuilder(src, out, stringsPath, nil).Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, assets.ModeCopy, report.AssetModes["en"])
	assert.Equal(t, assets.ModeSymlink, report.AssetModes["jp"])

	primary := filepath.Join(out, "en", "img", "cat.jpg")
	fi, err := os.Lstat(primary)
	require.NoError(t, err)
	assert.True(t, fi.Mode().IsRegular())

	for _, loc := range []string{"jp", "fr"} {
		link := filepath.Join(out, loc, "img", "cat.jpg")
		target, err := os.Readlink(link)
		require.NoError(t, err, loc)
		assert.Equal(t, filepath.Join("..", "..", "en", "img", "cat.jpg"), target)
		assert.Equal(t, "meow", readFile(t, link))
	}
}

func TestBuild_NoSymlinksCopiesEveryLocale(t *testing.T) {
	src, stringsPath := siteFixture(t)
	out := filepath.Join(t.TempDir(), "out")

	_, err := newBuilder(src, out, stringsPath, nil, func(o *Options) { o.Symlinks = false }).
		Build(context.Background())
	require.NoError(t, err)

	fi, err := os.Lstat(filepath.Join(out, "jp", "img", "cat.jpg"))
	require.NoError(t, err)
	assert.True(t, fi.Mode().IsRegular())
}

func TestBuild_UnlocalizedWhenDefaultStringsAbsent(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "src")
	writeTree(t, src, map[string]string{
		"index.html.tmpl":     `{{ range autolink "blog" }}{{ .URL }} {{ end }}`,
		"blog/post.html.tmpl": `<title>Post</title>`,
		"img/cat.jpg":         "meow",
	})
	out := filepath.Join(base, "out")

	report, err := newBuilder(src, out, filepath.Join(base, locale.DefaultPath), nil).Build(context.Background())
	require.NoError(t, err)

	assert.False(t, report.Localized())
	assert.Equal(t, map[string]int{"": 2}, report.Pages)
	assert.Equal(t, "blog/post.html ", readFile(t, filepath.Join(out, "index.html")))
	assert.FileExists(t, filepath.Join(out, "blog", "post.html"))
	assert.Equal(t, "meow", readFile(t, filepath.Join(out, "img", "cat.jpg")))
}

func TestBuild_RequiredStringsMissing(t *testing.T) {
	src, _ := siteFixture(t)
	out := filepath.Join(t.TempDir(), "out")

	_, err := newBuilder(src, out, filepath.Join(t.TempDir(), "nope.toml"), nil,
		func(o *Options) { o.RequireStrings = true }).Build(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, locale.ErrLocalizationNotFound)
	assert.NoDirExists(t, out)
}

func TestBuild_MalformedStringsWritesNothing(t *testing.T) {
	src, stringsPath := siteFixture(t)
	require.NoError(t, os.WriteFile(stringsPath, []byte("[en\nsite = "), 0o644))
	out := filepath.Join(t.TempDir(), "out")
	rec := newCountingRecorder()

	_, err := newBuilder(src, out, stringsPath, rec).Build(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, locale.ErrLocalizationMalformed)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
	assert.Contains(t, err.Error(), "invalid localization file")

	classified, ok := ferrors.AsClassified(err)
	require.True(t, ok)
	got, _ := classified.Context().GetString("path")
	assert.Equal(t, stringsPath, got)

	assert.NoDirExists(t, out)
	assert.Equal(t, 1, rec.outcomes[metrics.OutcomeFailed])
}

func TestBuild_EmptyTableIsNoop(t *testing.T) {
	src, stringsPath := siteFixture(t)
	require.NoError(t, os.WriteFile(stringsPath, nil, 0o644))
	out := filepath.Join(t.TempDir(), "out")
	writeTree(t, out, map[string]string{"previous.html": "keep"})
	rec := newCountingRecorder()

	report, err := newBuilder(src, out, stringsPath, rec).Build(context.Background())
	require.NoError(t, err)

	assert.True(t, report.Skipped)
	assert.Equal(t, "keep", readFile(t, filepath.Join(out, "previous.html")))
	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, 1, rec.outcomes[metrics.OutcomeNoop])
}

func TestBuild_ClearsPreviousOutput(t *testing.T) {
	src, stringsPath := siteFixture(t)
	out := filepath.Join(t.TempDir(), "out")
	writeTree(t, out, map[string]string{"stale/old.html": "old"})

	_, err := newBuilder(src, out, stringsPath, nil).Build(context.Background())
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(out, "stale", "old.html"))

	// A second build over the first one's output succeeds.
	_, err = newBuilder(src, out, stringsPath, nil).Build(context.Background())
	require.NoError(t, err)
}

func TestBuild_TemplateErrorKeepsPreviousOutput(t *testing.T) {
	src, stringsPath := siteFixture(t)
	writeTree(t, src, map[string]string{"broken.html.tmpl": "{{ if }"})
	out := filepath.Join(t.TempDir(), "out")
	writeTree(t, out, map[string]string{"previous.html": "keep"})

	_, err := newBuilder(src, out, stringsPath, nil).Build(context.Background())
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryRender))
	assert.FileExists(t, filepath.Join(out, "previous.html"))
}

func TestBuild_RejectsOverlappingDirs(t *testing.T) {
	src, stringsPath := siteFixture(t)

	for _, out := range []string{src, filepath.Join(src, "out"), filepath.Dir(src)} {
		_, err := newBuilder(src, out, stringsPath, nil).Build(context.Background())
		require.Error(t, err, out)
		assert.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation), out)
	}
	assert.FileExists(t, filepath.Join(src, "index.html.tmpl"))
}

func TestBuild_Canceled(t *testing.T) {
	src, stringsPath := siteFixture(t)
	out := filepath.Join(t.TempDir(), "out")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newBuilder(src, out, stringsPath, nil).Build(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDiscoverTemplates(t *testing.T) {
	src, _ := siteFixture(t)

	templates, err := DiscoverTemplates(src, paths.NewMapper("", ""), sets.New("drafts/wip.html.tmpl"))
	require.NoError(t, err)

	names := make([]string, 0, len(templates))
	for _, tmpl := range templates {
		names = append(names, tmpl.Name)
		assert.FileExists(t, tmpl.Source)
	}
	assert.Equal(t, []string{
		"blog/index.html.tmpl",
		"blog/post-a.html.tmpl",
		"blog/post-b.html.tmpl",
		"index.html.tmpl",
	}, names)
}

func TestReadIgnoreFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".siteignore")
	require.NoError(t, os.WriteFile(path, []byte("# comment\n\n  drafts/a.html.tmpl  \n./b.html.tmpl\n"), 0o644))

	ignored, err := ReadIgnoreFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, ignored.Len())
	assert.True(t, ignored.Has("drafts/a.html.tmpl"))
	assert.True(t, ignored.Has("b.html.tmpl"))

	missing, err := ReadIgnoreFile(path + ".missing")
	require.NoError(t, err)
	assert.Zero(t, missing.Len())
}

func TestReport_Durations(t *testing.T) {
	src, stringsPath := siteFixture(t)
	report, err := newBuilder(src, filepath.Join(t.TempDir(), "out"), stringsPath, nil).Build(context.Background())
	require.NoError(t, err)
	assert.Greater(t, report.Duration, time.Duration(0))
	assert.Equal(t, 12, report.TotalPages())
}
