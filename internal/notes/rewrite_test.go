package notes

import "testing"

func newLinkTestManager() *Manager {
	return &Manager{
		root: "/notes",
		titleIndex: map[string]string{
			"Golang Concurrency": "/notes/learning/golang-concurrency.md",
		},
		index: map[string]*Note{
			"/notes/learning/golang-concurrency.md": {Path: "/notes/learning/golang-concurrency.md"},
		},
	}
}

func TestResolveLinkTarget_ExactMatch(t *testing.T) {
	m := newLinkTestManager()

	got, ok := m.resolveLinkTarget("Golang Concurrency")
	if !ok || got != "/notes/learning/golang-concurrency.md" {
		t.Errorf("resolveLinkTarget() = %q, %v", got, ok)
	}
}

func TestResolveLinkTarget_CaseInsensitive(t *testing.T) {
	m := newLinkTestManager()

	got, ok := m.resolveLinkTarget("golang concurrency")
	if !ok || got != "/notes/learning/golang-concurrency.md" {
		t.Errorf("resolveLinkTarget() = %q, %v", got, ok)
	}
}

func TestResolveLinkTarget_SeparatorNormalized(t *testing.T) {
	m := newLinkTestManager()

	got, ok := m.resolveLinkTarget("golang_concurrency")
	if !ok || got != "/notes/learning/golang-concurrency.md" {
		t.Errorf("resolveLinkTarget() = %q, %v", got, ok)
	}
}

func TestResolveLinkTarget_PathBased(t *testing.T) {
	m := newLinkTestManager()

	got, ok := m.resolveLinkTarget("learning/golang-concurrency")
	if !ok || got != "/notes/learning/golang-concurrency.md" {
		t.Errorf("resolveLinkTarget() = %q, %v", got, ok)
	}
}

func TestResolveLinkTarget_NoMatch(t *testing.T) {
	m := newLinkTestManager()

	if _, ok := m.resolveLinkTarget("Totally Unrelated"); ok {
		t.Error("resolveLinkTarget() unexpectedly matched")
	}
}

func TestRewriteWikiLinks_RewritesToRelativePathWithoutExtension(t *testing.T) {
	m := newLinkTestManager()

	fromPath := "/notes/quick-notes/other.md"
	out := m.rewriteWikiLinks("See [[golang-concurrency]] for more.", fromPath)
	want := "See [[../learning/golang-concurrency]] for more."
	if out != want {
		t.Errorf("rewriteWikiLinks() = %q, want %q", out, want)
	}
}

func TestRewriteWikiLinks_PreservesDisplayText(t *testing.T) {
	m := newLinkTestManager()

	fromPath := "/notes/learning/other.md"
	out := m.rewriteWikiLinks("See [[golang_concurrency|my link text]] for more.", fromPath)
	want := "See [[golang-concurrency|my link text]] for more."
	if out != want {
		t.Errorf("rewriteWikiLinks() = %q, want %q", out, want)
	}
}

func TestRewriteWikiLinks_LeavesUnresolvedLinksUntouched(t *testing.T) {
	m := newLinkTestManager()

	in := "See [[Nonexistent Note]] here."
	if out := m.rewriteWikiLinks(in, "/notes/learning/other.md"); out != in {
		t.Errorf("rewriteWikiLinks() = %q, want unchanged %q", out, in)
	}
}
