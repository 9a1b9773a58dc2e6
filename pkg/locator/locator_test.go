package locator

import (
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"acme/Foo.twig":           {Data: []byte("Foo")},
		"acme/Foo__ctx.twig":      {Data: []byte("FooCtx")},
		"acme/Bar.gohtml":         {Data: []byte("Bar")},
		"acme/Bar__ctx.gohtml":    {Data: []byte("BarCtx")},
		"acme/Dir.twig/child.txt": {Data: []byte("not a template")},
		"Mouf/Html/Item.twig":     {Data: []byte("Item")},
	}
}

func TestLocate(t *testing.T) {
	l := New("templates", WithFS(testFS()))

	cases := []struct {
		name     string
		identity string
		variant  string
		want     Result
	}{
		{name: "structured", identity: "acme.Foo", want: Result{Kind: KindStructured, Path: "acme/Foo.twig"}},
		{name: "structured variant", identity: "acme.Foo", variant: "ctx", want: Result{Kind: KindStructured, Path: "acme/Foo__ctx.twig"}},
		{name: "variant falls back", identity: "acme.Foo", variant: "other", want: Result{Kind: KindStructured, Path: "acme/Foo.twig"}},
		{name: "code", identity: "acme.Bar", want: Result{Kind: KindCode, Path: "acme/Bar.gohtml"}},
		{name: "code variant", identity: "acme.Bar", variant: "ctx", want: Result{Kind: KindCode, Path: "acme/Bar__ctx.gohtml"}},
		{name: "backslash namespace", identity: `Mouf\Html\Item`, want: Result{Kind: KindStructured, Path: "Mouf/Html/Item.twig"}},
		{name: "directories are not templates", identity: "acme.Dir", want: Result{}},
		{name: "missing", identity: "acme.Missing", variant: "ctx", want: Result{}},
		{name: "traversal rejected", identity: "acme.Foo", variant: "../../etc/passwd", want: Result{Kind: KindStructured, Path: "acme/Foo.twig"}},
		{name: "blank identity", identity: "", want: Result{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := l.Locate(tc.identity, tc.variant, nil)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("locate mismatch (-want +got):\n%s", diff)
			}
			if got.Found() != (tc.want.Kind != KindNone) {
				t.Fatalf("found flag mismatch for %+v", got)
			}
		})
	}
}

func TestLocate_TraceOrder(t *testing.T) {
	l := New("templates/", WithFS(testFS()))

	trace := NewTrace(l.Dir())
	l.Locate("acme.Missing", "ctx", trace)
	l.Locate("acme.Bar", "", trace)

	want := "Testing renderer for directory 'templates'\n" +
		"  Tested file: templates/acme/Missing__ctx.twig\n" +
		"  Tested file: templates/acme/Missing__ctx.gohtml\n" +
		"  Tested file: templates/acme/Missing.twig\n" +
		"  Tested file: templates/acme/Missing.gohtml\n" +
		"  Tested file: templates/acme/Bar.twig\n" +
		"  Found file: templates/acme/Bar.gohtml\n"
	if diff := cmp.Diff(want, trace.String()); diff != "" {
		t.Fatalf("trace mismatch (-want +got):\n%s", diff)
	}
}

func TestLocate_CustomExtensions(t *testing.T) {
	files := fstest.MapFS{
		"acme/Foo.django": {Data: []byte("Foo")},
		"acme/Foo.tmpl":   {Data: []byte("Foo")},
	}
	l := New("views", WithFS(files), WithExtensions("django", ".tmpl"))

	structured, code := l.Extensions()
	if structured != ".django" || code != ".tmpl" {
		t.Fatalf("unexpected extensions %q %q", structured, code)
	}
	got := l.Locate("acme.Foo", "", nil)
	if got.Kind != KindStructured || got.Path != "acme/Foo.django" {
		t.Fatalf("unexpected result %+v", got)
	}
}

func TestNilTraceIsSafe(t *testing.T) {
	var trace *Trace
	trace.Note("ignored")
	if trace.String() != "" {
		t.Fatalf("nil trace must stay empty")
	}
}

func TestPath(t *testing.T) {
	if got := Path(" acme.sub.Type "); got != "acme/sub/Type" {
		t.Fatalf("unexpected path %q", got)
	}
}
