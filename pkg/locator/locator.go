package locator

import (
	"io/fs"
	"os"
	"strings"
)

// Default file extensions for the two template kinds.
const (
	DefaultStructuredExt = ".twig"
	DefaultCodeExt       = ".gohtml"
)

// variantSeparator joins the type path and the variant in file names.
const variantSeparator = "__"

// Kind tells which engine a located file is meant for.
type Kind int

const (
	KindNone Kind = iota
	// KindStructured files are rendered by the template engine.
	KindStructured
	// KindCode files are executed with the variable bag in scope.
	KindCode
)

func (k Kind) String() string {
	switch k {
	case KindStructured:
		return "structured"
	case KindCode:
		return "code"
	default:
		return "none"
	}
}

// Result is the outcome of a lookup. The zero value means nothing was found
// and is cached like any other outcome.
type Result struct {
	Kind Kind
	// Path is relative to the locator root and uses forward slashes.
	Path string
}

// Found reports whether a template file matched.
func (r Result) Found() bool {
	return r.Kind != KindNone && r.Path != ""
}

// Locator finds template files named after type identities inside a single
// directory.
type Locator struct {
	dir           string
	files         fs.FS
	structuredExt string
	codeExt       string
}

// Option configures a Locator.
type Option func(*Locator)

// WithFS reads templates from files instead of the directory on disk. The
// directory name is still used as the label in traces.
func WithFS(files fs.FS) Option {
	return func(l *Locator) {
		if files != nil {
			l.files = files
		}
	}
}

// WithExtensions overrides the structured and code template extensions.
// Blank values keep the defaults.
func WithExtensions(structured, code string) Option {
	return func(l *Locator) {
		if ext := normalizeExt(structured); ext != "" {
			l.structuredExt = ext
		}
		if ext := normalizeExt(code); ext != "" {
			l.codeExt = ext
		}
	}
}

// New builds a Locator rooted at dir.
func New(dir string, opts ...Option) *Locator {
	l := &Locator{
		dir:           strings.TrimRight(strings.TrimSpace(dir), `/\`),
		structuredExt: DefaultStructuredExt,
		codeExt:       DefaultCodeExt,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	if l.files == nil {
		root := l.dir
		if root == "" {
			root = "."
		}
		l.files = os.DirFS(root)
	}
	return l
}

// Dir returns the directory label.
func (l *Locator) Dir() string { return l.dir }

// FS returns the filesystem templates are read from.
func (l *Locator) FS() fs.FS { return l.files }

// Extensions returns the structured and code template extensions.
func (l *Locator) Extensions() (structured, code string) {
	return l.structuredExt, l.codeExt
}

// Locate checks the files for identity. With a variant the order is
// structured+variant, code+variant, structured, code; without one only the
// last two are tried. The first existing file wins. Every attempt is recorded
// on trace when it is not nil.
func (l *Locator) Locate(identity, variant string, trace *Trace) Result {
	base := Path(identity)
	if base == "" {
		return Result{}
	}

	candidates := make([]Result, 0, 4)
	if variant != "" {
		candidates = append(candidates,
			Result{Kind: KindStructured, Path: base + variantSeparator + variant + l.structuredExt},
			Result{Kind: KindCode, Path: base + variantSeparator + variant + l.codeExt},
		)
	}
	candidates = append(candidates,
		Result{Kind: KindStructured, Path: base + l.structuredExt},
		Result{Kind: KindCode, Path: base + l.codeExt},
	)

	for _, candidate := range candidates {
		if l.exists(candidate.Path) {
			trace.found(l.display(candidate.Path))
			return candidate
		}
		trace.tested(l.display(candidate.Path))
	}
	return Result{}
}

// Path maps an identity to its slash separated file stem.
func Path(identity string) string {
	replacer := strings.NewReplacer(".", "/", `\`, "/")
	return strings.Trim(replacer.Replace(strings.TrimSpace(identity)), "/")
}

// exists treats every stat failure as absence.
func (l *Locator) exists(name string) bool {
	if !fs.ValidPath(name) {
		return false
	}
	info, err := fs.Stat(l.files, name)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

func (l *Locator) display(name string) string {
	if l.dir == "" {
		return name
	}
	return l.dir + "/" + name
}

func normalizeExt(ext string) string {
	trimmed := strings.TrimSpace(ext)
	if trimmed == "" {
		return ""
	}
	if !strings.HasPrefix(trimmed, ".") {
		trimmed = "." + trimmed
	}
	return trimmed
}
