package engine

import (
	"fmt"

	"github.com/dlclark/regexp2"
	"golang.org/x/text/cases"
)

const (
	identifierPattern = `[\p{L}_][\p{L}\p{N}_]*`
	reservedNames     = `self|parent|static|class|interface|trait|enum|namespace|new|` +
		`int|float|bool|string|void|null|true|false|array|callable|iterable|object|mixed|never`
)

var (
	// Class names are namespace segments joined by backslashes; the final
	// segment may not be a reserved word.
	qualifiedNameRe = regexp2.MustCompile(
		`^(?:`+identifierPattern+`\\)*(?!(?:`+reservedNames+`)$)`+identifierPattern+`$`,
		regexp2.IgnoreCase)
	memberNameRe = regexp2.MustCompile(`^`+identifierPattern+`$`, regexp2.None)
)

func validateClassName(name string) error {
	return matchName(qualifiedNameRe, "class", name)
}

func validateMemberName(kind, name string) error {
	return matchName(memberNameRe, kind, name)
}

func matchName(re *regexp2.Regexp, kind, name string) error {
	ok, err := re.MatchString(name)
	if err != nil {
		return fmt.Errorf("%w: %s %q: %v", ErrInvalidName, kind, name, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s %q", ErrInvalidName, kind, name)
	}
	return nil
}

// foldName returns the lookup key for class and method names, which compare
// case-insensitively.
func foldName(name string) string {
	return cases.Fold().String(name)
}
