package python

import (
	"regexp"
	"strings"

	"github.com/emilholmegaard/doc-architect/ast"
)

var (
	verbDecorator  = regexp.MustCompile(`^[\w.]*\.(get|post|put|delete|patch|head|options)$`)
	routeDecorator = regexp.MustCompile(`^[\w.]*\.route$`)
	firstString    = regexp.MustCompile(`^\s*(?:f?r?['"])([^'"]*)['"]`)
	methodsList    = regexp.MustCompile(`methods\s*=\s*[\[(]([^\])]*)[\])]`)
	namedArg       = regexp.MustCompile(`(?:^|[,(]|\s)%s\s*=\s*('[^']*'|"[^"]*"|[\w.\[\]]+)`)
)

// deriveRoutes turns decorator-annotated handlers into route entries, both
// for FastAPI-style verb decorators (@app.get('/x')) and Flask-style
// @app.route('/x', methods=['POST']).
func deriveRoutes(file *ast.File) {
	for _, fn := range file.Functions {
		for _, dec := range fn.Decorators {
			path := firstStringArg(dec.Args)
			if path == "" {
				continue
			}
			if m := verbDecorator.FindStringSubmatch(dec.Name); m != nil {
				file.Routes = append(file.Routes, &ast.Route{
					Locatable: dec.Locatable,
					Verb:      strings.ToUpper(m[1]),
					Path:      path,
					Handler:   fn.Name,
				})
				continue
			}
			if routeDecorator.MatchString(dec.Name) {
				for _, verb := range routeVerbs(dec.Args) {
					file.Routes = append(file.Routes, &ast.Route{
						Locatable: dec.Locatable,
						Verb:      verb,
						Path:      path,
						Handler:   fn.Name,
					})
				}
			}
		}
	}
}

// routeVerbs resolves the methods= argument of a route decorator, defaulting
// to GET.
func routeVerbs(args string) []string {
	m := methodsList.FindStringSubmatch(args)
	if m == nil {
		return []string{"GET"}
	}
	var verbs []string
	for _, part := range strings.Split(m[1], ",") {
		part = strings.Trim(strings.TrimSpace(part), `'"`)
		if part != "" {
			verbs = append(verbs, strings.ToUpper(part))
		}
	}
	if len(verbs) == 0 {
		return []string{"GET"}
	}
	return verbs
}

// firstStringArg returns the first positional string literal of a raw
// argument list, or empty.
func firstStringArg(args string) string {
	m := firstString.FindStringSubmatch(args)
	if m == nil {
		return ""
	}
	return m[1]
}

// ExtractParameter returns the literal value of a named argument inside raw
// argument text, with string quotes stripped. The second result reports
// whether the argument was present.
func ExtractParameter(argsText, name string) (string, bool) {
	re, err := regexp.Compile(strings.Replace(namedArg.String(), "%s", regexp.QuoteMeta(name), 1))
	if err != nil {
		return "", false
	}
	m := re.FindStringSubmatch(argsText)
	if m == nil {
		return "", false
	}
	return strings.Trim(m[1], `'"`), true
}
