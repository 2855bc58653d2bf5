package scanner

import (
	"regexp"
	"strings"

	"github.com/emilholmegaard/doc-architect/ast"
	"github.com/emilholmegaard/doc-architect/model"
)

var (
	gemLine  = regexp.MustCompile(`(?m)^[ \t]*gem\s+['"]([\w-]+)['"]`)
	viaList  = regexp.MustCompile(`via:\s*(?:\[([^\]]*)\]|:(\w+))`)
	toOption = regexp.MustCompile(`to:\s*['"]([\w/]+)#(\w+)['"]`)
)

// resourceActions are the canonical verb/path/action triples a plural
// resources entry expands to, in Rails routing order.
var resourceActions = []struct {
	verb   string
	suffix string
	action string
}{
	{"GET", "", "index"},
	{"GET", "/new", "new"},
	{"POST", "", "create"},
	{"GET", "/:id", "show"},
	{"GET", "/:id/edit", "edit"},
	{"PATCH", "/:id", "update"},
	{"DELETE", "/:id", "destroy"},
}

// singularResourceActions omit index and the :id segment.
var singularResourceActions = []struct {
	verb   string
	suffix string
	action string
}{
	{"GET", "", "show"},
	{"GET", "/new", "new"},
	{"POST", "", "create"},
	{"GET", "/edit", "edit"},
	{"PATCH", "", "update"},
	{"DELETE", "", "destroy"},
}

func rubyScanners() []*Scanner {
	return []*Scanner{
		{
			ID:      "bundler-dependencies",
			Matches: matchBase("Gemfile"),
			Scan:    scanBundlerDependencies,
		},
		{
			ID:        "rails-api",
			Languages: []ast.LanguageTag{ast.Ruby},
			Scan:      scanRailsAPI,
		},
		{
			ID:        "rails-routes",
			Languages: []ast.LanguageTag{ast.Ruby},
			Matches:   matchSuffix("routes.rb"),
			Scan:      scanRailsRoutes,
		},
	}
}

// scanBundlerDependencies emits a depends-on target per gem declaration.
func scanBundlerDependencies(ev *model.FileEvidence, file *ast.File) []model.Finding {
	content := string(ev.Content())
	var findings []model.Finding
	for _, m := range gemLine.FindAllStringSubmatchIndex(content, -1) {
		name := content[m[2]:m[3]]
		target := model.ComponentFingerprint(model.KindComponent, name, ast.Ruby)
		findings = append(findings, model.Finding{
			Kind:        model.KindDependency,
			Scanner:     "bundler-dependencies",
			Path:        ev.Path(),
			Line:        ev.LineAt(m[0]),
			Confidence:  model.ConfidenceHigh,
			Fingerprint: dependencyFingerprint("", target),
			Name:        name,
			Language:    ast.Ruby,
			Target:      target,
		})
	}
	return findings
}

// scanRailsAPI emits a component per controller class.
func scanRailsAPI(ev *model.FileEvidence, file *ast.File) []model.Finding {
	if file == nil {
		return nil
	}
	conf := confidence(file)
	var findings []model.Finding
	for _, decl := range file.Types {
		if decl.Base != "ApplicationController" &&
			!strings.HasPrefix(decl.Base, "ActionController::") &&
			!strings.HasSuffix(decl.Base, "Controller") {
			continue
		}
		fp := model.ComponentFingerprint(model.KindComponent, decl.Name, ast.Ruby)
		findings = append(findings, model.Finding{
			Kind:        model.KindComponent,
			Scanner:     "rails-api",
			Path:        ev.Path(),
			Line:        decl.Line,
			Confidence:  conf,
			Fingerprint: fp,
			Name:        decl.Name,
			Language:    ast.Ruby,
		})
	}
	return findings
}

// scanRailsRoutes expands the routes DSL into endpoint findings. resources
// yields the seven canonical actions, resource the six singular ones;
// namespaces prefix both the path and the controller reference.
func scanRailsRoutes(ev *model.FileEvidence, file *ast.File) []model.Finding {
	if file == nil {
		return nil
	}
	conf := confidence(file)
	var findings []model.Finding
	expandRouteBlocks(ev, file.RouteBlocks, "", "", conf, &findings)
	return findings
}

// expandRouteBlocks walks nested route blocks carrying the accumulated path
// and controller prefixes.
func expandRouteBlocks(ev *model.FileEvidence, blocks []*ast.RouteBlock, pathPrefix, controllerPrefix string, conf model.Confidence, findings *[]model.Finding) {
	emit := func(block *ast.RouteBlock, verb, route, controller, action string) {
		handler := controller
		if action != "" {
			handler = controller + "#" + action
		}
		component := model.ComponentFingerprint(model.KindComponent, controllerClass(controller), ast.Ruby)
		normalized := model.NormalizePath(route)
		*findings = append(*findings, model.Finding{
			Kind:        model.KindEndpoint,
			Scanner:     "rails-routes",
			Path:        ev.Path(),
			Line:        block.Line,
			Confidence:  conf,
			Fingerprint: model.EndpointFingerprint(component, verb, normalized),
			Name:        controller,
			Language:    ast.Ruby,
			Verb:        verb,
			Route:       normalized,
			Handler:     handler,
			Component:   component,
		})
	}

	for _, block := range blocks {
		switch block.Keyword {
		case "namespace":
			expandRouteBlocks(ev, block.Children, pathPrefix+"/"+block.Arg, controllerPrefix+block.Arg+"/", conf, findings)
		case "scope":
			scopePath := pathPrefix
			if block.Arg != "" {
				scopePath = pathPrefix + "/" + strings.TrimPrefix(block.Arg, "/")
			}
			expandRouteBlocks(ev, block.Children, scopePath, controllerPrefix, conf, findings)
		case "resources":
			controller := controllerPrefix + block.Arg
			base := pathPrefix + "/" + block.Arg
			for _, action := range resourceActions {
				emit(block, action.verb, base+action.suffix, controller, action.action)
			}
			expandRouteBlocks(ev, block.Children, base+"/:id", controllerPrefix, conf, findings)
		case "resource":
			controller := controllerPrefix + pluralize(block.Arg)
			base := pathPrefix + "/" + block.Arg
			for _, action := range singularResourceActions {
				emit(block, action.verb, base+action.suffix, controller, action.action)
			}
			expandRouteBlocks(ev, block.Children, base, controllerPrefix, conf, findings)
		case "get", "post", "put", "patch", "delete":
			controller, action := targetOf(block, controllerPrefix)
			emit(block, strings.ToUpper(block.Keyword), pathPrefix+"/"+strings.TrimPrefix(block.Arg, "/"), controller, action)
		case "root":
			controller, action := rootTarget(block, controllerPrefix)
			route := pathPrefix
			if route == "" {
				route = "/"
			}
			emit(block, "GET", route, controller, action)
		case "match":
			controller, action := targetOf(block, controllerPrefix)
			for _, verb := range matchVerbs(block.Extra) {
				emit(block, verb, pathPrefix+"/"+strings.TrimPrefix(block.Arg, "/"), controller, action)
			}
		}
	}
}

// targetOf resolves the controller#action reference of a verb or match
// entry, falling back to the path segment as controller.
func targetOf(block *ast.RouteBlock, controllerPrefix string) (string, string) {
	if m := toOption.FindStringSubmatch(block.Extra); m != nil {
		return controllerPrefix + m[1], m[2]
	}
	segment := strings.Trim(block.Arg, "/")
	if slash := strings.Index(segment, "/"); slash >= 0 {
		segment = segment[:slash]
	}
	return controllerPrefix + segment, ""
}

// rootTarget resolves the controller#action of a root entry; the primary
// argument itself is the 'home#index' reference.
func rootTarget(block *ast.RouteBlock, controllerPrefix string) (string, string) {
	ref := block.Arg
	if m := toOption.FindStringSubmatch(block.Extra); m != nil {
		return controllerPrefix + m[1], m[2]
	}
	if hash := strings.Index(ref, "#"); hash >= 0 {
		return controllerPrefix + ref[:hash], ref[hash+1:]
	}
	return controllerPrefix + ref, ""
}

// matchVerbs resolves the via: option of a match entry, defaulting to GET.
func matchVerbs(extra string) []string {
	m := viaList.FindStringSubmatch(extra)
	if m == nil {
		return []string{"GET"}
	}
	if m[2] != "" {
		return []string{strings.ToUpper(m[2])}
	}
	var verbs []string
	for _, part := range strings.Split(m[1], ",") {
		part = strings.TrimPrefix(strings.TrimSpace(part), ":")
		if part != "" {
			verbs = append(verbs, strings.ToUpper(part))
		}
	}
	if len(verbs) == 0 {
		return []string{"GET"}
	}
	return verbs
}

// controllerClass converts a controller reference like "admin/posts" into
// its class name Admin::PostsController.
func controllerClass(controller string) string {
	if controller == "" {
		return ""
	}
	parts := strings.Split(controller, "/")
	for i, part := range parts {
		parts[i] = camelize(part)
	}
	return strings.Join(parts, "::") + "Controller"
}

// camelize converts snake_case to CamelCase.
func camelize(s string) string {
	var b strings.Builder
	upper := true
	for _, r := range s {
		if r == '_' {
			upper = true
			continue
		}
		if upper {
			b.WriteString(strings.ToUpper(string(r)))
			upper = false
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// pluralize applies the regular English rules the routes DSL relies on for
// singular resource controller names.
func pluralize(s string) string {
	switch {
	case strings.HasSuffix(s, "s"), strings.HasSuffix(s, "x"), strings.HasSuffix(s, "ch"), strings.HasSuffix(s, "sh"):
		return s + "es"
	case strings.HasSuffix(s, "y") && len(s) > 1 && !strings.ContainsRune("aeiou", rune(s[len(s)-2])):
		return s[:len(s)-1] + "ies"
	default:
		return s + "s"
	}
}
