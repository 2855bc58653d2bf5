package scanner

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/emilholmegaard/doc-architect/ast"
	"github.com/emilholmegaard/doc-architect/model"
)

var expressVerbs = map[string]string{
	"get": "GET", "post": "POST", "put": "PUT", "delete": "DELETE",
	"patch": "PATCH", "head": "HEAD", "options": "OPTIONS", "all": "ANY",
}

func javascriptScanners() []*Scanner {
	return []*Scanner{
		{
			ID:      "npm-dependencies",
			Matches: matchBase("package.json"),
			Scan:    scanNpmDependencies,
		},
		{
			ID:        "express-routes",
			Languages: []ast.LanguageTag{ast.JavaScript, ast.TypeScript},
			Scan:      scanExpressRoutes,
		},
	}
}

// scanNpmDependencies decodes package.json and emits the package as a
// component plus a depends-on per dependency entry.
func scanNpmDependencies(ev *model.FileEvidence, file *ast.File) []model.Finding {
	var manifest struct {
		Name            string            `json:"name"`
		Dependencies    map[string]string `json:"dependencies"`
		DevDependencies map[string]string `json:"devDependencies"`
	}
	if err := json.Unmarshal(ev.Content(), &manifest); err != nil {
		return nil
	}
	var findings []model.Finding
	owner := model.Fingerprint("")
	if manifest.Name != "" {
		owner = model.ComponentFingerprint(model.KindComponent, manifest.Name, ast.JavaScript)
		findings = append(findings, model.Finding{
			Kind:        model.KindComponent,
			Scanner:     "npm-dependencies",
			Path:        ev.Path(),
			Line:        1,
			Confidence:  model.ConfidenceHigh,
			Fingerprint: owner,
			Name:        manifest.Name,
			Language:    ast.JavaScript,
		})
	}
	names := make([]string, 0, len(manifest.Dependencies))
	for name := range manifest.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		target := model.ComponentFingerprint(model.KindComponent, name, ast.JavaScript)
		findings = append(findings, model.Finding{
			Kind:        model.KindDependency,
			Scanner:     "npm-dependencies",
			Path:        ev.Path(),
			Line:        1,
			Confidence:  model.ConfidenceHigh,
			Fingerprint: dependencyFingerprint(owner, target),
			Name:        name,
			Language:    ast.JavaScript,
			Source:      owner,
			Target:      target,
			Detail:      manifest.Dependencies[name],
		})
	}
	return findings
}

// scanExpressRoutes emits endpoints from app.get/router.post style
// registration calls; the containing component is named after the file's
// directory.
func scanExpressRoutes(ev *model.FileEvidence, file *ast.File) []model.Finding {
	if file == nil {
		return nil
	}
	conf := confidence(file)
	component := model.ComponentFingerprint(model.KindComponent, packageDir(ev.Path()), file.Language)
	var findings []model.Finding
	for _, call := range file.Calls {
		verb, ok := expressVerbs[call.Method]
		if !ok {
			continue
		}
		if call.Receiver != "app" && call.Receiver != "router" && !strings.HasSuffix(call.Receiver, "Router") {
			continue
		}
		route := firstQuoted(call.Args)
		if route == "" && strings.HasPrefix(call.Args, "/") {
			route = call.Args
		}
		if !strings.HasPrefix(route, "/") {
			continue
		}
		normalized := model.NormalizePath(route)
		findings = append(findings, model.Finding{
			Kind:        model.KindEndpoint,
			Scanner:     "express-routes",
			Path:        ev.Path(),
			Line:        call.Line,
			Confidence:  conf,
			Fingerprint: model.EndpointFingerprint(component, verb, normalized),
			Name:        handlerArgument(call.Args),
			Language:    file.Language,
			Verb:        verb,
			Route:       normalized,
			Handler:     handlerArgument(call.Args),
			Component:   component,
		})
	}
	return findings
}
