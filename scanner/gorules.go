package scanner

import (
	"path"
	"strings"

	"golang.org/x/mod/modfile"

	"github.com/emilholmegaard/doc-architect/ast"
	"github.com/emilholmegaard/doc-architect/model"
)

var goRouterVerbs = map[string]string{
	"GET": "GET", "POST": "POST", "PUT": "PUT", "DELETE": "DELETE",
	"PATCH": "PATCH", "HEAD": "HEAD", "OPTIONS": "OPTIONS",
	"Get": "GET", "Post": "POST", "Put": "PUT", "Delete": "DELETE",
	"Patch": "PATCH", "Head": "HEAD", "Options": "OPTIONS",
}

func goScanners() []*Scanner {
	return []*Scanner{
		{
			ID:      "go-modules",
			Matches: matchBase("go.mod"),
			Scan:    scanGoModules,
		},
		{
			ID:        "go-http-router",
			Languages: []ast.LanguageTag{ast.Go},
			Scan:      scanGoHTTPRouter,
		},
		{
			ID:        "go-struct-orm",
			Languages: []ast.LanguageTag{ast.Go},
			Scan:      scanGoStructORM,
		},
		{
			ID:        "go-grpc-service",
			Languages: []ast.LanguageTag{ast.Go},
			Scan:      scanGoGrpcService,
		},
	}
}

// scanGoModules parses go.mod with x/mod and emits the module as a component
// plus a depends-on per direct requirement.
func scanGoModules(ev *model.FileEvidence, file *ast.File) []model.Finding {
	mod, err := modfile.Parse(ev.Path(), ev.Content(), nil)
	if err != nil || mod.Module == nil {
		return nil
	}
	modulePath := mod.Module.Mod.Path
	owner := model.ComponentFingerprint(model.KindComponent, modulePath, ast.Go)
	findings := []model.Finding{{
		Kind:        model.KindComponent,
		Scanner:     "go-modules",
		Path:        ev.Path(),
		Line:        1,
		Confidence:  model.ConfidenceHigh,
		Fingerprint: owner,
		Name:        modulePath,
		Language:    ast.Go,
	}}
	for _, req := range mod.Require {
		if req.Indirect {
			continue
		}
		line := 1
		if req.Syntax != nil {
			line = req.Syntax.Start.Line
		}
		target := model.ComponentFingerprint(model.KindComponent, req.Mod.Path, ast.Go)
		findings = append(findings, model.Finding{
			Kind:        model.KindDependency,
			Scanner:     "go-modules",
			Path:        ev.Path(),
			Line:        line,
			Confidence:  model.ConfidenceHigh,
			Fingerprint: dependencyFingerprint(owner, target),
			Name:        req.Mod.Path,
			Language:    ast.Go,
			Source:      owner,
			Target:      target,
			Detail:      req.Mod.Version,
		})
	}
	return findings
}

// scanGoHTTPRouter emits endpoints from router registration calls such as
// r.GET("/orders", list) or mux.HandleFunc("/orders", list). The containing
// component is named after the package directory.
func scanGoHTTPRouter(ev *model.FileEvidence, file *ast.File) []model.Finding {
	if file == nil {
		return nil
	}
	conf := confidence(file)
	component := model.ComponentFingerprint(model.KindComponent, packageDir(ev.Path()), ast.Go)
	var findings []model.Finding
	for _, call := range file.Calls {
		verb, ok := goRouterVerbs[call.Method]
		if !ok {
			if call.Method != "HandleFunc" && call.Method != "Handle" {
				continue
			}
			verb = "ANY"
		}
		route := firstQuoted(call.Args)
		if route == "" || !strings.HasPrefix(route, "/") {
			continue
		}
		normalized := model.NormalizePath(route)
		handler := handlerArgument(call.Args)
		findings = append(findings, model.Finding{
			Kind:        model.KindEndpoint,
			Scanner:     "go-http-router",
			Path:        ev.Path(),
			Line:        call.Line,
			Confidence:  conf,
			Fingerprint: model.EndpointFingerprint(component, verb, normalized),
			Name:        handler,
			Language:    ast.Go,
			Verb:        verb,
			Route:       normalized,
			Handler:     handler,
			Component:   component,
		})
	}
	return findings
}

// scanGoStructORM emits a data-store per struct carrying gorm tags.
func scanGoStructORM(ev *model.FileEvidence, file *ast.File) []model.Finding {
	if file == nil {
		return nil
	}
	conf := confidence(file)
	var findings []model.Finding
	for _, decl := range file.Types {
		tagged := false
		for _, field := range decl.Fields {
			if strings.Contains(field.Tag, "gorm:") {
				tagged = true
				break
			}
		}
		if !tagged {
			continue
		}
		fp := model.ComponentFingerprint(model.KindDataStore, decl.Name, ast.Go)
		findings = append(findings, model.Finding{
			Kind:        model.KindDataStore,
			Scanner:     "go-struct-orm",
			Path:        ev.Path(),
			Line:        decl.Line,
			Confidence:  conf,
			Fingerprint: fp,
			Name:        decl.Name,
			Language:    ast.Go,
			Detail:      "relational table",
		})
	}
	return findings
}

// scanGoGrpcService emits a component per RegisterXServer call.
func scanGoGrpcService(ev *model.FileEvidence, file *ast.File) []model.Finding {
	if file == nil {
		return nil
	}
	conf := confidence(file)
	var findings []model.Finding
	for _, call := range file.Calls {
		if !strings.HasPrefix(call.Method, "Register") || !strings.HasSuffix(call.Method, "Server") {
			continue
		}
		name := strings.TrimSuffix(strings.TrimPrefix(call.Method, "Register"), "Server")
		if name == "" {
			continue
		}
		fp := model.ComponentFingerprint(model.KindComponent, name, ast.Go)
		findings = append(findings, model.Finding{
			Kind:        model.KindComponent,
			Scanner:     "go-grpc-service",
			Path:        ev.Path(),
			Line:        call.Line,
			Confidence:  conf,
			Fingerprint: fp,
			Name:        name,
			Language:    ast.Go,
			Detail:      "grpc",
		})
	}
	return findings
}

// packageDir names the component owning a Go source file by its directory.
func packageDir(filePath string) string {
	dir := path.Base(path.Dir(filePath))
	if dir == "." || dir == "/" || dir == "" {
		return strings.TrimSuffix(path.Base(filePath), ".go")
	}
	return dir
}

// handlerArgument extracts the last argument of a registration call, the
// handler symbol.
func handlerArgument(args string) string {
	parts := strings.Split(args, ",")
	if len(parts) < 2 {
		return ""
	}
	return strings.TrimSpace(parts[len(parts)-1])
}
