package scanner

import (
	"path"
	"regexp"
	"strings"

	"github.com/emilholmegaard/doc-architect/ast"
	"github.com/emilholmegaard/doc-architect/model"
)

var (
	requirementLine = regexp.MustCompile(`(?m)^\s*([A-Za-z0-9][A-Za-z0-9._-]*)`)
	pyprojectName   = regexp.MustCompile(`(?:tool\.poetry|project)[\s\S]*?name\s*=\s*["']([^"']+)["']`)
	poetryDep       = regexp.MustCompile(`(?m)^([A-Za-z0-9][A-Za-z0-9._-]*)\s*=\s*`)
	pep621Dep       = regexp.MustCompile(`["']([A-Za-z0-9][A-Za-z0-9._-]*)(?:[><=!~\[][^"']*)?["']`)
	installedApp    = regexp.MustCompile(`['"]([\w.]+)['"]`)
	foreignKeyArg   = regexp.MustCompile(`(?:ForeignKey|OneToOneField|ManyToManyField)\s*\(\s*['"]?(\w+)`)
	tableRef        = regexp.MustCompile(`ForeignKey\s*\(\s*['"](\w+)\.`)
)

func pythonScanners() []*Scanner {
	return []*Scanner{
		{
			ID:      "pip-poetry-dependencies",
			Matches: matchBase("requirements.txt", "pyproject.toml", "Pipfile"),
			Scan:    scanPythonDependencies,
		},
		{
			ID:        "django-app",
			Languages: []ast.LanguageTag{ast.Python},
			Matches:   matchBase("apps.py", "settings.py"),
			Scan:      scanDjangoApps,
		},
		{
			ID:        "django-orm",
			Languages: []ast.LanguageTag{ast.Python},
			Scan:      scanDjangoORM,
		},
		{
			ID:        "fastapi-endpoints",
			Languages: []ast.LanguageTag{ast.Python},
			Scan:      scanFastAPIEndpoints,
		},
		{
			ID:        "flask-routes",
			Languages: []ast.LanguageTag{ast.Python},
			Scan:      scanFlaskRoutes,
		},
		{
			ID:        "sqlalchemy-models",
			Languages: []ast.LanguageTag{ast.Python},
			Scan:      scanSQLAlchemyModels,
		},
	}
}

// scanPythonDependencies handles requirements.txt, pyproject.toml and
// Pipfile manifests.
func scanPythonDependencies(ev *model.FileEvidence, file *ast.File) []model.Finding {
	content := string(ev.Content())
	base := path.Base(ev.Path())
	var findings []model.Finding

	owner := model.Fingerprint("")
	if base == "pyproject.toml" {
		if m := pyprojectName.FindStringSubmatch(content); m != nil {
			owner = model.ComponentFingerprint(model.KindComponent, m[1], ast.Python)
			findings = append(findings, model.Finding{
				Kind:        model.KindComponent,
				Scanner:     "pip-poetry-dependencies",
				Path:        ev.Path(),
				Line:        1,
				Confidence:  model.ConfidenceHigh,
				Fingerprint: owner,
				Name:        m[1],
				Language:    ast.Python,
			})
		}
	}

	emit := func(name string, offset int) {
		if name == "python" {
			return
		}
		target := model.ComponentFingerprint(model.KindComponent, name, ast.Python)
		findings = append(findings, model.Finding{
			Kind:        model.KindDependency,
			Scanner:     "pip-poetry-dependencies",
			Path:        ev.Path(),
			Line:        ev.LineAt(offset),
			Confidence:  model.ConfidenceHigh,
			Fingerprint: dependencyFingerprint(owner, target),
			Name:        name,
			Language:    ast.Python,
			Source:      owner,
			Target:      target,
		})
	}

	switch base {
	case "requirements.txt":
		for _, m := range requirementLine.FindAllStringSubmatchIndex(content, -1) {
			emit(content[m[2]:m[3]], m[0])
		}
	case "pyproject.toml", "Pipfile":
		inDeps := false
		offset := 0
		for _, line := range strings.SplitAfter(content, "\n") {
			trimmed := strings.TrimSpace(line)
			if strings.HasPrefix(trimmed, "[") {
				inDeps = strings.Contains(trimmed, "dependencies") || strings.Contains(trimmed, "packages")
			} else if inDeps {
				if m := poetryDep.FindStringSubmatch(trimmed); m != nil {
					emit(m[1], offset)
				} else if strings.HasPrefix(trimmed, `"`) || strings.HasPrefix(trimmed, `'`) {
					if m := pep621Dep.FindStringSubmatch(trimmed); m != nil {
						emit(m[1], offset)
					}
				}
			}
			offset += len(line)
		}
	}
	return findings
}

// scanDjangoApps emits components from AppConfig subclasses and the
// INSTALLED_APPS list.
func scanDjangoApps(ev *model.FileEvidence, file *ast.File) []model.Finding {
	conf := confidence(file)
	var findings []model.Finding

	if path.Base(ev.Path()) == "apps.py" && file != nil {
		for _, decl := range file.Types {
			if !strings.Contains(decl.Base, "AppConfig") {
				continue
			}
			name := strings.TrimSuffix(decl.Name, "Config")
			for _, field := range decl.Fields {
				if field.Name == "name" {
					name = strings.Trim(field.Type, `'"`)
				}
			}
			fp := model.ComponentFingerprint(model.KindComponent, name, ast.Python)
			findings = append(findings, model.Finding{
				Kind:        model.KindComponent,
				Scanner:     "django-app",
				Path:        ev.Path(),
				Line:        decl.Line,
				Confidence:  conf,
				Fingerprint: fp,
				Name:        name,
				Language:    ast.Python,
			})
		}
		return findings
	}

	// settings.py: INSTALLED_APPS entries outside the django namespace
	content := string(ev.Content())
	start := strings.Index(content, "INSTALLED_APPS")
	if start < 0 {
		return nil
	}
	end := strings.Index(content[start:], "]")
	if end < 0 {
		end = len(content) - start
	}
	section := content[start : start+end]
	for _, m := range installedApp.FindAllStringSubmatchIndex(section, -1) {
		app := section[m[2]:m[3]]
		if strings.HasPrefix(app, "django.") {
			continue
		}
		fp := model.ComponentFingerprint(model.KindComponent, app, ast.Python)
		findings = append(findings, model.Finding{
			Kind:        model.KindComponent,
			Scanner:     "django-app",
			Path:        ev.Path(),
			Line:        ev.LineAt(start + m[0]),
			Confidence:  conf,
			Fingerprint: fp,
			Name:        app,
			Language:    ast.Python,
		})
	}
	return findings
}

// scanDjangoORM emits a data-store per models.Model subclass and a relation
// per ForeignKey-style field.
func scanDjangoORM(ev *model.FileEvidence, file *ast.File) []model.Finding {
	if file == nil {
		return nil
	}
	conf := confidence(file)
	var findings []model.Finding
	for _, decl := range file.Types {
		if !strings.Contains(decl.Base, "models.Model") {
			continue
		}
		store := model.ComponentFingerprint(model.KindDataStore, decl.Name, ast.Python)
		findings = append(findings, model.Finding{
			Kind:        model.KindDataStore,
			Scanner:     "django-orm",
			Path:        ev.Path(),
			Line:        decl.Line,
			Confidence:  conf,
			Fingerprint: store,
			Name:        decl.Name,
			Language:    ast.Python,
			Detail:      "relational table",
		})
		for _, field := range decl.Fields {
			m := foreignKeyArg.FindStringSubmatch(field.Type)
			if m == nil {
				continue
			}
			target := model.ComponentFingerprint(model.KindDataStore, m[1], ast.Python)
			findings = append(findings, model.Finding{
				Kind:        model.KindRelation,
				Scanner:     "django-orm",
				Path:        ev.Path(),
				Line:        field.Line,
				Confidence:  conf,
				Fingerprint: relationFingerprint(store, target, model.RelationSchemaRef),
				Language:    ast.Python,
				Source:      store,
				Target:      target,
				Relation:    model.RelationSchemaRef,
				Detail:      field.Name,
			})
		}
	}
	return findings
}

// scanFastAPIEndpoints emits endpoints from verb-decorator routes; the
// containing component is named after the module.
func scanFastAPIEndpoints(ev *model.FileEvidence, file *ast.File) []model.Finding {
	if file == nil {
		return nil
	}
	conf := confidence(file)
	var findings []model.Finding
	component := model.ComponentFingerprint(model.KindComponent, moduleName(ev.Path()), ast.Python)
	if strings.Contains(string(ev.Content()), "FastAPI(") {
		findings = append(findings, model.Finding{
			Kind:        model.KindComponent,
			Scanner:     "fastapi-endpoints",
			Path:        ev.Path(),
			Line:        1,
			Confidence:  conf,
			Fingerprint: component,
			Name:        moduleName(ev.Path()),
			Language:    ast.Python,
		})
	}
	for _, route := range file.Routes {
		if !isVerbDecoratorRoute(file, route) {
			continue
		}
		normalized := model.NormalizePath(route.Path)
		findings = append(findings, model.Finding{
			Kind:        model.KindEndpoint,
			Scanner:     "fastapi-endpoints",
			Path:        ev.Path(),
			Line:        route.Line,
			Confidence:  conf,
			Fingerprint: model.EndpointFingerprint(component, route.Verb, normalized),
			Name:        route.Handler,
			Language:    ast.Python,
			Verb:        route.Verb,
			Route:       normalized,
			Handler:     route.Handler,
			Component:   component,
		})
	}
	return findings
}

// scanFlaskRoutes emits endpoints from @app.route decorators.
func scanFlaskRoutes(ev *model.FileEvidence, file *ast.File) []model.Finding {
	if file == nil {
		return nil
	}
	conf := confidence(file)
	var findings []model.Finding
	component := model.ComponentFingerprint(model.KindComponent, moduleName(ev.Path()), ast.Python)
	if strings.Contains(string(ev.Content()), "Flask(") {
		findings = append(findings, model.Finding{
			Kind:        model.KindComponent,
			Scanner:     "flask-routes",
			Path:        ev.Path(),
			Line:        1,
			Confidence:  conf,
			Fingerprint: component,
			Name:        moduleName(ev.Path()),
			Language:    ast.Python,
		})
	}
	for _, route := range file.Routes {
		if isVerbDecoratorRoute(file, route) {
			continue
		}
		normalized := model.NormalizePath(route.Path)
		findings = append(findings, model.Finding{
			Kind:        model.KindEndpoint,
			Scanner:     "flask-routes",
			Path:        ev.Path(),
			Line:        route.Line,
			Confidence:  conf,
			Fingerprint: model.EndpointFingerprint(component, route.Verb, normalized),
			Name:        route.Handler,
			Language:    ast.Python,
			Verb:        route.Verb,
			Route:       normalized,
			Handler:     route.Handler,
			Component:   component,
		})
	}
	return findings
}

// isVerbDecoratorRoute reports whether a derived route came from a verb
// decorator (FastAPI style) rather than a route() decorator (Flask style).
func isVerbDecoratorRoute(file *ast.File, route *ast.Route) bool {
	fn := file.FunctionNamed(route.Handler)
	if fn == nil {
		return false
	}
	for _, dec := range fn.Decorators {
		if strings.HasSuffix(dec.Name, ".route") {
			return false
		}
	}
	return true
}

// scanSQLAlchemyModels emits a data-store per declarative model and a
// relation per ForeignKey column.
func scanSQLAlchemyModels(ev *model.FileEvidence, file *ast.File) []model.Finding {
	if file == nil {
		return nil
	}
	conf := confidence(file)
	var findings []model.Finding
	for _, decl := range file.Types {
		table := ""
		for _, field := range decl.Fields {
			if field.Name == "__tablename__" {
				table = strings.Trim(field.Type, `'"`)
			}
		}
		if table == "" && !strings.Contains(decl.Base, "Base") {
			continue
		}
		name := table
		if name == "" {
			name = decl.Name
		}
		store := model.ComponentFingerprint(model.KindDataStore, name, ast.Python)
		findings = append(findings, model.Finding{
			Kind:        model.KindDataStore,
			Scanner:     "sqlalchemy-models",
			Path:        ev.Path(),
			Line:        decl.Line,
			Confidence:  conf,
			Fingerprint: store,
			Name:        name,
			Language:    ast.Python,
			Detail:      "relational table",
		})
		for _, field := range decl.Fields {
			m := tableRef.FindStringSubmatch(field.Type)
			if m == nil {
				continue
			}
			target := model.ComponentFingerprint(model.KindDataStore, m[1], ast.Python)
			findings = append(findings, model.Finding{
				Kind:        model.KindRelation,
				Scanner:     "sqlalchemy-models",
				Path:        ev.Path(),
				Line:        field.Line,
				Confidence:  conf,
				Fingerprint: relationFingerprint(store, target, model.RelationSchemaRef),
				Language:    ast.Python,
				Source:      store,
				Target:      target,
				Relation:    model.RelationSchemaRef,
				Detail:      field.Name,
			})
		}
	}
	return findings
}

// moduleName derives a component name from a file path: the file stem, or
// the directory name for __init__ style modules.
func moduleName(filePath string) string {
	base := path.Base(filePath)
	stem := strings.TrimSuffix(base, path.Ext(base))
	if stem == "__init__" || stem == "main" || stem == "app" {
		if dir := path.Base(path.Dir(filePath)); dir != "." && dir != "/" {
			return dir
		}
	}
	return stem
}
