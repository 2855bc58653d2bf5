package scanner

import (
	"path"
	"regexp"
	"strings"

	"github.com/emilholmegaard/doc-architect/ast"
	"github.com/emilholmegaard/doc-architect/model"
)

var (
	packageReference = regexp.MustCompile(`<PackageReference\s+Include="([^"]+)"`)
	solutionProject  = regexp.MustCompile(`(?m)^Project\("[^"]*"\)\s*=\s*"([^"]+)",\s*"([^"]+\.csproj)"`)
	grpcBase         = regexp.MustCompile(`^\w+\.(\w+)Base$`)
)

var aspnetVerbs = map[string]string{
	"HttpGet":    "GET",
	"HttpPost":   "POST",
	"HttpPut":    "PUT",
	"HttpDelete": "DELETE",
	"HttpPatch":  "PATCH",
	"HttpHead":   "HEAD",
}

func dotnetScanners() []*Scanner {
	return []*Scanner{
		{
			ID:      "nuget-dependencies",
			Matches: matchSuffix(".csproj"),
			Scan:    scanNugetDependencies,
		},
		{
			ID:      "dotnet-solution",
			Matches: matchSuffix(".sln"),
			Scan:    scanDotnetSolution,
		},
		{
			ID:        "aspnet-core-api",
			Languages: []ast.LanguageTag{ast.CSharp},
			Scan:      scanAspnetCoreAPI,
		},
		{
			ID:        "entity-framework",
			Languages: []ast.LanguageTag{ast.CSharp},
			Scan:      scanEntityFramework,
		},
		{
			ID:        "dotnet-grpc-service",
			Languages: []ast.LanguageTag{ast.CSharp},
			Scan:      scanDotnetGrpcService,
		},
	}
}

// scanNugetDependencies emits the project as a component and each
// PackageReference as a depends-on target.
func scanNugetDependencies(ev *model.FileEvidence, file *ast.File) []model.Finding {
	content := string(ev.Content())
	project := strings.TrimSuffix(path.Base(ev.Path()), ".csproj")
	owner := model.ComponentFingerprint(model.KindComponent, project, ast.CSharp)

	findings := []model.Finding{{
		Kind:        model.KindComponent,
		Scanner:     "nuget-dependencies",
		Path:        ev.Path(),
		Line:        1,
		Confidence:  model.ConfidenceHigh,
		Fingerprint: owner,
		Name:        project,
		Language:    ast.CSharp,
	}}
	for _, m := range packageReference.FindAllStringSubmatchIndex(content, -1) {
		name := content[m[2]:m[3]]
		target := model.ComponentFingerprint(model.KindComponent, name, ast.CSharp)
		findings = append(findings, model.Finding{
			Kind:        model.KindDependency,
			Scanner:     "nuget-dependencies",
			Path:        ev.Path(),
			Line:        ev.LineAt(m[0]),
			Confidence:  model.ConfidenceHigh,
			Fingerprint: dependencyFingerprint(owner, target),
			Name:        name,
			Language:    ast.CSharp,
			Source:      owner,
			Target:      target,
		})
	}
	return findings
}

// scanDotnetSolution emits a component per project listed in the solution.
func scanDotnetSolution(ev *model.FileEvidence, file *ast.File) []model.Finding {
	content := string(ev.Content())
	var findings []model.Finding
	for _, m := range solutionProject.FindAllStringSubmatchIndex(content, -1) {
		name := content[m[2]:m[3]]
		fp := model.ComponentFingerprint(model.KindComponent, name, ast.CSharp)
		findings = append(findings, model.Finding{
			Kind:        model.KindComponent,
			Scanner:     "dotnet-solution",
			Path:        ev.Path(),
			Line:        ev.LineAt(m[0]),
			Confidence:  model.ConfidenceHigh,
			Fingerprint: fp,
			Name:        name,
			Language:    ast.CSharp,
		})
	}
	return findings
}

// scanAspnetCoreAPI emits a component per [ApiController] class and an
// endpoint per [Http*] method. Route templates concatenate the class route
// with the method route; the [controller] token substitutes the class name
// minus its Controller suffix, case preserved.
func scanAspnetCoreAPI(ev *model.FileEvidence, file *ast.File) []model.Finding {
	if file == nil {
		return nil
	}
	conf := confidence(file)
	var findings []model.Finding
	for _, decl := range file.Types {
		if decl.AnnotationNamed("ApiController") == nil && !strings.HasSuffix(decl.Name, "Controller") {
			continue
		}
		if decl.AnnotationNamed("ApiController") == nil && decl.AnnotationNamed("Route") == nil {
			continue
		}
		component := model.ComponentFingerprint(model.KindComponent, decl.Name, ast.CSharp)
		findings = append(findings, model.Finding{
			Kind:        model.KindComponent,
			Scanner:     "aspnet-core-api",
			Path:        ev.Path(),
			Line:        decl.Line,
			Confidence:  conf,
			Fingerprint: component,
			Name:        decl.Name,
			Language:    ast.CSharp,
		})

		prefix := ""
		if route := decl.AnnotationNamed("Route"); route != nil {
			prefix = substituteControllerToken(firstQuoted(route.Args), decl.Name)
		}
		for _, method := range decl.Methods {
			for _, dec := range method.Decorators {
				verb, ok := aspnetVerbs[dec.Name]
				if !ok {
					continue
				}
				suffix := substituteControllerToken(firstQuoted(dec.Args), decl.Name)
				route := model.JoinPaths(prefix, suffix)
				findings = append(findings, model.Finding{
					Kind:        model.KindEndpoint,
					Scanner:     "aspnet-core-api",
					Path:        ev.Path(),
					Line:        method.Line,
					Confidence:  conf,
					Fingerprint: model.EndpointFingerprint(component, verb, route),
					Name:        method.Name,
					Language:    ast.CSharp,
					Verb:        verb,
					Route:       route,
					Handler:     decl.Name + "." + method.Name,
					Component:   component,
				})
			}
		}
	}
	return findings
}

// substituteControllerToken replaces [controller] with the class name minus
// its Controller suffix, preserving case.
func substituteControllerToken(template, className string) string {
	if !strings.Contains(template, "[controller]") {
		return template
	}
	name := strings.TrimSuffix(className, "Controller")
	return strings.ReplaceAll(template, "[controller]", name)
}

// scanEntityFramework emits the DbContext and each DbSet entity as data
// stores, with persists relations from context to entity.
func scanEntityFramework(ev *model.FileEvidence, file *ast.File) []model.Finding {
	if file == nil {
		return nil
	}
	conf := confidence(file)
	var findings []model.Finding
	for _, decl := range file.Types {
		if !strings.Contains(decl.Base, "DbContext") {
			continue
		}
		context := model.ComponentFingerprint(model.KindDataStore, decl.Name, ast.CSharp)
		findings = append(findings, model.Finding{
			Kind:        model.KindDataStore,
			Scanner:     "entity-framework",
			Path:        ev.Path(),
			Line:        decl.Line,
			Confidence:  conf,
			Fingerprint: context,
			Name:        decl.Name,
			Language:    ast.CSharp,
			Detail:      "relational database",
		})
		for _, field := range decl.Fields {
			if !strings.HasPrefix(field.Type, "DbSet<") {
				continue
			}
			entity := genericArgument(field.Type)
			if entity == "" {
				continue
			}
			store := model.ComponentFingerprint(model.KindDataStore, entity, ast.CSharp)
			findings = append(findings,
				model.Finding{
					Kind:        model.KindDataStore,
					Scanner:     "entity-framework",
					Path:        ev.Path(),
					Line:        field.Line,
					Confidence:  conf,
					Fingerprint: store,
					Name:        entity,
					Language:    ast.CSharp,
					Detail:      "relational table",
				},
				model.Finding{
					Kind:        model.KindRelation,
					Scanner:     "entity-framework",
					Path:        ev.Path(),
					Line:        field.Line,
					Confidence:  conf,
					Fingerprint: relationFingerprint(context, store, model.RelationPersists),
					Language:    ast.CSharp,
					Source:      context,
					Target:      store,
					Relation:    model.RelationPersists,
				})
		}
	}
	return findings
}

// scanDotnetGrpcService emits a component per gRPC service base
// implementation and per MapGrpcService registration.
func scanDotnetGrpcService(ev *model.FileEvidence, file *ast.File) []model.Finding {
	if file == nil {
		return nil
	}
	conf := confidence(file)
	var findings []model.Finding
	for _, decl := range file.Types {
		if grpcBase.FindStringSubmatch(decl.Base) == nil {
			continue
		}
		fp := model.ComponentFingerprint(model.KindComponent, decl.Name, ast.CSharp)
		findings = append(findings, model.Finding{
			Kind:        model.KindComponent,
			Scanner:     "dotnet-grpc-service",
			Path:        ev.Path(),
			Line:        decl.Line,
			Confidence:  conf,
			Fingerprint: fp,
			Name:        decl.Name,
			Language:    ast.CSharp,
			Detail:      "grpc",
		})
	}
	for _, call := range file.Calls {
		if !strings.HasPrefix(call.Method, "MapGrpcService") {
			continue
		}
		name := genericArgument(call.Method)
		if name == "" {
			continue
		}
		fp := model.ComponentFingerprint(model.KindComponent, name, ast.CSharp)
		findings = append(findings, model.Finding{
			Kind:        model.KindComponent,
			Scanner:     "dotnet-grpc-service",
			Path:        ev.Path(),
			Line:        call.Line,
			Confidence:  conf,
			Fingerprint: fp,
			Name:        name,
			Language:    ast.CSharp,
			Detail:      "grpc",
		})
	}
	return findings
}
