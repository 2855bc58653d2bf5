package scanner

import (
	"path"
	"regexp"
	"strings"

	"github.com/emilholmegaard/doc-architect/ast"
	"github.com/emilholmegaard/doc-architect/model"
)

var (
	mavenArtifact   = regexp.MustCompile(`<artifactId>([^<]+)</artifactId>`)
	mavenDependency = regexp.MustCompile(`(?s)<dependency>\s*<groupId>([^<]+)</groupId>\s*<artifactId>([^<]+)</artifactId>`)
	gradleDep       = regexp.MustCompile(`(?m)^\s*(?:implementation|api|compileOnly|runtimeOnly|testImplementation)\s*\(?\s*['"]([^'"]+)['"]`)
	requestMethod   = regexp.MustCompile(`method\s*=\s*RequestMethod\.(\w+)`)
	httpURL         = regexp.MustCompile(`https?://([\w.-]+)`)
)

var springMappings = map[string]string{
	"GetMapping":    "GET",
	"PostMapping":   "POST",
	"PutMapping":    "PUT",
	"DeleteMapping": "DELETE",
	"PatchMapping":  "PATCH",
}

var jaxrsVerbs = map[string]string{
	"GET": "GET", "POST": "POST", "PUT": "PUT", "DELETE": "DELETE",
	"PATCH": "PATCH", "HEAD": "HEAD", "OPTIONS": "OPTIONS",
}

func javaScanners() []*Scanner {
	return []*Scanner{
		{
			ID:      "maven-dependencies",
			Matches: matchBase("pom.xml"),
			Scan:    scanMavenDependencies,
		},
		{
			ID:      "gradle-dependencies",
			Matches: matchBase("build.gradle", "build.gradle.kts"),
			Scan:    scanGradleDependencies,
		},
		{
			ID:        "spring-component",
			Languages: []ast.LanguageTag{ast.Java, ast.Kotlin},
			Scan:      scanSpringComponents,
		},
		{
			ID:        "spring-rest-api",
			Languages: []ast.LanguageTag{ast.Java, ast.Kotlin},
			Scan:      scanSpringRestAPI,
		},
		{
			ID:        "jaxrs-api",
			Languages: []ast.LanguageTag{ast.Java, ast.Kotlin},
			Scan:      scanJaxrsAPI,
		},
		{
			ID:        "jpa-entities",
			Languages: []ast.LanguageTag{ast.Java, ast.Kotlin},
			Scan:      scanJpaEntities,
		},
		{
			ID:        "mongodb-repository",
			Languages: []ast.LanguageTag{ast.Java, ast.Kotlin},
			Scan:      scanMongoRepositories,
		},
		{
			ID:        "java-http-client",
			Languages: []ast.LanguageTag{ast.Java, ast.Kotlin},
			Scan:      scanJavaHTTPClient,
		},
		{
			ID:        "java-grpc-service",
			Languages: []ast.LanguageTag{ast.Java, ast.Kotlin},
			Scan:      scanJavaGrpcService,
		},
	}
}

// scanMavenDependencies emits the pom's own artifact as a component and each
// declared dependency as a depends-on target.
func scanMavenDependencies(ev *model.FileEvidence, file *ast.File) []model.Finding {
	content := string(ev.Content())
	var findings []model.Finding

	owner := model.Fingerprint("")
	if m := mavenArtifact.FindStringSubmatchIndex(content); m != nil {
		name := content[m[2]:m[3]]
		owner = model.ComponentFingerprint(model.KindComponent, name, ast.Java)
		findings = append(findings, model.Finding{
			Kind:        model.KindComponent,
			Scanner:     "maven-dependencies",
			Path:        ev.Path(),
			Line:        ev.LineAt(m[0]),
			Confidence:  model.ConfidenceHigh,
			Fingerprint: owner,
			Name:        name,
			Language:    ast.Java,
		})
	}
	for _, m := range mavenDependency.FindAllStringSubmatchIndex(content, -1) {
		group := content[m[2]:m[3]]
		artifact := content[m[4]:m[5]]
		target := model.ComponentFingerprint(model.KindComponent, artifact, ast.Java)
		findings = append(findings, model.Finding{
			Kind:        model.KindDependency,
			Scanner:     "maven-dependencies",
			Path:        ev.Path(),
			Line:        ev.LineAt(m[0]),
			Confidence:  model.ConfidenceHigh,
			Fingerprint: dependencyFingerprint(owner, target),
			Name:        artifact,
			Language:    ast.Java,
			Source:      owner,
			Target:      target,
			Detail:      group + ":" + artifact,
		})
	}
	return findings
}

// scanGradleDependencies emits each declared coordinate as a depends-on
// target, anchored to a component named after the build file's directory.
func scanGradleDependencies(ev *model.FileEvidence, file *ast.File) []model.Finding {
	content := string(ev.Content())
	var findings []model.Finding

	owner := model.Fingerprint("")
	if dir := path.Base(path.Dir(ev.Path())); dir != "." && dir != "/" && dir != "" {
		owner = model.ComponentFingerprint(model.KindComponent, dir, ast.Java)
		findings = append(findings, model.Finding{
			Kind:        model.KindComponent,
			Scanner:     "gradle-dependencies",
			Path:        ev.Path(),
			Line:        1,
			Confidence:  model.ConfidenceHigh,
			Fingerprint: owner,
			Name:        dir,
			Language:    ast.Java,
		})
	}
	for _, m := range gradleDep.FindAllStringSubmatchIndex(content, -1) {
		coordinate := content[m[2]:m[3]]
		name := coordinate
		if parts := strings.Split(coordinate, ":"); len(parts) >= 2 {
			name = parts[1]
		}
		target := model.ComponentFingerprint(model.KindComponent, name, ast.Java)
		findings = append(findings, model.Finding{
			Kind:        model.KindDependency,
			Scanner:     "gradle-dependencies",
			Path:        ev.Path(),
			Line:        ev.LineAt(m[0]),
			Confidence:  model.ConfidenceHigh,
			Fingerprint: dependencyFingerprint(owner, target),
			Name:        name,
			Language:    ast.Java,
			Source:      owner,
			Target:      target,
			Detail:      coordinate,
		})
	}
	return findings
}

// scanSpringComponents emits a component per stereotype-annotated class.
func scanSpringComponents(ev *model.FileEvidence, file *ast.File) []model.Finding {
	if file == nil {
		return nil
	}
	conf := confidence(file)
	var findings []model.Finding
	for _, decl := range file.Types {
		for _, stereotype := range []string{"Component", "Service", "Repository", "Configuration"} {
			if ann := decl.AnnotationNamed(stereotype); ann != nil {
				fp := model.ComponentFingerprint(model.KindComponent, decl.Name, file.Language)
				findings = append(findings, model.Finding{
					Kind:        model.KindComponent,
					Scanner:     "spring-component",
					Path:        ev.Path(),
					Line:        decl.Line,
					Confidence:  conf,
					Fingerprint: fp,
					Name:        decl.Name,
					Language:    file.Language,
					Detail:      stereotype,
				})
				break
			}
		}
	}
	return findings
}

// scanSpringRestAPI emits a component per controller class and an endpoint
// per mapping-annotated method, assembling the class-level prefix with the
// method-level path.
func scanSpringRestAPI(ev *model.FileEvidence, file *ast.File) []model.Finding {
	if file == nil {
		return nil
	}
	conf := confidence(file)
	var findings []model.Finding
	for _, decl := range file.Types {
		if decl.AnnotationNamed("RestController") == nil && decl.AnnotationNamed("Controller") == nil {
			continue
		}
		component := model.ComponentFingerprint(model.KindComponent, decl.Name, file.Language)
		findings = append(findings, model.Finding{
			Kind:        model.KindComponent,
			Scanner:     "spring-rest-api",
			Path:        ev.Path(),
			Line:        decl.Line,
			Confidence:  conf,
			Fingerprint: component,
			Name:        decl.Name,
			Language:    file.Language,
		})

		prefix := ""
		if mapping := decl.AnnotationNamed("RequestMapping"); mapping != nil {
			prefix = firstQuoted(mapping.Args)
		}
		for _, method := range decl.Methods {
			for _, dec := range method.Decorators {
				verb := ""
				if v, ok := springMappings[dec.Name]; ok {
					verb = v
				} else if dec.Name == "RequestMapping" {
					verb = "GET"
					if m := requestMethod.FindStringSubmatch(dec.Args); m != nil {
						verb = strings.ToUpper(m[1])
					}
				} else {
					continue
				}
				route := model.JoinPaths(prefix, firstQuoted(dec.Args))
				findings = append(findings, model.Finding{
					Kind:        model.KindEndpoint,
					Scanner:     "spring-rest-api",
					Path:        ev.Path(),
					Line:        method.Line,
					Confidence:  conf,
					Fingerprint: model.EndpointFingerprint(component, verb, route),
					Name:        method.Name,
					Language:    file.Language,
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

// scanJaxrsAPI emits endpoints for @Path resources with verb annotations.
func scanJaxrsAPI(ev *model.FileEvidence, file *ast.File) []model.Finding {
	if file == nil {
		return nil
	}
	conf := confidence(file)
	var findings []model.Finding
	for _, decl := range file.Types {
		classPath := decl.AnnotationNamed("Path")
		if classPath == nil {
			continue
		}
		component := model.ComponentFingerprint(model.KindComponent, decl.Name, file.Language)
		findings = append(findings, model.Finding{
			Kind:        model.KindComponent,
			Scanner:     "jaxrs-api",
			Path:        ev.Path(),
			Line:        decl.Line,
			Confidence:  conf,
			Fingerprint: component,
			Name:        decl.Name,
			Language:    file.Language,
		})
		prefix := firstQuoted(classPath.Args)
		for _, method := range decl.Methods {
			verb := ""
			for _, dec := range method.Decorators {
				if v, ok := jaxrsVerbs[dec.Name]; ok {
					verb = v
					break
				}
			}
			if verb == "" {
				continue
			}
			suffix := ""
			if methodPath := method.AnnotationNamed("Path"); methodPath != nil {
				suffix = firstQuoted(methodPath.Args)
			}
			route := model.JoinPaths(prefix, suffix)
			findings = append(findings, model.Finding{
				Kind:        model.KindEndpoint,
				Scanner:     "jaxrs-api",
				Path:        ev.Path(),
				Line:        method.Line,
				Confidence:  conf,
				Fingerprint: model.EndpointFingerprint(component, verb, route),
				Name:        method.Name,
				Language:    file.Language,
				Verb:        verb,
				Route:       route,
				Handler:     decl.Name + "." + method.Name,
				Component:   component,
			})
		}
	}
	return findings
}

// scanJpaEntities emits a data-store per @Entity class and a relation per
// association-annotated field.
func scanJpaEntities(ev *model.FileEvidence, file *ast.File) []model.Finding {
	if file == nil {
		return nil
	}
	conf := confidence(file)
	var findings []model.Finding
	for _, decl := range file.Types {
		if decl.AnnotationNamed("Entity") == nil {
			continue
		}
		store := model.ComponentFingerprint(model.KindDataStore, decl.Name, file.Language)
		findings = append(findings, model.Finding{
			Kind:        model.KindDataStore,
			Scanner:     "jpa-entities",
			Path:        ev.Path(),
			Line:        decl.Line,
			Confidence:  conf,
			Fingerprint: store,
			Name:        decl.Name,
			Language:    file.Language,
			Detail:      "relational table",
		})
		for _, field := range decl.Fields {
			for _, association := range []string{"OneToMany", "ManyToOne", "ManyToMany", "OneToOne"} {
				if field.AnnotationNamed(association) == nil {
					continue
				}
				target := model.ComponentFingerprint(model.KindDataStore, elementType(field.Type), file.Language)
				findings = append(findings, model.Finding{
					Kind:        model.KindRelation,
					Scanner:     "jpa-entities",
					Path:        ev.Path(),
					Line:        field.Line,
					Confidence:  conf,
					Fingerprint: relationFingerprint(store, target, model.RelationSchemaRef),
					Language:    file.Language,
					Source:      store,
					Target:      target,
					Relation:    model.RelationSchemaRef,
					Detail:      association,
				})
				break
			}
		}
	}
	return findings
}

// scanMongoRepositories emits document data stores and repository
// components.
func scanMongoRepositories(ev *model.FileEvidence, file *ast.File) []model.Finding {
	if file == nil {
		return nil
	}
	conf := confidence(file)
	var findings []model.Finding
	for _, decl := range file.Types {
		if decl.AnnotationNamed("Document") != nil {
			fp := model.ComponentFingerprint(model.KindDataStore, decl.Name, file.Language)
			findings = append(findings, model.Finding{
				Kind:        model.KindDataStore,
				Scanner:     "mongodb-repository",
				Path:        ev.Path(),
				Line:        decl.Line,
				Confidence:  conf,
				Fingerprint: fp,
				Name:        decl.Name,
				Language:    file.Language,
				Detail:      "document collection",
			})
			continue
		}
		base := decl.Base
		if base == "" {
			for _, iface := range decl.Interfaces {
				if strings.Contains(iface, "MongoRepository") {
					base = iface
					break
				}
			}
		}
		if !strings.Contains(base, "MongoRepository") {
			continue
		}
		component := model.ComponentFingerprint(model.KindComponent, decl.Name, file.Language)
		findings = append(findings, model.Finding{
			Kind:        model.KindComponent,
			Scanner:     "mongodb-repository",
			Path:        ev.Path(),
			Line:        decl.Line,
			Confidence:  conf,
			Fingerprint: component,
			Name:        decl.Name,
			Language:    file.Language,
		})
		if entity := genericArgument(base); entity != "" {
			target := model.ComponentFingerprint(model.KindDataStore, entity, file.Language)
			findings = append(findings, model.Finding{
				Kind:        model.KindRelation,
				Scanner:     "mongodb-repository",
				Path:        ev.Path(),
				Line:        decl.Line,
				Confidence:  conf,
				Fingerprint: relationFingerprint(component, target, model.RelationPersists),
				Language:    file.Language,
				Source:      component,
				Target:      target,
				Relation:    model.RelationPersists,
			})
		}
	}
	return findings
}

// scanJavaHTTPClient emits a depends-on per outbound HTTP host referenced
// alongside a client type.
func scanJavaHTTPClient(ev *model.FileEvidence, file *ast.File) []model.Finding {
	content := string(ev.Content())
	if !strings.Contains(content, "RestTemplate") && !strings.Contains(content, "WebClient") &&
		!strings.Contains(content, "HttpClient") {
		return nil
	}
	conf := confidence(file)
	owner := model.Fingerprint("")
	if file != nil && len(file.Types) > 0 {
		owner = model.ComponentFingerprint(model.KindComponent, file.Types[0].Name, file.Language)
	}
	var findings []model.Finding
	seen := map[string]bool{}
	for _, m := range httpURL.FindAllStringSubmatchIndex(content, -1) {
		host := content[m[2]:m[3]]
		if seen[host] {
			continue
		}
		seen[host] = true
		target := model.ComponentFingerprint(model.KindComponent, host, ast.Other)
		findings = append(findings, model.Finding{
			Kind:        model.KindDependency,
			Scanner:     "java-http-client",
			Path:        ev.Path(),
			Line:        ev.LineAt(m[0]),
			Confidence:  conf,
			Fingerprint: dependencyFingerprint(owner, target),
			Name:        host,
			Language:    ast.Other,
			Source:      owner,
			Target:      target,
			Relation:    model.RelationCall,
		})
	}
	return findings
}

// scanJavaGrpcService emits a component per gRPC service implementation.
func scanJavaGrpcService(ev *model.FileEvidence, file *ast.File) []model.Finding {
	if file == nil {
		return nil
	}
	conf := confidence(file)
	var findings []model.Finding
	for _, decl := range file.Types {
		if decl.AnnotationNamed("GrpcService") == nil && !strings.HasSuffix(decl.Base, "ImplBase") {
			continue
		}
		fp := model.ComponentFingerprint(model.KindComponent, decl.Name, file.Language)
		findings = append(findings, model.Finding{
			Kind:        model.KindComponent,
			Scanner:     "java-grpc-service",
			Path:        ev.Path(),
			Line:        decl.Line,
			Confidence:  conf,
			Fingerprint: fp,
			Name:        decl.Name,
			Language:    file.Language,
			Detail:      "grpc",
		})
	}
	return findings
}

// dependencyFingerprint derives the identity of a depends-on finding.
func dependencyFingerprint(src, dst model.Fingerprint) model.Fingerprint {
	return model.Fingerprint(string(model.KindDependency) + "|" + string(src) + "->" + string(dst))
}

// relationFingerprint derives the identity of an explicit relation finding.
func relationFingerprint(src, dst model.Fingerprint, kind model.RelationKind) model.Fingerprint {
	return model.Fingerprint(string(model.KindRelation) + "|" + string(kind) + "|" + string(src) + "->" + string(dst))
}

// elementType strips container generics: List<Order> and Set<Order> both
// yield Order.
func elementType(typeText string) string {
	if open := strings.Index(typeText, "<"); open >= 0 {
		inner := typeText[open+1:]
		inner = strings.TrimSuffix(strings.TrimSpace(inner), ">")
		if comma := strings.Index(inner, ","); comma >= 0 {
			inner = inner[comma+1:]
		}
		return strings.TrimSpace(inner)
	}
	return strings.TrimSpace(typeText)
}

// genericArgument extracts the first generic argument of a base type, e.g.
// MongoRepository<Order, String> yields Order.
func genericArgument(base string) string {
	open := strings.Index(base, "<")
	if open < 0 {
		return ""
	}
	inner := strings.TrimSuffix(strings.TrimSpace(base[open+1:]), ">")
	if comma := strings.Index(inner, ","); comma >= 0 {
		inner = inner[:comma]
	}
	return strings.TrimSpace(inner)
}
