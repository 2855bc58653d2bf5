package scanner

import (
	"regexp"
	"strings"

	"github.com/emilholmegaard/doc-architect/ast"
	"github.com/emilholmegaard/doc-architect/model"
)

var (
	graphqlType  = regexp.MustCompile(`(?m)^\s*(?:type|input|interface|enum)\s+(\w+)`)
	avroRecord   = regexp.MustCompile(`"name"\s*:\s*"(\w+)"`)
	protoMessage = regexp.MustCompile(`(?m)^\s*message\s+(\w+)`)
	protoService = regexp.MustCompile(`(?m)^\s*service\s+(\w+)`)
	createTable  = regexp.MustCompile(`(?im)CREATE\s+TABLE\s+(?:IF\s+NOT\s+EXISTS\s+)?["` + "`" + `]?(\w+)`)
	schemaFile   = regexp.MustCompile(`['"]([\w/-]+)\.(avsc|proto|graphql)['"]`)
)

func schemaScanners() []*Scanner {
	return []*Scanner{
		{
			ID:      "graphql-schema",
			Matches: matchSuffix(".graphql", ".graphqls", ".gql"),
			Scan:    scanGraphQLSchema,
		},
		{
			ID:      "avro-schema",
			Matches: matchSuffix(".avsc"),
			Scan:    scanAvroSchema,
		},
		{
			ID:      "protobuf-schema",
			Matches: matchSuffix(".proto"),
			Scan:    scanProtobufSchema,
		},
		{
			ID:      "sql-migrations",
			Matches: sqlMigrationPredicate,
			Scan:    scanSQLMigrations,
		},
		{
			ID: "rest-event-flow",
			Languages: []ast.LanguageTag{
				ast.Java, ast.Kotlin, ast.Python, ast.CSharp, ast.Go, ast.Ruby,
				ast.JavaScript, ast.TypeScript,
			},
			Scan: scanRestEventFlow,
		},
	}
}

// sqlMigrationPredicate matches .sql files under a migrations directory.
func sqlMigrationPredicate(filePath string) bool {
	if !strings.HasSuffix(filePath, ".sql") {
		return false
	}
	lower := strings.ToLower(filePath)
	return strings.Contains(lower, "migration") || strings.Contains(lower, "migrate")
}

func schemaFinding(scannerID string, ev *model.FileEvidence, line int, name, detail string) model.Finding {
	fp := model.ComponentFingerprint(model.KindSchema, name, ast.Other)
	return model.Finding{
		Kind:        model.KindSchema,
		Scanner:     scannerID,
		Path:        ev.Path(),
		Line:        line,
		Confidence:  model.ConfidenceHigh,
		Fingerprint: fp,
		Name:        name,
		Language:    ast.Other,
		Detail:      detail,
	}
}

// scanGraphQLSchema emits a schema per type definition.
func scanGraphQLSchema(ev *model.FileEvidence, file *ast.File) []model.Finding {
	content := string(ev.Content())
	var findings []model.Finding
	for _, m := range graphqlType.FindAllStringSubmatchIndex(content, -1) {
		findings = append(findings, schemaFinding("graphql-schema", ev, ev.LineAt(m[0]), content[m[2]:m[3]], "graphql"))
	}
	return findings
}

// scanAvroSchema emits a schema per record; the top-level name comes first
// in the document.
func scanAvroSchema(ev *model.FileEvidence, file *ast.File) []model.Finding {
	content := string(ev.Content())
	if !strings.Contains(content, `"record"`) {
		return nil
	}
	m := avroRecord.FindStringSubmatchIndex(content)
	if m == nil {
		return nil
	}
	return []model.Finding{schemaFinding("avro-schema", ev, ev.LineAt(m[0]), content[m[2]:m[3]], "avro")}
}

// scanProtobufSchema emits a schema per message and a component per service.
func scanProtobufSchema(ev *model.FileEvidence, file *ast.File) []model.Finding {
	content := string(ev.Content())
	var findings []model.Finding
	for _, m := range protoMessage.FindAllStringSubmatchIndex(content, -1) {
		findings = append(findings, schemaFinding("protobuf-schema", ev, ev.LineAt(m[0]), content[m[2]:m[3]], "protobuf"))
	}
	for _, m := range protoService.FindAllStringSubmatchIndex(content, -1) {
		name := content[m[2]:m[3]]
		fp := model.ComponentFingerprint(model.KindComponent, name, ast.Other)
		findings = append(findings, model.Finding{
			Kind:        model.KindComponent,
			Scanner:     "protobuf-schema",
			Path:        ev.Path(),
			Line:        ev.LineAt(m[0]),
			Confidence:  model.ConfidenceHigh,
			Fingerprint: fp,
			Name:        name,
			Language:    ast.Other,
			Detail:      "grpc",
		})
	}
	return findings
}

// scanSQLMigrations emits a data-store per CREATE TABLE statement.
func scanSQLMigrations(ev *model.FileEvidence, file *ast.File) []model.Finding {
	content := string(ev.Content())
	var findings []model.Finding
	for _, m := range createTable.FindAllStringSubmatchIndex(content, -1) {
		name := content[m[2]:m[3]]
		fp := model.ComponentFingerprint(model.KindDataStore, name, ast.Other)
		findings = append(findings, model.Finding{
			Kind:        model.KindDataStore,
			Scanner:     "sql-migrations",
			Path:        ev.Path(),
			Line:        ev.LineAt(m[0]),
			Confidence:  model.ConfidenceHigh,
			Fingerprint: fp,
			Name:        name,
			Language:    ast.Other,
			Detail:      "relational table",
		})
	}
	return findings
}

// scanRestEventFlow emits schema-ref relations when source code references a
// schema document by file name, linking the file's first declared component
// to the schema.
func scanRestEventFlow(ev *model.FileEvidence, file *ast.File) []model.Finding {
	content := string(ev.Content())
	matches := schemaFile.FindAllStringSubmatchIndex(content, -1)
	if len(matches) == 0 {
		return nil
	}
	conf := confidence(file)
	owner := model.Fingerprint("")
	language := ev.Language()
	if file != nil && len(file.Types) > 0 {
		owner = model.ComponentFingerprint(model.KindComponent, file.Types[0].Name, file.Language)
	} else {
		owner = model.ComponentFingerprint(model.KindComponent, moduleName(ev.Path()), language)
	}
	var findings []model.Finding
	seen := map[string]bool{}
	for _, m := range matches {
		ref := content[m[2]:m[3]]
		name := ref
		if slash := strings.LastIndex(name, "/"); slash >= 0 {
			name = name[slash+1:]
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		target := model.ComponentFingerprint(model.KindSchema, name, ast.Other)
		findings = append(findings, model.Finding{
			Kind:        model.KindRelation,
			Scanner:     "rest-event-flow",
			Path:        ev.Path(),
			Line:        ev.LineAt(m[0]),
			Confidence:  conf,
			Fingerprint: relationFingerprint(owner, target, model.RelationSchemaRef),
			Language:    language,
			Source:      owner,
			Target:      target,
			Relation:    model.RelationSchemaRef,
			Detail:      ref,
		})
	}
	return findings
}
