package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilholmegaard/doc-architect/ast"
	"github.com/emilholmegaard/doc-architect/model"
	"github.com/emilholmegaard/doc-architect/parser/java"
)

func parseJava(t *testing.T, path, source string) (*model.FileEvidence, *ast.File) {
	t.Helper()
	ev := model.NewFileEvidence(path, ast.Java, []byte(source))
	file, err := java.New(ast.Java).Parse(ev)
	require.NoError(t, err)
	return ev, file
}

func TestSpringRestAPI_ControllerAndEndpoint(t *testing.T) {
	ev, file := parseJava(t, "src/OrderController.java", `package com.example;

@RestController
@RequestMapping("/api/v1/orders")
public class OrderController {

    @GetMapping("/{id}")
    public Order get(@PathVariable Long id) {
        return null;
    }
}`)
	findings := scanSpringRestAPI(ev, file)
	require.Len(t, findings, 2)

	component := findings[0]
	assert.Equal(t, model.KindComponent, component.Kind)
	assert.Equal(t, "OrderController", component.Name)
	assert.Equal(t, model.ConfidenceHigh, component.Confidence)
	assert.Equal(t, model.ComponentFingerprint(model.KindComponent, "OrderController", ast.Java), component.Fingerprint)

	endpoint := findings[1]
	assert.Equal(t, model.KindEndpoint, endpoint.Kind)
	assert.Equal(t, "GET", endpoint.Verb)
	assert.Equal(t, "/api/v1/orders/{id}", endpoint.Route)
	assert.Equal(t, component.Fingerprint, endpoint.Component)
	assert.Equal(t, "OrderController.get", endpoint.Handler)
}

func TestSpringRestAPI_RequestMappingMethodVerb(t *testing.T) {
	ev, file := parseJava(t, "src/LegacyController.java", `package com.example;

@Controller
public class LegacyController {

    @RequestMapping(value = "/submit", method = RequestMethod.POST)
    public String submit(String body) {
        return null;
    }
}`)
	findings := scanSpringRestAPI(ev, file)
	require.Len(t, findings, 2)
	assert.Equal(t, "POST", findings[1].Verb)
	assert.Equal(t, "/submit", findings[1].Route)
}

func TestJpaEntities_StoreAndRelation(t *testing.T) {
	ev, file := parseJava(t, "src/Order.java", `package com.example;

@Entity
public class Order {
    @Id
    private Long id;

    @ManyToOne
    private Customer customer;

    @OneToMany
    private List<OrderLine> lines;
}`)
	findings := scanJpaEntities(ev, file)
	require.Len(t, findings, 3)

	assert.Equal(t, model.KindDataStore, findings[0].Kind)
	assert.Equal(t, "Order", findings[0].Name)

	assert.Equal(t, model.KindRelation, findings[1].Kind)
	assert.Equal(t, model.ComponentFingerprint(model.KindDataStore, "Customer", ast.Java), findings[1].Target)

	assert.Equal(t, model.ComponentFingerprint(model.KindDataStore, "OrderLine", ast.Java), findings[2].Target)
}

func TestMavenDependencies(t *testing.T) {
	pom := `<project>
  <artifactId>order-service</artifactId>
  <dependencies>
    <dependency>
      <groupId>org.springframework.boot</groupId>
      <artifactId>spring-boot-starter-web</artifactId>
    </dependency>
  </dependencies>
</project>`
	ev := model.NewFileEvidence("order-service/pom.xml", ast.Other, []byte(pom))
	findings := scanMavenDependencies(ev, nil)
	require.Len(t, findings, 2)
	assert.Equal(t, model.KindComponent, findings[0].Kind)
	assert.Equal(t, "order-service", findings[0].Name)
	assert.Equal(t, model.KindDependency, findings[1].Kind)
	assert.Equal(t, "spring-boot-starter-web", findings[1].Name)
	assert.Equal(t, findings[0].Fingerprint, findings[1].Source)
	assert.Equal(t, "org.springframework.boot:spring-boot-starter-web", findings[1].Detail)
}

func TestSpringRestAPI_DegradedFileIsLowConfidence(t *testing.T) {
	ev, file := parseJava(t, "src/Broken.java", `@RestController
public class Broken {
    @GetMapping("/x")
    public String get( {
}`)
	require.True(t, file.Degraded)
	findings := scanSpringRestAPI(ev, file)
	require.NotEmpty(t, findings)
	for _, f := range findings {
		assert.Equal(t, model.ConfidenceLow, f.Confidence)
	}
}

func TestDeterministicFingerprints(t *testing.T) {
	source := `package com.example;

@RestController
public class PingController {
    @GetMapping("/ping")
    public String ping() { return "pong"; }
}`
	ev1, file1 := parseJava(t, "src/PingController.java", source)
	ev2, file2 := parseJava(t, "src/PingController.java", source)
	first := scanSpringRestAPI(ev1, file1)
	second := scanSpringRestAPI(ev2, file2)
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Fingerprint, second[i].Fingerprint)
	}
}
