package java

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilholmegaard/doc-architect/ast"
	"github.com/emilholmegaard/doc-architect/model"
)

func TestAdapter_ParseController(t *testing.T) {
	source := `package com.example.orders;

import org.springframework.web.bind.annotation.*;

@RestController
@RequestMapping("/api/v1/orders")
public class OrderController {

    private final OrderService service;

    @GetMapping("/{id}")
    public Order get(@PathVariable Long id) {
        return service.find(id);
    }

    @PostMapping
    public Order create(@RequestBody Order order) {
        return service.save(order);
    }
}`
	ev := model.NewFileEvidence("src/main/java/OrderController.java", ast.Java, []byte(source))
	file, err := New(ast.Java).Parse(ev)
	require.NoError(t, err)
	assert.False(t, file.Degraded)
	require.Len(t, file.Types, 1)

	decl := file.Types[0]
	assert.Equal(t, "OrderController", decl.Name)
	assert.Equal(t, "com.example.orders.OrderController", decl.QualifiedName)
	require.NotNil(t, decl.AnnotationNamed("RestController"))
	mapping := decl.AnnotationNamed("RequestMapping")
	require.NotNil(t, mapping)
	assert.Equal(t, `"/api/v1/orders"`, mapping.Args)

	require.Len(t, decl.Methods, 2)
	get := decl.Methods[0]
	assert.Equal(t, "get", get.Name)
	assert.Equal(t, "OrderController", get.Receiver)
	assert.Equal(t, []string{"id"}, get.Parameters)
	getMapping := get.AnnotationNamed("GetMapping")
	require.NotNil(t, getMapping)
	assert.Equal(t, `"/{id}"`, getMapping.Args)
	assert.Equal(t, ev.Path(), get.Path)
	assert.GreaterOrEqual(t, get.Line, 1)

	post := decl.Methods[1]
	require.NotNil(t, post.AnnotationNamed("PostMapping"))
	assert.Equal(t, "", post.AnnotationNamed("PostMapping").Args)
}

func TestAdapter_ParseEntityFields(t *testing.T) {
	source := `package com.example;

@Entity
public class Order {
    @Id
    private Long id;

    @ManyToOne
    private Customer customer;
}`
	ev := model.NewFileEvidence("Order.java", ast.Java, []byte(source))
	file, err := New(ast.Java).Parse(ev)
	require.NoError(t, err)
	require.Len(t, file.Types, 1)

	decl := file.Types[0]
	require.NotNil(t, decl.AnnotationNamed("Entity"))
	require.Len(t, decl.Fields, 2)
	assert.Equal(t, "customer", decl.Fields[1].Name)
	assert.Equal(t, "Customer", decl.Fields[1].Type)
	assert.NotNil(t, decl.Fields[1].AnnotationNamed("ManyToOne"))
}

func TestAdapter_MalformedSourceDegrades(t *testing.T) {
	source := `package com.example;

@RestController
public class Broken {
    @GetMapping("/x")
    public String get( {
}`
	ev := model.NewFileEvidence("Broken.java", ast.Java, []byte(source))
	file, err := New(ast.Java).Parse(ev)
	require.NoError(t, err)
	assert.True(t, file.Degraded)
	require.Len(t, file.Types, 1)
	assert.Equal(t, "Broken", file.Types[0].Name)
	assert.NotNil(t, file.Types[0].AnnotationNamed("RestController"))
}

func TestSalvage_ClassAndMethods(t *testing.T) {
	source := `@Service
public class BillingService extends BaseService {
    @KafkaListener(topics = "billing-events")
    public void onEvent(String payload) {
    }
}`
	ev := model.NewFileEvidence("BillingService.java", ast.Java, []byte(source))
	file := salvage(ev, ast.Java)

	assert.True(t, file.Degraded)
	require.Len(t, file.Types, 1)
	decl := file.Types[0]
	assert.Equal(t, "BillingService", decl.Name)
	assert.Equal(t, "BaseService", decl.Base)
	assert.NotNil(t, decl.AnnotationNamed("Service"))
	require.Len(t, decl.Methods, 1)
	listener := decl.Methods[0].AnnotationNamed("KafkaListener")
	require.NotNil(t, listener)
	assert.Equal(t, `topics = "billing-events"`, listener.Args)
	assert.Equal(t, []string{"payload"}, decl.Methods[0].Parameters)
}
