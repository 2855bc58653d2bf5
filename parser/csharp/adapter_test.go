package csharp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilholmegaard/doc-architect/ast"
	"github.com/emilholmegaard/doc-architect/model"
)

func TestAdapter_ParseApiController(t *testing.T) {
	source := `using Microsoft.AspNetCore.Mvc;

namespace Shop.Api
{
    [ApiController]
    [Route("api/v1/[controller]")]
    public class ProductController : ControllerBase
    {
        [HttpGet]
        public IActionResult List()
        {
            return Ok();
        }

        [HttpGet("{id}")]
        public IActionResult Get(int id)
        {
            return Ok(id);
        }
    }
}`
	ev := model.NewFileEvidence("Controllers/ProductController.cs", ast.CSharp, []byte(source))
	file, err := New().Parse(ev)
	require.NoError(t, err)
	assert.False(t, file.Degraded)
	require.Len(t, file.Types, 1)

	decl := file.Types[0]
	assert.Equal(t, "ProductController", decl.Name)
	assert.Equal(t, "ControllerBase", decl.Base)
	require.NotNil(t, decl.AnnotationNamed("ApiController"))
	route := decl.AnnotationNamed("Route")
	require.NotNil(t, route)
	assert.Equal(t, `"api/v1/[controller]"`, route.Args)

	require.Len(t, decl.Methods, 2)
	assert.Equal(t, "List", decl.Methods[0].Name)
	assert.NotNil(t, decl.Methods[0].AnnotationNamed("HttpGet"))
	assert.Equal(t, `"{id}"`, decl.Methods[1].AnnotationNamed("HttpGet").Args)
	assert.Equal(t, []string{"id"}, decl.Methods[1].Parameters)
}

func TestAdapter_ParseDbContext(t *testing.T) {
	source := `public class ShopContext : DbContext
{
    public DbSet<Order> Orders { get; set; }
    public DbSet<Customer> Customers { get; set; }
}`
	ev := model.NewFileEvidence("Data/ShopContext.cs", ast.CSharp, []byte(source))
	file, err := New().Parse(ev)
	require.NoError(t, err)
	require.Len(t, file.Types, 1)

	decl := file.Types[0]
	assert.Equal(t, "DbContext", decl.Base)
	require.Len(t, decl.Fields, 2)
	assert.Equal(t, "Orders", decl.Fields[0].Name)
	assert.Equal(t, "DbSet<Order>", decl.Fields[0].Type)
}

func TestSalvage_AttributesAndClass(t *testing.T) {
	source := `[ApiController]
[Route("api/[controller]")]
public class BrokenController : ControllerBase
{
    [HttpPost("submit")]
    public IActionResult Submit(OrderDto dto)
    {
    }
}`
	ev := model.NewFileEvidence("BrokenController.cs", ast.CSharp, []byte(source))
	file := salvage(ev)

	assert.True(t, file.Degraded)
	require.Len(t, file.Types, 1)
	decl := file.Types[0]
	assert.Equal(t, "BrokenController", decl.Name)
	assert.Equal(t, "ControllerBase", decl.Base)
	require.NotNil(t, decl.AnnotationNamed("Route"))
	require.Len(t, decl.Methods, 1)
	post := decl.Methods[0].AnnotationNamed("HttpPost")
	require.NotNil(t, post)
	assert.Equal(t, `"submit"`, post.Args)
}
