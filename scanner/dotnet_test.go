package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilholmegaard/doc-architect/ast"
	"github.com/emilholmegaard/doc-architect/model"
	"github.com/emilholmegaard/doc-architect/parser/csharp"
)

func parseCSharp(t *testing.T, path, source string) (*model.FileEvidence, *ast.File) {
	t.Helper()
	ev := model.NewFileEvidence(path, ast.CSharp, []byte(source))
	file, err := csharp.New().Parse(ev)
	require.NoError(t, err)
	return ev, file
}

func TestAspnetCoreAPI_ControllerTokenSubstitution(t *testing.T) {
	ev, file := parseCSharp(t, "Controllers/ProductController.cs", `[ApiController]
[Route("api/v1/[controller]")]
public class ProductController : ControllerBase
{
    [HttpGet]
    public IActionResult List()
    {
        return Ok();
    }
}`)
	findings := scanAspnetCoreAPI(ev, file)
	require.Len(t, findings, 2)

	assert.Equal(t, model.KindComponent, findings[0].Kind)
	assert.Equal(t, "ProductController", findings[0].Name)

	endpoint := findings[1]
	assert.Equal(t, model.KindEndpoint, endpoint.Kind)
	assert.Equal(t, "GET", endpoint.Verb)
	assert.Equal(t, "/api/v1/Product", endpoint.Route)
}

func TestAspnetCoreAPI_MethodRouteConcatenation(t *testing.T) {
	ev, file := parseCSharp(t, "Controllers/OrderController.cs", `[ApiController]
[Route("api/orders")]
public class OrderController : ControllerBase
{
    [HttpGet("{id}")]
    public IActionResult Get(int id)
    {
        return Ok(id);
    }

    [HttpPost]
    public IActionResult Create(OrderDto dto)
    {
        return Created("", dto);
    }
}`)
	findings := scanAspnetCoreAPI(ev, file)
	require.Len(t, findings, 3)
	assert.Equal(t, "/api/orders/{id}", findings[1].Route)
	assert.Equal(t, "POST", findings[2].Verb)
	assert.Equal(t, "/api/orders", findings[2].Route)
}

func TestEntityFramework_DbContext(t *testing.T) {
	ev, file := parseCSharp(t, "Data/ShopContext.cs", `public class ShopContext : DbContext
{
    public DbSet<Order> Orders { get; set; }
}`)
	findings := scanEntityFramework(ev, file)
	require.Len(t, findings, 3)
	assert.Equal(t, model.KindDataStore, findings[0].Kind)
	assert.Equal(t, "ShopContext", findings[0].Name)
	assert.Equal(t, "Order", findings[1].Name)
	relation := findings[2]
	assert.Equal(t, model.KindRelation, relation.Kind)
	assert.Equal(t, model.RelationPersists, relation.Relation)
	assert.Equal(t, findings[0].Fingerprint, relation.Source)
	assert.Equal(t, findings[1].Fingerprint, relation.Target)
}

func TestNugetDependencies(t *testing.T) {
	csproj := `<Project Sdk="Microsoft.NET.Sdk.Web">
  <ItemGroup>
    <PackageReference Include="Confluent.Kafka" Version="2.3.0" />
  </ItemGroup>
</Project>`
	ev := model.NewFileEvidence("src/Shop.Api.csproj", ast.Other, []byte(csproj))
	findings := scanNugetDependencies(ev, nil)
	require.Len(t, findings, 2)
	assert.Equal(t, "Shop.Api", findings[0].Name)
	assert.Equal(t, "Confluent.Kafka", findings[1].Name)
}

func TestDotnetSolution(t *testing.T) {
	sln := `Microsoft Visual Studio Solution File, Format Version 12.00
Project("{FAE04EC0-301F-11D3-BF4B-00C04F79EFBC}") = "Shop.Api", "src\Shop.Api\Shop.Api.csproj", "{123}"
EndProject
Project("{FAE04EC0-301F-11D3-BF4B-00C04F79EFBC}") = "Shop.Worker", "src\Shop.Worker\Shop.Worker.csproj", "{456}"
EndProject`
	ev := model.NewFileEvidence("Shop.sln", ast.Other, []byte(sln))
	findings := scanDotnetSolution(ev, nil)
	require.Len(t, findings, 2)
	assert.Equal(t, "Shop.Api", findings[0].Name)
	assert.Equal(t, "Shop.Worker", findings[1].Name)
}
