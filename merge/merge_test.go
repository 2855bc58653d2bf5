package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilholmegaard/doc-architect/ast"
	"github.com/emilholmegaard/doc-architect/model"
	"github.com/emilholmegaard/doc-architect/scanner"
)

func newMerger() *Merger {
	return New(scanner.NewDefault())
}

func componentFinding(scannerID, name, path string, line int, conf model.Confidence) model.Finding {
	fp := model.ComponentFingerprint(model.KindComponent, name, ast.Java)
	return model.Finding{
		Kind: model.KindComponent, Scanner: scannerID, Path: path, Line: line,
		Confidence: conf, Fingerprint: fp, Name: name, Language: ast.Java,
	}
}

func TestMerge_DeduplicatesNodesByFingerprint(t *testing.T) {
	findings := []model.Finding{
		componentFinding("spring-component", "OrderService", "a/A.java", 3, model.ConfidenceHigh),
		componentFinding("spring-rest-api", "OrderService", "a/A.java", 3, model.ConfidenceHigh),
	}
	arch := newMerger().Merge(findings)

	require.Len(t, arch.Nodes(), 1)
	node := arch.Nodes()[0]
	assert.Equal(t, "OrderService", node.Name)
	assert.Len(t, node.Provenance, 2)

	seen := map[model.Fingerprint]bool{}
	for _, n := range arch.Nodes() {
		assert.False(t, seen[n.Fingerprint])
		seen[n.Fingerprint] = true
	}
}

func TestMerge_EndpointAttachesToComponent(t *testing.T) {
	component := componentFinding("spring-rest-api", "OrderController", "A.java", 1, model.ConfidenceHigh)
	endpoint := model.Finding{
		Kind: model.KindEndpoint, Scanner: "spring-rest-api", Path: "A.java", Line: 5,
		Confidence:  model.ConfidenceHigh,
		Fingerprint: model.EndpointFingerprint(component.Fingerprint, "GET", "/api/v1/orders/{id}"),
		Verb:        "GET", Route: "/api/v1/orders/{id}", Handler: "OrderController.get",
		Component: component.Fingerprint, Language: ast.Java,
	}
	arch := newMerger().Merge([]model.Finding{component, endpoint})

	require.Len(t, arch.Nodes(), 1)
	node := arch.Nodes()[0]
	assert.Equal(t, model.ConfidenceHigh, node.Confidence)
	require.Len(t, node.Endpoints, 1)
	assert.Equal(t, "/api/v1/orders/{id}", node.Endpoints[0].Path)
}

func TestMerge_EndpointSynthesizesInferredComponent(t *testing.T) {
	fp := model.ComponentFingerprint(model.KindComponent, "PostsController", ast.Ruby)
	endpoint := model.Finding{
		Kind: model.KindEndpoint, Scanner: "rails-routes", Path: "config/routes.rb", Line: 2,
		Confidence:  model.ConfidenceHigh,
		Fingerprint: model.EndpointFingerprint(fp, "GET", "/posts"),
		Verb:        "GET", Route: "/posts", Handler: "posts#index",
		Component: fp, Language: ast.Ruby,
	}
	arch := newMerger().Merge([]model.Finding{endpoint})

	require.Len(t, arch.Nodes(), 1)
	node := arch.Nodes()[0]
	assert.Equal(t, "PostsController", node.Name)
	assert.Equal(t, model.ConfidenceInferred, node.Confidence)
	require.Len(t, node.Endpoints, 1)
}

func TestMerge_ProducerConsumerPairing(t *testing.T) {
	consumerFP := model.ComponentFingerprint(model.KindMessageConsumer, "send_email", ast.Python)
	producerSource := model.ComponentFingerprint(model.KindComponent, "notify", ast.Python)
	findings := []model.Finding{
		{
			Kind: model.KindMessageConsumer, Scanner: "celery-tasks", Path: "app/tasks.py", Line: 3,
			Confidence: model.ConfidenceHigh, Fingerprint: consumerFP,
			Name: "send_email", Topic: "send_email", Language: ast.Python, Detail: "queue=celery",
		},
		{
			Kind: model.KindMessageProducer, Scanner: "celery-tasks", Path: "app/notify.py", Line: 4,
			Confidence:  model.ConfidenceHigh,
			Fingerprint: model.Fingerprint("message-producer|" + string(producerSource) + "|send_email"),
			Name:        "notify", Topic: "send_email", Source: producerSource, Language: ast.Python,
		},
	}
	arch := newMerger().Merge(findings)

	require.Len(t, arch.Nodes(), 2)
	require.Len(t, arch.Edges(), 1)
	edge := arch.Edges()[0]
	assert.Equal(t, producerSource, edge.Src)
	assert.Equal(t, consumerFP, edge.Dst)
	assert.Equal(t, model.RelationPublishes, edge.Kind)

	for _, e := range arch.Edges() {
		assert.NotNil(t, arch.Node(e.Src))
		assert.NotNil(t, arch.Node(e.Dst))
	}
}

func TestMerge_TieBreakPrefersHighConfidence(t *testing.T) {
	low := componentFinding("rails-api", "Thing", "a.rb", 1, model.ConfidenceLow)
	low.Language = ast.Ruby
	low.Fingerprint = model.ComponentFingerprint(model.KindComponent, "Thing", ast.Ruby)
	high := low
	high.Scanner = "sidekiq-workers"
	high.Confidence = model.ConfidenceHigh
	high.Line = 9

	arch := newMerger().Merge([]model.Finding{low, high})
	require.Len(t, arch.Nodes(), 1)
	// sidekiq-workers registers after rails-api, but high confidence wins.
	assert.Equal(t, model.ConfidenceHigh, arch.Nodes()[0].Confidence)
}

func TestMerge_TieBreakPrefersEarlierScanner(t *testing.T) {
	reg := scanner.NewDefault()
	a := componentFinding("spring-component", "Thing", "z.java", 9, model.ConfidenceHigh)
	b := componentFinding("spring-rest-api", "Thing", "a.java", 1, model.ConfidenceHigh)

	arch := New(reg).Merge([]model.Finding{a, b})
	require.Len(t, arch.Nodes(), 1)
	node := arch.Nodes()[0]
	// spring-component registered before spring-rest-api; it defines the node
	// even though the other finding sorts first by path.
	require.Len(t, node.Provenance, 2)
	assert.Equal(t, "spring-rest-api", node.Provenance[0].Scanner)
	assert.Equal(t, "spring-component", node.Provenance[1].Scanner)
}

func TestMerge_Idempotence(t *testing.T) {
	findings := []model.Finding{
		componentFinding("spring-component", "A", "a.java", 1, model.ConfidenceHigh),
		componentFinding("spring-component", "B", "b.java", 1, model.ConfidenceHigh),
	}
	m := newMerger()
	first := m.Merge(findings)
	second := m.Merge(findings)
	assert.True(t, first.Equal(second))
}

func TestMerge_EmptyInEmptyOut(t *testing.T) {
	arch := newMerger().Merge(nil)
	assert.Empty(t, arch.Nodes())
	assert.Empty(t, arch.Edges())
}

func TestMerge_StableOrdering(t *testing.T) {
	findings := []model.Finding{
		componentFinding("spring-component", "Zeta", "z.java", 1, model.ConfidenceHigh),
		componentFinding("spring-component", "Alpha", "a.java", 1, model.ConfidenceHigh),
	}
	arch := newMerger().Merge(findings)
	require.Len(t, arch.Nodes(), 2)
	assert.Equal(t, "Alpha", arch.Nodes()[0].Name)
	assert.Equal(t, "Zeta", arch.Nodes()[1].Name)
}
