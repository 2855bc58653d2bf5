package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/emilholmegaard/doc-architect/ast"
	"github.com/emilholmegaard/doc-architect/config"
	"github.com/emilholmegaard/doc-architect/model"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func fixtureRepo(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "config/routes.rb", `Rails.application.routes.draw do
  resources :posts
end
`)
	writeFile(t, root, "src/main/java/OrderController.java", `package com.example;

@RestController
@RequestMapping("/api/v1/orders")
public class OrderController {

    @GetMapping("/{id}")
    public Order get(@PathVariable Long id) {
        return null;
    }
}
`)
	writeFile(t, root, "app/tasks.py", `from celery import shared_task

@shared_task
def send_email(to, subject):
    pass
`)
	writeFile(t, root, "app/notify.py", `from app.tasks import send_email

def notify(user):
    send_email.delay(user.email, 'Hi')
`)
	writeFile(t, root, "order-service/pom.xml", `<project>
  <artifactId>order-service</artifactId>
  <dependencies>
    <dependency>
      <groupId>org.postgresql</groupId>
      <artifactId>postgresql</artifactId>
    </dependency>
  </dependencies>
</project>
`)
	return root
}

func TestScan_EndToEnd(t *testing.T) {
	root := fixtureRepo(t)
	p := NewDefault(zap.NewNop())

	arch, summary, err := p.Scan(context.Background(), root, config.Default())
	require.NoError(t, err)
	require.NotNil(t, arch)

	// Spring controller: component node with one GET endpoint.
	controller := arch.Node(model.ComponentFingerprint(model.KindComponent, "OrderController", ast.Java))
	require.NotNil(t, controller)
	require.Len(t, controller.Endpoints, 1)
	assert.Equal(t, "GET", controller.Endpoints[0].Verb)
	assert.Equal(t, "/api/v1/orders/{id}", controller.Endpoints[0].Path)

	// Rails resources: seven endpoints on the inferred PostsController.
	posts := arch.Node(model.ComponentFingerprint(model.KindComponent, "PostsController", ast.Ruby))
	require.NotNil(t, posts)
	assert.Len(t, posts.Endpoints, 7)
	assert.Equal(t, model.ConfidenceInferred, posts.Confidence)

	// Celery: consumer node and a publishes edge from the producer module.
	consumer := arch.Node(model.ComponentFingerprint(model.KindMessageConsumer, "send_email", ast.Python))
	require.NotNil(t, consumer)
	producerEdge := false
	for _, e := range arch.Edges() {
		if e.Dst == consumer.Fingerprint && e.Kind == model.RelationPublishes {
			producerEdge = true
		}
	}
	assert.True(t, producerEdge)

	// Maven: owner component with a depends-on edge.
	owner := arch.Node(model.ComponentFingerprint(model.KindComponent, "order-service", ast.Java))
	require.NotNil(t, owner)

	assert.Equal(t, summary.Nodes, len(arch.Nodes()))
	assert.Equal(t, summary.Edges, len(arch.Edges()))
	assert.Greater(t, summary.FindingsEmitted, 0)
	assert.Greater(t, summary.FilesScanned, 0)
	assert.Zero(t, summary.FilesSkipped)
}

func TestScan_ModelInvariants(t *testing.T) {
	root := fixtureRepo(t)
	p := NewDefault(zap.NewNop())
	arch, _, err := p.Scan(context.Background(), root, config.Default())
	require.NoError(t, err)

	seen := map[model.Fingerprint]bool{}
	for _, n := range arch.Nodes() {
		assert.False(t, seen[n.Fingerprint], "duplicate node %s", n.Fingerprint)
		seen[n.Fingerprint] = true
	}
	for _, e := range arch.Edges() {
		assert.NotNil(t, arch.Node(e.Src), "edge source %s missing", e.Src)
		assert.NotNil(t, arch.Node(e.Dst), "edge target %s missing", e.Dst)
	}
	for _, n := range arch.Nodes() {
		for _, prov := range n.Provenance {
			assert.GreaterOrEqual(t, prov.Line, 1)
			assert.FileExists(t, filepath.Join(root, filepath.FromSlash(prov.Path)))
		}
	}
}

func TestScan_Deterministic(t *testing.T) {
	root := fixtureRepo(t)
	p := NewDefault(zap.NewNop())

	first, _, err := p.Scan(context.Background(), root, config.Default())
	require.NoError(t, err)
	second, _, err := p.Scan(context.Background(), root, config.Default())
	require.NoError(t, err)
	assert.True(t, first.Equal(second))
}

func TestScan_DisablingIsMonotonic(t *testing.T) {
	root := fixtureRepo(t)
	p := NewDefault(zap.NewNop())

	full, _, err := p.Scan(context.Background(), root, config.Default())
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Scanners.Disabled = []string{"celery-tasks"}
	reduced, _, err := p.Scan(context.Background(), root, cfg)
	require.NoError(t, err)

	assert.Less(t, len(reduced.Nodes()), len(full.Nodes()))
	for _, n := range reduced.Nodes() {
		assert.NotNil(t, full.Node(n.Fingerprint), "disabling added node %s", n.Fingerprint)
	}
}

func TestScan_EmptyRoot(t *testing.T) {
	p := NewDefault(zap.NewNop())
	arch, summary, err := p.Scan(context.Background(), t.TempDir(), config.Default())
	require.NoError(t, err)
	assert.Empty(t, arch.Nodes())
	assert.Empty(t, arch.Edges())
	assert.Zero(t, summary.FilesScanned)
}

func TestScan_MissingRootIsFatal(t *testing.T) {
	p := NewDefault(zap.NewNop())
	_, _, err := p.Scan(context.Background(), filepath.Join(t.TempDir(), "absent"), config.Default())
	require.Error(t, err)
	var fatal *FatalIOError
	assert.ErrorAs(t, err, &fatal)
}

func TestScan_Cancellation(t *testing.T) {
	root := fixtureRepo(t)
	p := NewDefault(zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	arch, _, err := p.Scan(ctx, root, config.Default())
	assert.ErrorIs(t, err, ErrCancelled)
	assert.Nil(t, arch)
}

func TestScan_ExcludesApplied(t *testing.T) {
	root := fixtureRepo(t)
	p := NewDefault(zap.NewNop())

	cfg := config.Default()
	cfg.Scan.Excludes = []string{"config/**"}
	arch, _, err := p.Scan(context.Background(), root, cfg)
	require.NoError(t, err)
	assert.Nil(t, arch.Node(model.ComponentFingerprint(model.KindComponent, "PostsController", ast.Ruby)))
}

func TestScan_MalformedFileDegradesNotFails(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "app/controllers/broken_controller.rb", `class BrokenController < ApplicationController
  before_action :authenticate_user

  def broken(
end
`)
	p := NewDefault(zap.NewNop())
	arch, summary, err := p.Scan(context.Background(), root, config.Default())
	require.NoError(t, err)

	node := arch.Node(model.ComponentFingerprint(model.KindComponent, "BrokenController", ast.Ruby))
	require.NotNil(t, node)
	assert.Equal(t, model.ConfidenceLow, node.Confidence)
	assert.Zero(t, summary.FilesSkipped)
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		path string
		want ast.LanguageTag
	}{
		{"src/Main.java", ast.Java},
		{"src/app.kt", ast.Kotlin},
		{"tasks.py", ast.Python},
		{"Program.cs", ast.CSharp},
		{"main.go", ast.Go},
		{"config/routes.rb", ast.Ruby},
		{"index.js", ast.JavaScript},
		{"index.tsx", ast.TypeScript},
		{"pom.xml", ast.Other},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, DetectLanguage(tc.path), tc.path)
	}
}

func TestDetectProjects(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "svc/go.mod", "module example.com/svc\n\ngo 1.22\n")
	writeFile(t, root, "web/package.json", `{"name": "web-app", "dependencies": {}}`)

	files, err := discover(root, nil)
	require.NoError(t, err)
	projects := detectProjects(files)
	require.Len(t, projects, 2)
	assert.Equal(t, "example.com/svc", projects[0].Name)
	assert.Equal(t, "go", projects[0].Type)
	assert.Equal(t, "web-app", projects[1].Name)
}
