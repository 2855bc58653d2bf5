package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilholmegaard/doc-architect/ast"
	"github.com/emilholmegaard/doc-architect/model"
	"github.com/emilholmegaard/doc-architect/parser/ruby"
)

func parseRuby(t *testing.T, path, source string) (*model.FileEvidence, *ast.File) {
	t.Helper()
	ev := model.NewFileEvidence(path, ast.Ruby, []byte(source))
	file, err := ruby.New().Parse(ev)
	require.NoError(t, err)
	return ev, file
}

func TestRailsRoutes_ResourcesExpansion(t *testing.T) {
	ev, file := parseRuby(t, "config/routes.rb", `Rails.application.routes.draw do
  resources :posts
end
`)
	findings := scanRailsRoutes(ev, file)
	require.Len(t, findings, 7)

	type pair struct{ verb, path string }
	var got []pair
	for _, f := range findings {
		assert.Equal(t, model.KindEndpoint, f.Kind)
		assert.Equal(t, "posts", f.Name)
		got = append(got, pair{f.Verb, f.Route})
	}
	want := []pair{
		{"GET", "/posts"},
		{"GET", "/posts/new"},
		{"POST", "/posts"},
		{"GET", "/posts/:id"},
		{"GET", "/posts/:id/edit"},
		{"PATCH", "/posts/:id"},
		{"DELETE", "/posts/:id"},
	}
	assert.Equal(t, want, got)
}

func TestRailsRoutes_SingularResource(t *testing.T) {
	ev, file := parseRuby(t, "config/routes.rb", `Rails.application.routes.draw do
  resource :profile
end
`)
	findings := scanRailsRoutes(ev, file)
	require.Len(t, findings, 6)
	for _, f := range findings {
		assert.NotContains(t, f.Handler, "#index")
		assert.Equal(t, "profiles", f.Name)
	}
	assert.Equal(t, "/profile", findings[0].Route)
}

func TestRailsRoutes_NamespacePrefixes(t *testing.T) {
	ev, file := parseRuby(t, "config/routes.rb", `Rails.application.routes.draw do
  namespace :admin do
    resources :posts
  end
end
`)
	findings := scanRailsRoutes(ev, file)
	require.Len(t, findings, 7)
	assert.Equal(t, "/admin/posts", findings[0].Route)
	assert.Equal(t, "admin/posts", findings[0].Name)
	assert.Equal(t, "admin/posts#index", findings[0].Handler)
	assert.Equal(t,
		model.ComponentFingerprint(model.KindComponent, "Admin::PostsController", ast.Ruby),
		findings[0].Component)
}

func TestRailsRoutes_VerbRootAndMatch(t *testing.T) {
	ev, file := parseRuby(t, "config/routes.rb", `Rails.application.routes.draw do
  get '/health', to: 'health#show'
  root 'home#index'
  match '/legacy', to: 'legacy#handle', via: [:get, :post]
end
`)
	findings := scanRailsRoutes(ev, file)
	require.Len(t, findings, 4)

	assert.Equal(t, "GET", findings[0].Verb)
	assert.Equal(t, "/health", findings[0].Route)
	assert.Equal(t, "health#show", findings[0].Handler)

	assert.Equal(t, "/", findings[1].Route)
	assert.Equal(t, "home#index", findings[1].Handler)

	assert.Equal(t, "GET", findings[2].Verb)
	assert.Equal(t, "POST", findings[3].Verb)
	assert.Equal(t, "/legacy", findings[2].Route)
	assert.Equal(t, "legacy#handle", findings[2].Handler)
}

func TestRailsAPI_Component(t *testing.T) {
	ev, file := parseRuby(t, "app/controllers/posts_controller.rb", `class PostsController < ApplicationController
  before_action :authenticate_user

  def index
  end
end
`)
	findings := scanRailsAPI(ev, file)
	require.Len(t, findings, 1)
	assert.Equal(t, model.KindComponent, findings[0].Kind)
	assert.Equal(t, "PostsController", findings[0].Name)
	assert.Equal(t, model.ConfidenceHigh, findings[0].Confidence)
}

func TestRailsAPI_DegradedFileStillScans(t *testing.T) {
	ev, file := parseRuby(t, "app/controllers/broken_controller.rb", `class BrokenController < ApplicationController
  before_action :authenticate_user

  def broken(
end
`)
	require.True(t, file.Degraded)
	findings := scanRailsAPI(ev, file)
	require.Len(t, findings, 1)
	assert.Equal(t, model.ConfidenceLow, findings[0].Confidence)
}

func TestBundlerDependencies(t *testing.T) {
	ev := model.NewFileEvidence("Gemfile", ast.Other, []byte(`source 'https://rubygems.org'

gem 'rails'
gem 'sidekiq'
`))
	findings := scanBundlerDependencies(ev, nil)
	require.Len(t, findings, 2)
	assert.Equal(t, "rails", findings[0].Name)
	assert.Equal(t, "sidekiq", findings[1].Name)
	assert.Equal(t, 3, findings[0].Line)
}
