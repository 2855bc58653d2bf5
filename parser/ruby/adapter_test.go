package ruby

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilholmegaard/doc-architect/ast"
	"github.com/emilholmegaard/doc-architect/model"
)

func TestAdapter_ParseController(t *testing.T) {
	source := `class PostsController < ApplicationController
  before_action :authenticate_user
  skip_before_action :verify_authenticity_token

  def index
    render json: Post.all
  end

  def show
    @post = Post.find(params[:id])
  end
end
`
	ev := model.NewFileEvidence("app/controllers/posts_controller.rb", ast.Ruby, []byte(source))
	file, err := New().Parse(ev)
	require.NoError(t, err)
	assert.False(t, file.Degraded)

	require.Len(t, file.Types, 1)
	decl := file.Types[0]
	assert.Equal(t, "PostsController", decl.Name)
	assert.Equal(t, "ApplicationController", decl.Base)
	require.Len(t, decl.Methods, 2)
	assert.Equal(t, "index", decl.Methods[0].Name)

	var names []string
	for _, d := range file.Directives {
		names = append(names, d.Name)
	}
	assert.Contains(t, names, "before_action")
	assert.Contains(t, names, "skip_before_action")
}

func TestAdapter_ParseRoutesDSL(t *testing.T) {
	source := `Rails.application.routes.draw do
  namespace :admin do
    resources :posts
  end
  resources :comments
  resource :profile
  get '/health', to: 'health#show'
  root 'home#index'
end
`
	ev := model.NewFileEvidence("config/routes.rb", ast.Ruby, []byte(source))
	file, err := New().Parse(ev)
	require.NoError(t, err)
	assert.False(t, file.Degraded)

	require.Len(t, file.RouteBlocks, 5)
	ns := file.RouteBlocks[0]
	assert.Equal(t, "namespace", ns.Keyword)
	assert.Equal(t, "admin", ns.Arg)
	require.Len(t, ns.Children, 1)
	assert.Equal(t, "resources", ns.Children[0].Keyword)
	assert.Equal(t, "posts", ns.Children[0].Arg)

	assert.Equal(t, "comments", file.RouteBlocks[1].Arg)
	assert.Equal(t, "resource", file.RouteBlocks[2].Keyword)
	get := file.RouteBlocks[3]
	assert.Equal(t, "get", get.Keyword)
	assert.Equal(t, "/health", get.Arg)
	assert.Contains(t, get.Extra, "health#show")
	assert.Equal(t, "root", file.RouteBlocks[4].Keyword)
}

func TestAdapter_MalformedMethodDegrades(t *testing.T) {
	source := `class BrokenController < ApplicationController
  before_action :authenticate_user

  def broken(
end
`
	ev := model.NewFileEvidence("app/controllers/broken_controller.rb", ast.Ruby, []byte(source))
	file, err := New().Parse(ev)
	require.NoError(t, err)
	assert.True(t, file.Degraded)

	require.Len(t, file.Types, 1)
	assert.Equal(t, "BrokenController", file.Types[0].Name)
	require.Len(t, file.Directives, 1)
	assert.Equal(t, "before_action", file.Directives[0].Name)
	assert.Equal(t, 2, file.Directives[0].Line)
}

func TestSalvage_RoutesNesting(t *testing.T) {
	source := `Rails.application.routes.draw do
  namespace :admin do
    resources :posts
  end
  resources :comments
end
`
	ev := model.NewFileEvidence("config/routes.rb", ast.Ruby, []byte(source))
	file := salvage(ev)

	require.Len(t, file.RouteBlocks, 2)
	assert.Equal(t, "namespace", file.RouteBlocks[0].Keyword)
	require.Len(t, file.RouteBlocks[0].Children, 1)
	assert.Equal(t, "posts", file.RouteBlocks[0].Children[0].Arg)
	assert.Equal(t, "comments", file.RouteBlocks[1].Arg)
}

func TestCleanRouteArg(t *testing.T) {
	assert.Equal(t, "posts", CleanRouteArg(":posts"))
	assert.Equal(t, "/health", CleanRouteArg(`'/health', to: 'health#show'`))
	assert.Equal(t, "home#index", CleanRouteArg(`'home#index'`))
	assert.Equal(t, "", CleanRouteArg(""))
}
