package model

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/emilholmegaard/doc-architect/ast"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{name: "empty becomes root", path: "", want: "/"},
		{name: "root preserved", path: "/", want: "/"},
		{name: "duplicate slashes collapse", path: "/api//v1///orders", want: "/api/v1/orders"},
		{name: "trailing slash stripped", path: "/posts/", want: "/posts"},
		{name: "missing leading slash added", path: "api/v1", want: "/api/v1"},
		{name: "placeholders preserved", path: "/posts/{PostId}/edit", want: "/posts/{PostId}/edit"},
		{name: "colon placeholders preserved", path: "/posts/:id", want: "/posts/:id"},
		{name: "scheme lowercased", path: "HTTP://host/Path", want: "http://host/Path"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizePath(tc.path))
		})
	}
}

func TestJoinPaths(t *testing.T) {
	assert.Equal(t, "/api/v1/orders/{id}", JoinPaths("/api/v1/orders", "/{id}"))
	assert.Equal(t, "/api/v1/orders/{id}", JoinPaths("/api/v1/orders/", "{id}"))
	assert.Equal(t, "/orders", JoinPaths("", "orders"))
	assert.Equal(t, "/orders", JoinPaths("/orders", ""))
}

func TestFingerprints(t *testing.T) {
	comp := ComponentFingerprint(KindComponent, "OrderController", ast.Java)
	assert.Equal(t, Fingerprint("component|OrderController|java"), comp)

	ep := EndpointFingerprint(comp, "get", "/api//v1/orders/{id}/")
	assert.Equal(t, Fingerprint("component|OrderController|java|GET|/api/v1/orders/{id}"), ep)
}

func TestHashStable(t *testing.T) {
	a := ID(Fingerprint("component|a|go"))
	b := ID(Fingerprint("component|a|go"))
	c := ID(Fingerprint("component|b|go"))
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 16)
}
