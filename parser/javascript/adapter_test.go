package javascript

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilholmegaard/doc-architect/ast"
	"github.com/emilholmegaard/doc-architect/model"
)

func TestAdapter_ParseExpressRoutes(t *testing.T) {
	source := `const express = require('express');
const app = express();

app.get('/orders', listOrders);
app.post('/orders', createOrder);

async function listOrders(req, res) {
  res.json([]);
}

function createOrder(req, res) {
  res.status(201).end();
}
`
	ev := model.NewFileEvidence("src/server.js", ast.JavaScript, []byte(source))
	file, err := New(ast.JavaScript).Parse(ev)
	require.NoError(t, err)
	assert.False(t, file.Degraded)

	var appCalls []*ast.CallSite
	for _, call := range file.Calls {
		if call.Receiver == "app" && (call.Method == "get" || call.Method == "post") {
			appCalls = append(appCalls, call)
		}
	}
	require.Len(t, appCalls, 2)
	assert.Contains(t, appCalls[0].Args, "'/orders'")

	list := file.FunctionNamed("listOrders")
	require.NotNil(t, list)
	assert.True(t, list.Async)
	assert.Equal(t, []string{"req", "res"}, list.Parameters)
}

func TestSalvage_MemberCalls(t *testing.T) {
	source := `app.get('/health', (req, res) => res.send('ok'));
class OrderService extends BaseService {
`
	ev := model.NewFileEvidence("src/broken.js", ast.JavaScript, []byte(source))
	file := salvage(ev, ast.JavaScript)

	assert.True(t, file.Degraded)
	require.NotEmpty(t, file.Calls)
	assert.Equal(t, "app", file.Calls[0].Receiver)
	assert.Equal(t, "get", file.Calls[0].Method)
	assert.Equal(t, "/health", file.Calls[0].Args)
	require.Len(t, file.Types, 1)
	assert.Equal(t, "BaseService", file.Types[0].Base)
}
