package python

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilholmegaard/doc-architect/ast"
	"github.com/emilholmegaard/doc-architect/model"
)

func TestAdapter_ParseTasksAndCalls(t *testing.T) {
	source := `from celery import shared_task

@shared_task(queue='email')
def send_email(to, subject):
    pass

def notify(user):
    send_email.delay(user.email, 'Hi')
`
	ev := model.NewFileEvidence("app/tasks.py", ast.Python, []byte(source))
	file, err := New().Parse(ev)
	require.NoError(t, err)
	assert.False(t, file.Degraded)

	task := file.FunctionNamed("send_email")
	require.NotNil(t, task)
	assert.Equal(t, []string{"to", "subject"}, task.Parameters)
	dec := task.AnnotationNamed("shared_task")
	require.NotNil(t, dec)
	assert.Equal(t, "queue='email'", dec.Args)

	var delay *ast.CallSite
	for _, call := range file.Calls {
		if call.Method == "delay" {
			delay = call
		}
	}
	require.NotNil(t, delay)
	assert.Equal(t, "send_email", delay.Receiver)
	assert.GreaterOrEqual(t, delay.Line, 1)
}

func TestAdapter_DerivesRoutes(t *testing.T) {
	source := `app = FastAPI()

@app.get('/orders/{order_id}')
async def read_order(order_id):
    return find(order_id)

@app.route('/legacy', methods=['POST', 'PUT'])
def legacy():
    pass
`
	ev := model.NewFileEvidence("app/main.py", ast.Python, []byte(source))
	file, err := New().Parse(ev)
	require.NoError(t, err)

	require.Len(t, file.Routes, 3)
	assert.Equal(t, "GET", file.Routes[0].Verb)
	assert.Equal(t, "/orders/{order_id}", file.Routes[0].Path)
	assert.Equal(t, "read_order", file.Routes[0].Handler)
	assert.Equal(t, "POST", file.Routes[1].Verb)
	assert.Equal(t, "PUT", file.Routes[2].Verb)
	assert.Equal(t, "/legacy", file.Routes[1].Path)

	handler := file.FunctionNamed("read_order")
	require.NotNil(t, handler)
	assert.True(t, handler.Async)
}

func TestAdapter_ParseModels(t *testing.T) {
	source := `class Order(models.Model):
    customer = models.ForeignKey(Customer, on_delete=models.CASCADE)
    total = models.DecimalField(max_digits=8, decimal_places=2)

    def cancel(self):
        pass
`
	ev := model.NewFileEvidence("shop/models.py", ast.Python, []byte(source))
	file, err := New().Parse(ev)
	require.NoError(t, err)

	require.Len(t, file.Types, 1)
	decl := file.Types[0]
	assert.Equal(t, "Order", decl.Name)
	assert.Equal(t, "models.Model", decl.Base)
	require.Len(t, decl.Fields, 2)
	assert.Equal(t, "customer", decl.Fields[0].Name)
	assert.Contains(t, decl.Fields[0].Type, "models.ForeignKey")
	require.Len(t, decl.Methods, 1)
	assert.Equal(t, "cancel", decl.Methods[0].Name)
	assert.Equal(t, "Order", decl.Methods[0].Receiver)
}

func TestSalvage_RecognizesSameDirectives(t *testing.T) {
	source := `@shared_task(queue='email')
def send_email(to, subject):
    pass

send_email.apply_async(args=['u@e'])
`
	ev := model.NewFileEvidence("app/tasks.py", ast.Python, []byte(source))
	file := salvage(ev)
	deriveRoutes(file)

	assert.True(t, file.Degraded)
	task := file.FunctionNamed("send_email")
	require.NotNil(t, task)
	require.NotNil(t, task.AnnotationNamed("shared_task"))

	require.Len(t, file.Calls, 1)
	assert.Equal(t, "send_email", file.Calls[0].Receiver)
	assert.Equal(t, "apply_async", file.Calls[0].Method)
}

func TestExtractParameter(t *testing.T) {
	tests := []struct {
		name  string
		args  string
		param string
		want  string
		found bool
	}{
		{name: "single quoted", args: "queue='email', priority=3", param: "queue", want: "email", found: true},
		{name: "double quoted", args: `name="orders"`, param: "name", want: "orders", found: true},
		{name: "bare literal", args: "retries=5", param: "retries", want: "5", found: true},
		{name: "absent", args: "queue='email'", param: "topic", want: "", found: false},
		{name: "prefix not confused", args: "task_queue='x', queue='y'", param: "queue", want: "y", found: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ExtractParameter(tc.args, tc.param)
			assert.Equal(t, tc.found, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}
