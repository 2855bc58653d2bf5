package scanner

import (
	"regexp"
	"strings"

	"github.com/emilholmegaard/doc-architect/ast"
	"github.com/emilholmegaard/doc-architect/model"
	"github.com/emilholmegaard/doc-architect/parser/python"
)

var sidekiqQueue = regexp.MustCompile(`queue:\s*['":]?(\w+)`)

func messagingScanners() []*Scanner {
	return []*Scanner{
		{
			ID:        "kafka-consumer",
			Languages: []ast.LanguageTag{ast.Java, ast.Kotlin},
			Scan:      scanKafkaConsumer,
		},
		{
			ID:        "kafka-streams",
			Languages: []ast.LanguageTag{ast.Java, ast.Kotlin},
			Scan:      scanKafkaStreams,
		},
		{
			ID:        "rabbitmq-listener",
			Languages: []ast.LanguageTag{ast.Java, ast.Kotlin},
			Scan:      scanRabbitListener,
		},
		{
			ID:        "dotnet-kafka",
			Languages: []ast.LanguageTag{ast.CSharp},
			Scan:      scanDotnetKafka,
		},
		{
			ID:        "dotnet-kafka-streams",
			Languages: []ast.LanguageTag{ast.CSharp},
			Scan:      scanDotnetKafkaStreams,
		},
		{
			ID:        "celery-tasks",
			Languages: []ast.LanguageTag{ast.Python},
			Scan:      scanCeleryTasks,
		},
		{
			ID:        "faust-streams",
			Languages: []ast.LanguageTag{ast.Python},
			Scan:      scanFaustStreams,
		},
		{
			ID:        "sidekiq-workers",
			Languages: []ast.LanguageTag{ast.Ruby},
			Scan:      scanSidekiqWorkers,
		},
	}
}

// consumerFinding builds a message-consumer finding keyed by its routing
// topic.
func consumerFinding(scannerID string, ev *model.FileEvidence, line int, conf model.Confidence, name, topic string, language ast.LanguageTag, detail string) model.Finding {
	fp := model.ComponentFingerprint(model.KindMessageConsumer, name, language)
	return model.Finding{
		Kind:        model.KindMessageConsumer,
		Scanner:     scannerID,
		Path:        ev.Path(),
		Line:        line,
		Confidence:  conf,
		Fingerprint: fp,
		Name:        name,
		Language:    language,
		Topic:       topic,
		Detail:      detail,
	}
}

// producerFinding builds a message-producer finding from a call or send
// site. The source component may be empty; the merger then synthesizes one
// from the producer name.
func producerFinding(scannerID string, ev *model.FileEvidence, line int, conf model.Confidence, name, topic string, language ast.LanguageTag, source model.Fingerprint) model.Finding {
	if source == "" {
		source = model.ComponentFingerprint(model.KindComponent, name, language)
	}
	return model.Finding{
		Kind:        model.KindMessageProducer,
		Scanner:     scannerID,
		Path:        ev.Path(),
		Line:        line,
		Confidence:  conf,
		Fingerprint: model.Fingerprint(string(model.KindMessageProducer) + "|" + string(source) + "|" + topic),
		Name:        name,
		Language:    language,
		Topic:       topic,
		Source:      source,
	}
}

// scanKafkaConsumer emits a consumer per @KafkaListener method.
func scanKafkaConsumer(ev *model.FileEvidence, file *ast.File) []model.Finding {
	if file == nil {
		return nil
	}
	conf := confidence(file)
	var findings []model.Finding
	for _, decl := range file.Types {
		for _, method := range decl.Methods {
			listener := method.AnnotationNamed("KafkaListener")
			if listener == nil {
				continue
			}
			for _, topic := range allQuoted(listener.Args) {
				findings = append(findings, consumerFinding(
					"kafka-consumer", ev, method.Line, conf,
					decl.Name+"."+method.Name, topic, file.Language, "kafka"))
			}
		}
	}
	return findings
}

// scanKafkaStreams emits consumers for .stream("topic") sources and
// producers for .to("topic") sinks inside streams topology code.
func scanKafkaStreams(ev *model.FileEvidence, file *ast.File) []model.Finding {
	if file == nil || !strings.Contains(string(ev.Content()), "StreamsBuilder") {
		return nil
	}
	conf := confidence(file)
	owner := ""
	if len(file.Types) > 0 {
		owner = file.Types[0].Name
	} else {
		owner = packageDir(ev.Path())
	}
	source := model.ComponentFingerprint(model.KindComponent, owner, file.Language)
	var findings []model.Finding
	for _, call := range file.Calls {
		topic := firstQuoted(call.Args)
		if topic == "" {
			continue
		}
		switch call.Method {
		case "stream", "table":
			findings = append(findings, consumerFinding(
				"kafka-streams", ev, call.Line, conf, owner+":"+topic, topic, file.Language, "kafka-streams"))
		case "to":
			findings = append(findings, producerFinding(
				"kafka-streams", ev, call.Line, conf, owner, topic, file.Language, source))
		}
	}
	return findings
}

// scanRabbitListener emits a consumer per @RabbitListener method.
func scanRabbitListener(ev *model.FileEvidence, file *ast.File) []model.Finding {
	if file == nil {
		return nil
	}
	conf := confidence(file)
	var findings []model.Finding
	for _, decl := range file.Types {
		for _, method := range decl.Methods {
			listener := method.AnnotationNamed("RabbitListener")
			if listener == nil {
				continue
			}
			for _, queue := range allQuoted(listener.Args) {
				findings = append(findings, consumerFinding(
					"rabbitmq-listener", ev, method.Line, conf,
					decl.Name+"."+method.Name, queue, file.Language, "rabbitmq"))
			}
		}
	}
	return findings
}

// scanDotnetKafka emits consumers for consumer.Subscribe("topic") and
// producers for producer.Produce/ProduceAsync("topic", ...).
func scanDotnetKafka(ev *model.FileEvidence, file *ast.File) []model.Finding {
	if file == nil {
		return nil
	}
	conf := confidence(file)
	owner := ""
	if len(file.Types) > 0 {
		owner = file.Types[0].Name
	} else {
		owner = packageDir(ev.Path())
	}
	source := model.ComponentFingerprint(model.KindComponent, owner, ast.CSharp)
	var findings []model.Finding
	for _, call := range file.Calls {
		topic := firstQuoted(call.Args)
		if topic == "" {
			continue
		}
		switch call.Method {
		case "Subscribe":
			findings = append(findings, consumerFinding(
				"dotnet-kafka", ev, call.Line, conf, owner+":"+topic, topic, ast.CSharp, "kafka"))
		case "Produce", "ProduceAsync":
			findings = append(findings, producerFinding(
				"dotnet-kafka", ev, call.Line, conf, owner, topic, ast.CSharp, source))
		}
	}
	return findings
}

// scanDotnetKafkaStreams emits consumers and producers from Streamiz
// topology calls.
func scanDotnetKafkaStreams(ev *model.FileEvidence, file *ast.File) []model.Finding {
	if file == nil || !strings.Contains(string(ev.Content()), "StreamBuilder") {
		return nil
	}
	conf := confidence(file)
	owner := ""
	if len(file.Types) > 0 {
		owner = file.Types[0].Name
	} else {
		owner = packageDir(ev.Path())
	}
	source := model.ComponentFingerprint(model.KindComponent, owner, ast.CSharp)
	var findings []model.Finding
	for _, call := range file.Calls {
		topic := firstQuoted(call.Args)
		if topic == "" {
			continue
		}
		switch call.Method {
		case "Stream":
			findings = append(findings, consumerFinding(
				"dotnet-kafka-streams", ev, call.Line, conf, owner+":"+topic, topic, ast.CSharp, "kafka-streams"))
		case "To":
			findings = append(findings, producerFinding(
				"dotnet-kafka-streams", ev, call.Line, conf, owner, topic, ast.CSharp, source))
		}
	}
	return findings
}

// scanCeleryTasks emits a consumer per @shared_task or @app.task function,
// with the queue resolved from the queue= argument, and a producer per
// .delay or .apply_async call site. Producer and consumer pair on the task
// name.
func scanCeleryTasks(ev *model.FileEvidence, file *ast.File) []model.Finding {
	if file == nil {
		return nil
	}
	conf := confidence(file)
	var findings []model.Finding
	tasks := func(functions []*ast.Function) {
		for _, fn := range functions {
			for _, dec := range fn.Decorators {
				if dec.Name != "shared_task" && !strings.HasSuffix(dec.Name, ".task") {
					continue
				}
				queue := "celery"
				if value, ok := python.ExtractParameter(dec.Args, "queue"); ok {
					queue = value
				}
				findings = append(findings, consumerFinding(
					"celery-tasks", ev, fn.Line, conf, fn.Name, fn.Name, ast.Python, "queue="+queue))
				break
			}
		}
	}
	tasks(file.Functions)
	for _, decl := range file.Types {
		tasks(decl.Methods)
	}

	for _, call := range file.Calls {
		if call.Method != "delay" && call.Method != "apply_async" {
			continue
		}
		task := call.Receiver
		if dot := strings.LastIndex(task, "."); dot >= 0 {
			task = task[dot+1:]
		}
		producer := moduleName(ev.Path())
		findings = append(findings, producerFinding(
			"celery-tasks", ev, call.Line, conf, producer, task, ast.Python, ""))
	}
	return findings
}

// scanFaustStreams emits a consumer per @app.agent(topic) function.
func scanFaustStreams(ev *model.FileEvidence, file *ast.File) []model.Finding {
	if file == nil {
		return nil
	}
	conf := confidence(file)
	var findings []model.Finding
	for _, fn := range file.Functions {
		for _, dec := range fn.Decorators {
			if !strings.HasSuffix(dec.Name, ".agent") {
				continue
			}
			topic := firstQuoted(dec.Args)
			if topic == "" {
				topic = strings.TrimSpace(strings.Split(dec.Args, ",")[0])
			}
			if topic == "" {
				continue
			}
			findings = append(findings, consumerFinding(
				"faust-streams", ev, fn.Line, conf, fn.Name, topic, ast.Python, "faust"))
		}
	}
	return findings
}

// scanSidekiqWorkers emits a consumer per class including Sidekiq::Worker
// and a producer per perform_async style call site. Producer and consumer
// pair on the worker class name.
func scanSidekiqWorkers(ev *model.FileEvidence, file *ast.File) []model.Finding {
	if file == nil {
		return nil
	}
	conf := confidence(file)
	var findings []model.Finding

	isWorker := false
	queue := "default"
	for _, directive := range file.Directives {
		switch directive.Name {
		case "include":
			if strings.Contains(directive.Args, "Sidekiq::Worker") || strings.Contains(directive.Args, "Sidekiq::Job") {
				isWorker = true
			}
		case "sidekiq_options":
			if m := sidekiqQueue.FindStringSubmatch(directive.Args); m != nil {
				queue = m[1]
			}
		}
	}
	if isWorker {
		for _, decl := range file.Types {
			findings = append(findings, consumerFinding(
				"sidekiq-workers", ev, decl.Line, conf, decl.Name, decl.Name, ast.Ruby, "queue="+queue))
		}
	}
	for _, call := range file.Calls {
		if call.Method != "perform_async" && call.Method != "perform_in" && call.Method != "perform_at" {
			continue
		}
		producer := ""
		for _, decl := range file.Types {
			producer = decl.Name
			break
		}
		if producer == "" {
			producer = packageDir(ev.Path())
		}
		findings = append(findings, producerFinding(
			"sidekiq-workers", ev, call.Line, conf, producer, call.Receiver, ast.Ruby, ""))
	}
	return findings
}
