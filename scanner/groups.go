package scanner

// groups is the closed set of scanner groups. Groups are flat macros: a
// group expands to its member scanner IDs and nothing else.
var groups = map[string][]string{
	"java": {
		"maven-dependencies", "gradle-dependencies", "spring-component",
		"spring-rest-api", "jaxrs-api", "jpa-entities", "mongodb-repository",
		"java-http-client", "java-grpc-service",
	},
	"python": {
		"pip-poetry-dependencies", "django-app", "django-orm",
		"fastapi-endpoints", "flask-routes", "sqlalchemy-models",
	},
	"dotnet": {
		"nuget-dependencies", "dotnet-solution", "aspnet-core-api",
		"entity-framework", "dotnet-grpc-service",
	},
	"go": {
		"go-modules", "go-http-router", "go-struct-orm", "go-grpc-service",
	},
	"ruby": {
		"bundler-dependencies", "rails-api", "rails-routes",
	},
	"javascript": {
		"npm-dependencies", "express-routes",
	},
	"messaging": {
		"kafka-consumer", "kafka-streams", "rabbitmq-listener", "dotnet-kafka",
		"dotnet-kafka-streams", "celery-tasks", "faust-streams", "sidekiq-workers",
	},
	"schema": {
		"graphql-schema", "avro-schema", "protobuf-schema", "sql-migrations",
		"rest-event-flow",
	},
}

// groupOrder fixes the expansion order of "all groups".
var groupOrder = []string{"java", "python", "dotnet", "go", "ruby", "javascript", "messaging", "schema"}

// Group returns the member scanner IDs of a group and whether the group
// exists.
func Group(name string) ([]string, bool) {
	ids, ok := groups[name]
	return ids, ok
}

// GroupNames returns all group names in their fixed order.
func GroupNames() []string {
	return groupOrder
}
