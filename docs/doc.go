// Package docs provides generated OpenAPI documentation.
//
// ResumeWorthy API
//
//	@title			ResumeWorthy API
//	@version		1.0
//	@description	Résumé ingestion API: upload a PDF, get structured blocks back, list and export them.
//
//	@contact.name	API Support
//	@contact.url	https://github.com/Julien-ser/ResumeWorthy
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host		localhost:8080
//	@BasePath	/
//
//	@schemes	http https
package docs

//go:generate swag init -g ../cmd/resumeworthy/serve.go -o ./swagger --parseDependency --parseInternal
