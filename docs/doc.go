// Package docs provides generated OpenAPI documentation.
//
// Lumen API
//
//	@title			Lumen API
//	@version		1.0
//	@description	Study guide generation API for uploading and processing large PDF documents.
//	@termsOfService	http://swagger.io/terms/
//
//	@contact.name	API Support
//	@contact.url	https://github.com/lumenstudy/lumen
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host		localhost:8080
//	@BasePath	/
//
//	@schemes	http https
package docs

//go:generate swag init -g ../cmd/lumen/serve.go -o ./swagger --parseDependency --parseInternal
