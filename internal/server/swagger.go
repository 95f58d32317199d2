package server

//go:generate swag init -g internal/server/server.go -o docs/swagger

// @title PrivyScope API
// @version 0.1
// @description Disclosure extraction and risk scoring for cookie and privacy policies.
// @BasePath /
