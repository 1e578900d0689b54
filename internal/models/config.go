package models

type ConfigFile struct {
	Address           string
	Port              string
	DatabaseURL       string
	SelfContained     bool
	PrintHttpRequests bool
	LogToFile         bool
	LogLevel          string
}
