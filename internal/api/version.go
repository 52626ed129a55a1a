package api

// Version is the service version reported by the API and the CLI.
const Version = "1.0.0"
