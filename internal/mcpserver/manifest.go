package mcpserver

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	serverSchema = "https://static.modelcontextprotocol.io/schemas/2025-10-17/server.schema.json"
	serverName   = "io.github.panbanda/orphans"
	repoURL      = "https://github.com/panbanda/orphans"
	imageRef     = "ghcr.io/panbanda/orphans"
)

// Manifest is the registry entry (server.json) for the orphans MCP server.
type Manifest struct {
	Schema      string      `json:"$schema"`
	Name        string      `json:"name"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Version     string      `json:"version"`
	WebsiteURL  string      `json:"websiteUrl,omitempty"`
	Repository  *Repository `json:"repository,omitempty"`
	Packages    []Package   `json:"packages,omitempty"`
}

// Repository points at the source of the server.
type Repository struct {
	URL    string `json:"url"`
	Source string `json:"source"`
}

// Package is one way to launch the server. Orphans ships as a container image
// whose entrypoint is the CLI, so "mcp" is passed as the subcommand.
type Package struct {
	RegistryType         string        `json:"registryType"`
	Identifier           string        `json:"identifier"`
	Version              string        `json:"version,omitempty"`
	PackageArguments     []Argument    `json:"packageArguments,omitempty"`
	EnvironmentVariables []EnvVariable `json:"environmentVariables,omitempty"`
	Transport            Transport     `json:"transport"`
}

// Argument is a command-line argument passed to the package.
type Argument struct {
	Type  string `json:"type"`
	Value string `json:"value,omitempty"`
}

// EnvVariable is an environment variable the server reads.
type EnvVariable struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsRequired  bool   `json:"isRequired"`
}

// Transport names the wire the client talks over.
type Transport struct {
	Type string `json:"type"`
}

// GenerateManifest renders server.json for version. An empty version is
// published as 0.0.0 since the registry requires one.
func GenerateManifest(version string) ([]byte, error) {
	if version == "" {
		version = "0.0.0"
	}

	m := Manifest{
		Schema: serverSchema,
		Name:   serverName,
		Title:  "Orphans",
		Description: fmt.Sprintf("Unused-file finder for JS/TS web projects. Tools: %s.",
			strings.Join([]string{toolFindUnusedFiles, toolImportGraph}, ", ")),
		Version:    version,
		WebsiteURL: repoURL,
		Repository: &Repository{URL: repoURL, Source: "github"},
		Packages: []Package{{
			RegistryType:     "oci",
			Identifier:       imageRef,
			Version:          version,
			PackageArguments: []Argument{{Type: "positional", Value: "mcp"}},
			EnvironmentVariables: []EnvVariable{
				{Name: "ORPHANS_CONFIG", Description: "Path to an orphans config file that replaces per-project config discovery"},
			},
			Transport: Transport{Type: "stdio"},
		}},
	}
	return json.MarshalIndent(m, "", "  ")
}
