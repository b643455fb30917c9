// Package config loads the YAML or JSON file driving the shapes command.
package config
