package commands

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/urfave/cli/v3"

	"github.com/florianilch/llm-openai-proxy/internal/app"
)

// envKeys maps the flat environment variable names of spec §6
// "Environment" onto the nested koanf keys app.Config unmarshals from.
// MODELS is comma-separated and needs splitting rather than a bare rename,
// so it is handled separately in loadConfig's TransformFunc.
var envKeys = map[string]string{
	"PORT":            "server.port",
	"SERVICE_NAME":    "service_name",
	"SERVICE_VERSION": "service_version",
	"CUSTOM_LLM_URL":  "upstream.base_url",
	"CUSTOM_LLM_KEY":  "upstream.key",
	"PROXY_KEY":       "proxy_key",
	"LOG_LEVEL":       "log_level",
	"LOG_FORMAT":      "log_format",
}

// loadConfig loads application configuration from various sources with
// precedence: config file → environment variables → CLI flags → defaults.
func loadConfig(configPath string, cmd *cli.Command, environFunc func() []string) (*app.Config, error) {
	k := koanf.New(".")

	// 1. Load from config file if provided
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	// 2. Load from environment variables, mapped by exact name (spec §6
	// names these flat, with no common prefix).
	envProvider := env.Provider(".", env.Opt{
		TransformFunc: func(key, value string) (string, any) {
			if key == "MODELS" {
				return "models", app.SplitModels(value)
			}
			mapped, ok := envKeys[key]
			if !ok {
				return "", nil
			}
			return mapped, value
		},
		EnvironFunc: environFunc,
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("loading environment variables: %w", err)
	}

	// 3. Load from CLI flags if provided
	if cmd != nil {
		flagValues := extractAndTransformFlags(cmd)
		if err := k.Load(confmap.Provider(flagValues, "."), nil); err != nil {
			return nil, fmt.Errorf("loading CLI flags: %w", err)
		}
	}

	config := &app.Config{}
	if err := k.UnmarshalWithConf("", config, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := config.ApplyDefaults(); err != nil {
		return nil, fmt.Errorf("applying defaults: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

// extractAndTransformFlags transforms CLI flag names to match config
// structure. Flags named after an environment variable in envKeys take that
// variable's key. Examples: --port → server.port, --custom-llm-url →
// upstream.base_url, --log-level → log_level
func extractAndTransformFlags(cmd *cli.Command) map[string]any {
	values := make(map[string]any)

	for _, name := range cmd.FlagNames() {
		// Skip unset flags to preserve precedence from earlier config sources
		if !cmd.IsSet(name) {
			continue
		}

		if value := cmd.Value(name); value != nil {
			key := strings.ReplaceAll(name, "--", ".")
			key = strings.ReplaceAll(key, "-", "_")
			if mapped, ok := envKeys[strings.ToUpper(key)]; ok {
				key = mapped
			}
			if key == "models" {
				if s, ok := value.(string); ok {
					values[key] = app.SplitModels(s)
					continue
				}
			}
			values[key] = value
		}
	}

	return values
}
