// Package provider implements the Provider Registry of spec.md §4.5: a
// mapping from provider identifier (platform prefix, code language, api
// scheme) to a pluggable implementation exposing one of the narrow verbs
// generate_text, generate_text_stream, run_code, read_input, http_get.
//
// Grounded on the teacher's runtime/config.go defaults→merge→validate
// pipeline (github.com/creasty/defaults + github.com/go-playground/
// validator/v10), kept as the pattern for this package's two config structs.
package provider

import (
	"fmt"
	"os"
	"reflect"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("url_format", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == "" {
			return true
		}
		return len(s) > len("http://") && (s[:7] == "http://" || (len(s) > 8 && s[:8] == "https://"))
	})
}

// ModelDefaults holds the default sampling parameters of spec.md §6, applied
// to any `model` block that does not override them.
type ModelDefaults struct {
	Decoding             string  `default:"greedy" yaml:"decoding" validate:"required"`
	MaxNewTokens         int     `default:"1024" yaml:"max_new_tokens" validate:"min=1"`
	MinNewTokens         int     `default:"1" yaml:"min_new_tokens" validate:"min=0"`
	RepetitionPenalty    float64 `default:"1.07" yaml:"repetition_penalty"`
	IncludeStopSequence  bool    `default:"false" yaml:"include_stop_sequence"`
}

// RegistryConfig holds the environment-derived credentials of spec.md §6.
// Absent credentials for an unused provider must not fail startup — see
// NewRegistry, which never validates a credential until the provider that
// needs it is actually invoked.
type RegistryConfig struct {
	GenAIKey         string `yaml:"genai_key"`
	GenAIAPI         string `yaml:"genai_api" validate:"omitempty,url_format"`
	WatsonxKey       string `yaml:"watsonx_key"`
	WatsonxAPI       string `yaml:"watsonx_api" validate:"omitempty,url_format"`
	WatsonxProjectID string `yaml:"watsonx_project_id"`
	OpenAIBaseURL    string `yaml:"openai_base_url" validate:"omitempty,url_format"`
	OpenAIAPIKey     string `yaml:"openai_api_key"`
}

// LoadRegistryConfigFromEnv reads the env vars spec.md §6 recognizes.
func LoadRegistryConfigFromEnv() *RegistryConfig {
	return &RegistryConfig{
		GenAIKey:         os.Getenv("GENAI_KEY"),
		GenAIAPI:         os.Getenv("GENAI_API"),
		WatsonxKey:       os.Getenv("WATSONX_KEY"),
		WatsonxAPI:       os.Getenv("WATSONX_API"),
		WatsonxProjectID: os.Getenv("WATSONX_PROJECT_ID"),
		OpenAIBaseURL:    os.Getenv("OPENAI_BASE_URL"),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
	}
}

// InitializeConfig mirrors the teacher's InitializeConfig: apply struct-tag
// defaults, merge raw override values by yaml tag name, then validate.
// ModelDefaults goes through it (eval.NewState); RegistryConfig does not —
// NewRegistry uses it as given, so its validate tags are never checked.
func InitializeConfig(config any, rawValues map[string]any) error {
	if err := defaults.Set(config); err != nil {
		return fmt.Errorf("failed to apply default values: %w", err)
	}
	if len(rawValues) > 0 {
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           config,
			TagName:          "yaml",
			WeaklyTypedInput: true,
		})
		if err != nil {
			return fmt.Errorf("failed to create decoder: %w", err)
		}
		if err := decoder.Decode(rawValues); err != nil {
			return fmt.Errorf("failed to decode config values: %w", err)
		}
	}
	cv := reflect.ValueOf(config)
	if cv.Kind() == reflect.Ptr {
		cv = cv.Elem()
	}
	if err := validate.Struct(cv.Interface()); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
