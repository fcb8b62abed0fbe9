package cli

import (
	_ "embed"
	"fmt"

	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"
)

const (
	mapstructureTagNameConstant                      = "mapstructure"
	defaultConfigurationParseErrorTemplateConstant   = "parse embedded configuration: %w"
	defaultConfigurationDecodeErrorTemplateConstant  = "decode embedded configuration: %w"
	defaultConfigurationDecoderErrorTemplateConstant = "build embedded configuration decoder: %w"
)

//go:embed default_config.yaml
var embeddedDefaultConfigurationContent []byte

// EmbeddedDefaultConfiguration returns a copy of the embedded default configuration and its type.
func EmbeddedDefaultConfiguration() ([]byte, string) {
	return append([]byte(nil), embeddedDefaultConfigurationContent...), configurationTypeConstant
}

// DefaultApplicationConfiguration decodes the embedded defaults into an ApplicationConfiguration.
func DefaultApplicationConfiguration() (ApplicationConfiguration, error) {
	rawConfiguration := map[string]any{}
	if parseError := yaml.Unmarshal(embeddedDefaultConfigurationContent, &rawConfiguration); parseError != nil {
		return ApplicationConfiguration{}, fmt.Errorf(defaultConfigurationParseErrorTemplateConstant, parseError)
	}

	configuration := ApplicationConfiguration{}
	decoder, decoderError := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          mapstructureTagNameConstant,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &configuration,
	})
	if decoderError != nil {
		return ApplicationConfiguration{}, fmt.Errorf(defaultConfigurationDecoderErrorTemplateConstant, decoderError)
	}
	if decodeError := decoder.Decode(rawConfiguration); decodeError != nil {
		return ApplicationConfiguration{}, fmt.Errorf(defaultConfigurationDecodeErrorTemplateConstant, decodeError)
	}
	return configuration, nil
}
