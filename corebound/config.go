package corebound

import (
	"bufio"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/naoina/toml"

	"github.com/hedera-core/txcore/core/round"
)

// tomlSettings mirrors the node's own TOML dialect: field names are taken
// verbatim (no case folding), and an unrecognized key is a hard error
// rather than being silently ignored.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string { return key },
	FieldToKey:    func(rt reflect.Type, field string) string { return field },
	MissingField: func(rt reflect.Type, field string) error {
		link := ""
		if unicodeIsUpper(rt.Name()) {
			link = rt.String() + "."
		}
		return fmt.Errorf("corebound: field %s%s not defined in %s", link, field, rt.String())
	},
}

func unicodeIsUpper(s string) bool {
	return s != "" && strings.ToUpper(s[:1]) == s[:1]
}

// FileConfig is the on-disk shape a round.Config is loaded from: the flat
// executor config plus the replay buffer's directory, which has no
// equivalent inside the core itself.
type FileConfig struct {
	Round        round.Config
	ReplayBufDir string
}

// LoadConfig decodes a FileConfig from a TOML file at path.
func LoadConfig(path string) (FileConfig, error) {
	var cfg FileConfig
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()

	if err := tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("corebound: parsing config %s: %w", path, err)
	}
	if err := cfg.Round.Validate(); err != nil {
		return cfg, fmt.Errorf("corebound: config %s: %w", path, err)
	}
	return cfg, nil
}
