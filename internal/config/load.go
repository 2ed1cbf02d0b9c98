package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/matzegoebel/run-wrf/internal/grid"
	"github.com/matzegoebel/run-wrf/internal/namelist"
	"github.com/matzegoebel/run-wrf/internal/scheduler"
)

// Load reads the config file at path into Global. The scalar settings
// go through viper; the order-sensitive sections (param_grid, params,
// param_names) are decoded in a second YAML pass because viper's map
// representation loses key ordering.
func Load(path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("RUNWRF")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("decoding config file: %w", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var ordered orderedSections
	if err := yaml.Unmarshal(raw, &ordered); err != nil {
		return fmt.Errorf("decoding config file: %w", err)
	}
	cfg.ParamGrid = &ordered.ParamGrid
	cfg.Labels = ordered.ParamNames
	cfg.RuntimePerStep = ordered.RuntimePerStep
	cfg.BaseParams, err = paramsFromNode(&ordered.Params)
	if err != nil {
		return fmt.Errorf("decoding base params: %w", err)
	}
	cfg.Streams, err = decodeStreams(ordered.OutputStreams)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	Global = cfg
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("run_id", "run")
	v.SetDefault("job_scheduler", "sge")
	v.SetDefault("pool_size", 32)
	v.SetDefault("rt_buffer", 1.2)
	v.SetDefault("rt_test", 5)
	v.SetDefault("rt_init", 10)
	v.SetDefault("vmem_buffer", 1.2)
	v.SetDefault("vmem_test", 2000)
	v.SetDefault("vmem_init_min", 1000)
	v.SetDefault("min_n_per_proc", 25)
	v.SetDefault("wrf_dir_pre", "WRF")
	v.SetDefault("ideal_case", "em_les")
}

// orderedSections carries the parts of the config file that need
// order-preserving YAML decoding.
type orderedSections struct {
	ParamGrid      grid.ParameterGrid    `yaml:"param_grid"`
	Params         yaml.Node             `yaml:"params"`
	ParamNames     grid.Labels           `yaml:"param_names"`
	RuntimePerStep map[int64]float64     `yaml:"runtime_per_step_dict"`
	OutputStreams  map[int][]interface{} `yaml:"output_streams"`
}

// decodeStreams converts the output_streams mapping (index -> [name,
// interval]) into a slice sorted by stream index.
func decodeStreams(raw map[int][]interface{}) ([]Stream, error) {
	streams := make([]Stream, 0, len(raw))
	for idx, pair := range raw {
		if len(pair) != 2 {
			return nil, fmt.Errorf("output_streams.%d: expected [name, interval]", idx)
		}
		name, ok := pair[0].(string)
		if !ok {
			return nil, fmt.Errorf("output_streams.%d: name must be a string", idx)
		}
		var interval float64
		switch v := pair[1].(type) {
		case int:
			interval = float64(v)
		case float64:
			interval = v
		default:
			return nil, fmt.Errorf("output_streams.%d: interval must be numeric", idx)
		}
		streams = append(streams, Stream{Index: idx, Name: name, IntervalMin: interval})
	}
	sort.Slice(streams, func(i, j int) bool { return streams[i].Index < streams[j].Index })
	return streams, nil
}

// paramsFromNode converts the params mapping into an ordered parameter
// map with typed values.
func paramsFromNode(node *yaml.Node) (*namelist.Params, error) {
	params := namelist.NewParams()
	if node.Kind == 0 || node.IsZero() {
		return params, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("params must be a mapping")
	}
	for i := 0; i < len(node.Content); i += 2 {
		key := strings.ToLower(node.Content[i].Value)
		val := node.Content[i+1]
		if val.Tag == "!!null" {
			// explicit null means "derive the default", same as absent
			continue
		}
		v, err := valueFromNode(val)
		if err != nil {
			return nil, fmt.Errorf("params.%s: %w", key, err)
		}
		params.Set(key, v)
	}
	return params, nil
}

func valueFromNode(node *yaml.Node) (namelist.Value, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		switch node.Tag {
		case "!!bool":
			var b bool
			if err := node.Decode(&b); err != nil {
				return namelist.Value{}, err
			}
			return namelist.Bool(b), nil
		case "!!int":
			var n int64
			if err := node.Decode(&n); err != nil {
				return namelist.Value{}, err
			}
			return namelist.Int(n), nil
		case "!!float":
			var f float64
			if err := node.Decode(&f); err != nil {
				return namelist.Value{}, err
			}
			return namelist.Float(f), nil
		default:
			return namelist.Str(node.Value), nil
		}
	case yaml.SequenceNode:
		var fs []float64
		if err := node.Decode(&fs); err != nil {
			return namelist.Value{}, fmt.Errorf("list parameters must be numeric: %w", err)
		}
		return namelist.Floats(fs), nil
	default:
		return namelist.Value{}, fmt.Errorf("unsupported parameter value")
	}
}

// Validate checks the settings that have no safe fallback.
func (c *Config) Validate() error {
	if c.RunPath == "" {
		return &ValidationError{Field: "run_path", Reason: "must be set"}
	}
	if c.OutPath == "" {
		return &ValidationError{Field: "outpath", Reason: "must be set"}
	}
	if c.BuildPath == "" {
		return &ValidationError{Field: "build_path", Reason: "must be set"}
	}
	if _, err := scheduler.ParseKind(c.JobScheduler); err != nil {
		return err
	}
	if c.PoolSize <= 0 {
		return &ValidationError{Field: "pool_size", Reason: "must be positive"}
	}
	if c.RTBuffer <= 0 {
		return &ValidationError{Field: "rt_buffer", Reason: "must be positive"}
	}
	if c.VMemBuffer <= 0 {
		return &ValidationError{Field: "vmem_buffer", Reason: "must be positive"}
	}
	if c.MinNPerProc <= 0 {
		return &ValidationError{Field: "min_n_per_proc", Reason: "must be positive"}
	}
	return nil
}

// SchedulerKind returns the parsed scheduler kind. Validate has
// already rejected unknown values.
func (c *Config) SchedulerKind() scheduler.Kind {
	kind, _ := scheduler.ParseKind(c.JobScheduler)
	return kind
}
