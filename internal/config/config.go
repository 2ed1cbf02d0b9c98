// Package config loads and validates the simulation series
// configuration file.
package config

import (
	"github.com/matzegoebel/run-wrf/internal/grid"
	"github.com/matzegoebel/run-wrf/internal/namelist"
)

// VERSION is the tool version reported by --version.
const VERSION = "1.1.0"

// Config holds all settings of one simulation series. Field names
// follow the keys of the YAML config file.
type Config struct {
	RunID string `mapstructure:"run_id"`

	// paths
	RunPath   string `mapstructure:"run_path"`
	OutPath   string `mapstructure:"outpath"`
	Outdir    string `mapstructure:"outdir"`
	BuildPath string `mapstructure:"build_path"`

	// scheduler
	JobScheduler        string  `mapstructure:"job_scheduler"`
	Queue               string  `mapstructure:"queue"`
	QOS                 string  `mapstructure:"qos"`
	BigmemQueue         string  `mapstructure:"bigmem_queue"`
	BigmemLimitMB       float64 `mapstructure:"bigmem_limit"` // 0 means no bigmem switching
	PoolSize            int     `mapstructure:"pool_size"`
	ForcePool           bool    `mapstructure:"force_pool"`
	ReducePool          bool    `mapstructure:"reduce_pool"`
	MailAddress         string  `mapstructure:"mail_address"`
	SendRTSignal        float64 `mapstructure:"send_rt_signal"`         // seconds before the limit
	SendRTSignalRestart float64 `mapstructure:"send_rt_signal_restart"` // same, for restart runs
	RequestVMem         bool    `mapstructure:"request_vmem"`
	RTInitMinutes       float64 `mapstructure:"rt_init"`
	HStackMB            float64 `mapstructure:"h_stack"`      // 0 means no stack request
	HStackInitMB        float64 `mapstructure:"h_stack_init"` // same, for init jobs

	// resource estimation
	RTMinutes          *float64 `mapstructure:"rt"`
	RTBuffer           float64  `mapstructure:"rt_buffer"`
	RTTestMinutes      float64  `mapstructure:"rt_test"`
	VMemMB             *float64 `mapstructure:"vmem"`
	VMemPerPointMB     *float64 `mapstructure:"vmem_per_grid_point"`
	VMemMinMB          *float64 `mapstructure:"vmem_min"`
	VMemBuffer         float64  `mapstructure:"vmem_buffer"`
	VMemTestMB         float64  `mapstructure:"vmem_test"`
	VMemInitPerPointMB float64  `mapstructure:"vmem_init_per_grid_point"`
	VMemInitMinMB      float64  `mapstructure:"vmem_init_min"`
	SearchPaths        []string `mapstructure:"resource_search_paths"`

	// process tiling
	MinNPerProc int  `mapstructure:"min_n_per_proc"`
	EvenSplit   bool `mapstructure:"even_split"`
	MaxSlotsX   int  `mapstructure:"max_nslotsx"` // 0 means uncapped
	MaxSlotsY   int  `mapstructure:"max_nslotsy"`

	// model setup
	IdealCase           string   `mapstructure:"ideal_case"`
	WRFDirPrefix        string   `mapstructure:"wrf_dir_pre"`
	ModuleLoad          string   `mapstructure:"module_load"`
	Cluster             bool     `mapstructure:"cluster"`
	SplitOutputRes      float64  `mapstructure:"split_output_res"`
	UseMinGridpoints    string   `mapstructure:"use_min_gridpoints"`    // "", "x", "y" or "xy"
	ForceDomainMultiple string   `mapstructure:"force_domain_multiple"` // "", "x", "y" or "xy"
	DelArgs             []string `mapstructure:"del_args"`

	// Sections whose declaration order matters; decoded separately
	// because the generic map pass loses ordering.
	ParamGrid      *grid.ParameterGrid `mapstructure:"-"`
	BaseParams     *namelist.Params    `mapstructure:"-"`
	Labels         grid.Labels         `mapstructure:"-"`
	RuntimePerStep map[int64]float64   `mapstructure:"-"` // per-step seconds keyed by dx (m)
	Streams        []Stream            `mapstructure:"-"` // sorted by index
}

// Stream is one model output stream. Index 0 is the history stream,
// positive indices are auxiliary streams.
type Stream struct {
	Index       int
	Name        string
	IntervalMin float64
}

// StreamNames returns the output file prefixes in index order.
func (c *Config) StreamNames() []string {
	names := make([]string, len(c.Streams))
	for i, s := range c.Streams {
		names[i] = s.Name
	}
	return names
}

// Global is the loaded configuration of the running command.
var Global Config
