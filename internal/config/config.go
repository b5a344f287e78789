// Package config provides configuration structures and loading for snbloader.
package config

// Config represents the complete application configuration.
type Config struct {
	Loader  LoaderConfig  `yaml:"loader" mapstructure:"loader"`
	Report  ReportConfig  `yaml:"report" mapstructure:"report"`
	Sink    SinkConfig    `yaml:"sink" mapstructure:"sink"`
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
}

// LoaderConfig describes which slice of the dataset this instance loads.
type LoaderConfig struct {
	Mode             string `yaml:"mode" mapstructure:"mode"` // nodes, edges or all
	NumLoaders       int    `yaml:"num_loaders" mapstructure:"num_loaders"`
	LoaderIndex      int    `yaml:"loader_index" mapstructure:"loader_index"`
	NumThreads       int    `yaml:"num_threads" mapstructure:"num_threads"`
	BaseDir          string `yaml:"base_dir" mapstructure:"base_dir"`                   // original generator output
	SupplementaryDir string `yaml:"supplementary_dir" mapstructure:"supplementary_dir"` // merged person files and reverse indexes
}

// ReportConfig controls the progress table.
type ReportConfig struct {
	IntervalSeconds int    `yaml:"interval_seconds" mapstructure:"interval_seconds"`
	Format          string `yaml:"format" mapstructure:"format"` // any of lLfFdDT
}

// SinkConfig selects and configures the graph sink.
type SinkConfig struct {
	Kind        string         `yaml:"kind" mapstructure:"kind"` // image, mysql or discard
	GraphName   string         `yaml:"graph_name" mapstructure:"graph_name"`
	OutputDir   string         `yaml:"output_dir" mapstructure:"output_dir"`
	TablePrefix string         `yaml:"table_prefix" mapstructure:"table_prefix"`
	MySQL       DatabaseConfig `yaml:"mysql" mapstructure:"mysql"`
}

// DatabaseConfig represents a MySQL database connection configuration.
type DatabaseConfig struct {
	Host               string `yaml:"host" mapstructure:"host"`
	Port               int    `yaml:"port" mapstructure:"port"`
	User               string `yaml:"user" mapstructure:"user"`
	Password           string `yaml:"password" mapstructure:"password"`
	Database           string `yaml:"database" mapstructure:"database"`
	TLS                string `yaml:"tls" mapstructure:"tls"` // disable, preferred, required
	MaxConnections     int    `yaml:"max_connections" mapstructure:"max_connections"`
	MaxIdleConnections int    `yaml:"max_idle_connections" mapstructure:"max_idle_connections"`
}

// MetricsConfig exposes worker counters over HTTP when Listen is set.
type MetricsConfig struct {
	Listen string `yaml:"listen" mapstructure:"listen"` // e.g. ":9102"; empty disables
}

// LoggingConfig represents logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // json or text
	Output string `yaml:"output" mapstructure:"output"` // stdout, stderr, or file path
}

// Sink kinds.
const (
	SinkImage   = "image"
	SinkMySQL   = "mysql"
	SinkDiscard = "discard"
)

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Loader: LoaderConfig{
			Mode:        "all",
			NumLoaders:  1,
			LoaderIndex: 0,
			NumThreads:  1,
		},
		Report: ReportConfig{
			IntervalSeconds: 10,
			Format:          "LFDT",
		},
		Sink: SinkConfig{
			Kind:        SinkImage,
			GraphName:   "graph",
			OutputDir:   "./",
			TablePrefix: "snb_",
			MySQL: DatabaseConfig{
				Port:               3306,
				TLS:                "preferred",
				MaxConnections:     10,
				MaxIdleConnections: 5,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// Overrides contains CLI flag values that override config file settings.
// Empty strings and nil numbers leave the file value untouched. Numbers that
// were given are applied as-is, so invalid ones reach Validate.
type Overrides struct {
	LogLevel         string
	LogFormat        string
	Mode             string
	NumLoaders       *int
	LoaderIndex      *int
	NumThreads       *int
	ReportInterval   *int
	ReportFormat     string
	SinkKind         string
	GraphName        string
	OutputDir        string
	BaseDir          string
	SupplementaryDir string
}

// ApplyOverrides applies CLI flag overrides to the configuration.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.LogLevel != "" {
		c.Logging.Level = o.LogLevel
	}
	if o.LogFormat != "" {
		c.Logging.Format = o.LogFormat
	}
	if o.Mode != "" {
		c.Loader.Mode = o.Mode
	}
	if o.NumLoaders != nil {
		c.Loader.NumLoaders = *o.NumLoaders
	}
	if o.LoaderIndex != nil {
		c.Loader.LoaderIndex = *o.LoaderIndex
	}
	if o.NumThreads != nil {
		c.Loader.NumThreads = *o.NumThreads
	}
	if o.ReportInterval != nil {
		c.Report.IntervalSeconds = *o.ReportInterval
	}
	if o.ReportFormat != "" {
		c.Report.Format = o.ReportFormat
	}
	if o.SinkKind != "" {
		c.Sink.Kind = o.SinkKind
	}
	if o.GraphName != "" {
		c.Sink.GraphName = o.GraphName
	}
	if o.OutputDir != "" {
		c.Sink.OutputDir = o.OutputDir
	}
	if o.BaseDir != "" {
		c.Loader.BaseDir = o.BaseDir
	}
	if o.SupplementaryDir != "" {
		c.Loader.SupplementaryDir = o.SupplementaryDir
	}
}

// TotalWorkers returns numLoaders * numThreads.
func (c *Config) TotalWorkers() int {
	return c.Loader.NumLoaders * c.Loader.NumThreads
}
